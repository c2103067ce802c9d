package models

import "time"

// Device is a registered unit. The serial number is the primary key; the
// passport reference is set at registration and never changes afterwards.
// OwnerID is nil for anonymously registered devices.
type Device struct {
	SerialNumber           string
	PassportID             int64
	OwnerID                *int64
	PurchaseDate           time.Time
	WarrantyExpirationDate time.Time
	Comment                *string

	// Owner is populated by queries that join the owning user; it is nil for
	// anonymous devices and for queries that do not join.
	Owner *User
}
