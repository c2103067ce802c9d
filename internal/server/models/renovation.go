package models

import "time"

// Renovation is a repair record owned by exactly one device. Description and
// date are stored verbatim as supplied, including empty and unset values.
// Renovations are deleted together with their device.
type Renovation struct {
	ID                 string
	DeviceSerialNumber string
	Description        *string
	RenovationDate     *time.Time
}
