// Package models holds the persistent entities of the device registry.
package models

// Passport is a warranty template covering a contiguous, inclusive range of
// serial numbers under a single prefix. For a fixed prefix no two passports
// may have intersecting [FromSerialNumber, ToSerialNumber] windows.
type Passport struct {
	ID               int64
	Name             string
	Model            string
	SerialPrefix     string
	FromSerialNumber int
	ToSerialNumber   int
	WarrantyMonths   int
}
