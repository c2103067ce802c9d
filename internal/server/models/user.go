package models

// UserRole distinguishes regular customers from back-office administrators.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is a device owner. Email and phone are globally unique and both act
// as login usernames.
type User struct {
	ID           int64
	FullName     string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	Role         UserRole
}
