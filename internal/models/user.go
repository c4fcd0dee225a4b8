package models

import "time"

// UserType determines which profile a user owns and which operations
// the user may call.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeMerchant UserType = "merchant"
	UserTypeAdmin    UserType = "admin"
)

// User represents a login account in the system
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"` // Not serialized
	UserType     UserType   `json:"user_type"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
