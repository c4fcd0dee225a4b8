package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer holds the credit ledger for a single buyer.
// Invariant: AvailableLimit = CreditLimit - UsedLimit, never negative.
type Customer struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	// NationalID is stored encrypted at rest; the plain value is only
	// populated on responses. The HMAC digest backs the unique lookup.
	NationalID     string `json:"national_id,omitempty"`
	NationalIDEnc  string `json:"-"`
	NationalIDHMAC string `json:"-"`

	CreditLimit    decimal.Decimal `json:"credit_limit"`
	UsedLimit      decimal.Decimal `json:"used_limit"`
	AvailableLimit decimal.Decimal `json:"available_limit"`

	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`

	IsApproved bool       `json:"is_approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanPurchase reports whether the customer may take on a purchase of amount.
func (c *Customer) CanPurchase(amount decimal.Decimal) bool {
	return c.IsApproved && c.AvailableLimit.GreaterThanOrEqual(amount)
}

// Reserve draws amount from the available limit.
// Fails with ErrInsufficientLimit when the available limit does not cover it.
func (c *Customer) Reserve(amount decimal.Decimal) error {
	if amount.GreaterThan(c.AvailableLimit) {
		return ErrInsufficientLimit
	}
	c.UsedLimit = c.UsedLimit.Add(amount)
	c.AvailableLimit = c.CreditLimit.Sub(c.UsedLimit)
	return nil
}

// Release returns amount to the available limit after a repayment.
// The used limit never drops below zero and the available limit never
// exceeds the credit limit.
func (c *Customer) Release(amount decimal.Decimal) {
	c.UsedLimit = c.UsedLimit.Sub(amount)
	if c.UsedLimit.IsNegative() {
		c.UsedLimit = decimal.Zero
	}
	c.AvailableLimit = c.CreditLimit.Sub(c.UsedLimit)
}

// SetLimit changes the credit limit. Fails with ErrInvalidLimit when the
// new limit is below what the customer has already drawn.
func (c *Customer) SetLimit(newLimit decimal.Decimal) error {
	if newLimit.IsNegative() || newLimit.LessThan(c.UsedLimit) {
		return ErrInvalidLimit
	}
	c.CreditLimit = newLimit
	c.AvailableLimit = c.CreditLimit.Sub(c.UsedLimit)
	return nil
}

// CustomerAccount pairs a customer profile with its user record for listings.
type CustomerAccount struct {
	Customer
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// CustomerLookup is what a merchant sees when searching for a customer.
type CustomerLookup struct {
	ID             int64           `json:"id"`
	FullName       string          `json:"full_name"`
	PhoneNumber    string          `json:"phone_number"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	AvailableLimit decimal.Decimal `json:"available_limit"`
}
