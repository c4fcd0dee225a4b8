package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant holds the earnings ledger for a seller. Balance only grows as
// transactions settle; withdrawals are not part of this service.
type Merchant struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	BusinessName           string `json:"business_name"`
	CommercialRegistration string `json:"commercial_registration"`
	TaxNumber              string `json:"tax_number,omitempty"`
	BusinessCategory       string `json:"business_category,omitempty"`

	Balance       decimal.Decimal `json:"balance"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TotalFeesPaid decimal.Decimal `json:"total_fees_paid"`

	BankName        string `json:"bank_name,omitempty"`
	IBAN            string `json:"iban,omitempty"`
	BusinessAddress string `json:"business_address,omitempty"`
	City            string `json:"city,omitempty"`

	IsApproved bool       `json:"is_approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credit settles a transaction into the merchant ledger: the net amount is
// added to balance and lifetime earnings, the platform fee is recorded at
// the same event for reporting.
func (m *Merchant) Credit(netAmount, fee decimal.Decimal) {
	m.Balance = m.Balance.Add(netAmount)
	m.TotalEarnings = m.TotalEarnings.Add(netAmount)
	m.TotalFeesPaid = m.TotalFeesPaid.Add(fee)
}

// MerchantAccount pairs a merchant profile with its user record for listings.
type MerchantAccount struct {
	Merchant
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// MerchantBalance is the balance view with transaction counts.
type MerchantBalance struct {
	Balance               decimal.Decimal `json:"balance"`
	TotalEarnings         decimal.Decimal `json:"total_earnings"`
	TotalFeesPaid         decimal.Decimal `json:"total_fees_paid"`
	PendingTransactions   int             `json:"pending_transactions"`
	ApprovedTransactions  int             `json:"approved_transactions"`
	CompletedTransactions int             `json:"completed_transactions"`
}
