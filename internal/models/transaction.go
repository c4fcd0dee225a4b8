package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a purchase request.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"   // waiting for the customer
	TransactionApproved  TransactionStatus = "approved"  // customer accepted, repayment running
	TransactionRejected  TransactionStatus = "rejected"  // customer declined
	TransactionCancelled TransactionStatus = "cancelled" // merchant withdrew the request
	TransactionCompleted TransactionStatus = "completed" // fully repaid
	TransactionExpired   TransactionStatus = "expired"   // no customer response in time
)

// transactionTransitions is the single source of truth for the workflow.
// rejected, cancelled, completed and expired are terminal.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionPending:  {TransactionApproved, TransactionRejected, TransactionCancelled, TransactionExpired},
	TransactionApproved: {TransactionCompleted},
}

// Valid reports whether s is a known status (used for query filters).
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionApproved, TransactionRejected,
		TransactionCancelled, TransactionCompleted, TransactionExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow permits moving to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transaction represents a purchase request from a merchant to a customer.
type Transaction struct {
	ID              int64  `json:"id"`
	ReferenceNumber string `json:"reference_number"`

	CustomerID int64 `json:"customer_id"`
	MerchantID int64 `json:"merchant_id"`

	Amount           decimal.Decimal `json:"amount"`
	FeePercent       decimal.Decimal `json:"fee_percent"` // rate captured at creation time
	FeeAmount        decimal.Decimal `json:"fee_amount"`
	MerchantReceives decimal.Decimal `json:"merchant_receives"`

	ProductName string `json:"product_name,omitempty"`
	Description string `json:"description,omitempty"`

	Status       TransactionStatus `json:"status"`
	RejectReason string            `json:"reject_reason,omitempty"`
	CancelReason string            `json:"cancel_reason,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Transition moves the transaction to next or fails with ErrInvalidState.
func (t *Transaction) Transition(next TransactionStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return ErrInvalidState
	}
	t.Status = next
	return nil
}

// IsExpired reports whether a pending request has outlived its TTL.
func (t *Transaction) IsExpired(now time.Time) bool {
	return t.Status == TransactionPending && t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

// CalculateFee splits an amount into the platform fee and what the merchant
// receives. feePercent is expressed in percent, e.g. 0.5 for 0.5%.
func CalculateFee(amount, feePercent decimal.Decimal) (fee, merchantReceives decimal.Decimal) {
	fee = amount.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
	merchantReceives = amount.Sub(fee)
	return fee, merchantReceives
}
