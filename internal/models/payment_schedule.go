package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a single installment.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentRequested     PaymentStatus = "payment_requested" // customer asked to pay, merchant decides
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentOverdue       PaymentStatus = "overdue"
)

// Valid reports whether s is a known installment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentRequested, PaymentPaid, PaymentPartiallyPaid, PaymentOverdue:
		return true
	}
	return false
}

// PaymentSchedule is one installment of a repayment plan. An installment is
// only ever paid through pending/overdue -> payment_requested -> paid.
type PaymentSchedule struct {
	ID                int64 `json:"id"`
	PlanID            int64 `json:"plan_id"`
	InstallmentNumber int   `json:"installment_number"`

	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	DueDate    time.Time       `json:"due_date"`

	Status PaymentStatus `json:"status"`

	PaidAt             *time.Time `json:"paid_at,omitempty"`
	PaymentRequestedAt *time.Time `json:"payment_requested_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsPastDue reports whether the due date has passed.
func (s *PaymentSchedule) IsPastDue(now time.Time) bool {
	return s.DueDate.Before(now)
}

// RequestPayment moves the installment into payment_requested.
// Only valid from pending or overdue.
func (s *PaymentSchedule) RequestPayment(now time.Time) error {
	if s.Status != PaymentPending && s.Status != PaymentOverdue {
		return ErrInvalidState
	}
	s.Status = PaymentRequested
	s.PaymentRequestedAt = &now
	return nil
}

// MarkPaid settles the installment in full. Only valid from payment_requested.
func (s *PaymentSchedule) MarkPaid(now time.Time) error {
	if s.Status != PaymentRequested {
		return ErrInvalidState
	}
	s.AmountPaid = s.Amount
	s.Status = PaymentPaid
	s.PaidAt = &now
	return nil
}

// RevertRequest puts a rejected payment request back to pending, or to
// overdue when the due date has already passed. Only valid from
// payment_requested.
func (s *PaymentSchedule) RevertRequest(now time.Time) error {
	if s.Status != PaymentRequested {
		return ErrInvalidState
	}
	if s.IsPastDue(now) {
		s.Status = PaymentOverdue
	} else {
		s.Status = PaymentPending
	}
	s.PaymentRequestedAt = nil
	return nil
}

// PaymentRequest is the merchant's view of an installment awaiting approval.
type PaymentRequest struct {
	ScheduleID           int64           `json:"schedule_id"`
	PlanID               int64           `json:"plan_id"`
	TransactionID        int64           `json:"transaction_id"`
	TransactionReference string          `json:"transaction_reference"`
	CustomerID           int64           `json:"customer_id"`
	CustomerName         string          `json:"customer_name"`
	InstallmentNumber    int             `json:"installment_number"`
	TotalInstallments    int             `json:"total_installments"`
	Amount               decimal.Decimal `json:"amount"`
	DueDate              time.Time       `json:"due_date"`
	RequestedAt          *time.Time      `json:"requested_at,omitempty"`
}

// PaymentReminder carries what the notifier needs to nudge a customer
// about an installment that is due soon or overdue.
type PaymentReminder struct {
	Email    string
	FullName string
	Amount   decimal.Decimal
	DueDate  time.Time
	Overdue  bool
}

// UpcomingPayment is a customer's view of an installment that is due soon.
type UpcomingPayment struct {
	ScheduleID           int64           `json:"schedule_id"`
	PlanID               int64           `json:"plan_id"`
	TransactionReference string          `json:"transaction_reference"`
	InstallmentNumber    int             `json:"installment_number"`
	Amount               decimal.Decimal `json:"amount"`
	DueDate              time.Time       `json:"due_date"`
	Status               PaymentStatus   `json:"status"`
}
