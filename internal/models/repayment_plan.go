package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Term bounds for repayment plans, in months.
const (
	MinPlanMonths = 1
	MaxPlanMonths = 28
)

// PlanStatus is the state of a repayment plan as a whole.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanOverdue   PlanStatus = "overdue"
)

// Valid reports whether s is a known plan status.
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanActive, PlanCompleted, PlanOverdue:
		return true
	}
	return false
}

// RepaymentPlan tracks repayment of one approved transaction.
// Invariants: TotalPaid + RemainingAmount = TotalAmount and
// PaymentsMade counts schedules in the paid state.
type RepaymentPlan struct {
	ID            int64 `json:"id"`
	TransactionID int64 `json:"transaction_id"`
	CustomerID    int64 `json:"customer_id"`

	TotalAmount    decimal.Decimal `json:"total_amount"`
	NumberOfMonths int             `json:"number_of_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`

	TotalPaid         decimal.Decimal `json:"total_paid"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	PaymentsMade      int             `json:"payments_made"`
	PaymentsRemaining int             `json:"payments_remaining"`

	Status PlanStatus `json:"status"`

	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Schedules []PaymentSchedule `json:"schedules,omitempty"`
}

// MonthlyPayment divides a principal into equal monthly installments,
// rounded to two decimal places.
func MonthlyPayment(total decimal.Decimal, months int) decimal.Decimal {
	return total.DivRound(decimal.NewFromInt(int64(months)), 2)
}

// NewRepaymentPlan builds a plan plus its full schedule for an approved
// transaction. The first installment is due one month after approval and the
// last installment absorbs the rounding remainder, so the schedule amounts
// always sum to the transaction amount exactly.
func NewRepaymentPlan(txn *Transaction, months int, approvedAt time.Time) (*RepaymentPlan, error) {
	if months < MinPlanMonths || months > MaxPlanMonths {
		return nil, ErrValidation
	}

	monthly := MonthlyPayment(txn.Amount, months)
	start := approvedAt.AddDate(0, 1, 0)

	plan := &RepaymentPlan{
		TransactionID:     txn.ID,
		CustomerID:        txn.CustomerID,
		TotalAmount:       txn.Amount,
		NumberOfMonths:    months,
		MonthlyPayment:    monthly,
		TotalPaid:         decimal.Zero,
		RemainingAmount:   txn.Amount,
		PaymentsMade:      0,
		PaymentsRemaining: months,
		Status:            PlanActive,
		StartDate:         start,
		EndDate:           start.AddDate(0, months-1, 0),
	}

	remaining := txn.Amount
	for i := 0; i < months; i++ {
		amount := monthly
		if i == months-1 {
			amount = remaining
		}
		remaining = remaining.Sub(amount)

		plan.Schedules = append(plan.Schedules, PaymentSchedule{
			InstallmentNumber: i + 1,
			DueDate:           start.AddDate(0, i, 0),
			Amount:            amount,
			AmountPaid:        decimal.Zero,
			Status:            PaymentPending,
		})
	}

	return plan, nil
}

// ApplyPayment records a fully paid installment against the plan totals.
// Returns true when this was the final installment and the plan is complete.
func (p *RepaymentPlan) ApplyPayment(amount decimal.Decimal, now time.Time) bool {
	p.TotalPaid = p.TotalPaid.Add(amount)
	p.RemainingAmount = p.RemainingAmount.Sub(amount)
	p.PaymentsMade++
	p.PaymentsRemaining--

	if p.PaymentsMade >= p.NumberOfMonths || !p.RemainingAmount.IsPositive() {
		p.RemainingAmount = decimal.Zero
		p.Status = PlanCompleted
		p.CompletedAt = &now
		return true
	}
	return false
}

// RepaymentSummary aggregates a customer's open repayment obligations.
type RepaymentSummary struct {
	ActivePlans         int             `json:"active_plans"`
	TotalOutstanding    decimal.Decimal `json:"total_outstanding"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	OverdueInstallments int             `json:"overdue_installments"`
	NextDueDate         *time.Time      `json:"next_due_date,omitempty"`
	NextDueAmount       decimal.Decimal `json:"next_due_amount"`
}
