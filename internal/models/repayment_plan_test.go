package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(amount string) *Transaction {
	return &Transaction{
		ID:         7,
		CustomerID: 3,
		Amount:     decimal.RequireFromString(amount),
		Status:     TransactionApproved,
	}
}

func TestNewRepaymentPlanEvenSplit(t *testing.T) {
	approvedAt := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	plan, err := NewRepaymentPlan(testTransaction("1200"), 12, approvedAt)
	require.NoError(t, err)

	assert.Equal(t, int64(7), plan.TransactionID)
	assert.Equal(t, int64(3), plan.CustomerID)
	assert.Equal(t, PlanActive, plan.Status)
	assert.Equal(t, 12, plan.NumberOfMonths)
	assert.Equal(t, 12, plan.PaymentsRemaining)
	assert.True(t, plan.MonthlyPayment.Equal(decimal.RequireFromString("100")))
	assert.True(t, plan.RemainingAmount.Equal(plan.TotalAmount))
	require.Len(t, plan.Schedules, 12)

	// first installment one month after approval, then monthly
	assert.Equal(t, time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC), plan.Schedules[0].DueDate)
	assert.Equal(t, time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC), plan.Schedules[1].DueDate)
	assert.Equal(t, time.Date(2027, 3, 15, 12, 0, 0, 0, time.UTC), plan.Schedules[11].DueDate)
	assert.Equal(t, plan.Schedules[11].DueDate, plan.EndDate)

	for i, s := range plan.Schedules {
		assert.Equal(t, i+1, s.InstallmentNumber)
		assert.Equal(t, PaymentPending, s.Status)
		assert.True(t, s.Amount.Equal(decimal.RequireFromString("100")))
	}
}

func TestNewRepaymentPlanRoundingRemainder(t *testing.T) {
	approvedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	plan, err := NewRepaymentPlan(testTransaction("1000"), 3, approvedAt)
	require.NoError(t, err)
	require.Len(t, plan.Schedules, 3)

	// 1000/3 rounds to 333.33; the last installment absorbs the remainder
	assert.True(t, plan.Schedules[0].Amount.Equal(decimal.RequireFromString("333.33")))
	assert.True(t, plan.Schedules[1].Amount.Equal(decimal.RequireFromString("333.33")))
	assert.True(t, plan.Schedules[2].Amount.Equal(decimal.RequireFromString("333.34")))

	sum := decimal.Zero
	for _, s := range plan.Schedules {
		sum = sum.Add(s.Amount)
	}
	assert.True(t, sum.Equal(plan.TotalAmount), "schedule sum %s != total %s", sum, plan.TotalAmount)
}

func TestNewRepaymentPlanSingleInstallment(t *testing.T) {
	plan, err := NewRepaymentPlan(testTransaction("500"), 1, time.Now())
	require.NoError(t, err)
	require.Len(t, plan.Schedules, 1)
	assert.True(t, plan.Schedules[0].Amount.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, plan.StartDate, plan.EndDate)
}

func TestNewRepaymentPlanMonthBounds(t *testing.T) {
	_, err := NewRepaymentPlan(testTransaction("100"), 0, time.Now())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewRepaymentPlan(testTransaction("100"), MaxPlanMonths+1, time.Now())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewRepaymentPlan(testTransaction("100"), MaxPlanMonths, time.Now())
	assert.NoError(t, err)
}

func TestApplyPayment(t *testing.T) {
	now := time.Now()
	plan, err := NewRepaymentPlan(testTransaction("300"), 3, now)
	require.NoError(t, err)

	done := plan.ApplyPayment(plan.Schedules[0].Amount, now)
	assert.False(t, done)
	assert.Equal(t, 1, plan.PaymentsMade)
	assert.Equal(t, 2, plan.PaymentsRemaining)
	assert.True(t, plan.TotalPaid.Equal(decimal.RequireFromString("100")))
	assert.True(t, plan.RemainingAmount.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, PlanActive, plan.Status)

	plan.ApplyPayment(plan.Schedules[1].Amount, now)
	done = plan.ApplyPayment(plan.Schedules[2].Amount, now)
	assert.True(t, done)
	assert.Equal(t, PlanCompleted, plan.Status)
	assert.True(t, plan.RemainingAmount.IsZero())
	assert.True(t, plan.TotalPaid.Equal(plan.TotalAmount))
	require.NotNil(t, plan.CompletedAt)
}
