package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

const planColumns = `id, transaction_id, customer_id, total_amount, number_of_months, monthly_payment,
	total_paid, remaining_amount, payments_made, payments_remaining, status, start_date, end_date,
	created_at, completed_at`

const scheduleColumns = `id, plan_id, installment_number, amount, amount_paid, due_date, status,
	paid_at, payment_requested_at, created_at`

// CreatePlan inserts a repayment plan together with its full schedule.
// Fails with ErrAlreadyExists when the transaction already has a plan.
func (r *Postgres) CreatePlan(ctx context.Context, plan *models.RepaymentPlan) error {
	query := `
		INSERT INTO bnpl.repayment_plans (transaction_id, customer_id, total_amount, number_of_months,
			monthly_payment, total_paid, remaining_amount, payments_made, payments_remaining,
			status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query,
		plan.TransactionID, plan.CustomerID, plan.TotalAmount, plan.NumberOfMonths,
		plan.MonthlyPayment, plan.TotalPaid, plan.RemainingAmount, plan.PaymentsMade,
		plan.PaymentsRemaining, plan.Status, plan.StartDate, plan.EndDate).
		Scan(&plan.ID, &plan.CreatedAt)
	if isDuplicate(err) {
		return fmt.Errorf("repayment plan: %w", models.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create repayment plan: %w", err)
	}

	for i := range plan.Schedules {
		s := &plan.Schedules[i]
		s.PlanID = plan.ID
		err := r.q.QueryRowContext(ctx, `
			INSERT INTO bnpl.payment_schedules (plan_id, installment_number, amount, amount_paid, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			s.PlanID, s.InstallmentNumber, s.Amount, s.AmountPaid, s.DueDate, s.Status).
			Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payment schedule %d: %w", s.InstallmentNumber, err)
		}
	}
	return nil
}

func scanPlanRow(scan func(dest ...any) error) (*models.RepaymentPlan, error) {
	p := &models.RepaymentPlan{}
	err := scan(&p.ID, &p.TransactionID, &p.CustomerID, &p.TotalAmount, &p.NumberOfMonths,
		&p.MonthlyPayment, &p.TotalPaid, &p.RemainingAmount, &p.PaymentsMade, &p.PaymentsRemaining,
		&p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("repayment plan: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find repayment plan: %w", err)
	}
	return p, nil
}

// GetPlan retrieves a repayment plan by id
func (r *Postgres) GetPlan(ctx context.Context, id int64) (*models.RepaymentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM bnpl.repayment_plans WHERE id = $1`
	return scanPlanRow(r.q.QueryRowContext(ctx, query, id).Scan)
}

// GetPlanForUpdate retrieves a repayment plan by id with a row lock
func (r *Postgres) GetPlanForUpdate(ctx context.Context, id int64) (*models.RepaymentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM bnpl.repayment_plans WHERE id = $1 FOR UPDATE`
	return scanPlanRow(r.q.QueryRowContext(ctx, query, id).Scan)
}

// GetPlanByTransaction retrieves the plan attached to a transaction
func (r *Postgres) GetPlanByTransaction(ctx context.Context, transactionID int64) (*models.RepaymentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM bnpl.repayment_plans WHERE transaction_id = $1`
	return scanPlanRow(r.q.QueryRowContext(ctx, query, transactionID).Scan)
}

// ListPlansByCustomer returns a customer's plans, newest first
func (r *Postgres) ListPlansByCustomer(ctx context.Context, customerID int64, status *models.PlanStatus) ([]models.RepaymentPlan, error) {
	query := `
		SELECT ` + planColumns + ` FROM bnpl.repayment_plans
		WHERE customer_id = $1 AND ($2::VARCHAR IS NULL OR status = $2)
		ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query, customerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list repayment plans: %w", err)
	}
	defer rows.Close()

	var plans []models.RepaymentPlan
	for rows.Next() {
		p, err := scanPlanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// UpdatePlanProgress persists the progress counters and status of a plan
func (r *Postgres) UpdatePlanProgress(ctx context.Context, plan *models.RepaymentPlan) error {
	query := `
		UPDATE bnpl.repayment_plans
		SET total_paid = $2, remaining_amount = $3, payments_made = $4, payments_remaining = $5,
			status = $6, completed_at = $7
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		plan.ID, plan.TotalPaid, plan.RemainingAmount, plan.PaymentsMade, plan.PaymentsRemaining,
		plan.Status, plan.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update repayment plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repayment plan: %w", models.ErrNotFound)
	}
	return nil
}

func scanScheduleRow(scan func(dest ...any) error) (*models.PaymentSchedule, error) {
	s := &models.PaymentSchedule{}
	err := scan(&s.ID, &s.PlanID, &s.InstallmentNumber, &s.Amount, &s.AmountPaid, &s.DueDate,
		&s.Status, &s.PaidAt, &s.PaymentRequestedAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment schedule: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment schedule: %w", err)
	}
	return s, nil
}

// GetSchedule retrieves an installment by id
func (r *Postgres) GetSchedule(ctx context.Context, id int64) (*models.PaymentSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM bnpl.payment_schedules WHERE id = $1`
	return scanScheduleRow(r.q.QueryRowContext(ctx, query, id).Scan)
}

// GetScheduleForUpdate retrieves an installment by id with a row lock
func (r *Postgres) GetScheduleForUpdate(ctx context.Context, id int64) (*models.PaymentSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM bnpl.payment_schedules WHERE id = $1 FOR UPDATE`
	return scanScheduleRow(r.q.QueryRowContext(ctx, query, id).Scan)
}

// ListSchedulesByPlan returns a plan's installments in order
func (r *Postgres) ListSchedulesByPlan(ctx context.Context, planID int64) ([]models.PaymentSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + ` FROM bnpl.payment_schedules
		WHERE plan_id = $1
		ORDER BY installment_number`
	rows, err := r.q.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.PaymentSchedule
	for rows.Next() {
		s, err := scanScheduleRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

// UpdateSchedule persists the state of a single installment
func (r *Postgres) UpdateSchedule(ctx context.Context, schedule *models.PaymentSchedule) error {
	query := `
		UPDATE bnpl.payment_schedules
		SET amount_paid = $2, status = $3, paid_at = $4, payment_requested_at = $5
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		schedule.ID, schedule.AmountPaid, schedule.Status, schedule.PaidAt, schedule.PaymentRequestedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment schedule: %w", models.ErrNotFound)
	}
	return nil
}

// ListPaymentRequestsByMerchant returns installments awaiting this merchant's
// approval, joined with plan, transaction and customer info
func (r *Postgres) ListPaymentRequestsByMerchant(ctx context.Context, merchantID int64) ([]models.PaymentRequest, error) {
	query := `
		SELECT s.id, p.id, t.id, t.reference_number, p.customer_id, u.full_name,
			s.installment_number, p.number_of_months, s.amount, s.due_date, s.payment_requested_at
		FROM bnpl.payment_schedules s
		JOIN bnpl.repayment_plans p ON p.id = s.plan_id
		JOIN bnpl.transactions t ON t.id = p.transaction_id
		JOIN bnpl.customers c ON c.id = p.customer_id
		JOIN bnpl.users u ON u.id = c.user_id
		WHERE t.merchant_id = $1 AND s.status = 'payment_requested'
		ORDER BY s.payment_requested_at`
	rows, err := r.q.QueryContext(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	defer rows.Close()

	var requests []models.PaymentRequest
	for rows.Next() {
		var pr models.PaymentRequest
		if err := rows.Scan(&pr.ScheduleID, &pr.PlanID, &pr.TransactionID, &pr.TransactionReference,
			&pr.CustomerID, &pr.CustomerName, &pr.InstallmentNumber, &pr.TotalInstallments,
			&pr.Amount, &pr.DueDate, &pr.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment request: %w", err)
		}
		requests = append(requests, pr)
	}
	return requests, rows.Err()
}

// UpcomingPayments returns a customer's unpaid installments due until the
// given time, soonest first
func (r *Postgres) UpcomingPayments(ctx context.Context, customerID int64, until time.Time) ([]models.UpcomingPayment, error) {
	query := `
		SELECT s.id, p.id, t.reference_number, s.installment_number, s.amount, s.due_date, s.status
		FROM bnpl.payment_schedules s
		JOIN bnpl.repayment_plans p ON p.id = s.plan_id
		JOIN bnpl.transactions t ON t.id = p.transaction_id
		WHERE p.customer_id = $1
			AND s.status IN ('pending', 'overdue', 'payment_requested')
			AND s.due_date <= $2
		ORDER BY s.due_date`
	rows, err := r.q.QueryContext(ctx, query, customerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming payments: %w", err)
	}
	defer rows.Close()

	var upcoming []models.UpcomingPayment
	for rows.Next() {
		var u models.UpcomingPayment
		if err := rows.Scan(&u.ScheduleID, &u.PlanID, &u.TransactionReference,
			&u.InstallmentNumber, &u.Amount, &u.DueDate, &u.Status); err != nil {
			return nil, fmt.Errorf("failed to scan upcoming payment: %w", err)
		}
		upcoming = append(upcoming, u)
	}
	return upcoming, rows.Err()
}

// RepaymentSummary aggregates a customer's open obligations
func (r *Postgres) RepaymentSummary(ctx context.Context, customerID int64, now time.Time) (*models.RepaymentSummary, error) {
	summary := &models.RepaymentSummary{NextDueAmount: decimal.Zero}

	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'active'),
			COALESCE(SUM(remaining_amount) FILTER (WHERE status <> 'completed'), 0),
			COALESCE(SUM(total_paid), 0)
		FROM bnpl.repayment_plans
		WHERE customer_id = $1`, customerID).
		Scan(&summary.ActivePlans, &summary.TotalOutstanding, &summary.TotalPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate repayment plans: %w", err)
	}

	err = r.q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM bnpl.payment_schedules s
		JOIN bnpl.repayment_plans p ON p.id = s.plan_id
		WHERE p.customer_id = $1 AND s.status = 'overdue'`, customerID).
		Scan(&summary.OverdueInstallments)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue installments: %w", err)
	}

	var dueDate time.Time
	var amount decimal.Decimal
	err = r.q.QueryRowContext(ctx, `
		SELECT s.due_date, s.amount
		FROM bnpl.payment_schedules s
		JOIN bnpl.repayment_plans p ON p.id = s.plan_id
		WHERE p.customer_id = $1 AND s.status IN ('pending', 'overdue', 'payment_requested')
		ORDER BY s.due_date
		LIMIT 1`, customerID).
		Scan(&dueDate, &amount)
	switch {
	case err == sql.ErrNoRows:
		// nothing outstanding
	case err != nil:
		return nil, fmt.Errorf("failed to find next due installment: %w", err)
	default:
		summary.NextDueDate = &dueDate
		summary.NextDueAmount = amount
	}

	return summary, nil
}

// MarkOverdueBefore flips pending installments past their due date to
// overdue. Returns the number of rows swept.
func (r *Postgres) MarkOverdueBefore(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bnpl.payment_schedules SET status = 'overdue' WHERE status = 'pending' AND due_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue schedules: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue schedules: %w", err)
	}
	return n, nil
}

// ReminderSchedules returns contact details for installments that are overdue
// or come due before the until time
func (r *Postgres) ReminderSchedules(ctx context.Context, now, until time.Time) ([]models.PaymentReminder, error) {
	query := `
		SELECT u.email, u.full_name, s.amount, s.due_date, s.status = 'overdue'
		FROM bnpl.payment_schedules s
		JOIN bnpl.repayment_plans p ON p.id = s.plan_id
		JOIN bnpl.customers c ON c.id = p.customer_id
		JOIN bnpl.users u ON u.id = c.user_id
		WHERE (s.status = 'overdue' OR (s.status = 'pending' AND s.due_date BETWEEN $1 AND $2))
		ORDER BY s.due_date`
	rows, err := r.q.QueryContext(ctx, query, now, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder schedules: %w", err)
	}
	defer rows.Close()

	var reminders []models.PaymentReminder
	for rows.Next() {
		var rem models.PaymentReminder
		if err := rows.Scan(&rem.Email, &rem.FullName, &rem.Amount, &rem.DueDate, &rem.Overdue); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
