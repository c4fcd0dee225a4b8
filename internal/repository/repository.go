package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

// Store provides database operations. Methods named *ForUpdate take a row
// lock and are only meaningful inside WithTx.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	DeactivateUser(ctx context.Context, userID int64) error

	// Customers
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerForUpdate(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	GetCustomerByIdentityDigest(ctx context.Context, digest string) (*models.Customer, error)
	UpdateCustomerLimits(ctx context.Context, customer *models.Customer) error
	UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error
	SetCustomerApproval(ctx context.Context, customer *models.Customer) error
	ListCustomers(ctx context.Context, approved *bool, limit, offset int) ([]models.CustomerAccount, error)
	LookupCustomer(ctx context.Context, customerID int64) (*models.CustomerLookup, error)

	// Merchants
	CreateMerchant(ctx context.Context, merchant *models.Merchant) error
	GetMerchant(ctx context.Context, id int64) (*models.Merchant, error)
	GetMerchantForUpdate(ctx context.Context, id int64) (*models.Merchant, error)
	GetMerchantByUserID(ctx context.Context, userID int64) (*models.Merchant, error)
	GetMerchantByRegistration(ctx context.Context, registration string) (*models.Merchant, error)
	UpdateMerchantBalance(ctx context.Context, merchant *models.Merchant) error
	UpdateMerchantProfile(ctx context.Context, merchant *models.Merchant) error
	SetMerchantApproval(ctx context.Context, merchant *models.Merchant) error
	ListMerchants(ctx context.Context, approved *bool, limit, offset int) ([]models.MerchantAccount, error)
	MerchantTransactionCounts(ctx context.Context, merchantID int64) (pending, approved, completed int, err error)

	// Transactions
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	GetTransactionForUpdate(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error
	ListTransactionsByCustomer(ctx context.Context, customerID int64, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error)
	ListTransactionsByMerchant(ctx context.Context, merchantID int64, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error)
	PendingTransactionsForCustomer(ctx context.Context, customerID int64, now time.Time) ([]models.Transaction, error)
	ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error)

	// Repayment plans and schedules
	CreatePlan(ctx context.Context, plan *models.RepaymentPlan) error
	GetPlan(ctx context.Context, id int64) (*models.RepaymentPlan, error)
	GetPlanForUpdate(ctx context.Context, id int64) (*models.RepaymentPlan, error)
	GetPlanByTransaction(ctx context.Context, transactionID int64) (*models.RepaymentPlan, error)
	ListPlansByCustomer(ctx context.Context, customerID int64, status *models.PlanStatus) ([]models.RepaymentPlan, error)
	UpdatePlanProgress(ctx context.Context, plan *models.RepaymentPlan) error
	GetSchedule(ctx context.Context, id int64) (*models.PaymentSchedule, error)
	GetScheduleForUpdate(ctx context.Context, id int64) (*models.PaymentSchedule, error)
	ListSchedulesByPlan(ctx context.Context, planID int64) ([]models.PaymentSchedule, error)
	UpdateSchedule(ctx context.Context, schedule *models.PaymentSchedule) error
	ListPaymentRequestsByMerchant(ctx context.Context, merchantID int64) ([]models.PaymentRequest, error)
	UpcomingPayments(ctx context.Context, customerID int64, until time.Time) ([]models.UpcomingPayment, error)
	RepaymentSummary(ctx context.Context, customerID int64, now time.Time) (*models.RepaymentSummary, error)
	MarkOverdueBefore(ctx context.Context, now time.Time) (int64, error)
	ReminderSchedules(ctx context.Context, now, until time.Time) ([]models.PaymentReminder, error)

	// Dashboard
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implements Store on top of lib/pq.
type Postgres struct {
	db *sql.DB
	q  queryer
}

// NewStore initializes a new Postgres-backed store.
func NewStore(db *sql.DB) *Postgres {
	return &Postgres{db: db, q: db}
}

// WithTx runs fn inside a single database transaction. Nested calls reuse
// the outer transaction.
func (r *Postgres) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := r.q.(*sql.Tx); ok {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Postgres{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// Bootstrap creates the schema and tables when they do not exist yet.
func (r *Postgres) Bootstrap(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS bnpl`,
		`CREATE TABLE IF NOT EXISTS bnpl.users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone_number VARCHAR(20) UNIQUE NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			user_type VARCHAR(16) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS bnpl.customers (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT UNIQUE NOT NULL REFERENCES bnpl.users(id),
			national_id_enc TEXT NOT NULL,
			national_id_hmac VARCHAR(64) UNIQUE NOT NULL,
			credit_limit NUMERIC(12,2) NOT NULL DEFAULT 0,
			used_limit NUMERIC(12,2) NOT NULL DEFAULT 0,
			available_limit NUMERIC(12,2) NOT NULL DEFAULT 0,
			address VARCHAR(500),
			city VARCHAR(100),
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			approved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bnpl.merchants (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT UNIQUE NOT NULL REFERENCES bnpl.users(id),
			business_name VARCHAR(255) NOT NULL,
			commercial_registration VARCHAR(50) UNIQUE NOT NULL,
			tax_number VARCHAR(50),
			business_category VARCHAR(100),
			balance NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_earnings NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_fees_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			bank_name VARCHAR(100),
			iban VARCHAR(34),
			business_address VARCHAR(500),
			city VARCHAR(100),
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			approved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bnpl.transactions (
			id BIGSERIAL PRIMARY KEY,
			reference_number VARCHAR(50) UNIQUE NOT NULL,
			customer_id BIGINT NOT NULL REFERENCES bnpl.customers(id),
			merchant_id BIGINT NOT NULL REFERENCES bnpl.merchants(id),
			amount NUMERIC(12,2) NOT NULL,
			fee_percent NUMERIC(6,3) NOT NULL,
			fee_amount NUMERIC(12,2) NOT NULL,
			merchant_receives NUMERIC(12,2) NOT NULL,
			product_name VARCHAR(255),
			description TEXT,
			status VARCHAR(16) NOT NULL,
			reject_reason TEXT,
			cancel_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			approved_at TIMESTAMPTZ,
			rejected_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			expires_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS bnpl.repayment_plans (
			id BIGSERIAL PRIMARY KEY,
			transaction_id BIGINT UNIQUE NOT NULL REFERENCES bnpl.transactions(id),
			customer_id BIGINT NOT NULL REFERENCES bnpl.customers(id),
			total_amount NUMERIC(12,2) NOT NULL,
			number_of_months INT NOT NULL,
			monthly_payment NUMERIC(12,2) NOT NULL,
			total_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			remaining_amount NUMERIC(12,2) NOT NULL,
			payments_made INT NOT NULL DEFAULT 0,
			payments_remaining INT NOT NULL,
			status VARCHAR(16) NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS bnpl.payment_schedules (
			id BIGSERIAL PRIMARY KEY,
			plan_id BIGINT NOT NULL REFERENCES bnpl.repayment_plans(id),
			installment_number INT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			amount_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			due_date TIMESTAMPTZ NOT NULL,
			status VARCHAR(32) NOT NULL,
			paid_at TIMESTAMPTZ,
			payment_requested_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (plan_id, installment_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON bnpl.transactions (customer_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_merchant ON bnpl.transactions (merchant_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_status ON bnpl.payment_schedules (status, due_date)`,
	}

	for _, stmt := range statements {
		if _, err := r.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}
	return nil
}
