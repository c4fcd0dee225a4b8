package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

const transactionColumns = `id, reference_number, customer_id, merchant_id, amount, fee_percent,
	fee_amount, merchant_receives, COALESCE(product_name, ''), COALESCE(description, ''), status,
	COALESCE(reject_reason, ''), COALESCE(cancel_reason, ''), created_at, approved_at, rejected_at,
	completed_at, expires_at`

// CreateTransaction creates a new purchase request
func (r *Postgres) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO bnpl.transactions (reference_number, customer_id, merchant_id, amount,
			fee_percent, fee_amount, merchant_receives, product_name, description, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query,
		txn.ReferenceNumber, txn.CustomerID, txn.MerchantID, txn.Amount,
		txn.FeePercent, txn.FeeAmount, txn.MerchantReceives,
		txn.ProductName, txn.Description, txn.Status, txn.ExpiresAt).
		Scan(&txn.ID, &txn.CreatedAt)
	if isDuplicate(err) {
		return fmt.Errorf("transaction: %w", models.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func scanTransactionRow(scan func(dest ...any) error) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := scan(&t.ID, &t.ReferenceNumber, &t.CustomerID, &t.MerchantID, &t.Amount, &t.FeePercent,
		&t.FeeAmount, &t.MerchantReceives, &t.ProductName, &t.Description, &t.Status,
		&t.RejectReason, &t.CancelReason, &t.CreatedAt, &t.ApprovedAt, &t.RejectedAt,
		&t.CompletedAt, &t.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// GetTransaction retrieves a transaction by id
func (r *Postgres) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bnpl.transactions WHERE id = $1`
	return scanTransactionRow(r.q.QueryRowContext(ctx, query, id).Scan)
}

// GetTransactionForUpdate retrieves a transaction by id with a row lock
func (r *Postgres) GetTransactionForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bnpl.transactions WHERE id = $1 FOR UPDATE`
	return scanTransactionRow(r.q.QueryRowContext(ctx, query, id).Scan)
}

// UpdateTransaction persists status, reasons and lifecycle timestamps
func (r *Postgres) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		UPDATE bnpl.transactions
		SET status = $2, reject_reason = $3, cancel_reason = $4, approved_at = $5,
			rejected_at = $6, completed_at = $7
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		txn.ID, txn.Status, txn.RejectReason, txn.CancelReason,
		txn.ApprovedAt, txn.RejectedAt, txn.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction: %w", models.ErrNotFound)
	}
	return nil
}

func (r *Postgres) listTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// ListTransactionsByCustomer returns a customer's transactions, newest first
func (r *Postgres) ListTransactionsByCustomer(ctx context.Context, customerID int64, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM bnpl.transactions
		WHERE customer_id = $1 AND ($2::VARCHAR IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	return r.listTransactions(ctx, query, customerID, status, limit, offset)
}

// ListTransactionsByMerchant returns a merchant's transactions, newest first
func (r *Postgres) ListTransactionsByMerchant(ctx context.Context, merchantID int64, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM bnpl.transactions
		WHERE merchant_id = $1 AND ($2::VARCHAR IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	return r.listTransactions(ctx, query, merchantID, status, limit, offset)
}

// ListTransactions returns all transactions (admin view), newest first
func (r *Postgres) ListTransactions(ctx context.Context, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM bnpl.transactions
		WHERE ($1::VARCHAR IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.listTransactions(ctx, query, status, limit, offset)
}

// PendingTransactionsForCustomer returns unexpired pending requests awaiting
// the customer's decision
func (r *Postgres) PendingTransactionsForCustomer(ctx context.Context, customerID int64, now time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM bnpl.transactions
		WHERE customer_id = $1 AND status = 'pending' AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC`
	return r.listTransactions(ctx, query, customerID, now)
}

// ExpirePendingBefore marks pending transactions past their expiry as expired.
// Returns the number of rows swept.
func (r *Postgres) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE bnpl.transactions SET status = 'expired' WHERE status = 'pending' AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired transactions: %w", err)
	}
	return n, nil
}

// DashboardStats aggregates the admin dashboard counters
func (r *Postgres) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_approved), COUNT(*) FILTER (WHERE NOT is_approved)
		FROM bnpl.customers`).
		Scan(&stats.Customers.Total, &stats.Customers.Approved, &stats.Customers.Pending)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	err = r.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_approved), COUNT(*) FILTER (WHERE NOT is_approved)
		FROM bnpl.merchants`).
		Scan(&stats.Merchants.Total, &stats.Merchants.Approved, &stats.Merchants.Pending)
	if err != nil {
		return nil, fmt.Errorf("failed to count merchants: %w", err)
	}

	err = r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COALESCE(SUM(amount) FILTER (WHERE status IN ('approved', 'completed')), 0),
			COALESCE(SUM(fee_amount) FILTER (WHERE status IN ('approved', 'completed')), 0)
		FROM bnpl.transactions`).
		Scan(&stats.Transactions.Total, &stats.Transactions.Pending, &stats.Transactions.Approved,
			&stats.Transactions.Completed, &stats.Transactions.TotalValue, &stats.Transactions.TotalFees)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	return stats, nil
}
