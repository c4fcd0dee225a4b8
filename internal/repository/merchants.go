package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

const merchantColumns = `id, user_id, business_name, commercial_registration, COALESCE(tax_number, ''),
	COALESCE(business_category, ''), balance, total_earnings, total_fees_paid, COALESCE(bank_name, ''),
	COALESCE(iban, ''), COALESCE(business_address, ''), COALESCE(city, ''), is_approved, approved_at,
	created_at, updated_at`

// CreateMerchant creates a new merchant profile
func (r *Postgres) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	query := `
		INSERT INTO bnpl.merchants (user_id, business_name, commercial_registration, tax_number,
			business_category, balance, total_earnings, total_fees_paid, bank_name, iban,
			business_address, city, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		merchant.UserID, merchant.BusinessName, merchant.CommercialRegistration, merchant.TaxNumber,
		merchant.BusinessCategory, merchant.Balance, merchant.TotalEarnings, merchant.TotalFeesPaid,
		merchant.BankName, merchant.IBAN, merchant.BusinessAddress, merchant.City, merchant.IsApproved).
		Scan(&merchant.ID, &merchant.CreatedAt, &merchant.UpdatedAt)
	if isDuplicate(err) {
		return fmt.Errorf("merchant: %w", models.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

func (r *Postgres) scanMerchant(row *sql.Row) (*models.Merchant, error) {
	m := &models.Merchant{}
	err := row.Scan(&m.ID, &m.UserID, &m.BusinessName, &m.CommercialRegistration, &m.TaxNumber,
		&m.BusinessCategory, &m.Balance, &m.TotalEarnings, &m.TotalFeesPaid, &m.BankName,
		&m.IBAN, &m.BusinessAddress, &m.City, &m.IsApproved, &m.ApprovedAt,
		&m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find merchant: %w", err)
	}
	return m, nil
}

// GetMerchant retrieves a merchant by id
func (r *Postgres) GetMerchant(ctx context.Context, id int64) (*models.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM bnpl.merchants WHERE id = $1`
	return r.scanMerchant(r.q.QueryRowContext(ctx, query, id))
}

// GetMerchantForUpdate retrieves a merchant by id with a row lock
func (r *Postgres) GetMerchantForUpdate(ctx context.Context, id int64) (*models.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM bnpl.merchants WHERE id = $1 FOR UPDATE`
	return r.scanMerchant(r.q.QueryRowContext(ctx, query, id))
}

// GetMerchantByUserID retrieves the merchant profile owned by a user
func (r *Postgres) GetMerchantByUserID(ctx context.Context, userID int64) (*models.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM bnpl.merchants WHERE user_id = $1`
	return r.scanMerchant(r.q.QueryRowContext(ctx, query, userID))
}

// GetMerchantByRegistration retrieves a merchant by commercial registration
func (r *Postgres) GetMerchantByRegistration(ctx context.Context, registration string) (*models.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM bnpl.merchants WHERE commercial_registration = $1`
	return r.scanMerchant(r.q.QueryRowContext(ctx, query, registration))
}

// UpdateMerchantBalance persists the earnings ledger fields
func (r *Postgres) UpdateMerchantBalance(ctx context.Context, merchant *models.Merchant) error {
	query := `
		UPDATE bnpl.merchants
		SET balance = $2, total_earnings = $3, total_fees_paid = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		merchant.ID, merchant.Balance, merchant.TotalEarnings, merchant.TotalFeesPaid)
	if err != nil {
		return fmt.Errorf("failed to update merchant balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	return nil
}

// UpdateMerchantProfile persists business profile fields
func (r *Postgres) UpdateMerchantProfile(ctx context.Context, merchant *models.Merchant) error {
	query := `
		UPDATE bnpl.merchants
		SET business_name = $2, tax_number = $3, business_category = $4, business_address = $5,
			city = $6, bank_name = $7, iban = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		merchant.ID, merchant.BusinessName, merchant.TaxNumber, merchant.BusinessCategory,
		merchant.BusinessAddress, merchant.City, merchant.BankName, merchant.IBAN)
	if err != nil {
		return fmt.Errorf("failed to update merchant profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	return nil
}

// SetMerchantApproval persists approval state
func (r *Postgres) SetMerchantApproval(ctx context.Context, merchant *models.Merchant) error {
	query := `
		UPDATE bnpl.merchants
		SET is_approved = $2, approved_at = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, merchant.ID, merchant.IsApproved, merchant.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to set merchant approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	return nil
}

// ListMerchants returns merchant accounts joined with user info, optionally
// filtered by approval state
func (r *Postgres) ListMerchants(ctx context.Context, approved *bool, limit, offset int) ([]models.MerchantAccount, error) {
	query := `
		SELECT m.id, m.user_id, m.business_name, m.commercial_registration, COALESCE(m.tax_number, ''),
			COALESCE(m.business_category, ''), m.balance, m.total_earnings, m.total_fees_paid,
			COALESCE(m.bank_name, ''), COALESCE(m.iban, ''), COALESCE(m.business_address, ''),
			COALESCE(m.city, ''), m.is_approved, m.approved_at, m.created_at, m.updated_at,
			u.full_name, u.email, u.phone_number
		FROM bnpl.merchants m
		JOIN bnpl.users u ON u.id = m.user_id
		WHERE ($1::BOOLEAN IS NULL OR m.is_approved = $1)
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, approved, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchants: %w", err)
	}
	defer rows.Close()

	var accounts []models.MerchantAccount
	for rows.Next() {
		var a models.MerchantAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.BusinessName, &a.CommercialRegistration, &a.TaxNumber,
			&a.BusinessCategory, &a.Balance, &a.TotalEarnings, &a.TotalFeesPaid, &a.BankName,
			&a.IBAN, &a.BusinessAddress, &a.City, &a.IsApproved, &a.ApprovedAt,
			&a.CreatedAt, &a.UpdatedAt, &a.FullName, &a.Email, &a.PhoneNumber); err != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// MerchantTransactionCounts returns transaction counters for the balance view
func (r *Postgres) MerchantTransactionCounts(ctx context.Context, merchantID int64) (pending, approved, completed int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM bnpl.transactions
		WHERE merchant_id = $1`
	err = r.q.QueryRowContext(ctx, query, merchantID).Scan(&pending, &approved, &completed)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count merchant transactions: %w", err)
	}
	return pending, approved, completed, nil
}
