package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

const customerColumns = `id, user_id, national_id_enc, national_id_hmac, credit_limit, used_limit,
	available_limit, COALESCE(address, ''), COALESCE(city, ''), is_approved, approved_at, created_at, updated_at`

// CreateCustomer creates a new customer profile
func (r *Postgres) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO bnpl.customers (user_id, national_id_enc, national_id_hmac,
			credit_limit, used_limit, available_limit, address, city, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		customer.UserID, customer.NationalIDEnc, customer.NationalIDHMAC,
		customer.CreditLimit, customer.UsedLimit, customer.AvailableLimit,
		customer.Address, customer.City, customer.IsApproved).
		Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if isDuplicate(err) {
		return fmt.Errorf("customer: %w", models.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *Postgres) scanCustomer(row *sql.Row) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(&c.ID, &c.UserID, &c.NationalIDEnc, &c.NationalIDHMAC,
		&c.CreditLimit, &c.UsedLimit, &c.AvailableLimit,
		&c.Address, &c.City, &c.IsApproved, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

// GetCustomer retrieves a customer by id
func (r *Postgres) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM bnpl.customers WHERE id = $1`
	return r.scanCustomer(r.q.QueryRowContext(ctx, query, id))
}

// GetCustomerForUpdate retrieves a customer by id with a row lock
func (r *Postgres) GetCustomerForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM bnpl.customers WHERE id = $1 FOR UPDATE`
	return r.scanCustomer(r.q.QueryRowContext(ctx, query, id))
}

// GetCustomerByUserID retrieves the customer profile owned by a user
func (r *Postgres) GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM bnpl.customers WHERE user_id = $1`
	return r.scanCustomer(r.q.QueryRowContext(ctx, query, userID))
}

// GetCustomerByIdentityDigest retrieves a customer by national-id digest
func (r *Postgres) GetCustomerByIdentityDigest(ctx context.Context, digest string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM bnpl.customers WHERE national_id_hmac = $1`
	return r.scanCustomer(r.q.QueryRowContext(ctx, query, digest))
}

// UpdateCustomerLimits persists the credit ledger fields
func (r *Postgres) UpdateCustomerLimits(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE bnpl.customers
		SET credit_limit = $2, used_limit = $3, available_limit = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		customer.ID, customer.CreditLimit, customer.UsedLimit, customer.AvailableLimit)
	if err != nil {
		return fmt.Errorf("failed to update customer limits: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	return nil
}

// UpdateCustomerProfile persists address fields
func (r *Postgres) UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE bnpl.customers
		SET address = $2, city = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, customer.ID, customer.Address, customer.City)
	if err != nil {
		return fmt.Errorf("failed to update customer profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	return nil
}

// SetCustomerApproval persists approval state along with the granted limits
func (r *Postgres) SetCustomerApproval(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE bnpl.customers
		SET is_approved = $2, approved_at = $3, credit_limit = $4, used_limit = $5,
			available_limit = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query,
		customer.ID, customer.IsApproved, customer.ApprovedAt,
		customer.CreditLimit, customer.UsedLimit, customer.AvailableLimit)
	if err != nil {
		return fmt.Errorf("failed to set customer approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	return nil
}

// ListCustomers returns customer accounts joined with user info, optionally
// filtered by approval state
func (r *Postgres) ListCustomers(ctx context.Context, approved *bool, limit, offset int) ([]models.CustomerAccount, error) {
	query := `
		SELECT c.id, c.user_id, c.national_id_enc, c.national_id_hmac, c.credit_limit, c.used_limit,
			c.available_limit, COALESCE(c.address, ''), COALESCE(c.city, ''), c.is_approved,
			c.approved_at, c.created_at, c.updated_at, u.full_name, u.email, u.phone_number
		FROM bnpl.customers c
		JOIN bnpl.users u ON u.id = c.user_id
		WHERE ($1::BOOLEAN IS NULL OR c.is_approved = $1)
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, approved, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var accounts []models.CustomerAccount
	for rows.Next() {
		var a models.CustomerAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.NationalIDEnc, &a.NationalIDHMAC,
			&a.CreditLimit, &a.UsedLimit, &a.AvailableLimit, &a.Address, &a.City,
			&a.IsApproved, &a.ApprovedAt, &a.CreatedAt, &a.UpdatedAt,
			&a.FullName, &a.Email, &a.PhoneNumber); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// LookupCustomer returns the merchant-facing view of an approved customer
func (r *Postgres) LookupCustomer(ctx context.Context, customerID int64) (*models.CustomerLookup, error) {
	query := `
		SELECT c.id, u.full_name, u.phone_number, c.credit_limit, c.available_limit
		FROM bnpl.customers c
		JOIN bnpl.users u ON u.id = c.user_id
		WHERE c.id = $1 AND c.is_approved = TRUE`
	l := &models.CustomerLookup{}
	err := r.q.QueryRowContext(ctx, query, customerID).
		Scan(&l.ID, &l.FullName, &l.PhoneNumber, &l.CreditLimit, &l.AvailableLimit)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	return l, nil
}
