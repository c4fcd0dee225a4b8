package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

const uniqueViolation = "23505"

// isDuplicate reports whether err is a unique-constraint violation.
func isDuplicate(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateUser creates a new user in the database
func (r *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO bnpl.users (email, phone_number, full_name, password_hash, user_type, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.q.QueryRowContext(ctx, query,
		user.Email, user.PhoneNumber, user.FullName, user.PasswordHash, user.UserType, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if isDuplicate(err) {
		return fmt.Errorf("user: %w", models.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PhoneNumber, &user.FullName,
		&user.PasswordHash, &user.UserType, &user.IsActive, &user.CreatedAt, &user.LastLogin)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

const userColumns = `id, email, phone_number, full_name, password_hash, user_type, is_active, created_at, last_login`

// FindUserByEmail retrieves a user by email
func (r *Postgres) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM bnpl.users WHERE email = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, email))
}

// FindUserByID retrieves a user by id
func (r *Postgres) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM bnpl.users WHERE id = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, id))
}

// FindUserByPhone retrieves a user by phone number
func (r *Postgres) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM bnpl.users WHERE phone_number = $1`
	return r.scanUser(r.q.QueryRowContext(ctx, query, phone))
}

// UpdateLastLogin stamps the user's last successful login
func (r *Postgres) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE bnpl.users SET last_login = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// DeactivateUser disables a login account
func (r *Postgres) DeactivateUser(ctx context.Context, userID int64) error {
	res, err := r.q.ExecContext(ctx, `UPDATE bnpl.users SET is_active = FALSE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	return nil
}
