package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
)

// Dashboard aggregates platform counters for the admin overview. The key
// rate lookup is best-effort: on failure the dashboard still renders without
// it.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	stats, err := s.store.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.rates != nil {
		if rate, err := s.rates.GetKeyRate(); err != nil {
			s.log.Warnf("Failed to fetch key rate: %v", err)
		} else {
			stats.KeyRate = &rate
		}
	}
	return stats, nil
}

// ListCustomers returns customer accounts, optionally filtered by approval.
func (s *Service) ListCustomers(ctx context.Context, approved *bool, limit, offset int) ([]models.CustomerAccount, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCustomers(ctx, approved, limit, offset)
}

// ListMerchants returns merchant accounts, optionally filtered by approval.
func (s *Service) ListMerchants(ctx context.Context, approved *bool, limit, offset int) ([]models.MerchantAccount, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.ListMerchants(ctx, approved, limit, offset)
}

// ListAllTransactions returns every transaction on the platform.
func (s *Service) ListAllTransactions(ctx context.Context, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, status, limit, offset)
}

// ApproveCustomer approves a customer account and grants its initial credit
// limit.
func (s *Service) ApproveCustomer(ctx context.Context, customerID int64, creditLimit decimal.Decimal) (*models.Customer, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !creditLimit.IsPositive() {
		return nil, fmt.Errorf("%w: credit limit must be positive", models.ErrInvalidLimit)
	}

	now := time.Now().UTC()
	var customer *models.Customer
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		customer, err = tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if customer.IsApproved {
			return fmt.Errorf("%w: customer is already approved", models.ErrInvalidState)
		}
		if err := customer.SetLimit(creditLimit); err != nil {
			return err
		}
		customer.IsApproved = true
		customer.ApprovedAt = &now
		return tx.SetCustomerApproval(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Customer %d approved with credit limit %s", customer.ID, creditLimit)
	return customer, nil
}

// RejectCustomer declines a customer application and disables its login.
func (s *Service) RejectCustomer(ctx context.Context, customerID int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		customer, err := tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if customer.IsApproved {
			return fmt.Errorf("%w: customer is already approved", models.ErrInvalidState)
		}
		return tx.DeactivateUser(ctx, customer.UserID)
	})
	if err != nil {
		return err
	}

	s.log.Infof("Customer %d rejected", customerID)
	return nil
}

// SetCreditLimit changes an approved customer's credit limit. The new limit
// must cover what the customer has already drawn.
func (s *Service) SetCreditLimit(ctx context.Context, customerID int64, newLimit decimal.Decimal) (*models.Customer, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !newLimit.IsPositive() {
		return nil, fmt.Errorf("%w: credit limit must be positive", models.ErrInvalidLimit)
	}

	var customer *models.Customer
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		customer, err = tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if !customer.IsApproved {
			return fmt.Errorf("%w: customer is not approved", models.ErrInvalidState)
		}
		if err := customer.SetLimit(newLimit); err != nil {
			return fmt.Errorf("%w: new limit %s is below used limit %s",
				models.ErrInvalidLimit, newLimit, customer.UsedLimit)
		}
		return tx.UpdateCustomerLimits(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Customer %d credit limit set to %s", customer.ID, newLimit)
	return customer, nil
}

// ApproveMerchant approves a merchant account so it can send purchase
// requests.
func (s *Service) ApproveMerchant(ctx context.Context, merchantID int64) (*models.Merchant, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var merchant *models.Merchant
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		merchant, err = tx.GetMerchantForUpdate(ctx, merchantID)
		if err != nil {
			return err
		}
		if merchant.IsApproved {
			return fmt.Errorf("%w: merchant is already approved", models.ErrInvalidState)
		}
		merchant.IsApproved = true
		merchant.ApprovedAt = &now
		return tx.SetMerchantApproval(ctx, merchant)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Merchant %d approved", merchant.ID)
	return merchant, nil
}

// RejectMerchant declines a merchant application and disables its login.
func (s *Service) RejectMerchant(ctx context.Context, merchantID int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		merchant, err := tx.GetMerchantForUpdate(ctx, merchantID)
		if err != nil {
			return err
		}
		if merchant.IsApproved {
			return fmt.Errorf("%w: merchant is already approved", models.ErrInvalidState)
		}
		return tx.DeactivateUser(ctx, merchant.UserID)
	})
	if err != nil {
		return err
	}

	s.log.Infof("Merchant %d rejected", merchantID)
	return nil
}
