package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
	"github.com/bareqalyusr/bnpl-service/internal/utils"
)

// CreateTransactionInput carries the merchant's purchase request form.
type CreateTransactionInput struct {
	CustomerID  int64           `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
}

// CreateTransaction lets a merchant send a purchase request to a customer.
// The amount must fit within the customer's available limit at creation time;
// otherwise the call fails with ErrExceedsLimit. The request expires after
// the configured TTL if the customer does not respond.
func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*models.Transaction, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !merchant.IsApproved {
		return nil, fmt.Errorf("%w: merchant account is not approved", models.ErrForbidden)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}

	customer, err := s.store.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsApproved {
		return nil, fmt.Errorf("%w: customer account is not approved", models.ErrValidation)
	}
	if in.Amount.GreaterThan(customer.AvailableLimit) {
		return nil, fmt.Errorf("%w: available %s, required %s",
			models.ErrExceedsLimit, customer.AvailableLimit, in.Amount)
	}

	fee, receives := models.CalculateFee(in.Amount, s.config.FeePercent)
	expiresAt := time.Now().UTC().Add(s.config.TransactionTTL)

	txn := &models.Transaction{
		ReferenceNumber:  utils.GenerateReferenceNumber("TXN"),
		CustomerID:       customer.ID,
		MerchantID:       merchant.ID,
		Amount:           in.Amount,
		FeePercent:       s.config.FeePercent,
		FeeAmount:        fee,
		MerchantReceives: receives,
		ProductName:      in.ProductName,
		Description:      in.Description,
		Status:           models.TransactionPending,
		ExpiresAt:        &expiresAt,
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"reference": txn.ReferenceNumber,
		"merchant":  merchant.ID,
		"customer":  customer.ID,
		"amount":    txn.Amount.String(),
	}).Info("Transaction created")

	s.notifyPurchaseRequest(ctx, customer, merchant, txn)
	return txn, nil
}

func (s *Service) notifyPurchaseRequest(ctx context.Context, customer *models.Customer, merchant *models.Merchant, txn *models.Transaction) {
	if s.notifier == nil || txn.ExpiresAt == nil {
		return
	}
	user, err := s.userForCustomer(ctx, customer)
	if err != nil {
		s.log.Warnf("Failed to resolve customer %d for notification: %v", customer.ID, err)
		return
	}
	if err := s.notifier.SendPurchaseRequest(user.Email, user.FullName, merchant.BusinessName,
		txn.Amount, txn.ReferenceNumber, *txn.ExpiresAt); err != nil {
		s.log.Warnf("Failed to send purchase request notification: %v", err)
	}
}

func (s *Service) notifyPurchaseDecision(ctx context.Context, customer *models.Customer, txn *models.Transaction, approved bool) {
	if s.notifier == nil {
		return
	}
	user, err := s.userForCustomer(ctx, customer)
	if err != nil {
		s.log.Warnf("Failed to resolve customer %d for notification: %v", customer.ID, err)
		return
	}
	if err := s.notifier.SendPurchaseDecision(user.Email, user.FullName, txn.ReferenceNumber, approved); err != nil {
		s.log.Warnf("Failed to send purchase decision notification: %v", err)
	}
}

// ApproveTransaction is the customer accepting a pending purchase request.
// In one database transaction it reserves credit, settles the merchant
// (net amount plus fee bookkeeping) and creates the repayment plan with its
// schedule. A second approval of the same transaction fails with
// ErrInvalidState because the row is no longer pending once the first commit
// wins the lock.
func (s *Service) ApproveTransaction(ctx context.Context, transactionID int64, months int) (*models.Transaction, *models.RepaymentPlan, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	var txn *models.Transaction
	var plan *models.RepaymentPlan

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		txn, err = tx.GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.CustomerID != customer.ID {
			return fmt.Errorf("%w: transaction belongs to another customer", models.ErrForbidden)
		}
		if txn.IsExpired(now) {
			// Sweep may not have run yet; expire in place and refuse.
			txn.Status = models.TransactionExpired
			if err := tx.UpdateTransaction(ctx, txn); err != nil {
				return err
			}
			return fmt.Errorf("%w: transaction has expired", models.ErrInvalidState)
		}
		if err := txn.Transition(models.TransactionApproved); err != nil {
			return fmt.Errorf("cannot approve transaction in status %q: %w", txn.Status, err)
		}
		txn.ApprovedAt = &now

		locked, err := tx.GetCustomerForUpdate(ctx, customer.ID)
		if err != nil {
			return err
		}
		if err := locked.Reserve(txn.Amount); err != nil {
			return err
		}
		if err := tx.UpdateCustomerLimits(ctx, locked); err != nil {
			return err
		}

		merchant, err := tx.GetMerchantForUpdate(ctx, txn.MerchantID)
		if err != nil {
			return err
		}
		merchant.Credit(txn.MerchantReceives, txn.FeeAmount)
		if err := tx.UpdateMerchantBalance(ctx, merchant); err != nil {
			return err
		}

		plan, err = models.NewRepaymentPlan(txn, months, now)
		if err != nil {
			return fmt.Errorf("%w: number of months must be between %d and %d",
				models.ErrValidation, models.MinPlanMonths, models.MaxPlanMonths)
		}
		if err := tx.CreatePlan(ctx, plan); err != nil {
			return err
		}

		return tx.UpdateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"reference": txn.ReferenceNumber,
		"months":    months,
		"monthly":   plan.MonthlyPayment.String(),
	}).Info("Transaction approved")

	s.notifyPurchaseDecision(ctx, customer, txn, true)
	return txn, plan, nil
}

// RejectTransaction is the customer declining a pending purchase request.
// No ledger effect.
func (s *Service) RejectTransaction(ctx context.Context, transactionID int64, reason string) (*models.Transaction, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var txn *models.Transaction
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		txn, err = tx.GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.CustomerID != customer.ID {
			return fmt.Errorf("%w: transaction belongs to another customer", models.ErrForbidden)
		}
		if err := txn.Transition(models.TransactionRejected); err != nil {
			return fmt.Errorf("cannot reject transaction in status %q: %w", txn.Status, err)
		}
		txn.RejectedAt = &now
		txn.RejectReason = reason
		return tx.UpdateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s rejected by customer %d", txn.ReferenceNumber, customer.ID)
	s.notifyPurchaseDecision(ctx, customer, txn, false)
	return txn, nil
}

// CancelTransaction is the merchant withdrawing its own pending request.
// No ledger effect.
func (s *Service) CancelTransaction(ctx context.Context, transactionID int64, reason string) (*models.Transaction, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		txn, err = tx.GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.MerchantID != merchant.ID {
			return fmt.Errorf("%w: transaction belongs to another merchant", models.ErrForbidden)
		}
		if err := txn.Transition(models.TransactionCancelled); err != nil {
			return fmt.Errorf("cannot cancel transaction in status %q: %w", txn.Status, err)
		}
		txn.CancelReason = reason
		return tx.UpdateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s cancelled by merchant %d", txn.ReferenceNumber, merchant.ID)
	return txn, nil
}
