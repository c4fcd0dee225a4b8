package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
)

// MerchantProfile is the merchant's own account view.
type MerchantProfile struct {
	models.Merchant
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateMerchantProfileInput carries the editable profile fields. Empty
// fields are left unchanged.
type UpdateMerchantProfileInput struct {
	BusinessCategory string `json:"business_category"`
	BusinessAddress  string `json:"business_address"`
	City             string `json:"city"`
	BankName         string `json:"bank_name"`
	IBAN             string `json:"iban"`
}

// MerchantProfile returns the calling merchant's profile.
func (s *Service) MerchantProfile(ctx context.Context) (*MerchantProfile, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, merchant.UserID)
	if err != nil {
		return nil, err
	}
	return &MerchantProfile{
		Merchant:    *merchant,
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

// UpdateMerchantProfile updates business details on the calling merchant.
func (s *Service) UpdateMerchantProfile(ctx context.Context, in UpdateMerchantProfileInput) (*models.Merchant, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if in.BusinessCategory != "" {
		merchant.BusinessCategory = in.BusinessCategory
	}
	if in.BusinessAddress != "" {
		merchant.BusinessAddress = in.BusinessAddress
	}
	if in.City != "" {
		merchant.City = in.City
	}
	if in.BankName != "" {
		merchant.BankName = in.BankName
	}
	if in.IBAN != "" {
		merchant.IBAN = in.IBAN
	}
	if err := s.store.UpdateMerchantProfile(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// MerchantBalance returns the calling merchant's balance with transaction
// counts.
func (s *Service) MerchantBalance(ctx context.Context) (*models.MerchantBalance, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	pending, approved, completed, err := s.store.MerchantTransactionCounts(ctx, merchant.ID)
	if err != nil {
		return nil, err
	}
	return &models.MerchantBalance{
		Balance:               merchant.Balance,
		TotalEarnings:         merchant.TotalEarnings,
		TotalFeesPaid:         merchant.TotalFeesPaid,
		PendingTransactions:   pending,
		ApprovedTransactions:  approved,
		CompletedTransactions: completed,
	}, nil
}

// SearchCustomer lets a merchant look up an approved customer before sending
// a purchase request. Only approved customers are visible.
func (s *Service) SearchCustomer(ctx context.Context, customerID int64) (*models.CustomerLookup, error) {
	if _, err := s.merchantFromContext(ctx); err != nil {
		return nil, err
	}
	return s.store.LookupCustomer(ctx, customerID)
}

// MerchantTransactions lists the calling merchant's transactions.
func (s *Service) MerchantTransactions(ctx context.Context, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactionsByMerchant(ctx, merchant.ID, status, limit, offset)
}

// PaymentRequests lists installments waiting for the calling merchant's
// payment confirmation.
func (s *Service) PaymentRequests(ctx context.Context) ([]models.PaymentRequest, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPaymentRequestsByMerchant(ctx, merchant.ID)
}

// ApprovePaymentRequest is the merchant confirming receipt of one
// installment payment. In one database transaction the installment is marked
// paid, the plan progress advances and the paid amount is released back to
// the customer's available limit. Paying the final installment completes the
// plan and moves the underlying transaction to completed.
func (s *Service) ApprovePaymentRequest(ctx context.Context, scheduleID int64) (*models.PaymentSchedule, *models.RepaymentPlan, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	var schedule *models.PaymentSchedule
	var plan *models.RepaymentPlan

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		schedule, err = tx.GetScheduleForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		plan, err = tx.GetPlanForUpdate(ctx, schedule.PlanID)
		if err != nil {
			return err
		}
		txn, err := tx.GetTransaction(ctx, plan.TransactionID)
		if err != nil {
			return err
		}
		if txn.MerchantID != merchant.ID {
			return fmt.Errorf("%w: installment belongs to another merchant", models.ErrForbidden)
		}

		if err := schedule.MarkPaid(now); err != nil {
			return fmt.Errorf("cannot approve payment for installment in status %q: %w", schedule.Status, err)
		}
		if err := tx.UpdateSchedule(ctx, schedule); err != nil {
			return err
		}

		completed := plan.ApplyPayment(schedule.Amount, now)
		if err := tx.UpdatePlanProgress(ctx, plan); err != nil {
			return err
		}

		customer, err := tx.GetCustomerForUpdate(ctx, plan.CustomerID)
		if err != nil {
			return err
		}
		customer.Release(schedule.Amount)
		if err := tx.UpdateCustomerLimits(ctx, customer); err != nil {
			return err
		}

		if completed {
			if err := txn.Transition(models.TransactionCompleted); err != nil {
				return fmt.Errorf("cannot complete transaction in status %q: %w", txn.Status, err)
			}
			txn.CompletedAt = &now
			if err := tx.UpdateTransaction(ctx, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"schedule": schedule.ID,
		"plan":     plan.ID,
		"amount":   schedule.Amount.String(),
		"complete": plan.Status == models.PlanCompleted,
	}).Info("Installment payment approved")
	return schedule, plan, nil
}

// RejectPaymentRequest is the merchant declining a payment confirmation. The
// installment goes back to pending, or to overdue when its due date has
// passed. No ledger effect.
func (s *Service) RejectPaymentRequest(ctx context.Context, scheduleID int64) (*models.PaymentSchedule, error) {
	merchant, err := s.merchantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var schedule *models.PaymentSchedule
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		schedule, err = tx.GetScheduleForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		plan, err := tx.GetPlan(ctx, schedule.PlanID)
		if err != nil {
			return err
		}
		txn, err := tx.GetTransaction(ctx, plan.TransactionID)
		if err != nil {
			return err
		}
		if txn.MerchantID != merchant.ID {
			return fmt.Errorf("%w: installment belongs to another merchant", models.ErrForbidden)
		}
		if err := schedule.RevertRequest(now); err != nil {
			return fmt.Errorf("cannot reject payment for installment in status %q: %w", schedule.Status, err)
		}
		return tx.UpdateSchedule(ctx, schedule)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Installment payment rejected: schedule %d (merchant %d)", schedule.ID, merchant.ID)
	return schedule, nil
}
