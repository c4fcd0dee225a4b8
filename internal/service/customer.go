package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
	"github.com/bareqalyusr/bnpl-service/internal/utils"
)

// CustomerProfile is the customer's own account view.
type CustomerProfile struct {
	models.Customer
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateCustomerProfileInput carries the editable profile fields. Empty
// fields are left unchanged.
type UpdateCustomerProfileInput struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

// CustomerProfile returns the calling customer's profile with the national
// id decrypted for display.
func (s *Service) CustomerProfile(ctx context.Context) (*CustomerProfile, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userForCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}

	if nationalID, err := utils.DecryptIdentity(customer.NationalIDEnc, s.config.EncryptionKey); err != nil {
		s.log.Warnf("Failed to decrypt national id for customer %d: %v", customer.ID, err)
	} else {
		customer.NationalID = nationalID
	}

	return &CustomerProfile{
		Customer:    *customer,
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

// UpdateCustomerProfile updates address fields on the calling customer.
func (s *Service) UpdateCustomerProfile(ctx context.Context, in UpdateCustomerProfileInput) (*models.Customer, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if in.Address != "" {
		customer.Address = in.Address
	}
	if in.City != "" {
		customer.City = in.City
	}
	if err := s.store.UpdateCustomerProfile(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// PendingTransactions lists unexpired purchase requests awaiting the calling
// customer's decision.
func (s *Service) PendingTransactions(ctx context.Context) ([]models.Transaction, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.PendingTransactionsForCustomer(ctx, customer.ID, time.Now().UTC())
}

// CustomerTransactions lists the calling customer's transaction history.
func (s *Service) CustomerTransactions(ctx context.Context, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactionsByCustomer(ctx, customer.ID, status, limit, offset)
}

// Plans lists the calling customer's repayment plans.
func (s *Service) Plans(ctx context.Context, status *models.PlanStatus) ([]models.RepaymentPlan, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPlansByCustomer(ctx, customer.ID, status)
}

// Plan returns one of the calling customer's plans with its full schedule.
func (s *Service) Plan(ctx context.Context, planID int64) (*models.RepaymentPlan, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.CustomerID != customer.ID {
		return nil, fmt.Errorf("%w: plan belongs to another customer", models.ErrForbidden)
	}

	plan.Schedules, err = s.store.ListSchedulesByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// RequestPayment is the customer declaring intent to pay one installment.
// The installment moves to payment_requested and waits for the merchant to
// confirm receipt. No ledger effect until the merchant approves.
func (s *Service) RequestPayment(ctx context.Context, scheduleID int64) (*models.PaymentSchedule, error) {
	customer, err := s.customerFromContext(ctx)
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
		if plan.CustomerID != customer.ID {
			return fmt.Errorf("%w: installment belongs to another customer", models.ErrForbidden)
		}
		if err := schedule.RequestPayment(now); err != nil {
			return fmt.Errorf("cannot request payment for installment in status %q: %w", schedule.Status, err)
		}
		return tx.UpdateSchedule(ctx, schedule)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Payment requested for installment %d (customer %d)", schedule.ID, customer.ID)
	return schedule, nil
}

// Upcoming lists the calling customer's unpaid installments due within the
// given window.
func (s *Service) Upcoming(ctx context.Context, window time.Duration) ([]models.UpcomingPayment, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.UpcomingPayments(ctx, customer.ID, time.Now().UTC().Add(window))
}

// Summary aggregates the calling customer's open repayment obligations.
func (s *Service) Summary(ctx context.Context) (*models.RepaymentSummary, error) {
	customer, err := s.customerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.RepaymentSummary(ctx, customer.ID, time.Now().UTC())
}
