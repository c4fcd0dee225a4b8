package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bareqalyusr/bnpl-service/internal/config"
	"github.com/bareqalyusr/bnpl-service/internal/middleware"
	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
)

// Notifier sends lifecycle emails. Sends are best-effort: a failed
// notification is logged and never fails the operation that triggered it.
type Notifier interface {
	SendPaymentReminder(to, name string, dueDate time.Time, amount decimal.Decimal, overdue bool) error
	SendPurchaseRequest(to, name, businessName string, amount decimal.Decimal, reference string, expiresAt time.Time) error
	SendPurchaseDecision(to, name, reference string, approved bool) error
}

// KeyRateSource supplies the central-bank key rate for the dashboard widget.
type KeyRateSource interface {
	GetKeyRate() (float64, error)
}

// Service handles business logic
type Service struct {
	store    repository.Store
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
	rates    KeyRateSource
}

// NewService initializes a new service. notifier and rates may be nil; the
// corresponding features degrade to no-ops.
func NewService(store repository.Store, log *logrus.Logger, cfg *config.Config, notifier Notifier, rates KeyRateSource) *Service {
	return &Service{store: store, log: log, config: cfg, notifier: notifier, rates: rates}
}

// customerFromContext resolves the calling customer. Fails with ErrForbidden
// when the caller is not a customer.
func (s *Service) customerFromContext(ctx context.Context) (*models.Customer, error) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	userType, _ := middleware.UserType(ctx)
	if userType != models.UserTypeCustomer {
		return nil, fmt.Errorf("%w: customer role required", models.ErrForbidden)
	}
	return s.store.GetCustomerByUserID(ctx, userID)
}

// merchantFromContext resolves the calling merchant. Fails with ErrForbidden
// when the caller is not a merchant.
func (s *Service) merchantFromContext(ctx context.Context) (*models.Merchant, error) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	userType, _ := middleware.UserType(ctx)
	if userType != models.UserTypeMerchant {
		return nil, fmt.Errorf("%w: merchant role required", models.ErrForbidden)
	}
	return s.store.GetMerchantByUserID(ctx, userID)
}

// requireAdmin fails unless the caller is an admin.
func (s *Service) requireAdmin(ctx context.Context) error {
	if _, ok := middleware.UserID(ctx); !ok {
		return models.ErrUnauthorized
	}
	if userType, _ := middleware.UserType(ctx); userType != models.UserTypeAdmin {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return nil
}

// userEmailForCustomer fetches contact details for notifications.
func (s *Service) userForCustomer(ctx context.Context, customer *models.Customer) (*models.User, error) {
	return s.store.FindUserByID(ctx, customer.UserID)
}
