package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
	"github.com/bareqalyusr/bnpl-service/internal/token"
	"github.com/bareqalyusr/bnpl-service/internal/utils"
)

// TokenPair is returned on successful authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterCustomerInput carries the customer registration form.
type RegisterCustomerInput struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
	NationalID  string `json:"national_id"`
	Address     string `json:"address"`
	City        string `json:"city"`
}

// RegisterMerchantInput carries the merchant registration form.
type RegisterMerchantInput struct {
	Email                  string `json:"email"`
	PhoneNumber            string `json:"phone_number"`
	FullName               string `json:"full_name"`
	Password               string `json:"password"`
	BusinessName           string `json:"business_name"`
	CommercialRegistration string `json:"commercial_registration"`
	TaxNumber              string `json:"tax_number"`
	BusinessCategory       string `json:"business_category"`
	BusinessAddress        string `json:"business_address"`
	City                   string `json:"city"`
	BankName               string `json:"bank_name"`
	IBAN                   string `json:"iban"`
}

func validateCredentials(email, phone, fullName, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email is required", models.ErrValidation)
	}
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", models.ErrValidation)
	}
	if fullName == "" {
		return fmt.Errorf("%w: full name is required", models.ErrValidation)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", models.ErrValidation)
	}
	return nil
}

// RegisterCustomer creates a login account plus an unapproved customer
// profile with zero limits. Credit is only granted by admin approval.
func (s *Service) RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (*models.User, *models.Customer, error) {
	if err := validateCredentials(in.Email, in.PhoneNumber, in.FullName, in.Password); err != nil {
		return nil, nil, err
	}
	if in.NationalID == "" {
		return nil, nil, fmt.Errorf("%w: national id is required", models.ErrValidation)
	}

	digest := utils.DigestIdentity(in.NationalID, s.config.HMACSecret)
	if _, err := s.store.GetCustomerByIdentityDigest(ctx, digest); err == nil {
		return nil, nil, fmt.Errorf("national id: %w", models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, nil, err
	}

	encrypted, err := utils.EncryptIdentity(in.NationalID, s.config.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt national id: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		FullName:     in.FullName,
		PasswordHash: string(hashedPassword),
		UserType:     models.UserTypeCustomer,
		IsActive:     true,
	}
	customer := &models.Customer{
		NationalIDEnc:  encrypted,
		NationalIDHMAC: digest,
		CreditLimit:    decimal.Zero,
		UsedLimit:      decimal.Zero,
		AvailableLimit: decimal.Zero,
		Address:        in.Address,
		City:           in.City,
		IsApproved:     false,
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		customer.UserID = user.ID
		return tx.CreateCustomer(ctx, customer)
	})
	if err != nil {
		return nil, nil, err
	}

	customer.NationalID = in.NationalID
	s.log.Infof("Customer registered: %s (customer %d)", user.Email, customer.ID)
	return user, customer, nil
}

// RegisterMerchant creates a login account plus an unapproved merchant
// profile with a zero balance.
func (s *Service) RegisterMerchant(ctx context.Context, in RegisterMerchantInput) (*models.User, *models.Merchant, error) {
	if err := validateCredentials(in.Email, in.PhoneNumber, in.FullName, in.Password); err != nil {
		return nil, nil, err
	}
	if in.BusinessName == "" || in.CommercialRegistration == "" {
		return nil, nil, fmt.Errorf("%w: business name and commercial registration are required", models.ErrValidation)
	}

	if _, err := s.store.GetMerchantByRegistration(ctx, in.CommercialRegistration); err == nil {
		return nil, nil, fmt.Errorf("commercial registration: %w", models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		FullName:     in.FullName,
		PasswordHash: string(hashedPassword),
		UserType:     models.UserTypeMerchant,
		IsActive:     true,
	}
	merchant := &models.Merchant{
		BusinessName:           in.BusinessName,
		CommercialRegistration: in.CommercialRegistration,
		TaxNumber:              in.TaxNumber,
		BusinessCategory:       in.BusinessCategory,
		Balance:                decimal.Zero,
		TotalEarnings:          decimal.Zero,
		TotalFeesPaid:          decimal.Zero,
		BankName:               in.BankName,
		IBAN:                   in.IBAN,
		BusinessAddress:        in.BusinessAddress,
		City:                   in.City,
		IsApproved:             false,
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		merchant.UserID = user.ID
		return tx.CreateMerchant(ctx, merchant)
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Infof("Merchant registered: %s (merchant %d)", user.Email, merchant.ID)
	return user, merchant, nil
}

func (s *Service) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := token.Create(user, token.TypeAccess, s.config.AccessTokenTTL, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := token.Create(user, token.TypeRefresh, s.config.RefreshTokenTTL, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", models.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	return user, nil
}

// Login authenticates any user and returns a token pair
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.log.Warnf("Failed to update last login for user %d: %v", user.ID, err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return pair, user, nil
}

// AdminLogin authenticates an admin account; other roles are rejected
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	if user.UserType != models.UserTypeAdmin {
		return nil, nil, fmt.Errorf("%w: not an admin account", models.ErrUnauthorized)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.log.Warnf("Failed to update last login for user %d: %v", user.ID, err)
	}

	s.log.Infof("Admin logged in: %s", user.Email)
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := token.Parse(refreshToken, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", models.ErrUnauthorized)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, fmt.Errorf("%w: account unavailable", models.ErrUnauthorized)
	}

	return s.issueTokens(user)
}
