package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bareqalyusr/bnpl-service/internal/models"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
)

// memStore is an in-memory Store used by the scenario tests. Getters return
// copies so that, like with real rows, mutations only stick once the
// corresponding Update method is called.
type memStore struct {
	mu sync.Mutex

	users        map[int64]*models.User
	customers    map[int64]*models.Customer
	merchants    map[int64]*models.Merchant
	transactions map[int64]*models.Transaction
	plans        map[int64]*models.RepaymentPlan
	schedules    map[int64]*models.PaymentSchedule

	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[int64]*models.User),
		customers:    make(map[int64]*models.Customer),
		merchants:    make(map[int64]*models.Merchant),
		transactions: make(map[int64]*models.Transaction),
		plans:        make(map[int64]*models.RepaymentPlan),
		schedules:    make(map[int64]*models.PaymentSchedule),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// Users

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.PhoneNumber == user.PhoneNumber {
			return fmt.Errorf("user: %w", models.ErrAlreadyExists)
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", models.ErrNotFound)
}

func (m *memStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", models.ErrNotFound)
}

func (m *memStore) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	u.LastLogin = &at
	return nil
}

func (m *memStore) DeactivateUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	u.IsActive = false
	return nil
}

// Customers

func (m *memStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.NationalIDHMAC == customer.NationalIDHMAC {
			return fmt.Errorf("customer: %w", models.ErrAlreadyExists)
		}
	}
	customer.ID = m.id()
	customer.CreatedAt = time.Now()
	cp := *customer
	m.customers[customer.ID] = &cp
	return nil
}

func (m *memStore) getCustomer(id int64) (*models.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCustomer(id)
}

func (m *memStore) GetCustomerForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	return m.GetCustomer(ctx, id)
}

func (m *memStore) GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
}

func (m *memStore) GetCustomerByIdentityDigest(ctx context.Context, digest string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.NationalIDHMAC == digest {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
}

func (m *memStore) UpdateCustomerLimits(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customer.ID]
	if !ok {
		return fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	c.CreditLimit = customer.CreditLimit
	c.UsedLimit = customer.UsedLimit
	c.AvailableLimit = customer.AvailableLimit
	return nil
}

func (m *memStore) UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customer.ID]
	if !ok {
		return fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	c.Address = customer.Address
	c.City = customer.City
	return nil
}

func (m *memStore) SetCustomerApproval(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customer.ID]
	if !ok {
		return fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	c.IsApproved = customer.IsApproved
	c.ApprovedAt = customer.ApprovedAt
	c.CreditLimit = customer.CreditLimit
	c.UsedLimit = customer.UsedLimit
	c.AvailableLimit = customer.AvailableLimit
	return nil
}

func (m *memStore) ListCustomers(ctx context.Context, approved *bool, limit, offset int) ([]models.CustomerAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CustomerAccount
	for _, c := range m.customers {
		if approved != nil && c.IsApproved != *approved {
			continue
		}
		u := m.users[c.UserID]
		out = append(out, models.CustomerAccount{
			Customer: *c, FullName: u.FullName, Email: u.Email, PhoneNumber: u.PhoneNumber,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) LookupCustomer(ctx context.Context, customerID int64) (*models.CustomerLookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customerID]
	if !ok || !c.IsApproved {
		return nil, fmt.Errorf("customer: %w", models.ErrNotFound)
	}
	u := m.users[c.UserID]
	return &models.CustomerLookup{
		ID: c.ID, FullName: u.FullName, PhoneNumber: u.PhoneNumber,
		CreditLimit: c.CreditLimit, AvailableLimit: c.AvailableLimit,
	}, nil
}

// Merchants

func (m *memStore) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range m.merchants {
		if mm.CommercialRegistration == merchant.CommercialRegistration {
			return fmt.Errorf("merchant: %w", models.ErrAlreadyExists)
		}
	}
	merchant.ID = m.id()
	merchant.CreatedAt = time.Now()
	cp := *merchant
	m.merchants[merchant.ID] = &cp
	return nil
}

func (m *memStore) GetMerchant(ctx context.Context, id int64) (*models.Merchant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.merchants[id]
	if !ok {
		return nil, fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	cp := *mm
	return &cp, nil
}

func (m *memStore) GetMerchantForUpdate(ctx context.Context, id int64) (*models.Merchant, error) {
	return m.GetMerchant(ctx, id)
}

func (m *memStore) GetMerchantByUserID(ctx context.Context, userID int64) (*models.Merchant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range m.merchants {
		if mm.UserID == userID {
			cp := *mm
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("merchant: %w", models.ErrNotFound)
}

func (m *memStore) GetMerchantByRegistration(ctx context.Context, registration string) (*models.Merchant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range m.merchants {
		if mm.CommercialRegistration == registration {
			cp := *mm
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("merchant: %w", models.ErrNotFound)
}

func (m *memStore) UpdateMerchantBalance(ctx context.Context, merchant *models.Merchant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.merchants[merchant.ID]
	if !ok {
		return fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	mm.Balance = merchant.Balance
	mm.TotalEarnings = merchant.TotalEarnings
	mm.TotalFeesPaid = merchant.TotalFeesPaid
	return nil
}

func (m *memStore) UpdateMerchantProfile(ctx context.Context, merchant *models.Merchant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.merchants[merchant.ID]
	if !ok {
		return fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	mm.BusinessCategory = merchant.BusinessCategory
	mm.BusinessAddress = merchant.BusinessAddress
	mm.City = merchant.City
	mm.BankName = merchant.BankName
	mm.IBAN = merchant.IBAN
	return nil
}

func (m *memStore) SetMerchantApproval(ctx context.Context, merchant *models.Merchant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.merchants[merchant.ID]
	if !ok {
		return fmt.Errorf("merchant: %w", models.ErrNotFound)
	}
	mm.IsApproved = merchant.IsApproved
	mm.ApprovedAt = merchant.ApprovedAt
	return nil
}

func (m *memStore) ListMerchants(ctx context.Context, approved *bool, limit, offset int) ([]models.MerchantAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MerchantAccount
	for _, mm := range m.merchants {
		if approved != nil && mm.IsApproved != *approved {
			continue
		}
		u := m.users[mm.UserID]
		out = append(out, models.MerchantAccount{
			Merchant: *mm, FullName: u.FullName, Email: u.Email, PhoneNumber: u.PhoneNumber,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) MerchantTransactionCounts(ctx context.Context, merchantID int64) (pending, approved, completed int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transactions {
		if t.MerchantID != merchantID {
			continue
		}
		switch t.Status {
		case models.TransactionPending:
			pending++
		case models.TransactionApproved:
			approved++
		case models.TransactionCompleted:
			completed++
		}
	}
	return pending, approved, completed, nil
}

// Transactions

func (m *memStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.ID = m.id()
	txn.CreatedAt = time.Now()
	cp := *txn
	m.transactions[txn.ID] = &cp
	return nil
}

func (m *memStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction: %w", models.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) GetTransactionForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	return m.GetTransaction(ctx, id)
}

func (m *memStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[txn.ID]; !ok {
		return fmt.Errorf("transaction: %w", models.ErrNotFound)
	}
	cp := *txn
	m.transactions[txn.ID] = &cp
	return nil
}

func (m *memStore) listTransactions(match func(*models.Transaction) bool) []models.Transaction {
	var out []models.Transaction
	for _, t := range m.transactions {
		if match(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListTransactionsByCustomer(ctx context.Context, customerID int64, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listTransactions(func(t *models.Transaction) bool {
		return t.CustomerID == customerID && (status == nil || t.Status == *status)
	}), nil
}

func (m *memStore) ListTransactionsByMerchant(ctx context.Context, merchantID int64, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listTransactions(func(t *models.Transaction) bool {
		return t.MerchantID == merchantID && (status == nil || t.Status == *status)
	}), nil
}

func (m *memStore) ListTransactions(ctx context.Context, status *models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listTransactions(func(t *models.Transaction) bool {
		return status == nil || t.Status == *status
	}), nil
}

func (m *memStore) PendingTransactionsForCustomer(ctx context.Context, customerID int64, now time.Time) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listTransactions(func(t *models.Transaction) bool {
		return t.CustomerID == customerID && t.Status == models.TransactionPending &&
			(t.ExpiresAt == nil || t.ExpiresAt.After(now))
	}), nil
}

func (m *memStore) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.transactions {
		if t.Status == models.TransactionPending && t.ExpiresAt != nil && t.ExpiresAt.Before(now) {
			t.Status = models.TransactionExpired
			n++
		}
	}
	return n, nil
}

// Repayment plans and schedules

func (m *memStore) CreatePlan(ctx context.Context, plan *models.RepaymentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.TransactionID == plan.TransactionID {
			return fmt.Errorf("repayment plan: %w", models.ErrAlreadyExists)
		}
	}
	plan.ID = m.id()
	plan.CreatedAt = time.Now()
	cp := *plan
	cp.Schedules = nil
	m.plans[plan.ID] = &cp

	for i := range plan.Schedules {
		s := &plan.Schedules[i]
		s.ID = m.id()
		s.PlanID = plan.ID
		s.CreatedAt = time.Now()
		scp := *s
		m.schedules[s.ID] = &scp
	}
	return nil
}

func (m *memStore) GetPlan(ctx context.Context, id int64) (*models.RepaymentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("repayment plan: %w", models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetPlanForUpdate(ctx context.Context, id int64) (*models.RepaymentPlan, error) {
	return m.GetPlan(ctx, id)
}

func (m *memStore) GetPlanByTransaction(ctx context.Context, transactionID int64) (*models.RepaymentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.TransactionID == transactionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("repayment plan: %w", models.ErrNotFound)
}

func (m *memStore) ListPlansByCustomer(ctx context.Context, customerID int64, status *models.PlanStatus) ([]models.RepaymentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RepaymentPlan
	for _, p := range m.plans {
		if p.CustomerID == customerID && (status == nil || p.Status == *status) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdatePlanProgress(ctx context.Context, plan *models.RepaymentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[plan.ID]
	if !ok {
		return fmt.Errorf("repayment plan: %w", models.ErrNotFound)
	}
	p.TotalPaid = plan.TotalPaid
	p.RemainingAmount = plan.RemainingAmount
	p.PaymentsMade = plan.PaymentsMade
	p.PaymentsRemaining = plan.PaymentsRemaining
	p.Status = plan.Status
	p.CompletedAt = plan.CompletedAt
	return nil
}

func (m *memStore) GetSchedule(ctx context.Context, id int64) (*models.PaymentSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, fmt.Errorf("payment schedule: %w", models.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetScheduleForUpdate(ctx context.Context, id int64) (*models.PaymentSchedule, error) {
	return m.GetSchedule(ctx, id)
}

func (m *memStore) ListSchedulesByPlan(ctx context.Context, planID int64) ([]models.PaymentSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentSchedule
	for _, s := range m.schedules {
		if s.PlanID == planID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (m *memStore) UpdateSchedule(ctx context.Context, schedule *models.PaymentSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[schedule.ID]; !ok {
		return fmt.Errorf("payment schedule: %w", models.ErrNotFound)
	}
	cp := *schedule
	m.schedules[schedule.ID] = &cp
	return nil
}

func (m *memStore) ListPaymentRequestsByMerchant(ctx context.Context, merchantID int64) ([]models.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentRequest
	for _, s := range m.schedules {
		if s.Status != models.PaymentRequested {
			continue
		}
		p := m.plans[s.PlanID]
		t := m.transactions[p.TransactionID]
		if t.MerchantID != merchantID {
			continue
		}
		c := m.customers[p.CustomerID]
		u := m.users[c.UserID]
		out = append(out, models.PaymentRequest{
			ScheduleID:           s.ID,
			PlanID:               p.ID,
			TransactionID:        t.ID,
			TransactionReference: t.ReferenceNumber,
			CustomerID:           c.ID,
			CustomerName:         u.FullName,
			InstallmentNumber:    s.InstallmentNumber,
			TotalInstallments:    p.NumberOfMonths,
			Amount:               s.Amount,
			DueDate:              s.DueDate,
			RequestedAt:          s.PaymentRequestedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduleID < out[j].ScheduleID })
	return out, nil
}

func (m *memStore) UpcomingPayments(ctx context.Context, customerID int64, until time.Time) ([]models.UpcomingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UpcomingPayment
	for _, s := range m.schedules {
		p := m.plans[s.PlanID]
		if p.CustomerID != customerID || s.DueDate.After(until) {
			continue
		}
		switch s.Status {
		case models.PaymentPending, models.PaymentOverdue, models.PaymentRequested:
		default:
			continue
		}
		t := m.transactions[p.TransactionID]
		out = append(out, models.UpcomingPayment{
			ScheduleID:           s.ID,
			PlanID:               p.ID,
			TransactionReference: t.ReferenceNumber,
			InstallmentNumber:    s.InstallmentNumber,
			Amount:               s.Amount,
			DueDate:              s.DueDate,
			Status:               s.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *memStore) RepaymentSummary(ctx context.Context, customerID int64, now time.Time) (*models.RepaymentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary := &models.RepaymentSummary{
		TotalOutstanding: decimal.Zero,
		TotalPaid:        decimal.Zero,
		NextDueAmount:    decimal.Zero,
	}
	for _, p := range m.plans {
		if p.CustomerID != customerID {
			continue
		}
		if p.Status == models.PlanActive {
			summary.ActivePlans++
		}
		if p.Status != models.PlanCompleted {
			summary.TotalOutstanding = summary.TotalOutstanding.Add(p.RemainingAmount)
		}
		summary.TotalPaid = summary.TotalPaid.Add(p.TotalPaid)
	}
	for _, s := range m.schedules {
		p := m.plans[s.PlanID]
		if p.CustomerID != customerID {
			continue
		}
		if s.Status == models.PaymentOverdue {
			summary.OverdueInstallments++
		}
		switch s.Status {
		case models.PaymentPending, models.PaymentOverdue, models.PaymentRequested:
			if summary.NextDueDate == nil || s.DueDate.Before(*summary.NextDueDate) {
				due := s.DueDate
				summary.NextDueDate = &due
				summary.NextDueAmount = s.Amount
			}
		}
	}
	return summary, nil
}

func (m *memStore) MarkOverdueBefore(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.schedules {
		if s.Status == models.PaymentPending && s.DueDate.Before(now) {
			s.Status = models.PaymentOverdue
			n++
		}
	}
	return n, nil
}

func (m *memStore) ReminderSchedules(ctx context.Context, now, until time.Time) ([]models.PaymentReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentReminder
	for _, s := range m.schedules {
		overdue := s.Status == models.PaymentOverdue
		dueSoon := s.Status == models.PaymentPending && !s.DueDate.Before(now) && !s.DueDate.After(until)
		if !overdue && !dueSoon {
			continue
		}
		p := m.plans[s.PlanID]
		c := m.customers[p.CustomerID]
		u := m.users[c.UserID]
		out = append(out, models.PaymentReminder{
			Email:    u.Email,
			FullName: u.FullName,
			Amount:   s.Amount,
			DueDate:  s.DueDate,
			Overdue:  overdue,
		})
	}
	return out, nil
}

// Dashboard

func (m *memStore) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.DashboardStats{}
	stats.Transactions.TotalValue = decimal.Zero
	stats.Transactions.TotalFees = decimal.Zero

	for _, c := range m.customers {
		stats.Customers.Total++
		if c.IsApproved {
			stats.Customers.Approved++
		} else {
			stats.Customers.Pending++
		}
	}
	for _, mm := range m.merchants {
		stats.Merchants.Total++
		if mm.IsApproved {
			stats.Merchants.Approved++
		} else {
			stats.Merchants.Pending++
		}
	}
	for _, t := range m.transactions {
		stats.Transactions.Total++
		switch t.Status {
		case models.TransactionPending:
			stats.Transactions.Pending++
		case models.TransactionApproved:
			stats.Transactions.Approved++
		case models.TransactionCompleted:
			stats.Transactions.Completed++
		}
		if t.Status == models.TransactionApproved || t.Status == models.TransactionCompleted {
			stats.Transactions.TotalValue = stats.Transactions.TotalValue.Add(t.Amount)
			stats.Transactions.TotalFees = stats.Transactions.TotalFees.Add(t.FeeAmount)
		}
	}
	return stats, nil
}
