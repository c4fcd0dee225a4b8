package models

import "github.com/shopspring/decimal"

// CustomerStats are admin dashboard counters for customer accounts.
type CustomerStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

// MerchantStats are admin dashboard counters for merchant accounts.
type MerchantStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

// TransactionStats are admin dashboard counters and totals. Value and fee
// totals cover approved and completed transactions.
type TransactionStats struct {
	Total      int             `json:"total"`
	Pending    int             `json:"pending"`
	Approved   int             `json:"approved"`
	Completed  int             `json:"completed"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalFees  decimal.Decimal `json:"total_fees"`
}

// DashboardStats is the admin dashboard payload. KeyRate is a best-effort
// widget; it is omitted when the upstream fetch fails.
type DashboardStats struct {
	Customers    CustomerStats    `json:"customers"`
	Merchants    MerchantStats    `json:"merchants"`
	Transactions TransactionStats `json:"transactions"`
	KeyRate      *float64         `json:"key_rate,omitempty"`
}
