package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedCustomer(creditLimit string) *Customer {
	limit := decimal.RequireFromString(creditLimit)
	return &Customer{
		CreditLimit:    limit,
		UsedLimit:      decimal.Zero,
		AvailableLimit: limit,
		IsApproved:     true,
	}
}

func TestCustomerReserve(t *testing.T) {
	c := approvedCustomer("1000")

	require.NoError(t, c.Reserve(decimal.RequireFromString("400")))
	assert.True(t, c.UsedLimit.Equal(decimal.RequireFromString("400")))
	assert.True(t, c.AvailableLimit.Equal(decimal.RequireFromString("600")))

	require.NoError(t, c.Reserve(decimal.RequireFromString("600")))
	assert.True(t, c.AvailableLimit.IsZero())

	err := c.Reserve(decimal.RequireFromString("0.01"))
	assert.ErrorIs(t, err, ErrInsufficientLimit)
	assert.True(t, c.UsedLimit.Equal(c.CreditLimit), "failed reserve must not change the ledger")
}

func TestCustomerRelease(t *testing.T) {
	c := approvedCustomer("1000")
	require.NoError(t, c.Reserve(decimal.RequireFromString("300")))

	c.Release(decimal.RequireFromString("100"))
	assert.True(t, c.UsedLimit.Equal(decimal.RequireFromString("200")))
	assert.True(t, c.AvailableLimit.Equal(decimal.RequireFromString("800")))

	// releasing more than used floors at zero
	c.Release(decimal.RequireFromString("500"))
	assert.True(t, c.UsedLimit.IsZero())
	assert.True(t, c.AvailableLimit.Equal(c.CreditLimit))
}

func TestCustomerSetLimit(t *testing.T) {
	c := approvedCustomer("1000")
	require.NoError(t, c.Reserve(decimal.RequireFromString("600")))

	// raising always works
	require.NoError(t, c.SetLimit(decimal.RequireFromString("2000")))
	assert.True(t, c.AvailableLimit.Equal(decimal.RequireFromString("1400")))

	// lowering below the drawn amount is refused
	err := c.SetLimit(decimal.RequireFromString("500"))
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.True(t, c.CreditLimit.Equal(decimal.RequireFromString("2000")))

	// lowering to exactly the drawn amount is fine
	require.NoError(t, c.SetLimit(decimal.RequireFromString("600")))
	assert.True(t, c.AvailableLimit.IsZero())

	err = c.SetLimit(decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestCustomerCanPurchase(t *testing.T) {
	c := approvedCustomer("500")
	assert.True(t, c.CanPurchase(decimal.RequireFromString("500")))
	assert.False(t, c.CanPurchase(decimal.RequireFromString("500.01")))

	c.IsApproved = false
	assert.False(t, c.CanPurchase(decimal.RequireFromString("100")))
}
