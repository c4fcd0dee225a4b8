package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bareqalyusr/bnpl-service/internal/models"
)

func TestCreateAndParse(t *testing.T) {
	user := &models.User{ID: 42, Email: "buyer@example.com", UserType: models.UserTypeCustomer}

	signed, err := Create(user, TypeAccess, time.Minute, "secret")
	require.NoError(t, err)

	claims, err := Parse(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, models.UserTypeCustomer, claims.UserType)
	assert.Equal(t, TypeAccess, claims.TokenType)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestParseWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Email: "x@example.com", UserType: models.UserTypeMerchant}
	signed, err := Create(user, TypeAccess, time.Minute, "secret")
	require.NoError(t, err)

	_, err = Parse(signed, "other-secret")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestParseExpired(t *testing.T) {
	user := &models.User{ID: 1, Email: "x@example.com", UserType: models.UserTypeCustomer}
	signed, err := Create(user, TypeAccess, -time.Minute, "secret")
	require.NoError(t, err)

	_, err = Parse(signed, "secret")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestRefreshTokenCarriesType(t *testing.T) {
	user := &models.User{ID: 9, Email: "y@example.com", UserType: models.UserTypeAdmin}
	signed, err := Create(user, TypeRefresh, time.Hour, "secret")
	require.NoError(t, err)

	claims, err := Parse(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.TokenType)
}
