package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/klikk/verify-api/internal/domain"
	"github.com/klikk/verify-api/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) Service {
	t.Helper()
	svc := NewService(memstore.NewAccountStore())
	n, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return svc
}

func TestLookup_KnownEmail(t *testing.T) {
	svc := seededService(t)

	res, err := svc.Lookup(context.Background(), "jon@smartmedia.is")
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.NotEmpty(t, res.AccountID)
	assert.Equal(t, "Jón Andreas Gunnlaugsson", res.Name)
	assert.Equal(t, "+354 *** 8000", res.MaskedPhone)
}

func TestLookup_CaseInsensitiveEmail(t *testing.T) {
	svc := seededService(t)

	res, err := svc.Lookup(context.Background(), "Jon@SmartMedia.is")
	require.NoError(t, err)
	assert.True(t, res.Exists)
}

func TestLookup_UnknownEmail_NotAnError(t *testing.T) {
	svc := seededService(t)

	res, err := svc.Lookup(context.Background(), "stranger@example.com")
	require.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Empty(t, res.AccountID)
	assert.Empty(t, res.MaskedPhone)
}

func TestLookup_EmptyEmail(t *testing.T) {
	svc := NewService(memstore.NewAccountStore())
	_, err := svc.Lookup(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSeed_Idempotent(t *testing.T) {
	svc := NewService(memstore.NewAccountStore())
	ctx := context.Background()

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPhoneForAccount(t *testing.T) {
	svc := seededService(t)
	res, err := svc.Lookup(context.Background(), "jane@example.com")
	require.NoError(t, err)

	p, err := svc.PhoneForAccount(context.Background(), res.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "+3546478002", p)
}

func TestPhoneForAccount_Unknown(t *testing.T) {
	svc := seededService(t)
	_, err := svc.PhoneForAccount(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_ReturnsSavedProfile(t *testing.T) {
	svc := seededService(t)
	res, err := svc.Lookup(context.Background(), "alex@business.com")
	require.NoError(t, err)

	a, err := svc.Get(context.Background(), res.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "Akureyri", a.City)
	assert.Len(t, a.PaymentMethods, 2)
	require.NotNil(t, a.DefaultPaymentMethod())
	assert.Equal(t, "pm_004", a.DefaultPaymentMethod().PaymentMethodID)
}
