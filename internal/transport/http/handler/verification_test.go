package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klikk/verify-api/internal/application/directory"
	"github.com/klikk/verify-api/internal/application/verification"
	"github.com/klikk/verify-api/internal/config"
	"github.com/klikk/verify-api/internal/domain"
	jwtinfra "github.com/klikk/verify-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) RequestCode(ctx context.Context, identity string) (*verification.RequestResult, error) {
	args := m.Called(ctx, identity)
	if r, _ := args.Get(0).(*verification.RequestResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationSvc) VerifyCode(ctx context.Context, identity, candidate string) (int, error) {
	args := m.Called(ctx, identity, candidate)
	return args.Int(0), args.Error(1)
}

type mockDirectorySvc struct{ mock.Mock }

func (m *mockDirectorySvc) Lookup(ctx context.Context, email string) (*directory.LookupResult, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*directory.LookupResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDirectorySvc) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDirectorySvc) PhoneForAccount(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *mockDirectorySvc) Seed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         15 * time.Minute,
	})
	require.NoError(t, err)
	return p
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// --- Request tests ---

func TestRequest_InvalidBody(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{}, &mockDirectorySvc{}, nil)
	r := httptest.NewRequest(http.MethodPost, "/v1/verification/request", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Request(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequest_MissingPhone(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{}, &mockDirectorySvc{}, nil)
	rr := postJSON(t, h.Request, "/v1/verification/request", requestCodeBody{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequest_HappyPath(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("RequestCode", mock.Anything, "+3546478000").
		Return(&verification.RequestResult{Identity: "+3546478000"}, nil)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Request, "/v1/verification/request", requestCodeBody{PhoneNumber: "+3546478000"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp RequestEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Verification code sent", resp.Message)
	assert.Empty(t, resp.Code)
	svc.AssertExpectations(t)
}

func TestRequest_DevModeEchoesCode(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("RequestCode", mock.Anything, "+3546478000").
		Return(&verification.RequestResult{Identity: "+3546478000", Code: "123456"}, nil)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Request, "/v1/verification/request", requestCodeBody{PhoneNumber: "+3546478000"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp RequestEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "123456", resp.Code)
	assert.Equal(t, "Development mode: Code is 123456", resp.Message)
}

func TestRequest_DispatchFailure(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("RequestCode", mock.Anything, "+3546478000").Return(nil, domain.ErrDispatchFailed)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Request, "/v1/verification/request", requestCodeBody{PhoneNumber: "+3546478000"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRequest_ResolvesPhoneFromAccount(t *testing.T) {
	dir := &mockDirectorySvc{}
	dir.On("PhoneForAccount", mock.Anything, "acc1").Return("+3546478002", nil)
	svc := &mockVerificationSvc{}
	svc.On("RequestCode", mock.Anything, "+3546478002").
		Return(&verification.RequestResult{Identity: "+3546478002"}, nil)
	h := NewVerificationHandler(svc, dir, nil)

	rr := postJSON(t, h.Request, "/v1/verification/request", requestCodeBody{AccountID: "acc1"})
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
	dir.AssertExpectations(t)
}

func TestRequest_UnknownAccount(t *testing.T) {
	dir := &mockDirectorySvc{}
	dir.On("PhoneForAccount", mock.Anything, "acc-missing").Return("", domain.ErrNotFound)
	h := NewVerificationHandler(&mockVerificationSvc{}, dir, nil)

	rr := postJSON(t, h.Request, "/v1/verification/request", requestCodeBody{AccountID: "acc-missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Check tests ---

func TestCheck_ValidationRejectsShortCode(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationSvc{}, &mockDirectorySvc{}, nil)
	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheck_Success_IssuesCheckoutToken(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+3546478000", "123456").Return(2, nil)
	p := newTestJWTProvider(t)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, p)

	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "123456"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Phone number verified successfully", resp.Message)
	require.NotNil(t, resp.RemainingAttempts)
	assert.Equal(t, 2, *resp.RemainingAttempts)
	require.NotEmpty(t, resp.CheckoutToken)

	claims, err := p.Verify(resp.CheckoutToken)
	require.NoError(t, err)
	assert.Equal(t, "+3546478000", claims.Identity)
}

func TestCheck_Success_NoProvider_OmitsToken(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+3546478000", "123456").Return(0, nil)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "123456"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.CheckoutToken)
}

func TestCheck_Mismatch_ReportsRemaining(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+3546478000", "999999").Return(1, domain.ErrCodeMismatch)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "999999"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid verification code", resp.Error)
	require.NotNil(t, resp.RemainingAttempts)
	assert.Equal(t, 1, *resp.RemainingAttempts)
}

func TestCheck_NotFound(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+3546478000", "123456").Return(0, domain.ErrNotFound)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "123456"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Nil(t, resp.RemainingAttempts)
}

func TestCheck_Expired(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+3546478000", "123456").Return(0, domain.ErrExpired)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "123456"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Verification code has expired", resp.Error)
	assert.Nil(t, resp.RemainingAttempts)
}

func TestCheck_Exhausted(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("VerifyCode", mock.Anything, "+3546478000", "123456").Return(0, domain.ErrExhausted)
	h := NewVerificationHandler(svc, &mockDirectorySvc{}, nil)

	rr := postJSON(t, h.Check, "/v1/verification/check", checkCodeBody{PhoneNumber: "+3546478000", Code: "123456"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Maximum verification attempts exceeded", resp.Error)
	assert.Nil(t, resp.RemainingAttempts)
}
