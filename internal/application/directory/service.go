package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/klikk/verify-api/internal/domain"
	"github.com/klikk/verify-api/internal/pkg/phone"
)

// AccountStore is the persistence contract for the shopper directory.
type AccountStore interface {
	Put(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
}

// LookupResult tells the storefront whether an email belongs to a returning
// shopper. Only display-safe data leaves the API: the phone number is masked,
// matching what the verification screen shows.
type LookupResult struct {
	Exists      bool   `json:"exists"`
	AccountID   string `json:"account_id,omitempty"`
	Name        string `json:"name,omitempty"`
	MaskedPhone string `json:"masked_phone,omitempty"`
}

type Service interface {
	// Lookup resolves an email to a recognized account. An unknown email is
	// not an error; the storefront falls back to guest checkout.
	Lookup(ctx context.Context, email string) (*LookupResult, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	// PhoneForAccount returns the number a verification code should go to.
	PhoneForAccount(ctx context.Context, accountID string) (string, error)
	// Seed inserts the demo shoppers, skipping emails that already exist.
	// Returns the number of accounts created.
	Seed(ctx context.Context) (int, error)
}

type service struct {
	accounts AccountStore
}

func NewService(accounts AccountStore) Service {
	return &service{accounts: accounts}
}

func (s *service) Lookup(ctx context.Context, email string) (*LookupResult, error) {
	if email == "" {
		return nil, fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &LookupResult{Exists: false}, nil
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return &LookupResult{
		Exists:      true,
		AccountID:   a.AccountID,
		Name:        a.FullName(),
		MaskedPhone: phone.Mask(a.Phone),
	}, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id required: %w", domain.ErrBadRequest)
	}
	return s.accounts.Get(ctx, accountID)
}

func (s *service) PhoneForAccount(ctx context.Context, accountID string) (string, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	if a.Phone == "" {
		return "", fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	return a.Phone, nil
}

func (s *service) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, a := range demoAccounts() {
		if _, err := s.accounts.GetByEmail(ctx, a.Email); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("check existing account %s: %w", a.Email, err)
		}
		if err := s.accounts.Put(ctx, a); err != nil {
			return created, fmt.Errorf("seed account %s: %w", a.Email, err)
		}
		slog.Info("seeded account", "email", a.Email)
		created++
	}
	return created, nil
}
