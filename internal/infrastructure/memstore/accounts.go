package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/klikk/verify-api/internal/domain"
)

// AccountStore is the in-process account directory used when no DynamoDB
// backend is configured. Seeded at startup with the demo shoppers.
type AccountStore struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Account
	emailIdx map[string]string // lowercased email -> account_id
	phoneIdx map[string]string // phone -> account_id
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:     make(map[string]*domain.Account),
		emailIdx: make(map[string]string),
		phoneIdx: make(map[string]string),
	}
}

func (s *AccountStore) Put(ctx context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.byID[a.AccountID] = &cp
	s.emailIdx[strings.ToLower(a.Email)] = a.AccountID
	s.phoneIdx[a.Phone] = a.AccountID
	return nil
}

func (s *AccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIdx[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *AccountStore) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.phoneIdx[phone]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	cp := *s.byID[id]
	return &cp, nil
}
