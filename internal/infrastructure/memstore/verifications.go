package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/klikk/verify-api/internal/domain"
)

// VerificationStore is the ephemeral in-process backend: one record per
// identity, overwritten on reissue, deleted on consumption. It exists so the
// workflow runs with zero infrastructure (local development and tests) while
// presenting the same observable contract as the durable backend.
type VerificationStore struct {
	mu         sync.Mutex
	byIdentity map[string]*domain.VerificationCode
	byID       map[string]string // code_id -> identity
}

func NewVerificationStore() *VerificationStore {
	return &VerificationStore{
		byIdentity: make(map[string]*domain.VerificationCode),
		byID:       make(map[string]string),
	}
}

func (s *VerificationStore) Issue(ctx context.Context, v *domain.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byIdentity[v.Identity]; ok {
		delete(s.byID, prev.CodeID)
	}
	cp := *v
	s.byIdentity[v.Identity] = &cp
	s.byID[v.CodeID] = v.Identity
	return nil
}

func (s *VerificationStore) LatestActive(ctx context.Context, identity string) (*domain.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byIdentity[identity]
	if !ok || v.Consumed {
		return nil, fmt.Errorf("no code for identity: %w", domain.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (s *VerificationStore) RecordAttempt(ctx context.Context, codeID string) (*domain.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[codeID]
	if !ok {
		return nil, fmt.Errorf("code record gone: %w", domain.ErrNotFound)
	}
	v := s.byIdentity[identity]
	v.Attempts++
	cp := *v
	return &cp, nil
}

// MarkConsumed removes the entry outright: in the ephemeral backend a
// consumed code has no audit value. Exhausted records are kept (unlike the
// storefront's Map fallback, which dropped them) so that a further attempt
// reports the attempt cap rather than a missing code, matching the durable
// backend. Idempotent.
func (s *VerificationStore) MarkConsumed(ctx context.Context, codeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[codeID]
	if !ok {
		return nil
	}
	delete(s.byIdentity, identity)
	delete(s.byID, codeID)
	return nil
}
