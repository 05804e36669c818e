package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klikk/verify-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix = "verify:code:" // identity -> record JSON
	idKeyPrefix   = "verify:id:"   // code_id -> identity

	// expiredRetention keeps a record readable past its logical expiry.
	// Expiry is gated by the service against ExpiresAt, so a code submitted
	// late must still resolve to a record and report Expired, not NotFound,
	// the same as the other backends. Keys still age out on their own.
	expiredRetention = 30 * time.Minute
)

// VerificationStore keeps the single live record per identity as a JSON
// document whose Redis TTL covers the code's expiry plus a retention margin,
// so stale records age out without a cleanup job. A reissue overwrites the
// document, which is the invalidate-then-insert contract for a keyed store.
type VerificationStore struct {
	client *redis.Client
}

func New(client *redis.Client) *VerificationStore {
	return &VerificationStore{client: client}
}

func (s *VerificationStore) Issue(ctx context.Context, v *domain.VerificationCode) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	if time.Until(v.ExpiresAt) <= 0 {
		return fmt.Errorf("code already expired: %w", domain.ErrBadRequest)
	}
	ttl := time.Until(v.ExpiresAt) + expiredRetention
	if prev, err := s.get(ctx, v.Identity); err == nil {
		s.client.Del(ctx, idKeyPrefix+prev.CodeID)
	}
	if err := s.client.Set(ctx, codeKeyPrefix+v.Identity, data, ttl).Err(); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return s.client.Set(ctx, idKeyPrefix+v.CodeID, v.Identity, ttl).Err()
}

func (s *VerificationStore) LatestActive(ctx context.Context, identity string) (*domain.VerificationCode, error) {
	v, err := s.get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if v.Consumed {
		return nil, fmt.Errorf("no code for identity: %w", domain.ErrNotFound)
	}
	return v, nil
}

func (s *VerificationStore) RecordAttempt(ctx context.Context, codeID string) (*domain.VerificationCode, error) {
	identity, err := s.client.Get(ctx, idKeyPrefix+codeID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("code record gone: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	v, err := s.get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if v.CodeID != codeID {
		// The id key outlived a reissue; the record it points at is gone.
		return nil, fmt.Errorf("code record superseded: %w", domain.ErrNotFound)
	}
	v.Attempts++
	return v, s.set(ctx, v)
}

// MarkConsumed drops both keys; like the in-memory backend, consumed codes
// have no audit value here. Idempotent.
func (s *VerificationStore) MarkConsumed(ctx context.Context, codeID string) error {
	identity, err := s.client.Get(ctx, idKeyPrefix+codeID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	return s.client.Del(ctx, codeKeyPrefix+identity, idKeyPrefix+codeID).Err()
}

func (s *VerificationStore) get(ctx context.Context, identity string) (*domain.VerificationCode, error) {
	data, err := s.client.Get(ctx, codeKeyPrefix+identity).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("no code for identity: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	var v domain.VerificationCode
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal verification code: %w", err)
	}
	return &v, nil
}

func (s *VerificationStore) set(ctx context.Context, v *domain.VerificationCode) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	return s.client.Set(ctx, codeKeyPrefix+v.Identity, data, redis.KeepTTL).Err()
}
