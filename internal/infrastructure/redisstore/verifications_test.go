package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/klikk/verify-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*VerificationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), mr
}

func newCode(identity, codeID, code string, ttl time.Duration) *domain.VerificationCode {
	now := time.Now().UTC()
	return &domain.VerificationCode{
		CodeID:    codeID,
		Identity:  identity,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestIssue_ThenLatestActive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c1", "482913", 10*time.Minute)))

	v, err := s.LatestActive(ctx, "+3546478000")
	require.NoError(t, err)
	assert.Equal(t, "c1", v.CodeID)
	assert.Equal(t, "482913", v.Code)
	assert.Equal(t, 0, v.Attempts)
	assert.False(t, v.Consumed)
}

func TestLatestActive_None(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.LatestActive(context.Background(), "+3546478000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIssue_SupersedesPriorRecord(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c1", "111111", 10*time.Minute)))
	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c2", "222222", 10*time.Minute)))

	v, err := s.LatestActive(ctx, "+3546478000")
	require.NoError(t, err)
	assert.Equal(t, "c2", v.CodeID)

	// The superseded record is gone: its ID no longer resolves.
	_, err = s.RecordAttempt(ctx, "c1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIssue_IdentityIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "a1", "111111", 10*time.Minute)))
	require.NoError(t, s.Issue(ctx, newCode("+3546478002", "b1", "222222", 10*time.Minute)))
	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "a2", "333333", 10*time.Minute)))

	v, err := s.LatestActive(ctx, "+3546478002")
	require.NoError(t, err)
	assert.Equal(t, "b1", v.CodeID)
	assert.Equal(t, "222222", v.Code)
}

func TestIssue_AlreadyExpiredRejected(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Issue(context.Background(), newCode("+3546478000", "c1", "482913", -time.Second))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestLatestActive_ExpiredRecordStillReturned(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c1", "482913", 500*time.Millisecond)))
	time.Sleep(600 * time.Millisecond)
	mr.FastForward(time.Second)

	// Past ExpiresAt the record must still resolve so the caller can report
	// expiry instead of a missing code; only the retention window removes it.
	v, err := s.LatestActive(ctx, "+3546478000")
	require.NoError(t, err)
	assert.Equal(t, "c1", v.CodeID)
	assert.True(t, time.Now().After(v.ExpiresAt))

	mr.FastForward(expiredRetention)
	_, err = s.LatestActive(ctx, "+3546478000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRecordAttempt_Increments(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c1", "482913", 10*time.Minute)))

	v, err := s.RecordAttempt(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Attempts)

	v, err = s.RecordAttempt(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Attempts)
}

func TestRecordAttempt_UnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.RecordAttempt(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMarkConsumed_RemovesRecord_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c1", "482913", 10*time.Minute)))

	require.NoError(t, s.MarkConsumed(ctx, "c1"))

	// No replay: the consumed record is gone for both lookup paths.
	_, err := s.LatestActive(ctx, "+3546478000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = s.RecordAttempt(ctx, "c1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Consuming again is a no-op.
	require.NoError(t, s.MarkConsumed(ctx, "c1"))
}

func TestExhaustedRecord_StaysVisible(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Issue(ctx, newCode("+3546478000", "c1", "482913", 10*time.Minute)))

	for i := 0; i < 3; i++ {
		_, err := s.RecordAttempt(ctx, "c1")
		require.NoError(t, err)
	}

	v, err := s.LatestActive(ctx, "+3546478000")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Attempts)
}
