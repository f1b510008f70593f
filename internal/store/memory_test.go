package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryResultStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SetStatus(ctx, "id-1", domain.StatusProcessing))

	status, err := s.GetStatus(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, status)

	result := domain.AnalysisResult{ID: "id-1", Status: domain.StatusCompleted}
	require.NoError(t, s.SetResult(ctx, "id-1", result))

	stored, err := s.GetResult(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, result, stored)
}

func TestMemoryStoreMissingKeysReturnNotFound(t *testing.T) {
	s := NewMemoryResultStore(time.Hour)
	ctx := context.Background()

	_, err := s.GetStatus(ctx, "never-submitted")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetResult(ctx, "never-submitted")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiryReadsLikeNeverExisted(t *testing.T) {
	s := NewMemoryResultStore(time.Hour)
	ctx := context.Background()

	current := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return current })

	require.NoError(t, s.SetStatus(ctx, "id-2", domain.StatusCompleted))
	require.NoError(t, s.SetResult(ctx, "id-2", domain.AnalysisResult{ID: "id-2", Status: domain.StatusCompleted}))

	current = current.Add(59 * time.Minute)
	_, err := s.GetResult(ctx, "id-2")
	require.NoError(t, err, "entry must still be readable before the TTL elapses")

	current = current.Add(2 * time.Minute)

	_, err = s.GetStatus(ctx, "id-2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetResult(ctx, "id-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOverwriteWins(t *testing.T) {
	s := NewMemoryResultStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SetResult(ctx, "id-3", domain.AnalysisResult{ID: "id-3", Status: domain.StatusFailed, Error: "boom"}))
	require.NoError(t, s.SetResult(ctx, "id-3", domain.AnalysisResult{ID: "id-3", Status: domain.StatusCompleted}))

	stored, err := s.GetResult(ctx, "id-3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Empty(t, stored.Error)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryResultStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SetStatus(ctx, "id-4", domain.StatusCompleted))
	require.NoError(t, s.Delete(ctx, "id-4"))

	_, err := s.GetStatus(ctx, "id-4")
	assert.ErrorIs(t, err, ErrNotFound)
}
