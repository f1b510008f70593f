package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cigdeemtok/AILinter/internal/domain"
	"github.com/cigdeemtok/AILinter/internal/store"
)

type failingStore struct{}

func (failingStore) SetStatus(context.Context, string, domain.AnalysisStatus) error {
	return errors.New("connection refused")
}
func (failingStore) SetResult(context.Context, string, domain.AnalysisResult) error {
	return errors.New("connection refused")
}
func (failingStore) GetStatus(context.Context, string) (domain.AnalysisStatus, error) {
	return "", errors.New("connection refused")
}
func (failingStore) GetResult(context.Context, string) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{}, errors.New("connection refused")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("connection refused") }
func (failingStore) Ping(context.Context) error           { return errors.New("connection refused") }

func TestReaderReturnsStoredResult(t *testing.T) {
	memory := store.NewMemoryResultStore(time.Hour)
	reader := NewReader(memory)
	ctx := context.Background()

	stored := domain.AnalysisResult{ID: "id-1", Status: domain.StatusCompleted, Refactor: []string{"tidy up"}}
	require.NoError(t, memory.SetResult(ctx, "id-1", stored))
	require.NoError(t, memory.SetStatus(ctx, "id-1", domain.StatusCompleted))

	result, err := reader.Result(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, stored, result)

	status, err := reader.Status(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, status)
}

func TestReaderMapsMissingToNotFound(t *testing.T) {
	reader := NewReader(store.NewMemoryResultStore(time.Hour))

	_, err := reader.Result(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reader.Status(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReaderMapsStoreFailureToUnavailable(t *testing.T) {
	reader := NewReader(failingStore{})

	_, err := reader.Result(context.Background(), "id")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = reader.Status(context.Background(), "id")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
