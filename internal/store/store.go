package store

import (
	"context"
	"errors"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

// ErrNotFound is returned when a key is missing or has expired. The two
// cases are indistinguishable on purpose.
var ErrNotFound = errors.New("result not found")

// ResultStore holds per-job status and final results. Every write applies
// the store's time-to-live; writes are whole-value overwrites and the last
// writer wins.
type ResultStore interface {
	SetStatus(ctx context.Context, analysisID string, status domain.AnalysisStatus) error
	SetResult(ctx context.Context, analysisID string, result domain.AnalysisResult) error
	GetStatus(ctx context.Context, analysisID string) (domain.AnalysisStatus, error)
	GetResult(ctx context.Context, analysisID string) (domain.AnalysisResult, error)
	Delete(ctx context.Context, analysisID string) error
	Ping(ctx context.Context) error
}

const (
	resultKeyPrefix = "result:"
	statusKeyPrefix = "status:"
)
