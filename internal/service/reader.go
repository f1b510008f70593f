package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cigdeemtok/AILinter/internal/domain"
	"github.com/cigdeemtok/AILinter/internal/store"
)

// Reader is the pure read path over the result store. No side effects.
type Reader struct {
	store store.ResultStore
}

func NewReader(resultStore store.ResultStore) *Reader {
	return &Reader{store: resultStore}
}

func (r *Reader) Result(ctx context.Context, analysisID string) (domain.AnalysisResult, error) {
	result, err := r.store.GetResult(ctx, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AnalysisResult{}, ErrNotFound
		}
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return result, nil
}

func (r *Reader) Status(ctx context.Context, analysisID string) (domain.AnalysisStatus, error) {
	status, err := r.store.GetStatus(ctx, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return status, nil
}
