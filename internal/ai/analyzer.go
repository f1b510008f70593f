package ai

import (
	"context"
	"errors"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

var ErrAnalyzerUnavailable = errors.New("analyzer unavailable")

// Analyzer produces findings for a single code snippet. Implementations
// may degrade (empty or warning-only findings) instead of failing; a
// returned error is a terminal analysis failure for the job.
type Analyzer interface {
	Analyze(ctx context.Context, code string, language domain.Language, fileName string) (domain.Findings, error)
}
