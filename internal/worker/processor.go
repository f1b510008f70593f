package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cigdeemtok/AILinter/internal/ai"
	"github.com/cigdeemtok/AILinter/internal/domain"
	"github.com/cigdeemtok/AILinter/internal/queue"
	"github.com/cigdeemtok/AILinter/internal/store"
)

// Processor claims one message at a time from the work queue, runs the
// analysis, and persists the terminal record. The message is only
// acknowledged after a terminal record is stored, so a crash in between
// causes re-delivery and an idempotent overwrite.
type Processor struct {
	consumer       queue.Consumer
	store          store.ResultStore
	analyzer       ai.Analyzer
	analyzeTimeout time.Duration
	logger         *log.Logger
}

func NewProcessor(
	consumer queue.Consumer,
	resultStore store.ResultStore,
	analyzer ai.Analyzer,
	analyzeTimeout time.Duration,
	logger *log.Logger,
) *Processor {
	if analyzeTimeout <= 0 {
		analyzeTimeout = time.Minute
	}
	return &Processor{
		consumer:       consumer,
		store:          resultStore,
		analyzer:       analyzer,
		analyzeTimeout: analyzeTimeout,
		logger:         logger,
	}
}

// Start runs the consume loop until ctx is cancelled, reconnecting with a
// short backoff after consume failures. An in-flight message always
// finishes before the loop observes cancellation.
func (p *Processor) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := p.consumer.Consume(ctx, p.handleMessage)
		if err == nil || ctx.Err() != nil {
			return
		}
		if p.logger != nil {
			p.logger.Printf("worker consume loop error: %v", err)
		}

		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Processor) handleMessage(ctx context.Context, body []byte) error {
	var message domain.JobMessage
	if err := json.Unmarshal(body, &message); err != nil {
		if p.logger != nil {
			p.logger.Printf("poison message dropped: %v", err)
		}
		return fmt.Errorf("%w: parse job message: %v", queue.ErrRejected, err)
	}
	if err := message.Validate(); err != nil {
		if p.logger != nil {
			p.logger.Printf("poison message dropped: %v", err)
		}
		return fmt.Errorf("%w: %v", queue.ErrRejected, err)
	}

	// Intermediate status is best-effort; analysis proceeds either way.
	if err := p.store.SetStatus(ctx, message.AnalysisID, domain.StatusProcessing); err != nil {
		if p.logger != nil {
			p.logger.Printf("set processing status failed analysis_id=%s err=%v", message.AnalysisID, err)
		}
	}

	findings, analyzeErr := p.analyze(ctx, message)
	if analyzeErr != nil {
		return p.writeFailure(ctx, message, analyzeErr.Error())
	}

	result := domain.CompletedResult(message, findings, time.Now())
	if err := p.store.SetResult(ctx, message.AnalysisID, result); err != nil {
		if p.logger != nil {
			p.logger.Printf("store completed result failed analysis_id=%s err=%v", message.AnalysisID, err)
		}
		return p.writeFailure(ctx, message, "failed to store analysis result")
	}
	if err := p.store.SetStatus(ctx, message.AnalysisID, domain.StatusCompleted); err != nil {
		if p.logger != nil {
			p.logger.Printf("set completed status failed analysis_id=%s err=%v", message.AnalysisID, err)
		}
	}

	if p.logger != nil {
		p.logger.Printf("analysis completed analysis_id=%s file=%s", message.AnalysisID, message.FileName)
	}
	return nil
}

func (p *Processor) analyze(ctx context.Context, message domain.JobMessage) (domain.Findings, error) {
	analyzeCtx, cancel := context.WithTimeout(ctx, p.analyzeTimeout)
	defer cancel()

	findings, err := p.analyzer.Analyze(analyzeCtx, message.Code, message.Language, message.FileName)
	if err != nil {
		return domain.Findings{}, fmt.Errorf("analyze: %w", err)
	}
	return findings, nil
}

// writeFailure records a terminal failed result. A nil return acknowledges
// the message; when even the failed write cannot reach the store the error
// propagates and the message stays eligible for re-delivery.
func (p *Processor) writeFailure(ctx context.Context, message domain.JobMessage, errorMessage string) error {
	result := domain.FailedResult(message, errorMessage, time.Now())
	if err := p.store.SetResult(ctx, message.AnalysisID, result); err != nil {
		return fmt.Errorf("store failed result analysis_id=%s: %w", message.AnalysisID, err)
	}
	if err := p.store.SetStatus(ctx, message.AnalysisID, domain.StatusFailed); err != nil {
		if p.logger != nil {
			p.logger.Printf("set failed status failed analysis_id=%s err=%v", message.AnalysisID, err)
		}
	}

	if p.logger != nil {
		p.logger.Printf("analysis failed analysis_id=%s err=%s", message.AnalysisID, errorMessage)
	}
	return nil
}
