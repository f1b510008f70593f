package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cigdeemtok/AILinter/internal/domain"
	"github.com/cigdeemtok/AILinter/internal/queue"
	"github.com/cigdeemtok/AILinter/internal/store"
)

// Submitter validates analysis requests and publishes them to the work
// queue. It returns as soon as the broker accepts the message; it never
// waits for a worker.
type Submitter struct {
	producer queue.Producer
	store    store.ResultStore
}

func NewSubmitter(producer queue.Producer, resultStore store.ResultStore) *Submitter {
	return &Submitter{producer: producer, store: resultStore}
}

// Submit assigns a fresh analysis id and enqueues exactly one message for
// it. On any error no message was enqueued and the job does not exist.
func (s *Submitter) Submit(
	ctx context.Context,
	code string,
	language domain.Language,
	fileName string,
) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, domain.ErrEmptyCode)
	}
	if !domain.SupportedLanguage(language) {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidInput, domain.ErrUnsupportedLanguage, language)
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = domain.DefaultFileName
	}

	message := domain.JobMessage{
		AnalysisID:  uuid.NewString(),
		Code:        code,
		Language:    language,
		FileName:    fileName,
		SubmittedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal job message: %w", err)
	}

	// The pending status goes in before the publish so a status poll
	// issued right after Submit returns never reads not-found. Best
	// effort: a store hiccup must not block submission.
	if s.store != nil {
		_ = s.store.SetStatus(ctx, message.AnalysisID, domain.StatusPending)
	}

	if err := s.producer.Publish(ctx, body); err != nil {
		if s.store != nil {
			_ = s.store.Delete(ctx, message.AnalysisID)
		}
		return "", fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	return message.AnalysisID, nil
}
