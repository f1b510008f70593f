package store

import (
	"context"
	"sync"
	"time"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

type memoryEntry struct {
	status    domain.AnalysisStatus
	result    domain.AnalysisResult
	hasResult bool
	expiresAt time.Time
}

// MemoryResultStore is the in-process fallback for local development and
// tests. Expiry is checked lazily on read against an injectable clock.
type MemoryResultStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

func NewMemoryResultStore(ttl time.Duration) *MemoryResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryResultStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// SetClock replaces the time source. Test hook.
func (s *MemoryResultStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryResultStore) SetStatus(_ context.Context, analysisID string, status domain.AnalysisStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.liveEntry(analysisID)
	if entry == nil {
		entry = &memoryEntry{}
		s.entries[analysisID] = entry
	}
	entry.status = status
	entry.expiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryResultStore) SetResult(_ context.Context, analysisID string, result domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.liveEntry(analysisID)
	if entry == nil {
		entry = &memoryEntry{}
		s.entries[analysisID] = entry
	}
	entry.result = result
	entry.hasResult = true
	entry.expiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryResultStore) GetStatus(_ context.Context, analysisID string) (domain.AnalysisStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.liveEntry(analysisID)
	if entry == nil || entry.status == "" {
		return "", ErrNotFound
	}
	return entry.status, nil
}

func (s *MemoryResultStore) GetResult(_ context.Context, analysisID string) (domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.liveEntry(analysisID)
	if entry == nil || !entry.hasResult {
		return domain.AnalysisResult{}, ErrNotFound
	}
	return entry.result, nil
}

func (s *MemoryResultStore) Delete(_ context.Context, analysisID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, analysisID)
	return nil
}

func (s *MemoryResultStore) Ping(context.Context) error {
	return nil
}

// liveEntry returns the entry for analysisID, dropping it when expired.
// Callers hold at least a read lock; the delete under RLock is avoided by
// treating expired entries as absent and leaving cleanup to writers.
func (s *MemoryResultStore) liveEntry(analysisID string) *memoryEntry {
	entry, ok := s.entries[analysisID]
	if !ok {
		return nil
	}
	if s.now().After(entry.expiresAt) {
		return nil
	}
	return entry
}
