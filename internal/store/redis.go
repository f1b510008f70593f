package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisResultStore keeps status and result records in Redis with a
// time-to-live. Expired keys read back exactly like keys that never
// existed.
type RedisResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultStore(ctx context.Context, cfg RedisConfig) (*RedisResultStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisResultStore{client: client, ttl: cfg.TTL}, nil
}

func (s *RedisResultStore) Close() error {
	return s.client.Close()
}

func (s *RedisResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisResultStore) SetStatus(ctx context.Context, analysisID string, status domain.AnalysisStatus) error {
	if err := s.client.Set(ctx, statusKeyPrefix+analysisID, string(status), s.ttl).Err(); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

func (s *RedisResultStore) SetResult(ctx context.Context, analysisID string, result domain.AnalysisResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.client.Set(ctx, resultKeyPrefix+analysisID, encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	return nil
}

func (s *RedisResultStore) GetStatus(ctx context.Context, analysisID string) (domain.AnalysisStatus, error) {
	value, err := s.client.Get(ctx, statusKeyPrefix+analysisID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get status: %w", err)
	}
	return domain.AnalysisStatus(value), nil
}

func (s *RedisResultStore) GetResult(ctx context.Context, analysisID string) (domain.AnalysisResult, error) {
	value, err := s.client.Get(ctx, resultKeyPrefix+analysisID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.AnalysisResult{}, ErrNotFound
		}
		return domain.AnalysisResult{}, fmt.Errorf("get result: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(value), &result); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

func (s *RedisResultStore) Delete(ctx context.Context, analysisID string) error {
	if err := s.client.Del(ctx, resultKeyPrefix+analysisID, statusKeyPrefix+analysisID).Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
