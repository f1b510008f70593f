package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type StreamsConfig struct {
	Addr        string
	Password    string
	DB          int
	Stream      string
	DLQStream   string
	Group       string
	Consumer    string
	ReclaimIdle time.Duration
}

// StreamsQueue implements Producer+Consumer backed by Redis Streams.
// Messages survive a broker restart once XADD returns, and a consumer
// group gives at-least-once delivery: entries stay pending until XACK,
// and entries left pending by a crashed consumer are reclaimed with
// XAUTOCLAIM after ReclaimIdle.
type StreamsQueue struct {
	client      *redis.Client
	stream      string
	dlqStream   string
	group       string
	consumer    string
	reclaimIdle time.Duration
}

func NewStreamsQueue(ctx context.Context, cfg StreamsConfig) (*StreamsQueue, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Stream == "" {
		cfg.Stream = "code_analysis"
	}
	if cfg.DLQStream == "" {
		cfg.DLQStream = "code_analysis_dlq"
	}
	if cfg.Group == "" {
		cfg.Group = "analysis_workers"
	}
	if cfg.Consumer == "" {
		cfg.Consumer = "worker-1"
	}
	if cfg.ReclaimIdle <= 0 {
		cfg.ReclaimIdle = time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	queue := &StreamsQueue{
		client:      client,
		stream:      cfg.Stream,
		dlqStream:   cfg.DLQStream,
		group:       cfg.Group,
		consumer:    cfg.Consumer,
		reclaimIdle: cfg.ReclaimIdle,
	}
	if err := queue.ensureGroup(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return queue, nil
}

func (q *StreamsQueue) Close() error {
	return q.client.Close()
}

func (q *StreamsQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Publish appends one durable message to the stream. The JSON body travels
// opaque in a single field; the queue never inspects it.
func (q *StreamsQueue) Publish(ctx context.Context, body []byte) error {
	_, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"body":         string(body),
			"content_type": "application/json",
			"enqueued_at":  time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to stream: %w", err)
	}
	return nil
}

// Consume reads one message at a time from the consumer group and feeds it
// to handler. Each pass first reclaims entries another consumer left
// pending longer than the idle threshold, then blocks for new ones.
func (q *StreamsQueue) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	if err := q.ensureGroup(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := q.reclaimStale(ctx, handler); err != nil {
			return err
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    1,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("xreadgroup: %w", err)
		}

		for _, stream := range streams {
			for _, item := range stream.Messages {
				q.handleItem(ctx, item, handler)
			}
		}
	}
}

func (q *StreamsQueue) reclaimStale(ctx context.Context, handler func(context.Context, []byte) error) error {
	items, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.reclaimIdle,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// Reclaim is opportunistic; a transient failure must not stop the loop.
		return nil
	}

	for _, item := range items {
		q.handleItem(ctx, item, handler)
	}
	return nil
}

func (q *StreamsQueue) handleItem(ctx context.Context, item redis.XMessage, handler func(context.Context, []byte) error) {
	// A claimed message finishes even if the consume loop's context is
	// cancelled mid-flight: shutdown stops the blocking reads, not the
	// in-flight handler or its terminal ack.
	workCtx := context.WithoutCancel(ctx)

	body, parseErr := extractBody(item)
	if parseErr != nil {
		_ = q.sendToDLQ(workCtx, item, parseErr.Error())
		_ = q.ackAndDelete(workCtx, item.ID)
		return
	}

	handleErr := handler(workCtx, body)
	switch {
	case handleErr == nil:
		_ = q.ackAndDelete(workCtx, item.ID)
	case errors.Is(handleErr, ErrRejected):
		_ = q.sendToDLQ(workCtx, item, handleErr.Error())
		_ = q.ackAndDelete(workCtx, item.ID)
	default:
		// Leave the entry pending; it becomes eligible for reclaim once
		// it has been idle long enough.
	}
}

func (q *StreamsQueue) ensureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("ensure stream group: %w", err)
}

func (q *StreamsQueue) ackAndDelete(ctx context.Context, streamID string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, streamID).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	if err := q.client.XDel(ctx, q.stream, streamID).Err(); err != nil {
		return fmt.Errorf("xdel: %w", err)
	}
	return nil
}

func (q *StreamsQueue) sendToDLQ(ctx context.Context, item redis.XMessage, errorMessage string) error {
	values := map[string]any{
		"stream_id": item.ID,
		"error":     errorMessage,
		"moved_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if body, err := extractBody(item); err == nil {
		values["body"] = string(body)
	}
	if _, err := q.client.XAdd(ctx, &redis.XAddArgs{Stream: q.dlqStream, Values: values}).Result(); err != nil {
		return fmt.Errorf("send to dlq: %w", err)
	}
	return nil
}

func extractBody(item redis.XMessage) ([]byte, error) {
	value, ok := item.Values["body"]
	if !ok {
		return nil, fmt.Errorf("missing field body")
	}
	switch casted := value.(type) {
	case string:
		return []byte(casted), nil
	case []byte:
		return casted, nil
	default:
		return nil, fmt.Errorf("unexpected body type %T", value)
	}
}
