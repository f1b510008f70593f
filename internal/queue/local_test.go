package queue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLocalQueueDeliversAndAcks(t *testing.T) {
	q := NewLocalQueue(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	go func() {
		_ = q.Consume(ctx, func(_ context.Context, body []byte) error {
			received <- body
			return nil
		})
	}()

	if err := q.Publish(ctx, []byte(`{"analysisId":"a"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case body := <-received:
		if string(body) != `{"analysisId":"a"}` {
			t.Fatalf("unexpected body %q", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}

	if q.Depth() != 0 {
		t.Fatalf("expected empty queue after ack, depth=%d", q.Depth())
	}
}

func TestLocalQueueRejectedMessageGoesToDLQAndIsNotRedelivered(t *testing.T) {
	q := NewLocalQueue(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	deliveries := 0
	go func() {
		_ = q.Consume(ctx, func(_ context.Context, _ []byte) error {
			mu.Lock()
			deliveries++
			mu.Unlock()
			return fmt.Errorf("%w: not parseable", ErrRejected)
		})
	}()

	if err := q.Publish(ctx, []byte("not json")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for q.DLQSize() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("message never reached the DLQ")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Give a redelivery (if any were wrongly scheduled) a chance to land.
	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if deliveries != 1 {
		t.Fatalf("poison message delivered %d times, want exactly 1", deliveries)
	}
}

func TestLocalQueueRedeliversAfterHandlerFailure(t *testing.T) {
	q := NewLocalQueue(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	deliveries := 0
	done := make(chan struct{})
	go func() {
		_ = q.Consume(ctx, func(_ context.Context, _ []byte) error {
			mu.Lock()
			deliveries++
			count := deliveries
			mu.Unlock()
			if count == 1 {
				return errors.New("store unreachable")
			}
			close(done)
			return nil
		})
	}()

	if err := q.Publish(ctx, []byte(`{"analysisId":"retry"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("message was not redelivered after a transient failure")
	}

	if q.DLQSize() != 0 {
		t.Fatalf("transient failure must not dead-letter, dlq=%d", q.DLQSize())
	}
}

func TestLocalQueueInFlightHandlerSurvivesCancellation(t *testing.T) {
	q := NewLocalQueue(8, nil)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	type outcome struct {
		ctxErr error
	}
	finished := make(chan outcome, 1)
	consumeDone := make(chan struct{})

	go func() {
		_ = q.Consume(ctx, func(handlerCtx context.Context, _ []byte) error {
			close(started)
			// Simulates analysis still running when shutdown begins.
			time.Sleep(300 * time.Millisecond)
			finished <- outcome{ctxErr: handlerCtx.Err()}
			return nil
		})
		close(consumeDone)
	}()

	if err := q.Publish(ctx, []byte(`{"analysisId":"drain"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never started")
	}
	cancel()

	select {
	case got := <-finished:
		if got.ctxErr != nil {
			t.Fatalf("in-flight handler saw cancellation: %v", got.ctxErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight handler did not finish after cancellation")
	}

	select {
	case <-consumeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop did not stop after the in-flight message finished")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLocalQueueLogsDroppedRedelivery(t *testing.T) {
	var buf syncBuffer
	q := NewLocalQueue(1, log.New(&buf, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failed := make(chan struct{})
	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	go func() {
		_ = q.Consume(ctx, func(_ context.Context, _ []byte) error {
			if first {
				first = false
				close(failed)
				return errors.New("store unreachable")
			}
			close(entered)
			<-release
			return nil
		})
	}()

	if err := q.Publish(ctx, []byte("m1")); err != nil {
		t.Fatalf("publish m1 failed: %v", err)
	}
	<-failed

	// Occupy the consumer, then fill the only buffer slot so the retry
	// of m1 has nowhere to go.
	if err := q.Publish(ctx, []byte("m2")); err != nil {
		t.Fatalf("publish m2 failed: %v", err)
	}
	<-entered
	if err := q.Publish(ctx, []byte("m3")); err != nil {
		t.Fatalf("publish m3 failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(buf.String(), "dropping redelivery") {
		if time.Now().After(deadline) {
			t.Fatal("dropped redelivery was never logged")
		}
		time.Sleep(20 * time.Millisecond)
	}
	close(release)
}

func TestLocalQueuePublishFailsWhenFull(t *testing.T) {
	q := NewLocalQueue(1, nil)
	ctx := context.Background()

	if err := q.Publish(ctx, []byte("one")); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if err := q.Publish(ctx, []byte("two")); err == nil {
		t.Fatal("expected publish into a full queue to fail")
	}
}
