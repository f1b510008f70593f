package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// LocalQueue is an in-process fallback used when Redis is not configured.
// It keeps the consumer contract (ack on nil, drop on ErrRejected,
// re-deliver otherwise) but offers no durability across restarts.
type LocalQueue struct {
	ch     chan []byte
	logger *log.Logger

	dlqMu sync.Mutex
	dlq   [][]byte
}

func NewLocalQueue(bufferSize int, logger *log.Logger) *LocalQueue {
	if bufferSize <= 0 {
		bufferSize = 512
	}
	return &LocalQueue{
		ch:     make(chan []byte, bufferSize),
		logger: logger,
		dlq:    make([][]byte, 0),
	}
}

func (q *LocalQueue) Publish(ctx context.Context, body []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- body:
		return nil
	default:
		return errors.New("local queue is full")
	}
}

func (q *LocalQueue) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body := <-q.ch:
			// A dequeued message finishes even if ctx is cancelled while
			// the handler runs; cancellation only stops further receives.
			err := handler(context.WithoutCancel(ctx), body)
			switch {
			case err == nil:
			case errors.Is(err, ErrRejected):
				q.dlqMu.Lock()
				q.dlq = append(q.dlq, body)
				q.dlqMu.Unlock()
				if q.logger != nil {
					q.logger.Printf("local queue dropped message to DLQ err=%v", err)
				}
			default:
				// Re-deliver after a short delay so a failing handler
				// does not spin on the same message.
				go func(retry []byte) {
					timer := time.NewTimer(500 * time.Millisecond)
					defer timer.Stop()
					select {
					case <-ctx.Done():
					case <-timer.C:
						select {
						case q.ch <- retry:
						default:
							if q.logger != nil {
								q.logger.Printf("local queue full, dropping redelivery")
							}
						}
					}
				}(body)
			}
		}
	}
}

func (q *LocalQueue) Ping(context.Context) error {
	return nil
}

func (q *LocalQueue) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// Depth reports how many messages are waiting to be claimed.
func (q *LocalQueue) Depth() int {
	return len(q.ch)
}
