package queue

import (
	"context"
	"errors"
)

// ErrRejected is returned by a consumer handler to permanently drop the
// current message. The queue acknowledges it, moves it to the dead-letter
// stream, and never re-delivers it (poison-message policy).
var ErrRejected = errors.New("message rejected")

// Producer publishes durable job messages to a queue backend. On a nil
// return exactly one message was accepted by the broker.
type Producer interface {
	Publish(ctx context.Context, body []byte) error
}

// Consumer delivers message bodies to a handler, one unacknowledged
// message at a time. A nil handler return acknowledges the message; any
// other error except ErrRejected leaves it eligible for re-delivery.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, []byte) error) error
}
