package transport

import (
	"context"

	"NetPulse/internal/model"
)

// ReadingHandler processes a reading received from a transport.
type ReadingHandler func(reading model.Reading)

// Subscriber receives readings published on a channel.
type Subscriber interface {
	Start(ctx context.Context, handler ReadingHandler) error
	Close() error
}

var (
	_ Subscriber = (*NATSSubscriber)(nil)
	_ Subscriber = (*RedisSubscriber)(nil)

	_ model.Publisher = (*NATSPublisher)(nil)
	_ model.Publisher = (*RedisPublisher)(nil)
	_ model.Publisher = (*SSEHub)(nil)
	_ model.Publisher = (*ConsolePublisher)(nil)
)
