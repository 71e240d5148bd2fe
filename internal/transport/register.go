package transport

import (
	"context"
	"fmt"
	"os"

	"NetPulse/internal/config"
	"NetPulse/internal/factory"
	"NetPulse/internal/model"
)

// --- Factory Registration ---

func init() {
	factory.RegisterTransport("nats", func(_ context.Context, cfg *config.Config) (model.Publisher, error) {
		codec, err := NewCodec(cfg.Transport.Codec)
		if err != nil {
			return nil, err
		}
		return NewNATSPublisher(cfg.Transport.NATS.URL, cfg.Transport.Channel, codec)
	})

	factory.RegisterTransport("redis", func(ctx context.Context, cfg *config.Config) (model.Publisher, error) {
		codec, err := NewCodec(cfg.Transport.Codec)
		if err != nil {
			return nil, err
		}
		return NewRedisPublisher(ctx, cfg.Transport.Redis, cfg.Transport.Channel, codec)
	})

	factory.RegisterTransport("sse", func(_ context.Context, cfg *config.Config) (model.Publisher, error) {
		codec, err := NewCodec(cfg.Transport.Codec)
		if err != nil {
			return nil, err
		}
		return NewSSEHub(cfg.Transport.Channel, codec)
	})

	factory.RegisterTransport("console", func(_ context.Context, cfg *config.Config) (model.Publisher, error) {
		return NewConsolePublisher(os.Stdout, cfg.Transport.Channel), nil
	})
}

// NewSubscriber creates a subscriber for the configured transport. Only nats and redis
// can be subscribed to from another process.
func NewSubscriber(cfg *config.Config) (Subscriber, error) {
	codec, err := NewCodec(cfg.Transport.Codec)
	if err != nil {
		return nil, err
	}

	switch cfg.Transport.Type {
	case "nats":
		return NewNATSSubscriber(cfg.Transport.NATS.URL, cfg.Transport.Channel, codec)
	case "redis":
		return NewRedisSubscriber(cfg.Transport.Redis, cfg.Transport.Channel, codec), nil
	default:
		return nil, fmt.Errorf("transport type '%s' cannot be subscribed to", cfg.Transport.Type)
	}
}
