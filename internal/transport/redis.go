package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"NetPulse/internal/config"
	"NetPulse/internal/log"
	"NetPulse/internal/model"

	"github.com/redis/go-redis/v9"
)

// redisPublishClient is the part of *redis.Client the publisher uses.
type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher publishes encoded readings with Redis PUBLISH.
type RedisPublisher struct {
	client  redisPublishClient
	channel string
	codec   Codec
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisPublisher connects to Redis and checks the connection with a PING.
func NewRedisPublisher(ctx context.Context, cfg config.RedisConfig, channel string, codec Codec) (*RedisPublisher, error) {
	client := newRedisClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	log.GetLogger().Infof("Connected to Redis at %s", cfg.Addr)
	return &RedisPublisher{client: client, channel: channel, codec: codec}, nil
}

// Publish encodes the reading and publishes it on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, reading model.Reading) error {
	data, err := p.codec.Encode(reading)
	if err != nil {
		return model.NewPublishError(model.ErrorKindEncode, p.channel, err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		kind := model.ErrorKindTransport
		if errors.Is(err, redis.ErrClosed) {
			kind = model.ErrorKindClosed
		}
		return model.NewPublishError(kind, p.channel, err)
	}
	return nil
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// RedisSubscriber decodes readings published on a Redis channel.
type RedisSubscriber struct {
	client  *redis.Client
	channel string
	codec   Codec

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRedisSubscriber creates a subscriber; the connection is made by Start.
func NewRedisSubscriber(cfg config.RedisConfig, channel string, codec Codec) *RedisSubscriber {
	return &RedisSubscriber{client: newRedisClient(cfg), channel: channel, codec: codec}
}

// Start subscribes to the channel and hands every decoded reading to handler until Close.
func (s *RedisSubscriber) Start(ctx context.Context, handler ReadingHandler) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to '%s': %w", s.channel, err)
	}

	s.mu.Lock()
	s.pubsub = pubsub
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for msg := range pubsub.Channel() {
			reading, err := s.codec.Decode([]byte(msg.Payload))
			if err != nil {
				log.GetLogger().WithError(err).Warn("Error decoding reading")
				continue
			}
			handler(reading)
		}
	}()

	log.GetLogger().Infof("Subscribed to '%s'. Waiting for readings...", s.channel)
	return nil
}

// Close unsubscribes and closes the client.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	if s.pubsub != nil {
		s.pubsub.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return s.client.Close()
}
