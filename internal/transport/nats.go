package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"NetPulse/internal/log"
	"NetPulse/internal/model"

	"github.com/nats-io/nats.go"
)

// natsConn is the part of *nats.Conn the publisher uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes encoded readings to a NATS subject.
type NATSPublisher struct {
	nc      natsConn
	subject string
	codec   Codec
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, subject string, codec Codec) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("netpulse-publisher"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.GetLogger().Infof("Connected to NATS server at %s", url)
	return &NATSPublisher{nc: nc, subject: subject, codec: codec}, nil
}

// Publish serializes the reading with the configured codec and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, reading model.Reading) error {
	if err := ctx.Err(); err != nil {
		return model.NewPublishError(model.ErrorKindTransport, p.subject, err)
	}

	data, err := p.codec.Encode(reading)
	if err != nil {
		return model.NewPublishError(model.ErrorKindEncode, p.subject, err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		kind := model.ErrorKindTransport
		if errors.Is(err, nats.ErrConnectionClosed) {
			kind = model.ErrorKindClosed
		}
		return model.NewPublishError(kind, p.subject, err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.GetLogger().Info("NATS connection drained and closed.")
	return nil
}

// NATSSubscriber decodes readings published on a NATS subject.
type NATSSubscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	codec   Codec
	mu      sync.Mutex
}

// NewNATSSubscriber connects to the NATS server at url.
func NewNATSSubscriber(url, subject string, codec Codec) (*NATSSubscriber, error) {
	nc, err := nats.Connect(url, nats.Name("netpulse-subscriber"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.GetLogger().Infof("Connected to NATS server at %s", url)
	return &NATSSubscriber{nc: nc, subject: subject, codec: codec}, nil
}

// Start subscribes to the subject and hands every decoded reading to handler.
func (s *NATSSubscriber) Start(_ context.Context, handler ReadingHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		reading, err := s.codec.Decode(msg.Data)
		if err != nil {
			log.GetLogger().WithError(err).Warn("Error decoding reading")
			return
		}
		handler(reading)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", s.subject, err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	log.GetLogger().Infof("Subscribed to '%s'. Waiting for readings...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *NATSSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.GetLogger().Info("NATS connection closed.")
	}
	return nil
}
