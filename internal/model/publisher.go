package model

import (
	"context"
	"errors"
	"fmt"
)

// Publisher delivers a Reading to a named logical channel.
// A failed publish returns a *PublishError; the caller decides whether to drop, retry or
// requeue the reading.
type Publisher interface {
	Publish(ctx context.Context, reading Reading) error
	Close() error
}

// ErrorKind classifies a publish failure.
type ErrorKind string

const (
	ErrorKindEncode    ErrorKind = "encode"
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindClosed    ErrorKind = "closed"
)

// ErrPublisherClosed is wrapped by publishers used after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// PublishError is the outcome of a failed publish.
type PublishError struct {
	Kind    ErrorKind
	Channel string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to '%s' failed (%s): %v", e.Channel, e.Kind, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Retryable reports whether publishing the same reading again may succeed.
func (e *PublishError) Retryable() bool {
	return e.Kind == ErrorKindTransport
}

// NewPublishError wraps err with a kind and the channel it was published to.
func NewPublishError(kind ErrorKind, channel string, err error) *PublishError {
	return &PublishError{Kind: kind, Channel: channel, Err: err}
}
