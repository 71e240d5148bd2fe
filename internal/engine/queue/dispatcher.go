package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"NetPulse/internal/log"
	"NetPulse/internal/model"
)

// Policy decides what happens to a reading whose publish failed.
type Policy string

const (
	// PolicyDrop logs the failure and discards the reading.
	PolicyDrop Policy = "drop"
	// PolicyRetryOnce publishes the same reading once more before dropping it.
	PolicyRetryOnce Policy = "retry_once"
	// PolicyRequeue puts the reading back at the queue head for the next tick.
	PolicyRequeue Policy = "requeue"
)

// ParsePolicy converts a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyDrop, PolicyRetryOnce, PolicyRequeue:
		return p, nil
	default:
		return "", fmt.Errorf("unknown dispatch policy: '%s'", s)
	}
}

// DispatcherStats counts dispatch outcomes since start.
type DispatcherStats struct {
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
	Requeued  uint64 `json:"requeued"`
}

// Dispatcher publishes at most one pending reading per tick.
type Dispatcher struct {
	queue     model.Queue
	publisher model.Publisher
	policy    Policy
	warnDepth int
	warned    bool

	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	requeued  atomic.Uint64
}

// NewDispatcher creates a dispatcher draining queue into publisher.
// warnDepth <= 0 disables the queue depth warning.
func NewDispatcher(queue model.Queue, publisher model.Publisher, policy Policy, warnDepth int) *Dispatcher {
	return &Dispatcher{
		queue:     queue,
		publisher: publisher,
		policy:    policy,
		warnDepth: warnDepth,
	}
}

// Tick pops the head reading, if any, and publishes it. It reports whether a reading was
// taken from the queue and the publish error left after applying the policy.
func (d *Dispatcher) Tick(ctx context.Context) (bool, error) {
	d.checkDepth()

	reading, ok := d.queue.Pop()
	if !ok {
		return false, nil
	}

	err := d.publisher.Publish(ctx, reading)
	if err == nil {
		d.published.Add(1)
		return true, nil
	}
	d.failed.Add(1)

	logger := log.GetLogger().WithError(err)
	retryable := isRetryable(err)

	switch {
	case d.policy == PolicyRetryOnce && retryable:
		if err = d.publisher.Publish(ctx, reading); err == nil {
			d.published.Add(1)
			return true, nil
		}
		d.failed.Add(1)
		logger = log.GetLogger().WithError(err)
	case d.policy == PolicyRequeue && retryable:
		if d.queue.PushFront(reading) {
			d.dropped.Add(1)
			logger.Warn("Pending queue full while requeueing, newest reading evicted")
		}
		d.requeued.Add(1)
		logger.Warn("Publish failed, reading requeued")
		return true, err
	}

	d.dropped.Add(1)
	logger.Warnf("Publish failed, dropping reading: %s", reading.Content)
	return true, err
}

// Stats returns the dispatch counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Published: d.published.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
		Requeued:  d.requeued.Load(),
	}
}

func (d *Dispatcher) checkDepth() {
	if d.warnDepth <= 0 {
		return
	}
	depth := d.queue.Len()
	if depth >= d.warnDepth && !d.warned {
		log.GetLogger().Warnf("Pending queue depth %d reached warning threshold %d, publishing is falling behind", depth, d.warnDepth)
		d.warned = true
	} else if depth < d.warnDepth && d.warned {
		log.GetLogger().Infof("Pending queue depth back to %d", depth)
		d.warned = false
	}
}

func isRetryable(err error) bool {
	var pubErr *model.PublishError
	if errors.As(err, &pubErr) {
		return pubErr.Retryable()
	}
	// Errors without a kind are treated as transport failures.
	return true
}
