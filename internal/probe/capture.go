package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"NetPulse/internal/engine/counter"
	"NetPulse/internal/engine/protocol"
	"NetPulse/internal/log"
	"NetPulse/internal/model"
	"NetPulse/pkg/pcap"
)

// ErrOpenFailed marks a capture that never started because its source could not be opened.
var ErrOpenFailed = errors.New("capture source could not be opened")

// State is the lifecycle state of a capture loop.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Capture pulls frames from a source, classifies them against the local hardware address
// and updates the counter bank. Per-frame work only touches atomics, so the loop never
// waits on sampling or dispatch.
type Capture struct {
	source     pcap.FrameSource
	classifier *protocol.Classifier
	bank       *counter.Bank
	backoff    time.Duration

	state   atomic.Int32
	err     error
	hookMu  sync.Mutex
	onState func(State)
}

// New creates a capture loop over source. backoff is how long the loop waits after a read
// error other than a timeout; it is normally the read timeout.
func New(source pcap.FrameSource, classifier *protocol.Classifier, bank *counter.Bank, backoff time.Duration) *Capture {
	return &Capture{
		source:     source,
		classifier: classifier,
		bank:       bank,
		backoff:    backoff,
	}
}

// NewFailed returns a capture that is permanently in the failed state. Monitoring stays
// disabled for the lifetime of the process; the open is not retried.
func NewFailed(err error) *Capture {
	c := &Capture{err: fmt.Errorf("%w: %v", ErrOpenFailed, err)}
	c.state.Store(int32(StateFailed))
	return c
}

// OnStateChange registers a hook called on every state transition.
func (c *Capture) OnStateChange(hook func(State)) {
	c.hookMu.Lock()
	c.onState = hook
	c.hookMu.Unlock()
	if hook != nil {
		hook(c.State())
	}
}

// State returns the current lifecycle state.
func (c *Capture) State() State {
	return State(c.state.Load())
}

// Err returns the open failure of a failed capture.
func (c *Capture) Err() error {
	return c.err
}

// LocalAddr returns the hardware address frames are classified against.
func (c *Capture) LocalAddr() string {
	if c.classifier == nil {
		return ""
	}
	return c.classifier.LocalAddr().String()
}

func (c *Capture) setState(s State) {
	c.state.Store(int32(s))
	c.hookMu.Lock()
	hook := c.onState
	c.hookMu.Unlock()
	if hook != nil {
		hook(s)
	}
}

// Run reads frames until ctx is cancelled or an offline source is exhausted.
// A failed capture returns its open error immediately.
func (c *Capture) Run(ctx context.Context) error {
	if c.State() == StateFailed {
		return c.err
	}

	logger := log.GetLogger()
	c.setState(StateRunning)
	logger.Infof("Capture started, classifying frames against %s", c.LocalAddr())

	for {
		select {
		case <-ctx.Done():
			c.setState(StateStopped)
			logger.Info("Capture stopped.")
			return nil
		default:
		}

		data, _, err := c.source.ReadFrame()
		switch {
		case err == nil:
			c.handleFrame(data)
		case errors.Is(err, pcap.ErrReadTimeout):
			// Nothing arrived within the read timeout; poll again.
		case errors.Is(err, io.EOF):
			c.setState(StateStopped)
			logger.Info("Capture source exhausted, capture stopped.")
			return nil
		default:
			logger.WithError(err).Warn("Error reading frame")
			select {
			case <-ctx.Done():
			case <-time.After(c.backoff):
			}
		}
	}
}

// handleFrame counts one frame. Decode failures, including panics, are logged and the
// frame is dropped.
func (c *Capture) handleFrame(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.bank.AddFrameError()
			log.GetLogger().Warnf("Recovered from panic while classifying frame: %v", r)
		}
	}()

	c.bank.AddObserved()

	dir, err := c.classifier.Classify(data)
	if err != nil {
		c.bank.AddFrameError()
		log.GetLogger().WithError(err).Warn("Dropping frame")
		return
	}

	switch dir {
	case model.Upload:
		c.bank.AddUpload(len(data))
	case model.Download:
		c.bank.AddDownload(len(data))
	}
}
