package manager

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"NetPulse/internal/config"
	"NetPulse/internal/engine/counter"
	"NetPulse/internal/engine/protocol"
	"NetPulse/internal/engine/queue"
	"NetPulse/internal/engine/sampler"
	"NetPulse/internal/log"
	"NetPulse/internal/model"
	"NetPulse/internal/probe"
	"NetPulse/pkg/pcap"
)

// Source describes where frames come from. A non-nil Err means the source could not be
// opened; the manager then runs without capture.
type Source struct {
	Interface string
	LocalMAC  net.HardwareAddr
	Frames    pcap.FrameSource
	Err       error
}

// Status is a point-in-time view of the monitor.
type Status struct {
	Capture       string
	CaptureError  string
	Interface     string
	LocalMAC      string
	Transport     string
	QueueDepth    int
	QueueCapacity int
	Evicted       uint64
	Last          *model.Reading
	Window        sampler.Window
	Totals        model.Totals
	Dispatch      queue.DispatcherStats
}

// Manager owns the counter bank, the capture loop and the periodic tasks.
type Manager struct {
	source     Source
	transport  string
	publisher  model.Publisher
	bank       *counter.Bank
	queue      *queue.FIFO
	sampler    *sampler.Sampler
	simulator  *sampler.SentSimulator
	dispatcher *queue.Dispatcher
	capture    *probe.Capture

	samplePeriod   time.Duration
	sentPeriod     time.Duration
	dispatchPeriod time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	captureW sync.WaitGroup
	schedW   sync.WaitGroup
	stopped  bool
}

// NewManager wires the monitor from a validated configuration.
func NewManager(cfg *config.Config, source Source, publisher model.Publisher) (*Manager, error) {
	if publisher == nil {
		return nil, errors.New("manager needs a publisher")
	}
	policy, err := queue.ParsePolicy(cfg.Dispatcher.OnError)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		source:         source,
		transport:      cfg.Transport.Type,
		publisher:      publisher,
		bank:           counter.NewBank(),
		queue:          queue.New(cfg.Dispatcher.QueueCapacity),
		samplePeriod:   cfg.Sampler.PeriodDuration(),
		sentPeriod:     cfg.Sampler.SentPeriodDuration(),
		dispatchPeriod: cfg.Dispatcher.PeriodDuration(),
	}
	m.sampler = sampler.New(m.bank, m.queue, m.samplePeriod)
	m.simulator = sampler.NewSentSimulator(m.bank)
	m.dispatcher = queue.NewDispatcher(m.queue, publisher, policy, cfg.Dispatcher.WarnDepth)
	m.capture = m.newCapture(cfg.Probe.ReadTimeoutDuration())
	return m, nil
}

func (m *Manager) newCapture(backoff time.Duration) *probe.Capture {
	if m.source.Err != nil {
		return probe.NewFailed(m.source.Err)
	}
	if m.source.Frames == nil {
		return probe.NewFailed(errors.New("no capture source"))
	}

	classifier, err := protocol.NewClassifier(m.source.LocalMAC, m.source.Frames.LinkType())
	if err != nil {
		return probe.NewFailed(fmt.Errorf("interface %s: %w", m.source.Interface, err))
	}
	return probe.New(m.source.Frames, classifier, m.bank, backoff)
}

// Capture returns the capture loop, mainly to observe its state.
func (m *Manager) Capture() *probe.Capture {
	return m.capture
}

// Start launches the capture loop and the scheduler. A failed capture is logged once and
// the scheduler runs anyway.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil || m.stopped {
		return errors.New("manager already started")
	}
	ctx, m.cancel = context.WithCancel(ctx)

	logger := log.GetLogger()
	if m.capture.State() == probe.StateFailed {
		logger.WithError(m.capture.Err()).Errorf("Monitoring disabled, could not open interface %s", m.source.Interface)
	} else {
		m.captureW.Add(1)
		go func() {
			defer m.captureW.Done()
			if err := m.capture.Run(ctx); err != nil {
				logger.WithError(err).Error("Capture loop exited")
			}
		}()
	}

	m.schedW.Add(1)
	go m.runScheduler(ctx)
	logger.Infof("Manager started: sampling every %s, sent probe every %s, dispatch every %s",
		m.samplePeriod, m.sentPeriod, m.dispatchPeriod)
	return nil
}

// runScheduler runs the sampler, the sent simulator and the dispatcher on one goroutine,
// so their ticks never overlap.
func (m *Manager) runScheduler(ctx context.Context) {
	defer m.schedW.Done()

	sampleTicker := time.NewTicker(m.samplePeriod)
	defer sampleTicker.Stop()
	sentTicker := time.NewTicker(m.sentPeriod)
	defer sentTicker.Stop()
	dispatchTicker := time.NewTicker(m.dispatchPeriod)
	defer dispatchTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.GetLogger().Info("Scheduler shutting down.")
			return
		case <-sampleTicker.C:
			m.sampler.Tick()
		case <-sentTicker.C:
			m.simulator.Tick()
		case <-dispatchTicker.C:
			// Failures are logged and counted by the dispatcher.
			_, _ = m.dispatcher.Tick(ctx)
		}
	}
}

// Stop cancels every goroutine, waits for them and releases the source and publisher.
// Readings still pending are discarded.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	log.GetLogger().Info("Manager stopping...")
	if cancel != nil {
		cancel()
	}
	m.schedW.Wait()
	m.captureW.Wait()

	var errs []error
	if m.source.Frames != nil {
		m.source.Frames.Close()
	}
	if err := m.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if n := m.queue.Len(); n > 0 {
		log.GetLogger().Warnf("Discarding %d unpublished readings", n)
	}
	log.GetLogger().Info("Manager stopped.")
	return errors.Join(errs...)
}

// Wait blocks until the capture loop returns, which for an offline source is when the
// file is exhausted.
func (m *Manager) Wait() {
	m.captureW.Wait()
}

// Last returns the most recent reading, if one was sampled.
func (m *Manager) Last() (model.Reading, bool) {
	return m.sampler.Last()
}

// Status collects the current state for the API.
func (m *Manager) Status() Status {
	st := Status{
		Capture:       m.capture.State().String(),
		Interface:     m.source.Interface,
		LocalMAC:      m.capture.LocalAddr(),
		Transport:     m.transport,
		QueueDepth:    m.queue.Len(),
		QueueCapacity: m.queue.Capacity(),
		Evicted:       m.sampler.Evicted(),
		Window:        m.sampler.Window(),
		Totals:        m.bank.Totals(),
		Dispatch:      m.dispatcher.Stats(),
	}
	if st.LocalMAC == "" && m.source.LocalMAC != nil {
		st.LocalMAC = m.source.LocalMAC.String()
	}
	if err := m.capture.Err(); err != nil {
		st.CaptureError = err.Error()
	}
	if last, ok := m.sampler.Last(); ok {
		st.Last = &last
	}
	return st
}
