package sampler

import (
	"sync/atomic"
	"time"

	"NetPulse/internal/engine/counter"
	"NetPulse/internal/log"
	"NetPulse/internal/model"
)

// Sampler converts the interval counters into a Reading once per period and hands it to
// the pending queue.
type Sampler struct {
	bank   *counter.Bank
	queue  model.Queue
	period time.Duration
	now    func() time.Time

	last    atomic.Pointer[model.Reading]
	recent  ring
	evicted atomic.Uint64
}

// New creates a sampler for the given period. The period is also the divisor of the
// throughput calculation, so it must match the cadence Tick is called at.
func New(bank *counter.Bank, queue model.Queue, period time.Duration) *Sampler {
	return &Sampler{
		bank:   bank,
		queue:  queue,
		period: period,
		now:    time.Now,
	}
}

// Period returns the sampling period.
func (s *Sampler) Period() time.Duration {
	return s.period
}

// Tick drains the interval counters, builds a Reading and enqueues it.
// Cumulative counters are left untouched.
func (s *Sampler) Tick() model.Reading {
	in := s.bank.Drain()

	reading := model.NewReading(
		Mbps(in.UploadBytes, s.period),
		Mbps(in.DownloadBytes, s.period),
		LossPercent(in.Sent, in.Received),
		s.now(),
	)

	if s.queue.Push(reading) {
		s.evicted.Add(1)
		log.GetLogger().Warn("Pending queue full, oldest reading evicted")
	}
	s.last.Store(&reading)
	s.recent.add(reading)

	log.GetLogger().Debug(reading.Content)
	return reading
}

// Last returns the most recent reading, if one was sampled.
func (s *Sampler) Last() (model.Reading, bool) {
	r := s.last.Load()
	if r == nil {
		return model.Reading{}, false
	}
	return *r, true
}

// Window returns the last WindowSize readings and their average throughput.
func (s *Sampler) Window() Window {
	return s.recent.snapshot()
}

// Evicted returns how many readings were pushed out of a bounded queue.
func (s *Sampler) Evicted() uint64 {
	return s.evicted.Load()
}

// LossPercent computes ((sent - received) / sent) * 100, or 0 when nothing was sent.
// The result is not clamped: received may exceed the synthetic sent count, giving a
// negative value.
func LossPercent(sent, received uint64) float64 {
	if sent == 0 {
		return 0.0
	}
	return (float64(sent) - float64(received)) / float64(sent) * 100
}

// Mbps converts bytes counted over period to megabits per second:
// bytes * 8 / (period in ms * 1000). Fractions of a millisecond are kept.
func Mbps(bytes uint64, period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	return float64(bytes) * 8 / (period.Seconds() * 1e6)
}
