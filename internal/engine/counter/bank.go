package counter

import (
	"sync/atomic"

	"NetPulse/internal/model"
)

// Bank holds the traffic counters shared by the capture loop, the sent-packet simulator
// and the sampler. Interval counters are drained by the sampler every period; cumulative
// counters only grow. Every field is updated atomically, but no operation spans both tiers
// as a unit.
type Bank struct {
	// interval
	uploadBytes   atomic.Uint64
	downloadBytes atomic.Uint64
	received      atomic.Uint64
	sent          atomic.Uint64

	// cumulative
	totalUploadBytes   atomic.Uint64
	totalDownloadBytes atomic.Uint64
	classifiedPackets  atomic.Uint64
	totalObserved      atomic.Uint64
	totalSent          atomic.Uint64
	frameErrors        atomic.Uint64
}

// NewBank returns a zeroed counter bank.
func NewBank() *Bank {
	return &Bank{}
}

// Interval is the value of the interval counters at the moment they were drained.
type Interval struct {
	UploadBytes   uint64
	DownloadBytes uint64
	Received      uint64
	Sent          uint64
}

// AddObserved counts one captured frame, classified or not.
func (b *Bank) AddObserved() {
	b.received.Add(1)
	b.totalObserved.Add(1)
}

// AddUpload records a frame sent by the local interface.
func (b *Bank) AddUpload(length int) {
	n := uint64(length)
	b.uploadBytes.Add(n)
	b.totalUploadBytes.Add(n)
	b.classifiedPackets.Add(1)
}

// AddDownload records a frame addressed to the local interface or broadcast.
func (b *Bank) AddDownload(length int) {
	n := uint64(length)
	b.downloadBytes.Add(n)
	b.totalDownloadBytes.Add(n)
	b.classifiedPackets.Add(1)
}

// AddSent increments the synthetic sent-packet counter.
func (b *Bank) AddSent() {
	b.sent.Add(1)
	b.totalSent.Add(1)
}

// AddFrameError counts a frame that failed to decode.
func (b *Bank) AddFrameError() {
	b.frameErrors.Add(1)
}

// Drain returns the interval counters and resets them to zero. Each counter is swapped
// atomically, so increments racing with the drain land in the next interval.
// Only the sampler calls Drain.
func (b *Bank) Drain() Interval {
	return Interval{
		Sent:          b.sent.Swap(0),
		Received:      b.received.Swap(0),
		UploadBytes:   b.uploadBytes.Swap(0),
		DownloadBytes: b.downloadBytes.Swap(0),
	}
}

// Peek returns the interval counters without resetting them.
func (b *Bank) Peek() Interval {
	return Interval{
		Sent:          b.sent.Load(),
		Received:      b.received.Load(),
		UploadBytes:   b.uploadBytes.Load(),
		DownloadBytes: b.downloadBytes.Load(),
	}
}

// Totals returns the cumulative counters.
func (b *Bank) Totals() model.Totals {
	up := b.totalUploadBytes.Load()
	down := b.totalDownloadBytes.Load()
	return model.Totals{
		UploadBytes:       up,
		DownloadBytes:     down,
		Upload:            model.FormatBytes(up),
		Download:          model.FormatBytes(down),
		ClassifiedPackets: b.classifiedPackets.Load(),
		ObservedFrames:    b.totalObserved.Load(),
		FrameErrors:       b.frameErrors.Load(),
		SentPackets:       b.totalSent.Load(),
	}
}
