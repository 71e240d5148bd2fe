package sampler

import (
	"testing"
	"time"

	"NetPulse/internal/engine/counter"
	"NetPulse/internal/engine/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLossPercent(t *testing.T) {
	assert.Equal(t, 0.0, LossPercent(0, 0))
	assert.Equal(t, 0.0, LossPercent(0, 12345), "no sent packets always means no loss")
	assert.InDelta(t, 20.0, LossPercent(100, 80), 1e-9)
	assert.InDelta(t, 100.0, LossPercent(5, 0), 1e-9)
	assert.InDelta(t, -400.0, LossPercent(1, 5), 1e-9, "loss is not clamped")
}

func TestMbps(t *testing.T) {
	assert.InDelta(t, 1.0, Mbps(125000, time.Second), 1e-9)
	assert.InDelta(t, 0.5, Mbps(125000, 2*time.Second), 1e-9)
	assert.Equal(t, 0.0, Mbps(0, time.Second))
	assert.Equal(t, 0.0, Mbps(100, 0))
}

func TestMbps_SubMillisecondPeriods(t *testing.T) {
	assert.InDelta(t, 666.666666, Mbps(125000, 1500*time.Microsecond), 1e-5)
	assert.InDelta(t, 2000.0, Mbps(125000, 500*time.Microsecond), 1e-9)
	assert.InDelta(t, 1.0, Mbps(125, time.Millisecond), 1e-9)
}

func TestSampler_Tick(t *testing.T) {
	bank := counter.NewBank()
	q := queue.New(0)
	s := New(bank, q, time.Second)
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	bank.AddUpload(125000)
	bank.AddDownload(250000)
	for i := 0; i < 80; i++ {
		bank.AddObserved()
	}
	for i := 0; i < 100; i++ {
		bank.AddSent()
	}

	r := s.Tick()
	assert.Equal(t, "Upload: 1.00 Mbps, Download: 2.00 Mbps, Packet Loss: 20.00%", r.Content)
	assert.Equal(t, fixed, r.SampledAt)

	queued, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, r, queued)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, r.Content, last.Content)
}

func TestSampler_ResetsIntervalKeepsCumulative(t *testing.T) {
	bank := counter.NewBank()
	s := New(bank, queue.New(0), time.Second)

	bank.AddUpload(1000)
	bank.AddDownload(2000)
	bank.AddObserved()
	bank.AddSent()
	before := bank.Totals()

	s.Tick()

	assert.Equal(t, counter.Interval{}, bank.Peek())
	assert.Equal(t, before, bank.Totals())

	bank.AddUpload(10)
	s.Tick()
	assert.Equal(t, before.UploadBytes+10, bank.Totals().UploadBytes)
	assert.Equal(t, counter.Interval{}, bank.Peek())
}

func TestSampler_ZeroSentGivesZeroLoss(t *testing.T) {
	bank := counter.NewBank()
	s := New(bank, queue.New(0), time.Second)
	for i := 0; i < 50; i++ {
		bank.AddObserved()
	}

	r := s.Tick()
	assert.Equal(t, 0.0, r.LossPercent)
	assert.Contains(t, r.Content, "Packet Loss: 0.00%")
}

func TestSampler_NegativeLoss(t *testing.T) {
	bank := counter.NewBank()
	s := New(bank, queue.New(0), time.Second)
	bank.AddSent()
	bank.AddObserved()
	bank.AddObserved()

	r := s.Tick()
	assert.Contains(t, r.Content, "Packet Loss: -100.00%")
}

func TestSampler_BoundedQueueEviction(t *testing.T) {
	bank := counter.NewBank()
	q := queue.New(1)
	s := New(bank, q, time.Second)

	s.Tick()
	s.Tick()
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, uint64(1), s.Evicted())
}

func TestSampler_LastBeforeFirstTick(t *testing.T) {
	s := New(counter.NewBank(), queue.New(0), time.Second)
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestSentSimulator_Tick(t *testing.T) {
	bank := counter.NewBank()
	sim := NewSentSimulator(bank)

	for i := 0; i < 3; i++ {
		sim.Tick()
	}
	assert.Equal(t, uint64(3), bank.Peek().Sent)
	assert.Equal(t, uint64(3), bank.Totals().SentPackets)

	bank.Drain()
	sim.Tick()
	assert.Equal(t, uint64(1), bank.Peek().Sent)
	assert.Equal(t, uint64(4), bank.Totals().SentPackets)
}

func TestSampler_WindowRollsOver(t *testing.T) {
	bank := counter.NewBank()
	s := New(bank, queue.New(0), time.Second)

	w := s.Window()
	assert.Empty(t, w.Readings)
	assert.Zero(t, w.AvgUploadMbps)

	// Reading i carries i Mbps of upload and 2i Mbps of download.
	for i := 1; i <= WindowSize; i++ {
		bank.AddUpload(125000 * i)
		bank.AddDownload(250000 * i)
		s.Tick()
	}
	w = s.Window()
	require.Len(t, w.Readings, WindowSize)
	assert.InDelta(t, 10.5, w.AvgUploadMbps, 1e-9)
	assert.InDelta(t, 21.0, w.AvgDownloadMbps, 1e-9)
	assert.InDelta(t, 1.0, w.Readings[0].UploadMbps, 1e-9)

	bank.AddUpload(125000 * 21)
	s.Tick()
	w = s.Window()
	require.Len(t, w.Readings, WindowSize)
	assert.InDelta(t, 2.0, w.Readings[0].UploadMbps, 1e-9, "oldest reading dropped")
	assert.InDelta(t, 21.0, w.Readings[WindowSize-1].UploadMbps, 1e-9)
	assert.InDelta(t, 11.5, w.AvgUploadMbps, 1e-9)
}
