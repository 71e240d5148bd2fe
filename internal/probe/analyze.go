package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"NetPulse/internal/engine/counter"
	"NetPulse/internal/engine/protocol"
	"NetPulse/internal/engine/sampler"
	"NetPulse/internal/log"
	"NetPulse/internal/model"
	"NetPulse/pkg/pcap"
)

// Summary is the result of analyzing a finite capture.
type Summary struct {
	Readings []model.Reading
	Totals   model.Totals
	Start    time.Time
	End      time.Time
}

// Analyze classifies every frame of a finite source and cuts one reading per period of
// capture time, so a replayed file yields the readings a live run would have produced.
// Consecutive empty windows are collapsed into one zero reading. Frames carry no sent count,
// so loss is always zero.
func Analyze(ctx context.Context, source pcap.FrameSource, classifier *protocol.Classifier, period time.Duration) (Summary, error) {
	if period <= 0 {
		return Summary{}, fmt.Errorf("analysis period must be positive, got %s", period)
	}

	bank := counter.NewBank()
	c := &Capture{source: source, classifier: classifier, bank: bank}

	var sum Summary
	var windowEnd time.Time
	flush := func(at time.Time) {
		in := bank.Drain()
		sum.Readings = append(sum.Readings, model.NewReading(
			sampler.Mbps(in.UploadBytes, period),
			sampler.Mbps(in.DownloadBytes, period),
			sampler.LossPercent(in.Sent, in.Received),
			at,
		))
	}

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		data, ci, err := source.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, pcap.ErrReadTimeout) {
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("failed to read frame: %w", err)
		}

		if sum.Start.IsZero() {
			sum.Start = ci.Timestamp
			windowEnd = ci.Timestamp.Add(period)
		}
		if !ci.Timestamp.Before(windowEnd) {
			flush(windowEnd)
			// A run of empty windows yields a single zero reading stamped at its end.
			if idle := ci.Timestamp.Sub(windowEnd) / period; idle > 0 {
				windowEnd = windowEnd.Add(idle * period)
				flush(windowEnd)
			}
			windowEnd = windowEnd.Add(period)
		}
		c.handleFrame(data)
		sum.End = ci.Timestamp
	}

	if !sum.Start.IsZero() {
		flush(windowEnd)
	}
	sum.Totals = bank.Totals()
	log.GetLogger().Infof("Analyzed %d frames into %d readings", sum.Totals.ObservedFrames, len(sum.Readings))
	return sum, nil
}
