package sampler

import (
	"sync"

	"NetPulse/internal/model"
)

// WindowSize is how many recent readings the sliding averages cover.
const WindowSize = 20

// Window is a copy of the most recent readings, oldest first, with their average
// throughput. The averages are zero when no reading was sampled yet.
type Window struct {
	Readings        []model.Reading
	AvgUploadMbps   float64
	AvgDownloadMbps float64
}

// ring keeps the last WindowSize readings.
type ring struct {
	mu    sync.Mutex
	items [WindowSize]model.Reading
	next  int
	n     int
}

func (r *ring) add(reading model.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.next] = reading
	r.next = (r.next + 1) % WindowSize
	if r.n < WindowSize {
		r.n++
	}
}

func (r *ring) snapshot() Window {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := Window{Readings: make([]model.Reading, 0, r.n)}
	start := (r.next - r.n + WindowSize) % WindowSize
	for i := 0; i < r.n; i++ {
		reading := r.items[(start+i)%WindowSize]
		w.Readings = append(w.Readings, reading)
		w.AvgUploadMbps += reading.UploadMbps
		w.AvgDownloadMbps += reading.DownloadMbps
	}
	if r.n > 0 {
		w.AvgUploadMbps /= float64(r.n)
		w.AvgDownloadMbps /= float64(r.n)
	}
	return w
}
