package counter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBank_UploadDownload(t *testing.T) {
	b := NewBank()

	b.AddUpload(1500)
	b.AddUpload(60)
	b.AddDownload(400)

	in := b.Peek()
	assert.Equal(t, uint64(1560), in.UploadBytes)
	assert.Equal(t, uint64(400), in.DownloadBytes)

	totals := b.Totals()
	assert.Equal(t, uint64(1560), totals.UploadBytes)
	assert.Equal(t, uint64(400), totals.DownloadBytes)
	assert.Equal(t, uint64(3), totals.ClassifiedPackets)
	assert.Equal(t, "1.52 KB", totals.Upload)
	assert.Equal(t, "400 B", totals.Download)
}

func TestBank_DrainResetsIntervalOnly(t *testing.T) {
	b := NewBank()
	b.AddUpload(100)
	b.AddDownload(200)
	b.AddObserved()
	b.AddObserved()
	b.AddSent()
	b.AddFrameError()

	in := b.Drain()
	assert.Equal(t, Interval{UploadBytes: 100, DownloadBytes: 200, Received: 2, Sent: 1}, in)
	assert.Equal(t, Interval{}, b.Peek())

	totals := b.Totals()
	assert.Equal(t, uint64(100), totals.UploadBytes)
	assert.Equal(t, uint64(200), totals.DownloadBytes)
	assert.Equal(t, uint64(2), totals.ObservedFrames)
	assert.Equal(t, uint64(1), totals.SentPackets)
	assert.Equal(t, uint64(1), totals.FrameErrors)

	b.AddUpload(50)
	assert.Equal(t, uint64(150), b.Totals().UploadBytes)
	assert.Equal(t, uint64(50), b.Peek().UploadBytes)
}

func TestBank_ConcurrentAddsWithDrain(t *testing.T) {
	b := NewBank()
	const writers, perWriter = 8, 10000

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				b.AddUpload(1)
			}
		}()
	}

	var drained uint64
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			drained += b.Drain().UploadBytes
		}
	}
	drained += b.Drain().UploadBytes

	assert.Equal(t, uint64(writers*perWriter), drained, "no increment is lost across drains")
	assert.Equal(t, uint64(writers*perWriter), b.Totals().UploadBytes)
}
