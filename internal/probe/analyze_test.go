package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"NetPulse/internal/engine/protocol"
	"NetPulse/pkg/pcap"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timedFrame struct {
	at   time.Duration
	data []byte
}

func writeTimedCapture(t *testing.T, start time.Time, frames []timedFrame) *pcap.Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timed.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	for _, fr := range frames {
		ci := gopacket.CaptureInfo{Timestamp: start.Add(fr.at), CaptureLength: len(fr.data), Length: len(fr.data)}
		require.NoError(t, w.WritePacket(ci, fr.data))
	}
	require.NoError(t, f.Close())

	reader, err := pcap.NewReader(path)
	require.NoError(t, err)
	t.Cleanup(reader.Close)
	return reader
}

func TestAnalyze_WindowsByCaptureTime(t *testing.T) {
	up := frame(t, localMAC, remoteMAC, 1236) // 1250 bytes on the wire
	down := frame(t, remoteMAC, localMAC, 611)
	start := time.Unix(1700000000, 0)

	reader := writeTimedCapture(t, start, []timedFrame{
		{0, up},
		{500 * time.Millisecond, up},
		{1200 * time.Millisecond, down},
		{3100 * time.Millisecond, up},
	})
	classifier, err := protocol.NewClassifier(localMAC, reader.LinkType())
	require.NoError(t, err)

	sum, err := Analyze(context.Background(), reader, classifier, time.Second)
	require.NoError(t, err)

	require.Len(t, sum.Readings, 4)
	assert.Equal(t, "Upload: 0.02 Mbps, Download: 0.00 Mbps, Packet Loss: 0.00%", sum.Readings[0].Content)
	assert.InDelta(t, 0.02, sum.Readings[0].UploadMbps, 1e-9)
	assert.Zero(t, sum.Readings[1].UploadMbps)
	assert.InDelta(t, float64(len(down))*8/1e6, sum.Readings[1].DownloadMbps, 1e-9)
	assert.Zero(t, sum.Readings[2].UploadMbps+sum.Readings[2].DownloadMbps)
	assert.InDelta(t, 0.01, sum.Readings[3].UploadMbps, 1e-9)
	assert.True(t, sum.Readings[0].SampledAt.Equal(start.Add(time.Second)))

	assert.Equal(t, uint64(3*len(up)), sum.Totals.UploadBytes)
	assert.Equal(t, uint64(len(down)), sum.Totals.DownloadBytes)
	assert.Equal(t, uint64(4), sum.Totals.ObservedFrames)
	assert.True(t, sum.Start.Equal(start))
	assert.True(t, sum.End.Equal(start.Add(3100*time.Millisecond)))
}

func TestAnalyze_EmptyCapture(t *testing.T) {
	reader := writeTimedCapture(t, time.Now(), nil)
	classifier, err := protocol.NewClassifier(localMAC, reader.LinkType())
	require.NoError(t, err)

	sum, err := Analyze(context.Background(), reader, classifier, time.Second)
	require.NoError(t, err)
	assert.Empty(t, sum.Readings)
	assert.Zero(t, sum.Totals.ObservedFrames)
}

func TestAnalyze_Errors(t *testing.T) {
	classifier, err := protocol.NewClassifier(localMAC, layers.LinkTypeEthernet)
	require.NoError(t, err)

	_, err = Analyze(context.Background(), &scriptedSource{}, classifier, 0)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Analyze(ctx, &scriptedSource{}, classifier, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_CollapsesIdleGaps(t *testing.T) {
	up := frame(t, localMAC, remoteMAC, 100)
	start := time.Unix(1700000000, 0)

	reader := writeTimedCapture(t, start, []timedFrame{
		{0, up},
		{time.Hour + 500*time.Microsecond, up},
	})
	classifier, err := protocol.NewClassifier(localMAC, reader.LinkType())
	require.NoError(t, err)

	sum, err := Analyze(context.Background(), reader, classifier, time.Millisecond)
	require.NoError(t, err)

	require.Len(t, sum.Readings, 3)
	assert.NotZero(t, sum.Readings[0].UploadMbps)
	assert.Zero(t, sum.Readings[1].UploadMbps)
	assert.True(t, sum.Readings[1].SampledAt.Equal(start.Add(time.Hour)))
	assert.NotZero(t, sum.Readings[2].UploadMbps)
	assert.True(t, sum.Readings[2].SampledAt.Equal(start.Add(time.Hour+time.Millisecond)))
	assert.Equal(t, uint64(2*len(up)), sum.Totals.UploadBytes)
}
