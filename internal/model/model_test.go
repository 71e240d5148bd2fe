package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatContent(t *testing.T) {
	assert.Equal(t, "Upload: 1.00 Mbps, Download: 0.50 Mbps, Packet Loss: 20.00%", FormatContent(1, 0.5, 20))
	assert.Equal(t, "Upload: 0.00 Mbps, Download: 0.00 Mbps, Packet Loss: -300.00%", FormatContent(0, 0, -300))
}

func TestParseContent(t *testing.T) {
	r := NewReading(12.345, 0.1, -50, time.Now())

	parsed, err := ParseContent(r.Content)
	require.NoError(t, err)
	assert.InDelta(t, 12.35, parsed.UploadMbps, 0.001)
	assert.InDelta(t, 0.10, parsed.DownloadMbps, 0.001)
	assert.InDelta(t, -50.0, parsed.LossPercent, 0.001)
	assert.Equal(t, r.Content, parsed.Content)

	_, err = ParseContent("Upload: fast")
	assert.Error(t, err)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.50 KB", FormatBytes(1536))
	assert.Equal(t, "2.00 MB", FormatBytes(2*1024*1024))
	assert.Equal(t, "3.00 GB", FormatBytes(3*1024*1024*1024))
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "upload", Upload.String())
	assert.Equal(t, "download", Download.String())
	assert.Equal(t, "ignored", Ignored.String())
	assert.Equal(t, "unclassified", Unclassified.String())
}

func TestPublishError(t *testing.T) {
	err := NewPublishError(ErrorKindClosed, "/main/test1", ErrPublisherClosed)

	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.False(t, err.Retryable())
	assert.Contains(t, err.Error(), "/main/test1")
	assert.Contains(t, err.Error(), "closed")

	assert.True(t, NewPublishError(ErrorKindTransport, "c", assert.AnError).Retryable())
	assert.False(t, NewPublishError(ErrorKindEncode, "c", assert.AnError).Retryable())
}
