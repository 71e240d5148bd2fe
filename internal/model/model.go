package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Direction is the classification of one captured frame relative to the local interface.
type Direction int

const (
	// Unclassified frames carry no link-layer header; they are only counted as observed.
	Unclassified Direction = iota
	Upload
	Download
	Ignored
)

func (d Direction) String() string {
	switch d {
	case Upload:
		return "upload"
	case Download:
		return "download"
	case Ignored:
		return "ignored"
	default:
		return "unclassified"
	}
}

const contentFormat = "Upload: %.2f Mbps, Download: %.2f Mbps, Packet Loss: %.2f%%"

var contentPattern = regexp.MustCompile(`^Upload: (-?[\d.]+) Mbps, Download: (-?[\d.]+) Mbps, Packet Loss: (-?[\d.]+)%$`)

// Reading is one periodic summary of throughput and loss. Only Content crosses the wire;
// the numeric fields are kept for in-process consumers such as the status API.
type Reading struct {
	Content      string
	UploadMbps   float64
	DownloadMbps float64
	LossPercent  float64
	SampledAt    time.Time
}

// NewReading formats a reading from its three values.
func NewReading(uploadMbps, downloadMbps, lossPercent float64, sampledAt time.Time) Reading {
	return Reading{
		Content:      FormatContent(uploadMbps, downloadMbps, lossPercent),
		UploadMbps:   uploadMbps,
		DownloadMbps: downloadMbps,
		LossPercent:  lossPercent,
		SampledAt:    sampledAt,
	}
}

// FormatContent renders the single-line wire text, every value with two decimals.
func FormatContent(uploadMbps, downloadMbps, lossPercent float64) string {
	return fmt.Sprintf(contentFormat, uploadMbps, downloadMbps, lossPercent)
}

// ParseContent rebuilds a Reading from its wire text. SampledAt is left zero.
func ParseContent(content string) (Reading, error) {
	m := contentPattern.FindStringSubmatch(content)
	if m == nil {
		return Reading{}, fmt.Errorf("unrecognized reading content: %q", content)
	}

	values := make([]float64, 3)
	for i := range values {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return Reading{}, fmt.Errorf("invalid value %q in reading: %w", m[i+1], err)
		}
		values[i] = v
	}
	return Reading{
		Content:      content,
		UploadMbps:   values[0],
		DownloadMbps: values[1],
		LossPercent:  values[2],
	}, nil
}

// Totals is a point-in-time copy of the cumulative counters.
type Totals struct {
	UploadBytes       uint64 `json:"upload_bytes"`
	DownloadBytes     uint64 `json:"download_bytes"`
	Upload            string `json:"upload"`
	Download          string `json:"download"`
	ClassifiedPackets uint64 `json:"classified_packets"`
	ObservedFrames    uint64 `json:"observed_frames"`
	FrameErrors       uint64 `json:"frame_errors"`
	SentPackets       uint64 `json:"sent_packets"`
}

// FormatBytes renders a byte count with 1024-based units.
func FormatBytes(bytes uint64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(1024*1024*1024))
	}
}
