package pcap

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrReadTimeout is returned by ReadFrame when no frame arrived within the read timeout.
// It is not a failure; callers simply poll again.
var ErrReadTimeout = errors.New("read timeout expired")

// FrameSource yields raw captured frames, one at a time.
type FrameSource interface {
	// ReadFrame returns the next frame. It returns ErrReadTimeout when the read timeout
	// elapsed without a frame and io.EOF when an offline source is exhausted.
	ReadFrame() ([]byte, gopacket.CaptureInfo, error)

	// LinkType reports the link-layer type of the frames.
	LinkType() layers.LinkType

	Close()
}
