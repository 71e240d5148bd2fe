package pcap

import (
	"fmt"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Reader replays frames from a pcap file. It returns io.EOF once the file is exhausted.
type Reader struct {
	file   *os.File
	reader *pcapgo.Reader
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file: %w", err)
	}
	reader, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read pcap header of '%s': %w", filePath, err)
	}
	return &Reader{file: file, reader: reader}, nil
}

// ReadFrame returns the next frame of the file.
func (r *Reader) ReadFrame() ([]byte, gopacket.CaptureInfo, error) {
	return r.reader.ReadPacketData()
}

// LinkType returns the link type recorded in the file header.
func (r *Reader) LinkType() layers.LinkType {
	return r.reader.LinkType()
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

var _ FrameSource = (*Reader)(nil)
