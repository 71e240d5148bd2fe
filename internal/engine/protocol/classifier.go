package protocol

import (
	"bytes"
	"fmt"
	"net"

	"NetPulse/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Classifier decides whether a frame was sent or received by the local interface by
// comparing its Ethernet addresses against the interface MAC.
// A Classifier is not safe for concurrent use; each capture loop owns one.
type Classifier struct {
	local    net.HardwareAddr
	linkType layers.LinkType
	eth      layers.Ethernet
}

// NewClassifier creates a classifier for frames of the given link type captured on the
// interface with the given hardware address.
func NewClassifier(local net.HardwareAddr, linkType layers.LinkType) (*Classifier, error) {
	if len(local) == 0 {
		return nil, fmt.Errorf("local hardware address is empty")
	}
	addr := make(net.HardwareAddr, len(local))
	copy(addr, local)
	return &Classifier{local: addr, linkType: linkType}, nil
}

// LocalAddr returns the hardware address frames are classified against.
func (c *Classifier) LocalAddr() net.HardwareAddr {
	return c.local
}

// Classify decodes the Ethernet header of data. Frames from a source without a link-layer
// header are Unclassified; a header that cannot be decoded is an error.
func (c *Classifier) Classify(data []byte) (model.Direction, error) {
	if c.linkType != layers.LinkTypeEthernet {
		return model.Unclassified, nil
	}

	if err := c.eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return model.Unclassified, fmt.Errorf("failed to decode ethernet header: %w", err)
	}

	switch {
	case bytes.Equal(c.eth.SrcMAC, c.local):
		return model.Upload, nil
	case bytes.Equal(c.eth.DstMAC, c.local), bytes.Equal(c.eth.DstMAC, layers.EthernetBroadcast):
		return model.Download, nil
	default:
		return model.Ignored, nil
	}
}
