package live

import (
	"errors"
	"fmt"
	"net"
	"time"

	netpcap "NetPulse/pkg/pcap"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Flags reported by libpcap in pcap.Interface.Flags.
const (
	pcapIfLoopback = 0x00000001
	pcapIfUp       = 0x00000002
)

// Options configures a live capture handle.
type Options struct {
	SnapshotLen int32
	Promiscuous bool
	ReadTimeout time.Duration
}

// Source reads frames from a network interface through libpcap.
type Source struct {
	handle *pcap.Handle
}

// Open opens the named interface for capture.
func Open(iface string, opts Options) (*Source, error) {
	handle, err := pcap.OpenLive(iface, opts.SnapshotLen, opts.Promiscuous, opts.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("error opening device %s: %w", iface, err)
	}
	return &Source{handle: handle}, nil
}

// ReadFrame reads the next frame, mapping the libpcap timeout to pcap.ErrReadTimeout.
func (s *Source) ReadFrame() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := s.handle.ReadPacketData()
	if errors.Is(err, pcap.NextErrorTimeoutExpired) {
		return nil, ci, netpcap.ErrReadTimeout
	}
	return data, ci, err
}

// LinkType returns the link type of the interface.
func (s *Source) LinkType() layers.LinkType {
	return s.handle.LinkType()
}

// Close closes the pcap handle.
func (s *Source) Close() {
	s.handle.Close()
}

// FindDevices lists the interfaces libpcap can capture on, enriched with their hardware
// address from the operating system.
func FindDevices() ([]netpcap.Device, error) {
	ifs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}

	devices := make([]netpcap.Device, 0, len(ifs))
	for _, dev := range ifs {
		d := netpcap.Device{
			Name:        dev.Name,
			Description: dev.Description,
			Up:          dev.Flags&pcapIfUp != 0,
			Loopback:    dev.Flags&pcapIfLoopback != 0,
		}
		for _, addr := range dev.Addresses {
			d.Addresses = append(d.Addresses, addr.IP.String())
		}
		if netIf, err := net.InterfaceByName(dev.Name); err == nil {
			d.HardwareAddr = netIf.HardwareAddr
			d.Up = d.Up || netIf.Flags&net.FlagUp != 0
			d.Loopback = d.Loopback || netIf.Flags&net.FlagLoopback != 0
		}
		devices = append(devices, d)
	}
	return devices, nil
}

var _ netpcap.FrameSource = (*Source)(nil)
