package pcap

import (
	"fmt"
	"net"
)

// Device describes a capturable interface.
type Device struct {
	Name         string
	Description  string
	Addresses    []string
	HardwareAddr net.HardwareAddr
	Up           bool
	Loopback     bool
}

// SelectDevice returns the first device that is up, is not a loopback and has a hardware
// address.
func SelectDevice(devices []Device) (Device, error) {
	for _, d := range devices {
		if d.Up && !d.Loopback && len(d.HardwareAddr) > 0 {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("no usable capture device found among %d devices", len(devices))
}

// ResolveLocalMAC returns the hardware address of iface, or the parsed override when set.
func ResolveLocalMAC(iface, override string) (net.HardwareAddr, error) {
	if override != "" {
		mac, err := net.ParseMAC(override)
		if err != nil {
			return nil, fmt.Errorf("invalid local MAC override: %w", err)
		}
		return mac, nil
	}

	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("failed to look up interface %s: %w", iface, err)
	}
	if len(netIf.HardwareAddr) == 0 {
		return nil, fmt.Errorf("interface %s has no hardware address", iface)
	}
	return netIf.HardwareAddr, nil
}
