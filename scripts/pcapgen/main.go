package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"NetPulse/internal/log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// mix holds relative weights of the generated traffic kinds.
type mix struct {
	upload, download, broadcast, foreign int
}

func parseMix(s string) (mix, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return mix{}, fmt.Errorf("mix must be upload:download:broadcast:foreign, got %q", s)
	}
	w := make([]int, 4)
	total := 0
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return mix{}, fmt.Errorf("invalid weight %q in mix", p)
		}
		w[i] = v
		total += v
	}
	if total == 0 {
		return mix{}, fmt.Errorf("mix weights must not all be zero")
	}
	return mix{upload: w[0], download: w[1], broadcast: w[2], foreign: w[3]}, nil
}

type options struct {
	count  int
	local  net.HardwareAddr
	remote net.HardwareAddr
	mix    mix
	rate   int // frames per second of capture time
	seed   int64
	start  time.Time
}

// counts tallies generated frames and their bytes per kind.
type counts struct {
	upload, download, broadcast, foreign                     int
	uploadBytes, downloadBytes, broadcastBytes, foreignBytes int
}

func generate(out io.Writer, opts options) (counts, error) {
	var c counts
	w := pcapgo.NewWriter(out)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return c, fmt.Errorf("failed to write pcap header: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.seed))
	foreignA := net.HardwareAddr{0x02, 0xfe, 0x00, 0x00, 0x00, 0x0a}
	foreignB := net.HardwareAddr{0x02, 0xfe, 0x00, 0x00, 0x00, 0x0b}
	total := opts.mix.upload + opts.mix.download + opts.mix.broadcast + opts.mix.foreign
	gap := time.Second / time.Duration(opts.rate)

	for i := 0; i < opts.count; i++ {
		eth := &layers.Ethernet{EthernetType: layers.EthernetTypeIPv4}
		n := rng.Intn(total)
		var kind *int
		var bytes *int
		switch {
		case n < opts.mix.upload:
			eth.SrcMAC, eth.DstMAC = opts.local, opts.remote
			kind, bytes = &c.upload, &c.uploadBytes
		case n < opts.mix.upload+opts.mix.download:
			eth.SrcMAC, eth.DstMAC = opts.remote, opts.local
			kind, bytes = &c.download, &c.downloadBytes
		case n < opts.mix.upload+opts.mix.download+opts.mix.broadcast:
			eth.SrcMAC, eth.DstMAC = opts.remote, layers.EthernetBroadcast
			kind, bytes = &c.broadcast, &c.broadcastBytes
		default:
			eth.SrcMAC, eth.DstMAC = foreignA, foreignB
			kind, bytes = &c.foreign, &c.foreignBytes
		}

		ip := &layers.IPv4{
			SrcIP:    net.IP{10, 0, byte(rng.Intn(256)), byte(rng.Intn(256))},
			DstIP:    net.IP{10, 1, byte(rng.Intn(256)), byte(rng.Intn(256))},
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
		}
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(rng.Intn(65535-1024) + 1024),
			DstPort: layers.UDPPort(rng.Intn(65535-1024) + 1024),
		}
		udp.SetNetworkLayerForChecksum(ip)

		payload := make([]byte, rng.Intn(1400)+18)
		rng.Read(payload)

		buf := gopacket.NewSerializeBuffer()
		serOpts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		if err := gopacket.SerializeLayers(buf, serOpts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
			return c, fmt.Errorf("failed to serialize frame %d: %w", i, err)
		}

		data := buf.Bytes()
		ci := gopacket.CaptureInfo{
			Timestamp:     opts.start.Add(time.Duration(i) * gap),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			return c, fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		*kind++
		*bytes += len(data)
	}
	return c, nil
}

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 1000, "Number of frames to generate")
	localMAC := flag.String("local", "02:00:00:00:00:01", "Hardware address of the monitored interface")
	remoteMAC := flag.String("remote", "02:00:00:00:00:02", "Hardware address of the peer")
	mixFlag := flag.String("mix", "4:4:1:1", "Weights of upload:download:broadcast:foreign frames")
	rate := flag.Int("rate", 1000, "Frames per second of capture time")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	logger := log.GetLogger()

	local, err := net.ParseMAC(*localMAC)
	if err != nil {
		logger.Fatalf("Invalid -local: %v", err)
	}
	remote, err := net.ParseMAC(*remoteMAC)
	if err != nil {
		logger.Fatalf("Invalid -remote: %v", err)
	}
	m, err := parseMix(*mixFlag)
	if err != nil {
		logger.Fatalf("Invalid -mix: %v", err)
	}
	if *rate <= 0 || *packetCount < 0 {
		logger.Fatal("-rate must be positive and -c must not be negative")
	}

	f, err := os.Create(*outputFile)
	if err != nil {
		logger.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	logger.Infof("Generating %d frames into %s...", *packetCount, *outputFile)
	c, err := generate(f, options{
		count:  *packetCount,
		local:  local,
		remote: remote,
		mix:    m,
		rate:   *rate,
		seed:   *seed,
		start:  time.Now(),
	})
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infof("Upload: %d frames (%d bytes), Download: %d frames (%d bytes), Broadcast: %d frames (%d bytes), Foreign: %d frames (%d bytes)",
		c.upload, c.uploadBytes, c.download, c.downloadBytes, c.broadcast, c.broadcastBytes, c.foreign, c.foreignBytes)
	logger.Infof("Replay with: netpulse monitor --pcap %s (probe.local_mac: %s)", *outputFile, local)
}
