package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NetPulse/internal/api"
	"NetPulse/internal/config"
	"NetPulse/internal/engine/manager"
	"NetPulse/internal/factory"
	"NetPulse/internal/log"
	"NetPulse/internal/transport"
	"NetPulse/pkg/pcap"
	"NetPulse/pkg/pcap/live"

	"github.com/spf13/cobra"
)

var (
	ifaceFlag string
	pcapFlag  string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Capture traffic and publish readings",
	Long: `
Capture frames on an interface and publish one reading per sampling period.

Examples:
  netpulse monitor                              # first usable interface, default config
  netpulse monitor -c configs/config.yaml       # settings from a config file
  netpulse monitor --iface eth0                 # explicit interface
  netpulse monitor --pcap trace.pcap            # replay a capture file (needs probe.local_mac)
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if ifaceFlag != "" {
			cfg.Probe.Interface = ifaceFlag
		}
		if pcapFlag != "" {
			cfg.Probe.PcapFile = pcapFlag
		}
		if err := log.Init(cfg.Log); err != nil {
			return err
		}
		defer log.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runMonitor(ctx, cfg)
	},
}

func init() {
	monitorCmd.Flags().StringVar(&ifaceFlag, "iface", "", "interface to capture on")
	monitorCmd.Flags().StringVar(&pcapFlag, "pcap", "", "capture file to replay instead of a live interface")
}

func runMonitor(ctx context.Context, cfg *config.Config) error {
	logger := log.GetLogger()

	pub, err := factory.CreatePublisher(ctx, cfg)
	if err != nil {
		return err
	}

	source := openSource(cfg, live.FindDevices)
	m, err := manager.NewManager(cfg, source, pub)
	if err != nil {
		pub.Close()
		return err
	}

	var srv *api.Server
	if cfg.API.Enabled {
		var stream http.Handler
		if hub, ok := pub.(*transport.SSEHub); ok {
			stream = hub
		}
		srv = api.NewServer(cfg.API, m, stream)
		m.Capture().OnStateChange(srv.SetCaptureState)
		if err := srv.Start(); err != nil {
			m.Stop()
			return err
		}
	} else if cfg.Transport.Type == "sse" {
		logger.Warn("Transport 'sse' needs the API enabled, readings will have no listeners")
	}

	if err := m.Start(ctx); err != nil {
		return err
	}

	if cfg.Probe.PcapFile != "" {
		go func() {
			m.Wait()
			logger.Infof("Replay of %s finished, totals stay available until shutdown", cfg.Probe.PcapFile)
		}()
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, cleaning up...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("API shutdown incomplete")
		}
	}
	return m.Stop()
}

// openSource opens the replay file or the live interface. Failures are carried in
// Source.Err so monitoring is disabled while the rest of the process keeps running.
func openSource(cfg *config.Config, findDevices func() ([]pcap.Device, error)) manager.Source {
	p := cfg.Probe
	if p.PcapFile != "" {
		src := manager.Source{Interface: "pcap:" + p.PcapFile}
		if p.LocalMAC == "" {
			src.Err = fmt.Errorf("replaying %s needs probe.local_mac", p.PcapFile)
			return src
		}
		if src.LocalMAC, src.Err = pcap.ResolveLocalMAC("", p.LocalMAC); src.Err != nil {
			return src
		}
		reader, err := pcap.NewReader(p.PcapFile)
		if err != nil {
			src.Err = err
			return src
		}
		src.Frames = reader
		return src
	}

	iface := p.Interface
	if iface == "" {
		devices, err := findDevices()
		if err != nil {
			return manager.Source{Err: err}
		}
		dev, err := pcap.SelectDevice(devices)
		if err != nil {
			return manager.Source{Err: err}
		}
		iface = dev.Name
		log.GetLogger().Infof("No interface configured, selected %s", iface)
	}

	src := manager.Source{Interface: iface}
	if src.LocalMAC, src.Err = pcap.ResolveLocalMAC(iface, p.LocalMAC); src.Err != nil {
		return src
	}
	handle, err := live.Open(iface, live.Options{
		SnapshotLen: p.SnapshotLen,
		Promiscuous: p.Promiscuous,
		ReadTimeout: p.ReadTimeoutDuration(),
	})
	if err != nil {
		src.Err = err
		return src
	}
	src.Frames = handle
	return src
}
