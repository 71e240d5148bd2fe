package main

import (
	"fmt"
	"time"

	"NetPulse/internal/config"
	"NetPulse/internal/engine/protocol"
	"NetPulse/internal/log"
	"NetPulse/internal/probe"
	"NetPulse/internal/transport"
	"NetPulse/pkg/pcap"

	"github.com/spf13/cobra"
)

var (
	analyzeMAC    string
	analyzePeriod time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pcap file>",
	Short: "Print the readings a capture file would have produced",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := log.Init(cfg.Log); err != nil {
			return err
		}
		defer log.Close()

		if analyzeMAC == "" {
			analyzeMAC = cfg.Probe.LocalMAC
		}
		if analyzeMAC == "" {
			return fmt.Errorf("analyze needs --local-mac or probe.local_mac")
		}
		mac, err := pcap.ResolveLocalMAC("", analyzeMAC)
		if err != nil {
			return err
		}
		period := analyzePeriod
		if period <= 0 {
			period = cfg.Sampler.PeriodDuration()
		}

		reader, err := pcap.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		classifier, err := protocol.NewClassifier(mac, reader.LinkType())
		if err != nil {
			return err
		}
		sum, err := probe.Analyze(cmd.Context(), reader, classifier, period)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		renderer := transport.NewRenderer(out)
		for _, r := range sum.Readings {
			fmt.Fprintln(out, renderer.Render(r))
		}
		t := sum.Totals
		fmt.Fprintf(out, "\n%d frames (%d classified, %d errors) from %s to %s\n",
			t.ObservedFrames, t.ClassifiedPackets, t.FrameErrors,
			sum.Start.Format(time.RFC3339), sum.End.Format(time.RFC3339))
		fmt.Fprintf(out, "Total upload: %s, total download: %s\n", t.Upload, t.Download)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeMAC, "local-mac", "", "hardware address of the monitored interface")
	analyzeCmd.Flags().DurationVar(&analyzePeriod, "period", 0, "reading period (defaults to sampler.period)")
}
