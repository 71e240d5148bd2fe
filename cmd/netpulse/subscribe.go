package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"NetPulse/internal/config"
	"NetPulse/internal/log"
	"NetPulse/internal/model"
	"NetPulse/internal/transport"

	"github.com/spf13/cobra"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Print readings published on the configured NATS or Redis channel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := log.Init(cfg.Log); err != nil {
			return err
		}
		defer log.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub, err := transport.NewSubscriber(cfg)
		if err != nil {
			return err
		}
		defer sub.Close()

		out := cmd.OutOrStdout()
		renderer := transport.NewRenderer(out)
		handler := func(r model.Reading) {
			fmt.Fprintln(out, renderer.Render(r))
		}
		if err := sub.Start(ctx, handler); err != nil {
			return err
		}

		<-ctx.Done()
		log.GetLogger().Info("Shutdown signal received, cleaning up...")
		return nil
	},
}
