package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "netpulse",
	Short: "NetPulse - interface throughput and loss monitor",
	Long: `NetPulse captures frames on one network interface, splits them into upload and
download by hardware address, and publishes a throughput and packet loss reading
every sampling period to NATS, Redis, a server-sent event stream or the console.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
