package main

import (
	"fmt"
	"io"
	"strings"

	"NetPulse/pkg/pcap"
	"NetPulse/pkg/pcap/live"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List capturable interfaces",
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := live.FindDevices()
		if err != nil {
			return err
		}
		renderDevices(cmd.OutOrStdout(), devices)
		return nil
	},
}

// renderDevices prints the devices as a table and marks the one monitor would pick.
func renderDevices(w io.Writer, devices []pcap.Device) {
	r := lipgloss.NewRenderer(w)
	headerStyle := r.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)

	selected, err := pcap.SelectDevice(devices)
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		var flags []string
		if d.Up {
			flags = append(flags, "up")
		}
		if d.Loopback {
			flags = append(flags, "loopback")
		}
		mark := ""
		if err == nil && d.Name == selected.Name {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			d.Name,
			d.HardwareAddr.String(),
			strings.Join(d.Addresses, ", "),
			strings.Join(flags, ","),
			d.Description,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("", "NAME", "MAC", "ADDRESSES", "FLAGS", "DESCRIPTION").
		Rows(rows...)
	fmt.Fprintln(w, t)
	if err != nil {
		fmt.Fprintln(w, err)
	}
}
