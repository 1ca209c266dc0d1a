package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newConnectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "Show the daemon's device connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			conns, err := client.Connections(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ids := make([]string, 0, len(conns.Devices))
			for id := range conns.Devices {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				device := conns.Devices[id]
				status := "disconnected"
				switch {
				case device.Paused:
					status = "paused"
				case device.Connected:
					status = "connected"
				}
				rows = append(rows, []string{
					shortDeviceID(id),
					status,
					device.Address,
					device.ClientVersion,
					humanize.IBytes(uint64(device.InBytesTotal)),
					humanize.IBytes(uint64(device.OutBytesTotal)),
				})
			}
			headers := []string{"DEVICE", "STATUS", "ADDRESS", "VERSION", "IN", "OUT"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "Total: %s in / %s out\n",
				humanize.IBytes(uint64(conns.Total.InBytesTotal)),
				humanize.IBytes(uint64(conns.Total.OutBytesTotal)))
			return nil
		},
	}
}

// shortDeviceID truncates the 56-character device ID to its first group.
func shortDeviceID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
