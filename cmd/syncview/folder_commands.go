package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"syncview/internal/cache"
)

func newRescanCommand(ctx *commandContext) *cobra.Command {
	var sub string

	cmd := &cobra.Command{
		Use:   "rescan <folder>",
		Short: "Ask the daemon to rescan a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.Rescan(cmd.Context(), folder, strings.Trim(sub, "/")); err != nil {
				return err
			}
			// The scan will bump the folder sequence; drop the stale records
			// now rather than waiting for the next validated read.
			if err := ctx.withStore(func(store *cache.Store) error {
				return store.Invalidate(cmd.Context(), folder, strings.Trim(sub, "/"))
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rescan requested for %s\n", folder)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "Restrict the rescan to a subdirectory")
	return cmd
}

func newRevertCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "revert <folder>",
		Short: "Revert local changes in a receive-only folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			if !yes {
				return fmt.Errorf("revert discards local changes in %s; re-run with --yes to confirm", folder)
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.Revert(cmd.Context(), folder); err != nil {
				return err
			}
			if err := ctx.withStore(func(store *cache.Store) error {
				return store.InvalidateFolder(cmd.Context(), folder)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revert requested for %s\n", folder)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm discarding local changes")
	return cmd
}

func newLocalChangedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "local-changed <folder>",
		Short: "List locally-changed items in a receive-only folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			files, err := client.LocalChangedFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No local changes")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				note := ""
				if f.Deleted {
					note = "deleted"
				}
				rows = append(rows, []string{f.Name, f.Type, fmt.Sprintf("%d", f.Size), formatUpdated(f.ModTime), note})
			}
			headers := []string{"NAME", "TYPE", "SIZE", "MODIFIED", ""}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}
}
