package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"syncview/internal/cache"
	"syncview/internal/stdaemon"
	"syncview/internal/syncstate"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <folder> <path>",
		Short: "Show a single item's index metadata and derived sync state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			itemPath := strings.Trim(args[1], "/")

			return ctx.withStore(func(store *cache.Store) error {
				runCtx := cmd.Context()
				client, err := ctx.client()
				if err != nil {
					return err
				}

				info, err := client.FileInfo(runCtx, folder, itemPath)
				if err != nil {
					return err
				}

				devices := make([]string, 0, len(info.Availability))
				for _, av := range info.Availability {
					devices = append(devices, av.ID)
				}
				state := syncstate.Derive(metaFromDaemon(info.Local), metaFromDaemon(info.Global), devices)

				if seq, ok, err := store.FolderSequence(runCtx, folder); err != nil {
					return err
				} else if ok {
					if err := store.PutState(runCtx, folder, itemPath, state, seq); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintf(out, "Path:   %s\n", itemPath)
				fmt.Fprintf(out, "State:  %s\n", colorizeState(state, colorize))
				printMeta(out, "Local", info.Local)
				printMeta(out, "Global", info.Global)
				if len(devices) > 0 {
					fmt.Fprintf(out, "Available from: %s\n", strings.Join(devices, ", "))
				}
				return nil
			})
		},
	}
}

func metaFromDaemon(meta *stdaemon.FileMeta) *syncstate.FileMeta {
	if meta == nil {
		return nil
	}
	return &syncstate.FileMeta{
		Deleted:     meta.Deleted,
		Ignored:     meta.Ignored,
		Invalid:     meta.Invalid,
		Version:     string(meta.Version),
		ContentHash: meta.BlocksHash,
		Sequence:    meta.Sequence,
	}
}

func printMeta(out io.Writer, label string, meta *stdaemon.FileMeta) {
	if meta == nil {
		fmt.Fprintf(out, "%s: (no index entry)\n", label)
		return
	}
	flags := make([]string, 0, 3)
	if meta.Deleted {
		flags = append(flags, "deleted")
	}
	if meta.Ignored {
		flags = append(flags, "ignored")
	}
	if meta.Invalid {
		flags = append(flags, "invalid")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ",") + "]"
	}
	fmt.Fprintf(out, "%s: %s, version %s, modified %s%s\n",
		label, humanize.IBytes(uint64(meta.Size)), meta.Version, formatUpdated(meta.ModTime), suffix)
}
