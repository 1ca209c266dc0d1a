package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"syncview/internal/cache"
	"syncview/internal/stdaemon"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var cachedOnly bool

	cmd := &cobra.Command{
		Use:   "status [folder]",
		Short: "Show folder sync status",
		Long: "Shows the daemon's status for one folder, or for every folder the local\n" +
			"cache knows about. Fresh results are written through to the cache; when the\n" +
			"daemon is unreachable the last cached snapshot is shown instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cache.Store) error {
				runCtx := cmd.Context()

				var folders []string
				if len(args) == 1 {
					folders = []string{args[0]}
				} else {
					known, err := store.Folders(runCtx)
					if err != nil {
						return err
					}
					if len(known) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No folders cached yet; name one: syncview status <folder>")
						return nil
					}
					folders = known
				}

				var client *stdaemon.Client
				if !cachedOnly {
					var err error
					client, err = ctx.client()
					if err != nil {
						return err
					}
				}

				rows := make([][]string, 0, len(folders))
				for _, folder := range folders {
					row, err := statusRow(runCtx, store, client, folder)
					if err != nil {
						return err
					}
					rows = append(rows, row)
				}

				headers := []string{"FOLDER", "STATE", "SEQ", "LOCAL", "GLOBAL", "NEED", "UPDATED"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cachedOnly, "cached", false, "Show the cached snapshot without contacting the daemon")
	return cmd
}

func statusRow(ctx context.Context, store *cache.Store, client *stdaemon.Client, folder string) ([]string, error) {
	snapshot, stale, err := folderSnapshot(ctx, store, client, folder)
	if err != nil {
		return nil, err
	}

	state := snapshot.State
	if stale {
		state += " (cached)"
	}
	return []string{
		folder,
		state,
		fmt.Sprintf("%d", snapshot.Sequence),
		fmt.Sprintf("%d / %s", snapshot.LocalFiles, humanize.IBytes(uint64(snapshot.LocalBytes))),
		fmt.Sprintf("%d / %s", snapshot.GlobalFiles, humanize.IBytes(uint64(snapshot.GlobalBytes))),
		fmt.Sprintf("%d / %s", snapshot.NeedFiles, humanize.IBytes(uint64(snapshot.NeedBytes))),
		formatUpdated(snapshot.UpdatedAt),
	}, nil
}

// folderSnapshot fetches a fresh status and writes it through to the cache.
// A nil client or an unreachable daemon falls back to the cached snapshot,
// reported via stale.
func folderSnapshot(ctx context.Context, store *cache.Store, client *stdaemon.Client, folder string) (cache.FolderStatus, bool, error) {
	if client != nil {
		status, err := client.FolderStatus(ctx, folder)
		if err == nil {
			if err := store.PutFolderStatus(ctx, folder, statusSnapshot(status)); err != nil {
				return cache.FolderStatus{}, false, err
			}
			snapshot, _, err := store.GetFolderStatus(ctx, folder)
			return snapshot, false, err
		}
	}

	snapshot, ok, err := store.GetFolderStatus(ctx, folder)
	if err != nil {
		return cache.FolderStatus{}, false, err
	}
	if !ok {
		return cache.FolderStatus{}, false, fmt.Errorf("folder %q: daemon unreachable and nothing cached", folder)
	}
	return snapshot, true, nil
}

func statusSnapshot(status stdaemon.FolderStatus) cache.FolderStatus {
	return cache.FolderStatus{
		Sequence:              status.Sequence,
		State:                 status.State,
		NeedTotalItems:        status.NeedTotalItems,
		ReceiveOnlyTotalItems: status.ReceiveOnlyTotalItems,
		GlobalFiles:           status.GlobalFiles,
		GlobalBytes:           status.GlobalBytes,
		LocalFiles:            status.LocalFiles,
		LocalBytes:            status.LocalBytes,
		NeedFiles:             status.NeedFiles,
		NeedBytes:             status.NeedBytes,
	}
}

func formatUpdated(stamp time.Time) string {
	if stamp.IsZero() {
		return "never"
	}
	return humanize.Time(stamp)
}
