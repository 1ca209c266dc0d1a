package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncview/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the local cache database",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cache.Store) error {
				stats, err := store.CacheStats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s\n", store.Path())
				fmt.Fprintf(out, "Folders:  %d\n", stats.Folders)
				fmt.Fprintf(out, "Listings: %d (%d entries)\n", stats.Listings, stats.Entries)
				fmt.Fprintf(out, "States:   %d\n", stats.States)
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *cache.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
				return nil
			})
		},
	}
}
