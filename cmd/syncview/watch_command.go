package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"syncview/internal/cache"
	"syncview/internal/events"
	"syncview/internal/logging"
	"syncview/internal/notifications"
	"syncview/internal/scheduler"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the daemon's event stream and keep the cache reconciled",
		Long: "Runs the request scheduler and the event listener until interrupted.\n" +
			"Events invalidate stale cache records, refresh folder status snapshots,\n" +
			"and emit configured notifications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *cache.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				sched := scheduler.New(client, store, logger, scheduler.Options{
					Workers:       cfg.Scheduler.Workers,
					DrainInterval: time.Duration(cfg.Scheduler.DrainIntervalMS) * time.Millisecond,
				})
				if err := sched.Start(runCtx); err != nil {
					return err
				}
				defer sched.Stop()

				go logResponses(runCtx, logger, sched.Responses())

				listener := events.NewListener(client, store, sched, notifications.NewService(cfg), logger, events.Options{
					PollTimeout:           time.Duration(cfg.Daemon.EventTimeout) * time.Second,
					RetryBackoff:          time.Duration(cfg.Events.RetryBackoff) * time.Second,
					EmptyPollsBeforeReset: cfg.Events.EmptyPollsBeforeReset,
				})

				fmt.Fprintln(cmd.OutOrStdout(), "Watching daemon events (ctrl-c to stop)")
				if err := listener.Run(runCtx); err != nil && runCtx.Err() == nil {
					return err
				}
				return nil
			})
		},
	}
}

// logResponses drains scheduler results so refreshes triggered by events do
// not back up the response channel.
func logResponses(ctx context.Context, logger *slog.Logger, responses <-chan scheduler.Response) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp := <-responses:
			if resp.OK() {
				logger.Debug("request completed",
					"kind", string(resp.Kind), "folder", resp.Folder, "path", resp.Path)
			} else {
				logger.Warn("request failed",
					"kind", string(resp.Kind), "folder", resp.Folder, "path", resp.Path, "error", resp.Err)
			}
		}
	}
}
