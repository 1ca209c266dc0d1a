package events

import (
	"context"
	"log/slog"
	"time"

	"syncview/internal/cache"
	"syncview/internal/notifications"
	"syncview/internal/scheduler"
	"syncview/internal/stdaemon"
)

// Source is the event-poll surface of the daemon client.
type Source interface {
	Events(ctx context.Context, since int64, timeout time.Duration) ([]stdaemon.Event, error)
}

// Enqueuer is the scheduler surface the listener needs to request
// folder-status refreshes.
type Enqueuer interface {
	Enqueue(req scheduler.Request)
}

// Options tunes listener behavior.
type Options struct {
	// PollTimeout is the server-side long-poll wait.
	PollTimeout time.Duration
	// RetryBackoff is the fixed sleep after a failed poll.
	RetryBackoff time.Duration
	// EmptyPollsBeforeReset is how many consecutive empty polls with a
	// non-zero cursor trigger the one-time cursor reset.
	EmptyPollsBeforeReset int
}

// Listener long-polls the event stream and applies each event's effect.
type Listener struct {
	source   Source
	store    *cache.Store
	sched    Enqueuer
	notifier notifications.Service
	logger   *slog.Logger
	opts     Options

	cursor     int64
	emptyPolls int
	didReset   bool
}

// NewListener constructs a listener. Run drives it until ctx is cancelled.
func NewListener(source Source, store *cache.Store, sched Enqueuer, notifier notifications.Service, logger *slog.Logger, opts Options) *Listener {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 5 * time.Second
	}
	if opts.EmptyPollsBeforeReset <= 0 {
		opts.EmptyPollsBeforeReset = 3
	}
	return &Listener{
		source:   source,
		store:    store,
		sched:    sched,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// Run polls until ctx is cancelled. Transport failures back off and retry
// indefinitely; nothing short of cancellation stops the loop.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		events, err := l.source.Events(ctx, l.cursor, l.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("event poll failed", "cursor", l.cursor, "error", err)
			select {
			case <-time.After(l.opts.RetryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if len(events) == 0 {
			l.handleEmptyPoll()
			continue
		}
		l.emptyPolls = 0

		for _, ev := range events {
			if l.cursor != 0 && ev.ID != l.cursor+1 {
				// Gaps are expected on a lossy stream; sequence validation
				// covers whatever was missed.
				l.logger.Debug("event id gap", "expected", l.cursor+1, "got", ev.ID)
			}
			l.cursor = ev.ID
			l.apply(ctx, ev)
		}
	}
}

// handleEmptyPoll resets the cursor to zero exactly once when a non-zero
// cursor keeps yielding nothing, which is what a daemon restart that lost
// event history looks like.
func (l *Listener) handleEmptyPoll() {
	if l.cursor == 0 || l.didReset {
		return
	}
	l.emptyPolls++
	if l.emptyPolls < l.opts.EmptyPollsBeforeReset {
		return
	}
	l.logger.Info("resetting event cursor to resynchronize", "cursor", l.cursor)
	l.cursor = 0
	l.emptyPolls = 0
	l.didReset = true
}

func (l *Listener) apply(ctx context.Context, ev stdaemon.Event) {
	effect, err := Translate(ev)
	if err != nil {
		l.logger.Warn("event translation failed", "type", ev.Type, "id", ev.ID, "error", err)
		return
	}

	for _, inv := range effect.Invalidations {
		if err := l.store.Invalidate(ctx, inv.Folder, inv.Path); err != nil {
			l.logger.Warn("cache invalidation failed",
				"folder", inv.Folder, "path", inv.Path, "error", err)
		}
	}
	for _, folder := range effect.RefreshStatus {
		l.sched.Enqueue(scheduler.Request{
			Kind:     scheduler.KindFolderStatus,
			Folder:   folder,
			Priority: scheduler.PriorityMedium,
		})
	}
	for _, ref := range effect.Started {
		if err := l.notifier.NotifySyncStarted(ctx, ref.Folder, ref.Item); err != nil {
			l.logger.Debug("sync-started notification failed", "error", err)
		}
	}
	for _, result := range effect.Finished {
		if err := l.notifier.NotifySyncFinished(ctx, result.Folder, result.Item, result.Failure); err != nil {
			l.logger.Debug("sync-finished notification failed", "error", err)
		}
	}
}
