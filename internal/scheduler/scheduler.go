package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"syncview/internal/cache"
	"syncview/internal/stdaemon"
)

// Daemon is the subset of the REST client the scheduler dispatches against.
type Daemon interface {
	FolderStatus(ctx context.Context, folder string) (stdaemon.FolderStatus, error)
	Browse(ctx context.Context, folder, prefix string) ([]stdaemon.BrowseEntry, error)
	FileInfo(ctx context.Context, folder, path string) (stdaemon.FileInfoResponse, error)
	LocalChangedFiles(ctx context.Context, folder string) ([]stdaemon.LocalChangedFile, error)
	SetIgnorePatterns(ctx context.Context, folder string, patterns []string) error
	Rescan(ctx context.Context, folder, sub string) error
	Revert(ctx context.Context, folder string) error
}

// Options tunes scheduler behavior.
type Options struct {
	// Workers caps concurrently in-flight daemon calls. Defaults to 10.
	Workers int
	// DrainInterval is the periodic admission tick. Defaults to 250ms.
	DrainInterval time.Duration
	// ResponseBuffer sizes the response channel. Defaults to 64.
	ResponseBuffer int
}

type queued struct {
	req Request
	key string
}

// Scheduler owns the pending queue and the in-flight set. All mutation
// happens on the run goroutine; callers interact through channels only.
type Scheduler struct {
	daemon Daemon
	store  *cache.Store
	logger *slog.Logger
	opts   Options

	enqueueCh   chan Request
	completedCh chan string
	responses   chan Response

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	loopWG  sync.WaitGroup
	workWG  sync.WaitGroup
}

// New constructs a scheduler. Start must be called before Enqueue has effect.
func New(daemon Daemon, store *cache.Store, logger *slog.Logger, opts Options) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.DrainInterval <= 0 {
		opts.DrainInterval = 250 * time.Millisecond
	}
	if opts.ResponseBuffer <= 0 {
		opts.ResponseBuffer = 64
	}
	return &Scheduler{
		daemon:      daemon,
		store:       store,
		logger:      logger,
		opts:        opts,
		enqueueCh:   make(chan Request, 256),
		completedCh: make(chan string, opts.Workers),
		responses:   make(chan Response, opts.ResponseBuffer),
	}
}

// Start begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.loopWG.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop terminates the loop and waits for in-flight workers to report back.
// Dispatched workers always run to completion; only queued requests are
// abandoned.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.loopWG.Wait()
	s.workWG.Wait()
}

// Enqueue submits a request, fire-and-forget. Results arrive on Responses.
// Calling before Start or after Stop is a silent no-op, as is a duplicate of
// an in-flight read.
func (s *Scheduler) Enqueue(req Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}
	select {
	case s.enqueueCh <- req:
	default:
		s.logger.Warn("scheduler intake full, dropping request",
			"kind", string(req.Kind), "folder", req.Folder)
	}
}

// Responses returns the stream of asynchronous results. Consumers must
// tolerate out-of-order and possibly no-longer-relevant arrivals.
func (s *Scheduler) Responses() <-chan Response {
	return s.responses
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.opts.DrainInterval)
	defer ticker.Stop()

	var pending []queued
	inflight := make(map[string]struct{})
	admitted := 0

	admit := func() {
		for admitted < s.opts.Workers && len(pending) > 0 {
			next := pending[0]
			pending = pending[1:]
			admitted++
			s.workWG.Add(1)
			go s.dispatch(next)
		}
	}

	for {
		select {
		case req := <-s.enqueueCh:
			key := req.dedupKey()
			if _, dup := inflight[key]; dup {
				s.logger.Debug("duplicate request suppressed",
					"kind", string(req.Kind), "folder", req.Folder, "path", req.Path)
				continue
			}
			inflight[key] = struct{}{}
			pending = insertByPriority(pending, queued{req: req, key: key})
			admit()
		case key := <-s.completedCh:
			delete(inflight, key)
			admitted--
			admit()
		case <-ticker.C:
			admit()
		case <-ctx.Done():
			return
		}
	}
}

// insertByPriority places the item immediately before the first queued item
// of strictly lower priority, keeping FIFO order within a tier.
func insertByPriority(pending []queued, item queued) []queued {
	at := len(pending)
	for i, existing := range pending {
		if existing.req.Priority < item.req.Priority {
			at = i
			break
		}
	}
	pending = append(pending, queued{})
	copy(pending[at+1:], pending[at:])
	pending[at] = item
	return pending
}

func (s *Scheduler) dispatch(item queued) {
	defer s.workWG.Done()

	// Workers are never cancelled: the call runs to completion and the
	// completion signal always fires, even if the loop has stopped.
	resp := s.execute(context.Background(), item.req)

	select {
	case s.responses <- resp:
	default:
		s.logger.Debug("response channel full, result dropped",
			"kind", string(resp.Kind), "folder", resp.Folder)
	}

	s.completedCh <- item.key
}
