package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"syncview/internal/cache"
	"syncview/internal/logging"
	"syncview/internal/scheduler"
	"syncview/internal/stdaemon"
	"syncview/internal/testsupport"
)

type pollStep struct {
	events []stdaemon.Event
	err    error
}

// scriptedSource replays a fixed sequence of poll results and records the
// cursor of every call. Once the script runs out it blocks until cancellation.
type scriptedSource struct {
	mu    sync.Mutex
	steps []pollStep
	since []int64
}

func (s *scriptedSource) Events(ctx context.Context, since int64, _ time.Duration) ([]stdaemon.Event, error) {
	s.mu.Lock()
	s.since = append(s.since, since)
	if len(s.steps) == 0 {
		s.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()
	return step.events, step.err
}

func (s *scriptedSource) cursors() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.since...)
}

type recordingEnqueuer struct {
	mu   sync.Mutex
	reqs []scheduler.Request
}

func (r *recordingEnqueuer) Enqueue(req scheduler.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recordingEnqueuer) requests() []scheduler.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scheduler.Request(nil), r.reqs...)
}

type recordingNotifier struct {
	mu       sync.Mutex
	started  []ItemRef
	finished []ItemResult
}

func (r *recordingNotifier) NotifySyncStarted(_ context.Context, folder, item string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, ItemRef{Folder: folder, Item: item})
	return nil
}

func (r *recordingNotifier) NotifySyncFinished(_ context.Context, folder, item, failure string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, ItemResult{Folder: folder, Item: item, Failure: failure})
	return nil
}

func (r *recordingNotifier) NotifyError(context.Context, error, string) error { return nil }
func (r *recordingNotifier) TestNotification(context.Context) error           { return nil }

// runListener drives a listener against the scripted source and returns after
// every scripted step was consumed.
func runListener(t *testing.T, l *Listener, source *scriptedSource, wantPolls int) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for len(source.cursors()) < wantPolls {
		if time.Now().After(deadline) {
			cancel()
			<-done
			t.Fatalf("saw %d polls, want at least %d", len(source.cursors()), wantPolls)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestListenerAppliesInvalidations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.PutFolderStatus(ctx, "docs", cache.FolderStatus{Sequence: 5, State: "idle"}); err != nil {
		t.Fatalf("PutFolderStatus: %v", err)
	}
	entries := []cache.Entry{{Name: "report.pdf", Kind: cache.EntryFile, Size: 9}}
	if err := store.PutListing(ctx, "docs", "", entries, 5); err != nil {
		t.Fatalf("PutListing: %v", err)
	}

	source := &scriptedSource{steps: []pollStep{{
		events: []stdaemon.Event{event(t, 10, stdaemon.EventItemFinished, map[string]any{
			"folder": "docs",
			"item":   "report.pdf",
			"type":   "file",
			"action": "update",
		})},
	}}}
	notifier := &recordingNotifier{}
	l := NewListener(source, store, &recordingEnqueuer{}, notifier, logging.Discard(), Options{})

	runListener(t, l, source, 2)

	if _, ok, err := store.GetListing(ctx, "docs", "", 5); err != nil {
		t.Fatalf("GetListing: %v", err)
	} else if ok {
		t.Fatal("parent listing survived item-finished invalidation")
	}
	finished := func() []ItemResult {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return append([]ItemResult(nil), notifier.finished...)
	}()
	if len(finished) != 1 || finished[0].Item != "report.pdf" || finished[0].Failure != "" {
		t.Fatalf("finished notifications = %+v", finished)
	}
}

func TestListenerAdvancesCursorAndEnqueuesRefresh(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := &scriptedSource{steps: []pollStep{
		{events: []stdaemon.Event{
			event(t, 3, stdaemon.EventLocalIndexUpdated, map[string]any{
				"folder":    "docs",
				"filenames": []string{"a.txt"},
			}),
			event(t, 4, stdaemon.EventRemoteIndexUpdated, map[string]any{"folder": "photos"}),
		}},
		{events: nil},
	}}
	enq := &recordingEnqueuer{}
	l := NewListener(source, store, enq, &recordingNotifier{}, logging.Discard(), Options{})

	runListener(t, l, source, 3)

	cursors := source.cursors()
	if cursors[0] != 0 || cursors[1] != 4 {
		t.Fatalf("poll cursors = %v, want [0 4 ...]", cursors)
	}
	reqs := enq.requests()
	if len(reqs) != 2 {
		t.Fatalf("enqueued %d requests, want 2: %+v", len(reqs), reqs)
	}
	for i, folder := range []string{"docs", "photos"} {
		if reqs[i].Kind != scheduler.KindFolderStatus || reqs[i].Folder != folder {
			t.Fatalf("request %d = %+v, want folder-status refresh for %q", i, reqs[i], folder)
		}
		if reqs[i].Priority != scheduler.PriorityMedium {
			t.Fatalf("request %d priority = %v, want medium", i, reqs[i].Priority)
		}
	}
}

func TestListenerResetsCursorOnceAfterEmptyPolls(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	itemEvent := func(id int64) stdaemon.Event {
		return event(t, id, stdaemon.EventItemStarted, map[string]any{
			"folder": "docs",
			"item":   "a.txt",
		})
	}
	source := &scriptedSource{steps: []pollStep{
		{events: []stdaemon.Event{itemEvent(20)}},
		{events: nil},
		{events: nil},
		{events: nil},
		// After the reset the cursor must stay at whatever events set it
		// to, even through further droughts.
		{events: []stdaemon.Event{itemEvent(21)}},
		{events: nil},
		{events: nil},
		{events: nil},
		{events: nil},
	}}
	l := NewListener(source, store, &recordingEnqueuer{}, &recordingNotifier{}, logging.Discard(), Options{
		EmptyPollsBeforeReset: 3,
	})

	runListener(t, l, source, 10)

	cursors := source.cursors()
	want := []int64{0, 20, 20, 20, 0, 21, 21, 21, 21, 21}
	for i, w := range want {
		if cursors[i] != w {
			t.Fatalf("poll cursors = %v, want %v", cursors[:len(want)], want)
		}
	}
}

func TestListenerRetriesAfterPollError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := &scriptedSource{steps: []pollStep{
		{err: context.DeadlineExceeded},
		{events: []stdaemon.Event{event(t, 30, stdaemon.EventItemStarted, map[string]any{
			"folder": "docs",
			"item":   "b.txt",
		})}},
	}}
	notifier := &recordingNotifier{}
	l := NewListener(source, store, &recordingEnqueuer{}, notifier, logging.Discard(), Options{
		RetryBackoff: 5 * time.Millisecond,
	})

	runListener(t, l, source, 3)

	started := func() []ItemRef {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return append([]ItemRef(nil), notifier.started...)
	}()
	if len(started) != 1 || started[0].Item != "b.txt" {
		t.Fatalf("started notifications = %+v", started)
	}
	if cursors := source.cursors(); cursors[2] != 30 {
		t.Fatalf("cursor after recovery = %d, want 30", cursors[2])
	}
}

func TestListenerSkipsMalformedEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := &scriptedSource{steps: []pollStep{
		{events: []stdaemon.Event{
			{ID: 40, Type: stdaemon.EventItemFinished, Data: []byte(`{"item":`)},
			event(t, 41, stdaemon.EventItemStarted, map[string]any{
				"folder": "docs",
				"item":   "ok.txt",
			}),
		}},
	}}
	notifier := &recordingNotifier{}
	l := NewListener(source, store, &recordingEnqueuer{}, notifier, logging.Discard(), Options{})

	runListener(t, l, source, 2)

	started := func() []ItemRef {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return append([]ItemRef(nil), notifier.started...)
	}()
	if len(started) != 1 {
		t.Fatalf("started notifications = %+v, want the event after the malformed one", started)
	}
	if cursors := source.cursors(); cursors[1] != 41 {
		t.Fatalf("cursor = %d, want 41 past the malformed event", cursors[1])
	}
}
