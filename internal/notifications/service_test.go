package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"syncview/internal/config"
	"syncview/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySyncFinished(context.Background(), "photos", "a.txt", ""); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCapturingService(t *testing.T, configure func(*config.Config)) (notifications.Service, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.title = r.Header.Get("Title")
		got.message = string(body)
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.SyncStarted = true
	cfg.Notifications.SyncFinished = true
	cfg.Notifications.Errors = true
	if configure != nil {
		configure(&cfg)
	}
	return notifications.NewService(&cfg), got
}

func TestSyncFinishedFormatsSuccessAndFailure(t *testing.T) {
	svc, got := newCapturingService(t, nil)
	ctx := context.Background()

	if err := svc.NotifySyncFinished(ctx, "photos", "a.txt", ""); err != nil {
		t.Fatalf("NotifySyncFinished failed: %v", err)
	}
	if got.title != "syncview - Sync Finished" || got.message != "Finished a.txt in photos" {
		t.Fatalf("unexpected success notification: %+v", got)
	}
	if got.priority != "" {
		t.Fatalf("success should not carry priority, got %q", got.priority)
	}

	if err := svc.NotifySyncFinished(ctx, "photos", "a.txt", "pull: no connected device"); err != nil {
		t.Fatalf("NotifySyncFinished failed: %v", err)
	}
	if got.title != "syncview - Sync Failed" || got.priority != "high" {
		t.Fatalf("unexpected failure notification: %+v", got)
	}
}

func TestDisabledCategoriesAreSilent(t *testing.T) {
	svc, got := newCapturingService(t, func(cfg *config.Config) {
		cfg.Notifications.SyncStarted = false
	})

	if err := svc.NotifySyncStarted(context.Background(), "photos", "a.txt"); err != nil {
		t.Fatalf("NotifySyncStarted failed: %v", err)
	}
	if got.message != "" {
		t.Fatalf("expected no request for disabled category, got %+v", got)
	}
}

func TestNotifyErrorCarriesContext(t *testing.T) {
	svc, got := newCapturingService(t, nil)

	err := svc.NotifyError(context.Background(), errors.New("connection refused"), "event stream")
	if err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if got.message != "event stream: connection refused" || got.priority != "high" {
		t.Fatalf("unexpected error notification: %+v", got)
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from ntfy failure")
	}
}
