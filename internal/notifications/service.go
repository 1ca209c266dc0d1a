package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"syncview/internal/config"
)

const userAgent = "syncview/0.1.0"

// Service defines the notification surface exposed to the event listener.
type Service interface {
	NotifySyncStarted(ctx context.Context, folder, item string) error
	NotifySyncFinished(ctx context.Context, folder, item, failure string) error
	NotifyError(ctx context.Context, err error, what string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		cfg:      cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	cfg      config.Notifications
}

func (n *ntfyService) NotifySyncStarted(ctx context.Context, folder, item string) error {
	if !n.cfg.SyncStarted {
		return nil
	}
	data := payload{
		title:   "syncview - Sync Started",
		message: fmt.Sprintf("Syncing %s in %s", item, folder),
		tags:    []string{"syncview", "sync", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySyncFinished(ctx context.Context, folder, item, failure string) error {
	if !n.cfg.SyncFinished {
		return nil
	}
	data := payload{
		title:   "syncview - Sync Finished",
		message: fmt.Sprintf("Finished %s in %s", item, folder),
		tags:    []string{"syncview", "sync", "finished"},
	}
	if failure != "" {
		data.title = "syncview - Sync Failed"
		data.message = fmt.Sprintf("Failed %s in %s: %s", item, folder, failure)
		data.tags = []string{"syncview", "sync", "failed"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, what string) error {
	if !n.cfg.Errors || err == nil {
		return nil
	}
	data := payload{
		title:    "syncview - Error",
		message:  fmt.Sprintf("%s: %v", what, err),
		tags:     []string{"syncview", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "syncview - Test",
		message: "Notifications are working",
		tags:    []string{"syncview", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySyncStarted(context.Context, string, string) error          { return nil }
func (noopService) NotifySyncFinished(context.Context, string, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }

// NewNop returns the noop service, used by tests and commands that render
// their own output.
func NewNop() Service {
	return noopService{}
}
