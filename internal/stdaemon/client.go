package stdaemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "syncview/0.1.0"

// ErrUnauthorized indicates the daemon rejected the configured API key.
var ErrUnauthorized = errors.New("daemon rejected API key")

// Client provides typed access to the daemon REST API.
type Client struct {
	base   *url.URL
	apiKey string
	http   *http.Client
	// poll has no timeout: event long-polls block until the daemon responds
	// or the caller cancels the context.
	poll *http.Client
}

// New builds a client for the given base URL and API key.
func New(baseURL, apiKey string, requestTimeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("daemon url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse daemon url: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return &Client{
		base:   base,
		apiKey: apiKey,
		http:   &http.Client{Timeout: requestTimeout},
		poll:   &http.Client{},
	}, nil
}

// FolderStatus fetches the folder's current status, including its sequence.
func (c *Client) FolderStatus(ctx context.Context, folder string) (FolderStatus, error) {
	var status FolderStatus
	values := url.Values{"folder": {folder}}
	if err := c.getJSON(ctx, "/rest/db/status", values, &status); err != nil {
		return FolderStatus{}, err
	}
	return status, nil
}

// Browse lists the immediate children of prefix within the folder. A missing
// or paused folder yields an empty listing rather than an error.
func (c *Client) Browse(ctx context.Context, folder, prefix string) ([]BrowseEntry, error) {
	values := url.Values{"folder": {folder}, "levels": {"0"}}
	if prefix != "" {
		values.Set("prefix", prefix)
	}
	var entries []BrowseEntry
	if err := c.getJSON(ctx, "/rest/db/browse", values, &entries); err != nil {
		if isBenignBrowseError(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// FileInfo fetches local/global index metadata plus availability for a path.
func (c *Client) FileInfo(ctx context.Context, folder, path string) (FileInfoResponse, error) {
	var info FileInfoResponse
	values := url.Values{"folder": {folder}, "file": {path}}
	if err := c.getJSON(ctx, "/rest/db/file", values, &info); err != nil {
		return FileInfoResponse{}, err
	}
	return info, nil
}

// LocalChangedFiles lists locally-modified items in a receive-only folder.
func (c *Client) LocalChangedFiles(ctx context.Context, folder string) ([]LocalChangedFile, error) {
	var payload struct {
		Files []LocalChangedFile `json:"files"`
	}
	values := url.Values{"folder": {folder}}
	if err := c.getJSON(ctx, "/rest/db/localchanged", values, &payload); err != nil {
		return nil, err
	}
	return payload.Files, nil
}

// IgnorePatterns fetches the folder's ignore patterns.
func (c *Client) IgnorePatterns(ctx context.Context, folder string) (IgnoresResponse, error) {
	var resp IgnoresResponse
	values := url.Values{"folder": {folder}}
	if err := c.getJSON(ctx, "/rest/db/ignores", values, &resp); err != nil {
		return IgnoresResponse{}, err
	}
	return resp, nil
}

// SetIgnorePatterns replaces the folder's ignore patterns.
func (c *Client) SetIgnorePatterns(ctx context.Context, folder string, patterns []string) error {
	body, err := json.Marshal(map[string][]string{"ignore": patterns})
	if err != nil {
		return fmt.Errorf("marshal ignore patterns: %w", err)
	}
	values := url.Values{"folder": {folder}}
	return c.post(ctx, "/rest/db/ignores", values, body)
}

// Rescan asks the daemon to rescan the folder, optionally under sub.
func (c *Client) Rescan(ctx context.Context, folder, sub string) error {
	values := url.Values{"folder": {folder}}
	if sub != "" {
		values.Set("sub", sub)
	}
	return c.post(ctx, "/rest/db/scan", values, nil)
}

// Revert undoes local changes in a receive-only folder.
func (c *Client) Revert(ctx context.Context, folder string) error {
	values := url.Values{"folder": {folder}}
	return c.post(ctx, "/rest/db/revert", values, nil)
}

// Connections reports daemon connectivity, mostly as a reachability probe.
func (c *Client) Connections(ctx context.Context) (Connections, error) {
	var conns Connections
	if err := c.getJSON(ctx, "/rest/system/connections", nil, &conns); err != nil {
		return Connections{}, err
	}
	return conns, nil
}

// Events long-polls the event stream for events with an id greater than
// since. The daemon holds the request open up to timeout before returning an
// empty list; the call itself is bounded only by ctx.
func (c *Client) Events(ctx context.Context, since int64, timeout time.Duration) ([]Event, error) {
	values := url.Values{
		"since":  {strconv.FormatInt(since, 10)},
		"events": {strings.Join(consumedEventTypes, ",")},
	}
	if timeout > 0 {
		values.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/rest/events", values, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.poll.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll events: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

var consumedEventTypes = []string{
	EventLocalIndexUpdated,
	EventRemoteIndexUpdated,
	EventItemStarted,
	EventItemFinished,
	EventLocalChangeDetected,
	EventRemoteChangeDetected,
}

func (c *Client) newRequest(ctx context.Context, method, path string, values url.Values, body []byte) (*http.Request, error) {
	endpoint := *c.base
	endpoint.Path = path
	if values != nil {
		endpoint.RawQuery = values.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, values, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call daemon: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, values url.Values, body []byte) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, values, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call daemon: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("daemon returned %d", e.code)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.code, e.body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	message := strings.TrimSpace(string(body))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w (%d)", ErrUnauthorized, resp.StatusCode)
	}
	return &statusError{code: resp.StatusCode, body: message}
}

// isBenignBrowseError matches the daemon's textual errors for folders that
// exist in config but cannot be browsed right now.
func isBenignBrowseError(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	msg := strings.ToLower(se.body)
	return strings.Contains(msg, "no such folder") ||
		strings.Contains(msg, "folder does not exist") ||
		strings.Contains(msg, "paused")
}
