package stdaemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"syncview/internal/stdaemon"
)

func newTestClient(t *testing.T, handler http.Handler) (*stdaemon.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := stdaemon.New(srv.URL, "test-key", 5*time.Second)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client, srv
}

func TestFolderStatusSendsAPIKeyAndDecodes(t *testing.T) {
	var gotKey, gotFolder string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotFolder = r.URL.Query().Get("folder")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stdaemon.FolderStatus{Sequence: 42, State: "idle", NeedTotalItems: 3})
	}))

	status, err := client.FolderStatus(context.Background(), "photos")
	if err != nil {
		t.Fatalf("FolderStatus error: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected API key header, got %q", gotKey)
	}
	if gotFolder != "photos" {
		t.Fatalf("unexpected folder query: %q", gotFolder)
	}
	if status.Sequence != 42 || status.NeedTotalItems != 3 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestBrowseBuildsQueryAndNormalizesKinds(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"sub","type":"FILE_INFO_TYPE_DIRECTORY","size":128},
			{"name":"a.txt","type":"FILE_INFO_TYPE_FILE","size":10}
		]`))
	}))

	entries, err := client.Browse(context.Background(), "photos", "2024/")
	if err != nil {
		t.Fatalf("Browse error: %v", err)
	}
	if gotQuery.Get("folder") != "photos" || gotQuery.Get("prefix") != "2024/" || gotQuery.Get("levels") != "0" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind() != stdaemon.KindDirectory || entries[1].Kind() != stdaemon.KindFile {
		t.Fatalf("unexpected kinds: %s %s", entries[0].Kind(), entries[1].Kind())
	}
}

func TestBrowseTreatsMissingFolderAsEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such folder", http.StatusNotFound)
	}))

	entries, err := client.Browse(context.Background(), "gone", "")
	if err != nil {
		t.Fatalf("expected benign error to map to empty listing, got %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty listing, got %v", entries)
	}
}

func TestBrowseSurfacesHardErrors(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))

	if _, err := client.Browse(context.Background(), "photos", ""); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestFileInfoDecodesVersionVector(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"local": {"deleted":false,"version":["ABCD:1","EFGH:2"],"sequence":7},
			"global": {"deleted":false,"version":["ABCD:1","EFGH:2"],"sequence":7},
			"availability": [{"id":"DEVICE-X"}]
		}`))
	}))

	info, err := client.FileInfo(context.Background(), "photos", "a.txt")
	if err != nil {
		t.Fatalf("FileInfo error: %v", err)
	}
	if info.Local == nil || info.Global == nil {
		t.Fatal("expected both metadata sides")
	}
	if info.Local.Version != "ABCD:1,EFGH:2" {
		t.Fatalf("unexpected version vector: %q", info.Local.Version)
	}
	if len(info.Availability) != 1 || info.Availability[0].ID != "DEVICE-X" {
		t.Fatalf("unexpected availability: %+v", info.Availability)
	}
}

func TestSetIgnorePatternsPostsJSON(t *testing.T) {
	var gotBody map[string][]string
	var gotMethod string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.SetIgnorePatterns(context.Background(), "photos", []string{"*.tmp", "!keep"})
	if err != nil {
		t.Fatalf("SetIgnorePatterns error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if len(gotBody["ignore"]) != 2 || gotBody["ignore"][0] != "*.tmp" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestEventsPollPassesCursorAndTimeout(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":10,"type":"ItemFinished","data":{"folder":"photos","item":"a.txt"}}]`))
	}))

	events, err := client.Events(context.Background(), 9, 30*time.Second)
	if err != nil {
		t.Fatalf("Events error: %v", err)
	}
	if gotQuery.Get("since") != "9" || gotQuery.Get("timeout") != "30" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if len(events) != 1 || events[0].ID != 10 || events[0].Type != stdaemon.EventItemFinished {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	_, err := client.FolderStatus(context.Background(), "photos")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, stdaemon.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
