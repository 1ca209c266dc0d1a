package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

// setupCLITestEnv writes a config file pointing at the given daemon URL with
// temp data and log directories.
func setupCLITestEnv(t *testing.T, daemonURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[daemon]
url = %q
api_key = "test"

[paths]
data_dir = %q
log_dir = %q
`, daemonURL, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q does not contain %q", output, want)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t, "http://127.0.0.1:1")

	out, err := runCLI(t, env, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Folders:  0")

	out, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cache cleared")
}

func TestStatusFetchesAndCaches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/db/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"sequence":12,"state":"idle","globalFiles":3,"globalBytes":4096,"localFiles":3,"localBytes":4096}`)
	}))
	defer server.Close()

	env := setupCLITestEnv(t, server.URL)

	out, err := runCLI(t, env, "status", "docs")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "docs")
	requireContains(t, out, "idle")
	requireContains(t, out, "12")

	// Second run with the daemon gone serves the cached snapshot.
	server.Close()
	out, err = runCLI(t, env, "status", "docs")
	if err != nil {
		t.Fatalf("status from cache: %v", err)
	}
	requireContains(t, out, "idle (cached)")
}

func TestBrowseRendersListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/db/status":
			fmt.Fprint(w, `{"sequence":5,"state":"idle"}`)
		case "/rest/db/browse":
			fmt.Fprint(w, `[
				{"name":"notes.txt","type":"FILE_INFO_TYPE_FILE","size":2048},
				{"name":"archive","type":"FILE_INFO_TYPE_DIRECTORY"}
			]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	env := setupCLITestEnv(t, server.URL)

	out, err := runCLI(t, env, "browse", "docs")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	requireContains(t, out, "archive/")
	requireContains(t, out, "notes.txt")
	requireContains(t, out, "2.0 KiB")
	requireContains(t, out, "unknown")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "http://127.0.0.1:1")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestRevertRequiresConfirmation(t *testing.T) {
	env := setupCLITestEnv(t, "http://127.0.0.1:1")

	_, err := runCLI(t, env, "revert", "docs")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}
