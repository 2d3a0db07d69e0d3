package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/cragbook/models"
)

type feedServer struct {
	mu   sync.Mutex
	body string
}

func (f *feedServer) set(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = body
}

func (f *feedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "text/csv")
	fmt.Fprint(w, f.body)
}

func writeConfig(t *testing.T, feedURL string, maxArchive int) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
database:
  dialect: sqlite
  path: %s
feed:
  kind: csv
  csv_urls:
    Routes: %s
sync:
  walls: [prow, the-cave, slab]
  max_archive_per_run: %d
  timezone: UTC
log:
  level: error
`, filepath.Join(dir, "cragbook.db"), feedURL, maxArchive)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const feedHeader = "Zone,Label,Color,Grade,Style,Hold,Setter,Date\n"

func TestSyncCommandsEndToEnd(t *testing.T) {
	feed := &feedServer{}
	feed.set(feedHeader +
		"1,,Blue,V4,Overhang,Jugs,Alex,5/1\n" +
		"2,,Red,V6,,,,5/2\n" +
		"7,,Green,V0,,,,5/3\n")
	srv := httptest.NewServer(feed)
	defer srv.Close()
	cfgPath := writeConfig(t, srv.URL, 1)

	out, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = run(t, "--config", cfgPath, "preview")
	require.NoError(t, err)
	var preview models.PreviewResponse
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, 2, preview.NewCount)
	assert.Equal(t, 1, preview.RejectedCount)
	assert.False(t, preview.WouldBeSkipped)

	out, err = run(t, "--config", cfgPath, "--format", "text", "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "2 added, 0 archived, 0 updated")

	// Both routes vanish from the sheet; the limit of 1 vetoes the pass.
	feed.set(feedHeader)
	out, err = run(t, "--config", cfgPath, "apply")
	require.NoError(t, err)
	var result models.ApplyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Skipped)
	assert.Equal(t, 2, result.RoutesThatWouldBeArchivedCount)

	out, err = run(t, "--config", cfgPath, "runs")
	require.NoError(t, err)
	var runs []models.SyncRun
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	statuses := []models.SyncRunStatus{runs[0].Status, runs[1].Status}
	assert.ElementsMatch(t, []models.SyncRunStatus{models.SyncRunApplied, models.SyncRunSkipped}, statuses)

	out, err = run(t, "--config", cfgPath, "--format", "text", "runs", "-n", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TRIGGER")
}

func TestPreviewFeedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := run(t, "--config", writeConfig(t, srv.URL, 10), "preview")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not shared")
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "yaml", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

func TestWritePreviewText(t *testing.T) {
	diff := models.NewDiff()
	diff.New = []models.Candidate{{WallID: "prow", Grade: "V4", Color: "Blue", SetDate: "2026-05-01"}}
	diff.Missing = make([]models.Route, 12)
	diff.Rejected = []models.RejectedRow{{Tab: "Routes", Row: 4, Reason: "zone: required cell is empty"}}

	var buf bytes.Buffer
	writePreviewText(&buf, diff, true, 10)
	out := buf.String()
	assert.Contains(t, out, "new: 1  existing: 0  missing: 12  rejected: 1")
	assert.Contains(t, out, "+ prow V4 Blue (2026-05-01)")
	assert.Contains(t, out, "Routes row 4")
	assert.Contains(t, out, "archive limit of 10")
}
