package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/internal/dispatcher"
	"github.com/courtplan/courtplan/internal/interaction"
	"github.com/courtplan/courtplan/internal/storage/memory"
	"github.com/courtplan/courtplan/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

const lineupJSON = `{
  "name": "Varsity",
  "roster": [
    {"id": "p1", "name": "Ana", "number": 1, "role": "Setter"},
    {"id": "p2", "name": "Bea", "number": 2, "role": "Outside Hitter"},
    {"id": "p3", "name": "Cleo", "number": 3, "role": "Middle Blocker"},
    {"id": "p4", "name": "Dee", "number": 4, "role": "Opposite"},
    {"id": "p5", "name": "Eve", "number": 5, "role": "Outside Hitter"},
    {"id": "p6", "name": "Fay", "number": 6, "role": "Middle Blocker"},
    {"id": "L1", "name": "Gia", "number": 7, "role": "Libero"}
  ],
  "startingSix": ["p1", "p2", "p3", "p4", "p5", "p6"]
}`

func nopSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadLineup_AssignsID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.json")
	writeFile(t, path, lineupJSON)

	l, err := loadLineup(path)
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "Varsity", l.Name)
	assert.Len(t, l.Roster, 7)
}

func TestLoadLineup_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadLineup(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"name":`)
	_, err = loadLineup(bad)
	assert.Error(t, err)

	short := filepath.Join(dir, "short.json")
	writeFile(t, short, `{"id":"x","roster":[{"id":"a"}],"startingSix":["a"]}`)
	_, err = loadLineup(short)
	assert.Error(t, err)
}

func TestRunScript(t *testing.T) {
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	defer d.Close()

	var got [][]string
	d.Register(":ECHO:", func(e dispatcher.Event) (any, error) {
		got = append(got, e.Args)
		return nil, nil
	})
	d.Register(":FRAME:", func(e dispatcher.Event) (any, error) {
		return worker.FrameResult{Seq: 7}, nil
	})
	d.Register(":SUB:", func(e dispatcher.Event) (any, error) {
		return interaction.Outcome{Notice: "no"}, nil
	})
	d.Register(":FAIL:", func(e dispatcher.Event) (any, error) {
		return nil, errors.New("boom")
	})

	script := strings.Join([]string{
		"# comment",
		"",
		`:ECHO: a "b c" "say ""hi"""`,
		":FRAME:",
		":SUB: x y",
		":FAIL:",
		":NOPE:",
	}, "\n")

	var out bytes.Buffer
	stats, err := runScript(strings.NewReader(script), &out, d, nopSlog())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.lines)
	assert.Equal(t, 2, stats.failed)
	assert.Equal(t, [][]string{{"a", `"b c"`, `"say ""hi"""`}}, got)

	var replies []reply
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r reply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		replies = append(replies, r)
	}
	require.Len(t, replies, 4)
	assert.Equal(t, 4, replies[0].Line)
	assert.Equal(t, ":FRAME:", replies[0].Command)
	assert.NotNil(t, replies[0].Result)
	assert.Equal(t, "no", replies[1].Notice)
	assert.Equal(t, "boom", replies[2].Error)
	assert.Contains(t, replies[3].Error, ":NOPE:")
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	exports := filepath.Join(dir, "exports")
	writeFile(t, filepath.Join(dir, "lineup.json"), lineupJSON)

	var uploaded struct{ name, snapshots string }
	share := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/lineups/add" && r.ParseMultipartForm(1<<20) == nil {
			uploaded.name = r.FormValue("lineupName")
			uploaded.snapshots = r.FormValue("snapshots")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer share.Close()

	cfg, err := json.Marshal(map[string]any{
		"logLevel": "debug",
		"logsDir":  filepath.Join(dir, "logs"),
		"storage": map[string]any{
			"type":   "memory",
			"memory": map[string]any{"outputDir": exports},
		},
		"persist": map[string]any{"flushInterval": "10ms"},
		"upload":  map[string]any{"enabled": true, "url": share.URL, "apiKey": "k"},
	})
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, config.FileName), string(cfg))

	script := strings.Join([]string{
		":ENTER: 1 attack offense",
		":TOOL: line",
		":DOWN: 50 250",
		":MOVE: 450 250",
		":UP: 450 250",
		`:NOTES: "cover the tip"`,
		":LOG: info replay done",
		":FRAME:",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, run(dir, strings.NewReader(script), &out))

	var r struct {
		Result struct {
			Seq   int    `json:"seq"`
			Key   string `json:"key"`
			Notes string `json:"notes"`
			Paths []struct {
				Type string `json:"type"`
			} `json:"paths"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, 1, r.Result.Seq)
	assert.Equal(t, "1_attack_offense", r.Result.Key)
	assert.Equal(t, "cover the tip", r.Result.Notes)
	require.Len(t, r.Result.Paths, 1)
	assert.Equal(t, "line", r.Result.Paths[0].Type)

	files, err := filepath.Glob(filepath.Join(exports, "Varsity_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var export memory.LineupExport
	require.NoError(t, json.Unmarshal(data, &export))
	require.Len(t, export.Snapshots, 1)
	assert.Equal(t, "1_attack_offense", export.Snapshots[0].Key)
	assert.Len(t, export.Snapshots[0].Paths, 1)
	assert.Equal(t, "cover the tip", export.Snapshots[0].Notes)

	assert.Equal(t, "Varsity", uploaded.name)
	assert.Equal(t, "1", uploaded.snapshots)

	logs, err := filepath.Glob(filepath.Join(dir, "logs", "courtplan.*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	logData, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(logData), "replay done")
}
