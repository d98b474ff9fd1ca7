package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/plan"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd, a := newRootCmd()
	defer a.close()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.json"), "--log-level", "warn"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestOrder(t *testing.T) {
	out, err := run(t, "order", "testdata/build.json")
	require.NoError(t, err)
	assert.Equal(t, `  1. fetch (Fetch sources)
  2. lint (Lint)
  3. compile (Compile)
  4. test (Test)
  5. package (Package)
`, out)
}

func TestOrderByPriorityJSON(t *testing.T) {
	out, err := run(t, "order", "--by-priority", "--json", "testdata/build.json")
	require.NoError(t, err)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []string{"fetch", "compile", "lint", "test", "package"}, ids)
}

func TestCriticalPath(t *testing.T) {
	out, err := run(t, "critical-path", "--unit", "min", "testdata/build.json")
	require.NoError(t, err)
	assert.Equal(t, "total: 6.5 min (6.50 min)\npath:  fetch -> compile -> test -> package\n", out)

	_, err = run(t, "cp", "--unit", "km", "testdata/build.json")
	assert.Error(t, err)
}

func TestCyclicPlanRejected(t *testing.T) {
	_, err := run(t, "critical-path", "testdata/cyclic.json")
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.ErrorContains(t, err, "dependencies[1]")
}

func TestFailedCommandStopsEventTracing(t *testing.T) {
	cmd, a := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "absent.json"),
		"--log-level", "trace",
		"critical-path", "testdata/cyclic.json",
	})
	require.Error(t, cmd.Execute())

	traced := a.traced
	require.NotNil(t, traced)
	a.close()
	select {
	case <-traced:
	default:
		t.Fatal("event tracer still running after close")
	}
	assert.Nil(t, a.bus)
	a.close()

	// The next invocation reconfigures the global logger; with the tracer
	// joined nothing else reads it concurrently.
	_, err := run(t, "--log-level", "trace", "order", "testdata/build.json")
	require.NoError(t, err)
}

func TestAnalyzeStdout(t *testing.T) {
	out, err := run(t, "analyze", "testdata/build.json")
	require.NoError(t, err)

	r, err := plan.DecodeReport(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "testdata/build.json", r.Source)
	assert.Equal(t, "s", r.Unit)
	assert.InDelta(t, 390.0, r.Total, 1e-9)
	assert.Equal(t, []string{"fetch", "compile", "test", "package"}, r.CriticalPath)
	assert.Equal(t, [][]string{{"fetch"}, {"lint", "compile"}, {"test"}, {"package"}}, r.Waves)
}

func TestAnalyzeWindowMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"horizon": {"start": 0, "end": 600},
		"tasks": [{"id": "observe", "size": 1, "unit": "min", "windows": [{"start": 100, "end": 200}]}]
	}`), 0o644))

	out, err := run(t, "analyze", path)
	require.NoError(t, err)
	r, err := plan.DecodeReport(strings.NewReader(out))
	require.NoError(t, err)

	require.Len(t, r.Tasks, 1)
	w := r.Tasks[0].Windows
	require.NotNil(t, w)
	require.NotNil(t, w.EarliestStart)
	assert.InDelta(t, 100.0, *w.EarliestStart, 1e-9)
	assert.InDelta(t, 140.0, *w.Deadline, 1e-9)
	assert.InDelta(t, 100.0/60, w.Flexibility, 1e-9)
}

func TestAnalyzeSeveralPlansIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "copy.json")
	data, err := os.ReadFile("testdata/build.json")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(second, data, 0o644))

	outDir := filepath.Join(dir, "reports")
	_, err = run(t, "analyze", "--unit", "min", "--out", outDir, "testdata/build.json", second)
	require.NoError(t, err)

	for _, name := range []string{"build.report.json", "copy.report.json"} {
		fh, err := os.Open(filepath.Join(outDir, name))
		require.NoError(t, err)
		r, err := plan.DecodeReport(fh)
		fh.Close()
		require.NoError(t, err)
		assert.InDelta(t, 6.5, r.Total, 1e-9, name)
	}
}

func TestAnalyzeFailsOnAnyBadPlan(t *testing.T) {
	_, err := run(t, "analyze", "testdata/build.json", "testdata/cyclic.json")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	_, err = run(t, "analyze", "testdata/missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchFileDebouncesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 20*time.Millisecond, func() { changed <- struct{}{} })
	}()

	// The watcher registers asynchronously; keep touching the file until it
	// notices.
	deadline := time.After(5 * time.Second)
	seen := false
	for !seen {
		require.NoError(t, os.WriteFile(path, []byte(`{"tasks": []}`), 0o644))
		select {
		case <-changed:
			seen = true
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

drain:
	for {
		select {
		case <-changed:
		case <-time.After(100 * time.Millisecond):
			break drain
		}
	}

	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), nil, 0o644))
	select {
	case <-changed:
		t.Fatal("change reported for another file")
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}
