package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alx5409/Automatizacion/internal/config"
	"github.com/alx5409/Automatizacion/internal/records"
	"github.com/alx5409/Automatizacion/internal/session"
)

// fakeRunner records which records were handed to it.
type fakeRunner struct {
	processed []records.Record
}

func (f *fakeRunner) Process(ctx context.Context, rec records.Record) session.Result {
	f.processed = append(f.processed, rec)
	return session.Result{Files: []string{"doc.pdf"}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.TrashDir = t.TempDir()
	cfg.RecordPause = time.Millisecond
	return cfg
}

func writeRecord(t *testing.T, dir, name, regage, producer string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	content := `{"regage":"` + regage + `","nombre_productor":"` + producer + `"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunProcessesAndArchives(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(cfg.OutputDir, "productor_a")
	path := writeRecord(t, dir, "r1.json", "REG1", "Productor A")

	runner := &fakeRunner{}
	err := New(runner, cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.processed, 1)
	require.Equal(t, "REG1", runner.processed[0].Regage)

	require.NoFileExists(t, path, "processed record must leave the output folder")
	require.FileExists(t, filepath.Join(cfg.TrashDir, "Productor_A", "r1.json"),
		"archive partition is named after the producer")
}

func TestRunStopsAtMaxRecords(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxRecords = 1
	dir := filepath.Join(cfg.OutputDir, "productor_a")
	writeRecord(t, dir, "r1.json", "REG1", "P")
	second := writeRecord(t, dir, "r2.json", "REG2", "P")

	runner := &fakeRunner{}
	err := New(runner, cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.processed, 1, "limit binds the number of processed records")
	require.FileExists(t, second, "the record past the limit stays untouched")
}

func TestRunSkipsMalformedWithoutCounting(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxRecords = 1
	dir := filepath.Join(cfg.OutputDir, "productor_a")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	bad := filepath.Join(dir, "a_bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{broken"), 0o644))
	writeRecord(t, dir, "b_good.json", "REG1", "P")

	runner := &fakeRunner{}
	err := New(runner, cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.processed, 1, "malformed file must not count toward the limit")
	require.Equal(t, "REG1", runner.processed[0].Regage)
	require.FileExists(t, bad, "malformed files stay in place for inspection")
}

func TestRunAcrossProducerFolders(t *testing.T) {
	cfg := testConfig(t)
	writeRecord(t, filepath.Join(cfg.OutputDir, "a"), "r1.json", "REG1", "A")
	writeRecord(t, filepath.Join(cfg.OutputDir, "b"), "r2.json", "REG2", "B")

	runner := &fakeRunner{}
	err := New(runner, cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, runner.processed, 2)
}

func TestRunMissingOutputRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputDir = filepath.Join(t.TempDir(), "missing")

	err := New(&fakeRunner{}, cfg, testLogger()).Run(context.Background())
	require.Error(t, err, "missing output root aborts the whole run")
}

func TestRunNoProducerFolders(t *testing.T) {
	cfg := testConfig(t)

	err := New(&fakeRunner{}, cfg, testLogger()).Run(context.Background())
	require.Error(t, err)
}

func TestRunCancelledBetweenRecords(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecordPause = 10 * time.Second
	dir := filepath.Join(cfg.OutputDir, "productor_a")
	writeRecord(t, dir, "r1.json", "REG1", "P")
	writeRecord(t, dir, "r2.json", "REG2", "P")

	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := New(runner, cfg, testLogger()).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, runner.processed, 1, "cancellation lands in the inter-record pause")
}
