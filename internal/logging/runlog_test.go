package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestCleanupRunLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	newest := touch(t, dir, "run_a.log", now.Add(-1*time.Hour))
	recent := touch(t, dir, "run_b.log", now.Add(-2*24*time.Hour))
	oldKept := touch(t, dir, "run_c.log", now.Add(-10*24*time.Hour))
	oldRemoved := touch(t, dir, "run_d.log", now.Add(-11*24*time.Hour))
	notALog := touch(t, dir, "notes.txt", now.Add(-30*24*time.Hour))

	// Keep the newest 2; of the rest, only files older than 7 days go.
	// run_c is third newest and old, so it is removed too.
	if err := CleanupRunLogs(dir, now, 7*24*time.Hour, 2); err != nil {
		t.Fatalf("CleanupRunLogs() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{newest, true},
		{recent, true},
		{oldKept, false},
		{oldRemoved, false},
		{notALog, true},
	}
	for _, tt := range tests {
		if got := exists(tt.path); got != tt.want {
			t.Errorf("%s exists = %v, want %v", filepath.Base(tt.path), got, tt.want)
		}
	}
}

func TestCleanupRunLogs_YoungFilesSurviveBeyondCount(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	a := touch(t, dir, "run_a.log", now.Add(-time.Minute))
	b := touch(t, dir, "run_b.log", now.Add(-2*time.Minute))

	if err := CleanupRunLogs(dir, now, 7*24*time.Hour, 1); err != nil {
		t.Fatal(err)
	}
	if !exists(a) || !exists(b) {
		t.Error("files younger than maxAge must be kept even past maxCount")
	}
}

func TestOpenRunLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2026, 5, 20, 9, 30, 15, 0, time.UTC)

	f, err := OpenRunLog(dir, now, 7*24*time.Hour, 100)
	if err != nil {
		t.Fatalf("OpenRunLog() error = %v", err)
	}
	defer f.Close()

	want := filepath.Join(dir, "run_2026-05-20_09-30-15.log")
	if f.Name() != want {
		t.Errorf("log file = %q, want %q", f.Name(), want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-42")
	if got := RunIDFromContext(ctx); got != "run-42" {
		t.Errorf("RunIDFromContext = %q, want %q", got, "run-42")
	}
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q, want empty", got)
	}
}
