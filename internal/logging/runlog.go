package logging

// runlog.go manages the per-run log files written next to the terminal output.
//
// Each run opens logs/run_YYYY-MM-DD_HH-MM-SS.log. Before opening, older files
// are pruned: the newest maxCount files are always kept, and anything beyond
// that is removed once it is older than maxAge.

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// RunLogLayout is the timestamp layout used in run log file names.
const RunLogLayout = "2006-01-02_15-04-05"

// OpenRunLog prunes dir and opens a new run log file in it.
func OpenRunLog(dir string, now time.Time, maxAge time.Duration, maxCount int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := CleanupRunLogs(dir, now, maxAge, maxCount); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.log", now.Format(RunLogLayout)))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// CleanupRunLogs removes .log files in dir that are both outside the newest
// maxCount and older than maxAge. Files that cannot be inspected or removed
// are skipped.
func CleanupRunLogs(dir string, now time.Time, maxAge time.Duration, maxCount int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read logs directory: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}

	var files []logFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	// Newest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	if maxCount < 0 {
		maxCount = 0
	}
	if len(files) <= maxCount {
		return nil
	}

	cutoff := now.Add(-maxAge)
	for _, f := range files[maxCount:] {
		if f.modTime.Before(cutoff) {
			if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to remove old log file", "path", f.path, "error", err)
			}
		}
	}

	return nil
}
