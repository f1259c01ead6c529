package config

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// FileWatcher polls file modification times and triggers a callback on change.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	logger    *slog.Logger
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string), logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		logger:    logger,
		lastMTime: make(map[string]time.Time),
	}
}

// Run polls until ctx is done. The first scan only records mtimes.
func (w *FileWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.scanAll(true)
	for {
		select {
		case <-ticker.C:
			w.scanAll(false)
		case <-ctx.Done():
			return nil
		}
	}
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			// a missing file keeps its last mtime; it fires again once it reappears newer
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		if !ok {
			w.lastMTime[p] = mt
			if !prime && w.onChange != nil {
				w.logger.Info("config file appeared", "path", p)
				w.onChange(p)
			}
			continue
		}
		if mt.After(last) {
			w.lastMTime[p] = mt
			if !prime && w.onChange != nil {
				w.logger.Info("config file changed", "path", p)
				w.onChange(p)
			}
		}
	}
}
