package plugin

import (
	"context"
	"strings"
	"time"

	"easel/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// rescanDebounce batches bursts of manifest file events (editors write, then
// rename) into a single re-scan.
const rescanDebounce = 500 * time.Millisecond

// Watch re-scans the catalog whenever a manifest file in one of the
// configured directories changes. It blocks until ctx is done and is meant to
// run in its own goroutine. Directories that do not exist yet are skipped;
// a later Scan picks them up when they appear.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range r.dirs {
		if err := watcher.Add(dir); err != nil {
			logging.Debug("Registry", "Not watching %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		logging.Warn("Registry", "No manifest directories available to watch")
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".inx") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("Registry", "Manifest change detected: %s (%s)", event.Name, event.Op)
			if timer == nil {
				timer = time.NewTimer(rescanDebounce)
			} else {
				timer.Reset(rescanDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			count, errs := r.Scan()
			logging.Info("Registry", "Re-scan after manifest change: %d plugins, %d errors", count, len(errs))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Registry", "Watcher error: %v", err)
		}
	}
}
