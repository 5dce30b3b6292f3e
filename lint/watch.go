// lint/watch.go
package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 200 * time.Millisecond

// Watch calls onChange with the paths (as given) that were written or
// recreated since the last call. It watches parent directories so files
// replaced by rename are still seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, paths []string, logger *zap.Logger, onChange func(changed []string)) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("lint: create watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("lint: resolve %s: %w", p, err)
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("lint: watch %s: %w", d, err)
		}
		logger.Debug("watching directory", zap.String("dir", d))
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p, ok := targets[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			logger.Debug("file changed", zap.String("path", p), zap.Stringer("op", ev.Op))
			pending[p] = true
			timer.Reset(watchDebounce)

		case <-timer.C:
			var changed []string
			for _, p := range paths {
				if pending[p] {
					changed = append(changed, p)
				}
			}
			clear(pending)
			if len(changed) > 0 {
				onChange(changed)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
