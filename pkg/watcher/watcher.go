// Package watcher provides recursive source watching for rebuild-on-change
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ueforge/ueforge/pkg/logger"
)

// defaultSettling is how long the watcher waits for a burst of file events
// to quiet down before firing one trigger.
const defaultSettling = 500 * time.Millisecond

// sourceExtensions are the file types that trigger a rebuild
var sourceExtensions = map[string]bool{
	".cpp":    true,
	".h":      true,
	".hpp":    true,
	".inl":    true,
	".cs":     true,
	".ini":    true,
	".uasset": true,
}

// SourceWatcher watches a project source tree and coalesces change bursts
// into single triggers.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	logger   logger.Logger
	settling time.Duration
}

// New creates a source watcher
func New(log logger.Logger) (*SourceWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &SourceWatcher{
		watcher:  fsw,
		logger:   log,
		settling: defaultSettling,
	}, nil
}

// SetSettlingDelay overrides the event coalescing window
func (w *SourceWatcher) SetSettlingDelay(d time.Duration) {
	w.settling = d
}

// Close releases the underlying watcher
func (w *SourceWatcher) Close() error {
	return w.watcher.Close()
}

// Watch registers root and every directory beneath it, then blocks
// delivering coalesced change triggers to callback until the context is
// cancelled. New directories created while watching are picked up.
func (w *SourceWatcher) Watch(ctx context.Context, root string, callback func(changed []string)) error {
	if err := w.addTree(root); err != nil {
		return err
	}
	w.logger.Info("watching for source changes", logger.WithField("root", root))

	var (
		pending []string
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Debug("failed to watch new directory",
							logger.WithField("path", event.Name),
							logger.WithField("error", err))
					}
					continue
				}
			}
			if !isSourceFile(event.Name) {
				continue
			}
			pending = append(pending, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.settling)
			} else {
				timer.Reset(w.settling)
			}
			fire = timer.C

		case <-fire:
			changed := dedupe(pending)
			pending = nil
			fire = nil
			w.logger.Debug("source changes settled", logger.WithField("files", len(changed)))
			callback(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logger.WithField("error", err))
		}
	}
}

func (w *SourceWatcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		// engine-generated trees churn constantly and never need rebuilds
		switch name {
		case "Binaries", "Intermediate", "Saved", "DerivedDataCache":
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func isSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
