package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/gritql/internal/config"
)

// watchAndRun runs run once immediately, then again every time a file
// under any of paths changes, debounced by cfg.Watch.DebounceMs so a
// burst of saves (an editor's atomic-rename dance, a build tool
// touching several files) triggers a single re-run.
func watchAndRun(ctx context.Context, cfg *config.Config, paths []string, run func() error) error {
	if err := run(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := addWatchRecursive(watcher, p); err != nil {
			return err
		}
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "gritql: watch error:", err)
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			fmt.Println("gritql: re-running on file change")
			if err := run(); err != nil {
				fmt.Fprintln(os.Stderr, "gritql:", err)
			}
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
