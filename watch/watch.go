// Package watch reports changed schema files under a directory tree.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goaux/stacktrace/v2"
	"github.com/spf13/afero"
	"github.com/takumakei/sxplr-gen-go/discover"
	"github.com/takumakei/sxplr-gen-go/logging"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits for more events before reporting.
const DefaultDebounce = 200 * time.Millisecond

// Func is called with the changed schema files, relative to the watched
// directory and sorted. An error is logged and watching continues.
type Func func(ctx context.Context, rels []string) error

// Watch watches dir and every directory below it until ctx is done.
// Created or written *.json files are collected for the debounce period and
// then passed to fn.
func Watch(ctx context.Context, dir string, debounce time.Duration, fn Func) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := stacktrace.Trace2(fsnotify.NewWatcher())
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addTree(w, dir); err != nil {
		return err
	}
	logging.Info("watching", zap.String("dir", dir))

	pending := map[string]bool{}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(w, ev.Name); err != nil {
						logging.Warn("watch", zap.String("dir", ev.Name), zap.Error(err))
					}
					pending = addSchemas(pending, dir, ev.Name)
					timer.Reset(debounce)
					continue
				}
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !discover.IsSchema(ev.Name) {
				continue
			}
			if rel, err := filepath.Rel(dir, ev.Name); err == nil {
				pending[rel] = true
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch", zap.Error(err))

		case <-timer.C:
			rels := make([]string, 0, len(pending))
			for rel := range pending {
				rels = append(rels, rel)
			}
			sort.Strings(rels)
			pending = map[string]bool{}
			if err := fn(ctx, rels); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logging.Error("regenerate", zap.Strings("schemas", rels), zap.Error(err))
			}
		}
	}
}

func addTree(w *fsnotify.Watcher, dir string) error {
	return afero.Walk(afero.NewOsFs(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return stacktrace.Trace(w.Add(path))
		}
		return nil
	})
}

// addSchemas adds the schema files already present in a newly created
// directory; their own create events may have fired before the watch.
func addSchemas(pending map[string]bool, root, dir string) map[string]bool {
	list, err := discover.WalkDir(afero.NewOsFs(), dir)
	if err != nil {
		return pending
	}
	for _, s := range list {
		if rel, err := filepath.Rel(root, s.Path); err == nil {
			pending[rel] = true
		}
	}
	return pending
}
