// Package watcher reports file changes below a directory tree.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goplus/v4l2build/internal/logger"
)

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher watches every directory of a tree, including directories
// created after it started.
type Watcher struct {
	w    *fsnotify.Watcher
	skip map[string]bool
	out  chan string
	done chan struct{}
}

// Start watches root. Directories named like one of skip are ignored.
func Start(root string, skip ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		w:    fw,
		skip: make(map[string]bool, len(skip)),
		out:  make(chan string, 100),
		done: make(chan struct{}),
	}
	for _, name := range skip {
		w.skip[name] = true
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

// Changes delivers the path of every changed file. It is closed by Close.
func (w *Watcher) Changes() <-chan string {
	return w.out
}

func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return nil
		}
		if w.skip[fi.Name()] && path != root {
			return filepath.SkipDir
		}
		return w.w.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.out)
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if event.Op&changeOps == 0 || w.skip[filepath.Base(event.Name)] {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Warn("msg", "cannot watch directory", "path", event.Name, "err", err)
					}
				}
			}
			logger.Debug("msg", "detected change", "path", event.Name, "op", event.Op)
			w.out <- event.Name
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			logger.Warn("msg", "watch error", "err", err)
		}
	}
}

// Debounce groups changes arriving less than quiet apart. Each batch is
// sorted and free of duplicates. The returned channel is closed once in
// is closed and the last batch was delivered.
func Debounce(in <-chan string, quiet time.Duration) <-chan []string {
	out := make(chan []string)
	go func() {
		defer close(out)
		pending := make(map[string]bool)
		timer := time.NewTimer(quiet)
		timer.Stop()
		flush := func() {
			if len(pending) == 0 {
				return
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]bool)
			out <- batch
		}
		for {
			select {
			case p, ok := <-in:
				if !ok {
					timer.Stop()
					flush()
					return
				}
				pending[p] = true
				timer.Reset(quiet)
			case <-timer.C:
				flush()
			}
		}
	}()
	return out
}
