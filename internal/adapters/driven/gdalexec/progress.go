package gdalexec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// progressInterval throttles tile-count log lines.
const progressInterval = 2 * time.Second

// progressWatcher counts tile files appearing under the output
// directory while gdal2tiles runs. New zoom/column directories are
// added to the watch as they are created.
type progressWatcher struct {
	watcher *fsnotify.Watcher
	count   atomic.Int64
	done    chan struct{}
	stopped chan struct{}
}

func newProgressWatcher(outDir string, log driven.LogFn) (*progressWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(outDir); err != nil {
		fw.Close()
		return nil, err
	}

	pw := &progressWatcher{
		watcher: fw,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go pw.loop(log)
	return pw, nil
}

func (pw *progressWatcher) loop(log driven.LogFn) {
	defer close(pw.stopped)

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	var lastReported int64
	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				pw.addTree(event.Name)
				continue
			}
			if strings.EqualFold(filepath.Ext(event.Name), ".png") {
				pw.count.Add(1)
			}

		case <-ticker.C:
			if n := pw.count.Load(); n > lastReported {
				lastReported = n
				log(fmt.Sprintf("tiles written: %d", n))
			}

		case _, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}

		case <-pw.done:
			if n := pw.count.Load(); n > lastReported {
				log(fmt.Sprintf("tiles written: %d", n))
			}
			return
		}
	}
}

// addTree watches dir and everything already inside it. Children may
// have been created before the watch on dir took effect, so the walk
// both registers nested directories and counts tiles that slipped in
// during the gap. Depth is bounded by the z/x/y layout.
func (pw *progressWatcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = pw.watcher.Add(path)
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".png") {
			pw.count.Add(1)
		}
		return nil
	})
}

// Count returns the number of tiles observed so far.
func (pw *progressWatcher) Count() int64 {
	return pw.count.Load()
}

// Close stops the watch loop and releases the underlying watcher.
func (pw *progressWatcher) Close() {
	close(pw.done)
	<-pw.stopped
	pw.watcher.Close()
}
