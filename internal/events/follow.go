package events

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// followDebounce coalesces the burst of writes a restart produces.
const followDebounce = 50 * time.Millisecond

// Follow calls fn for every event in the log at path with Seq > afterSeq,
// then keeps watching and delivers events as they are appended until ctx
// is done. The directory is watched rather than the file so a log that
// does not exist yet is picked up once the first event is recorded.
func Follow(ctx context.Context, path string, afterSeq uint64, fn func(Event)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck // best-effort cleanup

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	last := afterSeq
	drain := func() error {
		evts, err := ReadFiltered(path, Filter{AfterSeq: last})
		if err != nil {
			return err
		}
		for _, e := range evts {
			fn(e)
			if e.Seq > last {
				last = e.Seq
			}
		}
		return nil
	}
	if err := drain(); err != nil {
		return err
	}

	target := filepath.Clean(path)
	debounce := time.NewTimer(followDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(followDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", path, err)
		case <-debounce.C:
			if err := drain(); err != nil {
				return err
			}
		}
	}
}
