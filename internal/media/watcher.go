package media

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

// Watcher reports when video files appear in or disappear from a directory
type Watcher struct {
	dir     string
	fsw     *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// Watch starts watching dir.  Close must be called to release the underlying OS watch.
func Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("unable to watch %q: %w", dir, err)
	}

	w := &Watcher{
		dir: dir,
		fsw: fsw,
		// Capacity 1 coalesces bursts into a single pending notification
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers a value whenever the set of video files may have changed
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.changes)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			log.Trace("Library change", "dir", w.dir, "file", ev.Name, "op", ev.Op.String())
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("Library watcher error", "dir", w.dir, "error", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !HasVideoExtension(ev.Name) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write)
}
