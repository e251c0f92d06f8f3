package definition

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a definition file whenever it changes on disk and hands the
// fresh definition to a callback. Pair it with Form.Reinitialize and
// Config.EnableReinitialize to pick up seed changes without remounting.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
}

// Watch starts watching path. apply receives each successfully reloaded
// definition; onError, when non-nil, receives reload and watch failures.
// Watching the parent directory rather than the file itself survives the
// replace-by-rename strategy editors and atomic writers use.
func Watch(path string, apply func(Definition), onError func(error)) (*Watcher, error) {
	if apply == nil {
		return nil, fmt.Errorf("definition: watch requires an apply callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("definition: watch %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("definition: watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("definition: watch %s: %w", path, err)
	}

	w := &Watcher{fsw: fsw, path: abs}
	go w.loop(apply, onError)
	return w, nil
}

func (w *Watcher) loop(apply func(Definition), onError func(error)) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			def, err := LoadFile(w.path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			apply(def)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
