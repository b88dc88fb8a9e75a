package gameplan

import (
	"path/filepath"
	"sync"
	"time"

	"helmsman/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// ChangeListener fires whenever the gameplan file is rewritten during the
// session. Listeners always receive a validated result: a rewrite that fails
// validation fans out the safe default, never the previous plan.
type ChangeListener func(Result)

// Watcher hot-reloads the gameplan file. Editors and deploy tooling replace
// files via rename, so the parent directory is watched rather than the file.
type Watcher struct {
	loader *Loader
	fw     *fsnotify.Watcher

	mu        sync.RWMutex
	listeners []ChangeListener
	last      Result
}

func NewWatcher(loader *Loader) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(loader.Path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{loader: loader, fw: fw, last: loader.Load()}
	go w.run()
	return w, nil
}

// Current returns the most recent validated result.
func (w *Watcher) Current() Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

func (w *Watcher) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) run() {
	target := filepath.Clean(w.loader.Path)
	for {
		select {
		case evt, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			// Writers may still be mid-flush when the first event lands.
			time.Sleep(100 * time.Millisecond)
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Errorf("gameplan watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	res := w.loader.Load()
	w.mu.Lock()
	w.last = res
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mu.Unlock()
	logger.Infof("gameplan reloaded rejected=%v overrides=%v", res.Rejected, res.Overrides)
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer recoverListener()
			cb(res)
		}(fn)
	}
}

func recoverListener() {
	if r := recover(); r != nil {
		logger.Errorf("gameplan listener panic: %v", r)
	}
}
