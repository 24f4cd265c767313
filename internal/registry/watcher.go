package registry

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler is called after a definition file was (re)registered or
// removed. id is empty when the file failed to load.
type ReloadHandler func(id, path string, err error)

// Watcher keeps a registry in sync with a directory of template
// definitions. Writes re-register the file (triggering the usual overwrite
// warning), removals unregister the component the file defined.
type Watcher struct {
	reg      *Registry
	watcher  *fsnotify.Watcher
	onReload ReloadHandler
	mu       sync.Mutex
	byPath   map[string]string // abs file path -> component id
	done     chan struct{}
}

// Watch starts watching dir. Files already present should be loaded with
// LoadDir first; Watch records them so a later removal is recognised.
func Watch(reg *Registry, dir string, onReload ReloadHandler) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve components dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(absDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", absDir, err)
	}

	w := &Watcher{
		reg:      reg,
		watcher:  fw,
		onReload: onReload,
		byPath:   make(map[string]string),
		done:     make(chan struct{}),
	}
	for _, def := range reg.GetAll() {
		if def.Source != "" {
			if abs, err := filepath.Abs(def.Source); err == nil && filepath.Dir(abs) == absDir {
				w.byPath[abs] = def.ID
			}
		}
	}

	go w.watchLoop()
	return w, nil
}

// Close stops the watcher and waits for the loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsDefinitionFile(event.Name) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				w.reload(absPath)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				w.forget(absPath)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reg.log.Warnw("registry: watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(path string) {
	def, err := LoadFile(path)
	if err != nil {
		// Editors often truncate before writing; the next write event
		// carries the complete file.
		w.reg.log.Warnw("registry: reload failed", "path", path, "error", err)
		w.notify("", path, err)
		return
	}

	w.mu.Lock()
	prevID, had := w.byPath[path]
	w.byPath[path] = def.ID
	w.mu.Unlock()
	if had && prevID != def.ID {
		w.reg.Unregister(prevID)
	}

	w.reg.Register(def)
	w.reg.log.Infow("registry: reloaded definition", "component", def.ID, "path", path)
	w.notify(def.ID, path, nil)
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	id, ok := w.byPath[path]
	delete(w.byPath, path)
	w.mu.Unlock()
	if !ok {
		return
	}
	w.reg.Unregister(id)
	w.reg.log.Infow("registry: removed definition", "component", id, "path", path)
	w.notify(id, path, nil)
}

func (w *Watcher) notify(id, path string, err error) {
	if w.onReload != nil {
		w.onReload(id, path, err)
	}
}
