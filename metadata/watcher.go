package metadata

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-imports a cache file into its catalogue whenever the file
// is rewritten, so long-lived processes pick up refreshed metadata
// without restarting.
type Watcher struct {
	fw   *fsnotify.Watcher
	cat  *Catalogue
	path string

	// Reloads receives one value per successful re-import.
	Reloads chan struct{}
	// Errors receives read/import failures; the previous catalogue
	// state stays in effect after a failure.
	Errors chan error

	done chan struct{}
}

// WatchCache starts watching path and imports the file immediately.
// The caller must Close the watcher when done.
func (c *Catalogue) WatchCache(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and atomic writers replace the
	// file, which would drop a watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:      fw,
		cat:     c,
		path:    path,
		Reloads: make(chan struct{}, 1),
		Errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	if err := w.reload(); err != nil {
		_ = fw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.reload(); err != nil {
				w.notifyError(err)
				continue
			}
			w.notifyReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.notifyError(err)
		}
	}
}

func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	return w.cat.ImportCache(data)
}

func (w *Watcher) notifyReload() {
	select {
	case w.Reloads <- struct{}{}:
	default:
	}
}

func (w *Watcher) notifyError(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
