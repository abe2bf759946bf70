package ui

import (
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/voxdrop/voxdrop/internal/janitor"
)

// dirWatcher reports changes to the audio files in the working directory,
// so files written by another front end show up in the list.
type dirWatcher struct {
	w   *fsnotify.Watcher
	dir string
}

func newDirWatcher(dir string) (*dirWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	log.Info("fsnotify watching dir", "dir", dir)
	return &dirWatcher{w: w, dir: dir}, nil
}

// next blocks until an audio file is created, removed or renamed. It
// returns nil once the watcher is closed.
func (d *dirWatcher) next() tea.Msg {
	for {
		select {
		case event, ok := <-d.w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), janitor.Ext) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return filesChangedMsg{}
		case err, ok := <-d.w.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", d.dir, "error", err)
		}
	}
}

func (d *dirWatcher) Close() error {
	return d.w.Close()
}
