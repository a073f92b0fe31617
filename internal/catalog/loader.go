package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML shape of a catalog file.
type catalogFile struct {
	Fields []FieldDefinition `yaml:"fields"`
}

// LoadFile reads and validates a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	c, err := New(file.Fields)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

// Holder exposes the current catalog and supports atomic replacement. The
// evaluator and validator read a consistent catalog pointer per call; a
// reload swaps the whole catalog, never mutating one in place.
type Holder struct {
	current atomic.Pointer[Catalog]
	path    string
}

// NewHolder loads the catalog at path and wraps it in a Holder.
func NewHolder(path string) (*Holder, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	h := &Holder{path: path}
	h.current.Store(c)
	return h, nil
}

// Current returns the catalog as of now. Callers should capture the result
// once per operation rather than calling repeatedly mid-evaluation.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Reload re-reads the catalog file and swaps it in. On failure the previous
// catalog stays active and the error is returned.
func (h *Holder) Reload() error {
	c, err := LoadFile(h.path)
	if err != nil {
		return err
	}
	h.current.Store(c)
	return nil
}

// Watch reloads the catalog whenever its file changes on disk. It watches the
// containing directory so editors that replace the file (rename-over) still
// trigger a reload. Watch blocks until stop is closed.
func (h *Holder) Watch(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(h.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := h.Reload(); err != nil {
				log.Printf("[catalog] reload failed, keeping previous catalog: %v", err)
				continue
			}
			log.Printf("[catalog] reloaded %d fields from %s", h.Current().Len(), h.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[catalog] watch error: %v", err)
		case <-stop:
			return nil
		}
	}
}
