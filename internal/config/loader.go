package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/chainflow/internal/chain"
	"github.com/gyaneshwarpardhi/chainflow/internal/event"
)

// Loader reads a YAML workspace file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Workspace
	onChange []func(*Workspace)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	ws, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = ws
	return l, nil
}

// Path returns the watched file path.
func (l *Loader) Path() string { return l.path }

// Workspace returns the current (latest) workspace.
func (l *Loader) Workspace() *Workspace {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the workspace reloads.
func (l *Loader) OnChange(fn func(*Workspace)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the workspace on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("workspace watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("workspace watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("workspace reload failed, keeping previous", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("workspace watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Load re-reads the workspace file and makes it current without notifying
// OnChange callbacks. Callers that apply the result themselves use it.
func (l *Loader) Load() (*Workspace, error) {
	ws, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = ws
	l.mu.Unlock()
	return ws, nil
}

// Reload forces an immediate re-read of the workspace file and runs every
// OnChange callback with the result.
func (l *Loader) Reload() (*Workspace, error) {
	ws, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = ws
	callbacks := make([]func(*Workspace), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(ws)
	}
	return ws, nil
}

func (l *Loader) load() (*Workspace, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read workspace %s: %w", l.path, err)
	}
	ws, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", l.path, err)
	}
	return ws, nil
}

// Parse decodes a workspace document and applies defaults.
func Parse(data []byte) (*Workspace, error) {
	var ws Workspace
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &ws); err != nil {
			return nil, err
		}
	}
	ApplyDefaults(&ws)
	return &ws, nil
}

// ApplyDefaults fills every unset setting.
func ApplyDefaults(ws *Workspace) {
	if ws.Server.Addr == "" {
		ws.Server.Addr = ":8080"
	}
	if ws.Log.Level == "" {
		ws.Log.Level = "info"
	}
	if ws.Log.Format == "" {
		ws.Log.Format = "text"
	}
	if ws.Engine.Workers == 0 {
		ws.Engine.Workers = 4
	}
	if ws.Engine.QueueDepth == 0 {
		ws.Engine.QueueDepth = 256
	}
	if ws.Engine.TimeoutMs == 0 {
		ws.Engine.TimeoutMs = 2000
	}
	if ws.Simulation.Event == nil {
		ws.Simulation.Event = event.SmokeTest()
	}
	if ws.Chain.Blocks == nil {
		ws.Chain.Blocks = []chain.Block{}
	}
	if ws.Chain.Connections == nil {
		ws.Chain.Connections = []chain.Connection{}
	}
}
