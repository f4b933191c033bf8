// Package watcher re-parses outline files when they change on disk and
// reports structural problems found in them.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/textenc"
)

var log = logger.ForComponent("watcher")

type Watcher struct {
	config      Config
	fsWatcher   *fsnotify.Watcher
	fsWatcherMu sync.Mutex
	debouncer   *Debouncer
	handler     Handler
	roots       []string
	files       map[string]bool
	mu          sync.RWMutex
	running     bool
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates a watcher that calls handler for every changed outline. A nil
// handler logs the diagnostics.
func New(config Config, handler Handler) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if handler == nil {
		handler = LogReport
	}

	w := &Watcher{
		config:    config,
		fsWatcher: fsWatcher,
		handler:   handler,
		files:     make(map[string]bool),
	}

	w.debouncer = NewDebouncer(config.DebounceWindow, config.MaxBatchSize, w.onFlush)

	return w, nil
}

func (w *Watcher) addToWatcher(path string) error {
	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Add(path)
}

// Add watches a single outline file or, for a directory, every outline file
// below it.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.AddRoot(abs)
	}
	return w.AddFile(abs)
}

// AddFile watches one file through its parent directory, so that editors
// which replace the file on save are still observed.
func (w *Watcher) AddFile(path string) error {
	if err := w.addToWatcher(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.files[path] = true
	w.mu.Unlock()

	log.Info("watching file", "path", path)
	return nil
}

func (w *Watcher) AddRoot(path string) error {
	log.Info("adding root to watch", "path", path)

	if err := w.addToWatcher(path); err != nil {
		return err
	}

	w.mu.Lock()
	w.roots = append(w.roots, path)
	w.mu.Unlock()

	return w.walkAndAdd(path)
}

func (w *Watcher) walkAndAdd(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		log.Debug("failed to read directory", "path", path, "error", err)
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fullPath := filepath.Join(path, entry.Name())
		if w.shouldIgnore(fullPath) {
			continue
		}
		if err := w.addToWatcher(fullPath); err != nil {
			log.Debug("failed to watch directory", "path", fullPath, "error", err)
			continue
		}
		log.Debug("watching directory", "path", fullPath)
		w.walkAndAdd(fullPath)
	}

	return nil
}

func (w *Watcher) Start(ctx context.Context) error {
	log.Info("starting outline watcher")

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.handleEvents()

	return nil
}

func (w *Watcher) handleEvents() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			log.Debug("file event", "path", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) && w.underRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.shouldIgnore(event.Name) {
						if err := w.addToWatcher(event.Name); err == nil {
							w.walkAndAdd(event.Name)
						}
					}
					continue
				}
			}

			if fileEvent := w.convertEvent(event); fileEvent != nil {
				w.debouncer.Add(*fileEvent)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) convertEvent(event fsnotify.Event) *FileEvent {
	if !w.wants(event.Name) {
		return nil
	}

	var eventType EventType

	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventModify
	case event.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return nil
	}

	return &FileEvent{
		Path:      event.Name,
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

func (w *Watcher) onFlush(events []FileEvent) {
	log.Debug("flushing events", "count", len(events))

	for _, event := range events {
		if event.Type == EventDelete || event.Type == EventRename {
			log.Info("outline removed", "path", event.Path)
			continue
		}
		w.handler(Check(event.Path, event.Type))
	}
}

// Check reads and parses one outline file.
func Check(path string, event EventType) Report {
	report := Report{Path: path, Event: event}

	content, detected, err := textenc.ReadFile(path)
	if err != nil {
		report.Err = err
		return report
	}
	report.Encoding = detected.Encoding
	report.Outline, report.Issues = outline.ParseWithReport(content)
	return report
}

// LogReport is the default Handler.
func LogReport(r Report) {
	if r.Err != nil {
		log.Warn("outline unreadable", "path", r.Path, "error", r.Err)
		return
	}

	log.Info("outline checked",
		"path", r.Path,
		"chapters", len(r.Outline.Chapters),
		"sections", r.Outline.SectionCount(),
		"issues", len(r.Issues))

	for _, issue := range r.Issues {
		switch issue.Severity {
		case outline.SeverityError:
			log.Error(issue.Description, "path", r.Path, "type", issue.Type, "line", issue.Line)
		case outline.SeverityWarning:
			log.Warn(issue.Description, "path", r.Path, "type", issue.Type, "line", issue.Line)
		default:
			log.Debug(issue.Description, "path", r.Path, "type", issue.Type, "line", issue.Line)
		}
	}
}

// wants reports whether path is an explicitly watched file or an outline
// file below a watched root.
func (w *Watcher) wants(path string) bool {
	w.mu.RLock()
	explicit := w.files[path]
	w.mu.RUnlock()
	if explicit {
		return true
	}

	rel, ok := w.relToRoot(path)
	if !ok || w.shouldIgnore(path) {
		return false
	}
	for _, pattern := range w.config.IncludePatterns {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}
	return false
}

func (w *Watcher) underRoot(path string) bool {
	_, ok := w.relToRoot(path)
	return ok
}

func (w *Watcher) relToRoot(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (w *Watcher) shouldIgnore(path string) bool {
	basename := filepath.Base(path)

	if !w.config.WatchHidden && strings.HasPrefix(basename, ".") {
		return true
	}

	slashed := filepath.ToSlash(path)
	for _, pattern := range w.config.IgnorePatterns {
		if match, _ := doublestar.Match(pattern, slashed); match {
			return true
		}
	}

	return false
}

// Stop ends event handling and delivers any pending batch.
func (w *Watcher) Stop() error {
	log.Info("stopping outline watcher")

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.fsWatcherMu.Lock()
		defer w.fsWatcherMu.Unlock()
		return w.fsWatcher.Close()
	}

	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.debouncer.Stop()

	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Close()
}
