package watcher

import (
	"sort"
	"time"

	"github.com/alucardeht/outliner/internal/outline"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Report is the result of re-reading one changed outline file.
type Report struct {
	Path     string
	Event    EventType
	Encoding string
	Outline  *outline.Outline
	Issues   []outline.Issue
	Err      error
}

// Handler receives one report per changed file, in path order.
type Handler func(Report)

func sortEvents(events []FileEvent) {
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
}
