package history

import (
	"time"

	"github.com/alucardeht/outliner/internal/outline"
)

// Snapshot is an immutable copy of an outline taken at SavedAt.
type Snapshot struct {
	ID      string           `json:"id"`
	SavedAt time.Time        `json:"saved_at"`
	Outline *outline.Outline `json:"outline"`
}

type Entry struct {
	ID       string       `json:"id"`
	SavedAt  time.Time    `json:"saved_at"`
	Title    string       `json:"title"`
	Template string       `json:"template"`
	Mode     outline.Mode `json:"mode"`
	Chapters int          `json:"chapters"`
	Sections int          `json:"sections"`
}

type SearchResult struct {
	Entry
	Snippet string `json:"snippet"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	// Title matches case-insensitively as a substring.
	Title    string `json:"title,omitempty"`
	Template string `json:"template,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func entryOf(s *Snapshot) Entry {
	e := Entry{ID: s.ID, SavedAt: s.SavedAt}
	if o := s.Outline; o != nil {
		e.Title = o.Title
		e.Template = o.Metadata.TemplateUsed
		e.Mode = o.Metadata.GenerationMode
		e.Chapters = len(o.Chapters)
		e.Sections = o.SectionCount()
	}
	return e
}
