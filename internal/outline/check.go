package outline

import (
	"fmt"

	"github.com/alucardeht/outliner/internal/apperr"
)

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Issue is a single diagnostic about an outline.
type Issue struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Line        int      `json:"line,omitempty"`
}

// Check reports numbering problems. Duplicate or non-positive chapter
// numbers are errors; stale section prefixes are warnings because they are
// legal until the next renumber.
func (o *Outline) Check() []Issue {
	issues := make([]Issue, 0)

	seenChapters := make(map[int]bool, len(o.Chapters))
	seenSections := make(map[string]bool)
	for _, ch := range o.Chapters {
		if ch.Number <= 0 {
			issues = append(issues, Issue{
				Type:        "INVALID_CHAPTER_NUMBER",
				Description: fmt.Sprintf("chapter %q has non-positive number %d", ch.Title, ch.Number),
				Severity:    SeverityError,
			})
		}
		if seenChapters[ch.Number] {
			issues = append(issues, Issue{
				Type:        "DUPLICATE_CHAPTER",
				Description: fmt.Sprintf("chapter number %d used more than once", ch.Number),
				Severity:    SeverityError,
			})
		}
		seenChapters[ch.Number] = true

		for _, s := range ch.Sections {
			if s.Prefix() != ch.Number {
				issues = append(issues, Issue{
					Type:        "STALE_SECTION_PREFIX",
					Description: fmt.Sprintf("section %s is owned by chapter %d", s.Number, ch.Number),
					Severity:    SeverityWarning,
				})
			}
			if seenSections[s.Number] {
				issues = append(issues, Issue{
					Type:        "DUPLICATE_SECTION",
					Description: fmt.Sprintf("section number %s used more than once", s.Number),
					Severity:    SeverityWarning,
				})
			}
			seenSections[s.Number] = true
		}
	}

	if len(o.Chapters) > 0 && !o.Normalized() {
		issues = append(issues, Issue{
			Type:        "NOT_NORMALIZED",
			Description: "chapter or section numbers are not contiguous; run renumber",
			Severity:    SeverityInfo,
		})
	}

	return issues
}

// Valid reports whether the outline has no error-level issues.
func (o *Outline) Valid() bool {
	for _, issue := range o.Check() {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Normalized reports whether chapters are numbered 1..N in document order
// and every section is numbered <chapter>.1..M in order.
func (o *Outline) Normalized() bool {
	for i, ch := range o.Chapters {
		if ch.Number != i+1 {
			return false
		}
		for j, s := range ch.Sections {
			if s.Number != SectionNumber(ch.Number, j+1) {
				return false
			}
		}
	}
	return true
}

// StaleSections returns the sections whose prefix disagrees with their parent.
func (o *Outline) StaleSections() []*Section {
	var stale []*Section
	for _, ch := range o.Chapters {
		for _, s := range ch.Sections {
			if s.Prefix() != ch.Number {
				stale = append(stale, s)
			}
		}
	}
	return stale
}

func validationf(format string, args ...any) error {
	return apperr.Validation(format, args...)
}
