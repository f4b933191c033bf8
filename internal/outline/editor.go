package outline

import (
	"fmt"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
)

// Anchor positions a chapter relative to another one. Zero values mean
// "not given"; with neither set the chapter goes to the end.
type Anchor struct {
	After  int `json:"after,omitempty"`
	Before int `json:"before,omitempty"`
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Outcome describes a completed editor operation.
type Outcome struct {
	Op      string `json:"op"`
	Changed bool   `json:"changed"`
	Message string `json:"message"`
	// Chapter is the number of the chapter created or affected, if any.
	Chapter int `json:"chapter,omitempty"`
	// Section is the number of the section created or affected, if any.
	Section string `json:"section,omitempty"`
}

// Editor applies structural mutations to one outline. Each method either
// completes fully or returns an error and leaves the outline unchanged.
type Editor struct {
	outline *Outline
}

func NewEditor(o *Outline) *Editor {
	if o == nil {
		o = &Outline{}
	}
	return &Editor{outline: o}
}

func (e *Editor) Outline() *Outline {
	return e.outline
}

func (e *Editor) AddChapter(title string, at Anchor) (Outcome, error) {
	pos, err := e.insertPosition(at)
	if err != nil {
		return Outcome{}, err
	}
	ch := &Chapter{Number: e.outline.NextChapterNumber(), Title: cleanTitle(title)}
	if err := e.outline.InsertChapter(pos, ch); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Op:      "add_chapter",
		Changed: true,
		Message: fmt.Sprintf("added chapter %d %q", ch.Number, ch.Title),
		Chapter: ch.Number,
	}, nil
}

func (e *Editor) RemoveChapter(number int) (Outcome, error) {
	i := e.outline.chapterIndex(number)
	if i < 0 {
		return Outcome{}, apperr.NotFound("chapter %d not found", number)
	}
	removed := e.outline.Chapters[i]
	e.outline.Chapters = append(e.outline.Chapters[:i], e.outline.Chapters[i+1:]...)
	if len(e.outline.Chapters) == 0 {
		e.outline.Chapters = nil
	}
	return Outcome{
		Op:      "remove_chapter",
		Changed: true,
		Message: fmt.Sprintf("removed chapter %d and %d sections", number, len(removed.Sections)),
		Chapter: number,
	}, nil
}

func (e *Editor) RenameChapter(number int, title string) (Outcome, error) {
	ch, ok := e.outline.Chapter(number)
	if !ok {
		return Outcome{}, apperr.NotFound("chapter %d not found", number)
	}
	ch.Title = cleanTitle(title)
	return Outcome{
		Op:      "rename_chapter",
		Changed: true,
		Message: fmt.Sprintf("chapter %d renamed to %q", number, ch.Title),
		Chapter: number,
	}, nil
}

// MoveChapter re-inserts the same chapter (number and sections intact) at
// the anchored position.
func (e *Editor) MoveChapter(number int, at Anchor) (Outcome, error) {
	from := e.outline.chapterIndex(number)
	if from < 0 {
		return Outcome{}, apperr.NotFound("chapter %d not found", number)
	}
	if at.After == number || at.Before == number {
		return Outcome{}, apperr.Validation("chapter %d cannot be anchored to itself", number)
	}
	pos, err := e.insertPosition(at)
	if err != nil {
		return Outcome{}, err
	}

	ch := e.outline.Chapters[from]
	rest := make([]*Chapter, 0, len(e.outline.Chapters))
	rest = append(rest, e.outline.Chapters[:from]...)
	rest = append(rest, e.outline.Chapters[from+1:]...)
	if pos > from {
		pos--
	}
	moved := make([]*Chapter, 0, len(e.outline.Chapters))
	moved = append(moved, rest[:pos]...)
	moved = append(moved, ch)
	moved = append(moved, rest[pos:]...)

	changed := pos != from
	e.outline.Chapters = moved
	return Outcome{
		Op:      "move_chapter",
		Changed: changed,
		Message: fmt.Sprintf("chapter %d now at position %d", number, pos+1),
		Chapter: number,
	}, nil
}

func (e *Editor) AddSection(chapter int, title string) (Outcome, error) {
	ch, ok := e.outline.Chapter(chapter)
	if !ok {
		return Outcome{}, apperr.NotFound("chapter %d not found", chapter)
	}
	seq := ch.maxSeq() + 1
	for {
		// a stale section elsewhere may already hold the number
		if _, taken := e.outline.Section(SectionNumber(chapter, seq)); len(taken) == 0 {
			break
		}
		seq++
	}
	s := &Section{Number: SectionNumber(chapter, seq), Title: cleanTitle(title)}
	ch.Sections = append(ch.Sections, s)
	return Outcome{
		Op:      "add_section",
		Changed: true,
		Message: fmt.Sprintf("added section %s %q", s.Number, s.Title),
		Chapter: chapter,
		Section: s.Number,
	}, nil
}

func (e *Editor) RemoveSection(number string) (Outcome, error) {
	owner, idx, err := e.uniqueSection(number)
	if err != nil {
		return Outcome{}, err
	}
	owner.Sections = append(owner.Sections[:idx], owner.Sections[idx+1:]...)
	if len(owner.Sections) == 0 {
		owner.Sections = nil
	}
	return Outcome{
		Op:      "remove_section",
		Changed: true,
		Message: fmt.Sprintf("removed section %s from chapter %d", number, owner.Number),
		Chapter: owner.Number,
		Section: number,
	}, nil
}

func (e *Editor) RenameSection(number, title string) (Outcome, error) {
	owner, idx, err := e.uniqueSection(number)
	if err != nil {
		return Outcome{}, err
	}
	s := owner.Sections[idx]
	s.Title = cleanTitle(title)
	return Outcome{
		Op:      "rename_section",
		Changed: true,
		Message: fmt.Sprintf("section %s renamed to %q", number, s.Title),
		Chapter: owner.Number,
		Section: number,
	}, nil
}

// Renumber assigns chapters 1..N in document order and sections
// <chapter>.1..M in order within each chapter.
func (e *Editor) Renumber() (Outcome, error) {
	changed := false
	for i, ch := range e.outline.Chapters {
		if ch.Number != i+1 {
			ch.Number = i + 1
			changed = true
		}
		for j, s := range ch.Sections {
			want := SectionNumber(ch.Number, j+1)
			if s.Number != want {
				s.Number = want
				changed = true
			}
		}
	}
	msg := "numbering already contiguous"
	if changed {
		msg = fmt.Sprintf("renumbered %d chapters", len(e.outline.Chapters))
	}
	return Outcome{Op: "renumber", Changed: changed, Message: msg}, nil
}

// AdjustLevel changes the heading level of a chapter ("3") or a section
// ("3.2"). Only promotion of a section into a chapter changes the model;
// demotion is not supported.
func (e *Editor) AdjustLevel(number string, dir Direction) (Outcome, error) {
	number = strings.TrimSpace(number)
	switch dir {
	case DirectionUp, DirectionDown:
	default:
		return Outcome{}, apperr.Validation("unknown direction %q", dir)
	}

	if !strings.Contains(number, ".") {
		n, ok := parseChapterNumber(number)
		if !ok {
			return Outcome{}, apperr.Validation("invalid chapter number %q", number)
		}
		if _, found := e.outline.Chapter(n); !found {
			return Outcome{}, apperr.NotFound("chapter %d not found", n)
		}
		if dir == DirectionDown {
			return Outcome{}, apperr.Unsupported("demoting chapter %d into a section is not supported", n)
		}
		return Outcome{
			Op:      "adjust_level",
			Message: fmt.Sprintf("chapter %d is already a top-level heading", n),
			Chapter: n,
		}, nil
	}

	if dir == DirectionDown {
		return Outcome{}, apperr.Unsupported("sections are the deepest level; cannot demote %s", number)
	}
	owner, idx, err := e.uniqueSection(number)
	if err != nil {
		return Outcome{}, err
	}
	pos := e.outline.chapterIndex(owner.Number) + 1
	s := owner.Sections[idx]
	ch := &Chapter{Number: e.outline.NextChapterNumber(), Title: s.Title}
	if err := e.outline.InsertChapter(pos, ch); err != nil {
		return Outcome{}, err
	}
	owner.Sections = append(owner.Sections[:idx], owner.Sections[idx+1:]...)
	if len(owner.Sections) == 0 {
		owner.Sections = nil
	}
	return Outcome{
		Op:      "adjust_level",
		Changed: true,
		Message: fmt.Sprintf("section %s promoted to chapter %d", number, ch.Number),
		Chapter: ch.Number,
		Section: number,
	}, nil
}

// insertPosition resolves an anchor to an index in the chapter list.
func (e *Editor) insertPosition(at Anchor) (int, error) {
	if at.After != 0 && at.Before != 0 {
		return 0, apperr.Validation("after and before are mutually exclusive")
	}
	switch {
	case at.After != 0:
		i := e.outline.chapterIndex(at.After)
		if i < 0 {
			return 0, apperr.NotFound("anchor chapter %d not found", at.After)
		}
		return i + 1, nil
	case at.Before != 0:
		i := e.outline.chapterIndex(at.Before)
		if i < 0 {
			return 0, apperr.NotFound("anchor chapter %d not found", at.Before)
		}
		return i, nil
	}
	return len(e.outline.Chapters), nil
}

func (e *Editor) uniqueSection(number string) (*Chapter, int, error) {
	number = strings.TrimSpace(number)
	owners, found := e.outline.Section(number)
	switch len(found) {
	case 0:
		return nil, 0, apperr.NotFound("section %s not found", number)
	case 1:
		return owners[0], owners[0].findSection(number), nil
	default:
		return nil, 0, apperr.Validation("section number %s is ambiguous (%d matches); renumber first", number, len(found))
	}
}

func cleanTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}
