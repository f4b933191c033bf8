// Package outline holds the report outline model together with its text
// parser, serializer and structural editor.
package outline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeQuick            Mode = "quick"
	ModeChapterByChapter Mode = "chapter-by-chapter"
	ModeKeypoints        Mode = "keypoints"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeQuick, ModeChapterByChapter, ModeKeypoints:
		return true
	}
	return false
}

// Field is a metadata bullet whose key is not one of the typed fields.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Metadata struct {
	GeneratedAt    time.Time `json:"generated_at"`
	GenerationMode Mode      `json:"generation_mode"`
	TemplateUsed   string    `json:"template_used"`
	ReferenceDocs  []string  `json:"reference_docs,omitempty"`
	Extra          []Field   `json:"extra,omitempty"`
}

type Section struct {
	Number string `json:"number"`
	Title  string `json:"title"`
}

// Prefix returns the chapter part of the section number, or -1 when the
// number is not of the form "<chapter>.<seq>".
func (s *Section) Prefix() int {
	p, _, ok := splitSectionNumber(s.Number)
	if !ok {
		return -1
	}
	return p
}

// Seq returns the sequence part of the section number, or -1.
func (s *Section) Seq() int {
	_, q, ok := splitSectionNumber(s.Number)
	if !ok {
		return -1
	}
	return q
}

type Chapter struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	Sections []*Section `json:"sections,omitempty"`
}

// Heading returns the chapter label as it appears in the text format.
func (c *Chapter) Heading() string {
	return fmt.Sprintf("第%d章 %s", c.Number, c.Title)
}

func (c *Chapter) findSection(number string) int {
	for i, s := range c.Sections {
		if s.Number == number {
			return i
		}
	}
	return -1
}

// maxSeq is the highest sequence among the sections numbered under this
// chapter. Sections still carrying another chapter's prefix are ignored.
func (c *Chapter) maxSeq() int {
	max := 0
	for _, s := range c.Sections {
		if s.Prefix() != c.Number {
			continue
		}
		if q := s.Seq(); q > max {
			max = q
		}
	}
	return max
}

type ChartHint struct {
	Location   string `json:"location"`
	Suggestion string `json:"suggestion"`
}

type WritingDirection struct {
	ContentFocus      string `json:"content_focus"`
	TechnicalDepth    string `json:"technical_depth"`
	NarrativeStyle    string `json:"narrative_style"`
	ReaderPerspective string `json:"reader_perspective"`
	Reason            string `json:"reason"`
}

// Recommendations are display-only hints attached by the generator.
type Recommendations struct {
	ChapterCountHint    string           `json:"chapter_count_hint"`
	ChapterOrderHints   []string         `json:"chapter_order_hints,omitempty"`
	ChartPlacementHints []ChartHint      `json:"chart_placement_hints,omitempty"`
	WritingDirection    WritingDirection `json:"writing_direction"`
}

type Outline struct {
	Title           string           `json:"title"`
	Metadata        Metadata         `json:"metadata"`
	Chapters        []*Chapter       `json:"chapters,omitempty"`
	Recommendations *Recommendations `json:"recommendations,omitempty"`
}

// Chapter returns the chapter with the given number.
func (o *Outline) Chapter(number int) (*Chapter, bool) {
	if i := o.chapterIndex(number); i >= 0 {
		return o.Chapters[i], true
	}
	return nil, false
}

// Section returns every section carrying the given number, paired with
// its owning chapter. More than one result means the number is ambiguous.
func (o *Outline) Section(number string) ([]*Chapter, []*Section) {
	var owners []*Chapter
	var found []*Section
	for _, ch := range o.Chapters {
		for _, s := range ch.Sections {
			if s.Number == number {
				owners = append(owners, ch)
				found = append(found, s)
			}
		}
	}
	return owners, found
}

func (o *Outline) chapterIndex(number int) int {
	for i, ch := range o.Chapters {
		if ch.Number == number {
			return i
		}
	}
	return -1
}

// NextChapterNumber is max(existing)+1, or 1 for an empty outline.
func (o *Outline) NextChapterNumber() int {
	max := 0
	for _, ch := range o.Chapters {
		if ch.Number > max {
			max = ch.Number
		}
	}
	return max + 1
}

// InsertChapter places ch at index pos. It refuses a duplicate or
// non-positive number and leaves the outline untouched in that case.
func (o *Outline) InsertChapter(pos int, ch *Chapter) error {
	if ch == nil {
		return fmt.Errorf("chapter is nil")
	}
	if ch.Number <= 0 {
		return validationf("chapter number must be positive, got %d", ch.Number)
	}
	if o.chapterIndex(ch.Number) >= 0 {
		return validationf("chapter %d already exists", ch.Number)
	}
	if pos < 0 || pos > len(o.Chapters) {
		return validationf("insert position %d out of range [0,%d]", pos, len(o.Chapters))
	}
	o.Chapters = append(o.Chapters, nil)
	copy(o.Chapters[pos+1:], o.Chapters[pos:])
	o.Chapters[pos] = ch
	return nil
}

// Clone returns a deep copy.
func (o *Outline) Clone() *Outline {
	if o == nil {
		return nil
	}
	c := &Outline{
		Title:    o.Title,
		Metadata: o.Metadata,
	}
	if o.Metadata.ReferenceDocs != nil {
		c.Metadata.ReferenceDocs = append([]string(nil), o.Metadata.ReferenceDocs...)
	}
	if o.Metadata.Extra != nil {
		c.Metadata.Extra = append([]Field(nil), o.Metadata.Extra...)
	}
	for _, ch := range o.Chapters {
		cc := &Chapter{Number: ch.Number, Title: ch.Title}
		for _, s := range ch.Sections {
			cc.Sections = append(cc.Sections, &Section{Number: s.Number, Title: s.Title})
		}
		c.Chapters = append(c.Chapters, cc)
	}
	if o.Recommendations != nil {
		r := *o.Recommendations
		if r.ChapterOrderHints != nil {
			r.ChapterOrderHints = append([]string(nil), r.ChapterOrderHints...)
		}
		if r.ChartPlacementHints != nil {
			r.ChartPlacementHints = append([]ChartHint(nil), r.ChartPlacementHints...)
		}
		c.Recommendations = &r
	}
	return c
}

// SectionCount is the total number of sections across all chapters.
func (o *Outline) SectionCount() int {
	n := 0
	for _, ch := range o.Chapters {
		n += len(ch.Sections)
	}
	return n
}

// SectionNumber formats "<chapter>.<seq>".
func SectionNumber(chapter, seq int) string {
	return strconv.Itoa(chapter) + "." + strconv.Itoa(seq)
}

func splitSectionNumber(number string) (int, int, bool) {
	head, tail, ok := strings.Cut(number, ".")
	if !ok {
		return 0, 0, false
	}
	p, err := strconv.Atoi(head)
	if err != nil {
		return 0, 0, false
	}
	q, err := strconv.Atoi(tail)
	if err != nil {
		return 0, 0, false
	}
	return p, q, true
}
