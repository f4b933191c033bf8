package outline

import (
	"fmt"
	"time"

	"github.com/alucardeht/outliner/internal/logger"
)

var log = logger.ForComponent("outline")

type parseState int

const (
	stateStart parseState = iota
	stateMetadata
	stateBody
	stateRecommendations
)

type builder struct {
	outline  *Outline
	state    parseState
	titleSet bool
	current  *Chapter
	recBlock string
	issues   []Issue
}

// Parse reads outline text into a model. It never fails: unrecognized lines
// are ignored and malformed fragments are dropped.
func Parse(text string) *Outline {
	o, _ := ParseWithReport(text)
	return o
}

// ParseWithReport is Parse plus the diagnostics collected while building
// and the invariant check of the result.
func ParseWithReport(text string) (*Outline, []Issue) {
	b := &builder{outline: &Outline{}}
	for _, line := range Lex(text) {
		b.consume(line)
	}
	issues := append(b.issues, b.outline.Check()...)
	return b.outline, issues
}

func (b *builder) consume(line Line) {
	switch line.Kind {
	case LineTitle:
		if !b.titleSet {
			b.outline.Title = line.Text
			b.titleSet = true
		}
	case LineMetadataHeading:
		b.state = stateMetadata
		b.current = nil
	case LineRecommendationsHeading:
		b.state = stateRecommendations
		b.current = nil
		b.recBlock = ""
		if b.outline.Recommendations == nil {
			b.outline.Recommendations = &Recommendations{}
		}
	case LineChapterHeading:
		b.state = stateBody
		b.chapter(line)
	case LineSectionHeading:
		if b.state == stateRecommendations {
			return
		}
		b.section(line)
	case LineSubHeading:
		if b.state == stateRecommendations {
			b.recBlock = recBlock(line.Text)
		}
	case LineOther:
		// older outlines put the chapter count hint in a bare paragraph
		if b.state == stateRecommendations && b.recBlock == recChapterCount {
			b.countHint(line.Text)
		}
	case LineBullet:
		switch b.state {
		case stateMetadata:
			b.metadata(line)
		case stateRecommendations:
			b.recommendation(line)
		}
	}
}

func (b *builder) chapter(line Line) {
	if _, exists := b.outline.Chapter(line.Chapter); exists {
		b.current = nil
		b.issue("DUPLICATE_CHAPTER_HEADING", SeverityError, line.No,
			fmt.Sprintf("chapter %d already defined; heading and its sections skipped", line.Chapter))
		return
	}
	ch := &Chapter{Number: line.Chapter, Title: line.Text}
	b.outline.Chapters = append(b.outline.Chapters, ch)
	b.current = ch
}

func (b *builder) section(line Line) {
	if b.current == nil {
		log.Debug("discarding orphan section", "line", line.No, "section", line.Section)
		b.issue("ORPHAN_SECTION", SeverityWarning, line.No,
			fmt.Sprintf("section %s has no owning chapter and was discarded", line.Section))
		return
	}
	b.current.Sections = append(b.current.Sections, &Section{Number: line.Section, Title: line.Text})
}

func (b *builder) metadata(line Line) {
	if !line.HasValue {
		b.issue("MALFORMED_METADATA", SeverityInfo, line.No,
			fmt.Sprintf("metadata bullet %q has no key", line.Text))
		return
	}
	md := &b.outline.Metadata
	key := line.Key
	if canonical, ok := metadataKeyAliases[key]; ok {
		key = canonical
	}
	switch key {
	case keyGeneratedAt:
		t, err := time.Parse(time.RFC3339Nano, line.Value)
		if err != nil {
			md.Extra = append(md.Extra, Field{Key: line.Key, Value: line.Value})
			b.issue("MALFORMED_TIMESTAMP", SeverityInfo, line.No,
				fmt.Sprintf("generated_at %q is not RFC3339; kept verbatim", line.Value))
			return
		}
		md.GeneratedAt = t
	case keyGenerationMode:
		md.GenerationMode = Mode(line.Value)
	case keyTemplateUsed:
		md.TemplateUsed = line.Value
	case keyReferenceDocs:
		if line.Value != "" {
			md.ReferenceDocs = append(md.ReferenceDocs, line.Value)
		}
	default:
		md.Extra = append(md.Extra, Field{Key: line.Key, Value: line.Value})
	}
}

func (b *builder) recommendation(line Line) {
	rec := b.outline.Recommendations
	switch b.recBlock {
	case recChapterCount:
		b.countHint(line.Text)
	case recChapterOrder:
		rec.ChapterOrderHints = append(rec.ChapterOrderHints, line.Text)
	case recChartPlace:
		hint := ChartHint{Suggestion: line.Text}
		if loc, sug, ok := splitChartHint(line.Text); ok {
			hint = ChartHint{Location: loc, Suggestion: sug}
		} else if line.HasValue {
			hint = ChartHint{Location: line.Key, Suggestion: line.Value}
		}
		rec.ChartPlacementHints = append(rec.ChartPlacementHints, hint)
	case recDirection:
		if !line.HasValue {
			return
		}
		wd := &rec.WritingDirection
		key := line.Key
		if canonical, ok := directionKeyAliases[key]; ok {
			key = canonical
		}
		switch key {
		case dirContentFocus:
			wd.ContentFocus = line.Value
		case dirTechnicalDepth:
			wd.TechnicalDepth = line.Value
		case dirNarrativeStyle:
			wd.NarrativeStyle = line.Value
		case dirReaderPerspective:
			wd.ReaderPerspective = line.Value
		case dirReason:
			wd.Reason = line.Value
		}
	}
}

func (b *builder) countHint(text string) {
	rec := b.outline.Recommendations
	if rec.ChapterCountHint == "" {
		rec.ChapterCountHint = text
		return
	}
	rec.ChapterCountHint += " " + text
}

func (b *builder) issue(typ string, sev Severity, lineNo int, desc string) {
	b.issues = append(b.issues, Issue{Type: typ, Description: desc, Severity: sev, Line: lineNo})
}
