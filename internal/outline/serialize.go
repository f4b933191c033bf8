package outline

import (
	"io"
	"strings"
	"time"
)

// Serialize renders the outline in the text format Parse reads.
func Serialize(o *Outline) string {
	var b strings.Builder
	_ = Write(&b, o)
	return b.String()
}

// Write streams the serialized outline to w.
func Write(w io.Writer, o *Outline) error {
	var b strings.Builder

	b.WriteString("# " + o.Title + "\n\n")

	b.WriteString("## " + metadataLabel + "\n")
	md := o.Metadata
	if !md.GeneratedAt.IsZero() {
		bullet(&b, keyGeneratedAt, md.GeneratedAt.Format(time.RFC3339Nano))
	}
	if md.GenerationMode != "" {
		bullet(&b, keyGenerationMode, string(md.GenerationMode))
	}
	if md.TemplateUsed != "" {
		bullet(&b, keyTemplateUsed, md.TemplateUsed)
	}
	for _, doc := range md.ReferenceDocs {
		bullet(&b, keyReferenceDocs, doc)
	}
	for _, f := range md.Extra {
		bullet(&b, f.Key, f.Value)
	}

	for _, ch := range o.Chapters {
		b.WriteString("\n### " + ch.Heading() + "\n")
		for _, s := range ch.Sections {
			b.WriteString("#### " + s.Number + " " + s.Title + "\n")
		}
	}

	if rec := o.Recommendations; rec != nil {
		writeRecommendations(&b, rec)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRecommendations(b *strings.Builder, rec *Recommendations) {
	b.WriteString("\n## " + recommendationsLabel + "\n")

	if rec.ChapterCountHint != "" {
		b.WriteString("\n### " + recChapterCount + "\n")
		b.WriteString("- " + rec.ChapterCountHint + "\n")
	}

	if len(rec.ChapterOrderHints) > 0 {
		b.WriteString("\n### " + recChapterOrder + "\n")
		for _, hint := range rec.ChapterOrderHints {
			b.WriteString("- " + hint + "\n")
		}
	}

	if len(rec.ChartPlacementHints) > 0 {
		b.WriteString("\n### " + recChartPlace + "\n")
		for _, hint := range rec.ChartPlacementHints {
			plain := !strings.ContainsAny(hint.Suggestion, fullWidthColon+":"+chartArrow)
			switch {
			case hint.Location == "" && plain:
				b.WriteString("- " + hint.Suggestion + "\n")
			case plain:
				bullet(b, hint.Location, hint.Suggestion)
			default:
				// a separator inside the suggestion would be read as the split point
				b.WriteString("- " + strings.TrimSpace(hint.Location+" "+chartArrow) + " " + hint.Suggestion + "\n")
			}
		}
	}

	wd := rec.WritingDirection
	if wd != (WritingDirection{}) {
		b.WriteString("\n### " + recDirection + "\n")
		for _, kv := range [][2]string{
			{dirContentFocus, wd.ContentFocus},
			{dirTechnicalDepth, wd.TechnicalDepth},
			{dirNarrativeStyle, wd.NarrativeStyle},
			{dirReaderPerspective, wd.ReaderPerspective},
			{dirReason, wd.Reason},
		} {
			if kv[1] != "" {
				bullet(b, kv[0], kv[1])
			}
		}
	}
}

func bullet(b *strings.Builder, key, value string) {
	b.WriteString("- " + key + fullWidthColon + value + "\n")
}
