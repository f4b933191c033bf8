// Package generator turns a project description and a catalog template into
// a numbered outline with authoring recommendations attached.
package generator

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/outline"
)

var log = logger.ForComponent("generator")

// Metadata field written when the template was chosen by the selector
// rather than requested by id.
const (
	TemplateSelectionKey  = "template_selection"
	TemplateSelectionAuto = "auto"
)

type Request struct {
	ProjectInput string       `json:"project_input"`
	Mode         outline.Mode `json:"mode,omitempty"`
	// TemplateID is optional; an unknown id falls back to the selector.
	TemplateID    string   `json:"template_id,omitempty"`
	ReferenceDocs []string `json:"reference_docs,omitempty"`
}

type Generator struct {
	catalog  *catalog.Catalog
	selector *catalog.Selector
	now      func() time.Time
}

type Option func(*Generator)

// WithClock replaces time.Now as the source of generated_at.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func WithSelector(s *catalog.Selector) Option {
	return func(g *Generator) {
		if s != nil {
			g.selector = s
		}
	}
}

func New(c *catalog.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog:  c,
		selector: catalog.DefaultSelector(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a new outline. The three modes produce the same
// structure; they differ only in the recorded generation_mode.
func (g *Generator) Generate(req Request) (*outline.Outline, error) {
	input := strings.TrimSpace(req.ProjectInput)
	if input == "" {
		return nil, apperr.Validation("project input is required")
	}

	mode := req.Mode
	if mode == "" {
		mode = outline.ModeQuick
	}
	if !mode.Valid() {
		return nil, apperr.Validation("unknown generation mode %q (want quick, chapter-by-chapter or keypoints)", mode)
	}

	tmpl, auto, err := g.resolveTemplate(req.TemplateID, input)
	if err != nil {
		return nil, err
	}

	o := &outline.Outline{
		Title: DeriveTitle(input),
		Metadata: outline.Metadata{
			GeneratedAt:    g.now().UTC().Truncate(time.Second),
			GenerationMode: mode,
			TemplateUsed:   tmpl.ID,
			ReferenceDocs:  readableDocs(req.ReferenceDocs),
		},
		Chapters: adapt(tmpl),
	}
	if auto {
		// template_used keeps the resolved id; the selection mode is recorded beside it
		o.Metadata.Extra = append(o.Metadata.Extra, outline.Field{Key: TemplateSelectionKey, Value: TemplateSelectionAuto})
	}

	switch mode {
	case outline.ModeChapterByChapter, outline.ModeKeypoints:
		// Interactive refinement is not wired in; these modes keep the
		// quick adaptation unchanged.
		log.Debug("mode uses direct skeleton copy", "mode", mode)
	}

	o.Recommendations = Recommend(input, tmpl, o)

	log.Info("outline generated",
		"title", o.Title,
		"template", tmpl.ID,
		"mode", mode,
		"chapters", len(o.Chapters),
		"sections", o.SectionCount())
	return o, nil
}

// resolveTemplate applies the lookup order: the caller's id when the catalog
// has it, the selector's pick, the default id, then the first template. The
// flag reports whether anything but the caller's id decided.
func (g *Generator) resolveTemplate(requested, input string) (*catalog.Template, bool, error) {
	if g.catalog == nil || g.catalog.Len() == 0 {
		return nil, false, apperr.NotFound("template catalog is empty")
	}

	if requested != "" {
		if t, err := g.catalog.Get(requested); err == nil {
			return t, false, nil
		}
		log.Warn("requested template unavailable; selecting from input", "template", requested)
	}

	picked := g.selector.Select(input)
	if t, err := g.catalog.Get(picked); err == nil {
		return t, true, nil
	}
	log.Warn("selected template missing from catalog; using default", "template", picked, "default", catalog.DefaultTemplateID)

	if t, err := g.catalog.Get(catalog.DefaultTemplateID); err == nil {
		return t, true, nil
	}

	t, ok := g.catalog.First()
	if !ok {
		return nil, false, apperr.NotFound("template catalog is empty")
	}
	return t, true, nil
}

// adapt copies the skeleton titles and numbers chapters 1..N and sections
// <n>.1..<n>.M in skeleton order.
func adapt(t *catalog.Template) []*outline.Chapter {
	if len(t.Chapters) == 0 {
		return nil
	}
	chapters := make([]*outline.Chapter, 0, len(t.Chapters))
	for i, sk := range t.Chapters {
		ch := &outline.Chapter{Number: i + 1, Title: sk.Title}
		for j, sec := range sk.Sections {
			ch.Sections = append(ch.Sections, &outline.Section{
				Number: outline.SectionNumber(ch.Number, j+1),
				Title:  sec.Title,
			})
		}
		chapters = append(chapters, ch)
	}
	return chapters
}

// readableDocs keeps the reference documents that can be opened and drops
// the rest with a warning.
func readableDocs(paths []string) []string {
	var docs []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := checkReadable(p); err != nil {
			log.Warn("reference document unreadable; dropped", "path", p, "error", err)
			continue
		}
		docs = append(docs, p)
	}
	return docs
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
