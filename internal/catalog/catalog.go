// Package catalog loads the report template skeletons and scores them
// against a project description.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/textenc"
)

var log = logger.ForComponent("catalog")

//go:embed templates
var embedded embed.FS

type Category string

const (
	CategoryStandard Category = "standard"
	CategoryIndustry Category = "industry"
)

// DefaultTemplateID is used whenever selection yields nothing usable.
const DefaultTemplateID = "T001"

var idPattern = regexp.MustCompile(`^T\d{3}$`)

// ValidID reports whether id has the catalog's "T" + three digit form.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

type SectionSkeleton struct {
	Title string `json:"title"`
}

type ChapterSkeleton struct {
	Title    string            `json:"title"`
	Sections []SectionSkeleton `json:"sections,omitempty"`
}

// Template is an unnumbered chapter/section tree. Templates are shared by
// every caller of the catalog and must not be modified.
type Template struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Category Category          `json:"category"`
	Scenario string            `json:"scenario,omitempty"`
	Chapters []ChapterSkeleton `json:"chapters"`
	Source   string            `json:"source"`
}

func (t *Template) SectionCount() int {
	n := 0
	for _, ch := range t.Chapters {
		n += len(ch.Sections)
	}
	return n
}

// Source describes where templates are read from.
type Source struct {
	FS fs.FS
	// StandardFile holds several skeletons, each under a "## <id> <name>" heading.
	StandardFile string
	// IndustryPattern is a doublestar glob of one-skeleton-per-file documents.
	IndustryPattern string
}

// EmbeddedSource is the template set compiled into the binary.
func EmbeddedSource() Source {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}
	return Source{FS: sub, StandardFile: "standard.md", IndustryPattern: "industry/**/*.md"}
}

// DirSource reads the same layout as EmbeddedSource from dir.
func DirSource(dir string) Source {
	return Source{FS: os.DirFS(dir), StandardFile: "standard.md", IndustryPattern: "industry/**/*.md"}
}

// Catalog is the immutable set of loaded templates.
type Catalog struct {
	byID  map[string]*Template
	order []*Template
}

// FileReport is the outcome of loading one template document.
type FileReport struct {
	File      string   `json:"file"`
	Templates []string `json:"templates,omitempty"`
	Problems  []string `json:"problems,omitempty"`
}

func (r FileReport) Valid() bool {
	return len(r.Problems) == 0
}

// Load reads every skeleton from src. Unreadable or malformed skeletons are
// logged and skipped; Load only fails when src has no filesystem.
func Load(src Source) (*Catalog, error) {
	c, reports, err := load(src)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		for _, p := range r.Problems {
			log.Warn("template problem", "file", r.File, "problem", p)
		}
	}
	log.Debug("catalog loaded", "templates", len(c.order))
	return c, nil
}

// Validate loads src the way Load does and reports, per document, which
// templates were kept and what was skipped.
func Validate(src Source) ([]FileReport, error) {
	_, reports, err := load(src)
	return reports, err
}

func load(src Source) (*Catalog, []FileReport, error) {
	if src.FS == nil {
		return nil, nil, apperr.Validation("template source has no filesystem")
	}

	c := &Catalog{byID: make(map[string]*Template)}
	var reports []FileReport

	if src.StandardFile != "" {
		report := FileReport{File: src.StandardFile}
		text, _, err := textenc.ReadFS(src.FS, src.StandardFile)
		if err != nil {
			report.Problems = append(report.Problems, fmt.Sprintf("unreadable: %v", err))
		} else {
			templates, problems := parseSkeletons(text, 2, CategoryStandard, src.StandardFile)
			report.Problems = append(problems, c.addAll(templates, &report)...)
		}
		reports = append(reports, report)
	}

	if src.IndustryPattern != "" {
		matches, err := doublestar.Glob(src.FS, src.IndustryPattern)
		if err != nil {
			reports = append(reports, FileReport{
				File:     src.IndustryPattern,
				Problems: []string{fmt.Sprintf("invalid pattern: %v", err)},
			})
		}
		sort.Strings(matches)
		for _, name := range matches {
			report := FileReport{File: name}
			text, _, err := textenc.ReadFS(src.FS, name)
			if err != nil {
				report.Problems = append(report.Problems, fmt.Sprintf("unreadable: %v", err))
				reports = append(reports, report)
				continue
			}
			templates, problems := parseSkeletons(text, 1, CategoryIndustry, name)
			if len(templates) > 1 {
				problems = append(problems, "file holds more than one skeleton; keeping the first")
				templates = templates[:1]
			}
			report.Problems = append(problems, c.addAll(templates, &report)...)
			reports = append(reports, report)
		}
	}

	return c, reports, nil
}

// SourceFor returns the embedded templates, or dir when it is non-empty.
func SourceFor(dir string) (Source, error) {
	if dir == "" {
		return EmbeddedSource(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Source{}, apperr.NotFound("template directory %s not found", dir)
		}
		return Source{}, apperr.IO(fmt.Sprintf("template directory %s not accessible", dir), err)
	}
	if !info.IsDir() {
		return Source{}, apperr.Validation("template directory %s is not a directory", dir)
	}
	return DirSource(dir), nil
}

// LoadDefault loads the embedded templates, or dir when it is non-empty.
func LoadDefault(dir string) (*Catalog, error) {
	src, err := SourceFor(dir)
	if err != nil {
		return nil, err
	}
	return Load(src)
}

// addAll keeps the first template of each id, records the kept ids on
// report and returns a problem for every duplicate.
func (c *Catalog) addAll(templates []*Template, report *FileReport) []string {
	var problems []string
	for _, t := range templates {
		if _, dup := c.byID[t.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate template id %s skipped", t.ID))
			continue
		}
		c.byID[t.ID] = t
		c.order = append(c.order, t)
		report.Templates = append(report.Templates, t.ID)
	}
	return problems
}

// Get looks up a template by id. Malformed and unknown ids both report
// NotFound.
func (c *Catalog) Get(id string) (*Template, error) {
	if !ValidID(id) {
		return nil, apperr.NotFound("template %q not found: id must look like T001", id)
	}
	t, ok := c.byID[id]
	if !ok {
		return nil, apperr.NotFound("template %s not found", id)
	}
	return t, nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// List returns templates in load order, standard first. An empty category
// returns all of them.
func (c *Catalog) List(category Category) []*Template {
	out := make([]*Template, 0, len(c.order))
	for _, t := range c.order {
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}

// First returns the first loaded template, used as a last-resort fallback.
func (c *Catalog) First() (*Template, bool) {
	if len(c.order) == 0 {
		return nil, false
	}
	return c.order[0], true
}

func sourceName(name string) string {
	return path.Clean(name)
}
