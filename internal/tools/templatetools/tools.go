// Package templatetools exposes the template catalog and selector as tools.
package templatetools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/tools"
)

// GetTools returns the template tools. src is the source the catalog was
// loaded from and is what template_validate checks by default.
func GetTools(c *catalog.Catalog, sel *catalog.Selector, src catalog.Source) []tools.Tool {
	return []tools.Tool{
		NewListTool(c),
		NewShowTool(c),
		NewRecommendTool(c, sel),
		NewValidateTool(src),
	}
}

type ListTool struct {
	catalog *catalog.Catalog
}

func NewListTool(c *catalog.Catalog) *ListTool {
	return &ListTool{catalog: c}
}

func (t *ListTool) Name() string {
	return "template_list"
}

func (t *ListTool) Description() string {
	return "List the available report templates, standard ones first"
}

func (t *ListTool) Title() string {
	return "List Templates"
}

func (t *ListTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"category": {
				"type": "string",
				"enum": ["standard", "industry"],
				"description": "Only list templates of this category"
			}
		},
		"required": []
	}`)
}

type TemplateSummary struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Scenario string           `json:"scenario,omitempty"`
	Chapters int              `json:"chapters"`
	Sections int              `json:"sections"`
}

func summaryOf(tmpl *catalog.Template) TemplateSummary {
	return TemplateSummary{
		ID:       tmpl.ID,
		Name:     tmpl.Name,
		Category: tmpl.Category,
		Scenario: tmpl.Scenario,
		Chapters: len(tmpl.Chapters),
		Sections: tmpl.SectionCount(),
	}
}

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Category string `json:"category"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	category := catalog.Category(strings.ToLower(strings.TrimSpace(req.Category)))
	switch category {
	case "", catalog.CategoryStandard, catalog.CategoryIndustry:
	default:
		return nil, apperr.Validation("unknown category %q", req.Category)
	}

	templates := t.catalog.List(category)
	summaries := make([]TemplateSummary, 0, len(templates))
	for _, tmpl := range templates {
		summaries = append(summaries, summaryOf(tmpl))
	}

	return map[string]interface{}{
		"templates": summaries,
		"count":     len(summaries),
	}, nil
}

type ShowTool struct {
	catalog *catalog.Catalog
}

func NewShowTool(c *catalog.Catalog) *ShowTool {
	return &ShowTool{catalog: c}
}

func (t *ShowTool) Name() string {
	return "template_show"
}

func (t *ShowTool) Description() string {
	return "Show a template's chapter and section skeleton, numbered as a generated outline would be"
}

func (t *ShowTool) Title() string {
	return "Show Template"
}

func (t *ShowTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ShowTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {
				"type": "string",
				"description": "Template id such as T001"
			}
		},
		"required": ["id"]
	}`)
}

func (t *ShowTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	tmpl, err := t.catalog.Get(strings.ToUpper(strings.TrimSpace(req.ID)))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"template": summaryOf(tmpl),
		"skeleton": Skeleton(tmpl),
		"source":   tmpl.Source,
	}, nil
}

// Skeleton renders a template as numbered chapter and section headings.
func Skeleton(tmpl *catalog.Template) []string {
	var lines []string
	for i, ch := range tmpl.Chapters {
		chapter := &outline.Chapter{Number: i + 1, Title: ch.Title}
		lines = append(lines, chapter.Heading())
		for j, sec := range ch.Sections {
			lines = append(lines, "  "+outline.SectionNumber(chapter.Number, j+1)+" "+sec.Title)
		}
	}
	return lines
}

type RecommendTool struct {
	catalog  *catalog.Catalog
	selector *catalog.Selector
}

func NewRecommendTool(c *catalog.Catalog, sel *catalog.Selector) *RecommendTool {
	if sel == nil {
		sel = catalog.DefaultSelector()
	}
	return &RecommendTool{catalog: c, selector: sel}
}

func (t *RecommendTool) Name() string {
	return "template_recommend"
}

func (t *RecommendTool) Description() string {
	return "Score the templates against a project description and report the best match with the keywords behind it"
}

func (t *RecommendTool) Title() string {
	return "Recommend Template"
}

func (t *RecommendTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *RecommendTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"project_input": {
				"type": "string",
				"description": "Free-text project description"
			}
		},
		"required": ["project_input"]
	}`)
}

type rankedTemplate struct {
	catalog.Score
	Name      string `json:"name,omitempty"`
	Available bool   `json:"available"`
}

func (t *RecommendTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		ProjectInput string `json:"project_input"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ProjectInput) == "" {
		return nil, apperr.Validation("project_input is required")
	}

	scores := t.selector.Rank(req.ProjectInput)
	ranking := make([]rankedTemplate, 0, len(scores))
	for _, sc := range scores {
		rt := rankedTemplate{Score: sc}
		if tmpl, err := t.catalog.Get(sc.TemplateID); err == nil {
			rt.Name = tmpl.Name
			rt.Available = true
		}
		ranking = append(ranking, rt)
	}

	selected := t.selector.Select(req.ProjectInput)
	result := map[string]interface{}{
		"selected": selected,
		"fallback": len(scores) == 0,
		"ranking":  ranking,
	}
	if tmpl, err := t.catalog.Get(selected); err == nil {
		result["name"] = tmpl.Name
	}
	return result, nil
}

type ValidateTool struct {
	source catalog.Source
}

func NewValidateTool(src catalog.Source) *ValidateTool {
	return &ValidateTool{source: src}
}

func (t *ValidateTool) Name() string {
	return "template_validate"
}

func (t *ValidateTool) Description() string {
	return `Check template documents without loading them into the catalog.

Each document is reported with the template ids it provides and the problems
that would make the loader skip something: headings that are not template
headers, sections before any chapter, templates without chapters and
duplicate ids. dir defaults to the active template source.`
}

func (t *ValidateTool) Title() string {
	return "Validate Templates"
}

func (t *ValidateTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ValidateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"dir": {
				"type": "string",
				"description": "Template directory laid out as standard.md plus industry/**/*.md"
			}
		},
		"required": []
	}`)
}

func (t *ValidateTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Dir string `json:"dir"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	src := t.source
	if dir := strings.TrimSpace(req.Dir); dir != "" {
		var err error
		if src, err = catalog.SourceFor(dir); err != nil {
			return nil, err
		}
	}

	reports, err := catalog.Validate(src)
	if err != nil {
		return nil, err
	}

	valid := true
	templates, problems := 0, 0
	for _, r := range reports {
		valid = valid && r.Valid()
		templates += len(r.Templates)
		problems += len(r.Problems)
	}

	return map[string]interface{}{
		"valid":     valid,
		"files":     reports,
		"templates": templates,
		"problems":  problems,
	}, nil
}
