package outlinetools

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/tools"
)

const sourceProperties = `
			"path": {
				"type": "string",
				"description": "Outline file to read"
			},
			"text": {
				"type": "string",
				"description": "Outline text, instead of path"
			}`

type ParseTool struct{}

func NewParseTool() *ParseTool {
	return &ParseTool{}
}

func (t *ParseTool) Name() string {
	return "outline_parse"
}

func (t *ParseTool) Description() string {
	return "Parse outline text into its structure: title, metadata, numbered chapters and sections"
}

func (t *ParseTool) Title() string {
	return "Parse Outline"
}

func (t *ParseTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ParseTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {` + sourceProperties + `
		},
		"required": []
	}`)
}

func (t *ParseTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req source
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	text, err := req.load()
	if err != nil {
		return nil, err
	}

	o, issues := outline.ParseWithReport(text)
	return map[string]interface{}{
		"outline": o,
		"issues":  issueCounts(issues),
	}, nil
}

type LintTool struct{}

func NewLintTool() *LintTool {
	return &LintTool{}
}

func (t *LintTool) Name() string {
	return "outline_lint"
}

func (t *LintTool) Description() string {
	return `Check an outline for structural problems.

Reports orphan sections, duplicate chapter or section numbers, section
numbers whose prefix no longer matches their chapter, and whether the
numbering is contiguous (run the renumber edit to fix the last two).
valid is false when any error-level issue was found.`
}

func (t *LintTool) Title() string {
	return "Lint Outline"
}

func (t *LintTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *LintTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {` + sourceProperties + `
		},
		"required": []
	}`)
}

func (t *LintTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req source
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	text, err := req.load()
	if err != nil {
		return nil, err
	}

	o, issues := outline.ParseWithReport(text)
	counts := issueCounts(issues)
	result := summarize(o)
	result["valid"] = counts["error"] == 0
	result["normalized"] = o.Normalized()
	result["issues"] = issues
	result["counts"] = counts
	return result, nil
}
