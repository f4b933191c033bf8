package outlinetools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/tools"
)

type EditTool struct{}

func NewEditTool() *EditTool {
	return &EditTool{}
}

func (t *EditTool) Name() string {
	return "outline_edit"
}

func (t *EditTool) Description() string {
	return `Apply structural edits to an outline.

Operations run in order on one outline; if any is refused nothing is
written. Supported ops: add_chapter(title, after|before),
remove_chapter(chapter), rename_chapter(chapter, title),
move_chapter(chapter, after|before), add_section(chapter, title),
remove_section(section), rename_section(section, title), renumber,
adjust_level(target, direction). Chapters added or moved keep their
numbers until renumber runs.`
}

func (t *EditTool) Title() string {
	return "Edit Outline"
}

func (t *EditTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *EditTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {` + sourceProperties + `,
			"ops": {
				"type": "array",
				"description": "Operations to apply in order",
				"items": {
					"type": "object",
					"properties": {
						"op": {
							"type": "string",
							"enum": ["add_chapter", "remove_chapter", "rename_chapter", "move_chapter", "add_section", "remove_section", "rename_section", "renumber", "adjust_level"]
						},
						"chapter": {"type": "integer"},
						"section": {"type": "string", "description": "Section number such as 3.2"},
						"title": {"type": "string"},
						"after": {"type": "integer"},
						"before": {"type": "integer"},
						"target": {"type": "string", "description": "Chapter (3) or section (3.2) for adjust_level"},
						"direction": {"type": "string", "enum": ["up", "down"]}
					},
					"required": ["op"]
				}
			},
			"output": {
				"type": "string",
				"description": "File to write the edited outline to"
			},
			"in_place": {
				"type": "boolean",
				"description": "Overwrite the input path with the result"
			}
		},
		"required": ["ops"]
	}`)
}

func (t *EditTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		source
		Ops     []outline.Op `json:"ops"`
		Output  string       `json:"output"`
		InPlace bool         `json:"in_place"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if len(req.Ops) == 0 {
		return nil, apperr.Validation("at least one op is required")
	}
	if req.InPlace && req.Path == "" {
		return nil, apperr.Validation("in_place requires path")
	}

	text, err := req.load()
	if err != nil {
		return nil, err
	}

	editor := outline.NewEditor(outline.Parse(text))
	outcomes, err := ApplyAll(editor, req.Ops)
	if err != nil {
		return nil, err
	}

	o := editor.Outline()
	result := summarize(o)
	result["outcomes"] = outcomes
	result["normalized"] = o.Normalized()
	result["text"] = outline.Serialize(o)

	dest := req.Output
	if req.InPlace {
		dest = req.Path
	}
	if dest != "" {
		if err := writeOutline(dest, o); err != nil {
			return nil, err
		}
		result["output"] = dest
	}

	return result, nil
}

// ApplyAll runs ops in order against a copy of the editor's outline and
// only adopts the result when every op succeeded.
func ApplyAll(editor *outline.Editor, ops []outline.Op) ([]outline.Outcome, error) {
	work := outline.NewEditor(editor.Outline().Clone())

	outcomes := make([]outline.Outcome, 0, len(ops))
	for i, op := range ops {
		outcome, err := work.Apply(op)
		if err != nil {
			if kind := apperr.KindOf(err); kind != "" {
				return nil, apperr.New(kind, fmt.Sprintf("op %d (%s) refused", i+1, op.Op), err)
			}
			return nil, fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}
		outcomes = append(outcomes, outcome)
	}

	*editor.Outline() = *work.Outline()
	return outcomes, nil
}
