package outlinetools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/generator"
	"github.com/alucardeht/outliner/internal/history"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/preset"
	"github.com/alucardeht/outliner/internal/tools"
)

type GenerateTool struct {
	gen     *generator.Generator
	store   *history.Store
	presets *preset.Store
}

func NewGenerateTool(gen *generator.Generator, store *history.Store, presets *preset.Store) *GenerateTool {
	return &GenerateTool{gen: gen, store: store, presets: presets}
}

func (t *GenerateTool) Name() string {
	return "outline_generate"
}

func (t *GenerateTool) Description() string {
	return `Generate a report outline from a project description.

The template is chosen from the description unless template_id names one
that exists. A named preset fills in mode, template_id and reference_docs
when they are not given. The outline is returned as text, optionally
written to output, and recorded as a history snapshot unless save is false.`
}

func (t *GenerateTool) Title() string {
	return "Generate Outline"
}

func (t *GenerateTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *GenerateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"project_input": {
				"type": "string",
				"description": "Free-text project description, e.g. 风电场地质调查报告"
			},
			"mode": {
				"type": "string",
				"enum": ["quick", "chapter-by-chapter", "keypoints"],
				"description": "Generation mode (default quick)"
			},
			"template_id": {
				"type": "string",
				"description": "Template id such as T101; selected automatically when omitted"
			},
			"reference_docs": {
				"type": "array",
				"items": {"type": "string"},
				"description": "Paths of reference documents to record in the metadata"
			},
			"preset": {
				"type": "string",
				"description": "Saved preset supplying defaults for mode, template_id and reference_docs"
			},
			"output": {
				"type": "string",
				"description": "File to write the outline text to"
			},
			"save": {
				"type": "boolean",
				"description": "Record a history snapshot (default true)"
			}
		},
		"required": ["project_input"]
	}`)
}

func (t *GenerateTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		ProjectInput  string   `json:"project_input"`
		Mode          string   `json:"mode"`
		TemplateID    string   `json:"template_id"`
		ReferenceDocs []string `json:"reference_docs"`
		Preset        string   `json:"preset"`
		Output        string   `json:"output"`
		Save          *bool    `json:"save"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	genReq := generator.Request{
		ProjectInput:  req.ProjectInput,
		Mode:          outline.Mode(req.Mode),
		TemplateID:    req.TemplateID,
		ReferenceDocs: req.ReferenceDocs,
	}
	if name := strings.TrimSpace(req.Preset); name != "" {
		if t.presets == nil {
			return nil, apperr.Unsupported("presets are not available")
		}
		p, err := t.presets.Get(name)
		if err != nil {
			return nil, err
		}
		genReq = p.Apply(genReq)
	}

	o, err := t.gen.Generate(genReq)
	if err != nil {
		return nil, err
	}

	result := summarize(o)
	result["generation_mode"] = o.Metadata.GenerationMode
	if req.Preset != "" {
		result["preset"] = strings.TrimSpace(req.Preset)
	}
	result["text"] = outline.Serialize(o)

	if req.Output != "" {
		if err := writeOutline(req.Output, o); err != nil {
			return nil, err
		}
		result["output"] = req.Output
	}

	if t.store != nil && (req.Save == nil || *req.Save) {
		snap, err := t.store.Save(o)
		if err != nil {
			return nil, err
		}
		result["snapshot_id"] = snap.ID
	}

	return result, nil
}
