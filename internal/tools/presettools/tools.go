// Package presettools exposes the saved generation presets as tools.
package presettools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/preset"
	"github.com/alucardeht/outliner/internal/tools"
)

func GetTools(store *preset.Store) []tools.Tool {
	return []tools.Tool{
		NewListTool(store),
		NewShowTool(store),
		NewSaveTool(store),
		NewDeleteTool(store),
	}
}

type ListTool struct {
	store *preset.Store
}

func NewListTool(store *preset.Store) *ListTool {
	return &ListTool{store: store}
}

func (t *ListTool) Name() string {
	return "preset_list"
}

func (t *ListTool) Description() string {
	return "List saved generation presets"
}

func (t *ListTool) Title() string {
	return "List Presets"
}

func (t *ListTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	presets, err := t.store.List()
	if err != nil {
		return nil, err
	}
	result := map[string]interface{}{
		"presets": presets,
		"count":   len(presets),
	}
	if len(presets) == 0 {
		result["message"] = "no presets saved"
	}
	return result, nil
}

type nameRequest struct {
	Name string `json:"name"`
}

func decodeName(input json.RawMessage) (string, error) {
	var req nameRequest
	if err := tools.Decode(input, &req); err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	return name, nil
}

const nameSchema = `{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"description": "Preset name"
			}
		},
		"required": ["name"]
	}`

type ShowTool struct {
	store *preset.Store
}

func NewShowTool(store *preset.Store) *ShowTool {
	return &ShowTool{store: store}
}

func (t *ShowTool) Name() string {
	return "preset_show"
}

func (t *ShowTool) Description() string {
	return "Show the settings stored in a generation preset"
}

func (t *ShowTool) Title() string {
	return "Show Preset"
}

func (t *ShowTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ShowTool) Schema() json.RawMessage {
	return json.RawMessage(nameSchema)
}

func (t *ShowTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	name, err := decodeName(input)
	if err != nil {
		return nil, err
	}
	return t.store.Get(name)
}

type SaveTool struct {
	store *preset.Store
}

func NewSaveTool(store *preset.Store) *SaveTool {
	return &SaveTool{store: store}
}

func (t *SaveTool) Name() string {
	return "preset_save"
}

func (t *SaveTool) Description() string {
	return "Save generation settings under a name for outline_generate's preset argument. An existing preset of the same name is replaced"
}

func (t *SaveTool) Title() string {
	return "Save Preset"
}

func (t *SaveTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *SaveTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"description": "Preset name: letters, digits, '-' or '_'"
			},
			"description": {
				"type": "string",
				"description": "What the preset is for"
			},
			"mode": {
				"type": "string",
				"enum": ["quick", "chapter-by-chapter", "keypoints"],
				"description": "Generation mode"
			},
			"template_id": {
				"type": "string",
				"description": "Template id such as T101"
			},
			"reference_docs": {
				"type": "array",
				"items": {"type": "string"},
				"description": "Reference documents to record"
			}
		},
		"required": ["name"]
	}`)
}

func (t *SaveTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Name          string   `json:"name"`
		Description   string   `json:"description"`
		Mode          string   `json:"mode"`
		TemplateID    string   `json:"template_id"`
		ReferenceDocs []string `json:"reference_docs"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	return t.store.Save(preset.Preset{
		Name:          req.Name,
		Description:   strings.TrimSpace(req.Description),
		Mode:          outline.Mode(strings.TrimSpace(req.Mode)),
		TemplateID:    req.TemplateID,
		ReferenceDocs: req.ReferenceDocs,
	})
}

type DeleteTool struct {
	store *preset.Store
}

func NewDeleteTool(store *preset.Store) *DeleteTool {
	return &DeleteTool{store: store}
}

func (t *DeleteTool) Name() string {
	return "preset_delete"
}

func (t *DeleteTool) Description() string {
	return "Delete a generation preset. Reports deleted=false when it does not exist"
}

func (t *DeleteTool) Title() string {
	return "Delete Preset"
}

func (t *DeleteTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *DeleteTool) Schema() json.RawMessage {
	return json.RawMessage(nameSchema)
}

func (t *DeleteTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	name, err := decodeName(input)
	if err != nil {
		return nil, err
	}
	deleted, err := t.store.Delete(name)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"name":    name,
		"deleted": deleted,
	}
	if !deleted {
		result["message"] = "preset not found"
	}
	return result, nil
}
