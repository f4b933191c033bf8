// Package historytools exposes the snapshot history as tools.
package historytools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/history"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/tools"
)

const defaultLimit = 20

func GetTools(store *history.Store) []tools.Tool {
	return []tools.Tool{
		NewListTool(store),
		NewShowTool(store),
		NewDeleteTool(store),
		NewSearchTool(store),
	}
}

type ListTool struct {
	store *history.Store
}

func NewListTool(store *history.Store) *ListTool {
	return &ListTool{store: store}
}

func (t *ListTool) Name() string {
	return "history_list"
}

func (t *ListTool) Description() string {
	return "List saved outline snapshots, newest first"
}

func (t *ListTool) Title() string {
	return "List History"
}

func (t *ListTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {
				"type": "string",
				"description": "Only snapshots whose title contains this text"
			},
			"template": {
				"type": "string",
				"description": "Only snapshots generated from this template id"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of entries (default 20)"
			}
		},
		"required": []
	}`)
}

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req history.Filter
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	entries, err := t.store.List(req)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"snapshots": entries,
		"count":     len(entries),
	}
	if len(entries) == 0 {
		result["snapshots"] = []history.Entry{}
		result["message"] = "no snapshots found"
	}
	return result, nil
}

type ShowTool struct {
	store *history.Store
}

func NewShowTool(store *history.Store) *ShowTool {
	return &ShowTool{store: store}
}

func (t *ShowTool) Name() string {
	return "history_show"
}

func (t *ShowTool) Description() string {
	return "Show a saved snapshot as structure and as outline text"
}

func (t *ShowTool) Title() string {
	return "Show Snapshot"
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
				"description": "Snapshot id from history_list"
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
	if strings.TrimSpace(req.ID) == "" {
		return nil, apperr.Validation("id is required")
	}

	snap, err := t.store.Show(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":       snap.ID,
		"saved_at": snap.SavedAt,
		"outline":  snap.Outline,
		"text":     outline.Serialize(snap.Outline),
	}, nil
}

type DeleteTool struct {
	store *history.Store
}

func NewDeleteTool(store *history.Store) *DeleteTool {
	return &DeleteTool{store: store}
}

func (t *DeleteTool) Name() string {
	return "history_delete"
}

func (t *DeleteTool) Description() string {
	return "Delete a saved snapshot. Reports deleted=false when the id does not exist"
}

func (t *DeleteTool) Title() string {
	return "Delete Snapshot"
}

func (t *DeleteTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *DeleteTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {
				"type": "string",
				"description": "Snapshot id to delete"
			}
		},
		"required": ["id"]
	}`)
}

func (t *DeleteTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, apperr.Validation("id is required")
	}

	deleted, err := t.store.Delete(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"id":      req.ID,
		"deleted": deleted,
	}
	if !deleted {
		result["message"] = "snapshot not found"
	}
	return result, nil
}

type SearchTool struct {
	store *history.Store
}

func NewSearchTool(store *history.Store) *SearchTool {
	return &SearchTool{store: store}
}

func (t *SearchTool) Name() string {
	return "history_search"
}

func (t *SearchTool) Description() string {
	return "Search saved snapshots by title and outline text"
}

func (t *SearchTool) Title() string {
	return "Search History"
}

func (t *SearchTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *SearchTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Text to look for"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of results (default 20)"
			}
		},
		"required": ["query"]
	}`)
}

func (t *SearchTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	results, err := t.store.Search(req.Query, req.Limit)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"results": results,
		"count":   len(results),
	}
	if len(results) == 0 {
		out["results"] = []history.SearchResult{}
		out["message"] = "no snapshots matched"
	}
	return out, nil
}
