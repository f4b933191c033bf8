// Package filetools exposes outline documents stored as plain files as tools.
package filetools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/outlinefiles"
	"github.com/alucardeht/outliner/internal/tools"
)

const defaultLimit = 50

func GetTools(scanner *outlinefiles.Scanner) []tools.Tool {
	return []tools.Tool{
		NewListTool(scanner),
		NewSearchTool(scanner),
		NewDeleteTool(scanner),
	}
}

const scanProperties = `
			"dir": {
				"type": "string",
				"description": "Directory to scan (default: current directory)"
			},
			"pattern": {
				"type": "string",
				"description": "Glob of files to consider, ** matches any depth (default **/*.md)"
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of files (default 50)"
			}`

type ListTool struct {
	scanner *outlinefiles.Scanner
}

func NewListTool(scanner *outlinefiles.Scanner) *ListTool {
	return &ListTool{scanner: scanner}
}

func (t *ListTool) Name() string {
	return "outline_files_list"
}

func (t *ListTool) Description() string {
	return "List outline files under a directory with their chapter counts and lint totals, most recently modified first"
}

func (t *ListTool) Title() string {
	return "List Outline Files"
}

func (t *ListTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {` + scanProperties + `
		},
		"required": []
	}`)
}

func (t *ListTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Dir     string `json:"dir"`
		Pattern string `json:"pattern"`
		Limit   int    `json:"limit"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	files, err := t.scanner.List(req.Dir, req.Pattern)
	if err != nil {
		return nil, err
	}
	total := len(files)
	files = truncate(files, req.Limit)

	result := map[string]interface{}{
		"files": files,
		"count": len(files),
		"total": total,
	}
	if len(files) == 0 {
		result["message"] = "no outline files found"
	}
	return result, nil
}

type SearchTool struct {
	scanner *outlinefiles.Scanner
}

func NewSearchTool(scanner *outlinefiles.Scanner) *SearchTool {
	return &SearchTool{scanner: scanner}
}

func (t *SearchTool) Name() string {
	return "outline_files_search"
}

func (t *SearchTool) Description() string {
	return "Search outline files under a directory for text, ignoring case. Results are ranked by number of hits and list the matching headings"
}

func (t *SearchTool) Title() string {
	return "Search Outline Files"
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
			},` + scanProperties + `
		},
		"required": ["query"]
	}`)
}

func (t *SearchTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Query   string `json:"query"`
		Dir     string `json:"dir"`
		Pattern string `json:"pattern"`
		Limit   int    `json:"limit"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	matches, err := t.scanner.Search(req.Dir, req.Pattern, req.Query)
	if err != nil {
		return nil, err
	}
	matches = truncate(matches, req.Limit)

	result := map[string]interface{}{
		"query":   strings.TrimSpace(req.Query),
		"results": matches,
		"count":   len(matches),
	}
	if len(matches) == 0 {
		result["results"] = []outlinefiles.Match{}
		result["message"] = "no outline files matched"
	}
	return result, nil
}

type DeleteTool struct {
	scanner *outlinefiles.Scanner
}

func NewDeleteTool(scanner *outlinefiles.Scanner) *DeleteTool {
	return &DeleteTool{scanner: scanner}
}

func (t *DeleteTool) Name() string {
	return "outline_files_delete"
}

func (t *DeleteTool) Description() string {
	return "Delete an outline file. Files that do not parse as an outline are refused; a missing file reports deleted=false"
}

func (t *DeleteTool) Title() string {
	return "Delete Outline File"
}

func (t *DeleteTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *DeleteTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Outline file to delete"
			}
		},
		"required": ["path"]
	}`)
}

func (t *DeleteTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, apperr.Validation("path is required")
	}

	deleted, err := t.scanner.Delete(path)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"path":    path,
		"deleted": deleted,
	}
	if !deleted {
		result["message"] = "file not found"
	}
	return result, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
