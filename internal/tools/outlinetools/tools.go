// Package outlinetools exposes outline generation, parsing, editing and
// linting as tools.
package outlinetools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/generator"
	"github.com/alucardeht/outliner/internal/history"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/preset"
	"github.com/alucardeht/outliner/internal/textenc"
	"github.com/alucardeht/outliner/internal/tools"
)

// GetTools returns the outline tools. store may be nil, in which case
// generated outlines are not recorded; presets may be nil, in which case
// outline_generate refuses the preset argument.
func GetTools(gen *generator.Generator, store *history.Store, presets *preset.Store) []tools.Tool {
	return []tools.Tool{
		NewGenerateTool(gen, store, presets),
		NewParseTool(),
		NewEditTool(),
		NewLintTool(),
	}
}

// source is the outline text given either inline or as a file path.
type source struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

func (s source) load() (string, error) {
	switch {
	case s.Path != "" && s.Text != "":
		return "", apperr.Validation("give either path or text, not both")
	case s.Text != "":
		return s.Text, nil
	case s.Path != "":
		content, _, err := textenc.ReadFile(s.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", apperr.NotFound("outline file %s not found", s.Path)
			}
			return "", apperr.IO(fmt.Sprintf("failed to read %s", s.Path), err)
		}
		return content, nil
	default:
		return "", apperr.Validation("path or text is required")
	}
}

// writeOutline writes the serialized outline to path, creating parent
// directories as needed.
func writeOutline(path string, o *outline.Outline) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperr.IO(fmt.Sprintf("failed to create %s", dir), err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return apperr.IO(fmt.Sprintf("failed to create %s", path), err)
	}
	if err := outline.Write(f, o); err != nil {
		f.Close()
		return apperr.IO(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := f.Close(); err != nil {
		return apperr.IO(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

func summarize(o *outline.Outline) map[string]interface{} {
	chapters := make([]string, 0, len(o.Chapters))
	for _, ch := range o.Chapters {
		chapters = append(chapters, ch.Heading())
	}
	return map[string]interface{}{
		"title":         o.Title,
		"template_used": o.Metadata.TemplateUsed,
		"chapter_count": len(o.Chapters),
		"section_count": o.SectionCount(),
		"chapters":      chapters,
	}
}

func issueCounts(issues []outline.Issue) map[string]int {
	counts := map[string]int{}
	for _, issue := range issues {
		counts[strings.ToLower(string(issue.Severity))]++
	}
	return counts
}
