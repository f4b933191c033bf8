package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/preview"
	"github.com/alucardeht/outliner/internal/textenc"
)

func (c *cli) generate(args []string) error {
	fs := newFlagSet(c, "generate", "<project description>")
	mode := fs.String("mode", "", "generation mode: quick, chapter-by-chapter or keypoints (default quick)")
	template := fs.String("template", "", "template id; chosen from the description when empty")
	presetName := fs.String("preset", "", "saved preset supplying mode, template and references")
	output := fs.String("o", "", "write the outline to this file instead of stdout")
	noSave := fs.Bool("no-save", false, "do not record a history snapshot")
	asJSON := fs.Bool("json", false, "print the tool result as JSON")
	var refs stringList
	fs.Var(&refs, "ref", "reference document path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if input == "" {
		fs.Usage()
		return apperr.Validation("project description is required")
	}

	var res struct {
		Title      string `json:"title"`
		Template   string `json:"template_used"`
		Text       string `json:"text"`
		Output     string `json:"output"`
		SnapshotID string `json:"snapshot_id"`
	}
	data, err := c.call("outline_generate", map[string]interface{}{
		"project_input":  input,
		"mode":           *mode,
		"template_id":    *template,
		"reference_docs": []string(refs),
		"preset":         *presetName,
		"output":         *output,
		"save":           !*noSave,
	}, &res)
	if err != nil {
		return err
	}

	if *asJSON {
		return c.printJSON(data)
	}
	if res.Output == "" {
		fmt.Fprint(c.stdout, res.Text)
	} else {
		fmt.Fprintf(c.stdout, "wrote %s (template %s)\n", res.Output, res.Template)
	}
	if res.SnapshotID != "" {
		fmt.Fprintf(c.stderr, "snapshot %s saved\n", res.SnapshotID)
	}
	return nil
}

func (c *cli) edit(args []string) error {
	fs := newFlagSet(c, "edit", "<outline file>")
	op := fs.String("op", "", "operation: add_chapter, remove_chapter, rename_chapter, move_chapter, add_section, remove_section, rename_section, renumber, adjust_level")
	chapter := fs.Int("chapter", 0, "chapter number")
	section := fs.String("section", "", "section number, e.g. 3.2")
	title := fs.String("title", "", "new title")
	after := fs.Int("after", 0, "place the chapter after this chapter")
	before := fs.Int("before", 0, "place the chapter before this chapter")
	target := fs.String("target", "", "chapter or section number for adjust_level")
	direction := fs.String("direction", "", "adjust_level direction: up or down")
	opsJSON := fs.String("ops", "", "JSON array of operations, instead of -op")
	output := fs.String("o", "", "write the result to this file instead of stdout")
	inPlace := fs.Bool("i", false, "overwrite the input file")
	asJSON := fs.Bool("json", false, "print the tool result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("exactly one outline file is required")
	}

	var ops []outline.Op
	switch {
	case *opsJSON != "" && *op != "":
		return apperr.Validation("use either -op or -ops")
	case *opsJSON != "":
		if err := json.Unmarshal([]byte(*opsJSON), &ops); err != nil {
			return apperr.Malformed("invalid -ops: %v", err)
		}
	case *op != "":
		ops = []outline.Op{{
			Op:        *op,
			Chapter:   *chapter,
			Section:   *section,
			Title:     *title,
			After:     *after,
			Before:    *before,
			Target:    *target,
			Direction: outline.Direction(*direction),
		}}
	default:
		fs.Usage()
		return apperr.Validation("-op or -ops is required")
	}

	var res struct {
		Outcomes []outline.Outcome `json:"outcomes"`
		Text     string            `json:"text"`
		Output   string            `json:"output"`
	}
	data, err := c.call("outline_edit", map[string]interface{}{
		"path":     fs.Arg(0),
		"ops":      ops,
		"output":   *output,
		"in_place": *inPlace,
	}, &res)
	if err != nil {
		return err
	}

	if *asJSON {
		return c.printJSON(data)
	}
	for _, outcome := range res.Outcomes {
		fmt.Fprintf(c.stderr, "%s: %s\n", outcome.Op, outcome.Message)
	}
	if res.Output == "" {
		fmt.Fprint(c.stdout, res.Text)
	} else {
		fmt.Fprintf(c.stdout, "wrote %s\n", res.Output)
	}
	return nil
}

func (c *cli) parse(args []string) error {
	fs := newFlagSet(c, "parse", "<outline file>")
	asJSON := fs.Bool("json", false, "print the parsed structure as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("exactly one outline file is required")
	}

	var res struct {
		Outline *outline.Outline `json:"outline"`
	}
	data, err := c.call("outline_parse", map[string]interface{}{"path": fs.Arg(0)}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}

	o := res.Outline
	fmt.Fprintf(c.stdout, "%s\n", o.Title)
	if o.Metadata.TemplateUsed != "" {
		fmt.Fprintf(c.stdout, "template: %s  mode: %s\n", o.Metadata.TemplateUsed, o.Metadata.GenerationMode)
	}
	if len(o.Chapters) == 0 {
		fmt.Fprintln(c.stdout, "no chapters")
		return nil
	}
	for _, ch := range o.Chapters {
		fmt.Fprintf(c.stdout, "%s\n", ch.Heading())
		for _, s := range ch.Sections {
			fmt.Fprintf(c.stdout, "  %s %s\n", s.Number, s.Title)
		}
	}
	return nil
}

func (c *cli) lint(args []string) error {
	fs := newFlagSet(c, "lint", "<outline file>")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	strict := fs.Bool("strict", false, "exit 1 when errors are found")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("exactly one outline file is required")
	}

	var res struct {
		Valid      bool            `json:"valid"`
		Normalized bool            `json:"normalized"`
		Issues     []outline.Issue `json:"issues"`
		Counts     map[string]int  `json:"counts"`
	}
	data, err := c.call("outline_lint", map[string]interface{}{"path": fs.Arg(0)}, &res)
	if err != nil {
		return err
	}

	if *asJSON {
		if err := c.printJSON(data); err != nil {
			return err
		}
	} else {
		if len(res.Issues) == 0 {
			fmt.Fprintln(c.stdout, "no issues found")
		}
		for _, issue := range res.Issues {
			loc := ""
			if issue.Line > 0 {
				loc = fmt.Sprintf("line %d: ", issue.Line)
			}
			fmt.Fprintf(c.stdout, "%-7s %s%s (%s)\n", issue.Severity, loc, issue.Description, issue.Type)
		}
	}

	if *strict && !res.Valid {
		return apperr.Validation("%d error(s) found", res.Counts["error"])
	}
	return nil
}

func (c *cli) render(args []string) error {
	fs := newFlagSet(c, "render", "<outline file>")
	asHTML := fs.Bool("html", false, "render a standalone HTML page")
	toc := fs.Bool("toc", false, "print the heading tree as a markdown parser sees it")
	output := fs.String("o", "", "write to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("exactly one outline file is required")
	}

	content, _, err := textenc.ReadFile(fs.Arg(0))
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("outline file %s not found", fs.Arg(0))
		}
		return apperr.IO("failed to read outline", err)
	}
	o := outline.Parse(content)

	w := c.stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return apperr.IO(fmt.Sprintf("failed to create %s", *output), err)
		}
		defer f.Close()
		w = f
	}

	switch {
	case *toc:
		for _, h := range preview.Headings([]byte(outline.Serialize(o))) {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", h.Level-1), h.Text)
		}
		return nil
	case *asHTML:
		return preview.WritePage(w, o)
	default:
		return outline.Write(w, o)
	}
}
