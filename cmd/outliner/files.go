package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/outlinefiles"
	"github.com/alucardeht/outliner/internal/preset"
)

func (c *cli) files(args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		return c.filesList(args[1:])
	case "search":
		return c.filesSearch(args[1:])
	case "delete":
		return c.filesDelete(args[1:])
	default:
		return apperr.Validation("unknown files subcommand %q (want list, search or delete)", args[0])
	}
}

func (c *cli) filesList(args []string) error {
	fs := newFlagSet(c, "files list", "[dir]")
	pattern := fs.String("pattern", "", "glob of files to consider (default **/*.md)")
	limit := fs.Int("n", 50, "maximum number of files")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var res struct {
		Files   []outlinefiles.File `json:"files"`
		Total   int                 `json:"total"`
		Message string              `json:"message"`
	}
	data, err := c.call("outline_files_list", map[string]interface{}{
		"dir":     fs.Arg(0),
		"pattern": *pattern,
		"limit":   *limit,
	}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}
	if len(res.Files) == 0 {
		fmt.Fprintln(c.stdout, res.Message)
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODIFIED\tTEMPLATE\tCHAPTERS\tISSUES\tPATH\tTITLE")
	for _, f := range res.Files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d\t%s\t%s\n",
			f.Modified.Local().Format(time.DateTime), f.Template, f.Chapters, f.Errors, f.Warnings, f.Path, f.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.Total > len(res.Files) {
		fmt.Fprintf(c.stdout, "showing %d of %d files\n", len(res.Files), res.Total)
	}
	return nil
}

func (c *cli) filesSearch(args []string) error {
	fs := newFlagSet(c, "files search", "<query>")
	dir := fs.String("dir", "", "directory to search (default: current directory)")
	pattern := fs.String("pattern", "", "glob of files to consider (default **/*.md)")
	limit := fs.Int("n", 50, "maximum number of files")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fs.Usage()
		return apperr.Validation("a search query is required")
	}

	var res struct {
		Results []outlinefiles.Match `json:"results"`
		Message string               `json:"message"`
	}
	data, err := c.call("outline_files_search", map[string]interface{}{
		"query":   query,
		"dir":     *dir,
		"pattern": *pattern,
		"limit":   *limit,
	}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(c.stdout, res.Message)
		return nil
	}

	for _, m := range res.Results {
		fmt.Fprintf(c.stdout, "%s  %s (%d hits)\n", m.Path, m.Title, m.Hits)
		for _, h := range m.Headings {
			fmt.Fprintf(c.stdout, "    %s\n", h)
		}
	}
	return nil
}

func (c *cli) filesDelete(args []string) error {
	fs := newFlagSet(c, "files delete", "<outline file>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("exactly one outline file is required")
	}

	var res struct {
		Path    string `json:"path"`
		Deleted bool   `json:"deleted"`
		Message string `json:"message"`
	}
	if _, err := c.call("outline_files_delete", map[string]interface{}{"path": fs.Arg(0)}, &res); err != nil {
		return err
	}
	if !res.Deleted {
		fmt.Fprintf(c.stdout, "%s: %s\n", res.Path, res.Message)
		return nil
	}
	fmt.Fprintf(c.stdout, "deleted %s\n", res.Path)
	return nil
}

func (c *cli) presets(args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		return c.presetList(args[1:])
	case "show":
		return c.presetShow(args[1:])
	case "save":
		return c.presetSave(args[1:])
	case "delete":
		return c.presetDelete(args[1:])
	default:
		return apperr.Validation("unknown presets subcommand %q (want list, show, save or delete)", args[0])
	}
}

func (c *cli) presetList(args []string) error {
	fs := newFlagSet(c, "presets list", "")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var res struct {
		Presets []preset.Preset `json:"presets"`
		Message string          `json:"message"`
	}
	data, err := c.call("preset_list", nil, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}
	if len(res.Presets) == 0 {
		fmt.Fprintln(c.stdout, res.Message)
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE\tTEMPLATE\tREFS\tDESCRIPTION")
	for _, p := range res.Presets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Name, p.Mode, p.TemplateID, len(p.ReferenceDocs), p.Description)
	}
	return tw.Flush()
}

func (c *cli) presetShow(args []string) error {
	fs := newFlagSet(c, "presets show", "<name>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("a preset name is required")
	}

	data, err := c.call("preset_show", map[string]interface{}{"name": fs.Arg(0)}, nil)
	if err != nil {
		return err
	}
	return c.printJSON(data)
}

func (c *cli) presetSave(args []string) error {
	fs := newFlagSet(c, "presets save", "<name>")
	description := fs.String("d", "", "what the preset is for")
	mode := fs.String("mode", "", "generation mode: quick, chapter-by-chapter or keypoints")
	template := fs.String("template", "", "template id")
	var refs stringList
	fs.Var(&refs, "ref", "reference document path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("a preset name is required")
	}

	var res preset.Preset
	if _, err := c.call("preset_save", map[string]interface{}{
		"name":           fs.Arg(0),
		"description":    *description,
		"mode":           *mode,
		"template_id":    *template,
		"reference_docs": []string(refs),
	}, &res); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "saved preset %s\n", res.Name)
	return nil
}

func (c *cli) presetDelete(args []string) error {
	fs := newFlagSet(c, "presets delete", "<name>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("a preset name is required")
	}

	var res struct {
		Name    string `json:"name"`
		Deleted bool   `json:"deleted"`
		Message string `json:"message"`
	}
	if _, err := c.call("preset_delete", map[string]interface{}{"name": fs.Arg(0)}, &res); err != nil {
		return err
	}
	if !res.Deleted {
		fmt.Fprintf(c.stdout, "%s: %s\n", res.Name, res.Message)
		return nil
	}
	fmt.Fprintf(c.stdout, "deleted preset %s\n", res.Name)
	return nil
}
