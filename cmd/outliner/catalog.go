package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/history"
	"github.com/alucardeht/outliner/internal/tools/templatetools"
)

func (c *cli) templates(args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		return c.templateList(args[1:])
	case "show":
		return c.templateShow(args[1:])
	case "recommend":
		return c.templateRecommend(args[1:])
	case "validate":
		return c.templateValidate(args[1:])
	default:
		return apperr.Validation("unknown templates subcommand %q (want list, show, recommend or validate)", args[0])
	}
}

func (c *cli) templateList(args []string) error {
	fs := newFlagSet(c, "templates list", "")
	category := fs.String("category", "", "standard or industry")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var res struct {
		Templates []templatetools.TemplateSummary `json:"templates"`
	}
	data, err := c.call("template_list", map[string]interface{}{"category": *category}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}
	if len(res.Templates) == 0 {
		fmt.Fprintln(c.stdout, "no templates")
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tCHAPTERS\tNAME")
	for _, t := range res.Templates {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.ID, t.Category, t.Chapters, t.Name)
	}
	return tw.Flush()
}

func (c *cli) templateShow(args []string) error {
	fs := newFlagSet(c, "templates show", "<id>")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("a template id is required")
	}

	var res struct {
		Template templatetools.TemplateSummary `json:"template"`
		Skeleton []string                      `json:"skeleton"`
	}
	data, err := c.call("template_show", map[string]interface{}{"id": fs.Arg(0)}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}

	fmt.Fprintf(c.stdout, "%s %s (%s)\n", res.Template.ID, res.Template.Name, res.Template.Category)
	if res.Template.Scenario != "" {
		fmt.Fprintf(c.stdout, "适用场景：%s\n", res.Template.Scenario)
	}
	fmt.Fprintln(c.stdout)
	for _, line := range res.Skeleton {
		fmt.Fprintln(c.stdout, line)
	}
	return nil
}

func (c *cli) templateRecommend(args []string) error {
	fs := newFlagSet(c, "templates recommend", "<project description>")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if input == "" {
		fs.Usage()
		return apperr.Validation("project description is required")
	}

	var res struct {
		Selected string `json:"selected"`
		Name     string `json:"name"`
		Fallback bool   `json:"fallback"`
		Ranking  []struct {
			TemplateID string   `json:"template_id"`
			Weight     int      `json:"weight"`
			Keywords   []string `json:"keywords"`
			Name       string   `json:"name"`
		} `json:"ranking"`
	}
	data, err := c.call("template_recommend", map[string]interface{}{"project_input": input}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}

	if res.Fallback {
		fmt.Fprintf(c.stdout, "no keyword matched; default %s %s\n", res.Selected, res.Name)
		return nil
	}
	fmt.Fprintf(c.stdout, "selected %s %s\n\n", res.Selected, res.Name)

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWEIGHT\tKEYWORDS\tNAME")
	for _, r := range res.Ranking {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.TemplateID, r.Weight, strings.Join(r.Keywords, ","), r.Name)
	}
	return tw.Flush()
}

// templateValidate exits non-zero when any template document has problems.
func (c *cli) templateValidate(args []string) error {
	fs := newFlagSet(c, "templates validate", "")
	dir := fs.String("dir", "", "template directory (default: the configured templates)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var res struct {
		Valid     bool                 `json:"valid"`
		Files     []catalog.FileReport `json:"files"`
		Templates int                  `json:"templates"`
		Problems  int                  `json:"problems"`
	}
	data, err := c.call("template_validate", map[string]interface{}{"dir": *dir}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		if err := c.printJSON(data); err != nil {
			return err
		}
	} else {
		for _, f := range res.Files {
			status := "ok"
			if !f.Valid() {
				status = "FAIL"
			}
			fmt.Fprintf(c.stdout, "%-4s %s %s\n", status, f.File, strings.Join(f.Templates, ","))
			for _, p := range f.Problems {
				fmt.Fprintf(c.stdout, "     %s\n", p)
			}
		}
		fmt.Fprintf(c.stdout, "%d templates, %d problems\n", res.Templates, res.Problems)
	}

	if !res.Valid {
		return apperr.Validation("%d template problems found", res.Problems)
	}
	return nil
}

func (c *cli) history(args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		return c.historyList(args[1:])
	case "show":
		return c.historyShow(args[1:])
	case "delete":
		return c.historyDelete(args[1:])
	case "search":
		return c.historySearch(args[1:])
	default:
		return apperr.Validation("unknown history subcommand %q (want list, show, delete or search)", args[0])
	}
}

func (c *cli) historyList(args []string) error {
	fs := newFlagSet(c, "history list", "")
	title := fs.String("title", "", "only snapshots whose title contains this text")
	template := fs.String("template", "", "only snapshots of this template id")
	limit := fs.Int("n", 20, "maximum number of entries")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var res struct {
		Snapshots []history.Entry `json:"snapshots"`
		Message   string          `json:"message"`
	}
	data, err := c.call("history_list", map[string]interface{}{
		"title":    *title,
		"template": *template,
		"limit":    *limit,
	}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}
	if len(res.Snapshots) == 0 {
		fmt.Fprintln(c.stdout, res.Message)
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED\tTEMPLATE\tCHAPTERS\tTITLE")
	for _, e := range res.Snapshots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.SavedAt.Local().Format(time.DateTime), e.Template, e.Chapters, e.Title)
	}
	return tw.Flush()
}

func (c *cli) historyShow(args []string) error {
	fs := newFlagSet(c, "history show", "<id>")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("a snapshot id is required")
	}

	var res struct {
		Text string `json:"text"`
	}
	data, err := c.call("history_show", map[string]interface{}{"id": fs.Arg(0)}, &res)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(data)
	}
	fmt.Fprint(c.stdout, res.Text)
	return nil
}

func (c *cli) historyDelete(args []string) error {
	fs := newFlagSet(c, "history delete", "<id>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperr.Validation("a snapshot id is required")
	}

	var res struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
		Message string `json:"message"`
	}
	if _, err := c.call("history_delete", map[string]interface{}{"id": fs.Arg(0)}, &res); err != nil {
		return err
	}
	if !res.Deleted {
		fmt.Fprintf(c.stdout, "%s: %s\n", res.ID, res.Message)
		return nil
	}
	fmt.Fprintf(c.stdout, "deleted %s\n", res.ID)
	return nil
}

func (c *cli) historySearch(args []string) error {
	fs := newFlagSet(c, "history search", "<query>")
	limit := fs.Int("n", 20, "maximum number of results")
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
		Results []history.SearchResult `json:"results"`
		Message string                 `json:"message"`
	}
	data, err := c.call("history_search", map[string]interface{}{"query": query, "limit": *limit}, &res)
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

	for _, r := range res.Results {
		fmt.Fprintf(c.stdout, "%s  %s\n    %s\n", r.ID, r.Title, r.Snippet)
	}
	return nil
}
