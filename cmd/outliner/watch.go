package main

import (
	"fmt"
	"sync"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/outline"
	"github.com/alucardeht/outliner/internal/watcher"
)

func (c *cli) watch(args []string) error {
	fs := newFlagSet(c, "watch", "<file or directory>...")
	debounce := fs.Duration("debounce", c.cfg.Watcher.DebounceWindow, "quiet period before a changed file is checked")
	quiet := fs.Bool("q", false, "only print files that have issues")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return apperr.Validation("at least one path is required")
	}

	cfg := c.cfg.Watcher
	cfg.DebounceWindow = *debounce

	var mu sync.Mutex
	report := func(r watcher.Report) {
		mu.Lock()
		defer mu.Unlock()
		c.printReport(r, *quiet)
	}

	w, err := watcher.New(cfg, report)
	if err != nil {
		return apperr.IO("failed to start watcher", err)
	}
	for _, path := range fs.Args() {
		if err := w.Add(path); err != nil {
			w.Stop()
			return apperr.IO(fmt.Sprintf("failed to watch %s", path), err)
		}
	}

	if err := w.Start(c.ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "watching %d path(s); press Ctrl-C to stop\n", fs.NArg())

	<-c.ctx.Done()
	return w.Stop()
}

func (c *cli) printReport(r watcher.Report, quiet bool) {
	if r.Err != nil {
		fmt.Fprintf(c.stdout, "%s: %v\n", r.Path, r.Err)
		return
	}
	if len(r.Issues) == 0 {
		if !quiet {
			fmt.Fprintf(c.stdout, "%s: ok (%d chapters, %d sections)\n", r.Path, len(r.Outline.Chapters), r.Outline.SectionCount())
		}
		return
	}

	errs := 0
	for _, issue := range r.Issues {
		if issue.Severity == outline.SeverityError {
			errs++
		}
	}
	fmt.Fprintf(c.stdout, "%s: %d issue(s), %d error(s)\n", r.Path, len(r.Issues), errs)
	for _, issue := range r.Issues {
		fmt.Fprintf(c.stdout, "  %-7s line %d: %s\n", issue.Severity, issue.Line, issue.Description)
	}
}
