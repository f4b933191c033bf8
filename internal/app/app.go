// Package app wires the catalog, generator, history store, presets and tool
// registry shared by the CLI and the tool server.
package app

import (
	"fmt"

	"github.com/alucardeht/outliner/internal/catalog"
	"github.com/alucardeht/outliner/internal/config"
	"github.com/alucardeht/outliner/internal/generator"
	"github.com/alucardeht/outliner/internal/history"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/outlinefiles"
	"github.com/alucardeht/outliner/internal/preset"
	"github.com/alucardeht/outliner/internal/tools"
	"github.com/alucardeht/outliner/internal/tools/filetools"
	"github.com/alucardeht/outliner/internal/tools/historytools"
	"github.com/alucardeht/outliner/internal/tools/outlinetools"
	"github.com/alucardeht/outliner/internal/tools/presettools"
	"github.com/alucardeht/outliner/internal/tools/templatetools"
)

var log = logger.ForComponent("app")

type App struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Source    catalog.Source
	Selector  *catalog.Selector
	Generator *generator.Generator
	History   *history.Store
	Presets   *preset.Store
	Files     *outlinefiles.Scanner
	Registry  *tools.Registry
}

type Option func(*options)

type options struct {
	generatorOpts []generator.Option
	historyOpts   []history.Option
}

func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(o *options) { o.generatorOpts = append(o.generatorOpts, opts...) }
}

func WithHistoryOptions(opts ...history.Option) Option {
	return func(o *options) { o.historyOpts = append(o.historyOpts, opts...) }
}

// New loads the catalog once and opens the history store. The returned App
// must be closed.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	src, err := catalog.SourceFor(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(src)
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		log.Warn("no templates loaded", "dir", cfg.TemplatesDir)
	}

	presets, err := preset.Open(cfg.PresetsDir)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(cfg.HistoryDir, o.historyOpts...)
	if err != nil {
		return nil, err
	}

	sel := catalog.DefaultSelector()
	gen := generator.New(cat, append([]generator.Option{generator.WithSelector(sel)}, o.generatorOpts...)...)

	a := &App{
		Config:    cfg,
		Catalog:   cat,
		Source:    src,
		Selector:  sel,
		Generator: gen,
		History:   store,
		Presets:   presets,
		Files:     outlinefiles.NewScanner(cfg.Watcher.IgnorePatterns),
		Registry:  tools.NewRegistry(),
	}

	if err := a.registerTools(); err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) registerTools() error {
	all := []tools.Tool{tools.NewHealthTool(a.Registry, a.healthInfo)}
	all = append(all, outlinetools.GetTools(a.Generator, a.History, a.Presets)...)
	all = append(all, templatetools.GetTools(a.Catalog, a.Selector, a.Source)...)
	all = append(all, historytools.GetTools(a.History)...)
	all = append(all, filetools.GetTools(a.Files)...)
	all = append(all, presettools.GetTools(a.Presets)...)

	if err := a.Registry.RegisterAll(all...); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}
	return nil
}

func (a *App) healthInfo() map[string]interface{} {
	info := map[string]interface{}{
		"templates":   a.Catalog.Len(),
		"history_dir": a.History.Dir(),
		"presets_dir": a.Presets.Dir(),
	}
	if entries, err := a.History.List(history.Filter{}); err == nil {
		info["snapshots"] = len(entries)
	}
	return info
}

func (a *App) Close() error {
	return a.History.Close()
}
