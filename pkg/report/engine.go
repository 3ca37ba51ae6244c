package report

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Option configures an Engine.
type Option func(*config)

type config struct {
	templates fs.FS
	globals   map[string]any
}

// WithTemplates replaces the embedded templates. The file system must
// provide outline.tpl and field.tpl at its root.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if cfg.globals == nil {
				cfg.globals = make(map[string]any, len(data))
			}
			cfg.globals[key] = value
		}
	}
}

// Engine renders schema reports from a pongo2 template set.
type Engine struct {
	mu        sync.Mutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// New builds an Engine over the embedded templates unless overridden.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("report: open embedded templates: %w", err)
		}
		cfg.templates = sub
	}

	set := pongo2.NewSet("formbuilder-report", pongo2.NewFSLoader(cfg.templates))
	set.Options.TrimBlocks = true
	set.Options.LStripBlocks = true
	if len(cfg.globals) > 0 {
		if set.Globals == nil {
			set.Globals = make(pongo2.Context)
		}
		set.Globals.Update(pongo2.Context(cfg.globals))
	}
	registerFilters()

	return &Engine{set: set, templates: make(map[string]*pongo2.Template)}, nil
}

// Render executes the named template with ctx.
func (e *Engine) Render(name string, ctx pongo2.Context) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("report: engine is nil")
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("report: execute template %q: %w", name, err)
	}
	return out, nil
}

func (e *Engine) template(name string) (*pongo2.Template, error) {
	if !strings.HasSuffix(name, ".tpl") {
		name += ".tpl"
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

var operatorSymbols = map[string]string{
	"equals":    "=",
	"==":        "=",
	"=":         "=",
	"notEquals": "!=",
	"!==":       "!=",
	"notIn":     "not in",
}

// registerFilters installs the report filters once per process; pongo2
// keeps filters in a global registry.
func registerFilters() {
	if !pongo2.FilterExists("operator") {
		_ = pongo2.RegisterFilter("operator", filterOperator)
	}
}

func filterOperator(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	op := in.String()
	if symbol, ok := operatorSymbols[op]; ok {
		return pongo2.AsValue(symbol), nil
	}
	return pongo2.AsValue(op), nil
}
