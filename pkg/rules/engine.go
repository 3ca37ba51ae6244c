// Package rules decides the runtime state of every field (visible, enabled,
// required, value, options) from the current form data and the visibility
// and logic rules declared in a schema, and propagates value changes to
// dependent fields.
package rules

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// FieldState is the evaluated runtime state of a field. Options is nil
// unless a setOptions action fired; renderers fall back to the declared
// options. Actions lists every action of every rule that fired, in order.
type FieldState struct {
	Visible  bool            `json:"visible"`
	Enabled  bool            `json:"enabled"`
	Required bool            `json:"required"`
	Value    any             `json:"value"`
	Options  []schema.Option `json:"options,omitempty"`
	Actions  []schema.Action `json:"actions"`
}

// States maps field ids to their evaluated state.
type States map[string]FieldState

// Hidden reports whether id was evaluated as hidden.
func (s States) Hidden(id string) bool {
	state, ok := s[id]
	return ok && !state.Visible
}

// Required reports whether id was evaluated as required.
func (s States) Required(id string) bool {
	return s[id].Required
}

// Hook observes every result map produced by the engine.
type Hook func(States)

// Option customises an Engine.
type Option func(*Engine)

// WithEvaluationHook registers hook to receive each evaluation result.
func WithEvaluationHook(hook Hook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}

// WithLogger sets the logger used for cascade diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine evaluates rule state for one schema at a time. It is not safe for
// concurrent use.
type Engine struct {
	schema schema.Schema
	order  []string
	fields map[string]schema.Field
	graph  Graph
	hooks  []Hook
	logger *slog.Logger
}

// New creates an engine for s.
func New(s schema.Schema, opts ...Option) *Engine {
	e := &Engine{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.UpdateSchema(s)
	return e
}

// UpdateSchema replaces the schema and rebuilds the dependency index.
func (e *Engine) UpdateSchema(s schema.Schema) {
	e.schema = s.Clone()
	e.order = e.order[:0]
	e.fields = make(map[string]schema.Field)
	schema.Walk(e.schema.Fields, func(field schema.Field, _ *schema.Field) bool {
		e.order = append(e.order, field.ID)
		return true
	})
	// Root entries win over section children that reuse their id.
	for _, field := range e.schema.Fields {
		if _, ok := e.fields[field.ID]; !ok {
			e.fields[field.ID] = field
		}
	}
	schema.Walk(e.schema.Fields, func(field schema.Field, _ *schema.Field) bool {
		if _, ok := e.fields[field.ID]; !ok {
			e.fields[field.ID] = field
		}
		return true
	})
	e.graph = NewGraph(e.schema)
}

// Graph returns the current dependency index.
func (e *Engine) Graph() Graph {
	return e.graph
}

// Dependents returns the ids of fields whose rules read id.
func (e *Engine) Dependents(id string) []string {
	return e.graph.Dependents(id)
}

// EvaluateAll evaluates every root entry and every section child in document
// order. Values written by setValue are visible to later fields; data itself
// is never modified.
func (e *Engine) EvaluateAll(data map[string]any) States {
	work := copyData(data)
	results := make(States, len(e.order))
	for _, id := range e.order {
		field, ok := e.fields[id]
		if !ok {
			continue
		}
		results[id] = e.evaluate(field, work)
	}
	e.emit(results)
	return results
}

// EvaluateField evaluates id and then, depth first, every field reachable
// through the dependency index. Each field is evaluated at most once per
// call, so cyclic rules terminate. Unknown ids yield an empty result.
func (e *Engine) EvaluateField(id string, data map[string]any) States {
	results := make(States)
	field, ok := e.fields[id]
	if !ok {
		return results
	}
	work := copyData(data)
	visited := map[string]bool{id: true}
	results[id] = e.evaluate(field, work)
	e.cascade(id, work, results, visited)
	e.emit(results)
	return results
}

// FieldState evaluates the whole schema and returns the state of id.
func (e *Engine) FieldState(id string, data map[string]any) (FieldState, bool) {
	state, ok := e.EvaluateAll(data)[id]
	return state, ok
}

func (e *Engine) cascade(id string, work map[string]any, results States, visited map[string]bool) {
	for _, dep := range e.graph.Dependents(id) {
		if visited[dep] {
			e.logger.Debug("rule cascade skipped revisit", "field", dep, "source", id)
			continue
		}
		field, ok := e.fields[dep]
		if !ok {
			continue
		}
		visited[dep] = true
		results[dep] = e.evaluate(field, work)
		e.cascade(dep, work, results, visited)
	}
}

func (e *Engine) evaluate(field schema.Field, work map[string]any) FieldState {
	state := FieldState{
		Visible:  true,
		Enabled:  true,
		Required: field.Required,
		Value:    schema.CloneValue(work[field.Model]),
		Actions:  []schema.Action{},
	}
	if field.Model == "" {
		state.Value = nil
	}

	lookup := e.lookup(work)
	if field.Visibility != nil {
		state.Visible = Evaluate(field.Visibility.Condition(), lookup)
	}

	for _, rule := range field.Logic {
		cond := schema.Condition{}
		if rule.If != nil {
			cond = *rule.If
		}
		if !Evaluate(cond, lookup) {
			continue
		}
		for _, action := range rule.Then {
			state.Actions = append(state.Actions, cloneAction(action))
			apply(&state, action)
			if action.Action == schema.ActionSetValue && action.Value != nil && field.Model != "" {
				work[field.Model] = schema.CloneValue(action.Value)
			}
		}
	}
	return state
}

func (e *Engine) lookup(work map[string]any) Lookup {
	return func(fieldID string) (any, bool) {
		field, ok := e.fields[fieldID]
		if !ok {
			return nil, false
		}
		if field.Model == "" {
			return nil, true
		}
		return work[field.Model], true
	}
}

func apply(state *FieldState, action schema.Action) {
	switch action.Action {
	case schema.ActionShow:
		state.Visible = true
	case schema.ActionHide:
		state.Visible = false
	case schema.ActionEnable:
		state.Enabled = true
	case schema.ActionDisable:
		state.Enabled = false
	case schema.ActionSetValue:
		if action.Value != nil {
			state.Value = schema.CloneValue(action.Value)
		}
	case schema.ActionSetOptions:
		if action.Options != nil {
			state.Options = append([]schema.Option(nil), action.Options...)
		}
	case schema.ActionSetRequired:
		state.Required = action.Value != false
	}
}

func (e *Engine) emit(results States) {
	for _, hook := range e.hooks {
		hook(results)
	}
}

func copyData(data map[string]any) map[string]any {
	work := make(map[string]any, len(data))
	for k, v := range data {
		work[k] = v
	}
	return work
}

func cloneAction(action schema.Action) schema.Action {
	action.Value = schema.CloneValue(action.Value)
	if action.Options != nil {
		action.Options = append([]schema.Option(nil), action.Options...)
	}
	return action
}
