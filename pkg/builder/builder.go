// Package builder wires the schema store, undo history, field factory and
// the rule and validation engines into the command, query and notification
// surface a form editor or renderer talks to.
package builder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/history"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/rules"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/state"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Builder is the single entry point for editing a form schema and
// evaluating form data against it. It is not safe for concurrent use.
type Builder struct {
	store      *state.Store
	history    *history.Stack
	factory    *schema.Factory
	ids        ids.Generator
	rules      *rules.Engine
	validation *validation.Engine
	logger     *slog.Logger
	sanitize   bool
	restoring  bool
}

// New creates a builder holding an empty schema.
func New(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	b := &Builder{
		store: state.New(
			state.WithLogger(o.logger),
			state.WithIDGenerator(o.ids),
		),
		history:  history.New(o.historyCapacity),
		factory:  schema.NewFactory(o.ids),
		ids:      o.ids,
		logger:   o.logger,
		sanitize: o.sanitize,
	}

	current := b.store.Schema()
	b.rules = rules.New(current, rules.WithLogger(o.logger))
	vopts := []validation.Option{
		validation.WithLanguage(o.language),
		validation.WithLogger(o.logger),
	}
	for name, fn := range o.validators {
		vopts = append(vopts, validation.WithValidator(name, fn))
	}
	b.validation = validation.New(current, vopts...)
	b.history.Push(current)

	b.store.Subscribe(state.TopicSchema, state.OnSchema(b.schemaChanged))
	return b
}

func (b *Builder) schemaChanged(next schema.Schema) error {
	b.rules.UpdateSchema(next)
	b.validation.UpdateSchema(next)
	for _, cycle := range next.DetectCycles() {
		b.logger.Warn("rule dependency cycle", "path", strings.Join(cycle, " -> "))
	}
	if !b.restoring {
		b.history.Push(next)
	}
	return nil
}

// Subscribe registers fn for topic. Builder listeners run first, so
// subscribers always observe rebuilt engines.
func (b *Builder) Subscribe(topic state.Topic, fn state.Listener) func() {
	return b.store.Subscribe(topic, fn)
}

// Schema returns a copy of the current schema.
func (b *Builder) Schema() schema.Schema {
	return b.store.Schema()
}

// Field returns a copy of the field with the given id.
func (b *Builder) Field(id string) (schema.Field, bool) {
	return b.store.Field(id)
}

// SetSchema replaces the schema and records a history snapshot.
func (b *Builder) SetSchema(s schema.Schema) {
	b.store.SetSchema(s)
}

// UpdateMeta merges the non empty members of meta into the schema metadata.
func (b *Builder) UpdateMeta(meta schema.Meta) {
	b.store.UpdateMeta(meta)
}

// AddField inserts field into parentSectionID (or the last section, creating
// one when the schema is empty) and returns its id.
func (b *Builder) AddField(field schema.Field, parentSectionID string) string {
	if field.ID == "" {
		if field.IsSection() {
			field.ID = b.ids.SectionID()
		} else {
			field.ID = b.ids.FieldID()
		}
	}
	b.store.AddField(field, parentSectionID)
	return field.ID
}

// NewField creates a field of the given type with type defaults, adds it to
// parentSectionID and returns a copy.
func (b *Builder) NewField(fieldType schema.FieldType, parentSectionID string, opts ...schema.FieldOption) schema.Field {
	field := b.factory.NewField(fieldType, opts...)
	if field.IsSection() {
		return b.addSection(field)
	}
	b.store.AddField(field, parentSectionID)
	return field.Clone()
}

// NewSection appends an empty section tagged with the current page unless
// opts assign another one.
func (b *Builder) NewSection(opts ...schema.FieldOption) schema.Field {
	return b.addSection(b.factory.NewSection(opts...))
}

func (b *Builder) addSection(section schema.Field) schema.Field {
	if section.Page == "" {
		section.Page = b.store.UIState().CurrentPage
	}
	b.store.AddField(section, "")
	return section.Clone()
}

// DuplicateField copies a field with fresh identifiers into the same
// section and returns the copy.
func (b *Builder) DuplicateField(id string) (schema.Field, bool) {
	field, ok := b.store.Field(id)
	if !ok {
		return schema.Field{}, false
	}
	clone := b.factory.CloneField(field)
	parent, _ := b.store.ParentSectionID(id)
	b.store.AddField(clone, parent)
	return clone.Clone(), true
}

// RemoveField deletes a field. Unknown ids are a no-op.
func (b *Builder) RemoveField(id string) bool {
	return b.store.RemoveField(id)
}

// UpdateField shallow merges patch into a field.
func (b *Builder) UpdateField(id string, patch schema.FieldPatch) bool {
	return b.store.UpdateField(id, patch)
}

// ReorderFields moves a root level entry from one index to another.
func (b *Builder) ReorderFields(from, to int) bool {
	return b.store.ReorderFields(from, to)
}

// AddPage allocates a new page and makes it current.
func (b *Builder) AddPage() string {
	return b.store.AddPage()
}

// SetCurrentPage switches the current page.
func (b *Builder) SetCurrentPage(id string) {
	b.store.SetCurrentPage(id)
}

// Pages lists the page ids in order.
func (b *Builder) Pages() []string {
	return b.store.Pages()
}

// SectionsOnPage returns the sections tagged with page.
func (b *Builder) SectionsOnPage(page string) []schema.Field {
	return b.store.SectionsOnPage(page)
}

// UIState returns a copy of the UI state.
func (b *Builder) UIState() state.UIState {
	return b.store.UIState()
}

// SelectField records the field selected in the editor.
func (b *Builder) SelectField(id string) {
	b.store.SelectField(id)
}

// SetFieldErrors records validation messages for display.
func (b *Builder) SetFieldErrors(id string, errs []string) {
	b.store.SetFieldErrors(id, errs)
}

// FormData returns a copy of the form data.
func (b *Builder) FormData() map[string]any {
	return b.store.FormData()
}

// SetFormData replaces the form data.
func (b *Builder) SetFormData(data map[string]any) {
	b.store.SetFormData(data)
}

// SetFieldValue stores value for the field, runs the rule cascade rooted at
// it and returns the resulting states. Values assigned by setValue actions
// are persisted into the form data in document order. ok is false for
// unknown fields.
func (b *Builder) SetFieldValue(id string, value any) (rules.States, bool) {
	if !b.store.SetFieldValue(id, value) {
		return nil, false
	}
	b.store.SetFieldTouched(id)

	states := b.rules.EvaluateField(id, b.store.FormData())
	schema.Walk(b.store.Schema().Fields, func(field schema.Field, _ *schema.Field) bool {
		st, ok := states[field.ID]
		if ok && field.ID != id && assignedValue(st) {
			b.store.SetFieldValue(field.ID, st.Value)
		}
		return true
	})
	return states, true
}

func assignedValue(st rules.FieldState) bool {
	for _, action := range st.Actions {
		if action.Action == schema.ActionSetValue && action.Value != nil {
			return true
		}
	}
	return false
}

// EvaluateAll evaluates every field against the current form data.
func (b *Builder) EvaluateAll() rules.States {
	return b.rules.EvaluateAll(b.store.FormData())
}

// EvaluateField evaluates a field and its dependents against the current
// form data.
func (b *Builder) EvaluateField(id string) rules.States {
	return b.rules.EvaluateField(id, b.store.FormData())
}

// FieldState returns the evaluated state of a field.
func (b *Builder) FieldState(id string) (rules.FieldState, bool) {
	return b.rules.FieldState(id, b.store.FormData())
}

// Dependents returns the ids of fields whose rules read id.
func (b *Builder) Dependents(id string) []string {
	return b.rules.Dependents(id)
}

// ValidateField validates value against the rules of a field.
func (b *Builder) ValidateField(id string, value any, opts ...validation.CheckOption) []string {
	return b.validation.ValidateField(id, value, opts...)
}

// ValidateForm validates data, or the current form data when data is nil.
func (b *Builder) ValidateForm(data map[string]any, opts ...validation.CheckOption) validation.Result {
	if data == nil {
		data = b.store.FormData()
	}
	return b.validation.ValidateForm(data, opts...)
}

// RegisterValidator makes fn available to custom rules naming it.
func (b *Builder) RegisterValidator(name string, fn validation.CustomFunc) {
	b.validation.RegisterValidator(name, fn)
}

// Undo restores the previous schema snapshot.
func (b *Builder) Undo() bool {
	previous, ok := b.history.Undo()
	if !ok {
		return false
	}
	b.restore(previous)
	return true
}

// Redo reapplies the most recently undone snapshot.
func (b *Builder) Redo() bool {
	next, ok := b.history.Redo()
	if !ok {
		return false
	}
	b.restore(next)
	return true
}

func (b *Builder) restore(s schema.Schema) {
	b.restoring = true
	defer func() { b.restoring = false }()
	b.store.SetSchema(s)
}

// CanUndo reports whether Undo would change the schema.
func (b *Builder) CanUndo() bool { return b.history.CanUndo() }

// CanRedo reports whether Redo would change the schema.
func (b *Builder) CanRedo() bool { return b.history.CanRedo() }

// ImportSchema decodes a JSON or YAML document and loads it. Structural
// problems are returned with the result and do not block the load;
// unparsable input leaves the current schema untouched.
func (b *Builder) ImportSchema(data []byte) (schema.ImportResult, error) {
	result, err := schema.Decode(data)
	if err != nil {
		return schema.ImportResult{}, fmt.Errorf("builder: import schema: %w", err)
	}
	if b.sanitize {
		result.Schema = schema.Sanitize(result.Schema)
	}
	for _, problem := range result.Problems {
		b.logger.Warn("schema import problem", "problem", problem)
	}
	b.store.SetSchema(result.Schema)
	return result, nil
}

// ExportSchema encodes the current schema as indented JSON.
func (b *Builder) ExportSchema() ([]byte, error) {
	return schema.Export(b.store.Schema())
}

// ExportSchemaYAML encodes the current schema as YAML.
func (b *Builder) ExportSchemaYAML() ([]byte, error) {
	return schema.ExportYAML(b.store.Schema())
}

// Reset replaces the schema with an empty one and clears form data. The
// reset itself can be undone.
func (b *Builder) Reset() {
	meta := b.store.Schema().Meta
	b.store.SetFormData(map[string]any{})
	b.store.SetSchema(schema.Schema{
		Meta:   schema.Meta{Name: meta.Name, Version: meta.Version},
		Fields: []schema.Field{},
	})
}
