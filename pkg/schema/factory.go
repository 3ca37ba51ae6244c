package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-formbuilder/pkg/ids"
)

const defaultSectionLabel = "New Section"

// FieldOption customises a record built by the Factory.
type FieldOption func(*Field)

// WithID pins the identifier instead of generating one.
func WithID(id string) FieldOption {
	return func(f *Field) { f.ID = id }
}

// WithModel pins the form data key.
func WithModel(model string) FieldOption {
	return func(f *Field) { f.Model = model }
}

func WithLabel(label string) FieldOption {
	return func(f *Field) { f.Label = label }
}

func WithPlaceholder(placeholder string) FieldOption {
	return func(f *Field) { f.Placeholder = placeholder }
}

func WithHelpText(text string) FieldOption {
	return func(f *Field) { f.HelpText = text }
}

func WithDefault(value any) FieldOption {
	return func(f *Field) { f.Default = CloneValue(value) }
}

func WithRequired(required bool) FieldOption {
	return func(f *Field) { f.Required = required }
}

func WithDisabled(disabled bool) FieldOption {
	return func(f *Field) { f.Disabled = disabled }
}

// WithPage tags a section with the page it belongs to.
func WithPage(page string) FieldOption {
	return func(f *Field) { f.Page = page }
}

func WithOptions(options ...Option) FieldOption {
	return func(f *Field) { f.Options = cloneOptions(options) }
}

func WithValidation(rules ...ValidationRule) FieldOption {
	return func(f *Field) { f.Validation = cloneRules(rules) }
}

func WithLogic(rules ...LogicRule) FieldOption {
	return func(f *Field) { f.Logic = cloneLogic(rules) }
}

func WithVisibility(v Visibility) FieldOption {
	return func(f *Field) { f.Visibility = cloneVisibility(&v) }
}

// WithChildren seeds a section with child fields.
func WithChildren(children ...Field) FieldOption {
	return func(f *Field) { f.Fields = cloneFields(children) }
}

// Factory builds field and section records with type appropriate defaults.
type Factory struct {
	ids ids.Generator
}

// NewFactory returns a factory using gen for identifiers. A nil generator
// falls back to UUID based identifiers.
func NewFactory(gen ids.Generator) *Factory {
	if gen == nil {
		gen = ids.NewUUID()
	}
	return &Factory{ids: gen}
}

// NewField builds a leaf field of the given type. Section types are
// delegated to NewSection.
func (fc *Factory) NewField(fieldType FieldType, opts ...FieldOption) Field {
	if fieldType == FieldTypeSection {
		return fc.NewSection(opts...)
	}
	field := Field{
		ID:         fc.ids.FieldID(),
		Type:       fieldType,
		Model:      fc.ids.ModelKey(),
		Label:      capitalize(string(fieldType)),
		Default:    DefaultValue(fieldType),
		Validation: []ValidationRule{},
		Logic:      []LogicRule{},
	}
	if fieldType.HasOptions() {
		field.Options = []Option{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&field)
		}
	}
	return field
}

// NewSection builds an empty section container.
func (fc *Factory) NewSection(opts ...FieldOption) Field {
	section := Field{
		ID:     fc.ids.SectionID(),
		Type:   FieldTypeSection,
		Label:  defaultSectionLabel,
		Fields: []Field{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&section)
		}
	}
	return section
}

// CloneField deep copies field and assigns a fresh identifier and model key.
// Children of a cloned section receive fresh identifiers too.
func (fc *Factory) CloneField(field Field) Field {
	clone := field.Clone()
	if clone.IsSection() {
		clone.ID = fc.ids.SectionID()
		for i := range clone.Fields {
			clone.Fields[i].ID = fc.ids.FieldID()
			clone.Fields[i].Model = fc.ids.ModelKey()
		}
		return clone
	}
	clone.ID = fc.ids.FieldID()
	clone.Model = fc.ids.ModelKey()
	return clone
}

// DefaultValue returns the initial form value for a field type.
func DefaultValue(fieldType FieldType) any {
	switch fieldType {
	case FieldTypeNumber:
		return float64(0)
	case FieldTypeMultiselect:
		return []any{}
	case FieldTypeCheckbox, FieldTypeSwitch:
		return false
	case FieldTypeSelect, FieldTypeRadio, FieldTypeFile:
		return nil
	default:
		return ""
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.TrimSpace(s[size:])
}
