package schema

// FieldType is the closed set of field kinds a schema can declare.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeEmail       FieldType = "email"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeSwitch      FieldType = "switch"
	FieldTypeDate        FieldType = "date"
	FieldTypeFile        FieldType = "file"
	FieldTypeSection     FieldType = "section"
)

// FieldTypes lists every known field type in palette order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeNumber,
	FieldTypeEmail,
	FieldTypeSelect,
	FieldTypeMultiselect,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeSwitch,
	FieldTypeDate,
	FieldTypeFile,
	FieldTypeSection,
}

// Known reports whether t belongs to the closed set of field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether the type renders a choice list.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeMultiselect || t == FieldTypeRadio
}

// Validation rule kinds.
const (
	RuleRequired  = "required"
	RuleEmail     = "email"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RuleMin       = "min"
	RuleMax       = "max"
	RulePattern   = "pattern"
	RuleCustom    = "custom"
)

// Condition operators.
const (
	OperatorEquals           = "equals"
	OperatorNotEquals        = "notEquals"
	OperatorLessThan         = "<"
	OperatorGreaterThan      = ">"
	OperatorLessThanEqual    = "<="
	OperatorGreaterThanEqual = ">="
	OperatorIncludes         = "includes"
	OperatorIn               = "in"
	OperatorNotIn            = "notIn"
	OperatorExists           = "exists"
	OperatorEmpty            = "empty"
)

// Logic actions.
const (
	ActionShow        = "show"
	ActionHide        = "hide"
	ActionEnable      = "enable"
	ActionDisable     = "disable"
	ActionSetValue    = "setValue"
	ActionSetOptions  = "setOptions"
	ActionSetRequired = "setRequired"
)

// DefaultPage is the page a section belongs to when it declares no tag.
const DefaultPage = "page-1"

// Schema is the serialisable form definition and the unit of undo/redo,
// import and export. Fields holds sections (and, for hand written documents,
// root level fields) in render order.
type Schema struct {
	Meta   Meta    `json:"meta"`
	Fields []Field `json:"fields"`
}

// Meta carries free form descriptive data.
type Meta struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Field is a leaf input or, when Type is FieldTypeSection, a container that
// owns an ordered list of child fields.
type Field struct {
	ID          string           `json:"id"`
	Type        FieldType        `json:"type"`
	Model       string           `json:"model,omitempty"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Default     any              `json:"default"`
	Required    bool             `json:"required,omitempty"`
	Disabled    bool             `json:"disabled,omitempty"`
	HelpText    string           `json:"helpText,omitempty"`
	ClassName   string           `json:"className,omitempty"`
	Options     []Option         `json:"options,omitempty"`
	Validation  []ValidationRule `json:"validation,omitempty"`
	Logic       []LogicRule      `json:"logic,omitempty"`
	Visibility  *Visibility      `json:"visibility,omitempty"`
	Page        string           `json:"page,omitempty"`
	Fields      []Field          `json:"fields,omitempty"`
}

// IsSection reports whether the field is a section container.
func (f Field) IsSection() bool {
	return f.Type == FieldTypeSection
}

// PageID returns the section's page tag, defaulting to DefaultPage.
func (f Field) PageID() string {
	if f.Page == "" {
		return DefaultPage
	}
	return f.Page
}

// Option is a value/label pair offered by selection fields.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// ValidationRule configures a single check applied to a field value. Value
// holds the threshold or pattern for the parametrised kinds; Min, Max and
// Pattern are accepted as alternative spellings. Validator names a predicate
// registered on the validation engine for custom rules.
type ValidationRule struct {
	Rule      string   `json:"rule"`
	Message   string   `json:"message,omitempty"`
	Value     any      `json:"value,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Validator string   `json:"validator,omitempty"`
}

// LogicRule applies every action in Then when If holds.
type LogicRule struct {
	If   *Condition `json:"if"`
	Then []Action   `json:"then"`
}

// Condition compares the current value of the field identified by Field.
type Condition struct {
	Field    string `json:"field,omitempty"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// Visibility is a condition deciding whether the owning field is visible.
// DependsOn tags the field the condition watches; Field and DependsOn fall
// back to each other when only one is present.
type Visibility struct {
	DependsOn string `json:"dependsOn,omitempty"`
	Field     string `json:"field,omitempty"`
	Operator  string `json:"operator"`
	Value     any    `json:"value,omitempty"`
}

// Reference returns the id of the field the visibility rule depends on.
func (v Visibility) Reference() string {
	if v.DependsOn != "" {
		return v.DependsOn
	}
	return v.Field
}

// Condition converts the visibility rule into a plain condition.
func (v Visibility) Condition() Condition {
	ref := v.Field
	if ref == "" {
		ref = v.DependsOn
	}
	return Condition{Field: ref, Operator: v.Operator, Value: v.Value}
}

// Action is an effect applied to a field state when its rule fires.
type Action struct {
	Action  string   `json:"action"`
	Value   any      `json:"value,omitempty"`
	Options []Option `json:"options,omitempty"`
}

// FieldPatch is a shallow update: every non-nil member replaces the matching
// member of the target field wholesale. Nested values (Validation, Logic,
// Options) are never merged.
type FieldPatch struct {
	Type        *FieldType
	Model       *string
	Label       *string
	Placeholder *string
	Default     *any
	Required    *bool
	Disabled    *bool
	HelpText    *string
	ClassName   *string
	Options     *[]Option
	Validation  *[]ValidationRule
	Logic       *[]LogicRule
	Visibility  **Visibility
	Page        *string
	Fields      *[]Field
}

// Apply merges the patch into f and returns the result.
func (p FieldPatch) Apply(f Field) Field {
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Model != nil {
		f.Model = *p.Model
	}
	if p.Label != nil {
		f.Label = *p.Label
	}
	if p.Placeholder != nil {
		f.Placeholder = *p.Placeholder
	}
	if p.Default != nil {
		f.Default = CloneValue(*p.Default)
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	if p.Disabled != nil {
		f.Disabled = *p.Disabled
	}
	if p.HelpText != nil {
		f.HelpText = *p.HelpText
	}
	if p.ClassName != nil {
		f.ClassName = *p.ClassName
	}
	if p.Options != nil {
		f.Options = cloneOptions(*p.Options)
	}
	if p.Validation != nil {
		f.Validation = cloneRules(*p.Validation)
	}
	if p.Logic != nil {
		f.Logic = cloneLogic(*p.Logic)
	}
	if p.Visibility != nil {
		f.Visibility = cloneVisibility(*p.Visibility)
	}
	if p.Page != nil {
		f.Page = *p.Page
	}
	if p.Fields != nil {
		f.Fields = cloneFields(*p.Fields)
	}
	return f
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }
