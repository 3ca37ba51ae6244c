// Package openapi seeds form schemas from the request bodies of OpenAPI 3
// operations.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

var (
	// ErrOperationNotFound is returned when no operation matches the
	// requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object request
	// body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// ExtensionKey is the vendor extension read from properties to override the
// derived field.
const ExtensionKey = "x-formbuilder"

// enum lists up to this length render as radio groups.
const radioLimit = 3

// strings longer than this render as a textarea.
const textareaThreshold = 255

var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

var methods = []string{"GET", "PUT", "POST", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE"}

// Operation summarises an operation that can seed a form.
type Operation struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger reports skipped properties to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Seeder turns OpenAPI request bodies into schemas.
type Seeder struct {
	logger *slog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(opts ...Option) *Seeder {
	s := &Seeder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type operationRef struct {
	Operation
	op *openapi3.Operation
}

func (s *Seeder) load(ctx context.Context, data []byte) (*openapi3.T, []operationRef, error) {
	if len(data) == 0 {
		return nil, nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("openapi: load document: %w", err)
	}

	var ops []operationRef
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, method := range methods {
				op := item.GetOperation(method)
				if op == nil {
					continue
				}
				id := op.OperationID
				if id == "" {
					id = strings.ToLower(method) + ":" + path
				}
				ops = append(ops, operationRef{
					Operation: Operation{ID: id, Method: method, Path: path, Summary: op.Summary},
					op:        op,
				})
			}
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return doc, ops, nil
}

// Operations lists the operations declared in the document, ordered by id.
func (s *Seeder) Operations(ctx context.Context, data []byte) ([]Operation, error) {
	_, ops, err := s.load(ctx, data)
	if err != nil {
		return nil, err
	}
	out := make([]Operation, len(ops))
	for i, op := range ops {
		out[i] = op.Operation
	}
	return out, nil
}

// Seed builds a schema from the request body of operationID: one section on
// the default page plus one per page named by property extensions.
// Each scalar property becomes a field whose model key is the property name;
// nested objects and arrays without enumerated items are skipped.
func (s *Seeder) Seed(ctx context.Context, data []byte, operationID string) (schema.Schema, error) {
	doc, ops, err := s.load(ctx, data)
	if err != nil {
		return schema.Schema{}, err
	}
	var target *operationRef
	for i := range ops {
		if ops[i].ID == operationID {
			target = &ops[i]
			break
		}
	}
	if target == nil {
		return schema.Schema{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body := requestSchema(target.op)
	if body == nil || len(body.Properties) == 0 {
		return schema.Schema{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	title := target.Summary
	if title == "" {
		title = humanize(target.ID)
	}
	meta := schema.Meta{Name: title, Version: "1.0.0", Description: target.op.Description}
	if doc.Info != nil && doc.Info.Version != "" {
		meta.Version = doc.Info.Version
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}
	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	// One section per page; the default page comes first, others follow in
	// order of first use.
	baseID := ids.SectionPrefix + slug(target.ID)
	sections := []schema.Field{{
		ID:     baseID,
		Type:   schema.FieldTypeSection,
		Label:  title,
		Page:   schema.DefaultPage,
		Fields: []schema.Field{},
	}}
	byPage := map[string]int{schema.DefaultPage: 0}
	taken := make(map[string]bool, len(names))

	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, page, ok := s.field(name, ref.Value, required[name])
		if !ok {
			continue
		}
		field.ID = uniqueID(field.ID, taken)

		idx, seen := byPage[page]
		if !seen {
			idx = len(sections)
			byPage[page] = idx
			sections = append(sections, schema.Field{
				ID:     baseID + "_" + slug(page),
				Type:   schema.FieldTypeSection,
				Label:  title,
				Page:   page,
				Fields: []schema.Field{},
			})
		}
		sections[idx].Fields = append(sections[idx].Fields, field)
	}
	if len(sections) > 1 && len(sections[0].Fields) == 0 {
		sections = sections[1:]
	}
	resolveReferences(sections)

	return schema.Schema{Meta: meta, Fields: sections}, nil
}

// uniqueID suffixes id until it is not taken and records the result.
func uniqueID(id string, taken map[string]bool) string {
	candidate := id
	for n := 2; taken[candidate]; n++ {
		candidate = id + "_" + strconv.Itoa(n)
	}
	taken[candidate] = true
	return candidate
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range mediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// extension is the x-formbuilder payload a property may carry.
type extension struct {
	Type        schema.FieldType   `json:"type"`
	Label       string             `json:"label"`
	Placeholder string             `json:"placeholder"`
	HelpText    string             `json:"helpText"`
	Page        string             `json:"page"`
	Visibility  *schema.Visibility `json:"visibility"`
	Logic       []schema.LogicRule `json:"logic"`
}

// field maps one property. page is the page named by the property's
// extension, or the default page.
func (s *Seeder) field(name string, prop *openapi3.Schema, required bool) (schema.Field, string, bool) {
	if prop.ReadOnly {
		s.logger.Debug("openapi property skipped", "property", name, "reason", "readOnly")
		return schema.Field{}, "", false
	}
	fieldType, ok := fieldTypeFor(prop)
	if !ok {
		s.logger.Debug("openapi property skipped", "property", name, "reason", "unsupported type")
		return schema.Field{}, "", false
	}

	field := schema.Field{
		ID:         ids.FieldPrefix + slug(name),
		Type:       fieldType,
		Model:      name,
		Label:      prop.Title,
		HelpText:   prop.Description,
		Required:   required,
		Default:    schema.DefaultValue(fieldType),
		Validation: constraints(prop, fieldType, required),
		Logic:      []schema.LogicRule{},
	}
	if field.Label == "" {
		field.Label = humanize(name)
	}
	if prop.Default != nil {
		field.Default = prop.Default
	}
	if example, ok := prop.Example.(string); ok {
		field.Placeholder = example
	}
	if fieldType.HasOptions() {
		field.Options = options(prop)
	}

	page := schema.DefaultPage
	if raw, ok := prop.Extensions[ExtensionKey]; ok {
		var ext extension
		if err := remarshal(raw, &ext); err != nil {
			s.logger.Warn("openapi extension ignored", "property", name, "error", err)
		} else {
			applyExtension(&field, ext)
			if p := strings.TrimSpace(ext.Page); p != "" {
				page = p
			}
		}
	}
	return field, page, true
}

func fieldTypeFor(prop *openapi3.Schema) (schema.FieldType, bool) {
	switch {
	case prop.Type == nil:
		if len(prop.Enum) > 0 {
			return enumType(len(prop.Enum)), true
		}
		return schema.FieldTypeText, true
	case prop.Type.Is(openapi3.TypeString):
		if len(prop.Enum) > 0 {
			return enumType(len(prop.Enum)), true
		}
		switch prop.Format {
		case "email":
			return schema.FieldTypeEmail, true
		case "date", "date-time":
			return schema.FieldTypeDate, true
		case "binary", "byte":
			return schema.FieldTypeFile, true
		case "textarea":
			return schema.FieldTypeTextarea, true
		}
		if prop.MaxLength != nil && *prop.MaxLength > textareaThreshold {
			return schema.FieldTypeTextarea, true
		}
		return schema.FieldTypeText, true
	case prop.Type.Is(openapi3.TypeNumber), prop.Type.Is(openapi3.TypeInteger):
		if len(prop.Enum) > 0 {
			return enumType(len(prop.Enum)), true
		}
		return schema.FieldTypeNumber, true
	case prop.Type.Is(openapi3.TypeBoolean):
		return schema.FieldTypeCheckbox, true
	case prop.Type.Is(openapi3.TypeArray):
		if prop.Items == nil || prop.Items.Value == nil {
			return "", false
		}
		items := prop.Items.Value
		if len(items.Enum) > 0 {
			return schema.FieldTypeMultiselect, true
		}
		if items.Format == "binary" {
			return schema.FieldTypeFile, true
		}
	}
	return "", false
}

func enumType(n int) schema.FieldType {
	if n <= radioLimit {
		return schema.FieldTypeRadio
	}
	return schema.FieldTypeSelect
}

func options(prop *openapi3.Schema) []schema.Option {
	values := prop.Enum
	if len(values) == 0 && prop.Items != nil && prop.Items.Value != nil {
		values = prop.Items.Value.Enum
	}
	out := make([]schema.Option, 0, len(values))
	for _, value := range values {
		out = append(out, schema.Option{Value: value, Label: humanize(fmt.Sprint(value))})
	}
	return out
}

func constraints(prop *openapi3.Schema, fieldType schema.FieldType, required bool) []schema.ValidationRule {
	rules := []schema.ValidationRule{}
	if required {
		rules = append(rules, schema.ValidationRule{Rule: schema.RuleRequired})
	}
	if fieldType == schema.FieldTypeEmail {
		rules = append(rules, schema.ValidationRule{Rule: schema.RuleEmail})
	}
	if prop.MinLength > 0 {
		rules = append(rules, schema.ValidationRule{Rule: schema.RuleMinLength, Value: float64(prop.MinLength)})
	}
	if prop.MaxLength != nil {
		rules = append(rules, schema.ValidationRule{Rule: schema.RuleMaxLength, Value: float64(*prop.MaxLength)})
	}
	if prop.Min != nil {
		rules = append(rules, schema.ValidationRule{Rule: schema.RuleMin, Min: schema.Ptr(*prop.Min)})
	}
	if prop.Max != nil {
		rules = append(rules, schema.ValidationRule{Rule: schema.RuleMax, Max: schema.Ptr(*prop.Max)})
	}
	if prop.Pattern != "" {
		rules = append(rules, schema.ValidationRule{Rule: schema.RulePattern, Pattern: prop.Pattern})
	}
	return rules
}

func applyExtension(field *schema.Field, ext extension) {
	if ext.Type.Known() && ext.Type != schema.FieldTypeSection {
		field.Type = ext.Type
		if ext.Type.HasOptions() && field.Options == nil {
			field.Options = []schema.Option{}
		}
	}
	if ext.Label != "" {
		field.Label = ext.Label
	}
	if ext.Placeholder != "" {
		field.Placeholder = ext.Placeholder
	}
	if ext.HelpText != "" {
		field.HelpText = ext.HelpText
	}
	if ext.Visibility != nil {
		field.Visibility = ext.Visibility
	}
	if len(ext.Logic) > 0 {
		field.Logic = ext.Logic
	}
}

// resolveReferences rewrites rule references written as property names to
// the generated field ids across every seeded section.
func resolveReferences(sections []schema.Field) {
	byModel := make(map[string]string)
	for _, section := range sections {
		for _, field := range section.Fields {
			byModel[field.Model] = field.ID
		}
	}
	resolve := func(ref string) string {
		if id, ok := byModel[ref]; ok {
			return id
		}
		return ref
	}
	for _, section := range sections {
		fields := section.Fields
		for i := range fields {
			if v := fields[i].Visibility; v != nil {
				v.DependsOn = resolve(v.DependsOn)
				v.Field = resolve(v.Field)
			}
			for j := range fields[i].Logic {
				if cond := fields[i].Logic[j].If; cond != nil {
					cond.Field = resolve(cond.Field)
				}
			}
		}
	}
}

func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// humanize turns identifiers such as firstName or first_name into
// "First name".
func humanize(raw string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(raw)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == ':' || r == '/':
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	if len(words) == 0 {
		return raw
	}
	out := strings.Join(words, " ")
	first := []rune(out)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}

func slug(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
