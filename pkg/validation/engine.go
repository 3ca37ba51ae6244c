// Package validation checks field values against the validation rules a
// schema declares and produces human readable error messages.
package validation

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-formbuilder/internal/values"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CustomFunc is a named predicate referenced by custom rules. Returning an
// error fails the rule; its text is the message unless the rule sets one.
type CustomFunc func(value any) error

// Result aggregates form level validation. Errors is keyed by field id and
// only holds fields that failed.
type Result struct {
	IsValid bool                `json:"isValid"`
	Errors  map[string][]string `json:"errors"`
}

// Hider reports fields the caller wants skipped. rules.States satisfies it.
type Hider interface {
	Hidden(id string) bool
}

// Requirer reports fields whose runtime state marks them required.
// rules.States satisfies it.
type Requirer interface {
	Required(id string) bool
}

type checkConfig struct {
	hidden   Hider
	required Requirer
}

// CheckOption tunes a single ValidateField or ValidateForm call.
type CheckOption func(*checkConfig)

// SkipHidden leaves out fields (and the children of sections) that h reports
// as hidden.
func SkipHidden(h Hider) CheckOption {
	return func(c *checkConfig) { c.hidden = h }
}

// EnforceRequired adds the required check to fields r marks as required
// when their rule list carries no required rule of its own.
func EnforceRequired(r Requirer) CheckOption {
	return func(c *checkConfig) { c.required = r }
}

// Option customises an Engine.
type Option func(*Engine)

// WithLanguage selects the language of default messages.
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) {
		e.printer = newPrinter(tag)
	}
}

// WithValidator registers a custom predicate under name.
func WithValidator(name string, fn CustomFunc) Option {
	return func(e *Engine) {
		e.RegisterValidator(name, fn)
	}
}

// WithLogger sets the logger used to report faulty custom predicates.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine validates values against the rules of one schema at a time. It is
// not safe for concurrent use.
type Engine struct {
	schema     schema.Schema
	validators map[string]CustomFunc
	patterns   map[string]*regexp.Regexp
	printer    *message.Printer
	logger     *slog.Logger
}

// New creates an engine for s.
func New(s schema.Schema, opts ...Option) *Engine {
	e := &Engine{
		validators: make(map[string]CustomFunc),
		patterns:   make(map[string]*regexp.Regexp),
		printer:    newPrinter(language.English),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.UpdateSchema(s)
	return e
}

// UpdateSchema replaces the schema rules are read from.
func (e *Engine) UpdateSchema(s schema.Schema) {
	e.schema = s.Clone()
}

// RegisterValidator makes fn available to custom rules naming it. A nil fn
// removes the registration.
func (e *Engine) RegisterValidator(name string, fn CustomFunc) {
	if fn == nil {
		delete(e.validators, name)
		return
	}
	e.validators[name] = fn
}

// Validator returns the predicate registered under name.
func (e *Engine) Validator(name string) (CustomFunc, bool) {
	fn, ok := e.validators[name]
	return fn, ok
}

// ValidateField returns one message per failing rule of the field with the
// given id, in rule order. Unknown fields and unknown rule kinds produce no
// messages.
func (e *Engine) ValidateField(id string, value any, opts ...CheckOption) []string {
	field, ok := e.schema.Find(id)
	if !ok {
		return nil
	}
	return e.validate(field, value, newCheckConfig(opts))
}

// ValidateForm validates every root entry and every section child against
// the value stored under its model key.
func (e *Engine) ValidateForm(data map[string]any, opts ...CheckOption) Result {
	cfg := newCheckConfig(opts)
	result := Result{IsValid: true, Errors: make(map[string][]string)}

	schema.Walk(e.schema.Fields, func(field schema.Field, parent *schema.Field) bool {
		if cfg.hidden != nil {
			if cfg.hidden.Hidden(field.ID) {
				return true
			}
			if parent != nil && cfg.hidden.Hidden(parent.ID) {
				return true
			}
		}
		var value any
		if field.Model != "" {
			value = data[field.Model]
		}
		if errs := e.validate(field, value, cfg); len(errs) > 0 {
			result.Errors[field.ID] = errs
			result.IsValid = false
		}
		return true
	})
	return result
}

func newCheckConfig(opts []CheckOption) checkConfig {
	var cfg checkConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (e *Engine) validate(field schema.Field, value any, cfg checkConfig) []string {
	var errs []string
	hasRequired := false
	for _, rule := range field.Validation {
		if rule.Rule == schema.RuleRequired {
			hasRequired = true
		}
		if msg, failed := e.check(field, rule, value); failed {
			errs = append(errs, msg)
		}
	}
	if !hasRequired && cfg.required != nil && cfg.required.Required(field.ID) {
		if msg, failed := e.check(field, schema.ValidationRule{Rule: schema.RuleRequired}, value); failed {
			errs = append([]string{msg}, errs...)
		}
	}
	return errs
}

func (e *Engine) check(field schema.Field, rule schema.ValidationRule, value any) (string, bool) {
	switch rule.Rule {
	case schema.RuleRequired:
		if !values.Present(value) {
			return e.message(rule, msgRequired), true
		}
		if items, ok := values.Slice(value); ok && len(items) == 0 {
			return e.message(rule, msgRequired), true
		}
	case schema.RuleEmail:
		if values.Truthy(value) && !emailPattern.MatchString(values.String(value)) {
			return e.message(rule, msgEmail), true
		}
	case schema.RuleMinLength:
		limit := threshold(rule, rule.Min)
		if values.Truthy(value) && float64(length(value)) < values.Number(limit) {
			return e.message(rule, msgMinLength, values.String(limit)), true
		}
	case schema.RuleMaxLength:
		limit := threshold(rule, rule.Max)
		if values.Truthy(value) && float64(length(value)) > values.Number(limit) {
			return e.message(rule, msgMaxLength, values.String(limit)), true
		}
	case schema.RuleMin:
		limit := threshold(rule, rule.Min)
		if values.Present(value) && values.Number(value) < values.Number(limit) {
			return e.message(rule, msgMin, values.String(limit)), true
		}
	case schema.RuleMax:
		limit := threshold(rule, rule.Max)
		if values.Present(value) && values.Number(value) > values.Number(limit) {
			return e.message(rule, msgMax, values.String(limit)), true
		}
	case schema.RulePattern:
		if !values.Truthy(value) {
			return "", false
		}
		re, err := e.compile(rule)
		if err != nil {
			if rule.Message != "" {
				return rule.Message, true
			}
			return err.Error(), true
		}
		if !re.MatchString(values.String(value)) {
			return e.message(rule, msgPattern), true
		}
	case schema.RuleCustom:
		return e.custom(field, rule, value)
	}
	return "", false
}

func (e *Engine) custom(field schema.Field, rule schema.ValidationRule, value any) (msg string, failed bool) {
	fn, ok := e.validators[rule.Validator]
	if !ok {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("custom validator panicked", "validator", rule.Validator, "field", field.ID, "panic", r)
			msg, failed = rule.Message, true
			if msg == "" {
				msg = fmt.Sprint(r)
			}
		}
	}()
	err := fn(schema.CloneValue(value))
	if err == nil {
		return "", false
	}
	if rule.Message != "" {
		return rule.Message, true
	}
	if text := err.Error(); text != "" {
		return text, true
	}
	return e.printer.Sprintf(msgCustom), true
}

func (e *Engine) compile(rule schema.ValidationRule) (*regexp.Regexp, error) {
	source := rule.Pattern
	if values.Truthy(rule.Value) {
		source = values.String(rule.Value)
	}
	if re, ok := e.patterns[source]; ok {
		return re, nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	e.patterns[source] = re
	return re, nil
}

func (e *Engine) message(rule schema.ValidationRule, key message.Reference, args ...any) string {
	if rule.Message != "" {
		return rule.Message
	}
	return e.printer.Sprintf(key, args...)
}

// threshold prefers a truthy Value over the dedicated bound.
func threshold(rule schema.ValidationRule, bound *float64) any {
	if values.Truthy(rule.Value) {
		return rule.Value
	}
	if bound != nil {
		return *bound
	}
	return nil
}

func length(value any) int {
	return utf8.RuneCountInString(values.String(value))
}
