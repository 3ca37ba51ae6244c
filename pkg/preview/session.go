// Package preview fills in a form interactively: it walks pages, sections
// and fields of a builder's schema, honours rule driven visibility and
// enablement, validates every answer and reports the final submission.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/internal/values"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/rules"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Submission is the outcome of a session.
type Submission struct {
	Data   map[string]any      `json:"data"`
	Valid  bool                `json:"valid"`
	Errors map[string][]string `json:"errors"`
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session prompts for the fields of one builder.
type Session struct {
	builder *builder.Builder
	driver  PromptDriver
	logger  *slog.Logger
}

// New creates a session over b. The default driver prompts on the terminal.
func New(b *builder.Builder, opts ...Option) (*Session, error) {
	if b == nil {
		return nil, ErrNoBuilder
	}
	s := &Session{
		builder: b,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run prompts for every visible, enabled field. Root level fields come
// first, then each page in order. Answers go through the builder so rule
// cascades see them before the next prompt.
func (s *Session) Run(ctx context.Context) (Submission, error) {
	if ctx == nil {
		return Submission{}, errors.New("preview: context is required")
	}

	for _, entry := range s.builder.Schema().Fields {
		if entry.IsSection() {
			continue
		}
		if err := s.promptField(ctx, entry); err != nil {
			return Submission{}, err
		}
	}

	pages := s.builder.Pages()
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return Submission{}, err
		}
		s.builder.SetCurrentPage(page)
		if len(pages) > 1 {
			if err := s.driver.Info(ctx, fmt.Sprintf("== %s ==", page)); err != nil {
				return Submission{}, err
			}
		}
		for _, section := range s.builder.SectionsOnPage(page) {
			if s.builder.EvaluateAll().Hidden(section.ID) {
				s.logger.Debug("preview skipped hidden section", "section", section.ID)
				continue
			}
			if section.Label != "" {
				if err := s.driver.Info(ctx, section.Label); err != nil {
					return Submission{}, err
				}
			}
			for _, field := range section.Fields {
				if err := s.promptField(ctx, field); err != nil {
					return Submission{}, err
				}
			}
		}
	}

	data := s.builder.FormData()
	states := s.builder.EvaluateAll()
	result := s.builder.ValidateForm(data, validation.SkipHidden(states), validation.EnforceRequired(states))
	return Submission{Data: data, Valid: result.IsValid, Errors: result.Errors}, nil
}

func (s *Session) promptField(ctx context.Context, field schema.Field) error {
	states := s.builder.EvaluateAll()
	state, ok := states[field.ID]
	if !ok || !state.Visible {
		s.logger.Debug("preview skipped hidden field", "field", field.ID)
		return nil
	}
	label := displayLabel(field)
	if !state.Enabled || field.Disabled {
		return s.driver.Info(ctx, fmt.Sprintf("%s (disabled)", label))
	}

	for {
		value, err := s.ask(ctx, field, state)
		if err != nil {
			var invalid invalidInput
			if errors.As(err, &invalid) {
				if err := s.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", label, invalid.reason)); err != nil {
					return err
				}
				continue
			}
			return err
		}

		errs := s.builder.ValidateField(field.ID, value, validation.EnforceRequired(states))
		s.builder.SetFieldErrors(field.ID, errs)
		if len(errs) > 0 {
			for _, msg := range errs {
				if err := s.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", label, msg)); err != nil {
					return err
				}
			}
			continue
		}
		s.builder.SetFieldValue(field.ID, value)
		return nil
	}
}

// invalidInput marks answers that could not be converted to a value.
type invalidInput struct{ reason string }

func (e invalidInput) Error() string { return e.reason }

func (s *Session) ask(ctx context.Context, field schema.Field, state rules.FieldState) (any, error) {
	label := displayLabel(field)
	help := field.HelpText
	current := state.Value
	if current == nil {
		current = field.Default
	}

	switch field.Type {
	case schema.FieldTypeCheckbox, schema.FieldTypeSwitch:
		return s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: values.Truthy(current), Help: help})

	case schema.FieldTypeTextarea:
		return s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: stringValue(current), Help: help})

	case schema.FieldTypeNumber:
		raw, err := s.driver.Input(ctx, InputConfig{Message: label, Default: stringValue(current), Help: help})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalidInput{reason: "not a number"}
		}
		return n, nil

	case schema.FieldTypeSelect, schema.FieldTypeRadio, schema.FieldTypeMultiselect:
		opts := state.Options
		if opts == nil {
			opts = field.Options
		}
		if len(opts) == 0 {
			break
		}
		labels := optionLabels(opts)
		if field.Type == schema.FieldTypeMultiselect {
			picked, err := s.driver.MultiSelect(ctx, SelectConfig{
				Message:  label,
				Options:  labels,
				Defaults: selectedIndices(opts, current),
				Help:     help,
			})
			if err != nil {
				return nil, err
			}
			out := make([]any, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(opts) {
					out = append(out, opts[idx].Value)
				}
			}
			return out, nil
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: optionIndex(opts, current),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(opts) {
			return nil, invalidInput{reason: "selection out of range"}
		}
		return opts[idx].Value, nil
	}

	return s.driver.Input(ctx, InputConfig{Message: label, Default: stringValue(current), Help: help})
}

func displayLabel(field schema.Field) string {
	label := field.Label
	if label == "" {
		label = field.ID
	}
	return label
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	return values.String(value)
}

func optionLabels(opts []schema.Option) []string {
	out := make([]string, len(opts))
	for i, opt := range opts {
		out[i] = opt.Label
		if out[i] == "" {
			out[i] = values.String(opt.Value)
		}
	}
	return out
}

func optionIndex(opts []schema.Option, value any) int {
	for i, opt := range opts {
		if values.StrictEqual(opt.Value, value) {
			return i
		}
	}
	return -1
}

func selectedIndices(opts []schema.Option, value any) []int {
	items, ok := values.Slice(value)
	if !ok {
		return nil
	}
	var out []int
	for i, opt := range opts {
		if values.Contains(items, opt.Value) {
			out = append(out, i)
		}
	}
	return out
}
