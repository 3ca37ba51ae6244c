package builder

import (
	"io"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/goliatone/go-formbuilder/pkg/history"
	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type options struct {
	logger          *slog.Logger
	historyCapacity int
	language        language.Tag
	ids             ids.Generator
	validators      map[string]validation.CustomFunc
	sanitize        bool
}

func defaultOptions() options {
	return options{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		historyCapacity: history.DefaultCapacity,
		language:        language.English,
		ids:             ids.NewUUID(),
		validators:      make(map[string]validation.CustomFunc),
		sanitize:        true,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithLogger routes builder, store and engine diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHistoryCapacity bounds the number of undo snapshots kept.
func WithHistoryCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.historyCapacity = capacity
		}
	}
}

// WithLanguage selects the language of default validation messages.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.language = tag
	}
}

// WithIDGenerator replaces the identifier generator used for new fields,
// sections and model keys.
func WithIDGenerator(gen ids.Generator) Option {
	return func(o *options) {
		if gen != nil {
			o.ids = gen
		}
	}
}

// WithValidator registers a named predicate for custom validation rules.
func WithValidator(name string, fn validation.CustomFunc) Option {
	return func(o *options) {
		if name != "" && fn != nil {
			o.validators[name] = fn
		}
	}
}

// WithSanitizeImports toggles markup stripping on imported schemas.
func WithSanitizeImports(enabled bool) Option {
	return func(o *options) {
		o.sanitize = enabled
	}
}
