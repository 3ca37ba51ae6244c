package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitize returns a copy of s with markup stripped from every human
// readable string: labels, placeholders, help text, option labels and meta.
// Strings without markup are left untouched.
func Sanitize(s Schema) Schema {
	out := s.Clone()
	out.Meta.Name = SanitizeText(out.Meta.Name)
	out.Meta.Description = SanitizeText(out.Meta.Description)
	sanitizeFields(out.Fields)
	return out
}

// SanitizeText strips HTML tags from a plain text value. The policy output
// is unescaped again so characters such as &, < and > survive as written;
// text without tags is returned unchanged.
func SanitizeText(raw string) string {
	if !strings.ContainsAny(raw, "<>") {
		return raw
	}
	clean := html.UnescapeString(textSanitizer().Sanitize(raw))
	if clean == html.UnescapeString(raw) {
		return raw
	}
	return strings.TrimSpace(clean)
}

func sanitizeFields(fields []Field) {
	for i := range fields {
		fields[i].Label = SanitizeText(fields[i].Label)
		fields[i].Placeholder = SanitizeText(fields[i].Placeholder)
		fields[i].HelpText = SanitizeText(fields[i].HelpText)
		for j := range fields[i].Options {
			fields[i].Options[j].Label = SanitizeText(fields[i].Options[j].Label)
		}
		for j := range fields[i].Validation {
			fields[i].Validation[j].Message = SanitizeText(fields[i].Validation[j].Message)
		}
		sanitizeFields(fields[i].Fields)
	}
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
