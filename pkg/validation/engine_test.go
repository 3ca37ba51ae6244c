package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/goliatone/go-formbuilder/pkg/rules"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func singleField(field schema.Field) schema.Schema {
	return schema.Schema{Fields: []schema.Field{{
		ID:     "section",
		Type:   schema.FieldTypeSection,
		Fields: []schema.Field{field},
	}}}
}

func TestRequiredAndMinLength(t *testing.T) {
	t.Parallel()

	engine := validation.New(singleField(schema.Field{
		ID: "name", Type: schema.FieldTypeText, Model: "name",
		Validation: []schema.ValidationRule{
			{Rule: schema.RuleRequired},
			{Rule: schema.RuleMinLength, Value: float64(3)},
		},
	}))

	if diff := cmp.Diff([]string{"This field is required"}, engine.ValidateField("name", "")); diff != "" {
		t.Fatalf("empty value mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Minimum length is 3"}, engine.ValidateField("name", "ab")); diff != "" {
		t.Fatalf("short value mismatch (-want +got):\n%s", diff)
	}
	if got := engine.ValidateField("name", "abc"); len(got) != 0 {
		t.Fatalf("expected no errors, got %v", got)
	}
	if got := engine.ValidateField("missing", ""); got != nil {
		t.Fatalf("expected unknown field to validate clean, got %v", got)
	}
}

func TestRuleKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		rule  schema.ValidationRule
		value any
		want  []string
	}{
		{"required nil", schema.ValidationRule{Rule: schema.RuleRequired}, nil, []string{"This field is required"}},
		{"required empty list", schema.ValidationRule{Rule: schema.RuleRequired, Message: "Pick one"}, []any{}, []string{"Pick one"}},
		{"required false passes", schema.ValidationRule{Rule: schema.RuleRequired}, false, nil},
		{"email invalid", schema.ValidationRule{Rule: schema.RuleEmail}, "ada@", []string{"Invalid email address"}},
		{"email absent", schema.ValidationRule{Rule: schema.RuleEmail}, "", nil},
		{"email valid", schema.ValidationRule{Rule: schema.RuleEmail}, "ada@example.com", nil},
		{"max length runes", schema.ValidationRule{Rule: schema.RuleMaxLength, Value: 3}, "äöü", nil},
		{"max length exceeded", schema.ValidationRule{Rule: schema.RuleMaxLength, Max: schema.Ptr(2.0)}, "abc", []string{"Maximum length is 2"}},
		{"min numeric string", schema.ValidationRule{Rule: schema.RuleMin, Value: 18}, "17", []string{"Minimum value is 18"}},
		{"min zero value present", schema.ValidationRule{Rule: schema.RuleMin, Min: schema.Ptr(1.0)}, 0, []string{"Minimum value is 1"}},
		{"min absent", schema.ValidationRule{Rule: schema.RuleMin, Value: 18}, "", nil},
		{"max", schema.ValidationRule{Rule: schema.RuleMax, Value: 10}, 11.5, []string{"Maximum value is 10"}},
		{"max nan passes", schema.ValidationRule{Rule: schema.RuleMax, Value: 10}, "abc", nil},
		{"pattern mismatch", schema.ValidationRule{Rule: schema.RulePattern, Pattern: `^\d+$`}, "12a", []string{"Invalid format"}},
		{"pattern value wins", schema.ValidationRule{Rule: schema.RulePattern, Value: `^[a-z]+$`, Pattern: `^\d+$`}, "abc", nil},
		{"pattern invalid", schema.ValidationRule{Rule: schema.RulePattern, Pattern: `(`, Message: "Bad pattern"}, "x", []string{"Bad pattern"}},
		{"unknown kind", schema.ValidationRule{Rule: "uppercase"}, "abc", nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			engine := validation.New(singleField(schema.Field{
				ID: "f", Type: schema.FieldTypeText, Model: "f",
				Validation: []schema.ValidationRule{tc.rule},
			}))
			if diff := cmp.Diff(tc.want, engine.ValidateField("f", tc.value)); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCustomValidators(t *testing.T) {
	t.Parallel()

	engine := validation.New(singleField(schema.Field{
		ID: "code", Type: schema.FieldTypeText, Model: "code",
		Validation: []schema.ValidationRule{
			{Rule: schema.RuleCustom, Validator: "even"},
			{Rule: schema.RuleCustom, Validator: "explode", Message: "Broken check"},
			{Rule: schema.RuleCustom, Validator: "unregistered"},
		},
	}), validation.WithValidator("even", func(value any) error {
		if s, _ := value.(string); len(s)%2 != 0 {
			return errors.New("Length must be even")
		}
		return nil
	}))
	engine.RegisterValidator("explode", func(any) error { panic("boom") })

	want := []string{"Length must be even", "Broken check"}
	if diff := cmp.Diff(want, engine.ValidateField("code", "abc")); diff != "" {
		t.Fatalf("custom messages mismatch (-want +got):\n%s", diff)
	}

	if _, ok := engine.Validator("even"); !ok {
		t.Fatalf("expected even validator registered")
	}
	engine.RegisterValidator("even", nil)
	if _, ok := engine.Validator("even"); ok {
		t.Fatalf("expected nil registration to remove validator")
	}
}

func TestValidateFormAggregatesAndSkipsHidden(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Fields: []schema.Field{
		{ID: "main", Type: schema.FieldTypeSection, Fields: []schema.Field{
			{ID: "email", Type: schema.FieldTypeEmail, Model: "email",
				Validation: []schema.ValidationRule{{Rule: schema.RuleRequired}, {Rule: schema.RuleEmail}}},
			{ID: "company", Type: schema.FieldTypeText, Model: "company",
				Visibility: &schema.Visibility{DependsOn: "email", Operator: schema.OperatorIncludes, Value: "@corp"},
				Validation: []schema.ValidationRule{{Rule: schema.RuleRequired}}},
		}},
		{ID: "extra", Type: schema.FieldTypeSection,
			Visibility: &schema.Visibility{DependsOn: "email", Operator: schema.OperatorExists},
			Fields: []schema.Field{
				{ID: "nickname", Type: schema.FieldTypeText, Model: "nickname", Required: true},
			}},
	}}
	engine := validation.New(s)
	data := map[string]any{"email": "not-an-email"}

	got := engine.ValidateForm(data)
	want := validation.Result{IsValid: false, Errors: map[string][]string{
		"email":   {"Invalid email address"},
		"company": {"This field is required"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form result mismatch (-want +got):\n%s", diff)
	}

	states := rules.New(s).EvaluateAll(data)
	got = engine.ValidateForm(data, validation.SkipHidden(states), validation.EnforceRequired(states))
	want = validation.Result{IsValid: false, Errors: map[string][]string{
		"email":    {"Invalid email address"},
		"nickname": {"This field is required"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("filtered result mismatch (-want +got):\n%s", diff)
	}

	states = rules.New(s).EvaluateAll(map[string]any{})
	got = engine.ValidateForm(map[string]any{"email": "ada@example.com"}, validation.SkipHidden(states))
	if !got.IsValid || len(got.Errors) != 0 {
		t.Fatalf("expected hidden section children skipped, got %+v", got)
	}
}

func TestLocalizedDefaults(t *testing.T) {
	t.Parallel()

	s := singleField(schema.Field{
		ID: "name", Type: schema.FieldTypeText, Model: "name",
		Validation: []schema.ValidationRule{{Rule: schema.RuleRequired}, {Rule: schema.RuleMinLength, Value: 5}},
	})

	cases := map[language.Tag][]string{
		language.German:             {"Die Mindestlänge beträgt 5"},
		language.MustParse("es-MX"): {"La longitud mínima es 5"},
		language.French:             {"La longueur minimale est de 5"},
		language.MustParse("ja"):    {"Minimum length is 5"},
	}
	for tag, want := range cases {
		engine := validation.New(s, validation.WithLanguage(tag))
		if diff := cmp.Diff(want, engine.ValidateField("name", "abc")); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tag, diff)
		}
	}

	engine := validation.New(s, validation.WithLanguage(language.German))
	if diff := cmp.Diff([]string{"Dieses Feld ist erforderlich"}, engine.ValidateField("name", nil)); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}
