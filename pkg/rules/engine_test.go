package rules_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/rules"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func section(id string, children ...schema.Field) schema.Field {
	return schema.Field{ID: id, Type: schema.FieldTypeSection, Fields: children}
}

func when(field, operator string, value any, actions ...schema.Action) schema.LogicRule {
	return schema.LogicRule{
		If:   &schema.Condition{Field: field, Operator: operator, Value: value},
		Then: actions,
	}
}

func TestEvaluateFieldCascadesHide(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Fields: []schema.Field{section("s1",
		schema.Field{ID: "A", Type: schema.FieldTypeText, Model: "a"},
		schema.Field{ID: "B", Type: schema.FieldTypeText, Model: "b",
			Logic: []schema.LogicRule{when("A", schema.OperatorEquals, "x", schema.Action{Action: schema.ActionHide})}},
	)}}
	engine := rules.New(s)

	states := engine.EvaluateField("A", map[string]any{"a": "x"})
	if states["B"].Visible {
		t.Fatalf("expected B hidden when A equals x, got %+v", states["B"])
	}
	if got := states["B"].Actions; len(got) != 1 || got[0].Action != schema.ActionHide {
		t.Fatalf("expected recorded hide action, got %+v", got)
	}

	states = engine.EvaluateField("A", map[string]any{"a": "y"})
	if !states["B"].Visible {
		t.Fatalf("expected B visible when A differs, got %+v", states["B"])
	}
}

func TestSetValuePropagatesDownstreamWithoutLeaking(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Fields: []schema.Field{section("s1",
		schema.Field{ID: "country", Type: schema.FieldTypeSelect, Model: "country"},
		schema.Field{ID: "currency", Type: schema.FieldTypeText, Model: "currency",
			Logic: []schema.LogicRule{when("country", schema.OperatorEquals, "de",
				schema.Action{Action: schema.ActionSetValue, Value: "EUR"},
				schema.Action{Action: schema.ActionDisable})}},
		schema.Field{ID: "note", Type: schema.FieldTypeText, Model: "note",
			Visibility: &schema.Visibility{DependsOn: "currency", Operator: schema.OperatorEquals, Value: "EUR"}},
	)}}
	engine := rules.New(s)

	data := map[string]any{"country": "de"}
	states := engine.EvaluateField("country", data)

	if got := states["currency"]; got.Value != "EUR" || got.Enabled {
		t.Fatalf("unexpected currency state %+v", got)
	}
	if !states["note"].Visible {
		t.Fatalf("expected note to see the value written by setValue")
	}
	if _, ok := data["currency"]; ok {
		t.Fatalf("caller data must not be modified, got %v", data)
	}
}

func TestCyclicRulesTerminate(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Fields: []schema.Field{section("s1",
		schema.Field{ID: "a", Type: schema.FieldTypeText, Model: "a",
			Logic: []schema.LogicRule{when("b", schema.OperatorExists, nil, schema.Action{Action: schema.ActionSetValue, Value: "from-b"})}},
		schema.Field{ID: "b", Type: schema.FieldTypeText, Model: "b",
			Logic: []schema.LogicRule{when("a", schema.OperatorExists, nil, schema.Action{Action: schema.ActionSetValue, Value: "from-a"})}},
	)}}
	engine := rules.New(s)

	states := engine.EvaluateField("a", map[string]any{"b": "seed"})
	if len(states) != 2 {
		t.Fatalf("expected both fields evaluated once, got %v", states)
	}
	if states["b"].Value != "from-a" {
		t.Fatalf("expected b updated from a, got %v", states["b"].Value)
	}
}

func TestEvaluateAllWalksSectionsAndRoot(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Fields: []schema.Field{
		section("s1",
			schema.Field{ID: "age", Type: schema.FieldTypeNumber, Model: "age"},
			schema.Field{ID: "guardian", Type: schema.FieldTypeText, Model: "guardian", Required: false,
				Logic: []schema.LogicRule{when("age", schema.OperatorLessThan, 18,
					schema.Action{Action: schema.ActionSetRequired, Value: true})}},
		),
		{ID: "loose", Type: schema.FieldTypeCheckbox, Model: "loose", Required: true},
	}}

	var observed []rules.States
	engine := rules.New(s, rules.WithEvaluationHook(func(states rules.States) {
		observed = append(observed, states)
	}))

	states := engine.EvaluateAll(map[string]any{"age": "16", "loose": true})
	want := []string{"age", "guardian", "loose", "s1"}
	var got []string
	for id := range states {
		got = append(got, id)
	}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("evaluated ids mismatch (-want +got):\n%s", diff)
	}
	if !states["guardian"].Required {
		t.Fatalf("expected guardian required for a minor")
	}
	if !states["loose"].Required || states["loose"].Value != true {
		t.Fatalf("unexpected root field state %+v", states["loose"])
	}
	if len(observed) != 1 {
		t.Fatalf("expected hook to observe one evaluation, got %d", len(observed))
	}

	state, ok := engine.FieldState("guardian", map[string]any{"age": 30})
	if !ok || state.Required {
		t.Fatalf("expected guardian optional for adults, got %+v", state)
	}
	if _, ok := engine.FieldState("missing", nil); ok {
		t.Fatalf("expected unknown field to be absent")
	}
}

func TestSetRequiredAndSetOptions(t *testing.T) {
	t.Parallel()

	options := []schema.Option{{Value: "basic", Label: "Basic"}}
	s := schema.Schema{Fields: []schema.Field{section("s1",
		schema.Field{ID: "plan", Type: schema.FieldTypeSelect, Model: "plan", Required: true,
			Logic: []schema.LogicRule{
				when("", "always", nil, schema.Action{Action: schema.ActionSetRequired, Value: false}),
				when("", "always", nil, schema.Action{Action: schema.ActionSetOptions, Options: options}),
			}},
	)}}

	state, _ := rules.New(s).FieldState("plan", nil)
	if state.Required {
		t.Fatalf("setRequired false must clear required")
	}
	if diff := cmp.Diff(options, state.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestDependentsFollowDeclarationOrder(t *testing.T) {
	t.Parallel()

	s := schema.Schema{Fields: []schema.Field{section("s1",
		schema.Field{ID: "src", Type: schema.FieldTypeText, Model: "src"},
		schema.Field{ID: "x", Type: schema.FieldTypeText, Model: "x",
			Visibility: &schema.Visibility{DependsOn: "src", Operator: schema.OperatorExists},
			Logic:      []schema.LogicRule{when("src", schema.OperatorEmpty, nil, schema.Action{Action: schema.ActionHide})}},
		schema.Field{ID: "y", Type: schema.FieldTypeText, Model: "y",
			Logic: []schema.LogicRule{when("src", schema.OperatorEmpty, nil, schema.Action{Action: schema.ActionHide})}},
	)}}
	engine := rules.New(s)

	if diff := cmp.Diff([]string{"x", "y"}, engine.Dependents("src")); diff != "" {
		t.Fatalf("dependents mismatch (-want +got):\n%s", diff)
	}
	if got := engine.Dependents("y"); got != nil {
		t.Fatalf("expected no dependents, got %v", got)
	}

	engine.UpdateSchema(schema.Schema{})
	if got := engine.Dependents("src"); got != nil {
		t.Fatalf("expected index rebuilt, got %v", got)
	}
}
