package state_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/state"
)

func newStore(t *testing.T) (*state.Store, *schema.Factory) {
	t.Helper()
	gen := &ids.Sequence{}
	return state.New(state.WithIDGenerator(gen)), schema.NewFactory(gen)
}

func TestAddFieldSynthesizesDefaultSection(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	field := factory.NewField(schema.FieldTypeText)

	parent := store.AddField(field, "")
	if parent == "" {
		t.Fatalf("expected synthesized parent section")
	}

	got, ok := store.Field(field.ID)
	if !ok || got.ID != field.ID {
		t.Fatalf("expected field to be retrievable, got %+v (ok=%v)", got, ok)
	}
	sch := store.Schema()
	if len(sch.Fields) != 1 || !sch.Fields[0].IsSection() {
		t.Fatalf("expected one default section, got %+v", sch.Fields)
	}
	if sch.Fields[0].Page != schema.DefaultPage {
		t.Fatalf("default section should carry current page, got %q", sch.Fields[0].Page)
	}
	if id, ok := store.ParentSectionID(field.ID); !ok || id != parent {
		t.Fatalf("parent lookup mismatch: %q (ok=%v)", id, ok)
	}
}

func TestAddFieldTargetsNamedOrLastSection(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	first := factory.NewSection()
	second := factory.NewSection()
	store.AddField(first, "")
	store.AddField(second, "")

	a := factory.NewField(schema.FieldTypeText)
	b := factory.NewField(schema.FieldTypeText)
	c := factory.NewField(schema.FieldTypeText)
	store.AddField(a, first.ID)
	store.AddField(b, "")
	store.AddField(c, "unknown-section")

	if id, _ := store.ParentSectionID(a.ID); id != first.ID {
		t.Fatalf("expected explicit parent %q, got %q", first.ID, id)
	}
	for _, f := range []schema.Field{b, c} {
		if id, _ := store.ParentSectionID(f.ID); id != second.ID {
			t.Fatalf("expected last section %q, got %q", second.ID, id)
		}
	}
}

func TestRemoveFieldAndMissingIDs(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	field := factory.NewField(schema.FieldTypeText)
	store.AddField(field, "")

	notified := 0
	store.Subscribe(state.TopicSchema, func(any) error { notified++; return nil })

	if store.RemoveField("nope") {
		t.Fatalf("removing an unknown id must be a no-op")
	}
	if notified != 0 {
		t.Fatalf("no-op removal must not notify")
	}
	if !store.RemoveField(field.ID) {
		t.Fatalf("expected removal")
	}
	if _, ok := store.Field(field.ID); ok {
		t.Fatalf("removed field still present")
	}
	if notified != 1 {
		t.Fatalf("expected one notification, got %d", notified)
	}
}

func TestUpdateFieldShallowMerge(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	field := factory.NewField(schema.FieldTypeText,
		schema.WithLabel("Name"),
		schema.WithValidation(schema.ValidationRule{Rule: schema.RuleEmail}),
	)
	store.AddField(field, "")

	if !store.UpdateField(field.ID, schema.FieldPatch{Required: schema.Ptr(true)}) {
		t.Fatalf("expected update")
	}
	got, _ := store.Field(field.ID)
	if !got.Required {
		t.Fatalf("expected required=true")
	}
	if got.Label != "Name" || len(got.Validation) != 1 {
		t.Fatalf("unspecified members changed: %+v", got)
	}

	rules := []schema.ValidationRule{{Rule: schema.RuleRequired}, {Rule: schema.RuleMinLength, Value: float64(2)}}
	store.UpdateField(field.ID, schema.FieldPatch{Validation: &rules})
	got, _ = store.Field(field.ID)
	if diff := cmp.Diff(rules, got.Validation); diff != "" {
		t.Fatalf("validation must be replaced wholesale (-want +got):\n%s", diff)
	}

	if store.UpdateField("missing", schema.FieldPatch{Required: schema.Ptr(false)}) {
		t.Fatalf("update of unknown id must report false")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	field := factory.NewField(schema.FieldTypeMultiselect)
	store.AddField(field, "")
	store.SetFieldValue(field.ID, []any{"a"})

	sch := store.Schema()
	sch.Fields[0].Fields[0].Label = "mutated"
	if got, _ := store.Field(field.ID); got.Label == "mutated" {
		t.Fatalf("schema accessor leaked internal state")
	}

	data := store.FormData()
	data[field.Model].([]any)[0] = "b"
	if v, _ := store.FieldValue(field.ID); v.([]any)[0] != "a" {
		t.Fatalf("form data accessor leaked internal state")
	}
}

func TestReorderFieldsRootOnly(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	var order []string
	for i := 0; i < 3; i++ {
		s := factory.NewSection()
		order = append(order, s.ID)
		store.AddField(s, "")
	}

	if !store.ReorderFields(0, 2) {
		t.Fatalf("expected reorder")
	}
	var got []string
	for _, f := range store.Schema().Fields {
		got = append(got, f.ID)
	}
	want := []string{order[1], order[2], order[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if store.ReorderFields(5, 0) {
		t.Fatalf("out of range reorder must be rejected")
	}
}

func TestPagesOrderingAndDefaults(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	if diff := cmp.Diff([]string{"page-1"}, store.Pages()); diff != "" {
		t.Fatalf("empty schema pages (-want +got):\n%s", diff)
	}

	store.AddField(factory.NewSection(schema.WithPage("page-2")), "")
	store.AddField(factory.NewSection(schema.WithPage("page-10")), "")
	store.AddField(factory.NewSection(), "")
	if diff := cmp.Diff([]string{"page-1", "page-2", "page-10"}, store.Pages()); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}

	page := store.AddPage()
	if page != "page-11" {
		t.Fatalf("expected next page after highest tag, got %q", page)
	}
	if store.UIState().CurrentPage != page {
		t.Fatalf("new page should become current")
	}
	store.SetCurrentPage("page-2")
	if store.UIState().CurrentPage != "page-2" {
		t.Fatalf("current page not updated")
	}
}

func TestSubscribersIsolatedAndOrdered(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	var calls []string
	store.Subscribe(state.TopicFormData, func(any) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	store.Subscribe(state.TopicFormData, func(any) error {
		calls = append(calls, "second")
		panic("listener panic")
	})
	unsubscribe := store.Subscribe(state.TopicFormData, state.OnFormData(func(data map[string]any) error {
		calls = append(calls, "third")
		return nil
	}))

	field := factory.NewField(schema.FieldTypeText)
	store.AddField(field, "")
	store.SetFieldValue(field.ID, "x")

	if diff := cmp.Diff([]string{"first", "second", "third"}, calls); diff != "" {
		t.Fatalf("delivery mismatch (-want +got):\n%s", diff)
	}

	unsubscribe()
	calls = nil
	store.SetFieldValue(field.ID, "y")
	if diff := cmp.Diff([]string{"first", "second"}, calls); diff != "" {
		t.Fatalf("unsubscribe mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaListenerReceivesCurrentSnapshot(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	var seen schema.Schema
	store.Subscribe(state.TopicSchema, state.OnSchema(func(s schema.Schema) error {
		seen = s
		return nil
	}))

	section := factory.NewSection()
	store.AddField(section, "")
	if len(seen.Fields) != 1 || seen.Fields[0].ID != section.ID {
		t.Fatalf("listener did not receive current schema: %+v", seen)
	}
}

func TestFieldValueKeyedByModel(t *testing.T) {
	t.Parallel()

	store, factory := newStore(t)
	field := factory.NewField(schema.FieldTypeText, schema.WithModel("email"))
	store.AddField(field, "")
	store.SetFieldValue(field.ID, "a@b.c")

	if got := store.FormData()["email"]; got != "a@b.c" {
		t.Fatalf("expected value under model key, got %v", got)
	}

	store.UpdateField(field.ID, schema.FieldPatch{Model: schema.Ptr("contact")})
	if v, ok := store.FieldValue(field.ID); ok || v != nil {
		t.Fatalf("renamed model should orphan the old value, got %v", v)
	}
	if store.SetFieldValue("missing", 1) {
		t.Fatalf("unknown field must not accept values")
	}
}
