// Package report renders human readable summaries of form schemas.
package report

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbuilder/internal/values"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/state"
)

// Outline renders s with the embedded templates.
func Outline(s schema.Schema) (string, error) {
	engine, err := New()
	if err != nil {
		return "", err
	}
	return engine.Outline(s)
}

// Outline renders s as a page, section and field tree with validation and
// logic summaries.
func (e *Engine) Outline(s schema.Schema) (string, error) {
	return e.Render("outline", pongo2.Context{"outline": newOutlineView(s)})
}

type outlineView struct {
	Name        string
	Version     string
	Description string
	Root        []fieldView
	Pages       []pageView
	FieldCount  int
}

type pageView struct {
	ID       string
	Sections []sectionView
}

type sectionView struct {
	ID         string
	Label      string
	Visibility *conditionView
	Logic      []logicView
	Fields     []fieldView
}

type fieldView struct {
	ID          string
	Type        string
	Model       string
	Label       string
	Required    bool
	Disabled    bool
	Placeholder string
	Options     []string
	Rules       []string
	Visibility  *conditionView
	Logic       []logicView
}

type conditionView struct {
	Field    string
	Operator string
	Value    string
}

type logicView struct {
	When    conditionView
	Actions []string
}

func newOutlineView(s schema.Schema) outlineView {
	view := outlineView{
		Name:        s.Meta.Name,
		Version:     s.Meta.Version,
		Description: s.Meta.Description,
		FieldCount:  len(s.Leaves()),
	}
	for _, entry := range s.Fields {
		if !entry.IsSection() {
			view.Root = append(view.Root, newFieldView(entry))
		}
	}
	for _, page := range state.Pages(s) {
		pv := pageView{ID: page}
		for _, entry := range s.Fields {
			if !entry.IsSection() || entry.PageID() != page {
				continue
			}
			sv := sectionView{
				ID:         entry.ID,
				Label:      entry.Label,
				Visibility: newVisibilityView(entry.Visibility),
				Logic:      newLogicViews(entry.Logic),
			}
			for _, child := range entry.Fields {
				sv.Fields = append(sv.Fields, newFieldView(child))
			}
			pv.Sections = append(pv.Sections, sv)
		}
		view.Pages = append(view.Pages, pv)
	}
	return view
}

func newFieldView(f schema.Field) fieldView {
	fv := fieldView{
		ID:          f.ID,
		Type:        string(f.Type),
		Model:       f.Model,
		Label:       f.Label,
		Required:    f.Required,
		Disabled:    f.Disabled,
		Placeholder: f.Placeholder,
		Visibility:  newVisibilityView(f.Visibility),
		Logic:       newLogicViews(f.Logic),
	}
	for _, opt := range f.Options {
		fv.Options = append(fv.Options, optionText(opt))
	}
	for _, rule := range f.Validation {
		fv.Rules = append(fv.Rules, ruleText(rule))
	}
	return fv
}

func newVisibilityView(v *schema.Visibility) *conditionView {
	if v == nil {
		return nil
	}
	cond := newConditionView(v.Condition())
	return &cond
}

func newConditionView(c schema.Condition) conditionView {
	cv := conditionView{Field: c.Field, Operator: c.Operator}
	if c.Value != nil {
		cv.Value = values.String(c.Value)
	}
	return cv
}

func newLogicViews(rules []schema.LogicRule) []logicView {
	var out []logicView
	for _, rule := range rules {
		lv := logicView{}
		if rule.If != nil {
			lv.When = newConditionView(*rule.If)
		}
		for _, action := range rule.Then {
			lv.Actions = append(lv.Actions, actionText(action))
		}
		out = append(out, lv)
	}
	return out
}

func optionText(opt schema.Option) string {
	value := values.String(opt.Value)
	if opt.Label == "" || opt.Label == value {
		return value
	}
	return fmt.Sprintf("%s (%s)", opt.Label, value)
}

func ruleText(rule schema.ValidationRule) string {
	var arg string
	switch {
	case rule.Value != nil:
		arg = values.String(rule.Value)
	case rule.Min != nil:
		arg = values.String(*rule.Min)
	case rule.Max != nil:
		arg = values.String(*rule.Max)
	case rule.Pattern != "":
		arg = rule.Pattern
	case rule.Validator != "":
		arg = rule.Validator
	}
	text := rule.Rule
	if arg != "" {
		text += "=" + arg
	}
	if rule.Message != "" {
		text += fmt.Sprintf(" %q", rule.Message)
	}
	return text
}

func actionText(action schema.Action) string {
	switch {
	case len(action.Options) > 0:
		labels := make([]string, len(action.Options))
		for i, opt := range action.Options {
			labels[i] = optionText(opt)
		}
		return fmt.Sprintf("%s[%s]", action.Action, strings.Join(labels, ", "))
	case action.Value != nil:
		return fmt.Sprintf("%s=%s", action.Action, values.String(action.Value))
	default:
		return action.Action
	}
}
