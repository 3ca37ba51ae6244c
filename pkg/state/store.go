package state

import (
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/ids"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const (
	defaultSchemaName    = "New Form"
	defaultSchemaVersion = "1.0.0"
	defaultSectionLabel  = "Section 1"
	pagePrefix           = "page-"
)

// Option customises a Store.
type Option func(*Store)

// WithLogger routes subscriber failures to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.subs.logger = logger
		}
	}
}

// WithIDGenerator sets the generator used for synthesized sections and for
// fields added without an identifier.
func WithIDGenerator(gen ids.Generator) Option {
	return func(s *Store) {
		if gen != nil {
			s.ids = gen
		}
	}
}

// WithSchemaMeta overrides the metadata of the initial empty schema.
func WithSchemaMeta(meta schema.Meta) Option {
	return func(s *Store) {
		s.schema.Meta = meta
	}
}

// Store is the sole owner of the schema tree, form data and UI state.
// It is not safe for concurrent use.
type Store struct {
	schema      schema.Schema
	formData    map[string]any
	ui          UIState
	pageCounter int
	ids         ids.Generator
	subs        subscribers
}

// New creates a store holding an empty schema.
func New(options ...Option) *Store {
	s := &Store{
		schema: schema.Schema{
			Meta:   schema.Meta{Name: defaultSchemaName, Version: defaultSchemaVersion},
			Fields: []schema.Field{},
		},
		formData:    make(map[string]any),
		ui:          newUIState(),
		pageCounter: 1,
		ids:         ids.NewUUID(),
		subs:        subscribers{logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers fn for topic and returns a function that removes it.
func (s *Store) Subscribe(topic Topic, fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	return s.subs.add(topic, fn)
}

// Schema returns a deep copy of the current schema.
func (s *Store) Schema() schema.Schema {
	return s.schema.Clone()
}

// SetSchema replaces the whole schema.
func (s *Store) SetSchema(next schema.Schema) {
	s.schema = next.Clone()
	if s.schema.Fields == nil {
		s.schema.Fields = []schema.Field{}
	}
	s.schemaChanged()
}

// UpdateMeta shallow merges non empty members of meta into the schema meta.
func (s *Store) UpdateMeta(meta schema.Meta) {
	if meta.Name != "" {
		s.schema.Meta.Name = meta.Name
	}
	if meta.Version != "" {
		s.schema.Meta.Version = meta.Version
	}
	if meta.Description != "" {
		s.schema.Meta.Description = meta.Description
	}
	s.schemaChanged()
}

// AddField inserts field and returns the id of the section that received it
// (empty for root level sections). Sections are appended to the root. Other
// fields go to parentSectionID when it names a root section, otherwise to the
// last section in document order; a default section tagged with the current
// page is created when none exists.
func (s *Store) AddField(field schema.Field, parentSectionID string) string {
	field = field.Clone()

	if field.IsSection() {
		if field.ID == "" {
			field.ID = s.ids.SectionID()
		}
		if field.Fields == nil {
			field.Fields = []schema.Field{}
		}
		s.schema.Fields = append(s.schema.Fields, field)
		s.schemaChanged()
		return ""
	}

	if field.ID == "" {
		field.ID = s.ids.FieldID()
	}

	target := -1
	if parentSectionID != "" {
		for i := range s.schema.Fields {
			if s.schema.Fields[i].ID == parentSectionID && s.schema.Fields[i].IsSection() {
				target = i
				break
			}
		}
	}
	if target < 0 {
		for i := len(s.schema.Fields) - 1; i >= 0; i-- {
			if s.schema.Fields[i].IsSection() {
				target = i
				break
			}
		}
	}
	if target < 0 {
		s.schema.Fields = append(s.schema.Fields, schema.Field{
			ID:     s.ids.SectionID(),
			Type:   schema.FieldTypeSection,
			Label:  defaultSectionLabel,
			Page:   s.ui.CurrentPage,
			Fields: []schema.Field{},
		})
		target = len(s.schema.Fields) - 1
	}

	section := &s.schema.Fields[target]
	section.Fields = append(section.Fields, field)
	s.schemaChanged()
	return section.ID
}

// RemoveField deletes the first field matching id. Unknown ids are a no-op.
func (s *Store) RemoveField(id string) bool {
	loc, ok := schema.Locate(s.schema.Fields, id)
	if !ok {
		return false
	}
	if loc.Root() {
		s.schema.Fields = append(s.schema.Fields[:loc.Index], s.schema.Fields[loc.Index+1:]...)
	} else {
		section := &s.schema.Fields[loc.Section]
		section.Fields = append(section.Fields[:loc.Index], section.Fields[loc.Index+1:]...)
	}
	s.schemaChanged()
	return true
}

// UpdateField shallow merges patch into the field with the given id.
func (s *Store) UpdateField(id string, patch schema.FieldPatch) bool {
	loc, ok := schema.Locate(s.schema.Fields, id)
	if !ok {
		return false
	}
	target := s.fieldAt(loc)
	*target = patch.Apply(*target)
	s.schemaChanged()
	return true
}

// Field returns a copy of the field with the given id.
func (s *Store) Field(id string) (schema.Field, bool) {
	return s.schema.Find(id)
}

// ParentSectionID returns the id of the section that owns the field.
func (s *Store) ParentSectionID(id string) (string, bool) {
	loc, ok := schema.Locate(s.schema.Fields, id)
	if !ok || loc.Root() {
		return "", false
	}
	return s.schema.Fields[loc.Section].ID, true
}

// ReorderFields moves a root level entry. Moving fields between sections is
// a RemoveField followed by an AddField.
func (s *Store) ReorderFields(from, to int) bool {
	n := len(s.schema.Fields)
	if from < 0 || from >= n {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	entry := s.schema.Fields[from]
	rest := append(s.schema.Fields[:from:from], s.schema.Fields[from+1:]...)
	reordered := make([]schema.Field, 0, n)
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, entry)
	reordered = append(reordered, rest[to:]...)
	s.schema.Fields = reordered
	s.schemaChanged()
	return true
}

// AddPage allocates the next page id and makes it current.
func (s *Store) AddPage() string {
	for _, page := range s.Pages() {
		if n := pageNumber(page); n > s.pageCounter {
			s.pageCounter = n
		}
	}
	s.pageCounter++
	id := pagePrefix + strconv.Itoa(s.pageCounter)
	s.ui.CurrentPage = id
	s.notifyUI()
	return id
}

// SetCurrentPage switches the current page.
func (s *Store) SetCurrentPage(id string) {
	s.ui.CurrentPage = id
	s.notifyUI()
}

// Pages returns the distinct page tags declared by sections, ordered by their
// trailing counter. Sections without a tag belong to the default page.
func (s *Store) Pages() []string {
	return Pages(s.schema)
}

// Pages derives page ids from the sections of sch.
func Pages(sch schema.Schema) []string {
	seen := make(map[string]struct{})
	var pages []string
	for _, field := range sch.Fields {
		if !field.IsSection() {
			continue
		}
		page := field.PageID()
		if _, ok := seen[page]; ok {
			continue
		}
		seen[page] = struct{}{}
		pages = append(pages, page)
	}
	if len(pages) == 0 {
		return []string{schema.DefaultPage}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pageNumber(pages[i]) < pageNumber(pages[j])
	})
	return pages
}

// SectionsOnPage returns copies of the sections tagged with page.
func (s *Store) SectionsOnPage(page string) []schema.Field {
	var out []schema.Field
	for _, field := range s.schema.Fields {
		if field.IsSection() && field.PageID() == page {
			out = append(out, field.Clone())
		}
	}
	return out
}

// SetFieldValue stores value under the field's model key.
func (s *Store) SetFieldValue(id string, value any) bool {
	field, ok := s.schema.Find(id)
	if !ok || field.Model == "" {
		return false
	}
	s.formData[field.Model] = schema.CloneValue(value)
	s.notifyFormData()
	return true
}

// FieldValue reads the value stored under the field's model key.
func (s *Store) FieldValue(id string) (any, bool) {
	field, ok := s.schema.Find(id)
	if !ok {
		return nil, false
	}
	value, ok := s.formData[field.Model]
	return schema.CloneValue(value), ok
}

// FormData returns a deep copy of the form data.
func (s *Store) FormData() map[string]any {
	return schema.CloneData(s.formData)
}

// SetFormData replaces the form data.
func (s *Store) SetFormData(data map[string]any) {
	s.formData = schema.CloneData(data)
	s.notifyFormData()
}

// UIState returns a deep copy of the UI state.
func (s *Store) UIState() UIState {
	return s.ui.Clone()
}

// UpdateUIState applies patch to the UI state.
func (s *Store) UpdateUIState(patch UIPatch) {
	if patch.CurrentPage != nil {
		s.ui.CurrentPage = *patch.CurrentPage
	}
	if patch.SelectedFieldID != nil {
		s.ui.SelectedFieldID = *patch.SelectedFieldID
	}
	if patch.IsDirty != nil {
		s.ui.IsDirty = *patch.IsDirty
	}
	s.notifyUI()
}

// SelectField records the field currently selected in the editor.
func (s *Store) SelectField(id string) {
	s.ui.SelectedFieldID = id
	s.notifyUI()
}

// SetFieldErrors records validation messages for a field.
func (s *Store) SetFieldErrors(id string, errs []string) {
	if len(errs) == 0 {
		delete(s.ui.Errors, id)
	} else {
		s.ui.Errors[id] = append([]string(nil), errs...)
	}
	s.notifyUI()
}

// SetFieldTouched marks a field as interacted with.
func (s *Store) SetFieldTouched(id string) {
	s.ui.Touched[id] = true
	s.notifyUI()
}

func (s *Store) fieldAt(loc schema.Location) *schema.Field {
	if loc.Root() {
		return &s.schema.Fields[loc.Index]
	}
	return &s.schema.Fields[loc.Section].Fields[loc.Index]
}

func (s *Store) schemaChanged() {
	s.ui.IsDirty = true
	s.subs.notify(TopicSchema, func() any { return s.schema.Clone() })
}

func (s *Store) notifyFormData() {
	s.subs.notify(TopicFormData, func() any { return schema.CloneData(s.formData) })
}

func (s *Store) notifyUI() {
	s.subs.notify(TopicUIState, func() any { return s.ui.Clone() })
}

func pageNumber(page string) int {
	idx := strings.LastIndexByte(page, '-')
	if idx < 0 {
		return 1
	}
	n, err := strconv.Atoi(page[idx+1:])
	if err != nil {
		return 1
	}
	return n
}
