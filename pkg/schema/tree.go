package schema

// Location addresses a field inside the two level tree. Section is -1 for
// root level entries; otherwise it is the root index of the owning section
// and Index is the child position.
type Location struct {
	Section int
	Index   int
}

// Root reports whether the location points at a root level entry.
func (l Location) Root() bool { return l.Section < 0 }

// Locate searches root entries first, then each section's children in
// document order, and returns the first match.
func Locate(fields []Field, id string) (Location, bool) {
	if id == "" {
		return Location{}, false
	}
	for i := range fields {
		if fields[i].ID == id {
			return Location{Section: -1, Index: i}, true
		}
	}
	for i := range fields {
		if !fields[i].IsSection() {
			continue
		}
		for j := range fields[i].Fields {
			if fields[i].Fields[j].ID == id {
				return Location{Section: i, Index: j}, true
			}
		}
	}
	return Location{}, false
}

// Find returns a copy of the field with the given id.
func (s Schema) Find(id string) (Field, bool) {
	loc, ok := Locate(s.Fields, id)
	if !ok {
		return Field{}, false
	}
	if loc.Root() {
		return s.Fields[loc.Index].Clone(), true
	}
	return s.Fields[loc.Section].Fields[loc.Index].Clone(), true
}

// Walk visits every root entry and, for sections, their children in document
// order. Returning false from fn stops the walk.
func Walk(fields []Field, fn func(field Field, parent *Field) bool) {
	for i := range fields {
		if !fn(fields[i], nil) {
			return
		}
		if !fields[i].IsSection() {
			continue
		}
		parent := &fields[i]
		for j := range fields[i].Fields {
			if !fn(fields[i].Fields[j], parent) {
				return
			}
		}
	}
}

// Leaves returns every non section field in document order.
func (s Schema) Leaves() []Field {
	var out []Field
	Walk(s.Fields, func(field Field, _ *Field) bool {
		if !field.IsSection() {
			out = append(out, field)
		}
		return true
	})
	return out
}

// Models returns the distinct model keys declared in the schema, in document
// order.
func (s Schema) Models() []string {
	seen := make(map[string]struct{})
	var out []string
	Walk(s.Fields, func(field Field, _ *Field) bool {
		if field.Model == "" {
			return true
		}
		if _, ok := seen[field.Model]; ok {
			return true
		}
		seen[field.Model] = struct{}{}
		out = append(out, field.Model)
		return true
	})
	return out
}

// References returns the ids a field's visibility and logic rules read, in
// declaration order and without duplicates.
func (f Field) References() []string {
	var out []string
	add := func(id string) {
		if id == "" {
			return
		}
		for _, existing := range out {
			if existing == id {
				return
			}
		}
		out = append(out, id)
	}
	if f.Visibility != nil {
		add(f.Visibility.Reference())
	}
	for _, rule := range f.Logic {
		if rule.If != nil {
			add(rule.If.Field)
		}
	}
	return out
}
