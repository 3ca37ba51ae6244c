package schema

import (
	"fmt"
	"strings"
)

// Check reports advisory structural problems: missing identifiers, types or
// model keys, unknown field types, duplicate identifiers and cyclic rule
// references. An empty result means the schema is structurally sound; a
// non-empty one never prevents the schema from being used.
func Check(s Schema) []string {
	var problems []string
	seen := make(map[string]string)

	var checkField func(field Field, position string, nested bool)
	checkField = func(field Field, position string, nested bool) {
		name := field.ID
		if name == "" {
			problems = append(problems, fmt.Sprintf("Field at index %s missing id", position))
			name = position
		} else if first, dup := seen[field.ID]; dup {
			problems = append(problems, fmt.Sprintf("Field %s at index %s duplicates id used at index %s", field.ID, position, first))
		} else {
			seen[field.ID] = position
		}

		switch {
		case field.Type == "":
			problems = append(problems, fmt.Sprintf("Field %s missing type", name))
		case !field.Type.Known():
			problems = append(problems, fmt.Sprintf("Field %s has unknown type %q", name, field.Type))
		}

		if field.IsSection() {
			if nested {
				problems = append(problems, fmt.Sprintf("Section %s is nested inside another section", name))
			}
			for i, child := range field.Fields {
				checkField(child, fmt.Sprintf("%s.%d", position, i), true)
			}
			return
		}
		if field.Model == "" {
			problems = append(problems, fmt.Sprintf("Field %s missing model", name))
		}
	}

	for i, field := range s.Fields {
		checkField(field, fmt.Sprintf("%d", i), false)
	}

	for _, cycle := range s.DetectCycles() {
		problems = append(problems, fmt.Sprintf("Circular rule dependency: %s", strings.Join(cycle, " -> ")))
	}
	return problems
}
