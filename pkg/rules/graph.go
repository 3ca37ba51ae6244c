package rules

import "github.com/goliatone/go-formbuilder/pkg/schema"

// Graph is the reverse dependency index of a schema: for every field id it
// lists the fields whose visibility or logic reads it.
type Graph struct {
	dependents map[string][]string
}

// NewGraph indexes every rule reference declared in s.
func NewGraph(s schema.Schema) Graph {
	g := Graph{dependents: make(map[string][]string)}
	schema.Walk(s.Fields, func(field schema.Field, _ *schema.Field) bool {
		for _, ref := range field.References() {
			g.link(ref, field.ID)
		}
		return true
	})
	return g
}

func (g Graph) link(source, dependent string) {
	for _, existing := range g.dependents[source] {
		if existing == dependent {
			return
		}
	}
	g.dependents[source] = append(g.dependents[source], dependent)
}

// Dependents returns the ids of fields that depend on id, in declaration
// order.
func (g Graph) Dependents(id string) []string {
	deps := g.dependents[id]
	if len(deps) == 0 {
		return nil
	}
	return append([]string(nil), deps...)
}
