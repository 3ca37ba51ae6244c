package schema

// Dependencies maps every field that declares rule references to the ids it
// depends on.
func (s Schema) Dependencies() map[string][]string {
	deps := make(map[string][]string)
	Walk(s.Fields, func(field Field, _ *Field) bool {
		if refs := field.References(); len(refs) > 0 {
			deps[field.ID] = refs
		}
		return true
	})
	return deps
}

// DetectCycles returns every dependency cycle found among rule references.
// Each cycle is reported once as the path of ids that closes on itself,
// starting from the first field reached in document order.
func (s Schema) DetectCycles() [][]string {
	deps := s.Dependencies()

	var order []string
	Walk(s.Fields, func(field Field, _ *Field) bool {
		if _, ok := deps[field.ID]; ok {
			order = append(order, field.ID)
		}
		return true
	})

	const (
		unvisited = iota
		active
		done
	)
	status := make(map[string]int, len(deps))
	var (
		stack  []string
		cycles [][]string
	)

	var visit func(id string)
	visit = func(id string) {
		status[id] = active
		stack = append(stack, id)
		for _, dep := range deps[id] {
			switch status[dep] {
			case unvisited:
				visit(dep)
			case active:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						cycle := append([]string(nil), stack[i:]...)
						cycles = append(cycles, append(cycle, dep))
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		status[id] = done
	}

	for _, id := range order {
		if status[id] == unvisited {
			visit(id)
		}
	}
	return cycles
}
