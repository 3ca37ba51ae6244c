package rules

import (
	"strings"

	"github.com/goliatone/go-formbuilder/internal/values"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Lookup resolves the current value of a referenced field. found is false
// when no field with that id exists.
type Lookup func(fieldID string) (value any, found bool)

// Evaluate reports whether cond holds. A condition without a field compares
// against nil; a condition naming a field that does not exist compares
// against nil too, except that exists and empty are then both false.
// Unrecognised operators hold.
func Evaluate(cond schema.Condition, lookup Lookup) bool {
	var (
		current any
		found   = true
	)
	if cond.Field != "" && lookup != nil {
		current, found = lookup(cond.Field)
	}

	switch cond.Operator {
	case schema.OperatorEquals, "=", "==":
		return values.Equal(current, cond.Value)
	case schema.OperatorNotEquals, "!=", "!==":
		return !values.Equal(current, cond.Value)
	case schema.OperatorLessThan:
		return values.Number(current) < values.Number(cond.Value)
	case schema.OperatorGreaterThan:
		return values.Number(current) > values.Number(cond.Value)
	case schema.OperatorLessThanEqual:
		return values.Number(current) <= values.Number(cond.Value)
	case schema.OperatorGreaterThanEqual:
		return values.Number(current) >= values.Number(cond.Value)
	case schema.OperatorIncludes:
		return includes(current, cond.Value)
	case schema.OperatorIn:
		candidates, ok := values.Slice(cond.Value)
		return ok && values.Contains(candidates, current)
	case schema.OperatorNotIn:
		candidates, ok := values.Slice(cond.Value)
		return ok && !values.Contains(candidates, current)
	case schema.OperatorExists:
		return found && current != nil
	case schema.OperatorEmpty:
		if !found {
			return false
		}
		return !values.Present(current)
	default:
		return true
	}
}

func includes(current, search any) bool {
	if items, ok := values.Slice(current); ok {
		return values.Contains(items, search)
	}
	if s, ok := current.(string); ok {
		return strings.Contains(s, values.String(search))
	}
	return false
}
