// Package values implements the loose value semantics shared by the rule and
// validation engines: numeric coercion, string conversion and strict, one
// level array aware equality over dynamically typed form values.
package values

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Number coerces value to a float64. Values without a numeric reading
// (nil, objects, unparsable strings) yield NaN, so every ordered comparison
// against them is false.
func Number(value any) float64 {
	switch v := value.(type) {
	case nil:
		return math.NaN()
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		return parseNumber(v)
	}

	if items, ok := Slice(value); ok {
		switch len(items) {
		case 0:
			return 0
		case 1:
			return Number(items[0])
		}
	}
	return math.NaN()
}

func parseNumber(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseInt(lower[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// String renders value the way form inputs display it: numbers without a
// trailing fraction, lists joined by commas, nil as "undefined".
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return "undefined"
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}

	if isNumeric(value) {
		return formatNumber(Number(value))
	}
	if items, ok := Slice(value); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			if item == nil {
				continue
			}
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	}
	if reflect.ValueOf(value).Kind() == reflect.Map {
		return "[object Object]"
	}
	return fmt.Sprint(value)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// Slice returns the elements of array like values.
func Slice(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Equal compares two values: arrays match when they have the same length and
// strictly equal elements; everything else uses StrictEqual.
func Equal(a, b any) bool {
	left, leftOK := Slice(a)
	right, rightOK := Slice(b)
	if leftOK && rightOK {
		if len(left) != len(right) {
			return false
		}
		for i := range left {
			if !StrictEqual(left[i], right[i]) {
				return false
			}
		}
		return true
	}
	return StrictEqual(a, b)
}

// StrictEqual compares scalars without coercion between kinds. All numeric
// Go types compare as numbers; maps and slices are never equal to anything.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumeric(a) && isNumeric(b) {
		return Number(a) == Number(b)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	switch ta.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return false
	}
	return a == b
}

// Contains reports whether items holds an element strictly equal to value.
func Contains(items []any, value any) bool {
	for _, item := range items {
		if StrictEqual(item, value) {
			return true
		}
	}
	return false
}

// Present reports whether a value counts as supplied: not nil and not the
// empty string.
func Present(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok && s == "" {
		return false
	}
	return true
}

// Truthy reports whether value is neither nil, false, zero, NaN nor the
// empty string.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	if isNumeric(value) {
		n := Number(value)
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

func isNumeric(value any) bool {
	switch value.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}
