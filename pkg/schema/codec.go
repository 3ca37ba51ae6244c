package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrMalformed marks payloads that cannot be parsed into a schema at all.
var ErrMalformed = errors.New("schema: malformed document")

// ImportResult is the outcome of a best effort import. Problems lists
// structural issues found in the document; the schema is still usable.
type ImportResult struct {
	Schema   Schema
	Problems []string
}

// Valid reports whether the import found no structural problems.
func (r ImportResult) Valid() bool {
	return len(r.Problems) == 0
}

// Export serialises the schema as indented JSON.
func Export(s Schema) ([]byte, error) {
	if s.Fields == nil {
		s.Fields = []Field{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: export: %w", err)
	}
	return data, nil
}

// ExportYAML serialises the schema as YAML using the JSON field names.
func ExportYAML(s Schema) ([]byte, error) {
	raw, err := Export(s)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("schema: export yaml: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("schema: export yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("schema: export yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses a JSON schema document. Payloads that are not valid JSON
// objects are rejected with ErrMalformed; anything else loads best effort
// and reports structural problems alongside the schema.
func Import(data []byte) (ImportResult, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return importGeneric(generic)
}

// ImportYAML parses a YAML schema document with the same rules as Import.
func ImportYAML(data []byte) (ImportResult, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return importGeneric(normalizeYAML(generic))
}

// Decode imports JSON, falling back to YAML when the payload is not JSON.
func Decode(data []byte) (ImportResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{}, fmt.Errorf("%w: document is empty", ErrMalformed)
	}
	result, err := Import(data)
	if err == nil {
		return result, nil
	}
	if yamlResult, yamlErr := ImportYAML(data); yamlErr == nil {
		return yamlResult, nil
	}
	return ImportResult{}, err
}

func importGeneric(generic any) (ImportResult, error) {
	root, ok := generic.(map[string]any)
	if !ok {
		return ImportResult{}, fmt.Errorf("%w: document must be an object", ErrMalformed)
	}

	var (
		result   ImportResult
		problems []string
	)

	if rawMeta, ok := root["meta"]; !ok || rawMeta == nil {
		problems = append(problems, "Schema must have meta object")
	} else if err := remarshal(rawMeta, &result.Schema.Meta); err != nil {
		problems = append(problems, fmt.Sprintf("Schema meta is invalid: %v", err))
	}

	rawFields, ok := root["fields"].([]any)
	if !ok {
		problems = append(problems, "Schema must have fields array")
	}
	result.Schema.Fields, problems = decodeFields(rawFields, "", problems)

	result.Problems = append(problems, Check(result.Schema)...)
	return result, nil
}

// decodeFields reads entries one at a time so a malformed entry only costs
// itself. prefix is the index path of the owning section.
func decodeFields(raw []any, prefix string, problems []string) ([]Field, []string) {
	fields := make([]Field, 0, len(raw))
	for i, entry := range raw {
		path := strconv.Itoa(i)
		if prefix != "" {
			path = prefix + "." + path
		}
		var (
			field Field
			ok    bool
		)
		field, ok, problems = decodeField(entry, path, problems)
		if ok {
			fields = append(fields, field)
		}
	}
	return fields, problems
}

// decodeField reads the scalar members of one entry strictly, then its
// validation rules and children individually. Bad rules are dropped; a bad
// scalar member drops the entry.
func decodeField(raw any, path string, problems []string) (Field, bool, []string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Field{}, false, append(problems, fmt.Sprintf("Field at index %s is not an object", path))
	}
	name := path
	if id, ok := obj["id"].(string); ok && id != "" {
		name = fmt.Sprintf("%s (index %s)", id, path)
	}

	scalars := make(map[string]any, len(obj))
	for key, value := range obj {
		if key == "validation" || key == "fields" {
			continue
		}
		scalars[key] = value
	}
	var field Field
	if err := remarshal(scalars, &field); err != nil {
		return Field{}, false, append(problems, fmt.Sprintf("Field %s could not be read: %v", name, err))
	}

	if rawRules, present := obj["validation"]; present && rawRules != nil {
		list, ok := rawRules.([]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("Field %s validation must be an array", name))
		} else {
			field.Validation = make([]ValidationRule, 0, len(list))
			for j, rawRule := range list {
				var rule ValidationRule
				if err := remarshal(rawRule, &rule); err != nil {
					problems = append(problems, fmt.Sprintf("Validation rule %d of field %s could not be read: %v", j, name, err))
					continue
				}
				field.Validation = append(field.Validation, rule)
			}
		}
	}

	if rawChildren, present := obj["fields"]; present && rawChildren != nil {
		list, ok := rawChildren.([]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("Field %s fields must be an array", name))
		} else {
			field.Fields, problems = decodeFields(list, path, problems)
		}
	}
	return field, true, problems
}

func remarshal(in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// normalizeYAML converts YAML specific shapes (integer scalars, maps keyed by
// any) into the shapes produced by JSON decoding.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeYAML(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeYAML(v)
		}
		return out
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint64:
		return float64(typed)
	default:
		return value
	}
}
