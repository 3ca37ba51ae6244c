package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/builder"
)

// errReported marks failures whose details were already written to the
// output, so only the exit status is left to signal them.
var errReported = errors.New("formbuilder: see output above")

// loadBuilder imports the schema file at path into a fresh builder.
func (a *app) loadBuilder(path string) (*builder.Builder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	b := a.newBuilder()
	if _, err := b.ImportSchema(raw); err != nil {
		return nil, err
	}
	return b, nil
}

// readFormData decodes a JSON or YAML object of form values keyed by model.
func readFormData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form data: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err == nil {
		return data, nil
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}
	data = map[string]any{}
	if err := json.Unmarshal(normalized, &data); err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}
	return data, nil
}

func (a *app) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(out))
	return err
}
