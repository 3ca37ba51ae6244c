// Package testsupport holds fixtures and golden helpers shared by package
// tests.
package testsupport

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

//go:embed testdata
var fixtures embed.FS

// Fixture returns the raw bytes of an embedded fixture.
func Fixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(filepath.ToSlash(filepath.Join("testdata", name)))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// ContactSchema decodes the embedded contact form: two sections on two
// pages, a select driving a conditional field and numeric bounds.
func ContactSchema(t *testing.T) schema.Schema {
	t.Helper()

	result, err := schema.Decode(Fixture(t, "contact.json"))
	if err != nil {
		t.Fatalf("decode contact fixture: %v", err)
	}
	if len(result.Problems) > 0 {
		t.Fatalf("contact fixture problems: %v", result.Problems)
	}
	return result.Schema
}

// LoadSchema reads and decodes a JSON or YAML schema from disk, returning
// an error for callers managing setup outside of *testing.T.
func LoadSchema(path string) (schema.ImportResult, error) {
	if path == "" {
		return schema.ImportResult{}, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.ImportResult{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	result, err := schema.Decode(data)
	if err != nil {
		return schema.ImportResult{}, fmt.Errorf("testsupport: decode schema: %w", err)
	}
	return result, nil
}

// MustLoadSchema is LoadSchema failing the test on error.
func MustLoadSchema(t *testing.T, path string) schema.Schema {
	t.Helper()

	result, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return result.Schema
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareSchemas diffs two schemas treating nil and empty slices alike.
func CompareSchemas(want, got schema.Schema) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}
