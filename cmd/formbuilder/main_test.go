package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/rules"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const (
	contactPath = "../../pkg/testsupport/testdata/contact.json"
	signupPath  = "../../pkg/openapi/testdata/signup.yaml"
)

func run(t *testing.T, driver preview.PromptDriver, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{in: strings.NewReader(""), out: &out, errOut: &errOut, driver: driver}
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestErrorsAreReportedOnce(t *testing.T) {
	t.Parallel()

	data := writeTemp(t, "data.json", `{"name":"Al","topic":"sales","age":16}`)
	var out, errOut bytes.Buffer
	err := execRootCmd([]string{"validate", contactPath, data}, strings.NewReader(""), &out, &errOut)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected invalid form, got %v", err)
	}
	if !strings.Contains(out.String(), `"isValid": false`) {
		t.Fatalf("expected JSON report on stdout, got %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("reported failures must not print an error line, got %q", errOut.String())
	}

	out.Reset()
	errOut.Reset()
	err = execRootCmd([]string{"evaluate", contactPath, data, "--field", "field_missing"}, strings.NewReader(""), &out, &errOut)
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if got := errOut.String(); got != "Error: unknown field \"field_missing\"\n" {
		t.Fatalf("unexpected error output %q", got)
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "check", contactPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "ok (4 fields)") {
		t.Fatalf("unexpected output %q", out)
	}

	broken := writeTemp(t, "broken.json", `{"fields":[{"type":"text"}]}`)
	out, err = run(t, nil, "check", broken)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if !strings.Contains(out, "broken.json: ") {
		t.Fatalf("expected problems in output, got %q", out)
	}
}

func TestConvertCommandRoundTrips(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "convert", contactPath, "--to", "yaml")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	result, err := schema.ImportYAML([]byte(out))
	if err != nil {
		t.Fatalf("import converted yaml: %v", err)
	}
	if diff := testsupport.CompareSchemas(testsupport.ContactSchema(t), result.Schema); diff != "" {
		t.Fatalf("converted schema mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, nil, "convert", contactPath, "--to", "toml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestDescribeCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "describe", contactPath)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(out, "[section_main] Main") {
		t.Fatalf("outline missing section:\n%s", out)
	}
}

func TestEvaluateCommand(t *testing.T) {
	t.Parallel()

	data := writeTemp(t, "data.yaml", "topic: sales\nage: 30\n")
	out, err := run(t, nil, "evaluate", contactPath, data)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	var states rules.States
	if err := json.Unmarshal([]byte(out), &states); err != nil {
		t.Fatalf("decode states: %v\n%s", err, out)
	}
	if !states.Hidden("field_ticket") {
		t.Fatalf("ticket should be hidden for sales, got %+v", states["field_ticket"])
	}

	if _, err := run(t, nil, "evaluate", contactPath, data, "--field", "field_missing"); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	data := writeTemp(t, "data.json", `{"name":"Al","topic":"sales","age":16}`)
	out, err := run(t, nil, "validate", contactPath, data, "--skip-hidden")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected invalid form, got %v", err)
	}
	var result validation.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if result.IsValid {
		t.Fatalf("expected invalid result")
	}
	for _, id := range []string{"field_name", "field_age"} {
		if len(result.Errors[id]) == 0 {
			t.Errorf("expected errors for %s, got %v", id, result.Errors)
		}
	}
	if _, ok := result.Errors["field_ticket"]; ok {
		t.Errorf("hidden ticket must be skipped, got %v", result.Errors)
	}

	valid := writeTemp(t, "valid.json", `{"name":"Ada","topic":"sales","age":30}`)
	if _, err := run(t, nil, "validate", contactPath, valid); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestSeedCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "seed", signupPath, "--list")
	if err != nil {
		t.Fatalf("seed list: %v", err)
	}
	if !strings.HasPrefix(out, "createAccount\tPOST /accounts") {
		t.Fatalf("unexpected operation list %q", out)
	}

	out, err = run(t, nil, "seed", signupPath, "--operation", "createAccount")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	result, err := schema.Import([]byte(out))
	if err != nil {
		t.Fatalf("import seeded schema: %v", err)
	}
	if _, ok := result.Schema.Find("field_email"); !ok {
		t.Fatalf("seeded schema missing email field:\n%s", out)
	}
}

type scriptedDriver struct {
	inputs  []string
	selects []int
}

func (d *scriptedDriver) Input(context.Context, preview.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := d.inputs[0]
	d.inputs = d.inputs[1:]
	return val, nil
}

func (d *scriptedDriver) Select(context.Context, preview.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := d.selects[0]
	d.selects = d.selects[1:]
	return val, nil
}

func (d *scriptedDriver) Confirm(context.Context, preview.ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (d *scriptedDriver) MultiSelect(context.Context, preview.SelectConfig) ([]int, error) {
	return nil, errors.New("no multiselect scripted")
}

func (d *scriptedDriver) TextArea(context.Context, preview.TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestPreviewCommand(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{inputs: []string{"Ada", "42"}, selects: []int{0}}
	out, err := run(t, driver, "preview", contactPath)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	var submission preview.Submission
	if err := json.Unmarshal([]byte(out), &submission); err != nil {
		t.Fatalf("decode submission: %v\n%s", err, out)
	}
	if !submission.Valid || submission.Data["name"] != "Ada" || submission.Data["age"] != float64(42) {
		t.Fatalf("unexpected submission %+v", submission)
	}
}

func TestConfigAndLogLevelFlags(t *testing.T) {
	t.Parallel()

	if _, err := run(t, nil, "--log-level", "loud", "check", contactPath); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad log level, got %v", err)
	}

	cfg := writeTemp(t, "formbuilder.yaml", "historyCapacity: 5\nlanguage: de\nlogLevel: debug\n")
	data := writeTemp(t, "data.json", `{"name":"Ada","topic":"sales","age":3}`)
	out, err := run(t, nil, "--config", cfg, "validate", contactPath, data)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected invalid form, got %v", err)
	}
	if !strings.Contains(out, "Adults only") {
		t.Fatalf("expected custom message in output, got %q", out)
	}

	name := writeTemp(t, "short.json", `{"name":"Al","topic":"sales","age":30}`)
	out, _ = run(t, nil, "--config", cfg, "validate", contactPath, name)
	if !strings.Contains(out, "Die Mindestlänge beträgt 3") {
		t.Fatalf("expected German message, got %q", out)
	}
}
