package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/config"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load([]byte("language: de\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Config{HistoryCapacity: 50, Language: "de", SanitizeMarkup: true, LogLevel: "info"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	empty, err := config.Load(nil)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if diff := cmp.Diff(config.Default(), empty); diff != "" {
		t.Fatalf("empty config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAcceptsJSON(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load([]byte(`{"historyCapacity": 5, "sanitizeMarkup": false, "logLevel": "debug"}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryCapacity != 5 || cfg.SanitizeMarkup {
		t.Fatalf("unexpected config %+v", cfg)
	}
	level, err := cfg.Level()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v (%v)", level, err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"capacity": "historyCapacity: 0\n",
		"language": "language: \"not a tag!\"\n",
		"level":    "logLevel: loud\n",
	}
	for name, doc := range cases {
		if _, err := config.Load([]byte(doc)); !errors.Is(err, config.ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
	}

	if _, err := config.Load([]byte("historyCapacity: [")); err == nil || errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "formbuilder.yaml")
	if err := os.WriteFile(path, []byte("historyCapacity: 10\nlanguage: fr\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.HistoryCapacity != 10 || cfg.Language != "fr" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := len(cfg.BuilderOptions(slog.Default())); got != 4 {
		t.Fatalf("expected 4 builder options, got %d", got)
	}

	if _, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
