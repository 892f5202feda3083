package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	input := `
prompt: "lox> "
trace_parser: true
recover: true
history_file: ""
`
	cfg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if cfg.Prompt != "lox> " {
		t.Errorf("Prompt wrong. got=%q", cfg.Prompt)
	}
	if cfg.ContinuationPrompt != ".. " {
		t.Errorf("ContinuationPrompt should keep its default. got=%q", cfg.ContinuationPrompt)
	}
	if !cfg.TraceParser || !cfg.Recover {
		t.Errorf("bool fields not decoded. got=%+v", cfg)
	}
	if cfg.HistoryFile != "" {
		t.Errorf("HistoryFile should be cleared. got=%q", cfg.HistoryFile)
	}
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("empty input should yield defaults. got=%+v", cfg)
	}
}

func TestDecodeUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("promt: typo\n"))
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Decode(strings.NewReader("history_file: ~/hist\n"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.HistoryFile != filepath.Join(home, "hist") {
		t.Errorf("HistoryFile wrong. got=%q", cfg.HistoryFile)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	if err := os.WriteFile(path, []byte("continuation_prompt: \"... \"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ContinuationPrompt != "... " {
		t.Errorf("ContinuationPrompt wrong. got=%q", cfg.ContinuationPrompt)
	}
}

func TestLoadMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	if _, err := Load(missing); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load of missing file should wrap os.ErrNotExist. got=%v", err)
	}

	cfg, err := LoadOptional(missing)
	if err != nil {
		t.Fatalf("LoadOptional returned error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("LoadOptional should fall back to defaults. got=%+v", cfg)
	}

	if _, err := Load(""); err == nil {
		t.Errorf("Load with empty path should fail")
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte("prompt: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadOptional(path)
	if err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("expected parse error. got=%v", err)
	}
}
