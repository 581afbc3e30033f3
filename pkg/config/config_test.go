package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Timeout.Duration != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout.Duration, DefaultTimeout)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.MaxResultsDisplay != DefaultMaxResultsDisplay {
		t.Errorf("MaxResultsDisplay = %d, want %d", cfg.MaxResultsDisplay, DefaultMaxResultsDisplay)
	}
}

func TestLoadConfigPartialFileFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
base_url = "http://localhost:9999/"
timeout = "5s"
temperature = 0.7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout.Duration)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.VectorStore != DefaultVectorStore {
		t.Errorf("VectorStore = %q, want default %q", cfg.VectorStore, DefaultVectorStore)
	}
}

func TestSourcesFallback(t *testing.T) {
	cfg := GetDefaultConfig()
	got := cfg.Sources()
	if len(got) != len(DefaultLexicalSources) {
		t.Fatalf("Sources() = %v, want default set", got)
	}

	cfg.LexicalSources = []string{"LO"}
	got = cfg.Sources()
	if len(got) != 1 || got[0] != "LO" {
		t.Errorf("Sources() = %v, want [LO]", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := GetDefaultConfig()
	cfg.Instructions["ragbot"] = "Answer from retrieved passages."
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if loaded.Instruction("ragbot") != "Answer from retrieved passages." {
		t.Errorf("instruction lost on round-trip: %q", loaded.Instruction("ragbot"))
	}
	if loaded.BaseURL != cfg.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.BaseURL, cfg.BaseURL)
	}
}
