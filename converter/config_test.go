package converter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.OutSuffix != ".nc" {
		t.Errorf("OutSuffix = %q", cfg.OutSuffix)
	}
	if !reflect.DeepEqual(cfg.InputExtensions, []string{"hdf"}) {
		t.Errorf("InputExtensions = %v", cfg.InputExtensions)
	}
	if cfg.ExistingOutput != ExistingOverwrite {
		t.Errorf("ExistingOutput = %q", cfg.ExistingOutput)
	}
	if !reflect.DeepEqual(cfg.DeleteVariables, []string{"scan_line_time"}) {
		t.Errorf("DeleteVariables = %v", cfg.DeleteVariables)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convert.toml")
	body := `
existing_output = "skip"
input_extensions = ["hdf", "nc"]
delete_variables = []
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ExistingOutput != ExistingSkip {
		t.Errorf("ExistingOutput = %q, want skip", cfg.ExistingOutput)
	}
	if !reflect.DeepEqual(cfg.InputExtensions, []string{"hdf", "nc"}) {
		t.Errorf("InputExtensions = %v", cfg.InputExtensions)
	}
	if len(cfg.DeleteVariables) != 0 {
		t.Errorf("DeleteVariables = %v, want empty", cfg.DeleteVariables)
	}
	// Unset keys keep their defaults.
	if cfg.OutSuffix != ".nc" {
		t.Errorf("OutSuffix = %q, want default", cfg.OutSuffix)
	}
}

func TestLoadConfigRejectsBadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convert.toml")
	if err := os.WriteFile(path, []byte(`existing_output = "clobber"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("bad policy accepted")
	}
}

func TestExtensionSetStripsDots(t *testing.T) {
	cfg := Config{InputExtensions: []string{".hdf", "nc"}}
	set := cfg.extensionSet()
	if !set["hdf"] || !set["nc"] {
		t.Errorf("extensionSet = %v", set)
	}
}
