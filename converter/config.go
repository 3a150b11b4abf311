package converter

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ExistingOutputPolicy says what to do when an output file already
// exists.  The legacy converter's revisions disagreed, so both behaviors
// are supported.
type ExistingOutputPolicy string

const (
	// ExistingOverwrite replaces the file with a warning.
	ExistingOverwrite ExistingOutputPolicy = "overwrite"
	// ExistingSkip leaves the file alone and skips the input.
	ExistingSkip ExistingOutputPolicy = "skip"
)

// Config holds the conversion options.  The zero value is not usable;
// start from DefaultConfig or LoadConfig.
type Config struct {
	OutSuffix       string               `toml:"out_suffix"`
	InputExtensions []string             `toml:"input_extensions"`
	ExistingOutput  ExistingOutputPolicy `toml:"existing_output"`
	DeleteVariables []string             `toml:"delete_variables"`
}

// DefaultConfig returns the options matching the legacy converter.
func DefaultConfig() Config {
	return Config{
		OutSuffix:       ".nc",
		InputExtensions: []string{"hdf"},
		ExistingOutput:  ExistingOverwrite,
		DeleteVariables: []string{"scan_line_time"},
	}
}

// LoadConfig overlays a TOML file onto the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects option values the converter cannot honor.
func (c Config) Validate() error {
	switch c.ExistingOutput {
	case ExistingOverwrite, ExistingSkip:
	default:
		return errors.Errorf("existing_output must be %q or %q, not %q",
			ExistingOverwrite, ExistingSkip, c.ExistingOutput)
	}
	if c.OutSuffix == "" {
		return errors.New("out_suffix must not be empty")
	}
	return nil
}

// deleteSet returns the deletion list as a set.
func (c Config) deleteSet() map[string]bool {
	out := make(map[string]bool, len(c.DeleteVariables))
	for _, name := range c.DeleteVariables {
		out[name] = true
	}
	return out
}

// extensionSet returns the accepted input extensions, without dots.
func (c Config) extensionSet() map[string]bool {
	out := make(map[string]bool, len(c.InputExtensions))
	for _, ext := range c.InputExtensions {
		for len(ext) > 0 && ext[0] == '.' {
			ext = ext[1:]
		}
		out[ext] = true
	}
	return out
}
