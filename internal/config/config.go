// =============================================================================
// Stocky to Coast - Vendor Configuration
// =============================================================================
//
// Loads and validates the vendor configuration that controls output
// formatting. Configuration is layered: a baked-in default is constructed
// first, then the vendor YAML (chosen by built-in name or explicit path) is
// overlaid field by field. Overlay fields are pointers so that "unset" and
// "set to the zero value" can be told apart; vendor values win on conflict.
//
// The merged config is validated before any input row is read: the output
// columns must be an exact permutation of the cart schema, decimal places
// must be 0-6, the quoting mode must be known, and the optional SKU pattern
// must compile. Validation failures are ConfigError values (exit code 1).
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/stocky-to-coast/internal/coast"
)

// BuiltinVendors are the vendor names accepted by --vendor, each backed by
// vendor_configs/<name>.yml.
var BuiltinVendors = []string{"coast", "erikson_music", "erikson_audio"}

// builtinDir is the directory holding built-in vendor overlay files,
// resolved relative to the working directory.
const builtinDir = "vendor_configs"

// ConfigError reports a malformed or incomplete vendor configuration. It is
// a validation failure (exit code 1).
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid vendor config: %s: %v", e.Reason, e.Err)
	}
	return "invalid vendor config: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the merged, validated vendor configuration. Immutable after
// Load returns.
type Config struct {
	Name   string       `yaml:"name"`
	Output OutputConfig `yaml:"output"`
	Input  InputConfig  `yaml:"input"`
}

// OutputConfig controls cart CSV serialization.
type OutputConfig struct {
	// Columns is a permutation of the fixed cart schema.
	Columns []string `yaml:"columns"`

	// Delimiter is the field separator, a single character.
	Delimiter string `yaml:"delimiter"`

	// DecimalPlaces is the fixed decimal precision for price fields, 0-6.
	DecimalPlaces int `yaml:"decimal_places"`

	// Quoting is one of all, minimal, nonnumeric, none.
	Quoting string `yaml:"quoting"`
}

// InputConfig holds optional input constraints.
type InputConfig struct {
	// SKUPattern is an optional regex every SKU must match (anchored at
	// the start). A --sku-pattern flag takes precedence over it.
	SKUPattern string `yaml:"sku_pattern"`
}

// QuotingMode returns the parsed quoting mode. Valid after Validate.
func (o OutputConfig) QuotingMode() coast.Quoting {
	q, _ := coast.ParseQuoting(o.Quoting)
	return q
}

// Default returns the baked-in vendor configuration.
func Default() Config {
	return Config{
		Name: "default",
		Output: OutputConfig{
			Columns:       append([]string(nil), coast.OutputColumns...),
			Delimiter:     ",",
			DecimalPlaces: 2,
			Quoting:       "all",
		},
	}
}

// overlay mirrors Config with pointer fields so unset YAML keys leave the
// default layer untouched.
type overlay struct {
	Name   *string        `yaml:"name"`
	Output *outputOverlay `yaml:"output"`
	Input  *inputOverlay  `yaml:"input"`
}

type outputOverlay struct {
	Columns       []string `yaml:"columns"`
	Delimiter     *string  `yaml:"delimiter"`
	DecimalPlaces *int     `yaml:"decimal_places"`
	Quoting       *string  `yaml:"quoting"`
}

type inputOverlay struct {
	SKUPattern *string `yaml:"sku_pattern"`
}

// merge applies an overlay on top of a base config, field by field.
func merge(base Config, o overlay) Config {
	cfg := base
	if o.Name != nil {
		cfg.Name = *o.Name
	}
	if o.Output != nil {
		if o.Output.Columns != nil {
			cfg.Output.Columns = append([]string(nil), o.Output.Columns...)
		}
		if o.Output.Delimiter != nil {
			cfg.Output.Delimiter = *o.Output.Delimiter
		}
		if o.Output.DecimalPlaces != nil {
			cfg.Output.DecimalPlaces = *o.Output.DecimalPlaces
		}
		if o.Output.Quoting != nil {
			cfg.Output.Quoting = *o.Output.Quoting
		}
	}
	if o.Input != nil {
		if o.Input.SKUPattern != nil {
			cfg.Input.SKUPattern = *o.Input.SKUPattern
		}
	}
	return cfg
}

// Load builds the effective vendor configuration. Exactly one of vendor
// (built-in name) and path may be set; with neither, the default config is
// returned. The result is validated.
func Load(vendor, path string) (Config, error) {
	cfg := Default()

	var overlayPath string
	switch {
	case path != "":
		overlayPath = path
	case vendor != "":
		if !isBuiltinVendor(vendor) {
			return Config{}, &ConfigError{Reason: fmt.Sprintf("unknown built-in vendor %q", vendor)}
		}
		overlayPath = filepath.Join(builtinDir, vendor+".yml")
	}

	if overlayPath != "" {
		data, err := os.ReadFile(overlayPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read vendor config %s: %w", overlayPath, err)
		}
		var o overlay
		if err := yaml.Unmarshal(data, &o); err != nil {
			return Config{}, &ConfigError{Reason: fmt.Sprintf("failed to parse %s", overlayPath), Err: err}
		}
		cfg = merge(cfg, o)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the merged configuration. It never touches input data.
func Validate(cfg Config) error {
	if cfg.Name == "" {
		return &ConfigError{Reason: "name must not be empty"}
	}
	if err := validateColumns(cfg.Output.Columns); err != nil {
		return err
	}
	if len([]rune(cfg.Output.Delimiter)) != 1 {
		return &ConfigError{Reason: fmt.Sprintf("output.delimiter must be a single character, got %q", cfg.Output.Delimiter)}
	}
	if cfg.Output.DecimalPlaces < 0 || cfg.Output.DecimalPlaces > 6 {
		return &ConfigError{Reason: fmt.Sprintf("output.decimal_places must be 0-6, got %d", cfg.Output.DecimalPlaces)}
	}
	if _, err := coast.ParseQuoting(cfg.Output.Quoting); err != nil {
		return &ConfigError{Reason: "output.quoting", Err: err}
	}
	if cfg.Input.SKUPattern != "" {
		if _, err := regexp.Compile(cfg.Input.SKUPattern); err != nil {
			return &ConfigError{Reason: fmt.Sprintf("input.sku_pattern %q does not compile", cfg.Input.SKUPattern), Err: err}
		}
	}
	return nil
}

// validateColumns requires output.columns to be exactly a permutation of the
// cart schema: same set, same size, no duplicates.
func validateColumns(cols []string) error {
	if len(cols) != len(coast.OutputColumns) {
		return &ConfigError{Reason: fmt.Sprintf("output.columns must contain exactly %v", coast.OutputColumns)}
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			return &ConfigError{Reason: fmt.Sprintf("output.columns has duplicate column %q", c)}
		}
		seen[c] = true
	}
	for _, c := range coast.OutputColumns {
		if !seen[c] {
			return &ConfigError{Reason: fmt.Sprintf("output.columns must contain exactly %v", coast.OutputColumns)}
		}
	}
	return nil
}

func isBuiltinVendor(name string) bool {
	for _, v := range BuiltinVendors {
		if v == name {
			return true
		}
	}
	return false
}
