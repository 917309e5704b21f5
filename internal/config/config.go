// Package config loads the optional player config file: terminal size
// override, seek step, quantization mask bits, and output toggles. Files
// are YAML, decoded with [github.com/goccy/go-yaml] and validated against a
// hand-written JSON Schema via [github.com/google/jsonschema-go].
package config

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

// Config is the player's file-based configuration. Every field is optional;
// zero values mean "let the CLI flag or environment variable decide".
type Config struct {
	// Size is a fixed terminal size in cells, "WIDTHxHEIGHT". Empty means
	// track the terminal size dynamically.
	Size string `yaml:"size,omitempty" json:"size,omitempty"`
	// SeekSeconds overrides how far the Left/Right arrow keys seek. Zero
	// means use the built-in default.
	SeekSeconds int `yaml:"seek-seconds,omitempty" json:"seek-seconds,omitempty"`
	// MaskBits overrides the ANSI diff color quantization width. Zero means
	// use the renderer's default.
	MaskBits uint8 `yaml:"mask-bits,omitempty" json:"mask-bits,omitempty"`
	// NoAudio disables audio sink construction.
	NoAudio bool `yaml:"no-audio,omitempty" json:"no-audio,omitempty"`
	// NoDisplay disables the renderer; samples are still pulled and
	// discarded.
	NoDisplay bool `yaml:"no-display,omitempty" json:"no-display,omitempty"`
}

// schema describes the on-disk shape of [Config], hand-written rather than
// generated: the field set is small and fixed, so a generator adds
// indirection without saving anything.
var schema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"size":         {Type: "string", Pattern: `^\d+x\d+$`},
		"seek-seconds": {Type: "integer", Minimum: jsonschema.Ptr(0.0)},
		"mask-bits":    {Type: "integer", Minimum: jsonschema.Ptr(0.0), Maximum: jsonschema.Ptr(8.0)},
		"no-audio":     {Type: "boolean"},
		"no-display":   {Type: "boolean"},
	},
	AdditionalProperties: disallowAdditional(),
}

// disallowAdditional returns a schema that rejects any value, used to keep
// unknown config keys from silently passing validation.
func disallowAdditional() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

// Load reads, validates, and decodes the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied CLI flag.
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Validate checks raw YAML config bytes against [schema].
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("resolving schema: %w", err)
	}

	return resolved.Validate(doc)
}
