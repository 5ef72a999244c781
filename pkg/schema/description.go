package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Description is the declarative form of a set of well-known tables.
type Description struct {
	Structs []Struct    `yaml:"structs" json:"structs" mapstructure:"structs"`
	Tables  []TableDecl `yaml:"tables" json:"tables" mapstructure:"tables"`
}

// Struct declares an aggregate type.
type Struct struct {
	Name   string  `yaml:"name" json:"name" mapstructure:"name"`
	Doc    string  `yaml:"doc,omitempty" json:"doc,omitempty" mapstructure:"doc"`
	Fields []Field `yaml:"fields" json:"fields" mapstructure:"fields"`
}

// Field declares one member of a struct.
type Field struct {
	Name    string `yaml:"name" json:"name" mapstructure:"name"`
	Type    string `yaml:"type" json:"type" mapstructure:"type"`
	Size    int    `yaml:"size,omitempty" json:"size,omitempty" mapstructure:"size"`
	Len     int    `yaml:"len,omitempty" json:"len,omitempty" mapstructure:"len"` // string capacity, terminator included
	Dim     int    `yaml:"dim,omitempty" json:"dim,omitempty" mapstructure:"dim"`
	Bounds  []int  `yaml:"bounds,omitempty" json:"bounds,omitempty" mapstructure:"bounds"`
	Default any    `yaml:"default,omitempty" json:"default,omitempty" mapstructure:"default"`
	Params  *int   `yaml:"params,omitempty" json:"params,omitempty" mapstructure:"params"`
	Returns *int   `yaml:"returns,omitempty" json:"returns,omitempty" mapstructure:"returns"`
	Doc     string `yaml:"doc,omitempty" json:"doc,omitempty" mapstructure:"doc"`
}

// TableDecl declares a well-known table instantiating a struct.
type TableDecl struct {
	Name   string `yaml:"name" json:"name" mapstructure:"name"`
	Type   string `yaml:"type" json:"type" mapstructure:"type"`
	Dim    int    `yaml:"dim,omitempty" json:"dim,omitempty" mapstructure:"dim"`
	Bounds []int  `yaml:"bounds,omitempty" json:"bounds,omitempty" mapstructure:"bounds"`
	Doc    string `yaml:"doc,omitempty" json:"doc,omitempty" mapstructure:"doc"`
}

// Format of a description document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads a description file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	desc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return desc, nil
}

// Parse decodes a description. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Description, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse schema json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse schema yaml: %w", err)
		}
	}

	var desc Description
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &desc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return &desc, nil
}

// Marshal renders a description back into YAML or JSON.
func Marshal(desc *Description, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(desc, "", "  ")
	}
	return yaml.Marshal(desc)
}
