package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a diagram serialization format.
type Format string

// Supported serialization formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath infers the serialization format from a file extension.
// Unknown extensions default to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadJSON decodes a JSON diagram from r.
//
// Nil slices are normalized to empty slices so that callers can range over
// Lanes, Nodes and Edges without nil checks. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return normalize(&d), nil
}

// ReadYAML decodes a YAML diagram from r.
func ReadYAML(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return normalize(&d), nil
}

// Read decodes a diagram from r in the given format.
func Read(r io.Reader, format Format) (*Diagram, error) {
	if format == FormatYAML {
		return ReadYAML(r)
	}
	return ReadJSON(r)
}

// ReadFile reads the diagram at path. The format is chosen by extension.
func ReadFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return d, nil
}

// WriteJSON encodes d as indented JSON.
func WriteJSON(d *Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes d as YAML.
func WriteYAML(d *Diagram, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteFile writes d to path in the format implied by its extension.
func WriteFile(d *Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if FormatForPath(path) == FormatYAML {
		return WriteYAML(d, f)
	}
	return WriteJSON(d, f)
}

// Marshal returns the compact JSON encoding of d. The encoding is stable for
// equal diagrams and is used as cache key material.
func Marshal(d *Diagram) ([]byte, error) {
	return json.Marshal(d)
}

func normalize(d *Diagram) *Diagram {
	if d.Lanes == nil {
		d.Lanes = []LaneBand{}
	}
	if d.Nodes == nil {
		d.Nodes = []ProcessNode{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	return d
}
