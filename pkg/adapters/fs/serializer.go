// Package fs holds the file-system side of the tracker: export bundles on disk
// and a watcher that notices writes to the store file by other processes.
package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tracker/pkg/core"
)

// Serializer defines how to read and write a bundle in a specific file format.
type Serializer interface {
	// Parse reads a bundle from r.
	Parse(r io.Reader) (core.Bundle, error)
	// Serialize converts the bundle to bytes.
	Serialize(b core.Bundle) ([]byte, error)
}

// DefaultSerializers returns the serializers keyed by file extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// SerializerFor picks a serializer from the extension of path.
// Paths without a known extension use JSON, the format of browser exports.
func SerializerFor(path string) Serializer {
	ext := strings.ToLower(filepath.Ext(path))
	if s, ok := DefaultSerializers()[ext]; ok {
		return s
	}
	return NewJSONSerializer()
}

// --- JSON Serializer ---

// JSONSerializer handles JSON bundles.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Bundle{}, err
	}
	var b core.Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&b); err != nil {
		return core.Bundle{}, fmt.Errorf("%w: invalid json: %w", core.ErrInvalidBundle, err)
	}
	return b, nil
}

func (s *JSONSerializer) Serialize(b core.Bundle) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer handles YAML bundles, which are easier to edit by hand.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Bundle{}, err
	}
	var b core.Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return core.Bundle{}, fmt.Errorf("%w: invalid yaml: %w", core.ErrInvalidBundle, err)
	}
	return b, nil
}

func (s *YAMLSerializer) Serialize(b core.Bundle) ([]byte, error) {
	return yaml.Marshal(b)
}
