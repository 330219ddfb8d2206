package tub

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roverlabs/tubmerge/pkg/errors"
)

// ManifestFileName is the schema declaration file inside a dataset directory.
const ManifestFileName = "manifest.json"

// DefaultMaxLen is the catalog segment length used when the manifest does not
// declare one.
const DefaultMaxLen = 1000

// Manifest is the dataset schema declaration: exactly five JSON lines with
// fixed positional meaning. Lines three to five are kept as opaque objects so
// that keys this tool does not understand survive a rewrite.
type Manifest struct {
	// Inputs is line one: ordered field names.
	Inputs []string

	// Types is line two: type tags, index-aligned with Inputs.
	Types []string

	// Metadata is line three: free-form user metadata.
	Metadata map[string]any

	// Session is line four: manifest metadata (creation time, session ids).
	Session map[string]any

	// Catalog is line five: catalog metadata (segment paths, current index,
	// maximum segment length).
	Catalog map[string]any
}

// NewManifest creates an empty manifest for the given schema.
func NewManifest(inputs, types []string, maxLen int) *Manifest {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Manifest{
		Inputs:   append([]string(nil), inputs...),
		Types:    append([]string(nil), types...),
		Metadata: map[string]any{},
		Session:  map[string]any{},
		Catalog: map[string]any{
			"paths":         []any{},
			"current_index": float64(0),
			"max_len":       float64(maxLen),
		},
	}
}

// LoadManifest reads a manifest from path. It fails unless the file contains
// at least five well-formed JSON lines.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	m := &Manifest{}
	targets := []any{&m.Inputs, &m.Types, &m.Metadata, &m.Session, &m.Catalog}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for i, target := range targets {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, errors.WrapIO("read", path, err)
			}
			return nil, errors.NewManifestError(path, i+1, "expected five JSON lines", errors.ErrMalformedManifest)
		}
		if err := json.Unmarshal(scanner.Bytes(), target); err != nil {
			return nil, errors.NewManifestError(path, i+1, err.Error(), err)
		}
	}

	if len(m.Inputs) != len(m.Types) {
		return nil, errors.WrapValidation("types",
			fmt.Errorf("inputs has %d entries, types has %d", len(m.Inputs), len(m.Types)))
	}
	return m, nil
}

// Write serializes the manifest to path: five JSON lines, mapping keys
// sorted, each newline-terminated. The original file is overwritten.
func (m *Manifest) Write(path string) error {
	var buf bytes.Buffer
	for _, line := range []any{m.Inputs, m.Types, m.Metadata, m.Session, m.Catalog} {
		// encoding/json emits map keys in sorted order.
		b, err := json.Marshal(line)
		if err != nil {
			return errors.WrapParse("json", path, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// HasInput reports whether the manifest declares the named field.
func (m *Manifest) HasInput(name string) bool {
	return m.inputIndex(name) >= 0
}

// InsertInput inserts a field name and its type tag at idx, keeping the two
// sequences aligned. An idx past the end appends.
func (m *Manifest) InsertInput(idx int, name, typeTag string) {
	if idx < 0 || idx > len(m.Inputs) {
		idx = len(m.Inputs)
	}
	m.Inputs = append(m.Inputs[:idx], append([]string{name}, m.Inputs[idx:]...)...)
	m.Types = append(m.Types[:idx], append([]string{typeTag}, m.Types[idx:]...)...)
}

// TypeOf returns the type tag of the named field, or the empty string if the
// field is not declared.
func (m *Manifest) TypeOf(name string) string {
	if i := m.inputIndex(name); i >= 0 {
		return m.Types[i]
	}
	return ""
}

func (m *Manifest) inputIndex(name string) int {
	for i, input := range m.Inputs {
		if input == name {
			return i
		}
	}
	return -1
}

// Paths returns the catalog segment paths, relative to the dataset directory.
func (m *Manifest) Paths() []string {
	raw, ok := m.Catalog["paths"].([]any)
	if !ok {
		return nil
	}
	paths := make([]string, 0, len(raw))
	for _, p := range raw {
		if s, ok := p.(string); ok {
			paths = append(paths, s)
		}
	}
	return paths
}

// AppendPath records a new catalog segment path.
func (m *Manifest) AppendPath(path string) {
	raw, _ := m.Catalog["paths"].([]any)
	m.Catalog["paths"] = append(raw, path)
}

// CurrentIndex returns the index the next written record will receive.
func (m *Manifest) CurrentIndex() int {
	return intValue(m.Catalog["current_index"], 0)
}

// SetCurrentIndex updates the next record index.
func (m *Manifest) SetCurrentIndex(index int) {
	m.Catalog["current_index"] = float64(index)
}

// MaxLen returns the configured maximum segment length, defaulting to
// DefaultMaxLen when the manifest does not declare one.
func (m *Manifest) MaxLen() int {
	return intValue(m.Catalog["max_len"], DefaultMaxLen)
}

// intValue converts a decoded JSON number to int, falling back to def.
func intValue(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}
