package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// Validate checks the struct-level constraints of g: required fields, known
// node types and confidence range. It does not check referential integrity.
func (g *Graph) Validate() error {
	if g == nil {
		return fmt.Errorf("graph is nil")
	}
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}
	return nil
}

// ValidateNode checks the struct-level constraints of a single node.
func ValidateNode(n Node) error {
	return validate.Struct(n)
}

// ValidateRelationship checks the struct-level constraints of a single relationship.
func ValidateRelationship(r Relationship) error {
	return validate.Struct(r)
}

// WriteGraph encodes g as indented JSON.
func WriteGraph(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// ReadGraph decodes a graph from r. Unknown fields are rejected and the
// decoded graph must pass Validate.
func ReadGraph(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var g Graph
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = make([]Node, 0)
	}
	if g.Relationships == nil {
		g.Relationships = make([]Relationship, 0)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// MarshalGraph returns the indented JSON encoding of g.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadGraphFile loads a graph from the JSON file at path.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraphFile writes g to path, creating parent directories as needed.
// The file is replaced atomically so a concurrent reader never sees a
// partially written graph.
func WriteGraphFile(path string, g *Graph) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
