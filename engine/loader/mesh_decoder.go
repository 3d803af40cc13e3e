package loader

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"olympos.io/encoding/edn"
)

// MeshFormat identifies the text encoding of a mesh description.
type MeshFormat int

const (
	// MeshFormatEDN is an EDN map with :vertices and :indices vectors.
	MeshFormatEDN MeshFormat = iota
	// MeshFormatYAML is a YAML mapping with vertices and indices sequences.
	MeshFormatYAML
)

func (f MeshFormat) String() string {
	switch f {
	case MeshFormatEDN:
		return "edn"
	case MeshFormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("MeshFormat(%d)", int(f))
	}
}

// MeshFormatFromPath picks the mesh format from a file extension (.edn, .yaml or .yml).
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - MeshFormat: the detected format
//   - error: an error for any other extension
func MeshFormatFromPath(path string) (MeshFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".edn":
		return MeshFormatEDN, nil
	case ".yaml", ".yml":
		return MeshFormatYAML, nil
	default:
		return 0, fmt.Errorf("loader: no mesh format for %q", path)
	}
}

// DecodeMesh parses a mesh description holding a flat "vertices" number list and an "indices"
// list of 16-bit vertex indices. Both keys are required.
//
// Parameters:
//   - text: the encoded description
//   - format: the encoding of text
//
// Returns:
//   - vertices: the vertex components in document order
//   - indices: the indices in document order
//   - err: a *ParseError for syntax errors, missing keys or values of the wrong type
func DecodeMesh(text []byte, format MeshFormat) (vertices []float32, indices []uint16, err error) {
	var doc any
	switch format {
	case MeshFormatEDN:
		err = edn.Unmarshal(text, &doc)
	case MeshFormatYAML:
		err = yaml.Unmarshal(text, &doc)
	default:
		return nil, nil, &ParseError{Format: format, Reason: "unknown format"}
	}
	if err != nil {
		return nil, nil, &ParseError{Format: format, Reason: "syntax error", Err: err}
	}

	fields, ok := documentFields(doc)
	if !ok {
		return nil, nil, &ParseError{Format: format, Reason: "top level value is not a map"}
	}

	rawVertices, ok := fields["vertices"]
	if !ok {
		return nil, nil, &ParseError{Format: format, Reason: `missing "vertices"`}
	}
	rawIndices, ok := fields["indices"]
	if !ok {
		return nil, nil, &ParseError{Format: format, Reason: `missing "indices"`}
	}

	vertexList, ok := rawVertices.([]any)
	if !ok {
		return nil, nil, &ParseError{Format: format, Reason: `"vertices" is not a list`}
	}
	indexList, ok := rawIndices.([]any)
	if !ok {
		return nil, nil, &ParseError{Format: format, Reason: `"indices" is not a list`}
	}

	vertices = make([]float32, len(vertexList))
	for i, v := range vertexList {
		f, ok := toFloat(v)
		if !ok {
			return nil, nil, &ParseError{Format: format, Reason: fmt.Sprintf("vertex component %d is %T, not a number", i, v)}
		}
		vertices[i] = float32(f)
	}

	indices = make([]uint16, len(indexList))
	for i, v := range indexList {
		n, ok := toInt(v)
		if !ok {
			return nil, nil, &ParseError{Format: format, Reason: fmt.Sprintf("index %d is %T, not an integer", i, v)}
		}
		if n < 0 || n > math.MaxUint16 {
			return nil, nil, &ParseError{Format: format, Reason: fmt.Sprintf("index %d value %d outside 0..65535", i, n)}
		}
		indices[i] = uint16(n)
	}
	return vertices, indices, nil
}

// documentFields flattens the top level map of either decoder to string keys. EDN keywords lose
// their leading colon.
func documentFields(doc any) (map[string]any, bool) {
	switch m := doc.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			switch key := k.(type) {
			case edn.Keyword:
				out[string(key)] = v
			case edn.Symbol:
				out[string(key)] = v
			case string:
				out[key] = v
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
