// Package layout defines the serialization format for computed tree
// diagrams: positioned nodes, drawn edges, and the initial viewport.
//
// The engine's internal types (pkg/core/tree) are optimized for computation;
// this package is the stable wire format consumed by renderers, the HTTP
// API, and the layout cache.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/family"
)

// Edge kinds in the serialization format.
const (
	EdgeKindParentChild = string(tree.EdgeParentChild)
	EdgeKindSpouse      = string(tree.EdgeSpouse)
)

// =============================================================================
// Diagram - Layout Serialization
// =============================================================================

// Diagram is the serialized output of one layout run.
// Nodes are ordered by person id and edges by edge id, so identical engine
// inputs serialize to identical bytes.
type Diagram struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// Node is one rendered person with resolved display fields, position, and
// hidden-relative flags.
type Node struct {
	ID         string  `json:"id"`
	GivenName  string  `json:"given_name,omitempty"`
	FamilyName string  `json:"family_name,omitempty"`
	Gender     string  `json:"gender,omitempty"`
	BirthDate  string  `json:"birth_date,omitempty"`
	DeathDate  string  `json:"death_date,omitempty"`
	Living     bool    `json:"living,omitempty"`
	Portrait   string  `json:"portrait,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Focal      bool    `json:"focal,omitempty"`

	HasHiddenParents  bool `json:"has_hidden_parents,omitempty"`
	HasHiddenChildren bool `json:"has_hidden_children,omitempty"`
	HasHiddenSpouses  bool `json:"has_hidden_spouses,omitempty"`
	HasHiddenSiblings bool `json:"has_hidden_siblings,omitempty"`
}

// Edge is one drawn connection. Spouse edges run left to right and carry the
// divorced flag; parent-child edges run parent→child.
type Edge struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Kind     string `json:"kind"`
	Divorced bool   `json:"divorced,omitempty"`
}

// Viewport is the initial camera: centered on the focal node at a default
// zoom.
type Viewport struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Zoom    float64 `json:"zoom"`
}

// =============================================================================
// Engine ↔ Serialization Conversion
// =============================================================================

// FromDiagram converts an engine diagram to the serialization format.
func FromDiagram(d *tree.Diagram) Diagram {
	out := Diagram{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
		Viewport: Viewport{
			CenterX: d.Viewport.CenterX,
			CenterY: d.Viewport.CenterY,
			Zoom:    d.Viewport.Zoom,
		},
	}

	for i, n := range d.Nodes {
		out.Nodes[i] = Node{
			ID:         n.Person.ID,
			GivenName:  n.Person.GivenName,
			FamilyName: n.Person.FamilyName,
			Gender:     string(n.Person.Gender),
			BirthDate:  formatDate(n.Person.BirthDate),
			DeathDate:  formatDate(n.Person.DeathDate),
			Living:     n.Person.Living,
			Portrait:   n.Person.Portrait,
			X:          n.X,
			Y:          n.Y,
			Focal:      n.Focal,

			HasHiddenParents:  n.Hidden.Parents,
			HasHiddenChildren: n.Hidden.Children,
			HasHiddenSpouses:  n.Hidden.Spouses,
			HasHiddenSiblings: n.Hidden.Siblings,
		}
	}

	for i, e := range d.Edges {
		out.Edges[i] = Edge{
			ID:       e.ID,
			From:     e.From,
			To:       e.To,
			Kind:     string(e.Kind),
			Divorced: e.Divorced,
		}
	}

	return out
}

// =============================================================================
// Diagram Serialization API
// =============================================================================

// MarshalDiagram converts an engine diagram to JSON bytes.
func MarshalDiagram(d *tree.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDiagramTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDiagramFile writes a diagram to a JSON file.
// The file is created with 0644 permissions.
func WriteDiagramFile(d *tree.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDiagramTo(d, f)
}

// WriteDiagram writes a diagram as JSON to an io.Writer.
func WriteDiagram(d *tree.Diagram, w io.Writer) error {
	return writeDiagramTo(d, w)
}

// UnmarshalDiagram deserializes JSON bytes to a Diagram.
func UnmarshalDiagram(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

// MarshalSerialized converts an already-serialized Diagram to JSON bytes.
// Used when caching previously exported layouts.
func MarshalSerialized(d Diagram) ([]byte, error) {
	return json.Marshal(d)
}

// WriteSerializedFile writes an already-serialized Diagram to a JSON file.
// The file is created with 0644 permissions.
func WriteSerializedFile(d Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeDiagramTo(d *tree.Diagram, w io.Writer) error {
	out := FromDiagram(d)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(family.DateLayout)
}
