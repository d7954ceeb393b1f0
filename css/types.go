package css

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Selector is anything which can produce CSS selector text.
type Selector interface {
	Stringify() (string, error)
}

// Part is a single fragment of a compound selector (e.g. ".foo", "#bar",
// ":hover"). Value is stored undecorated and is never validated.
type Part struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// String returns the decorated CSS text of the part.
func (p Part) String() string {
	return p.Kind.Render(p.Value)
}

// UnmarshalJSON requires "kind" to be present, zero Kind is a valid element
// and must not be produced by omission.
func (p *Part) UnmarshalJSON(data []byte) error {
	var aux struct {
		Kind  *Kind  `json:"kind"`
		Value string `json:"value"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&aux); err != nil {
		return err
	}
	if aux.Kind == nil {
		return fmt.Errorf("part %q has no kind: %w", aux.Value, ErrMalformedNode)
	}
	p.Kind, p.Value = *aux.Kind, aux.Value
	return nil
}

// Combinators understood by CSS. Combine accepts any string, these are only
// provided for convenience.
const (
	Descendant        = " "
	Child             = ">"
	NextSibling       = "+"
	SubsequentSibling = "~"
)

// Node is a serializable description of a selector tree. Exactly one of
// Parts, Left/Right or Raw is set.
type Node struct {
	Parts      []Part `json:"parts,omitempty"`
	Left       *Node  `json:"left,omitempty"`
	Combinator string `json:"combinator,omitempty"`
	Right      *Node  `json:"right,omitempty"`
	Raw        string `json:"raw,omitempty"` // selector implementation not known to this package
}

// IsComplex returns true if node joins two selectors with a combinator.
func (n Node) IsComplex() bool {
	return n.Left != nil || n.Right != nil
}
