package css

import (
	"errors"
	"fmt"
	"strings"
)

// Complex is two selectors joined by a combinator. Either side may itself be
// a Complex, so arbitrary chains can be built:
//
//	Combine(Element("div"), "+", Combine(Element("table"), "~", Element("tr")))
type Complex struct {
	Left       Selector
	Combinator string
	Right      Selector
}

// Combine joins left and right with combinator. Combinator is not validated,
// see Descendant, Child, NextSibling and SubsequentSibling for the ones CSS
// defines.
func Combine(left Selector, combinator string, right Selector) Complex {
	return Complex{Left: left, Combinator: combinator, Right: right}
}

// Stringify returns "left combinator right" with single spaces around the
// combinator. Errors of either side are returned as is.
func (c Complex) Stringify() (string, error) {
	if c.Left == nil || c.Right == nil {
		return "", ErrMissingSelector
	}
	left, err := c.Left.Stringify()
	if err != nil {
		return "", err
	}
	right, err := c.Right.Stringify()
	if err != nil {
		return "", err
	}
	return left + " " + c.Combinator + " " + right, nil
}

// Describe converts selector into serializable Node. Selectors implemented
// outside of this package are described by their text.
func Describe(sel Selector) (Node, error) {
	switch s := sel.(type) {
	case nil:
		return Node{}, ErrMissingSelector
	case Compound:
		if s.err != nil {
			return Node{}, s.err
		}
		return Node{Parts: s.Parts()}, nil
	case *Compound:
		if s == nil {
			return Node{}, ErrMissingSelector
		}
		return Describe(*s)
	case Complex:
		left, err := Describe(s.Left)
		if err != nil {
			return Node{}, err
		}
		right, err := Describe(s.Right)
		if err != nil {
			return Node{}, err
		}
		return Node{Left: &left, Combinator: s.Combinator, Right: &right}, nil
	case *Complex:
		if s == nil {
			return Node{}, ErrMissingSelector
		}
		return Describe(*s)
	default:
		raw, err := sel.Stringify()
		if err != nil {
			return Node{}, err
		}
		return Node{Raw: raw}, nil
	}
}

var errRawNode = errors.New("raw selector text cannot be rebuilt, parse it instead")

// Build reconstructs selector from its description replaying all parts
// through the builder, so descriptions violating selector rules are rejected
// with the same errors.
func Build(n Node) (Selector, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	switch {
	case n.IsComplex():
		if n.Left == nil || n.Right == nil {
			return nil, fmt.Errorf("combinator %q: %w", n.Combinator, ErrMissingSelector)
		}
		left, err := Build(*n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Build(*n.Right)
		if err != nil {
			return nil, err
		}
		return Combine(left, n.Combinator, right), nil
	case n.Raw != "":
		return nil, errRawNode
	}

	var c Compound
	for _, p := range n.Parts {
		c = c.Add(p.Kind, p.Value)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// check makes sure node is exactly one of compound, complex or raw.
func (n Node) check() error {
	var set []string
	if len(n.Parts) > 0 {
		set = append(set, "parts")
	}
	if n.IsComplex() {
		set = append(set, "left/right")
	}
	if n.Raw != "" {
		set = append(set, "raw")
	}
	if len(set) > 1 {
		return fmt.Errorf("node has %s at the same time: %w", strings.Join(set, " and "), ErrMalformedNode)
	}
	return nil
}
