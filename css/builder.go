package css

import (
	"slices"
	"strings"
)

// Compound is a selector without combinators, built part by part:
//
//	element#id.class[attr]:pseudo-class::pseudo-element
//
// Compound is immutable - every method returns a new value and the receiver
// can be safely reused as a base for several selectors. The zero value is an
// empty selector ready for use.
//
// The first rule violation is kept and turns all following calls into no-ops,
// it is reported by Stringify and Err.
type Compound struct {
	parts []Part
	// kinds in order of appearance, consecutive repetitions collapsed
	order []Kind
	err   error
}

// Element returns a new Compound with type selector (or "*") appended.
func (c Compound) Element(value string) Compound {
	return c.with(KindElement, value)
}

// ID returns a new Compound with "#value" appended.
func (c Compound) ID(value string) Compound {
	return c.with(KindId, value)
}

// Class returns a new Compound with ".value" appended.
func (c Compound) Class(value string) Compound {
	return c.with(KindClass, value)
}

// Attr returns a new Compound with "[value]" appended. Value is the text
// between brackets, e.g. `href$=".png"`.
func (c Compound) Attr(value string) Compound {
	return c.with(KindAttribute, value)
}

// PseudoClass returns a new Compound with ":value" appended.
func (c Compound) PseudoClass(value string) Compound {
	return c.with(KindPseudoClass, value)
}

// PseudoElement returns a new Compound with "::value" appended.
func (c Compound) PseudoElement(value string) Compound {
	return c.with(KindPseudoElement, value)
}

// Add appends a part of arbitrary kind. It is what all other builder methods
// use and is handy when kinds come from data rather than code.
func (c Compound) Add(kind Kind, value string) Compound {
	if c.err == nil && !kind.IsValid() {
		c.err = ErrInvalidKind
		return c
	}
	return c.with(kind, value)
}

func (c Compound) with(kind Kind, value string) Compound {
	if c.err != nil {
		return c
	}

	if kind.Singleton() && c.has(kind) {
		c.err = &DuplicatePartError{Kind: kind, Value: value}
		return c
	}

	order := c.order
	if last := len(order) - 1; last < 0 || order[last] != kind {
		order = append(slices.Clip(order), kind)
	}
	if at := misplaced(order); at > 0 {
		c.err = &InvalidOrderError{Kind: kind, After: order[at-1], Value: value}
		return c
	}

	return Compound{
		parts: append(slices.Clip(c.parts), Part{Kind: kind, Value: value}),
		order: order,
	}
}

// misplaced returns index of the first kind which comes before its
// predecessor in canonical order, or -1 when order is valid.
func misplaced(order []Kind) int {
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			return i
		}
	}
	return -1
}

func (c Compound) has(kind Kind) bool {
	return slices.ContainsFunc(c.parts, func(p Part) bool { return p.Kind == kind })
}

// Stringify returns CSS text of the selector: decorated parts concatenated in
// the order they were added. It does not modify the selector.
func (c Compound) Stringify() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	var sb strings.Builder
	for _, p := range c.parts {
		sb.WriteString(p.String())
	}
	return sb.String(), nil
}

// Err returns the first rule violation, if any.
func (c Compound) Err() error {
	return c.err
}

// Parts returns a copy of accumulated parts.
func (c Compound) Parts() []Part {
	return slices.Clone(c.parts)
}

// Empty returns true if no parts were added.
func (c Compound) Empty() bool {
	return len(c.parts) == 0
}

// Element starts a new selector with a type selector.
func Element(value string) Compound {
	return Compound{}.Element(value)
}

// ID starts a new selector with an id selector.
func ID(value string) Compound {
	return Compound{}.ID(value)
}

// Class starts a new selector with a class selector.
func Class(value string) Compound {
	return Compound{}.Class(value)
}

// Attr starts a new selector with an attribute selector.
func Attr(value string) Compound {
	return Compound{}.Attr(value)
}

// PseudoClass starts a new selector with a pseudo-class.
func PseudoClass(value string) Compound {
	return Compound{}.PseudoClass(value)
}

// PseudoElement starts a new selector with a pseudo-element.
func PseudoElement(value string) Compound {
	return Compound{}.PseudoElement(value)
}
