package css

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePart is returned when element, id or pseudo-element is
	// specified more than once for the same compound selector.
	ErrDuplicatePart = errors.New("element, id and pseudo-element should not occur more than one time inside the selector")
	// ErrInvalidOrder is returned when a part is added after a part of a
	// kind that must follow it.
	ErrInvalidOrder = errors.New("selector parts should be arranged in the following order: element, id, class, attribute, pseudo-class, pseudo-element")
	// ErrMissingSelector is returned when combining with a nil selector.
	ErrMissingSelector = errors.New("missing selector")
	// ErrMalformedNode is returned for selector descriptions which mix
	// node variants or have parts without kind.
	ErrMalformedNode = errors.New("malformed selector description")
)

// DuplicatePartError describes a rejected repetition of a singleton kind.
type DuplicatePartError struct {
	Kind  Kind
	Value string
}

func (e *DuplicatePartError) Error() string {
	return fmt.Sprintf("duplicate %s %q: %v", e.Kind, e.Value, ErrDuplicatePart)
}

func (e *DuplicatePartError) Unwrap() error {
	return ErrDuplicatePart
}

// InvalidOrderError describes a part added after a kind it must precede.
type InvalidOrderError struct {
	Kind  Kind // kind being added
	After Kind // kind already present which Kind must not follow
	Value string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("%s %q after %s: %v", e.Kind, e.Value, e.After, ErrInvalidOrder)
}

func (e *InvalidOrderError) Unwrap() error {
	return ErrInvalidOrder
}

// SyntaxError is returned by Parser for text which could not be tokenized or
// does not form a selector.
type SyntaxError struct {
	Offset int // byte offset into parsed text
	Msg    string
	Err    error // builder error, if the text was syntactically fine
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("selector at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("selector at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
