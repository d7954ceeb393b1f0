package css

import (
	"fmt"
	"strings"
)

//go:generate go tool go-enum --marshal --names

// Kind of a selector part. Values are declared in the order parts must appear
// inside a compound selector.
// ENUM(element, id, class, attribute, pseudo-class, pseudo-element)
type Kind int

type decoration struct {
	prefix, suffix string
}

var decorations = [...]decoration{
	KindElement:       {},
	KindId:            {prefix: "#"},
	KindClass:         {prefix: "."},
	KindAttribute:     {prefix: "[", suffix: "]"},
	KindPseudoClass:   {prefix: ":"},
	KindPseudoElement: {prefix: "::"},
}

// Singleton reports whether at most one part of this kind may be present in
// a compound selector.
func (x Kind) Singleton() bool {
	switch x {
	case KindElement, KindId, KindPseudoElement:
		return true
	default:
		return false
	}
}

// Render decorates value according to the kind: "#" for id, "." for class,
// brackets for attribute and so on. Element values are returned as is.
func (x Kind) Render(value string) string {
	if !x.IsValid() {
		return value
	}
	d := decorations[x]
	return d.prefix + value + d.suffix
}

var kindAliases = map[string]Kind{
	"el":            KindElement,
	"attr":          KindAttribute,
	"pc":            KindPseudoClass,
	"pe":            KindPseudoElement,
	"pseudoclass":   KindPseudoClass,
	"pseudoelement": KindPseudoElement,
}

// LookupKind is a forgiving version of ParseKind used for user input: it is
// case insensitive and understands short aliases (el, attr, pc, pe) as well
// as camel case method names (pseudoClass).
func LookupKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, err := ParseKind(name); err == nil {
		return k, nil
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return Kind(0), fmt.Errorf("%s is %w", name, ErrInvalidKind)
}
