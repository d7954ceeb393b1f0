package css

import (
	"cssb/utils/debug"
)

// Tree returns readable multi-line dump of the node: one line per selector
// and one per part, nested selectors indented.
func (n Node) Tree() string {
	tw := debug.NewTreeWriter("")
	n.tree(tw, 0)
	return tw.String()
}

func (n Node) tree(tw *debug.TreeWriter, depth int) {
	switch {
	case n.IsComplex():
		tw.Line(depth, "Complex combinator=%q", n.Combinator)
		for _, side := range []*Node{n.Left, n.Right} {
			if side == nil {
				tw.Line(depth+1, "<missing>")
				continue
			}
			side.tree(tw, depth+1)
		}
	case n.Raw != "":
		tw.Field(depth, "Raw", n.Raw)
	default:
		tw.Line(depth, "Compound parts=%d", len(n.Parts))
		for _, p := range n.Parts {
			tw.Field(depth+1, p.Kind.String(), p.Value)
		}
	}
}
