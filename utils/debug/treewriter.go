// Package debug produces human readable dumps of nested structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultIndent = "  "

// TreeWriter accumulates indented lines, one level of indent per depth.
type TreeWriter struct {
	b      *strings.Builder
	indent string
}

// NewTreeWriter returns empty writer, two spaces are used when indent is
// empty.
func NewTreeWriter(indent string) *TreeWriter {
	if indent == "" {
		indent = defaultIndent
	}
	return &TreeWriter{b: &strings.Builder{}, indent: indent}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.b.WriteString(tw.indent)
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Field writes "label: value" with value quoted, so whitespace and control
// characters stay visible.
func (tw *TreeWriter) Field(depth int, label, value string) {
	tw.pad(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	tw.b.WriteString(strconv.Quote(value))
	tw.b.WriteByte('\n')
}
