package css_test

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cssb/css"
)

func TestParser_Compound(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sel, err := p.Parse("div#main.a.b[x]:hover::before")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c, ok := sel.(css.Compound)
	if !ok {
		t.Fatalf("Parse() returned %T, want css.Compound", sel)
	}
	want := []css.Part{
		{Kind: css.KindElement, Value: "div"},
		{Kind: css.KindId, Value: "main"},
		{Kind: css.KindClass, Value: "a"},
		{Kind: css.KindClass, Value: "b"},
		{Kind: css.KindAttribute, Value: "x"},
		{Kind: css.KindPseudoClass, Value: "hover"},
		{Kind: css.KindPseudoElement, Value: "before"},
	}
	parts := c.Parts()
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(parts), len(want))
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d = %+v, want %+v", i, parts[i], want[i])
		}
	}
}

func TestParser_Normalizes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"p", "p"},
		{"*", "*"},
		{"*.note", "*.note"},
		{"a>b", "a > b"},
		{"a > b", "a > b"},
		{"a+b", "a + b"},
		{"a ~ b", "a ~ b"},
		{"ul li", "ul   li"},
		{"  ul \n\t li  ", "ul   li"},
		{"/* nav */ nav a", "nav   a"},
		{`a[href$=".png"]:focus`, `a[href$=".png"]:focus`},
		{`input[type="text" i]`, `input[type="text" i]`},
		{"[ lang ]", "[lang]"},
		{"li:nth-child(2n + 1)", "li:nth-child(2n + 1)"},
		{"a:not(.b, .c)", "a:not(.b, .c)"},
		{"p::first-line", "p::first-line"},
		{"#main.container.editable", "#main.container.editable"},
	}

	p := css.NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got := mustStringify(t, sel); got != tt.want {
				t.Errorf("Parse(%q).Stringify() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParser_FoldsRight(t *testing.T) {
	p := css.NewParser(nil)

	sel, err := p.Parse("a + b ~ c")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	top, ok := sel.(css.Complex)
	if !ok {
		t.Fatalf("Parse() returned %T, want css.Complex", sel)
	}
	if top.Combinator != "+" {
		t.Errorf("top combinator = %q, want %q", top.Combinator, "+")
	}
	if got := mustStringify(t, top.Left); got != "a" {
		t.Errorf("left = %q, want %q", got, "a")
	}
	right, ok := top.Right.(css.Complex)
	if !ok {
		t.Fatalf("right is %T, want css.Complex", top.Right)
	}
	if right.Combinator != "~" {
		t.Errorf("nested combinator = %q, want %q", right.Combinator, "~")
	}
}

func TestParser_RoundTrip(t *testing.T) {
	built := []css.Selector{
		css.Element("div").ID("main").Class("a").Class("b").Attr("x").PseudoClass("hover").PseudoElement("before"),
		css.Combine(
			css.Element("div").ID("main").Class("container").Class("draggable"),
			"+",
			css.Combine(
				css.Element("table").ID("data"),
				"~",
				css.Combine(
					css.Element("tr").PseudoClass("nth-of-type(even)"),
					" ",
					css.Element("td").PseudoClass("nth-of-type(even)"),
				),
			),
		),
		css.Combine(css.Element("a").Attr(`href^="https"`), ">", css.PseudoElement("after")),
	}

	p := css.NewParser(nil)
	for _, sel := range built {
		want := mustStringify(t, sel)
		t.Run(want, func(t *testing.T) {
			parsed, err := p.Parse(want)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := mustStringify(t, parsed); got != want {
				t.Errorf("Parse(Stringify()) = %q, want %q", got, want)
			}
		})
	}
}

func TestParser_RuleViolations(t *testing.T) {
	tests := []struct {
		input  string
		want   error
		offset int
	}{
		{"#a#b", css.ErrDuplicatePart, 2},
		{"div span", nil, 0},
		{"p::before::after", css.ErrDuplicatePart, 9},
		{".a#b", css.ErrInvalidOrder, 2},
		{"a[x].b", css.ErrInvalidOrder, 4},
		{"a > .x:hover[y]", css.ErrInvalidOrder, 12},
	}

	p := css.NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := p.Parse(tt.input)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			var se *css.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if se.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", se.Offset, tt.offset)
			}
		})
	}
}

func TestParser_SyntaxErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		".",
		"a >",
		"> a",
		"a,b",
		"[x",
		"[]",
		`[x="y]`,
		"a:",
		"a:not(b",
		"a!",
		"a | b",
	}

	p := css.NewParser(nil)
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := p.Parse(input)
			var se *css.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error = %v, want *SyntaxError", input, err)
			}
			if se.Offset < 0 || se.Offset > len(input) {
				t.Errorf("Offset = %d out of input bounds", se.Offset)
			}
		})
	}
}

func TestParser_ParseList(t *testing.T) {
	p := css.NewParser(nil)

	sels, err := p.ParseList("h1, h2 > .title, a:not(.b, .c)")
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}

	want := []string{"h1", "h2 > .title", "a:not(.b, .c)"}
	if len(sels) != len(want) {
		t.Fatalf("ParseList() returned %d selectors, want %d", len(sels), len(want))
	}
	for i, sel := range sels {
		if got := mustStringify(t, sel); got != want[i] {
			t.Errorf("selector %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestParser_ParseListCollectsErrors(t *testing.T) {
	p := css.NewParser(nil)

	sels, err := p.ParseList("#a#b, p, .c#d:is(x, y), ")
	if err == nil {
		t.Fatal("ParseList() expected error")
	}

	errs := multierr.Errors(err)
	if len(errs) != 3 {
		t.Fatalf("ParseList() returned %d errors, want 3: %v", len(errs), err)
	}
	if !errors.Is(errs[0], css.ErrDuplicatePart) {
		t.Errorf("error 0 = %v, want %v", errs[0], css.ErrDuplicatePart)
	}
	if !errors.Is(errs[1], css.ErrInvalidOrder) {
		t.Errorf("error 1 = %v, want %v", errs[1], css.ErrInvalidOrder)
	}

	if len(sels) != 1 {
		t.Fatalf("ParseList() returned %d selectors, want 1", len(sels))
	}
	if got := mustStringify(t, sels[0]); got != "p" {
		t.Errorf("selector = %q, want %q", got, "p")
	}
}

func TestParser_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := css.NewParser(zap.New(core))

	if _, err := p.Parse("a.b"); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := p.Parse("a.b#c"); err == nil {
		t.Fatal("Parse() expected error")
	}

	parsed := logs.FilterMessage("Parsed selector").All()
	if len(parsed) != 1 {
		t.Fatalf("got %d 'Parsed selector' entries, want 1", len(parsed))
	}
	if parsed[0].LoggerName != "css-parser" {
		t.Errorf("LoggerName = %q, want %q", parsed[0].LoggerName, "css-parser")
	}
	if logs.FilterMessage("Selector rejected").Len() != 1 {
		t.Errorf("expected one 'Selector rejected' entry")
	}
}
