package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	lexer "github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Parser turns selector text into Selectors. Every compound selector is
// replayed through the builder, so parsed text obeys exactly the same rules
// as selectors constructed in code.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new selector parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses a single (possibly complex) selector. Combinators are folded
// to the right: "a + b ~ c" is Combine(a, "+", Combine(b, "~", c)).
func (p *Parser) Parse(text string) (Selector, error) {
	cur, err := p.tokenize(text)
	if err != nil {
		return nil, err
	}

	sel, err := p.parseComplex(cur)
	if err == nil {
		if t, ok := cur.peek(); ok {
			err = &SyntaxError{Offset: t.off, Msg: fmt.Sprintf("unexpected %q, use ParseList for selector groups", t.data)}
		}
	}
	if err != nil {
		p.log.Debug("Selector rejected", zap.String("selector", text), zap.Error(err))
		return nil, err
	}
	p.log.Debug("Parsed selector", zap.String("selector", text))
	return sel, nil
}

// ParseList parses comma separated group of selectors. All failures are
// collected, returned error may be split with multierr.Errors. Selectors
// which were parsed successfully are returned even if some others failed.
func (p *Parser) ParseList(text string) ([]Selector, error) {
	cur, err := p.tokenize(text)
	if err != nil {
		return nil, err
	}

	var (
		sels []Selector
		errs error
	)
	for {
		sel, err := p.parseComplex(cur)
		if err != nil {
			p.log.Debug("Selector rejected", zap.String("selector", text), zap.Error(err))
			errs = multierr.Append(errs, err)
			cur.skipToComma()
		} else {
			sels = append(sels, sel)
		}
		if _, ok := cur.peek(); !ok {
			break
		}
		// parseComplex and skipToComma both stop on comma
		cur.pos++
	}
	p.log.Debug("Parsed selector list", zap.String("selectors", text), zap.Int("valid", len(sels)), zap.Int("invalid", len(multierr.Errors(errs))))
	return sels, errs
}

type token struct {
	tt   lexer.TokenType
	data string
	off  int
}

func (t token) delim(c byte) bool {
	return t.tt == lexer.DelimToken && len(t.data) == 1 && t.data[0] == c
}

type cursor struct {
	tokens []token
	pos    int
	end    int
}

func (p *Parser) tokenize(text string) (*cursor, error) {
	l := lexer.NewLexer(parse.NewInput(strings.NewReader(text)))

	cur := &cursor{end: len(text)}
	off := 0
	for {
		tt, data := l.Next()
		if tt == lexer.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &SyntaxError{Offset: off, Msg: err.Error()}
			}
			return cur, nil
		}
		// comments are dropped, surrounding whitespace still separates selectors
		if tt != lexer.CommentToken {
			cur.tokens = append(cur.tokens, token{tt: tt, data: string(data), off: off})
		}
		off += len(data)
	}
}

func (c *cursor) peek() (token, bool) {
	if c.pos >= len(c.tokens) {
		return token{}, false
	}
	return c.tokens[c.pos], true
}

func (c *cursor) offset() int {
	if t, ok := c.peek(); ok {
		return t.off
	}
	return c.end
}

func (c *cursor) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: c.offset(), Msg: fmt.Sprintf(format, args...)}
}

// skipSpace reports whether any whitespace was skipped.
func (c *cursor) skipSpace() bool {
	skipped := false
	for t, ok := c.peek(); ok && t.tt == lexer.WhitespaceToken; t, ok = c.peek() {
		c.pos++
		skipped = true
	}
	return skipped
}

// skipToComma advances to the next comma outside of brackets and
// parentheses (or to the end of input).
func (c *cursor) skipToComma() {
	depth := 0
	for t, ok := c.peek(); ok; t, ok = c.peek() {
		switch t.tt {
		case lexer.LeftBracketToken, lexer.LeftParenthesisToken, lexer.FunctionToken:
			depth++
		case lexer.RightBracketToken, lexer.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
		case lexer.CommaToken:
			if depth == 0 {
				return
			}
		}
		c.pos++
	}
}

func (p *Parser) parseComplex(cur *cursor) (Selector, error) {
	var (
		compounds   []Selector
		combinators []string
	)

	cur.skipSpace()
	for {
		c, err := p.parseCompound(cur)
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, c)

		spaced := cur.skipSpace()
		t, ok := cur.peek()
		if !ok || t.tt == lexer.CommaToken {
			break
		}

		comb := Descendant
		switch {
		case t.delim('>'), t.delim('+'), t.delim('~'):
			comb = t.data
			cur.pos++
			cur.skipSpace()
		case !spaced:
			return nil, cur.errorf("unexpected %q", t.data)
		}
		combinators = append(combinators, comb)
	}

	sel := compounds[len(compounds)-1]
	for i := len(compounds) - 2; i >= 0; i-- {
		sel = Combine(compounds[i], combinators[i], sel)
	}
	return sel, nil
}

func (p *Parser) parseCompound(cur *cursor) (Compound, error) {
	var c Compound

loop:
	for t, ok := cur.peek(); ok; t, ok = cur.peek() {
		switch {
		case t.tt == lexer.IdentToken:
			cur.pos++
			c = c.Element(t.data)

		case t.delim('*'):
			cur.pos++
			c = c.Element("*")

		case t.tt == lexer.HashToken:
			cur.pos++
			c = c.ID(strings.TrimPrefix(t.data, "#"))

		case t.delim('.'):
			cur.pos++
			name, ok := cur.peek()
			if !ok || name.tt != lexer.IdentToken {
				return Compound{}, cur.errorf("expected class name")
			}
			cur.pos++
			c = c.Class(name.data)

		case t.tt == lexer.LeftBracketToken:
			value, err := cur.attribute()
			if err != nil {
				return Compound{}, err
			}
			c = c.Attr(value)

		case t.tt == lexer.ColonToken:
			cur.pos++
			kind := KindPseudoClass
			if n, ok := cur.peek(); ok && n.tt == lexer.ColonToken {
				cur.pos++
				kind = KindPseudoElement
			}
			value, err := cur.pseudo()
			if err != nil {
				return Compound{}, err
			}
			c = c.Add(kind, value)

		default:
			break loop
		}

		if c.err != nil {
			return Compound{}, &SyntaxError{Offset: t.off, Err: c.err}
		}
	}

	if c.Empty() {
		if t, ok := cur.peek(); ok {
			return Compound{}, cur.errorf("expected selector, got %q", t.data)
		}
		return Compound{}, cur.errorf("expected selector")
	}
	return c, nil
}

// attribute consumes "[...]" and returns text between brackets.
func (c *cursor) attribute() (string, error) {
	start := c.offset()
	c.pos++

	var sb strings.Builder
	for t, ok := c.peek(); ok; t, ok = c.peek() {
		c.pos++
		switch t.tt {
		case lexer.RightBracketToken:
			value := strings.TrimSpace(sb.String())
			if value == "" {
				return "", &SyntaxError{Offset: start, Msg: "empty attribute selector"}
			}
			return value, nil
		case lexer.BadStringToken:
			return "", &SyntaxError{Offset: t.off, Msg: "unterminated string"}
		}
		sb.WriteString(t.data)
	}
	return "", &SyntaxError{Offset: start, Msg: "unterminated attribute selector"}
}

// pseudo consumes pseudo-class or pseudo-element name, including functional
// notation with its arguments, e.g. "nth-of-type(2n + 1)".
func (c *cursor) pseudo() (string, error) {
	t, ok := c.peek()
	if !ok {
		return "", c.errorf("expected pseudo-class or pseudo-element name")
	}

	switch t.tt {
	case lexer.IdentToken:
		c.pos++
		return t.data, nil
	case lexer.FunctionToken:
	default:
		return "", c.errorf("expected pseudo-class or pseudo-element name, got %q", t.data)
	}

	start := t.off
	c.pos++

	var sb strings.Builder
	sb.WriteString(t.data)
	depth := 1
	for t, ok := c.peek(); ok; t, ok = c.peek() {
		c.pos++
		switch t.tt {
		case lexer.FunctionToken, lexer.LeftParenthesisToken:
			depth++
		case lexer.RightParenthesisToken:
			depth--
		case lexer.BadStringToken:
			return "", &SyntaxError{Offset: t.off, Msg: "unterminated string"}
		}
		sb.WriteString(t.data)
		if depth == 0 {
			return sb.String(), nil
		}
	}
	return "", &SyntaxError{Offset: start, Msg: "unterminated function"}
}
