// form.go: reading expressions from their textual full form.
//
// The reader accepts exactly the notation the atoms and Expression
// String methods emit, plus the {...} list sugar: head[arg, ...] chains,
// symbols, quoted strings, integers, and reals with an optional backtick
// precision mark (1.5`30 is a 30-digit real, a bare backtick or none is
// machine precision). Rational[n, d] and Complex[re, im] literals
// collapse to their atom forms on read, so a round trip through text
// preserves atom identity.
package rix

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// ReadFullForm parses one expression from src.
func ReadFullForm(src string) (Expr, error) {
	p := &formParser{src: src}
	p.skipSpace()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errf("unexpected %q after expression", p.rest())
	}
	return e, nil
}

// EvalString reads full-form source and evaluates it in the session.
func EvalString(src string, s *Session) (Expr, error) {
	e, err := ReadFullForm(src)
	if err != nil {
		return nil, err
	}
	return Evaluate(e, s), nil
}

type formParser struct {
	src string
	pos int
}

func (p *formParser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("full form at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *formParser) rest() string {
	r := p.src[p.pos:]
	if len(r) > 12 {
		r = r[:12]
	}
	return r
}

func (p *formParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *formParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *formParser) parseExpr() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	// Application chains: f[1][x].
	for {
		p.skipSpace()
		if p.peek() != '[' {
			return e, nil
		}
		p.pos++
		args, err := p.parseArgs(']')
		if err != nil {
			return nil, err
		}
		e = collapseAtomForm(NewExpr(e, args...))
	}
}

func (p *formParser) parsePrimary() (Expr, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '{':
		p.pos++
		args, err := p.parseArgs('}')
		if err != nil {
			return nil, err
		}
		return ListOf(args...), nil
	case c == '(':
		p.pos++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errf("expected ) before %q", p.rest())
		}
		p.pos++
		return e, nil
	case c == '"':
		return p.parseString()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case isSymbolStart(c):
		return p.parseSymbol(), nil
	}
	return nil, p.errf("unexpected %q", p.rest())
}

func (p *formParser) parseArgs(close byte) ([]Expr, error) {
	var args []Expr
	p.skipSpace()
	if p.peek() == close {
		p.pos++
		return args, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case close:
			p.pos++
			return args, nil
		default:
			return nil, p.errf("expected , or %c before %q", close, p.rest())
		}
	}
}

func (p *formParser) parseString() (Expr, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return String(b.String()), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"':
				b.WriteByte(p.src[p.pos])
			default:
				return nil, p.errf("unknown escape \\%c", p.src[p.pos])
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return nil, p.errf("unterminated string")
}

func isSymbolStart(c byte) bool {
	return c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSymbolChar(c byte) bool {
	return isSymbolStart(c) || (c >= '0' && c <= '9')
}

func (p *formParser) parseSymbol() Symbol {
	start := p.pos
	for p.pos < len(p.src) && isSymbolChar(p.src[p.pos]) {
		p.pos++
	}
	return Symbol(p.src[start:p.pos])
}

func (p *formParser) parseNumber() (Expr, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
		digits++
	}
	isReal := false
	if p.peek() == '.' {
		isReal = true
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			digits++
		}
	}
	if digits == 0 {
		p.pos = start
		return nil, p.errf("malformed number %q", p.rest())
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		mark := p.pos
		p.pos++
		if c := p.peek(); c == '-' || c == '+' {
			p.pos++
		}
		expDigits := 0
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			expDigits++
		}
		if expDigits == 0 {
			p.pos = mark
		} else {
			isReal = true
		}
	}
	text := p.src[start:p.pos]

	// Optional backtick precision mark; digits after the backtick give an
	// arbitrary precision, a bare backtick means machine precision.
	if p.peek() == '`' {
		p.pos++
		precStart := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] == '.' || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
			p.pos++
		}
		precText := p.src[precStart:p.pos]
		if precText == "" {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, p.errf("malformed real %q", text)
			}
			return MachineReal(f), nil
		}
		prec, err := strconv.ParseFloat(precText, 64)
		if err != nil || prec <= 0 {
			return nil, p.errf("malformed precision mark %q", precText)
		}
		br, err := NewBigReal(text, prec)
		if err != nil {
			return nil, p.errf("malformed real %q", text)
		}
		return br, nil
	}

	if isReal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errf("malformed real %q", text)
		}
		return MachineReal(f), nil
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, p.errf("malformed integer %q", text)
	}
	return NewBigInt(v), nil
}

// collapseAtomForm folds Rational[n, d] and Complex[re, im] literal
// forms into their atoms, so reading full form round-trips.
func collapseAtomForm(e *Expression) Expr {
	switch {
	case e.HasForm("Rational", 2):
		n, okN := e.Elements[0].(Integer)
		d, okD := e.Elements[1].(Integer)
		if okN && okD && d.Val.Sign() != 0 {
			return ratNumber(new(big.Rat).SetFrac(n.Val, d.Val))
		}
	case e.HasForm("Complex", 2):
		re, okRe := e.Elements[0].(Number)
		im, okIm := e.Elements[1].(Number)
		if okRe && okIm {
			return NewComplex(re, im)
		}
	}
	return e
}
