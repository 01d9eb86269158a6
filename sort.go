// sort.go: the canonical total order used by Orderless normalization.
//
// The order is documented, deterministic, and independent of evaluation
// state, so any permutation of an Orderless argument list sorts to the same
// tree and therefore rewrites the same way:
//
//	1. real numbers, by numeric value; ties by kind
//	   (Integer < Rational < MachineReal < BigReal, then by precision)
//	2. complex numbers, by real then imaginary part
//	3. strings, by value
//	4. symbols, by qualified name
//	5. compound expressions, by head, then length, then elements
//
// Numbers sorting first keeps the numeric operands of Plus/Times contiguous
// at the front, which the arithmetic kernel relies on.
package rix

import (
	"math/big"
	"sort"
)

// kind ranks for tie-breaking real numbers that compare numerically equal.
func numberKindRank(n Number) int {
	switch n.(type) {
	case Integer:
		return 0
	case Rational:
		return 1
	case MachineReal:
		return 2
	case BigReal:
		return 3
	}
	return 4
}

func classRank(e Expr) int {
	switch e.(type) {
	case Integer, Rational, MachineReal, BigReal:
		return 0
	case Complex:
		return 1
	case String:
		return 2
	case Symbol:
		return 3
	case *Expression:
		return 4
	}
	return 5
}

// numericValue converts any real number to a big.Float for cross-kind
// comparison. 128 bits is enough to order machine reals exactly and big
// reals up to the precisions the tower tracks by default.
func numericValue(n Number) *big.Float {
	f := new(big.Float).SetPrec(128)
	switch t := n.(type) {
	case Integer:
		f.SetInt(t.Val)
	case Rational:
		f.SetRat(t.Val)
	case MachineReal:
		f.SetFloat64(float64(t))
	case BigReal:
		f.SetString(t.Val.Text('g'))
	}
	return f
}

func compareReal(a, b Number) int {
	if c := numericValue(a).Cmp(numericValue(b)); c != 0 {
		return c
	}
	ra, rb := numberKindRank(a), numberKindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if ba, ok := a.(BigReal); ok {
		bb := b.(BigReal)
		switch {
		case ba.Prec < bb.Prec:
			return -1
		case ba.Prec > bb.Prec:
			return 1
		}
	}
	return 0
}

// compareExpr is the canonical order: negative when a sorts before b.
func compareExpr(a, b Expr) int {
	ca, cb := classRank(a), classRank(b)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}
	switch ta := a.(type) {
	case Integer, Rational, MachineReal, BigReal:
		return compareReal(a.(Number), b.(Number))
	case Complex:
		tb := b.(Complex)
		if c := compareReal(ta.Re, tb.Re); c != 0 {
			return c
		}
		return compareReal(ta.Im, tb.Im)
	case String:
		tb := b.(String)
		switch {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
		return 0
	case Symbol:
		tb := b.(Symbol)
		switch {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
		return 0
	case *Expression:
		tb := b.(*Expression)
		if c := compareExpr(ta.Head, tb.Head); c != 0 {
			return c
		}
		if len(ta.Elements) != len(tb.Elements) {
			if len(ta.Elements) < len(tb.Elements) {
				return -1
			}
			return 1
		}
		for i := range ta.Elements {
			if c := compareExpr(ta.Elements[i], tb.Elements[i]); c != 0 {
				return c
			}
		}
		return 0
	}
	return 0
}

// sortElements sorts a slice of expressions into canonical order in place.
// The sort is stable so that SameQ-equal elements keep their relative order.
func sortElements(elements []Expr) {
	sort.SliceStable(elements, func(i, j int) bool {
		return compareExpr(elements[i], elements[j]) < 0
	})
}
