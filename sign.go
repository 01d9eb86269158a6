// sign.go: sign analysis for arithmetic expressions.
//
// Abs, Sign and the Power rewrites need to know whether a value is
// positive, negative or zero without running a full numeric evaluation.
// structuralSign answers by case analysis over the arithmetic shapes
// (Plus, Times, Power, Abs, Exp, Log, Sqrt): a definite answer is one
// the shape itself proves, such as a product of positives or an even
// power of a nonzero real. toInexactValue is the fallback for shapes
// the case analysis cannot decide; its fold can underflow or cancel, so
// it is never allowed to claim an exact zero.
package rix

import "math"

// constantSign reads the sign of a registered numeric constant (Pi, E,
// MachinePrecision). ok is false for any other symbol.
func (s *Session) constantSign(sym Symbol) (int, bool) {
	b, ok := s.LookupBuiltin(sym)
	if !ok || b.NumericValue == nil {
		return 0, false
	}
	v := b.NumericValue(0, true)
	re, im := complexParts(v)
	if !im.IsZero() {
		return 0, false
	}
	rf, _ := realFloat(re)
	switch {
	case rf > 0:
		return 1, true
	case rf < 0:
		return -1, true
	}
	return 0, true
}

// isRealArithmetic reports whether e is built only from real numbers,
// numeric constants and arithmetic heads, so that it denotes a real
// value whether or not its sign is decidable.
func (s *Session) isRealArithmetic(e Expr) bool {
	switch t := e.(type) {
	case Integer, Rational, MachineReal, BigReal:
		return true
	case Complex:
		return false
	case Symbol:
		_, ok := s.constantSign(t)
		return ok
	case *Expression:
		head, ok := t.Head.(Symbol)
		if !ok {
			return false
		}
		switch {
		case head == SymbolPlus || head == SymbolTimes:
			for _, el := range t.Elements {
				if !s.isRealArithmetic(el) {
					return false
				}
			}
			return true
		case t.HasForm("Power", 2):
			base, exp := t.Elements[0], t.Elements[1]
			if _, isInt := exp.(Integer); isInt {
				return s.isRealArithmetic(base)
			}
			// A positive base keeps any real exponent on the real line.
			baseSign, known := s.structuralSign(base)
			return known && baseSign > 0 && s.isRealArithmetic(exp)
		case t.HasForm("Exp", 1), t.HasForm("Abs", 1):
			return s.isRealArithmetic(t.Elements[0])
		case t.HasForm("Sqrt", 1):
			argSign, known := s.structuralSign(t.Elements[0])
			return known && argSign >= 0
		case head == SymbolLog && (len(t.Elements) == 1 || len(t.Elements) == 2):
			if len(t.Elements) == 2 {
				baseSign, known := s.structuralSign(t.Elements[0])
				if !known || baseSign <= 0 {
					return false
				}
			}
			argSign, known := s.structuralSign(t.Elements[len(t.Elements)-1])
			return known && argSign > 0
		}
	}
	return false
}

// structuralSign proves the sign (-1, 0, +1) of a real arithmetic
// expression by case analysis, without numeric approximation. ok is
// false when no case decides the shape.
func (s *Session) structuralSign(e Expr) (int, bool) {
	switch t := e.(type) {
	case Integer:
		return t.Val.Sign(), true
	case Rational:
		return t.Val.Sign(), true
	case MachineReal:
		switch {
		case float64(t) > 0:
			return 1, true
		case float64(t) < 0:
			return -1, true
		}
		return 0, true
	case BigReal:
		return t.Val.Sign(), true
	case Symbol:
		return s.constantSign(t)
	case *Expression:
		head, ok := t.Head.(Symbol)
		if !ok {
			return 0, false
		}
		switch {
		case head == SymbolPlus:
			return s.signOfSum(t.Elements)
		case head == SymbolTimes:
			return s.signOfProduct(t.Elements)
		case t.HasForm("Power", 2):
			return s.signOfPower(t.Elements[0], t.Elements[1])
		case t.HasForm("Sqrt", 1):
			return s.signOfPower(t.Elements[0], NewRational(1, 2))
		case t.HasForm("Abs", 1):
			argSign, known := s.structuralSign(t.Elements[0])
			switch {
			case known && argSign != 0:
				return 1, true
			case known:
				return 0, true
			}
			return 0, false
		case t.HasForm("Exp", 1):
			// Exp maps the real line onto the positive reals.
			if s.isRealArithmetic(t.Elements[0]) {
				return 1, true
			}
			return 0, false
		case head == SymbolLog && len(t.Elements) == 1:
			return s.signOfLog(t.Elements[0])
		}
	}
	return 0, false
}

// signOfSum decides a sum whose terms all carry the same proven sign.
// Mixed-sign sums are left to the caller's fallback: by the time sign
// analysis runs, Plus has already collected its numeric terms, so a
// mixed sum has genuine symbolic cancellation this analysis cannot
// prove either way.
func (s *Session) signOfSum(terms []Expr) (int, bool) {
	sawPos, sawNeg := false, false
	for _, term := range terms {
		sign, known := s.structuralSign(term)
		if !known {
			return 0, false
		}
		switch {
		case sign > 0:
			sawPos = true
		case sign < 0:
			sawNeg = true
		}
		if sawPos && sawNeg {
			return 0, false
		}
	}
	switch {
	case sawPos:
		return 1, true
	case sawNeg:
		return -1, true
	}
	return 0, true
}

// signOfProduct multiplies the proven factor signs. Every factor must
// be decided: one unknown factor could absorb or flip the rest.
func (s *Session) signOfProduct(factors []Expr) (int, bool) {
	sign := 1
	sawZero := false
	for _, factor := range factors {
		fs, known := s.structuralSign(factor)
		if !known {
			return 0, false
		}
		if fs == 0 {
			sawZero = true
			continue
		}
		sign *= fs
	}
	if sawZero {
		return 0, true
	}
	return sign, true
}

func (s *Session) signOfPower(base, exp Expr) (int, bool) {
	baseSign, baseKnown := s.structuralSign(base)

	if n, isInt := exp.(Integer); isInt {
		even := n.Val.Bit(0) == 0
		switch {
		case !baseKnown:
			return 0, false
		case baseSign == 0:
			// 0^n is zero only for positive n; negative n diverges.
			if n.Val.Sign() > 0 {
				return 0, true
			}
			return 0, false
		case even:
			return 1, true
		}
		return baseSign, true
	}

	// Non-integer exponent: a positive base gives a positive real power
	// for any real exponent; a zero base needs a provably positive one.
	switch {
	case baseKnown && baseSign > 0 && s.isRealArithmetic(exp):
		return 1, true
	case baseKnown && baseSign == 0:
		if expSign, known := s.structuralSign(exp); known && expSign > 0 {
			return 0, true
		}
	}
	return 0, false
}

// signOfLog compares the argument against 1; Log is increasing with
// root Log[1] == 0.
func (s *Session) signOfLog(arg Expr) (int, bool) {
	argSign, known := s.structuralSign(arg)
	if !known || argSign <= 0 {
		return 0, false
	}
	var shifted Expr = NewExpr(SymbolPlus, arg, NewInt(-1))
	if _, isNum := arg.(Number); isNum {
		shifted = evalPlus([]Expr{arg, NewInt(-1)}, s)
	}
	return s.structuralSign(shifted)
}

// toInexactValue reduces an arithmetic expression to a machine-precision
// number. ok is false when the expression contains a non-arithmetic part
// (an unbound symbol, a non-numeric head).
func (s *Session) toInexactValue(e Expr) (Number, bool) {
	switch t := e.(type) {
	case Integer, Rational, MachineReal, BigReal, Complex:
		n := t.(Number)
		return n.Round(0), true
	case Symbol:
		if b, ok := s.LookupBuiltin(t); ok && b.NumericValue != nil {
			return b.NumericValue(0, true), true
		}
		return nil, false
	case *Expression:
		head, ok := t.Head.(Symbol)
		if !ok {
			return nil, false
		}
		args := make([]Number, len(t.Elements))
		for i, el := range t.Elements {
			n, ok := s.toInexactValue(el)
			if !ok {
				return nil, false
			}
			args[i] = n
		}
		switch head {
		case SymbolPlus:
			return AddNumbers(args...), true
		case SymbolTimes:
			return MultiplyNumbers(args...), true
		case SymbolPower:
			if len(args) != 2 {
				return nil, false
			}
			v, ok := PowerNumbers(args[0], args[1], s)
			if !ok {
				return nil, false
			}
			n, isNum := v.(Number)
			return n, isNum
		case SymbolAbs:
			if len(args) != 1 {
				return nil, false
			}
			re, im := complexParts(args[0])
			rf, _ := realFloat(re)
			imf, _ := realFloat(im)
			return MachineReal(math.Hypot(rf, imf)), true
		case SymbolExp:
			if len(args) != 1 {
				return nil, false
			}
			re, im := complexParts(args[0])
			if !im.IsZero() {
				return nil, false
			}
			rf, _ := realFloat(re)
			return MachineReal(math.Exp(rf)), true
		case SymbolLog:
			if len(args) != 1 {
				return nil, false
			}
			re, im := complexParts(args[0])
			if !im.IsZero() {
				return nil, false
			}
			rf, _ := realFloat(re)
			if rf <= 0 {
				return nil, false
			}
			return MachineReal(math.Log(rf)), true
		case SymbolSqrt:
			if len(args) != 1 {
				return nil, false
			}
			v, ok := PowerNumbers(args[0], MachineReal(0.5), s)
			if !ok {
				return nil, false
			}
			n, isNum := v.(Number)
			return n, isNum
		}
		return nil, false
	}
	return nil, false
}

// SignReal reports the sign (-1, 0, +1) of a real-valued arithmetic
// expression. Definite answers come from the structural case analysis;
// the machine fold is consulted only when that is inconclusive, and its
// result counts only when it lands clearly off zero (an underflowed or
// cancelled fold cannot tell tiny from zero).
func (s *Session) SignReal(e Expr) (int, bool) {
	if sign, ok := s.structuralSign(e); ok {
		return sign, ok
	}
	n, ok := s.toInexactValue(e)
	if !ok {
		return 0, false
	}
	re, im := complexParts(n)
	if !im.IsZero() {
		return 0, false
	}
	rf, _ := realFloat(re)
	switch {
	case rf > 0:
		return 1, true
	case rf < 0:
		return -1, true
	}
	return 0, false
}
