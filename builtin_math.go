// builtin_math.go: Plus, Times, Power and their derived forms, numeric
// constants, and the N / Precision / Accuracy surface.
//
// Plus and Times carry Flat+Orderless, so by the time their Eval runs
// the arguments are flattened and canonically sorted with the numeric
// prefix contiguous; the heavy lifting lives in arith.go. Minus,
// Subtract, Divide and Sqrt are pure rewrites into Plus/Times/Power.
package rix

import (
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

const (
	piDigits = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679"
	eDigits  = "2.7182818284590452353602874713526624977572470936999595749669676277240766303535475945713821785251664274"
)

// constantValue builds the NumericValue hook for a numeric constant from
// its machine value and a high-precision decimal literal.
func constantValue(machineV float64, digits string) func(d float64, machine bool) Number {
	return func(d float64, machine bool) Number {
		if machine || d <= 0 {
			return MachineReal(machineV)
		}
		br, err := NewBigReal(digits, d)
		if err != nil {
			return MachineReal(machineV)
		}
		return br
	}
}

func evalPlusBuiltin(expr *Expression, s *Session) EvalResult {
	switch len(expr.Elements) {
	case 0:
		return Ok(NewInt(0))
	case 1:
		return Ok(expr.Elements[0])
	}
	return Ok(evalPlus(expr.Elements, s))
}

func evalTimesBuiltin(expr *Expression, s *Session) EvalResult {
	switch len(expr.Elements) {
	case 0:
		return Ok(NewInt(1))
	case 1:
		return Ok(expr.Elements[0])
	}
	return Ok(evalTimes(expr.Elements, s))
}

func evalPower(expr *Expression, s *Session) EvalResult {
	switch {
	case len(expr.Elements) == 1:
		return Ok(expr.Elements[0])
	case len(expr.Elements) > 2:
		// Power[a, b, c] folds right: a^(b^c).
		rest := NewExpr(SymbolPower, expr.Elements[1:]...)
		return Ok(NewExpr(SymbolPower, expr.Elements[0], rest))
	case len(expr.Elements) < 2:
		return EvalResult{}
	}
	base, exp := expr.Elements[0], expr.Elements[1]

	if isExactOne(exp) {
		return Ok(base)
	}
	if n, ok := exp.(Integer); ok && n.IsZero() {
		if bn, isNum := base.(Number); isNum {
			out, applied := PowerNumbers(bn, n, s)
			if applied {
				return Ok(out)
			}
			return EvalResult{}
		}
		return Ok(NewInt(1))
	}
	if isExactOne(base) {
		return Ok(NewInt(1))
	}
	if bn, okB := base.(Number); okB {
		if en, okE := exp.(Number); okE {
			out, applied := PowerNumbers(bn, en, s)
			if applied {
				return Ok(out)
			}
			return EvalResult{}
		}
	}
	// (a^m)^k with integer k folds into a^(m k).
	if k, ok := exp.(Integer); ok {
		if inner, isPow := base.(*Expression); isPow && inner.HasForm("Power", 2) {
			exp := evalTimes([]Expr{inner.Elements[1], k}, s)
			return Ok(NewExpr(SymbolPower, inner.Elements[0], exp))
		}
	}
	return EvalResult{}
}

func isExactOne(e Expr) bool {
	n, ok := e.(Integer)
	return ok && n.Val.IsInt64() && n.Val.Int64() == 1
}

func evalMinus(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	return Ok(NewExpr(SymbolTimes, NewInt(-1), expr.Elements[0]))
}

func evalSubtract(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	neg := NewExpr(SymbolTimes, NewInt(-1), expr.Elements[1])
	return Ok(NewExpr(SymbolPlus, expr.Elements[0], neg))
}

func evalDivide(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	inv := NewExpr(SymbolPower, expr.Elements[1], NewInt(-1))
	return Ok(NewExpr(SymbolTimes, expr.Elements[0], inv))
}

func evalSqrt(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	return Ok(NewExpr(SymbolPower, expr.Elements[0], NewRational(1, 2)))
}

// absNumber computes |n| staying exact where n is exact. A gaussian
// magnitude that is not a perfect square comes back as a Sqrt form.
func absNumber(n Number, s *Session) Expr {
	switch t := n.(type) {
	case Integer:
		if t.Val.Sign() < 0 {
			return NewBigInt(new(big.Int).Neg(t.Val))
		}
		return t
	case Rational:
		if t.Val.Sign() < 0 {
			return ratNumber(new(big.Rat).Neg(t.Val))
		}
		return t
	case MachineReal:
		return MachineReal(math.Abs(float64(t)))
	case BigReal:
		var out apd.Decimal
		out.Abs(t.Val)
		return BigReal{Val: &out, Prec: t.Prec}
	case Complex:
		sq := AddNumbers(MultiplyNumbers(t.Re, t.Re), MultiplyNumbers(t.Im, t.Im))
		if v, ok := PowerNumbers(sq, NewRational(1, 2), s); ok {
			return v
		}
		return NewExpr(SymbolSqrt, sq)
	}
	return n
}

func evalAbs(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	arg := expr.Elements[0]
	if n, ok := arg.(Number); ok {
		return Ok(absNumber(n, s))
	}
	switch sign, known := s.SignReal(arg); {
	case known && sign >= 0:
		return Ok(arg)
	case known:
		return Ok(NewExpr(SymbolTimes, NewInt(-1), arg))
	}
	return EvalResult{}
}

func evalSign(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	arg := expr.Elements[0]
	if c, ok := arg.(Complex); ok && c.IsMachine() {
		v := toComplex128(c)
		if v != 0 {
			return Ok(fromComplex128(v / complex(math.Hypot(real(v), imag(v)), 0)))
		}
	}
	if sign, known := s.SignReal(arg); known {
		return Ok(NewInt(int64(sign)))
	}
	return EvalResult{}
}

func evalN(expr *Expression, s *Session) EvalResult {
	var precArg Expr = SymbolMachinePrec
	switch len(expr.Elements) {
	case 1:
	case 2:
		precArg = expr.Elements[1]
	default:
		return EvalResult{}
	}
	d, ok := s.resolvePrecision(precArg)
	if !ok {
		return EvalResult{}
	}
	return s.ApplyN(expr.Elements[0], d)
}

func evalPrecision(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	n, ok := expr.Elements[0].(Number)
	if !ok {
		return Ok(SymbolInfinity)
	}
	if n.IsMachine() {
		return Ok(SymbolMachinePrec)
	}
	if p, inexact := n.Precision(); inexact {
		return Ok(MachineReal(p))
	}
	return Ok(SymbolInfinity)
}

func evalAccuracy(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	n, ok := expr.Elements[0].(Number)
	if !ok {
		return Ok(SymbolInfinity)
	}
	if a, inexact := Accuracy(n); inexact {
		return Ok(MachineReal(a))
	}
	return Ok(SymbolInfinity)
}

func registerMathBuiltins(s *Session) {
	numericFn := AttrListable | AttrNumericFunction | AttrProtected
	for _, b := range []*Builtin{
		{Name: SymbolPlus, Attrs: AttrFlat | AttrOneIdentity | AttrOrderless | numericFn, Eval: evalPlusBuiltin},
		{Name: SymbolTimes, Attrs: AttrFlat | AttrOneIdentity | AttrOrderless | numericFn, Eval: evalTimesBuiltin},
		{Name: SymbolPower, Attrs: AttrOneIdentity | numericFn, Eval: evalPower},
		{Name: Symbol("Minus"), Attrs: numericFn, Eval: evalMinus},
		{Name: Symbol("Subtract"), Attrs: numericFn, Eval: evalSubtract},
		{Name: Symbol("Divide"), Attrs: numericFn, Eval: evalDivide},
		{Name: SymbolSqrt, Attrs: numericFn, Eval: evalSqrt},
		{Name: SymbolAbs, Attrs: numericFn, Eval: evalAbs},
		{Name: Symbol("Sign"), Attrs: numericFn, Eval: evalSign},

		{Name: SymbolN, Attrs: AttrProtected, Eval: evalN},
		{Name: Symbol("Precision"), Attrs: AttrProtected, Eval: evalPrecision},
		{Name: Symbol("Accuracy"), Attrs: AttrProtected, Eval: evalAccuracy},

		{Name: SymbolPi, Attrs: AttrConstant | AttrProtected | AttrReadProtected,
			NumericValue: constantValue(math.Pi, piDigits)},
		{Name: SymbolE, Attrs: AttrConstant | AttrProtected | AttrReadProtected,
			NumericValue: constantValue(math.E, eDigits)},
		{Name: SymbolMachinePrec, Attrs: AttrConstant | AttrProtected,
			NumericValue: func(d float64, machine bool) Number { return MachineReal(machinePrecisionDigits) }},
		{Name: SymbolIndeterminate, Attrs: AttrProtected},
		{Name: SymbolInfinity, Attrs: AttrConstant | AttrProtected | AttrReadProtected},
		{Name: SymbolComplexInfinity, Attrs: AttrProtected},
	} {
		s.Register(b)
	}
}
