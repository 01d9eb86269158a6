// arith.go: the precision-propagating arithmetic kernel.
//
// AddNumbers and MultiplyNumbers reduce purely numeric operand lists under
// the contagion rule (atoms.go): any machine operand forces a hardware
// reduction tagged machine precision; otherwise inexact operands force an
// arbitrary-precision reduction at the minimum operand precision; all-exact
// input stays exact.
//
// evalPlus and evalTimes are the eval-time bodies of Plus and Times: the
// caller passes canonically sorted arguments (numbers contiguous at the
// front), the numeric prefix is reduced, and the symbolic remainder is
// recombined — Plus merges terms differing only by a numeric coefficient,
// Times merges adjacent powers of an identical base.
package rix

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/cockroachdb/apd/v3"
)

// segregateNumbers splits a canonically sorted argument list into its
// numeric prefix and the symbolic remainder.
func segregateNumbers(items []Expr) ([]Number, []Expr) {
	for i, item := range items {
		if _, ok := item.(Number); !ok {
			nums := make([]Number, i)
			for j := 0; j < i; j++ {
				nums[j] = items[j].(Number)
			}
			return nums, items[i:]
		}
	}
	nums := make([]Number, len(items))
	for i, item := range items {
		nums[i] = item.(Number)
	}
	return nums, nil
}

func isExactInt(n Number, v int64) bool {
	i, ok := n.(Integer)
	return ok && i.Val.IsInt64() && i.Val.Int64() == v
}

// minPrecOf returns the minimum working precision among the inexact
// operands; ok is false when every operand is exact.
func minPrecOf(numbers []Number) (float64, bool) {
	prec, found := 0.0, false
	for _, n := range numbers {
		if p, ok := n.Precision(); ok {
			if !found || p < prec {
				prec, found = p, true
			}
		}
	}
	return prec, found
}

func anyMachine(numbers []Number) bool {
	for _, n := range numbers {
		if n.IsMachine() {
			return true
		}
	}
	return false
}

func anyComplex(numbers []Number) bool {
	for _, n := range numbers {
		if _, ok := n.(Complex); ok {
			return true
		}
	}
	return false
}

func toComplex128(n Number) complex128 {
	re, im := complexParts(n)
	rf, _ := realFloat(re)
	imf, _ := realFloat(im)
	return complex(rf, imf)
}

func fromComplex128(v complex128) Number {
	if imag(v) == 0 {
		return MachineReal(real(v))
	}
	return Complex{Re: MachineReal(real(v)), Im: MachineReal(imag(v))}
}

// AddNumbers reduces a purely numeric sum under the contagion rule.
func AddNumbers(numbers ...Number) Number {
	if len(numbers) == 0 {
		return NewInt(0)
	}
	if len(numbers) == 1 {
		return numbers[0]
	}
	if anyMachine(numbers) {
		sum := complex(0, 0)
		for _, n := range numbers {
			sum += toComplex128(n)
		}
		return fromComplex128(sum)
	}
	if prec, inexact := minPrecOf(numbers); inexact {
		ctx := decimalCtx(prec)
		var re, im apd.Decimal
		hasIm := anyComplex(numbers)
		for _, n := range numbers {
			nre, nim := complexParts(n)
			d, _ := realDecimal(nre, ctx)
			ctx.Add(&re, &re, d)
			if hasIm {
				d, _ = realDecimal(nim, ctx)
				ctx.Add(&im, &im, d)
			}
		}
		if !hasIm {
			return BigReal{Val: &re, Prec: prec}
		}
		return Complex{
			Re: BigReal{Val: &re, Prec: prec},
			Im: BigReal{Val: &im, Prec: prec},
		}
	}
	// Exact path: component-wise rational sums.
	re, im := new(big.Rat), new(big.Rat)
	for _, n := range numbers {
		nre, nim := complexParts(n)
		r, _ := exactRat(nre)
		re.Add(re, r)
		r, _ = exactRat(nim)
		im.Add(im, r)
	}
	if im.Sign() == 0 {
		return ratNumber(re)
	}
	return NewComplex(ratNumber(re), ratNumber(im))
}

// MultiplyNumbers reduces a purely numeric product under the contagion
// rule.
func MultiplyNumbers(numbers ...Number) Number {
	if len(numbers) == 0 {
		return NewInt(1)
	}
	if len(numbers) == 1 {
		return numbers[0]
	}
	if anyMachine(numbers) {
		prod := complex(1, 0)
		for _, n := range numbers {
			prod *= toComplex128(n)
		}
		return fromComplex128(prod)
	}
	if prec, inexact := minPrecOf(numbers); inexact {
		ctx := decimalCtx(prec)
		re := apd.New(1, 0)
		im := apd.New(0, 0)
		for _, n := range numbers {
			nre, nim := complexParts(n)
			dre, _ := realDecimal(nre, ctx)
			dim, _ := realDecimal(nim, ctx)
			// (re + im i)(dre + dim i)
			var t1, t2, nr, ni apd.Decimal
			ctx.Mul(&t1, re, dre)
			ctx.Mul(&t2, im, dim)
			ctx.Sub(&nr, &t1, &t2)
			ctx.Mul(&t1, re, dim)
			ctx.Mul(&t2, im, dre)
			ctx.Add(&ni, &t1, &t2)
			re.Set(&nr)
			im.Set(&ni)
		}
		if im.IsZero() && !anyComplex(numbers) {
			return BigReal{Val: re, Prec: prec}
		}
		return Complex{
			Re: BigReal{Val: re, Prec: prec},
			Im: BigReal{Val: im, Prec: prec},
		}
	}
	// Exact path: rational complex product.
	re, im := big.NewRat(1, 1), new(big.Rat)
	var t1, t2 big.Rat
	for _, n := range numbers {
		nre, nim := complexParts(n)
		rre, _ := exactRat(nre)
		rim, _ := exactRat(nim)
		t1.Mul(re, rre)
		t2.Mul(im, rim)
		nr := new(big.Rat).Sub(&t1, &t2)
		t1.Mul(re, rim)
		t2.Mul(im, rre)
		ni := new(big.Rat).Add(&t1, &t2)
		re, im = nr, ni
	}
	if im.Sign() == 0 {
		return ratNumber(re)
	}
	return NewComplex(ratNumber(re), ratNumber(im))
}

// powNumberInt raises any number to an exact integer power by binary
// exponentiation; k must be >= 0.
func powNumberInt(base Number, k int64) Number {
	result := Number(NewInt(1))
	acc := base
	for k > 0 {
		if k&1 == 1 {
			result = MultiplyNumbers(result, acc)
		}
		acc = MultiplyNumbers(acc, acc)
		k >>= 1
	}
	return result
}

// PowerNumbers resolves base^exp for numeric operands. ok is false when
// the power must stay symbolic (e.g. 2^(1/2) with exact operands).
func PowerNumbers(base, exp Number, s *Session) (Expr, bool) {
	if k, isInt := exp.(Integer); isInt && k.Val.IsInt64() {
		kv := k.Val.Int64()
		switch {
		case kv == 0:
			if base.IsZero() {
				s.Message(SymbolPower, "infy", NewExpr(SymbolPower, NewInt(0), NewInt(0)))
				return SymbolIndeterminate, true
			}
			return NewInt(1), true
		case kv > 0:
			return powNumberInt(base, kv), true
		default:
			if base.IsZero() {
				s.Message(SymbolPower, "infy", NewExpr(SymbolPower, NewInt(0), k))
				return SymbolComplexInfinity, true
			}
			inv, ok := invertNumber(base)
			if !ok {
				return nil, false
			}
			return powNumberInt(inv, -kv), true
		}
	}

	// Non-integer exponent: perfect rational roots resolve exactly, any
	// other exact radical stays symbolic.
	_, baseInexact := base.Precision()
	_, expInexact := exp.Precision()
	if !baseInexact && !expInexact {
		if out, ok := exactRationalPower(base, exp); ok {
			return out, true
		}
		return nil, false
	}
	if base.IsMachine() || exp.IsMachine() {
		b, e := toComplex128(base), toComplex128(exp)
		if imag(b) == 0 && imag(e) == 0 && real(b) >= 0 {
			return MachineReal(math.Pow(real(b), real(e))), true
		}
		return fromComplex128(cmplx.Pow(b, e)), true
	}
	// Arbitrary-precision path; apd only handles positive real bases for
	// fractional exponents.
	prec, _ := minPrecOf([]Number{base, exp})
	if prec == 0 {
		prec = machinePrecisionDigits
	}
	bre, bim := complexParts(base)
	ere, eim := complexParts(exp)
	if !bim.IsZero() || !eim.IsZero() {
		return nil, false
	}
	ctx := decimalCtx(prec)
	b, _ := realDecimal(bre, ctx)
	e, _ := realDecimal(ere, ctx)
	if b.Sign() < 0 {
		return nil, false
	}
	var out apd.Decimal
	if _, err := ctx.Pow(&out, b, e); err != nil {
		return nil, false
	}
	return BigReal{Val: &out, Prec: prec}, true
}

// exactRationalPower resolves base^(p/q) for exact real operands when
// the q-th root of base is itself rational.
func exactRationalPower(base, exp Number) (Number, bool) {
	r, isRat := exp.(Rational)
	if !isRat {
		return nil, false
	}
	if !r.Val.Num().IsInt64() || !r.Val.Denom().IsInt64() {
		return nil, false
	}
	p, q := r.Val.Num().Int64(), r.Val.Denom().Int64()
	b, real := exactRat(base)
	if !real {
		return nil, false
	}
	neg := b.Sign() < 0
	if neg {
		if q%2 == 0 {
			return nil, false
		}
		b = new(big.Rat).Neg(b)
	}
	root, ok := exactRoot(b, q)
	if !ok {
		return nil, false
	}
	if neg {
		root.Neg(root)
	}
	out := powNumberInt(ratNumber(new(big.Rat).Set(root)), abs64(p))
	if p < 0 {
		inv, ok := invertNumber(out)
		if !ok {
			return nil, false
		}
		return inv, true
	}
	return out, true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// exactRoot returns the rational r with r^n == x, for nonnegative x.
func exactRoot(x *big.Rat, n int64) (*big.Rat, bool) {
	num, okN := integerRoot(x.Num(), n)
	if !okN {
		return nil, false
	}
	den, okD := integerRoot(x.Denom(), n)
	if !okD {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

// integerRoot finds the exact integer n-th root of x >= 0 by bisection,
// or reports that none exists.
func integerRoot(x *big.Int, n int64) (*big.Int, bool) {
	one := big.NewInt(1)
	if x.Sign() == 0 || x.Cmp(one) == 0 {
		return new(big.Int).Set(x), true
	}
	e := big.NewInt(n)
	lo, hi := big.NewInt(1), new(big.Int).Set(x)
	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		switch new(big.Int).Exp(mid, e, nil).Cmp(x) {
		case 0:
			return mid, true
		case -1:
			lo = mid.Add(mid, one)
		default:
			hi = mid.Sub(mid, one)
		}
	}
	return nil, false
}

// invertNumber returns 1/n for nonzero n, staying within n's kind.
func invertNumber(n Number) (Number, bool) {
	switch t := n.(type) {
	case Integer:
		return ratNumber(new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Set(t.Val))), true
	case Rational:
		return ratNumber(new(big.Rat).Inv(t.Val)), true
	case MachineReal:
		return MachineReal(1 / float64(t)), true
	case BigReal:
		ctx := decimalCtx(t.Prec)
		one := apd.New(1, 0)
		var out apd.Decimal
		ctx.Quo(&out, one, t.Val)
		return BigReal{Val: &out, Prec: t.Prec}, true
	case Complex:
		// 1/(a+bi) = (a-bi)/(a^2+b^2)
		conj := Complex{Re: t.Re, Im: MultiplyNumbers(NewInt(-1), t.Im)}
		norm := AddNumbers(MultiplyNumbers(t.Re, t.Re), MultiplyNumbers(t.Im, t.Im))
		inv, ok := invertNumber(norm)
		if !ok {
			return nil, false
		}
		return MultiplyNumbers(conj, inv), true
	}
	return nil, false
}

// evalPlus is the eval-time body of Plus over canonically sorted
// arguments: reduce the numeric prefix, then walk the symbolic remainder
// merging terms that differ only by a leading numeric coefficient.
func evalPlus(items []Expr, s *Session) Expr {
	numbers, rest := segregateNumbers(items)
	number := Number(NewInt(0))
	if len(numbers) > 0 {
		number = AddNumbers(numbers...)
	}

	var elements []Expr
	var lastItem Expr
	var lastCount Number

	appendLast := func() {
		if lastItem == nil {
			return
		}
		if isExactInt(lastCount, 1) {
			elements = append(elements, lastItem)
			return
		}
		if t, ok := lastItem.(*Expression); ok && t.HasForm("Times", -1) {
			args := append([]Expr{lastCount}, t.Elements...)
			elements = append(elements, NewExpr(SymbolTimes, args...))
			return
		}
		elements = append(elements, NewExpr(SymbolTimes, lastCount, lastItem))
	}

	for _, item := range rest {
		var count Number
		var body Expr
		if t, ok := item.(*Expression); ok && t.HasForm("Times", -1) {
			for i, el := range t.Elements {
				num, isNum := el.(Number)
				if !isNum {
					continue
				}
				count = num
				others := make([]Expr, 0, len(t.Elements)-1)
				others = append(others, t.Elements[:i]...)
				others = append(others, t.Elements[i+1:]...)
				if len(others) == 1 {
					body = others[0]
				} else {
					sortElements(others)
					body = NewExpr(SymbolTimes, others...)
				}
				break
			}
		}
		if count == nil {
			count = NewInt(1)
			body = item
		}
		if lastItem != nil && lastItem.SameQ(body) {
			lastCount = AddNumbers(lastCount, count)
			continue
		}
		appendLast()
		lastItem, lastCount = body, count
	}
	appendLast()

	if len(elements) == 0 {
		return number
	}
	if !isExactInt(number, 0) {
		elements = append([]Expr{number}, elements...)
	} else if len(elements) == 1 {
		return elements[0]
	}
	sortElements(elements)
	return NewExpr(SymbolPlus, elements...)
}

// evalTimes is the eval-time body of Times over canonically sorted
// arguments: reduce the numeric prefix, merge adjacent powers of an
// identical base, and distribute an exact -1 over a leading Plus.
func evalTimes(items []Expr, s *Session) Expr {
	numbers, symbolic := segregateNumbers(items)

	var elements []Expr
	for _, item := range symbolic {
		if sym, ok := item.(Symbol); ok && sym == SymbolIndeterminate {
			return sym
		}
		if len(elements) > 0 {
			prev := elements[len(elements)-1]
			merged := mergeFactors(prev, item, s)
			if merged != nil {
				elements[len(elements)-1] = merged
				continue
			}
		}
		elements = append(elements, item)
	}

	number := Number(NewInt(1))
	if len(numbers) > 0 {
		number = MultiplyNumbers(numbers...)
	}

	if len(elements) == 0 || isExactInt(number, 0) {
		return number
	}
	if isExactInt(number, -1) {
		if p, ok := elements[0].(*Expression); ok && p.HasForm("Plus", -1) {
			negated := make([]Expr, len(p.Elements))
			for i, el := range p.Elements {
				negated[i] = NewExpr(SymbolTimes, NewInt(-1), el)
			}
			elements[0] = NewExpr(p.Head, negated...)
			number = NewInt(1)
		}
	}
	if !isExactInt(number, 1) {
		elements = append([]Expr{number}, elements...)
	}
	if len(elements) == 1 {
		return elements[0]
	}
	sortElements(elements)
	return NewExpr(SymbolTimes, elements...)
}

// mergeFactors combines two adjacent factors into one power when they
// share a base; nil when they do not merge.
func mergeFactors(prev, item Expr, s *Session) Expr {
	if item.SameQ(prev) {
		return NewExpr(SymbolPower, prev, NewInt(2))
	}
	itemPow, itemIsPow := item.(*Expression)
	prevPow, prevIsPow := prev.(*Expression)
	itemIsPow = itemIsPow && itemPow.HasForm("Power", 2)
	prevIsPow = prevIsPow && prevPow.HasForm("Power", 2)

	switch {
	case itemIsPow && prevIsPow && itemPow.Elements[0].SameQ(prevPow.Elements[0]):
		exp := evalPlus([]Expr{itemPow.Elements[1], prevPow.Elements[1]}, s)
		return NewExpr(SymbolPower, itemPow.Elements[0], exp)
	case itemIsPow && itemPow.Elements[0].SameQ(prev):
		exp := evalPlus([]Expr{NewInt(1), itemPow.Elements[1]}, s)
		return NewExpr(SymbolPower, itemPow.Elements[0], exp)
	case prevIsPow && prevPow.Elements[0].SameQ(item):
		exp := evalPlus([]Expr{NewInt(1), prevPow.Elements[1]}, s)
		return NewExpr(SymbolPower, item, exp)
	}
	return nil
}
