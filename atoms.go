// atoms.go: leaf values and the number tower.
//
// The tower has five numeric kinds with distinct precision behavior:
//
//	Integer     — arbitrary precision, exact (math/big.Int)
//	Rational    — arbitrary precision, exact (math/big.Rat)
//	MachineReal — hardware float64, "machine precision"
//	BigReal     — arbitrary-precision decimal with an explicit working
//	              precision in decimal digits (cockroachdb/apd)
//	Complex     — a pair of real-valued numbers; an exact zero imaginary
//	              part is never constructed (NewComplex collapses it)
//
// Precision contagion rule: any machine-precision operand makes a whole
// reduction machine precision; otherwise the result carries the minimum
// precision of the inexact operands; all-exact stays exact. The arithmetic
// kernel (arith.go) relies on the Number interface here and nothing else.
package rix

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Machine precision in decimal digits: 53 bits / log2(10).
const machinePrecisionDigits = 15.954589770191003

// Accuracy associated with a machine-precision zero:
// -log10(smallest normalized float64) + machine precision.
var zeroMachineAccuracy = -math.Log10(2.2250738585072014e-308) + machinePrecisionDigits

// Number is implemented by the five numeric atom kinds.
type Number interface {
	Expr
	// IsZero reports an exact or floating zero value.
	IsZero() bool
	// IsMachine reports machine-precision contagion.
	IsMachine() bool
	// Precision returns the working precision in decimal digits.
	// ok is false for exact numbers, which have no precision.
	Precision() (prec float64, ok bool)
	// Round forces the number inexact: d <= 0 requests machine precision,
	// otherwise d decimal digits. Machine reals never regain digits.
	Round(d float64) Number
}

// decimalCtx returns an apd context carrying d digits of working precision.
func decimalCtx(d float64) *apd.Context {
	digits := uint32(math.Ceil(d))
	if digits < 1 {
		digits = 1
	}
	return apd.BaseContext.WithPrecision(digits)
}

/* ---------- Symbol ---------- */

// Symbol is a qualified name. Attributes and rules of a symbol live in the
// session's Definitions table, never on the value itself.
type Symbol string

func (s Symbol) SameQ(other Expr) bool {
	o, ok := other.(Symbol)
	return ok && s == o
}

func (s Symbol) String() string { return string(s) }

/* ---------- String ---------- */

// String is a string atom.
type String string

func (s String) SameQ(other Expr) bool {
	o, ok := other.(String)
	return ok && s == o
}

func (s String) String() string { return strconv.Quote(string(s)) }

/* ---------- Integer ---------- */

// Integer is an exact arbitrary-precision integer.
type Integer struct{ Val *big.Int }

// NewInt builds an Integer from a machine integer.
func NewInt(v int64) Integer { return Integer{big.NewInt(v)} }

// NewBigInt wraps an existing big.Int (not copied).
func NewBigInt(v *big.Int) Integer { return Integer{v} }

func (n Integer) SameQ(other Expr) bool {
	o, ok := other.(Integer)
	return ok && n.Val.Cmp(o.Val) == 0
}

func (n Integer) String() string              { return n.Val.String() }
func (n Integer) IsZero() bool                { return n.Val.Sign() == 0 }
func (n Integer) IsMachine() bool             { return false }
func (n Integer) Precision() (float64, bool)  { return 0, false }
func (n Integer) Int64() (int64, bool)        { return n.Val.Int64(), n.Val.IsInt64() }

func (n Integer) Round(d float64) Number {
	if d <= 0 {
		f, _ := new(big.Float).SetInt(n.Val).Float64()
		return MachineReal(f)
	}
	ctx := decimalCtx(d)
	var out apd.Decimal
	ctx.SetString(&out, n.Val.String())
	return BigReal{Val: &out, Prec: d}
}

/* ---------- Rational ---------- */

// Rational is an exact quotient of integers, always in lowest terms with a
// positive denominator (big.Rat's invariant).
type Rational struct{ Val *big.Rat }

// NewRational builds num/den, collapsing to Integer when the reduced
// denominator is one.
func NewRational(num, den int64) Number {
	return ratNumber(big.NewRat(num, den))
}

// ratNumber wraps a big.Rat, collapsing integral values to Integer.
func ratNumber(r *big.Rat) Number {
	if r.IsInt() {
		return Integer{new(big.Int).Set(r.Num())}
	}
	return Rational{r}
}

func (n Rational) SameQ(other Expr) bool {
	o, ok := other.(Rational)
	return ok && n.Val.Cmp(o.Val) == 0
}

func (n Rational) String() string {
	return "Rational[" + n.Val.Num().String() + ", " + n.Val.Denom().String() + "]"
}

func (n Rational) IsZero() bool               { return n.Val.Sign() == 0 }
func (n Rational) IsMachine() bool            { return false }
func (n Rational) Precision() (float64, bool) { return 0, false }

func (n Rational) Round(d float64) Number {
	if d <= 0 {
		f, _ := n.Val.Float64()
		return MachineReal(f)
	}
	ctx := decimalCtx(d)
	var num, den, out apd.Decimal
	ctx.SetString(&num, n.Val.Num().String())
	ctx.SetString(&den, n.Val.Denom().String())
	ctx.Quo(&out, &num, &den)
	return BigReal{Val: &out, Prec: d}
}

/* ---------- MachineReal ---------- */

// MachineReal is a fixed-width hardware float.
type MachineReal float64

func (n MachineReal) SameQ(other Expr) bool {
	o, ok := other.(MachineReal)
	return ok && float64(n) == float64(o)
}

func (n MachineReal) String() string {
	s := strconv.FormatFloat(float64(n), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

func (n MachineReal) IsZero() bool               { return float64(n) == 0 }
func (n MachineReal) IsMachine() bool            { return true }
func (n MachineReal) Precision() (float64, bool) { return machinePrecisionDigits, true }

// Round on a machine real is the identity: lost digits cannot come back,
// and machine precision never silently upgrades to a tracked precision.
func (n MachineReal) Round(d float64) Number { return n }

/* ---------- BigReal ---------- */

// BigReal is an arbitrary-precision real tagged with its working precision
// in decimal digits.
type BigReal struct {
	Val  *apd.Decimal
	Prec float64
}

// NewBigReal parses a decimal literal at d digits of working precision.
func NewBigReal(text string, d float64) (BigReal, error) {
	ctx := decimalCtx(d)
	var out apd.Decimal
	if _, _, err := ctx.SetString(&out, text); err != nil {
		return BigReal{}, fmt.Errorf("invalid real literal %q: %w", text, err)
	}
	return BigReal{Val: &out, Prec: d}, nil
}

func (n BigReal) SameQ(other Expr) bool {
	o, ok := other.(BigReal)
	return ok && n.Prec == o.Prec && n.Val.Cmp(o.Val) == 0
}

func (n BigReal) String() string {
	return n.Val.Text('g') + "`" + strconv.FormatFloat(n.Prec, 'g', -1, 64)
}

func (n BigReal) IsZero() bool               { return n.Val.IsZero() }
func (n BigReal) IsMachine() bool            { return false }
func (n BigReal) Precision() (float64, bool) { return n.Prec, true }

// Float64 returns the nearest hardware float.
func (n BigReal) Float64() float64 {
	f, _ := n.Val.Float64()
	return f
}

func (n BigReal) Round(d float64) Number {
	if d <= 0 {
		return MachineReal(n.Float64())
	}
	// Rounding never invents digits: precision can only drop.
	if d > n.Prec {
		d = n.Prec
	}
	ctx := decimalCtx(d)
	var out apd.Decimal
	ctx.Round(&out, n.Val)
	return BigReal{Val: &out, Prec: d}
}

/* ---------- Complex ---------- */

// Complex is a pair of real-valued numbers. Invariant: Im is never an
// exact zero; use NewComplex which collapses that case to Re.
type Complex struct {
	Re, Im Number
}

// NewComplex builds re + im*I, collapsing an exactly-zero imaginary part
// to the real part alone (the imaginary zero must be exact: 1 + 0.*I keeps
// its inexactness and stays Complex).
func NewComplex(re, im Number) Number {
	if _, exact := im.Precision(); !exact && !im.IsMachine() && im.IsZero() {
		return re
	}
	return Complex{Re: re, Im: im}
}

func (n Complex) SameQ(other Expr) bool {
	o, ok := other.(Complex)
	return ok && n.Re.SameQ(o.Re) && n.Im.SameQ(o.Im)
}

func (n Complex) String() string {
	return "Complex[" + n.Re.String() + ", " + n.Im.String() + "]"
}

func (n Complex) IsZero() bool { return n.Re.IsZero() && n.Im.IsZero() }

func (n Complex) IsMachine() bool { return n.Re.IsMachine() || n.Im.IsMachine() }

func (n Complex) Precision() (float64, bool) {
	rp, rok := n.Re.Precision()
	ip, iok := n.Im.Precision()
	switch {
	case rok && iok:
		return math.Min(rp, ip), true
	case rok:
		return rp, true
	case iok:
		return ip, true
	}
	return 0, false
}

func (n Complex) Round(d float64) Number {
	return NewComplex(n.Re.Round(d), n.Im.Round(d))
}

/* ---------- conversions shared by the kernel ---------- */

// exactRat returns the exact rational value of n, when it has one.
func exactRat(n Number) (*big.Rat, bool) {
	switch t := n.(type) {
	case Integer:
		return new(big.Rat).SetInt(t.Val), true
	case Rational:
		return t.Val, true
	}
	return nil, false
}

// realFloat returns the float64 value of a real-valued number.
func realFloat(n Number) (float64, bool) {
	switch t := n.(type) {
	case Integer:
		f, _ := new(big.Float).SetInt(t.Val).Float64()
		return f, true
	case Rational:
		f, _ := t.Val.Float64()
		return f, true
	case MachineReal:
		return float64(t), true
	case BigReal:
		return t.Float64(), true
	}
	return 0, false
}

// realDecimal converts a real-valued number into an apd decimal under ctx.
func realDecimal(n Number, ctx *apd.Context) (*apd.Decimal, bool) {
	var out apd.Decimal
	switch t := n.(type) {
	case Integer:
		ctx.SetString(&out, t.Val.String())
	case Rational:
		var num, den apd.Decimal
		ctx.SetString(&num, t.Val.Num().String())
		ctx.SetString(&den, t.Val.Denom().String())
		ctx.Quo(&out, &num, &den)
	case MachineReal:
		out.SetFloat64(float64(t))
	case BigReal:
		ctx.Round(&out, t.Val)
	default:
		return nil, false
	}
	return &out, true
}

// complexParts splits any number into real and imaginary parts.
func complexParts(n Number) (re, im Number) {
	if c, ok := n.(Complex); ok {
		return c.Re, c.Im
	}
	return n, NewInt(0)
}

// Accuracy returns the number of reliable digits to the right of the
// decimal point, when the number is inexact.
func Accuracy(n Number) (float64, bool) {
	prec, ok := n.Precision()
	if !ok {
		return 0, false
	}
	if n.IsZero() {
		if n.IsMachine() {
			return zeroMachineAccuracy, true
		}
		return prec, true
	}
	f, ok := realFloat(n)
	if !ok { // complex: use the magnitude of the parts
		re, im := complexParts(n)
		rf, _ := realFloat(re)
		imf, _ := realFloat(im)
		f = math.Hypot(rf, imf)
	}
	return prec - math.Log10(math.Abs(f)), true
}
