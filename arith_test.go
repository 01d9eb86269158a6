package rix

import (
	"math"
	"testing"
)

func bigRealFrom(t *testing.T, text string, prec float64) BigReal {
	t.Helper()
	br, err := NewBigReal(text, prec)
	if err != nil {
		t.Fatalf("NewBigReal(%q, %g): %v", text, prec, err)
	}
	return br
}

func Test_Arith_Machine_Contagion_Wins(t *testing.T) {
	got := AddNumbers(MachineReal(1.5), bigRealFrom(t, "2.5", 30))
	if !got.IsMachine() {
		t.Fatalf("machine operand must force a machine result, got %s", got)
	}
	if m, ok := got.(MachineReal); !ok || float64(m) != 4.0 {
		t.Fatalf("want 4., got %s", got)
	}
}

func Test_Arith_Minimum_Precision_Tags_The_Result(t *testing.T) {
	a := bigRealFrom(t, "1.0", 20)
	b := bigRealFrom(t, "2.0", 30)
	got := AddNumbers(a, b)
	p, ok := got.Precision()
	if !ok || p != 20 {
		t.Fatalf("want precision 20, got %v (%s)", p, got)
	}
}

func Test_Arith_Exact_Operands_Stay_Exact(t *testing.T) {
	got := AddNumbers(NewInt(1), NewRational(1, 2))
	wantForm(t, got, "Rational[3, 2]")
	got = MultiplyNumbers(NewRational(2, 3), NewRational(3, 2))
	wantForm(t, got, "1")
}

func Test_Arith_Exact_Complex_Product_Collapses_Real(t *testing.T) {
	a := NewComplex(NewInt(1), NewInt(2))
	b := NewComplex(NewInt(1), NewInt(-2))
	wantForm(t, MultiplyNumbers(a, b), "5")
}

func Test_Arith_Integer_Powers(t *testing.T) {
	s := NewSession()
	out, ok := PowerNumbers(NewInt(2), NewInt(10), s)
	if !ok {
		t.Fatalf("2^10 did not resolve")
	}
	wantForm(t, out, "1024")

	out, ok = PowerNumbers(NewInt(2), NewInt(-2), s)
	if !ok {
		t.Fatalf("2^-2 did not resolve")
	}
	wantForm(t, out, "Rational[1, 4]")
}

func Test_Arith_Zero_To_Negative_Power_Diagnosed(t *testing.T) {
	s := NewSession()
	out, ok := PowerNumbers(NewInt(0), NewInt(-1), s)
	if !ok {
		t.Fatalf("0^-1 must resolve to a sentinel")
	}
	wantForm(t, out, "ComplexInfinity")
	wantMessage(t, s, SymbolPower, "infy")
}

func Test_Arith_Perfect_Roots_Resolve_Exactly(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Sqrt[4]", "2")
	wantEval(t, s, "Power[27, Rational[1, 3]]", "3")
	wantEval(t, s, "Power[Rational[4, 9], Rational[1, 2]]", "Rational[2, 3]")
	// Irrational radicals stay symbolic.
	wantEval(t, s, "Sqrt[2]", "Power[2, Rational[1, 2]]")
}

func Test_Arith_Plus_Collects_Coefficients(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Plus[Times[2, x], Times[3, x]]", "Times[5, x]")
	wantEval(t, s, "Plus[x, x]", "Times[2, x]")
	wantEval(t, s, "Plus[a, Times[-1, a]]", "0")
	wantEval(t, s, "Plus[b, a, 2, 1]", "Plus[3, a, b]")
}

func Test_Arith_Times_Merges_Powers(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Times[x, x]", "Power[x, 2]")
	wantEval(t, s, "Times[Power[x, 2], Power[x, 3]]", "Power[x, 5]")
	wantEval(t, s, "Times[x, Power[x, 2]]", "Power[x, 3]")
	wantEval(t, s, "Times[0, x]", "0")
}

func Test_Arith_Machine_Zero_Does_Not_Collapse_Symbolic_Product(t *testing.T) {
	s := NewSession()
	// Only an exact zero annihilates; 0. keeps the machine tag visible.
	got := evalStr(t, s, "Times[0., x]")
	wantForm(t, got, "Times[0., x]")
}

func Test_Arith_Power_Identities(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Power[x, 0]", "1")
	wantEval(t, s, "Power[x, 1]", "x")
	wantEval(t, s, "Power[1, x]", "1")
}

func Test_Arith_Derived_Operators_Rewrite(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Subtract[7, 3]", "4")
	wantEval(t, s, "Minus[5]", "-5")
	wantEval(t, s, "Divide[1, 3]", "Rational[1, 3]")
}

func Test_Arith_Machine_Power(t *testing.T) {
	s := NewSession()
	got := evalStr(t, s, "Power[2., 0.5]")
	m, ok := got.(MachineReal)
	if !ok || math.Abs(float64(m)-math.Sqrt2) > 1e-15 {
		t.Fatalf("want sqrt(2) as machine real, got %s", got)
	}
}

func Test_Arith_Abs_And_Sign(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Abs[-3]", "3")
	wantEval(t, s, "Abs[Rational[-1, 2]]", "Rational[1, 2]")
	wantEval(t, s, "Abs[Complex[3, 4]]", "5")
	wantEval(t, s, "Sign[-7]", "-1")
	wantEval(t, s, "Sign[0]", "0")
	wantEval(t, s, "Sign[Plus[1, Sqrt[2]]]", "1")
}
