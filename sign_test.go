package rix

import "testing"

func signOf(t *testing.T, s *Session, src string) (int, bool) {
	t.Helper()
	return s.SignReal(readForm(t, src))
}

func wantSign(t *testing.T, s *Session, src string, want int) {
	t.Helper()
	got, known := signOf(t, s, src)
	if !known {
		t.Fatalf("sign of %s undecided, want %d", src, want)
	}
	if got != want {
		t.Fatalf("sign of %s: want %d, got %d", src, want, got)
	}
}

func wantSignUnknown(t *testing.T, s *Session, src string) {
	t.Helper()
	if got, known := signOf(t, s, src); known {
		t.Fatalf("sign of %s: want undecided, got %d", src, got)
	}
}

func Test_Sign_Product_Of_Positives_Survives_Underflow(t *testing.T) {
	// The product is far below the machine range, so a numeric fold sees
	// zero; the shape still proves it positive.
	s := NewSession()
	wantSign(t, s, "Times[Power[10, -400], Power[2, Rational[1, 2]]]", 1)
	wantEval(t, s, "Sign[Times[Power[10, -400], Power[2, Rational[1, 2]]]]", "1")
}

func Test_Sign_Negative_Factor_Flips_Product(t *testing.T) {
	s := NewSession()
	wantSign(t, s, "Times[-1, Power[10, -400], Power[2, Rational[1, 2]]]", -1)
	wantSign(t, s, "Times[-2, -3, Pi]", 1)
	wantSign(t, s, "Times[0, Pi]", 0)
}

func Test_Sign_Power_Cases(t *testing.T) {
	s := NewSession()
	wantSign(t, s, "Power[-3, 2]", 1)
	wantSign(t, s, "Power[-3, 3]", -1)
	wantSign(t, s, "Power[-2, -3]", -1)
	wantSign(t, s, "Power[0, 2]", 0)
	wantSignUnknown(t, s, "Power[0, -2]")
	wantSign(t, s, "Power[2, Rational[1, 2]]", 1)
	wantSign(t, s, "Sqrt[5]", 1)
	wantSignUnknown(t, s, "Power[-2, Rational[1, 2]]")
	wantEval(t, s, "Sign[Power[Plus[1, Pi], 2]]", "1")
}

func Test_Sign_Exp_Is_Positive_On_The_Real_Line(t *testing.T) {
	s := NewSession()
	wantSign(t, s, "Exp[Times[-1, Pi]]", 1)
	wantSignUnknown(t, s, "Exp[x]")
	wantEval(t, s, "Sign[Exp[Times[-1, Pi]]]", "1")
}

func Test_Sign_Log_Compares_Against_One(t *testing.T) {
	s := NewSession()
	wantSign(t, s, "Log[2]", 1)
	wantSign(t, s, "Log[1]", 0)
	wantSign(t, s, "Log[Rational[1, 2]]", -1)
	wantSignUnknown(t, s, "Log[-1]")
	wantEval(t, s, "Sign[Log[Rational[1, 2]]]", "-1")
}

func Test_Sign_Abs_Is_Nonnegative(t *testing.T) {
	s := NewSession()
	wantSign(t, s, "Abs[-5]", 1)
	wantSign(t, s, "Abs[0]", 0)
	wantSignUnknown(t, s, "Abs[x]")
}

func Test_Sign_Sum_Of_Like_Signs(t *testing.T) {
	s := NewSession()
	wantSign(t, s, "Plus[1, Pi]", 1)
	wantSign(t, s, "Plus[-1, Times[-1, Pi]]", -1)
	wantSign(t, s, "Plus[0, 0]", 0)
}

func Test_Sign_Fallback_Decides_Mixed_Sums_Off_Zero(t *testing.T) {
	// Pi - 4 has no structural sign; the machine fold lands clearly
	// negative, which the fallback may report.
	s := NewSession()
	wantSign(t, s, "Plus[-4, Pi]", -1)
}

func Test_Sign_Fallback_Never_Claims_Exact_Zero(t *testing.T) {
	s := NewSession()
	wantSignUnknown(t, s, "Plus[Pi, Times[-1, Pi]]")
	wantSignUnknown(t, s, "x")
}
