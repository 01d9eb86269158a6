package rix

import "testing"

func Test_Sort_Numbers_Before_Symbols_Before_Compounds(t *testing.T) {
	elements := []Expr{
		NewExpr(Symbol("f"), Symbol("x")),
		Symbol("a"),
		String("s"),
		NewRational(1, 2),
		NewInt(3),
	}
	sortElements(elements)
	got := ListOf(elements...).String()
	want := `List[Rational[1, 2], 3, "s", a, f[x]]`
	if got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func Test_Sort_Reals_By_Value_Then_Kind(t *testing.T) {
	one := NewInt(1)
	elements := []Expr{MachineReal(0.5), NewRational(1, 2), one, MachineReal(0.25)}
	sortElements(elements)
	// 0.25 < 1/2 == 0.5 (exact kind first) < 1
	if !elements[0].SameQ(MachineReal(0.25)) ||
		!elements[1].SameQ(NewRational(1, 2)) ||
		!elements[2].SameQ(MachineReal(0.5)) ||
		!elements[3].SameQ(one) {
		t.Fatalf("bad real ordering: %s", ListOf(elements...))
	}
}

func Test_Sort_Compounds_By_Head_Length_Elements(t *testing.T) {
	fxy := NewExpr(Symbol("f"), Symbol("x"), Symbol("y"))
	fx := NewExpr(Symbol("f"), Symbol("x"))
	fy := NewExpr(Symbol("f"), Symbol("y"))
	gx := NewExpr(Symbol("g"), Symbol("x"))
	elements := []Expr{gx, fxy, fy, fx}
	sortElements(elements)
	got := ListOf(elements...).String()
	want := "List[f[x], f[y], f[x, y], g[x]]"
	if got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func Test_Sort_Is_Permutation_Invariant(t *testing.T) {
	a := []Expr{Symbol("b"), NewInt(2), Symbol("a"), NewInt(1)}
	b := []Expr{NewInt(1), Symbol("a"), NewInt(2), Symbol("b")}
	sortElements(a)
	sortElements(b)
	if !ListOf(a...).SameQ(ListOf(b...)) {
		t.Fatalf("permutations must sort identically: %s vs %s", ListOf(a...), ListOf(b...))
	}
}
