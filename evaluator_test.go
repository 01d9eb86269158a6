package rix

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func evalStr(t *testing.T, s *Session, src string) Expr {
	t.Helper()
	e, err := ReadFullForm(src)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return Evaluate(e, s)
}

func wantForm(t *testing.T, got Expr, want string) {
	t.Helper()
	if got.String() != want {
		t.Fatalf("want %s, got %s", want, got.String())
	}
}

func wantEval(t *testing.T, s *Session, src, want string) {
	t.Helper()
	wantForm(t, evalStr(t, s, src), want)
}

func countMessages(s *Session, sym Symbol, tag string) int {
	n := 0
	for _, m := range s.Messages() {
		if m.Symbol == sym && m.Tag == tag {
			n++
		}
	}
	return n
}

func wantMessage(t *testing.T, s *Session, sym Symbol, tag string) {
	t.Helper()
	if countMessages(s, sym, tag) == 0 {
		t.Fatalf("want message %s::%s, log: %v", sym, tag, s.Messages())
	}
}

// --- normalization ---------------------------------------------------------

func Test_Evaluator_Literals_Are_Fixed_Points(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "42", "42")
	wantEval(t, s, `"hello"`, `"hello"`)
	wantEval(t, s, "2.5", "2.5")
	wantEval(t, s, "undefinedSymbol", "undefinedSymbol")
}

func Test_Evaluator_Flat_Flattens_Nested_Heads(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[f, Flat]")
	wantEval(t, s, "f[a, f[b, c], d]", "f[a, b, c, d]")
	wantEval(t, s, "f[f[f[a], b], f[c, f[d]]]", "f[a, b, c, d]")
}

func Test_Evaluator_Orderless_Sorts_And_Is_Permutation_Invariant(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[g, Orderless]")
	first := evalStr(t, s, "g[b, 2, a, 1]")
	second := evalStr(t, s, "g[1, a, 2, b]")
	if !first.SameQ(second) {
		t.Fatalf("permutations disagree: %s vs %s", first, second)
	}
	wantForm(t, first, "g[1, 2, a, b]")
	// Normalization is idempotent.
	if again := Evaluate(first, s); !again.SameQ(first) {
		t.Fatalf("not a fixed point: %s -> %s", first, again)
	}
}

func Test_Evaluator_Sequence_Splices_Unless_SequenceHold(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "f[1, Sequence[2, 3], 4]", "f[1, 2, 3, 4]")
	evalStr(t, s, "SetAttributes[h, SequenceHold]")
	wantEval(t, s, "h[1, Sequence[2, 3]]", "h[1, Sequence[2, 3]]")
}

func Test_Evaluator_HoldFirst_Suppresses_First_Argument_Only(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[f, HoldFirst]")
	wantEval(t, s, "f[Plus[1, 2], Plus[3, 4]]", "f[Plus[1, 2], 7]")
}

func Test_Evaluator_HoldAll_Suppresses_All_Arguments(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[f, HoldAll]")
	wantEval(t, s, "f[Plus[1, 2], Plus[3, 4]]", "f[Plus[1, 2], Plus[3, 4]]")
}

func Test_Evaluator_Evaluate_Forces_Inside_Hold(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Hold[Evaluate[Plus[1, 2]], Plus[3, 4]]", "Hold[3, Plus[3, 4]]")
	// HoldAllComplete disables the override.
	wantEval(t, s, "HoldComplete[Evaluate[Plus[1, 2]]]", "HoldComplete[Evaluate[Plus[1, 2]]]")
}

func Test_Evaluator_Unevaluated_Is_Stripped_And_Restored(t *testing.T) {
	s := NewSession()
	// No rule applies: the wrapper is restored verbatim.
	wantEval(t, s, "f[Unevaluated[Plus[1, 2]]]", "f[Unevaluated[Plus[1, 2]]]")
	// A rule sees the bare argument and the wrapper is consumed.
	evalStr(t, s, "SetDelayed[g[Pattern[x, Blank[Plus]]], firstCase]")
	wantEval(t, s, "g[Unevaluated[Plus[1, 2]]]", "firstCase")
}

func Test_Evaluator_Listable_Broadcasts_Over_Lists(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[f, Listable]")
	wantEval(t, s, "f[{1, 2, 3}, 10]", "List[f[1, 10], f[2, 10], f[3, 10]]")
}

func Test_Evaluator_Listable_Length_Mismatch_Diagnoses(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[f, Listable]")
	wantEval(t, s, "f[{1, 2}, {1, 2, 3}]", "f[List[1, 2], List[1, 2, 3]]")
	wantMessage(t, s, Symbol("Thread"), "tdlen")
}

// --- rule application ------------------------------------------------------

func Test_Evaluator_DownValues_Apply_With_Pattern_Binding(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetDelayed[double[Pattern[x, Blank[]]], Times[2, x]]")
	wantEval(t, s, "double[5]", "10")
	wantEval(t, s, "double[y]", "Times[2, y]")
}

func Test_Evaluator_UpValues_Checked_Before_DownValues(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "UpSet[wrap[tag], 42]")
	wantEval(t, s, "wrap[tag]", "42")
}

func Test_Evaluator_SubValues_Apply_To_Curried_Heads(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetDelayed[curry[Pattern[a, Blank[]]][Pattern[b, Blank[]]], Plus[a, b]]")
	wantEval(t, s, "curry[1][2]", "3")
}

func Test_Evaluator_Return_Absorbed_By_UserRule_Rewrite(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetDelayed[f[], CompoundExpression[Return[7], 9]]")
	wantEval(t, s, "f[]", "7")
}

func Test_Evaluator_Uncontrolled_Break_Reaches_TopLevel(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Break[]", "Break[]")
	wantMessage(t, s, SymbolBreak, "nofwd")
}

// --- limits ----------------------------------------------------------------

func Test_Evaluator_RecursionLimit_Aborts_With_One_Diagnostic(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[$RecursionLimit, 200]")
	evalStr(t, s, "Set[a, Plus[a, a]]")
	got := evalStr(t, s, "a")
	wantForm(t, got, "$Aborted")
	if n := countMessages(s, Symbol("$RecursionLimit"), "reclim"); n != 1 {
		t.Fatalf("want exactly one reclim message, got %d", n)
	}
}

func Test_Evaluator_IterationLimit_Returns_Partial_Result(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[$IterationLimit, 20]")
	evalStr(t, s, "SetDelayed[g[Pattern[n, Blank[]]], g[Plus[n, 1]]]")
	got := evalStr(t, s, "g[0]")
	if !strings.HasPrefix(got.String(), "g[") {
		t.Fatalf("want partial g[...], got %s", got)
	}
	wantMessage(t, s, Symbol("$IterationLimit"), "itlim")
}

func Test_Evaluator_Stop_Request_Unwinds_To_Aborted(t *testing.T) {
	s := NewSession()
	s.RequestStop()
	wantEval(t, s, "Plus[1, 2]", "$Aborted")
	s.ClearStop()
	wantEval(t, s, "Plus[1, 2]", "3")
}

func Test_Normalize_Splices_Flattens_And_Sorts(t *testing.T) {
	s := NewSession()
	attrs := s.Defs.Attributes(SymbolPlus)
	elements := []Expr{readForm(t, "Plus[b, a]"), NewInt(2), readForm(t, "Sequence[c]")}
	out := NewExpr(SymbolPlus, Normalize(attrs, SymbolPlus, elements)...)
	wantForm(t, out, "Plus[2, a, b, c]")
}
