package rix

import "testing"

/* ---------- assignment ---------- */

func Test_Set_Installs_OwnValue_And_Returns_Rhs(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Set[a, 5]", "5")
	wantEval(t, s, "a", "5")
	// A second Set replaces the first.
	wantEval(t, s, "Set[a, 7]", "7")
	wantEval(t, s, "a", "7")
}

func Test_SetDelayed_Returns_Null_And_Defers_Rhs(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "SetDelayed[b, Plus[1, 2]]", "Null")
	wantEval(t, s, "b", "3")
}

func Test_Set_On_Protected_Symbol_Rejected(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Set[List, 5]", "5")
	wantMessage(t, s, SymbolSet, "wrsym")
	wantEval(t, s, "List[1, 2]", "List[1, 2]")
}

func Test_SetDelayed_On_Protected_Head_Fails(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "SetDelayed[List[Pattern[x, Blank[]]], x]", "$Failed")
	wantMessage(t, s, SymbolSet, "write")
}

func Test_Set_Rejects_Atom_Lhs(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Set[3, 4]", "4")
	wantMessage(t, s, SymbolSet, "setraw")
}

func Test_UpSet_Installs_Rule_On_Argument(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "UpSet[area[circ], 10]", "10")
	wantEval(t, s, "area[circ]", "10")
	if len(s.Defs.GetRules(Symbol("circ"), UpValues)) == 0 {
		t.Fatalf("UpSet must install under the argument symbol")
	}
}

/* ---------- clearing ---------- */

func Test_Clear_Removes_Values_Keeps_Attributes(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[c, 1]")
	evalStr(t, s, "SetAttributes[c, Orderless]")
	wantEval(t, s, "Clear[c]", "Null")
	wantEval(t, s, "c", "c")
	wantEval(t, s, "Attributes[c]", "List[Orderless]")
}

func Test_ClearAll_Removes_Attributes_Too(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[c, 1]")
	evalStr(t, s, "SetAttributes[c, Orderless]")
	wantEval(t, s, "ClearAll[c]", "Null")
	wantEval(t, s, "c", "c")
	wantEval(t, s, "Attributes[c]", "List[]")
}

func Test_Clear_Diagnoses_Bad_Targets(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Clear[3]")
	wantMessage(t, s, Symbol("Clear"), "ssym")
	evalStr(t, s, "Clear[List]")
	wantMessage(t, s, Symbol("Clear"), "wrsym")
}

/* ---------- attributes ---------- */

func Test_Attributes_Of_Plus(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Attributes[Plus]",
		"List[Flat, Listable, NumericFunction, OneIdentity, Orderless, Protected]")
}

func Test_SetAttributes_Accepts_Symbol_Lists(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "SetAttributes[{f, g}, {HoldFirst, Listable}]", "Null")
	wantEval(t, s, "Attributes[f]", "List[HoldFirst, Listable]")
	wantEval(t, s, "Attributes[g]", "List[HoldFirst, Listable]")
	wantEval(t, s, "ClearAttributes[f, HoldFirst]", "Null")
	wantEval(t, s, "Attributes[f]", "List[Listable]")
}

func Test_SetAttributes_Unknown_Attribute_Fails(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "SetAttributes[f, NotAnAttribute]", "$Failed")
	wantMessage(t, s, Symbol("Attributes"), "attnf")
}

func Test_Locked_Symbol_Rejects_Attribute_Changes(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetAttributes[lk, Locked]")
	evalStr(t, s, "ClearAttributes[lk, Locked]")
	wantMessage(t, s, Symbol("ClearAttributes"), "locked")
	wantEval(t, s, "Attributes[lk]", "List[Locked]")
}

func Test_Protect_Unprotect_Report_Changed_Symbols(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Protect[p1, p2]", "List[p1, p2]")
	wantEval(t, s, "Protect[p1]", "List[]")
	wantEval(t, s, "Set[p1, 3]", "3")
	wantMessage(t, s, SymbolSet, "wrsym")
	wantEval(t, s, "Unprotect[p1]", "List[p1]")
	wantEval(t, s, "Set[p1, 3]", "3")
	wantEval(t, s, "p1", "3")
}

/* ---------- configuration symbols ---------- */

func Test_RecursionLimit_Rejects_Out_Of_Range(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[$RecursionLimit, 1000]")
	wantMessage(t, s, symRecursionLimit, "limset")
	wantEval(t, s, "$RecursionLimit", "512")
	evalStr(t, s, "Set[$RecursionLimit, 100]")
	wantEval(t, s, "$RecursionLimit", "100")
}

func Test_IterationLimit_Accepts_Infinity(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[$IterationLimit, Infinity]")
	wantEval(t, s, "$IterationLimit", "Infinity")
	evalStr(t, s, "Set[$IterationLimit, 5]")
	wantMessage(t, s, symIterationLimit, "limset")
	wantEval(t, s, "$IterationLimit", "Infinity")
}

func Test_Precision_Bounds_Validated(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[$MaxPrecision, 50]")
	wantEval(t, s, "$MaxPrecision", "50.")
	evalStr(t, s, "Set[$MinPrecision, 60]")
	wantMessage(t, s, symMinPrecision, "precset")
	wantEval(t, s, "$MinPrecision", "0.")
}

/* ---------- control flow ---------- */

func Test_CompoundExpression_Returns_Last(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "CompoundExpression[Set[x, 1], Set[x, Plus[x, 1]], x]", "2")
	wantEval(t, s, "CompoundExpression[]", "Null")
}

func Test_If_Branches(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "If[True, 1, 2]", "1")
	wantEval(t, s, "If[False, 1, 2]", "2")
	wantEval(t, s, "If[False, 1]", "Null")
	wantEval(t, s, "If[cond, 1, 2]", "If[cond, 1, 2]")
	wantEval(t, s, "If[cond, 1, 2, 3]", "3")
}

func Test_If_Holds_Untaken_Branch(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[hits, 0]")
	wantEval(t, s, "If[True, 1, Set[hits, 99]]", "1")
	wantEval(t, s, "hits", "0")
}

func Test_Do_Iterator_Forms(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[n, 0]")
	wantEval(t, s, "Do[Set[n, Plus[n, 1]], {5}]", "Null")
	wantEval(t, s, "n", "5")

	evalStr(t, s, "Set[acc, 0]")
	evalStr(t, s, "Do[Set[acc, Plus[acc, i]], {i, 1, 4}]")
	wantEval(t, s, "acc", "10")

	evalStr(t, s, "Set[acc, 0]")
	evalStr(t, s, "Do[Set[acc, Plus[acc, i]], {i, 10, 1, -3}]")
	wantEval(t, s, "acc", "22")
}

func Test_Do_Iterator_Variable_Is_Localized(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[i, 99]")
	evalStr(t, s, "Do[Null, {i, 1, 3}]")
	wantEval(t, s, "i", "99")
}

func Test_Do_Absorbs_Break(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[c, 0]")
	evalStr(t, s, "Do[CompoundExpression[If[SameQ[i, 3], Break[]], Set[c, Plus[c, 1]]], {i, 1, 10}]")
	wantEval(t, s, "c", "2")
}

func Test_Do_Absorbs_Continue(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[c, 0]")
	evalStr(t, s, "Do[CompoundExpression[If[SameQ[i, 2], Continue[]], Set[c, Plus[c, 1]]], {i, 1, 4}]")
	wantEval(t, s, "c", "3")
}

func Test_Do_Absorbs_Return_As_Its_Value(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Do[Return[found], {3}]", "found")
}

func Test_While_Loops_Until_Test_Fails(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[k, 0]")
	wantEval(t, s, "While[If[SameQ[k, 4], False, True], Set[k, Plus[k, 1]]]", "Null")
	wantEval(t, s, "k", "4")
}

func Test_While_Nontrue_Test_Stops(t *testing.T) {
	s := NewSession()
	// Anything other than True ends the loop, including an undecidable test.
	wantEval(t, s, "While[maybe, Set[z, 1]]", "Null")
	wantEval(t, s, "z", "z")
}

/* ---------- structural ---------- */

func Test_SameQ_Is_Syntactic(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "SameQ[f[x], f[x]]", "True")
	wantEval(t, s, "SameQ[1, 1.0]", "False")
	wantEval(t, s, "SameQ[1, 1, 1]", "True")
	wantEval(t, s, "SameQ[1, 1, 2]", "False")
}

func Test_Head_And_Length(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Head[f[x]]", "f")
	wantEval(t, s, "Head[3]", "Integer")
	wantEval(t, s, "Head[Rational[1, 2]]", "Rational")
	wantEval(t, s, "Head[sym]", "Symbol")
	wantEval(t, s, "Length[f[a, b, c]]", "3")
	wantEval(t, s, "Length[x]", "0")
}
