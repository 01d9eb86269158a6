package rix

import (
	"strings"
	"testing"
)

func Test_Block_Shadows_And_Restores_On_Normal_Exit(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[x, 5]")
	wantEval(t, s, "Block[{Set[x, 10]}, Plus[x, 1]]", "11")
	wantEval(t, s, "x", "5")
}

func Test_Block_Restores_On_Abort(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[x, 5]")
	wantEval(t, s, "Block[{Set[x, 10]}, Abort[]]", "$Aborted")
	wantEval(t, s, "x", "5")
}

func Test_Block_Initializer_Sees_Outer_Value(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[y, 3]")
	wantEval(t, s, "Block[{Set[y, Plus[y, 1]]}, y]", "4")
	wantEval(t, s, "y", "3")
}

func Test_Block_Without_Initializer_Clears_The_Symbol(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[x, 5]")
	wantEval(t, s, "Block[{x}, x]", "x")
	wantEval(t, s, "x", "5")
}

func Test_Block_Definition_Identical_After_Signal(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "SetDelayed[f[Pattern[n, Blank[]]], Times[n, n]]")
	before := s.Defs.GetRules(Symbol("f"), DownValues)
	evalStr(t, s, "Block[{f}, Abort[]]")
	after := s.Defs.GetRules(Symbol("f"), DownValues)
	if len(before) != len(after) || !before[0].Lhs.SameQ(after[0].Lhs) || !before[0].Rhs.SameQ(after[0].Rhs) {
		t.Fatalf("definition not restored: before %v, after %v", before, after)
	}
	wantEval(t, s, "f[3]", "9")
}

func Test_Module_Mints_Fresh_Names(t *testing.T) {
	s := NewSession()
	first := evalStr(t, s, "Module[{t}, t]")
	second := evalStr(t, s, "Module[{t}, t]")
	if first.SameQ(second) {
		t.Fatalf("two Module calls produced the same symbol %s", first)
	}
	if !strings.HasPrefix(first.String(), "t$") || !strings.HasPrefix(second.String(), "t$") {
		t.Fatalf("fresh names should carry the t$ prefix: %s, %s", first, second)
	}
}

func Test_Module_Initializer_Binds_Fresh_Symbol(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Module[{Set[t, 5]}, Plus[t, 1]]", "6")
}

func Test_Module_One_Serial_Per_Call(t *testing.T) {
	s := NewSession()
	got := evalStr(t, s, "Module[{u, v}, List[u, v]]")
	list, ok := got.(*Expression)
	if !ok || len(list.Elements) != 2 {
		t.Fatalf("want a two-element list, got %s", got)
	}
	uName, vName := list.Elements[0].String(), list.Elements[1].String()
	uSerial := uName[strings.Index(uName, "$")+1:]
	vSerial := vName[strings.Index(vName, "$")+1:]
	if uSerial != vSerial {
		t.Fatalf("variables of one Module call got different serials: %s, %s", uName, vName)
	}
}

func Test_Module_Renaming_Skips_Nested_Redeclaration(t *testing.T) {
	s := NewSession()
	// The inner Block re-declares t, so its body keeps the global t.
	wantEval(t, s, "Module[{Set[t, 1]}, List[t, Block[{t}, t]]]", "List[1, t]")
}

func Test_With_Substitutes_Into_Held_Positions(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "With[{Set[x, 3]}, Hold[x]]", "Hold[3]")
	// No global definition leaks.
	wantEval(t, s, "x", "x")
}

func Test_With_Requires_Initializers(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "With[{x}, x]", "With[List[x], x]")
	wantMessage(t, s, SymbolWith, "lvsym")
}

func Test_Scoping_Duplicate_Variable_Diagnosed(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Block[{x, x}, x]", "Block[List[x, x], x]")
	wantMessage(t, s, SymbolBlock, "dup")
}

func Test_Scoping_NonList_Spec_Diagnosed(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Block[x, 1]", "Block[x, 1]")
	wantMessage(t, s, SymbolBlock, "lvlist")
}

func Test_Scoping_NonSymbol_Binder_Diagnosed(t *testing.T) {
	s := NewSession()
	wantEval(t, s, "Module[{1}, 1]", "Module[List[1], 1]")
	wantMessage(t, s, SymbolModule, "lvsym")
}

func Test_Unique_Advances_The_Serial(t *testing.T) {
	s := NewSession()
	first := evalStr(t, s, "Unique[zz]")
	second := evalStr(t, s, "Unique[zz]")
	if first.SameQ(second) {
		t.Fatalf("Unique returned %s twice", first)
	}
	if !strings.HasPrefix(first.String(), "zz$") {
		t.Fatalf("want zz$<n>, got %s", first)
	}
}

func Test_ModuleNumber_Is_Settable(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[$ModuleNumber, 100]")
	wantEval(t, s, "Module[{t}, t]", "t$100")
	evalStr(t, s, "Set[$ModuleNumber, 0]")
	wantMessage(t, s, Symbol("$ModuleNumber"), "set")
	wantEval(t, s, "$ModuleNumber", "101")
}

func Test_RunScoped_Block_Binds_And_Restores(t *testing.T) {
	s := NewSession()
	evalStr(t, s, "Set[x, 3]")
	got := RunScoped(SymbolBlock, readForm(t, "{Set[x, 10]}"), readForm(t, "Times[x, 2]"), s)
	wantForm(t, got, "20")
	wantEval(t, s, "x", "3")
}

func Test_RunScoped_Module_And_With(t *testing.T) {
	s := NewSession()
	got := RunScoped(SymbolModule, readForm(t, "{Set[t, 5]}"), readForm(t, "t"), s)
	wantForm(t, got, "5")
	got = RunScoped(SymbolWith, readForm(t, "{Set[y, 3]}"), readForm(t, "Hold[y]"), s)
	wantForm(t, got, "Hold[3]")
}

func Test_RunScoped_Rejects_Unknown_Kind_And_Bad_Spec(t *testing.T) {
	s := NewSession()
	got := RunScoped(Symbol("Table"), readForm(t, "{x}"), readForm(t, "x"), s)
	wantForm(t, got, "Table[List[x], x]")
	got = RunScoped(SymbolBlock, readForm(t, "x"), readForm(t, "1"), s)
	wantForm(t, got, "Block[x, 1]")
	wantMessage(t, s, SymbolBlock, "lvlist")
}
