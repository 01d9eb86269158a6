// expression.go: the expression tree.
//
// An expression is an ordered tree node: a head (itself an expression) plus
// an ordered list of element children. Atoms (atoms.go) are the leaves.
// Expressions are immutable from the rewriter's point of view: every rewrite
// builds a new node; in-place mutation is confined to construction helpers
// inside this package.
//
// The Expr interface is deliberately small. Structural identity is SameQ
// (bit-for-bit for numbers: 1 and 1.0 are *not* SameQ); String renders the
// full form `Head[e1, e2, ...]` used by the REPL and by diagnostics.
package rix

import "strings"

// Expr is implemented by every node of the expression tree: the atoms in
// atoms.go and *Expression.
type Expr interface {
	// SameQ reports structural identity with other.
	SameQ(other Expr) bool
	// String renders the full form of the expression.
	String() string
}

// Expression is a compound node: Head applied to Elements.
type Expression struct {
	Head     Expr
	Elements []Expr
}

// NewExpr builds Head[elements...].
func NewExpr(head Expr, elements ...Expr) *Expression {
	return &Expression{Head: head, Elements: elements}
}

// ListOf builds List[elements...].
func ListOf(elements ...Expr) *Expression {
	return NewExpr(SymbolList, elements...)
}

func (e *Expression) SameQ(other Expr) bool {
	o, ok := other.(*Expression)
	if !ok {
		return false
	}
	if e == o {
		return true
	}
	if len(e.Elements) != len(o.Elements) || !e.Head.SameQ(o.Head) {
		return false
	}
	for i, el := range e.Elements {
		if !el.SameQ(o.Elements[i]) {
			return false
		}
	}
	return true
}

func (e *Expression) String() string {
	var b strings.Builder
	b.WriteString(e.Head.String())
	b.WriteByte('[')
	for i, el := range e.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(el.String())
	}
	b.WriteByte(']')
	return b.String()
}

// HasForm reports whether e is head[...] with the given head name and,
// when argc >= 0, exactly argc elements.
func (e *Expression) HasForm(head string, argc int) bool {
	sym, ok := e.Head.(Symbol)
	if !ok || string(sym) != head {
		return false
	}
	return argc < 0 || len(e.Elements) == argc
}

// hasForm is the Expr-level variant of (*Expression).HasForm.
func hasForm(e Expr, head string, argc int) bool {
	x, ok := e.(*Expression)
	return ok && x.HasForm(head, argc)
}

// headOf returns the head of any expression. Atoms report their kind
// symbol (Integer, Rational, Real, Complex, String, Symbol).
func headOf(e Expr) Expr {
	switch t := e.(type) {
	case *Expression:
		return t.Head
	case Symbol:
		return SymbolSymbol
	case Integer:
		return SymbolInteger
	case Rational:
		return SymbolRational
	case MachineReal, BigReal:
		return SymbolReal
	case Complex:
		return SymbolComplex
	case String:
		return SymbolString
	}
	return SymbolSymbol
}

// lookupName returns the symbol under which rules for e are stored: a
// symbol is its own lookup name, and f[1][x] is looked up under f. The
// empty string means e has no lookup name (e.g. a number).
func lookupName(e Expr) Symbol {
	switch t := e.(type) {
	case Symbol:
		return t
	case *Expression:
		return lookupName(t.Head)
	}
	return ""
}

// Well-known symbols. These are plain Symbol values; all of their behavior
// lives in the Definitions table and the builtin registry.
var (
	SymbolAborted         = Symbol("$Aborted")
	SymbolAbort           = Symbol("Abort")
	SymbolAbs             = Symbol("Abs")
	SymbolAccuracyGoal    = Symbol("AccuracyGoal")
	SymbolAutomatic       = Symbol("Automatic")
	SymbolBlank           = Symbol("Blank")
	SymbolBlock           = Symbol("Block")
	SymbolBreak           = Symbol("Break")
	SymbolComplex         = Symbol("Complex")
	SymbolComplexInfinity = Symbol("ComplexInfinity")
	SymbolContinue        = Symbol("Continue")
	SymbolE               = Symbol("E")
	SymbolEvaluate        = Symbol("Evaluate")
	SymbolExp             = Symbol("Exp")
	SymbolFalse           = Symbol("False")
	SymbolHold            = Symbol("Hold")
	SymbolHoldComplete    = Symbol("HoldComplete")
	SymbolIndeterminate   = Symbol("Indeterminate")
	SymbolInfinity        = Symbol("Infinity")
	SymbolInteger         = Symbol("Integer")
	SymbolList            = Symbol("List")
	SymbolLog             = Symbol("Log")
	SymbolMachinePrec     = Symbol("MachinePrecision")
	SymbolMaxIterations   = Symbol("MaxIterations")
	SymbolModule          = Symbol("Module")
	SymbolN               = Symbol("N")
	SymbolNone            = Symbol("None")
	SymbolNull            = Symbol("Null")
	SymbolPattern         = Symbol("Pattern")
	SymbolPi              = Symbol("Pi")
	SymbolPlus            = Symbol("Plus")
	SymbolPower           = Symbol("Power")
	SymbolPrecisionGoal   = Symbol("PrecisionGoal")
	SymbolRational        = Symbol("Rational")
	SymbolReal            = Symbol("Real")
	SymbolReturn          = Symbol("Return")
	SymbolRule            = Symbol("Rule")
	SymbolRuleDelayed     = Symbol("RuleDelayed")
	SymbolSequence        = Symbol("Sequence")
	SymbolSet             = Symbol("Set")
	SymbolSetDelayed      = Symbol("SetDelayed")
	SymbolSqrt            = Symbol("Sqrt")
	SymbolString          = Symbol("String")
	SymbolSymbol          = Symbol("Symbol")
	SymbolTimes           = Symbol("Times")
	SymbolTrue            = Symbol("True")
	SymbolUnevaluated     = Symbol("Unevaluated")
	SymbolWith            = Symbol("With")
)

// scopingHeads are the constructs whose declared variables shadow an outer
// Module's renaming (see replaceVars).
var scopingHeads = map[Symbol]bool{
	SymbolBlock:  true,
	SymbolModule: true,
	SymbolWith:   true,
}

// replaceVars substitutes every lexical occurrence of the symbols in vars.
// With inScoping false, occurrences inside a nested Block/Module/With that
// re-declares the same name are shadowed and left untouched.
func replaceVars(e Expr, vars map[Symbol]Expr, inScoping bool) Expr {
	switch t := e.(type) {
	case Symbol:
		if repl, ok := vars[t]; ok {
			return repl
		}
		return e
	case *Expression:
		if !inScoping {
			if head, ok := t.Head.(Symbol); ok && scopingHeads[head] && len(t.Elements) > 0 {
				shadowed := declaredNames(t.Elements[0])
				if len(shadowed) > 0 {
					inner := make(map[Symbol]Expr, len(vars))
					for name, val := range vars {
						if !shadowed[name] {
							inner[name] = val
						}
					}
					if len(inner) == 0 {
						return e
					}
					vars = inner
				}
			}
		}
		head := replaceVars(t.Head, vars, inScoping)
		elements := make([]Expr, len(t.Elements))
		for i, el := range t.Elements {
			elements[i] = replaceVars(el, vars, inScoping)
		}
		return NewExpr(head, elements...)
	}
	return e
}

// declaredNames extracts the names declared by a scoping spec list
// {x, y = init, ...} without reporting malformed entries.
func declaredNames(spec Expr) map[Symbol]bool {
	list, ok := spec.(*Expression)
	if !ok || !list.HasForm("List", -1) {
		return nil
	}
	names := map[Symbol]bool{}
	for _, entry := range list.Elements {
		switch v := entry.(type) {
		case Symbol:
			names[v] = true
		case *Expression:
			if v.HasForm("Set", 2) || v.HasForm("SetDelayed", 2) {
				if name, ok := v.Elements[0].(Symbol); ok {
					names[name] = true
				}
			}
		}
	}
	return names
}
