// builtin_core.go: the builtin registry type, session configuration
// symbols, assignment, and the structural and control-flow builtins.
//
// A Builtin is the last rule source consulted by the rewrite loop
// (evaluator.go): its Eval receives the normalized expression and
// reports "did not apply" with a zero EvalResult, which leaves the
// expression untouched. Attrs are stamped into the definitions table at
// registration so normalization sees them before the builtin ever runs.
package rix

import "math"

// BuiltinFunc evaluates a normalized expression whose head resolved to
// this builtin. A zero EvalResult (nil Value, no signal) means the
// builtin did not apply and the expression stays as it is.
type BuiltinFunc func(expr *Expression, s *Session) EvalResult

// Builtin is one registered builtin head.
type Builtin struct {
	Name  Symbol
	Attrs Attr
	Eval  BuiltinFunc

	// NumericValue, when non-nil, supplies the numeric value of the bare
	// symbol at d decimal digits (machine when the flag is set). Used by
	// ApplyN for constants such as Pi and E.
	NumericValue func(d float64, machine bool) Number
}

var (
	SymbolFailed = Symbol("$Failed")

	symRecursionLimit = Symbol("$RecursionLimit")
	symIterationLimit = Symbol("$IterationLimit")
	symModuleNumber   = Symbol("$ModuleNumber")
	symMinPrecision   = Symbol("$MinPrecision")
	symMaxPrecision   = Symbol("$MaxPrecision")
)

/* ---------- configuration symbols ---------- */

// configValue resolves the session configuration symbols the evaluator
// consults before own-values.
func (s *Session) configValue(sym Symbol) (Expr, bool) {
	switch sym {
	case symRecursionLimit:
		return NewInt(int64(s.RecursionLimit)), true
	case symIterationLimit:
		if s.IterationLimit < 0 {
			return SymbolInfinity, true
		}
		return NewInt(int64(s.IterationLimit)), true
	case symModuleNumber:
		return NewInt(s.ModuleNumber), true
	case symMinPrecision:
		return MachineReal(s.MinPrecision), true
	case symMaxPrecision:
		if math.IsInf(s.MaxPrecision, 1) {
			return SymbolInfinity, true
		}
		return MachineReal(s.MaxPrecision), true
	}
	return nil, false
}

// setConfig handles assignment to a configuration symbol. handled is
// true when sym is a configuration symbol, whether or not the value was
// accepted; a rejected value leaves the setting unchanged and emits the
// symbol's diagnostic.
func (s *Session) setConfig(sym Symbol, value Expr) (handled bool) {
	intValue := func() (int64, bool) {
		n, ok := value.(Integer)
		if !ok {
			return 0, false
		}
		return n.Int64()
	}
	realValue := func() (float64, bool) {
		n, ok := value.(Number)
		if !ok {
			return 0, false
		}
		re, im := complexParts(n)
		f, real := realFloat(re)
		return f, real && im.IsZero()
	}

	switch sym {
	case symRecursionLimit:
		if v, ok := intValue(); ok && v >= MinRecursionLimit && v <= MaxRecursionLimit {
			s.RecursionLimit = int(v)
		} else {
			s.Message(sym, "limset", value)
		}
		return true
	case symIterationLimit:
		if value.SameQ(SymbolInfinity) {
			s.IterationLimit = -1
		} else if v, ok := intValue(); ok && v >= MinIterationLimit {
			s.IterationLimit = int(v)
		} else {
			s.Message(sym, "limset", value)
		}
		return true
	case symModuleNumber:
		if v, ok := intValue(); ok && v > 0 {
			s.ModuleNumber = v
		} else {
			s.Message(sym, "set", value)
		}
		return true
	case symMinPrecision:
		if v, ok := realValue(); ok && v >= 0 && v <= s.MaxPrecision {
			s.MinPrecision = v
		} else {
			s.Message(sym, "precset", sym, value)
		}
		return true
	case symMaxPrecision:
		if value.SameQ(SymbolInfinity) {
			s.MaxPrecision = math.Inf(1)
		} else if v, ok := realValue(); ok && v > 0 && v >= s.MinPrecision {
			s.MaxPrecision = v
		} else {
			s.Message(sym, "precset", sym, value)
		}
		return true
	}
	return false
}

/* ---------- assignment ---------- */

// assign installs lhs = rhs (the := distinction is carried by the hold
// attributes of the assignment head). ok is false when the assignment
// was rejected.
func (s *Session) assign(lhs, rhs Expr) bool {
	switch target := lhs.(type) {
	case Symbol:
		if s.setConfig(target, rhs) {
			return true
		}
		if s.Defs.Attributes(target).Has(AttrProtected) {
			s.Message(SymbolSet, "wrsym", target)
			return false
		}
		s.Defs.SetOwn(target, rhs)
		return true
	case *Expression:
		// N[expr] := value installs a numeric-value rule under the head
		// of expr.
		if target.HasForm("N", 1) || target.HasForm("N", 2) {
			inner := target.Elements[0]
			name := lookupName(inner)
			if name == "" {
				s.Message(SymbolSet, "setraw", inner)
				return false
			}
			s.Defs.AddRule(name, NValues, Rule{Lhs: inner, Rhs: rhs})
			return true
		}
		name := lookupName(target)
		if name == "" {
			s.Message(SymbolSet, "setraw", target)
			return false
		}
		if s.Defs.Attributes(name).Has(AttrProtected) {
			s.Message(SymbolSet, "write", name)
			return false
		}
		kind := DownValues
		if !name.SameQ(target.Head) {
			kind = SubValues
		}
		s.Defs.AddRule(name, kind, Rule{Lhs: target, Rhs: rhs})
		return true
	}
	s.Message(SymbolSet, "setraw", lhs)
	return false
}

// assignUp installs an up-rule for lhs under each assignable argument
// symbol; at least one target must accept it.
func (s *Session) assignUp(lhs, rhs Expr) bool {
	target, isExpr := lhs.(*Expression)
	if !isExpr {
		s.Message(SymbolSet, "setraw", lhs)
		return false
	}
	installed := false
	seen := map[Symbol]bool{}
	for _, el := range target.Elements {
		name := lookupName(el)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if s.Defs.Attributes(name).Has(AttrProtected) {
			s.Message(SymbolSet, "write", name)
			continue
		}
		s.Defs.AddRule(name, UpValues, Rule{Lhs: target, Rhs: rhs})
		installed = true
	}
	return installed
}

func evalSet(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	s.assign(expr.Elements[0], expr.Elements[1])
	// Set evaluates to its right-hand side even when rejected.
	return Ok(expr.Elements[1])
}

func evalSetDelayed(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	if !s.assign(expr.Elements[0], expr.Elements[1]) {
		return Ok(SymbolFailed)
	}
	return Ok(SymbolNull)
}

func evalUpSet(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	s.assignUp(expr.Elements[0], expr.Elements[1])
	return Ok(expr.Elements[1])
}

func evalUpSetDelayed(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	if !s.assignUp(expr.Elements[0], expr.Elements[1]) {
		return Ok(SymbolFailed)
	}
	return Ok(SymbolNull)
}

func clearSymbols(expr *Expression, s *Session, all bool) EvalResult {
	head := Symbol("Clear")
	if all {
		head = Symbol("ClearAll")
	}
	for _, el := range expr.Elements {
		sym, ok := el.(Symbol)
		if !ok {
			s.Message(head, "ssym", el)
			continue
		}
		if s.Defs.Attributes(sym).Has(AttrProtected) {
			s.Message(head, "wrsym", sym)
			continue
		}
		if all {
			s.Defs.Remove(sym)
		} else {
			s.Defs.Clear(sym)
		}
	}
	return Ok(SymbolNull)
}

/* ---------- attribute builtins ---------- */

func attrListArg(e Expr) ([]Symbol, bool) {
	switch t := e.(type) {
	case Symbol:
		return []Symbol{t}, true
	case *Expression:
		if !t.HasForm("List", -1) {
			return nil, false
		}
		syms := make([]Symbol, 0, len(t.Elements))
		for _, el := range t.Elements {
			sym, ok := el.(Symbol)
			if !ok {
				return nil, false
			}
			syms = append(syms, sym)
		}
		return syms, true
	}
	return nil, false
}

func evalAttributes(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	sym, ok := expr.Elements[0].(Symbol)
	if !ok {
		return EvalResult{}
	}
	names := s.Defs.Attributes(sym).Names()
	items := make([]Expr, len(names))
	for i, name := range names {
		items[i] = Symbol(name)
	}
	return Ok(ListOf(items...))
}

func changeAttributes(expr *Expression, s *Session, set bool) EvalResult {
	head := Symbol("SetAttributes")
	if !set {
		head = Symbol("ClearAttributes")
	}
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	syms, ok := attrListArg(expr.Elements[0])
	if !ok {
		return EvalResult{}
	}
	attrSyms, ok := attrListArg(expr.Elements[1])
	if !ok {
		return EvalResult{}
	}
	mask := AttrNone
	for _, a := range attrSyms {
		bit := AttrFromName(string(a))
		if bit == AttrNone {
			s.Message(Symbol("Attributes"), "attnf", a)
			return Ok(SymbolFailed)
		}
		mask |= bit
	}
	for _, sym := range syms {
		if s.Defs.Attributes(sym).Has(AttrLocked) {
			s.Message(head, "locked", sym)
			continue
		}
		if set {
			s.Defs.SetAttributes(sym, mask)
		} else {
			s.Defs.ClearAttributes(sym, mask)
		}
	}
	return Ok(SymbolNull)
}

func changeProtection(expr *Expression, s *Session, protect bool) EvalResult {
	var changed []Expr
	for _, el := range expr.Elements {
		sym, ok := el.(Symbol)
		if !ok {
			continue
		}
		attrs := s.Defs.Attributes(sym)
		if attrs.Has(AttrLocked) {
			continue
		}
		if protect == attrs.Has(AttrProtected) {
			continue
		}
		if protect {
			s.Defs.SetAttributes(sym, AttrProtected)
		} else {
			s.Defs.ClearAttributes(sym, AttrProtected)
		}
		changed = append(changed, sym)
	}
	return Ok(ListOf(changed...))
}

/* ---------- control flow ---------- */

func evalCompoundExpression(expr *Expression, s *Session) EvalResult {
	var last Expr = SymbolNull
	for _, el := range expr.Elements {
		r := s.Eval(el)
		if r.IsSignal() {
			return r
		}
		last = r.Value
	}
	return Ok(last)
}

func evalIf(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) < 2 || len(expr.Elements) > 4 {
		return EvalResult{}
	}
	cond := expr.Elements[0]
	switch {
	case cond.SameQ(SymbolTrue):
		return s.Eval(expr.Elements[1])
	case cond.SameQ(SymbolFalse):
		if len(expr.Elements) >= 3 {
			return s.Eval(expr.Elements[2])
		}
		return Ok(SymbolNull)
	}
	// Undecidable condition: a fourth argument is the fallback, otherwise
	// the If stays unevaluated.
	if len(expr.Elements) == 4 {
		return s.Eval(expr.Elements[3])
	}
	return EvalResult{}
}

// runLoopBody evaluates one loop body pass, consuming Break, Continue,
// and Return the way Do and While do. stop is set by Break; ret is
// non-zero when a Return was absorbed (its payload becomes the loop's
// value) or a harder signal must keep propagating.
func (s *Session) runLoopBody(body Expr) (stop bool, ret EvalResult) {
	r := s.Eval(body)
	switch r.Kind {
	case NoSignal, SignalContinue:
		return false, EvalResult{}
	case SignalBreak:
		return true, EvalResult{}
	case SignalReturn:
		value := r.Payload
		if value == nil {
			value = SymbolNull
		}
		return true, Ok(value)
	}
	return true, r
}

// doIterator is the decoded iterator spec of Do: {imax}, {i, imax},
// {i, imin, imax}, or {i, imin, imax, step}.
type doIterator struct {
	name           Symbol
	hasVar         bool
	min, max, step float64
	minE, stepE    Expr
}

func parseDoIterator(spec Expr, s *Session) (doIterator, bool) {
	it := doIterator{min: 1, step: 1, minE: NewInt(1), stepE: NewInt(1)}
	list, ok := spec.(*Expression)
	if !ok || !list.HasForm("List", -1) || len(list.Elements) == 0 || len(list.Elements) > 4 {
		return it, false
	}
	bound := func(e Expr) (Expr, float64, bool) {
		r := s.Eval(e)
		if r.IsSignal() {
			return nil, 0, false
		}
		n, isNum := r.Value.(Number)
		if !isNum {
			return nil, 0, false
		}
		re, im := complexParts(n)
		f, real := realFloat(re)
		if !real || !im.IsZero() {
			return nil, 0, false
		}
		return r.Value, f, true
	}
	args := list.Elements
	if len(args) == 1 {
		if _, f, ok := bound(args[0]); ok {
			it.max = f
			return it, true
		}
		return it, false
	}
	name, isSym := args[0].(Symbol)
	if !isSym {
		return it, false
	}
	it.name, it.hasVar = name, true
	switch len(args) {
	case 2:
		_, f, ok := bound(args[1])
		if !ok {
			return it, false
		}
		it.max = f
	case 3:
		minE, minF, ok1 := bound(args[1])
		_, maxF, ok2 := bound(args[2])
		if !ok1 || !ok2 {
			return it, false
		}
		it.minE, it.min, it.max = minE, minF, maxF
	case 4:
		minE, minF, ok1 := bound(args[1])
		_, maxF, ok2 := bound(args[2])
		stepE, stepF, ok3 := bound(args[3])
		if !ok1 || !ok2 || !ok3 || stepF == 0 {
			return it, false
		}
		it.minE, it.min, it.max = minE, minF, maxF
		it.stepE, it.step = stepE, stepF
	}
	return it, true
}

func evalDo(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	it, ok := parseDoIterator(expr.Elements[1], s)
	if !ok {
		return EvalResult{}
	}
	body := expr.Elements[0]

	// The iterator variable is localized like a Block variable.
	if it.hasVar {
		saved := s.Defs.Save(it.name)
		defer s.Defs.Restore(it.name, saved)
	}
	value := it.minE
	for v := it.min; (it.step > 0 && v <= it.max) || (it.step < 0 && v >= it.max); v += it.step {
		if it.hasVar {
			s.Defs.SetOwn(it.name, value)
			value = evalPlus([]Expr{value, it.stepE}, s)
		}
		stop, ret := s.runLoopBody(body)
		if ret.Value != nil || ret.IsSignal() {
			return ret
		}
		if stop {
			break
		}
	}
	return Ok(SymbolNull)
}

func evalWhile(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) < 1 || len(expr.Elements) > 2 {
		return EvalResult{}
	}
	test := expr.Elements[0]
	body := Expr(SymbolNull)
	if len(expr.Elements) == 2 {
		body = expr.Elements[1]
	}
	for {
		r := s.Eval(test)
		if r.IsSignal() {
			return r
		}
		if !r.Value.SameQ(SymbolTrue) {
			return Ok(SymbolNull)
		}
		stop, ret := s.runLoopBody(body)
		if ret.Value != nil || ret.IsSignal() {
			return ret
		}
		if stop {
			return Ok(SymbolNull)
		}
	}
}

func signalBuiltin(kind SignalKind) BuiltinFunc {
	return func(expr *Expression, s *Session) EvalResult {
		switch len(expr.Elements) {
		case 0:
			return RaiseSignal(kind, nil)
		case 1:
			if kind == SignalReturn {
				return RaiseSignal(kind, expr.Elements[0])
			}
		}
		return EvalResult{}
	}
}

/* ---------- structural builtins ---------- */

func evalEvaluate(expr *Expression, s *Session) EvalResult {
	// Arguments were already evaluated; the wrapper dissolves.
	if len(expr.Elements) == 1 {
		return Ok(expr.Elements[0])
	}
	return Ok(NewExpr(SymbolSequence, expr.Elements...))
}

func evalSameQ(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) < 2 {
		return Ok(SymbolTrue)
	}
	for i := 1; i < len(expr.Elements); i++ {
		if !expr.Elements[0].SameQ(expr.Elements[i]) {
			return Ok(SymbolFalse)
		}
	}
	return Ok(SymbolTrue)
}

func evalHead(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	return Ok(headOf(expr.Elements[0]))
}

func evalLength(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 1 {
		return EvalResult{}
	}
	if sub, ok := expr.Elements[0].(*Expression); ok {
		return Ok(NewInt(int64(len(sub.Elements))))
	}
	return Ok(NewInt(0))
}

func registerCoreBuiltins(s *Session) {
	for _, b := range []*Builtin{
		{Name: SymbolList, Attrs: AttrLocked | AttrProtected},
		{Name: SymbolHold, Attrs: AttrHoldAll | AttrProtected},
		{Name: SymbolHoldComplete, Attrs: AttrHoldAllComplete | AttrProtected},
		{Name: SymbolSequence, Attrs: AttrProtected},
		{Name: SymbolEvaluate, Attrs: AttrProtected, Eval: evalEvaluate},
		{Name: SymbolUnevaluated, Attrs: AttrHoldAllComplete | AttrProtected},
		{Name: SymbolRule, Attrs: AttrSequenceHold | AttrProtected},
		{Name: SymbolRuleDelayed, Attrs: AttrHoldRest | AttrSequenceHold | AttrProtected},

		{Name: Symbol("CompoundExpression"), Attrs: AttrHoldAll | AttrReadProtected | AttrProtected, Eval: evalCompoundExpression},
		{Name: Symbol("If"), Attrs: AttrHoldRest | AttrProtected, Eval: evalIf},
		{Name: Symbol("Do"), Attrs: AttrHoldAll | AttrProtected, Eval: evalDo},
		{Name: Symbol("While"), Attrs: AttrHoldAll | AttrProtected, Eval: evalWhile},
		{Name: SymbolBreak, Attrs: AttrProtected, Eval: signalBuiltin(SignalBreak)},
		{Name: SymbolContinue, Attrs: AttrProtected, Eval: signalBuiltin(SignalContinue)},
		{Name: SymbolReturn, Attrs: AttrProtected, Eval: signalBuiltin(SignalReturn)},
		{Name: SymbolAbort, Attrs: AttrProtected, Eval: signalBuiltin(SignalAbort)},

		{Name: SymbolSet, Attrs: AttrHoldFirst | AttrSequenceHold | AttrProtected, Eval: evalSet},
		{Name: SymbolSetDelayed, Attrs: AttrHoldAll | AttrSequenceHold | AttrProtected, Eval: evalSetDelayed},
		{Name: Symbol("UpSet"), Attrs: AttrHoldFirst | AttrSequenceHold | AttrProtected, Eval: evalUpSet},
		{Name: Symbol("UpSetDelayed"), Attrs: AttrHoldAll | AttrSequenceHold | AttrProtected, Eval: evalUpSetDelayed},
		{Name: Symbol("Clear"), Attrs: AttrHoldAll | AttrProtected, Eval: func(e *Expression, s *Session) EvalResult { return clearSymbols(e, s, false) }},
		{Name: Symbol("ClearAll"), Attrs: AttrHoldAll | AttrProtected, Eval: func(e *Expression, s *Session) EvalResult { return clearSymbols(e, s, true) }},

		{Name: Symbol("Attributes"), Attrs: AttrHoldAll | AttrProtected, Eval: evalAttributes},
		{Name: Symbol("SetAttributes"), Attrs: AttrHoldFirst | AttrProtected, Eval: func(e *Expression, s *Session) EvalResult { return changeAttributes(e, s, true) }},
		{Name: Symbol("ClearAttributes"), Attrs: AttrHoldFirst | AttrProtected, Eval: func(e *Expression, s *Session) EvalResult { return changeAttributes(e, s, false) }},
		{Name: Symbol("Protect"), Attrs: AttrHoldAll | AttrProtected, Eval: func(e *Expression, s *Session) EvalResult { return changeProtection(e, s, true) }},
		{Name: Symbol("Unprotect"), Attrs: AttrHoldAll | AttrProtected, Eval: func(e *Expression, s *Session) EvalResult { return changeProtection(e, s, false) }},

		{Name: Symbol("SameQ"), Attrs: AttrProtected, Eval: evalSameQ},
		{Name: Symbol("Head"), Attrs: AttrProtected, Eval: evalHead},
		{Name: Symbol("Length"), Attrs: AttrProtected, Eval: evalLength},
	} {
		s.Register(b)
	}
}
