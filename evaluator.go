// evaluator.go: the fixed-point rewrite loop.
//
// Evaluation of an expression is a small state machine. Evaluating: bump
// the recursion depth, evaluate the head, evaluate the non-held arguments,
// normalize (normalize.go), then consult rule sources in fixed priority —
// up-rules of the argument symbols, down-rules (or sub-rules) of the head's
// lookup symbol, then the registered builtin. Comparing: if the applied
// rule produced a structurally identical expression the loop terminates;
// otherwise the iteration counter is bumped and the replacement re-enters
// Evaluating. The rule-source order is a documented contract: reordering
// it changes observable results.
//
// Limits are the only non-termination defense — there is deliberately no
// structural cycle detection, matching the reference semantics. Exceeding
// $RecursionLimit emits one reclim diagnostic and unwinds to the Aborted
// sentinel; exceeding $IterationLimit emits itlim and returns the
// best-known partial result.
package rix

// Evaluate rewrites e to a fixed point and resolves any escaping control
// signal the way a top-level session does: Abort and Timeout produce the
// $Aborted sentinel; an uncontrolled Break/Continue/Return is a diagnostic
// plus the unevaluated construct.
func Evaluate(e Expr, s *Session) Expr {
	return resolveSignal(s.Eval(e), s)
}

// resolveSignal maps an escaping control signal to its top-level surface
// form; a signal-free result passes through.
func resolveSignal(r EvalResult, s *Session) Expr {
	if r.Kind.unwindsTopLevel() {
		return SymbolAborted
	}
	switch r.Kind {
	case NoSignal:
		return r.Value
	case SignalBreak:
		s.Message(SymbolBreak, "nofwd")
		return NewExpr(SymbolBreak)
	case SignalContinue:
		s.Message(SymbolContinue, "nofwd")
		return NewExpr(SymbolContinue)
	case SignalReturn:
		s.Message(SymbolReturn, "nofwd")
		if r.Payload != nil {
			return NewExpr(SymbolReturn, r.Payload)
		}
		return NewExpr(SymbolReturn)
	}
	return r.Value
}

// Eval is the recursive evaluation entry point, returning the tagged
// result unresolved. Hosts embedding the core use this when they need to
// observe signals themselves.
func (s *Session) Eval(e Expr) EvalResult {
	if s.stopRequested() {
		return RaiseSignal(SignalTimeout, nil)
	}
	switch t := e.(type) {
	case Symbol:
		return s.evalSymbol(t)
	case *Expression:
		return s.evalExpression(t)
	}
	// Numbers and strings are literals.
	return Ok(e)
}

// reclimAbort emits the single recursion-limit diagnostic and unwinds.
func (s *Session) reclimAbort() EvalResult {
	s.Message(Symbol("$RecursionLimit"), "reclim", NewInt(int64(s.RecursionLimit)))
	return RaiseSignal(SignalAbort, SymbolAborted)
}

func (s *Session) evalSymbol(sym Symbol) EvalResult {
	if v, ok := s.configValue(sym); ok {
		return Ok(v)
	}
	out, ok := applyRules(s.Defs.GetRules(sym, OwnValues), sym, s)
	if !ok || out.SameQ(sym) {
		return Ok(sym)
	}
	if !s.incDepth() {
		s.decDepth()
		return s.reclimAbort()
	}
	defer s.decDepth()
	return s.Eval(out)
}

func (s *Session) evalExpression(orig *Expression) EvalResult {
	if !s.incDepth() {
		s.decDepth()
		return s.reclimAbort()
	}
	defer s.decDepth()

	// Lookup names seen across the loop: a Return raised from the
	// right-hand side of a user-defined rule is absorbed here and becomes
	// the value of the rewrite; any other Return keeps propagating.
	names := map[Symbol]bool{}

	var expr Expr = orig
	iteration := 1
	for {
		cur, ok := expr.(*Expression)
		if !ok {
			// Rewrote to an atom; hand the rest to the atom path.
			return s.Eval(expr)
		}
		if name := lookupName(cur); name != "" {
			names[name] = true
		}
		next, changed, res := s.rewriteStep(cur)
		if res.IsSignal() {
			if res.Kind == SignalReturn && s.anyUserRules(names) {
				payload := res.Payload
				if payload == nil {
					payload = SymbolNull
				}
				return Ok(payload)
			}
			return res
		}
		if !changed {
			return Ok(next)
		}
		expr = next
		iteration++
		if s.IterationLimit >= 0 && iteration > s.IterationLimit {
			s.Message(Symbol("$IterationLimit"), "itlim", NewInt(int64(s.IterationLimit)))
			return Ok(expr)
		}
	}
}

func (s *Session) anyUserRules(names map[Symbol]bool) bool {
	for name := range names {
		if s.Defs.HasUserRules(name) {
			return true
		}
	}
	return false
}

// rewriteStep performs one Evaluating pass: argument evaluation,
// normalization, and at most one rule application. It reports the
// resulting expression and whether it differs from the normalized input.
func (s *Session) rewriteStep(cur *Expression) (Expr, bool, EvalResult) {
	// Step 1: evaluate the head and fetch its attributes.
	headRes := s.Eval(cur.Head)
	if headRes.IsSignal() {
		return nil, false, headRes
	}
	head := headRes.Value
	attrs := AttrNone
	if hsym, ok := head.(Symbol); ok {
		attrs = s.Defs.Attributes(hsym)
	}
	complete := attrs.Has(AttrHoldAllComplete)

	// Step 2: evaluate arguments the hold mask allows. Inside held
	// positions an explicit Evaluate[...] still forces evaluation, unless
	// the head is HoldAllComplete.
	held := holdMask(attrs, len(cur.Elements))
	elements := append([]Expr(nil), cur.Elements...)
	for i, el := range elements {
		if held[i] {
			if !complete && hasForm(el, "Evaluate", 1) {
				r := s.Eval(el.(*Expression).Elements[0])
				if r.IsSignal() {
					return nil, false, r
				}
				elements[i] = r.Value
			}
			continue
		}
		if hasForm(el, "Unevaluated", 1) {
			continue
		}
		r := s.Eval(el)
		if r.IsSignal() {
			return nil, false, r
		}
		elements[i] = r.Value
	}

	// Step 3: strip Unevaluated wrappers; they are restored verbatim when
	// no rule ends up applying.
	var stripped []Expr
	if !complete {
		for i, el := range elements {
			if sub, ok := el.(*Expression); ok && sub.HasForm("Unevaluated", 1) {
				elements[i] = sub.Elements[0]
				stripped = append(stripped, sub.Elements[0])
			}
		}
	}

	// Steps 4-6: Sequence splicing, Flat, Orderless.
	elements = Normalize(attrs, head, elements)
	norm := NewExpr(head, elements...)

	// Step 7: Listable threading re-enters evaluation via the caller.
	if attrs.Has(AttrListable) {
		threaded, done, ok := threadListable(head, elements, s)
		if done {
			if !ok || threaded.SameQ(norm) {
				return norm, false, EvalResult{}
			}
			return threaded, true, EvalResult{}
		}
	}

	// Step 8: rule sources in fixed priority. Up-rules of argument
	// symbols are skipped entirely under HoldAllComplete.
	if !complete {
		seen := map[Symbol]bool{}
		for _, el := range elements {
			name := lookupName(el)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			if out, ok := applyRules(s.Defs.GetRules(name, UpValues), norm, s); ok {
				return ruleOutcome(norm, out)
			}
		}
	}
	if lname := lookupName(head); lname != "" {
		kind := DownValues
		if !lname.SameQ(head) {
			kind = SubValues
		}
		if out, ok := applyRules(s.Defs.GetRules(lname, kind), norm, s); ok {
			return ruleOutcome(norm, out)
		}
		if kind == DownValues {
			if b, ok := s.LookupBuiltin(lname); ok && b.Eval != nil {
				r := b.Eval(norm, s)
				if r.IsSignal() {
					return nil, false, r
				}
				if r.Value != nil {
					return ruleOutcome(norm, r.Value)
				}
			}
		}
	}

	// No rule applied: restore Unevaluated wrappers and terminate.
	if len(stripped) > 0 {
		restored := append([]Expr(nil), elements...)
		for _, val := range stripped {
			for i, el := range restored {
				if el.SameQ(val) && !hasForm(el, "Unevaluated", 1) {
					restored[i] = NewExpr(SymbolUnevaluated, el)
					break
				}
			}
		}
		norm = NewExpr(head, restored...)
	}
	return norm, false, EvalResult{}
}

// ruleOutcome classifies a rule replacement against the pre-rule form.
func ruleOutcome(prev *Expression, out Expr) (Expr, bool, EvalResult) {
	if out.SameQ(prev) {
		return prev, false, EvalResult{}
	}
	return out, true, EvalResult{}
}
