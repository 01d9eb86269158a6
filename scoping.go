// scoping.go: Block, Module, With, and Unique.
//
// All three scoping constructs share the variable-list grammar {x, y = init,
// ...} and evaluate initializers eagerly in the surrounding environment
// before any localization happens. They differ in what localization
// means: Block shadows the symbol's definition for the dynamic extent of
// the body and restores it on every exit path, Module rewrites the body
// to fresh name$<n> symbols that outlive the call, With splices the
// initializer values literally into the body.
package rix

import "fmt"

type scopeVar struct {
	name    Symbol
	init    Expr
	hasInit bool
}

// parseScopingVars validates a spec list. Malformed specs emit one
// diagnostic under the construct's symbol and leave the construct
// unevaluated. With requireInit, bare symbols are rejected too.
func parseScopingVars(head Symbol, spec Expr, requireInit bool, s *Session) ([]scopeVar, bool) {
	list, ok := spec.(*Expression)
	if !ok || !list.HasForm("List", -1) {
		s.Message(head, "lvlist", spec)
		return nil, false
	}
	seen := map[Symbol]bool{}
	vars := make([]scopeVar, 0, len(list.Elements))
	for _, entry := range list.Elements {
		var v scopeVar
		switch t := entry.(type) {
		case Symbol:
			if requireInit {
				s.Message(head, "lvsym", entry)
				return nil, false
			}
			v = scopeVar{name: t}
		case *Expression:
			name, okName := Expr(nil), false
			if t.HasForm("Set", 2) || t.HasForm("SetDelayed", 2) {
				name = t.Elements[0]
				_, okName = name.(Symbol)
			}
			if !okName {
				s.Message(head, "lvsym", entry)
				return nil, false
			}
			v = scopeVar{name: name.(Symbol), init: t.Elements[1], hasInit: true}
		default:
			s.Message(head, "lvsym", entry)
			return nil, false
		}
		if seen[v.name] {
			s.Message(head, "dup", v.name)
			return nil, false
		}
		seen[v.name] = true
		vars = append(vars, v)
	}
	return vars, true
}

// evalScopeInits evaluates every initializer in the surrounding
// environment, before any variable is localized. A signal from an
// initializer propagates untouched.
func (s *Session) evalScopeInits(vars []scopeVar) ([]Expr, EvalResult) {
	values := make([]Expr, len(vars))
	for i, v := range vars {
		if !v.hasInit {
			continue
		}
		r := s.Eval(v.init)
		if r.IsSignal() {
			return nil, r
		}
		values[i] = r.Value
	}
	return values, EvalResult{}
}

func evalBlock(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	vars, ok := parseScopingVars(SymbolBlock, expr.Elements[0], false, s)
	if !ok {
		return EvalResult{}
	}
	inits, sig := s.evalScopeInits(vars)
	if sig.IsSignal() {
		return sig
	}
	// Deferred restores run on every exit path, signals included, and in
	// reverse declaration order.
	for i, v := range vars {
		saved := s.Defs.Save(v.name)
		defer s.Defs.Restore(v.name, saved)
		s.Defs.Remove(v.name)
		if v.hasInit {
			s.Defs.SetOwn(v.name, inits[i])
		}
	}
	return s.Eval(expr.Elements[1])
}

func evalModule(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	vars, ok := parseScopingVars(SymbolModule, expr.Elements[0], false, s)
	if !ok {
		return EvalResult{}
	}
	inits, sig := s.evalScopeInits(vars)
	if sig.IsSignal() {
		return sig
	}
	// One serial per Module call, however many variables it declares.
	serial := s.ModuleNumber
	s.ModuleNumber++
	renames := make(map[Symbol]Expr, len(vars))
	for i, v := range vars {
		fresh := Symbol(fmt.Sprintf("%s$%d", v.name, serial))
		renames[v.name] = fresh
		if v.hasInit {
			s.Defs.SetOwn(fresh, inits[i])
		}
	}
	body := replaceVars(expr.Elements[1], renames, false)
	return s.Eval(body)
}

func evalWith(expr *Expression, s *Session) EvalResult {
	if len(expr.Elements) != 2 {
		return EvalResult{}
	}
	vars, ok := parseScopingVars(SymbolWith, expr.Elements[0], true, s)
	if !ok {
		return EvalResult{}
	}
	inits, sig := s.evalScopeInits(vars)
	if sig.IsSignal() {
		return sig
	}
	subs := make(map[Symbol]Expr, len(vars))
	for i, v := range vars {
		subs[v.name] = inits[i]
	}
	body := replaceVars(expr.Elements[1], subs, false)
	return s.Eval(body)
}

// RunScoped is the exported host entry point for the scoping constructs:
// the host names the kind (Block, Module or With) and supplies the
// variable list and body directly, without building a full rewrite call.
// Signals escaping the body resolve the way Evaluate resolves them; an
// unrecognized kind or a malformed variable list returns the call
// unevaluated.
func RunScoped(kind Symbol, spec, body Expr, s *Session) Expr {
	call := NewExpr(kind, spec, body)
	var r EvalResult
	switch kind {
	case SymbolBlock:
		r = evalBlock(call, s)
	case SymbolModule:
		r = evalModule(call, s)
	case SymbolWith:
		r = evalWith(call, s)
	default:
		return call
	}
	if r.Kind == NoSignal && r.Value == nil {
		return call
	}
	return resolveSignal(r, s)
}

// evalUnique mints a fresh symbol from the session serial: Unique[] gives
// $<n>, Unique[x] gives x$<n>.
func evalUnique(expr *Expression, s *Session) EvalResult {
	base := ""
	switch len(expr.Elements) {
	case 0:
	case 1:
		switch t := expr.Elements[0].(type) {
		case Symbol:
			base = string(t)
		case String:
			base = string(t)
		default:
			return EvalResult{}
		}
	default:
		return EvalResult{}
	}
	serial := s.ModuleNumber
	s.ModuleNumber++
	return Ok(Symbol(fmt.Sprintf("%s$%d", base, serial)))
}

func registerScopingBuiltins(s *Session) {
	s.Register(&Builtin{Name: SymbolBlock, Attrs: AttrHoldAll | AttrProtected, Eval: evalBlock})
	s.Register(&Builtin{Name: SymbolModule, Attrs: AttrHoldAll | AttrProtected, Eval: evalModule})
	s.Register(&Builtin{Name: SymbolWith, Attrs: AttrHoldAll | AttrProtected, Eval: evalWith})
	s.Register(&Builtin{Name: Symbol("Unique"), Attrs: AttrProtected, Eval: evalUnique})
}
