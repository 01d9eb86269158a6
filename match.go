// match.go: the pattern matcher consumed by the rewrite evaluator.
//
// Full unification is an external collaborator; the evaluator only needs
// the narrow Matcher interface below. BasicMatcher is the bundled
// implementation: literal SameQ matching plus single blanks — Blank[],
// Blank[head], and Pattern[name, blank] bindings with consistency checks.
// Hosts with a richer pattern engine plug it in via Session.Matcher.
package rix

// Bindings maps pattern names to the matched subexpressions.
type Bindings map[Symbol]Expr

// Matcher decides whether a rule's left-hand side matches a candidate and
// produces the substitution to apply to the right-hand side.
type Matcher interface {
	Match(pattern, candidate Expr, s *Session) (Bindings, bool)
}

// BasicMatcher matches literal structure and single blanks.
type BasicMatcher struct{}

func (BasicMatcher) Match(pattern, candidate Expr, s *Session) (Bindings, bool) {
	binds := Bindings{}
	if !matchOne(pattern, candidate, binds, s) {
		return nil, false
	}
	return binds, true
}

func matchOne(pattern, candidate Expr, binds Bindings, s *Session) bool {
	if p, ok := pattern.(*Expression); ok {
		switch {
		case p.HasForm("Blank", 0):
			return true
		case p.HasForm("Blank", 1):
			return headOf(candidate).SameQ(p.Elements[0])
		case p.HasForm("Pattern", 2):
			name, ok := p.Elements[0].(Symbol)
			if !ok {
				return false
			}
			if prev, bound := binds[name]; bound {
				return prev.SameQ(candidate)
			}
			if !matchOne(p.Elements[1], candidate, binds, s) {
				return false
			}
			binds[name] = candidate
			return true
		}
		c, ok := candidate.(*Expression)
		if !ok || len(c.Elements) != len(p.Elements) {
			return false
		}
		if !matchOne(p.Head, c.Head, binds, s) {
			return false
		}
		for i, pe := range p.Elements {
			if !matchOne(pe, c.Elements[i], binds, s) {
				return false
			}
		}
		return true
	}
	return pattern.SameQ(candidate)
}

// applyRule matches rule.Lhs against e and, on success, returns the
// instantiated right-hand side.
func applyRule(rule Rule, e Expr, s *Session) (Expr, bool) {
	binds, ok := s.Matcher.Match(rule.Lhs, e, s)
	if !ok {
		return nil, false
	}
	if len(binds) == 0 {
		return rule.Rhs, true
	}
	vars := make(map[Symbol]Expr, len(binds))
	for name, val := range binds {
		vars[name] = val
	}
	return replaceVars(rule.Rhs, vars, true), true
}

// applyRules tries rules in order and reports the first replacement.
func applyRules(rules []Rule, e Expr, s *Session) (Expr, bool) {
	for _, rule := range rules {
		if out, ok := applyRule(rule, e, s); ok {
			return out, true
		}
	}
	return nil, false
}
