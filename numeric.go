// numeric.go: numeric forcing (N), goal resolution, and the precision
// clamp.
//
// ApplyN rewrites an expression toward its numeric value at a target
// precision in decimal digits, where the non-positive sentinel means
// machine precision. It consults three numeric-value sources in order:
// atom rounding, user NValues rules (re-applied after each hit), and the
// NumericValue hook of a registered builtin (how Pi and E get digits).
// NHoldAll/NHoldFirst/NHoldRest block the recursion into arguments the
// same way the Hold attributes block evaluation.
package rix

import "math"

// nholdMask reports which argument positions N must not descend into.
func nholdMask(attrs Attr, n int) []bool {
	mask := make([]bool, n)
	for i := range mask {
		switch {
		case attrs.Has(AttrNHoldAll):
			mask[i] = true
		case attrs.Has(AttrNHoldFirst):
			mask[i] = i == 0
		case attrs.Has(AttrNHoldRest):
			mask[i] = i > 0
		}
	}
	return mask
}

// ApplyN rewrites e toward its numeric value at precision d decimal
// digits (d <= 0 means machine precision). The result is not evaluated;
// the caller re-enters the evaluator with it.
func (s *Session) ApplyN(e Expr, d float64) EvalResult {
	switch t := e.(type) {
	case Integer, Rational, MachineReal, BigReal, Complex:
		return Ok(t.(Number).Round(d))
	case Symbol:
		if out, applied := applyRules(s.Defs.GetRules(t, NValues), t, s); applied && !out.SameQ(t) {
			r := s.Eval(out)
			if r.IsSignal() {
				return r
			}
			return s.ApplyN(r.Value, d)
		}
		if b, ok := s.LookupBuiltin(t); ok && b.NumericValue != nil {
			return Ok(b.NumericValue(d, d <= 0))
		}
		return Ok(t)
	case *Expression:
		if name := lookupName(t); name != "" {
			if out, applied := applyRules(s.Defs.GetRules(name, NValues), t, s); applied && !out.SameQ(Expr(t)) {
				r := s.Eval(out)
				if r.IsSignal() {
					return r
				}
				return s.ApplyN(r.Value, d)
			}
		}
		attrs := AttrNone
		if hs, ok := t.Head.(Symbol); ok {
			attrs = s.Defs.Attributes(hs)
		}
		held := nholdMask(attrs, len(t.Elements))
		elements := make([]Expr, len(t.Elements))
		for i, el := range t.Elements {
			if held[i] {
				elements[i] = el
				continue
			}
			r := s.ApplyN(el, d)
			if r.IsSignal() {
				return r
			}
			elements[i] = r.Value
		}
		return Ok(NewExpr(t.Head, elements...))
	}
	return Ok(e)
}

// resolvePrecision turns the second argument of N into a digit count,
// clamped to [$MinPrecision, $MaxPrecision] with a diagnostic. The
// returned sentinel 0 means machine precision; ok is false when the
// argument is not a usable precision at all.
func (s *Session) resolvePrecision(p Expr) (float64, bool) {
	if p.SameQ(SymbolAutomatic) || p.SameQ(SymbolMachinePrec) {
		return 0, true
	}
	n, isNum := p.(Number)
	if !isNum {
		s.Message(SymbolN, "precbd", p)
		return 0, false
	}
	re, im := complexParts(n)
	f, ok := realFloat(re)
	if !ok || !im.IsZero() || math.IsNaN(f) || math.IsInf(f, 0) {
		s.Message(SymbolN, "precbd", p)
		return 0, false
	}
	if f < s.MinPrecision {
		s.Message(SymbolN, "precsm", p)
		f = s.MinPrecision
	}
	if f > s.MaxPrecision {
		s.Message(SymbolN, "preclg", p)
		f = s.MaxPrecision
	}
	if f <= 0 {
		return 0, true
	}
	return f, true
}

// ForceNumeric is the exported host entry point for N: evaluate, force,
// evaluate again.
func ForceNumeric(e Expr, precision Expr, s *Session) Expr {
	d, ok := s.resolvePrecision(precision)
	if !ok {
		return e
	}
	r := s.Eval(e)
	if r.IsSignal() {
		return Evaluate(e, s)
	}
	r = s.ApplyN(r.Value, d)
	if r.IsSignal() {
		return SymbolAborted
	}
	return Evaluate(r.Value, s)
}

/* ---------- goals ---------- */

// Goals carries resolved numeric stopping criteria. A nil goal is
// absent (exact, no tolerance); MaxIterations < 0 is unbounded.
type Goals struct {
	AccuracyGoal  *float64
	PrecisionGoal *float64
	MaxIterations int
}

const (
	defaultGoalDigits   = 12
	defaultMaxIter      = 100
	unboundedIterations = -1
)

// resolveGoalValue maps one option value: Automatic gives the default,
// Infinity gives absent, a real number gives itself, anything else is
// treated as absent with an opttf diagnostic.
func resolveGoalValue(name Symbol, v Expr, def float64, s *Session) *float64 {
	if v == nil || v.SameQ(SymbolAutomatic) {
		d := def
		return &d
	}
	if v.SameQ(SymbolInfinity) {
		return nil
	}
	if n, ok := v.(Number); ok {
		if f, real := realFloat(n); real {
			return &f
		}
	}
	s.Message(Symbol("General"), "opttf", name, v)
	return nil
}

// ResolveGoals turns AccuracyGoal/PrecisionGoal/MaxIterations option
// values into concrete numbers. Any argument may be nil, meaning the
// option was not given.
func ResolveGoals(accuracyGoal, precisionGoal, maxIterations Expr, s *Session) Goals {
	g := Goals{
		AccuracyGoal:  resolveGoalValue(SymbolAccuracyGoal, accuracyGoal, defaultGoalDigits, s),
		PrecisionGoal: resolveGoalValue(SymbolPrecisionGoal, precisionGoal, defaultGoalDigits, s),
		MaxIterations: defaultMaxIter,
	}
	switch {
	case maxIterations == nil || maxIterations.SameQ(SymbolAutomatic):
	case maxIterations.SameQ(SymbolInfinity):
		g.MaxIterations = unboundedIterations
	default:
		if n, ok := maxIterations.(Integer); ok {
			if v, fits := n.Int64(); fits && v > 0 {
				g.MaxIterations = int(v)
				break
			}
		}
		s.Message(SymbolMaxIterations, "opttf", SymbolMaxIterations, maxIterations)
	}
	return g
}

// IsWithinGoal reports whether value is close enough to zero under the
// resolved goals: an exact zero always is; with no goal set nothing else
// is; otherwise |value| is compared against the combined tolerance
// 10^-precisionGoal + 10^-accuracyGoal.
func IsWithinGoal(value Number, g Goals) bool {
	if value.IsZero() {
		return true
	}
	if g.AccuracyGoal == nil && g.PrecisionGoal == nil {
		return false
	}
	re, im := complexParts(value)
	rf, _ := realFloat(re)
	imf, _ := realFloat(im)
	magnitude := math.Hypot(rf, imf)

	tolerance := 0.0
	if g.PrecisionGoal != nil {
		tolerance += math.Pow(10, -*g.PrecisionGoal)
	}
	if g.AccuracyGoal != nil {
		tolerance += math.Pow(10, -*g.AccuracyGoal)
	}
	return math.Log(tolerance/magnitude) > 0
}
