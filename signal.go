// signal.go: tagged evaluation results and non-local control signals.
//
// The evaluator never panics across frames. Every recursive evaluation
// returns an EvalResult which is either Ok(value) or a signal raised by a
// control-flow construct. Each loop construct consumes the signal kinds it
// understands and re-propagates the rest; Abort and Timeout always unwind
// to the top level.
package rix

// SignalKind discriminates the non-local control signals.
type SignalKind int

const (
	NoSignal SignalKind = iota
	SignalBreak
	SignalContinue
	SignalReturn
	SignalAbort
	SignalTimeout
)

func (k SignalKind) String() string {
	switch k {
	case NoSignal:
		return "none"
	case SignalBreak:
		return "Break"
	case SignalContinue:
		return "Continue"
	case SignalReturn:
		return "Return"
	case SignalAbort:
		return "Abort"
	case SignalTimeout:
		return "Timeout"
	}
	return "unknown"
}

// EvalResult is the tagged result threaded through the evaluator:
// Ok(value), or Signal(kind, payload). Payload is only meaningful for
// Return (the returned value).
type EvalResult struct {
	Value   Expr
	Kind    SignalKind
	Payload Expr
}

// Ok wraps a plain value result.
func Ok(value Expr) EvalResult { return EvalResult{Value: value} }

// RaiseSignal builds a signal result.
func RaiseSignal(kind SignalKind, payload Expr) EvalResult {
	return EvalResult{Kind: kind, Payload: payload}
}

// IsSignal reports whether the result carries a control signal.
func (r EvalResult) IsSignal() bool { return r.Kind != NoSignal }

// unwindsTopLevel reports signals that no construct may absorb.
func (k SignalKind) unwindsTopLevel() bool {
	return k == SignalAbort || k == SignalTimeout
}
