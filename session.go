// session.go: per-session evaluation state.
//
// A Session owns everything that a single interpreter treats as global
// but reentrant hosts need scoped: the definitions table, the builtin
// registry, the recursion-depth counter and $RecursionLimit, the
// per-evaluation iteration counter's limit, the $ModuleNumber serial, the
// precision clamp bounds, and the message log. Two sessions never share
// state; a host embedding several evaluation sessions gets independent
// counters for free.
//
// Diagnostics accumulate on the message log and never stop evaluation by
// themselves; only control signals (signal.go) alter control flow.
package rix

import (
	"fmt"
	"math"
	"strings"

	"github.com/tevino/abool/v2"
)

// Default limits. $RecursionLimit accepts 20..512; $IterationLimit accepts
// integers >= 20 or Infinity (represented as a negative limit).
const (
	DefaultRecursionLimit = 512
	DefaultIterationLimit = 1000

	MinRecursionLimit = 20
	MaxRecursionLimit = 512
	MinIterationLimit = 20
)

// Message is one diagnostic: Symbol::tag: text.
type Message struct {
	Symbol Symbol
	Tag    string
	Text   string
}

func (m Message) String() string {
	return fmt.Sprintf("%s::%s: %s", m.Symbol, m.Tag, m.Text)
}

// Session is a single-threaded evaluation session.
type Session struct {
	Defs    *Definitions
	Matcher Matcher

	// RecursionLimit bounds the depth of nested evaluations;
	// IterationLimit bounds fixed-point passes per evaluation
	// (negative means Infinity).
	RecursionLimit int
	IterationLimit int

	// ModuleNumber is the serial minting fresh names name$<n>.
	ModuleNumber int64

	// MinPrecision and MaxPrecision clamp the precision argument of
	// numeric forcing.
	MinPrecision, MaxPrecision float64

	builtins map[Symbol]*Builtin
	depth    int
	messages []Message
	stop     *abool.AtomicBool
}

// NewSession returns a session with the standard builtins registered and
// all counters at their start-of-session values.
func NewSession() *Session {
	s := &Session{
		Defs:           NewDefinitions(),
		Matcher:        BasicMatcher{},
		RecursionLimit: DefaultRecursionLimit,
		IterationLimit: DefaultIterationLimit,
		ModuleNumber:   1,
		MinPrecision:   0,
		MaxPrecision:   math.Inf(1),
		builtins:       map[Symbol]*Builtin{},
		stop:           abool.New(),
	}
	registerCoreBuiltins(s)
	registerMathBuiltins(s)
	registerScopingBuiltins(s)
	return s
}

// Reset restores the restartable process state: counters, module serial,
// messages, and the stop flag. Definitions are left alone.
func (s *Session) Reset() {
	s.depth = 0
	s.ModuleNumber = 1
	s.messages = nil
	s.stop.UnSet()
}

/* ---------- builtin registry ---------- */

// Register installs a builtin and stamps its attributes into the
// definitions table so normalization sees them.
func (s *Session) Register(b *Builtin) {
	s.builtins[b.Name] = b
	if b.Attrs != AttrNone {
		s.Defs.SetAttributes(b.Name, b.Attrs)
	}
}

// LookupBuiltin returns the registered builtin for a head symbol.
func (s *Session) LookupBuiltin(name Symbol) (*Builtin, bool) {
	b, ok := s.builtins[name]
	return b, ok
}

/* ---------- recursion depth ---------- */

// incDepth bumps the recursion depth, reporting false once past
// $RecursionLimit. The caller is responsible for the reclim diagnostic;
// decDepth must be called iff incDepth returned true.
func (s *Session) incDepth() bool {
	s.depth++
	return s.depth <= s.RecursionLimit
}

func (s *Session) decDepth() { s.depth-- }

// Depth reports the current recursion depth (top level is zero).
func (s *Session) Depth() int { return s.depth }

/* ---------- externally injected interrupts ---------- */

// RequestStop asks the session to abort at the next evaluation step. Safe
// to call from another goroutine (e.g. a SIGINT handler); this is the only
// cross-goroutine touch point of a session.
func (s *Session) RequestStop() { s.stop.Set() }

func (s *Session) stopRequested() bool { return s.stop.IsSet() }

// ClearStop rearms the session after an externally requested stop
// (typically once per REPL line).
func (s *Session) ClearStop() { s.stop.UnSet() }

/* ---------- message log ---------- */

// messageTexts holds the templates for the diagnostics this core emits.
// `%v` slots are filled with the full forms of the arguments.
var messageTexts = map[string]string{
	"$RecursionLimit::reclim": "Recursion depth of %v exceeded.",
	"$RecursionLimit::limset": "Cannot set $RecursionLimit to %v; value must be an integer between 20 and 512.",
	"$IterationLimit::itlim":  "Iteration limit of %v exceeded.",
	"$IterationLimit::limset": "Cannot set $IterationLimit to %v; value must be an integer at least 20 or Infinity.",
	"$ModuleNumber::set":      "Cannot set $ModuleNumber to %v; value must be a positive integer.",
	"$MinPrecision::precset":  "Cannot set %v to %v; value must be a non-negative number.",
	"$MaxPrecision::precset":  "Cannot set %v to %v; value must be a positive number.",
	"Block::lvsym":            "Local variable specification contains %v, which is not a symbol or an assignment to a symbol.",
	"Block::dup":              "Duplicate local variable %v found in local variable specification.",
	"Block::lvlist":           "Local variable specification %v is not a List.",
	"Module::lvsym":           "Local variable specification contains %v, which is not a symbol or an assignment to a symbol.",
	"Module::dup":             "Duplicate local variable %v found in local variable specification.",
	"Module::lvlist":          "Local variable specification %v is not a List.",
	"With::lvsym":             "Local variable specification contains %v, which is not a symbol or an assignment to a symbol.",
	"With::dup":               "Duplicate local variable %v found in local variable specification.",
	"With::lvlist":            "Local variable specification %v is not a List.",
	"Thread::tdlen":           "Objects of unequal length cannot be combined.",
	"N::precbd":               "Requested precision %v is not a machine-sized real number.",
	"N::precsm":               "Requested precision %v is smaller than $MinPrecision. Using $MinPrecision instead.",
	"N::preclg":               "Requested precision %v is larger than $MaxPrecision. Using $MaxPrecision instead.",
	"Power::infy":             "Infinite expression %v encountered.",
	"Set::wrsym":              "Symbol %v is Protected.",
	"Set::write":              "Tag %v is Protected.",
	"Set::setraw":             "Cannot assign to raw object %v.",
	"SetAttributes::locked":   "Symbol %v is locked.",
	"ClearAttributes::locked": "Symbol %v is locked.",
	"Clear::ssym":             "%v is not a symbol.",
	"Clear::wrsym":            "Symbol %v is Protected.",
	"ClearAll::ssym":          "%v is not a symbol.",
	"ClearAll::wrsym":         "Symbol %v is Protected.",
	"Attributes::attnf":       "%v is not a known attribute.",
	"Break::nofwd":            "No enclosing For, While, or Do found for Break[].",
	"Continue::nofwd":         "No enclosing For, While, or Do found for Continue[].",
	"Return::nofwd":           "No enclosing function or loop found for Return[].",
	"General::opttf":          "Value of option %v -> %v should be a number, Automatic, or Infinity.",
	"MaxIterations::opttf":    "Value of option %v -> %v should be a positive integer, Automatic, or Infinity.",
}

// Message appends a diagnostic to the session log.
func (s *Session) Message(symbol Symbol, tag string, args ...Expr) {
	template, ok := messageTexts[string(symbol)+"::"+tag]
	text := ""
	if ok {
		formatted := make([]interface{}, len(args))
		for i, a := range args {
			formatted[i] = a.String()
		}
		text = fmt.Sprintf(template, formatted...)
	} else {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		text = strings.Join(parts, ", ")
	}
	s.messages = append(s.messages, Message{Symbol: symbol, Tag: tag, Text: text})
}

// Messages returns the accumulated diagnostics.
func (s *Session) Messages() []Message { return s.messages }

// ClearMessages empties the log (typically once per REPL line).
func (s *Session) ClearMessages() { s.messages = nil }
