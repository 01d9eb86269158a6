// definitions.go: the per-session rule and attribute store.
//
// The rewrite core consumes definitions through a narrow surface: rules of
// a given kind for a qualified name, the attribute bitset of a name, and
// save/clear/restore of a whole definition (the operation Block is built
// on). Rules of one kind are kept in insertion order; adding a rule whose
// left-hand side is SameQ to an existing one replaces it in place, so rule
// application order stays deterministic and documented.
package rix

import "sort"

// RuleKind selects one of the per-symbol rule sets.
type RuleKind int

const (
	// OwnValues rewrite the symbol itself (x -> ...).
	OwnValues RuleKind = iota
	// DownValues rewrite f[...] when f is the head.
	DownValues
	// SubValues rewrite f[...][...] style expressions whose lookup name
	// is f but whose head is not the plain symbol.
	SubValues
	// UpValues rewrite g[..., f[...], ...] and are stored under f.
	UpValues
	// NValues provide numeric values under N[...].
	NValues
	numRuleKinds
)

// Rule is a rewrite rule. Whether the right-hand side was stored
// evaluated (Set) or held (SetDelayed) is decided by the assignment
// head's hold attributes before the rule reaches the store; application
// treats both alike.
type Rule struct {
	Lhs, Rhs Expr
}

// Definition is everything the session knows about one symbol.
type Definition struct {
	Attrs Attr
	Rules [numRuleKinds][]Rule
}

// clone snapshots a definition so a later restore is bit-for-bit.
func (d *Definition) clone() *Definition {
	if d == nil {
		return nil
	}
	out := &Definition{Attrs: d.Attrs}
	for kind, rules := range d.Rules {
		if len(rules) > 0 {
			out.Rules[kind] = append([]Rule(nil), rules...)
		}
	}
	return out
}

// Definitions maps qualified names to their definitions.
type Definitions struct {
	table map[Symbol]*Definition
}

// NewDefinitions returns an empty store.
func NewDefinitions() *Definitions {
	return &Definitions{table: map[Symbol]*Definition{}}
}

func (d *Definitions) lookup(name Symbol, create bool) *Definition {
	def := d.table[name]
	if def == nil && create {
		def = &Definition{}
		d.table[name] = def
	}
	return def
}

// Attributes returns the attribute bitset of name (AttrNone when the
// symbol has no definition).
func (d *Definitions) Attributes(name Symbol) Attr {
	if def := d.table[name]; def != nil {
		return def.Attrs
	}
	return AttrNone
}

// SetAttributes ors mask into name's attributes.
func (d *Definitions) SetAttributes(name Symbol, mask Attr) {
	d.lookup(name, true).Attrs |= mask
}

// ClearAttributes removes mask from name's attributes.
func (d *Definitions) ClearAttributes(name Symbol, mask Attr) {
	if def := d.table[name]; def != nil {
		def.Attrs &^= mask
	}
}

// GetRules returns the rules of one kind, in application order. The
// returned slice must not be mutated.
func (d *Definitions) GetRules(name Symbol, kind RuleKind) []Rule {
	if def := d.table[name]; def != nil {
		return def.Rules[kind]
	}
	return nil
}

// AddRule installs a rule, replacing any existing rule with a SameQ
// left-hand side.
func (d *Definitions) AddRule(name Symbol, kind RuleKind, rule Rule) {
	def := d.lookup(name, true)
	for i, existing := range def.Rules[kind] {
		if existing.Lhs.SameQ(rule.Lhs) {
			def.Rules[kind][i] = rule
			return
		}
	}
	def.Rules[kind] = append(def.Rules[kind], rule)
}

// SetOwn installs value as the sole own value of name.
func (d *Definitions) SetOwn(name Symbol, value Expr) {
	def := d.lookup(name, true)
	def.Rules[OwnValues] = []Rule{{Lhs: name, Rhs: value}}
}

// OwnValue returns the stored own value of name, if any.
func (d *Definitions) OwnValue(name Symbol) (Expr, bool) {
	if def := d.table[name]; def != nil {
		for _, rule := range def.Rules[OwnValues] {
			if rule.Lhs.SameQ(name) {
				return rule.Rhs, true
			}
		}
	}
	return nil, false
}

// Clear removes all rules of name but keeps its attributes.
func (d *Definitions) Clear(name Symbol) {
	if def := d.table[name]; def != nil {
		def.Rules = [numRuleKinds][]Rule{}
	}
}

// Remove drops the whole definition, attributes included.
func (d *Definitions) Remove(name Symbol) {
	delete(d.table, name)
}

// Save snapshots the whole definition of name; nil when absent. The
// snapshot is independent of later mutation.
func (d *Definitions) Save(name Symbol) *Definition {
	return d.table[name].clone()
}

// Restore reinstalls a snapshot taken by Save. A nil snapshot removes the
// definition entirely, matching the pre-Save state.
func (d *Definitions) Restore(name Symbol, saved *Definition) {
	if saved == nil {
		delete(d.table, name)
		return
	}
	d.table[name] = saved.clone()
}

// Defined reports whether name has any definition at all.
func (d *Definitions) Defined(name Symbol) bool {
	return d.table[name] != nil
}

// HasUserRules reports whether name carries any rewrite rules (as opposed
// to attributes only). The evaluator uses this to decide whether a Return
// signal was raised from the right-hand side of a user-defined rule.
func (d *Definitions) HasUserRules(name Symbol) bool {
	def := d.table[name]
	if def == nil {
		return false
	}
	for kind := OwnValues; kind < numRuleKinds; kind++ {
		if len(def.Rules[kind]) > 0 {
			return true
		}
	}
	return false
}

// Names lists all defined names in sorted order.
func (d *Definitions) Names() []Symbol {
	names := make([]Symbol, 0, len(d.table))
	for name := range d.table {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
