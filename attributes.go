// attributes.go: the per-symbol attribute bitset.
//
// Every symbol carries one integer worth of boolean flags that steer
// normalization and evaluation order (see normalize.go and evaluator.go).
// The bit layout mirrors the reference semantics: HoldAllComplete is a
// superset of HoldAll, so testing AttrHoldAll also fires for symbols that
// are HoldAllComplete.
//
// Attributes are stored in the Definitions table (definitions.go), not on
// Symbol values: a Symbol is just its qualified name, and two occurrences
// of the same name must observe the same attribute set.
package rix

import "sort"

// Attr is a bitset of symbol attributes.
type Attr uint32

const (
	AttrNone Attr = 0

	AttrLocked        Attr = 0x00001
	AttrProtected     Attr = 0x00002
	AttrReadProtected Attr = 0x00004

	AttrConstant        Attr = 0x00008
	AttrFlat            Attr = 0x00010
	AttrListable        Attr = 0x00020
	AttrNumericFunction Attr = 0x00040
	AttrOneIdentity     Attr = 0x00080
	AttrOrderless       Attr = 0x00100

	AttrHoldFirst Attr = 0x00200
	AttrHoldRest  Attr = 0x00400
	AttrHoldAll   Attr = 0x00800
	// HoldAllComplete implies HoldAll by construction.
	AttrHoldAllComplete Attr = 0x01800

	AttrNHoldFirst Attr = 0x02000
	AttrNHoldRest  Attr = 0x04000
	AttrNHoldAll   Attr = 0x08000

	AttrSequenceHold Attr = 0x10000
)

// attrByName maps attribute names to bits. Composite bits (HoldAllComplete)
// map to their full mask so that setting the name sets the implied bits too.
var attrByName = map[string]Attr{
	"Constant":        AttrConstant,
	"Flat":            AttrFlat,
	"HoldAll":         AttrHoldAll,
	"HoldAllComplete": AttrHoldAllComplete,
	"HoldFirst":       AttrHoldFirst,
	"HoldRest":        AttrHoldRest,
	"Listable":        AttrListable,
	"Locked":          AttrLocked,
	"NHoldAll":        AttrNHoldAll,
	"NHoldFirst":      AttrNHoldFirst,
	"NHoldRest":       AttrNHoldRest,
	"NumericFunction": AttrNumericFunction,
	"OneIdentity":     AttrOneIdentity,
	"Orderless":       AttrOrderless,
	"Protected":       AttrProtected,
	"ReadProtected":   AttrReadProtected,
	"SequenceHold":    AttrSequenceHold,
}

// AttrFromName returns the bit mask for an attribute name, or AttrNone if
// the name is not a known attribute.
func AttrFromName(name string) Attr {
	return attrByName[name]
}

// Has reports whether all bits in mask are set.
func (a Attr) Has(mask Attr) bool { return a&mask == mask }

// HasAny reports whether any bit in mask is set.
func (a Attr) HasAny(mask Attr) bool { return a&mask != 0 }

// Names returns the attribute names present in a, sorted alphabetically
// (the order Attributes[] reports them in).
func (a Attr) Names() []string {
	var names []string
	// HoldAllComplete subsumes HoldAll; report only the stronger one.
	if a.Has(AttrHoldAllComplete) {
		names = append(names, "HoldAllComplete")
	} else if a.Has(AttrHoldAll) {
		names = append(names, "HoldAll")
	}
	for name, bit := range attrByName {
		switch bit {
		case AttrHoldAll, AttrHoldAllComplete:
			continue
		}
		if a.Has(bit) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
