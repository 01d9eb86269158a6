// normalize.go: attribute-driven normalization.
//
// Given a head's attribute bitset and a candidate argument list, produce
// the canonical pre-rule-application form. Order matters and is fixed:
//
//	1. hold filtering — which argument positions the evaluator may
//	   pre-evaluate (holdMask); Evaluate[...] overrides a hold, except
//	   under HoldAllComplete
//	2. Sequence splicing — children with head Sequence are spliced into
//	   the parent list, unless SequenceHold or HoldAllComplete
//	3. Flat — children sharing the parent head are spliced one level,
//	   repeated until no such child remains at depth 1
//	4. Orderless — canonical sort (sort.go)
//	5. Listable — thread over equal-length list arguments with scalar
//	   broadcast; a length mismatch is a diagnostic, never a truncation
//
// OneIdentity deliberately has no effect here; only the pattern matcher
// consults it.
package rix

// holdMask returns, per argument position, whether the position is held
// (must not be pre-evaluated) under attrs.
func holdMask(attrs Attr, n int) []bool {
	mask := make([]bool, n)
	switch {
	case attrs.HasAny(AttrHoldAll): // covers HoldAllComplete
		for i := range mask {
			mask[i] = true
		}
	case attrs.HasAny(AttrHoldFirst):
		if n > 0 {
			mask[0] = true
		}
	case attrs.HasAny(AttrHoldRest):
		for i := 1; i < n; i++ {
			mask[i] = true
		}
	}
	return mask
}

// spliceSequences flattens direct Sequence children into the argument
// list. HoldAllComplete and SequenceHold suppress the splice.
func spliceSequences(elements []Expr, attrs Attr) []Expr {
	if attrs.HasAny(AttrSequenceHold) || attrs.Has(AttrHoldAllComplete) {
		return elements
	}
	changed := false
	for _, el := range elements {
		if hasForm(el, "Sequence", -1) {
			changed = true
			break
		}
	}
	if !changed {
		return elements
	}
	out := make([]Expr, 0, len(elements))
	for _, el := range elements {
		if seq, ok := el.(*Expression); ok && seq.HasForm("Sequence", -1) {
			out = append(out, seq.Elements...)
		} else {
			out = append(out, el)
		}
	}
	return out
}

// flattenFlat splices children whose head equals head, one level at a
// time, until no child with that head remains at depth 1.
func flattenFlat(head Expr, elements []Expr) []Expr {
	for {
		nested := false
		for _, el := range elements {
			if sub, ok := el.(*Expression); ok && sub.Head.SameQ(head) {
				nested = true
				break
			}
		}
		if !nested {
			return elements
		}
		out := make([]Expr, 0, len(elements))
		for _, el := range elements {
			if sub, ok := el.(*Expression); ok && sub.Head.SameQ(head) {
				out = append(out, sub.Elements...)
			} else {
				out = append(out, el)
			}
		}
		elements = out
	}
}

// threadListable rewrites head[... {a,b} ... x ...] into
// {head[a, x], head[b, x]}: list arguments are walked in lockstep and
// scalars are broadcast. done is false when no argument is a list;
// ok is false on a length mismatch (Thread::tdlen emitted, expression
// left as is).
func threadListable(head Expr, elements []Expr, s *Session) (result Expr, done, ok bool) {
	dim := -1
	for _, el := range elements {
		if list, isList := el.(*Expression); isList && list.HasForm("List", -1) {
			if dim < 0 {
				dim = len(list.Elements)
			} else if dim != len(list.Elements) {
				s.Message(Symbol("Thread"), "tdlen")
				return nil, true, false
			}
		}
	}
	if dim < 0 {
		return nil, false, true
	}
	rows := make([]Expr, dim)
	for i := 0; i < dim; i++ {
		row := make([]Expr, len(elements))
		for j, el := range elements {
			if list, isList := el.(*Expression); isList && list.HasForm("List", -1) {
				row[j] = list.Elements[i]
			} else {
				row[j] = el
			}
		}
		rows[i] = NewExpr(head, row...)
	}
	return ListOf(rows...), true, true
}

// Normalize applies the structural normalization steps (Sequence splicing,
// Flat, Orderless) to an argument list under attrs. Hold filtering and
// Listable threading are driven by the evaluator, which owns argument
// evaluation and re-entry.
func Normalize(attrs Attr, head Expr, elements []Expr) []Expr {
	elements = spliceSequences(elements, attrs)
	if attrs.Has(AttrFlat) {
		elements = flattenFlat(head, elements)
	}
	if attrs.Has(AttrOrderless) {
		sorted := append([]Expr(nil), elements...)
		sortElements(sorted)
		elements = sorted
	}
	return elements
}
