package cssselect

import (
	"strings"

	"github.com/styleweave/styleweave/internal/logger"
)

// selectorKey is a structural fingerprint of a whole complex selector.
// compoundKey uses it for the selector lists carried by wrapped simple
// selectors (":not(...)"), so extendCompound's cycle guard compares those
// structurally: the same textual selector is cloned repeatedly as it's
// rebuilt through weave/trim, and a pointer-identity key would not
// recognize those clones as the same selector.
func selectorKey(c *Complex) string {
	var b strings.Builder
	for cur := c; cur != nil; cur = cur.Tail {
		b.WriteByte('|')
		b.WriteString(cur.Combinator.String())
		b.WriteByte('|')
		if cur.Head != nil {
			for _, s := range cur.Head.Simples {
				b.WriteString(simpleKey(s))
				b.WriteByte(':')
				b.WriteString(s.PseudoArg)
				b.WriteByte(':')
				b.WriteString(s.AttrOp)
				b.WriteByte(':')
				b.WriteString(s.AttrVal)
				if s.Wrapped != nil {
					for _, wc := range s.Wrapped.Complexes {
						b.WriteString(selectorKey(wc))
					}
				}
				b.WriteByte(',')
			}
		}
	}
	return b.String()
}

// compoundKey is the same kind of structural fingerprint as selectorKey, but
// for a single compound rather than a whole complex chain. extendCompound's
// cycle guard is keyed on the *stripped target compound* being removed from
// a selector, not on the extender that replaces it - two unrelated @extends
// that happen to strip down to the same compound must not recurse into each
// other forever, even when they resolve to textually different extenders.
func compoundKey(c *Compound) string {
	var b strings.Builder
	if c == nil {
		return b.String()
	}
	for _, s := range c.Simples {
		b.WriteString(simpleKey(s))
		b.WriteByte(':')
		b.WriteString(s.PseudoArg)
		b.WriteByte(':')
		b.WriteString(s.AttrOp)
		b.WriteByte(':')
		b.WriteString(s.AttrVal)
		if s.Wrapped != nil {
			for _, wc := range s.Wrapped.Complexes {
				b.WriteString(selectorKey(wc))
			}
		}
		b.WriteByte(',')
	}
	return b.String()
}

func seenWithCompound(seen map[string]bool, c *Compound) map[string]bool {
	out := make(map[string]bool, len(seen)+1)
	for k := range seen {
		out[k] = true
	}
	out[compoundKey(c)] = true
	return out
}

func flattenToNodes(c *Complex) []*Complex {
	var out []*Complex
	for cur := c; cur != nil; cur = cur.Tail {
		out = append(out, cur)
	}
	return out
}

// choiceAlt is one alternative available at a single spine position: the
// flattened body it would contribute, plus the sources (if any) the
// extend that produced it carries. Combinator-only positions and a
// position's own original compound carry no sources of their own.
type choiceAlt struct {
	seq Seq
	src sourceSet
}

// cartesianChoices computes every way to pick exactly one alternative from
// each position's choice list, preserving position order. A position with
// no alternatives at all makes the whole product empty, per paths' usual
// Cartesian-product contract.
func cartesianChoices(choices [][]choiceAlt) [][]choiceAlt {
	results := [][]choiceAlt{{}}
	for _, alts := range choices {
		if len(alts) == 0 {
			return nil
		}
		next := make([][]choiceAlt, 0, len(results)*len(alts))
		for _, prefix := range results {
			for _, alt := range alts {
				combo := make([]choiceAlt, len(prefix)+1)
				copy(combo, prefix)
				combo[len(prefix)] = alt
				next = append(next, combo)
			}
		}
		results = next
	}
	return results
}

// complexSelectorHasExtension reports whether any compound along c's chain
// (including inside wrapped selector lists) is a candidate for at least one
// registered extend.
func complexSelectorHasExtension(c *Complex, subsetMap *SubsetMap) bool {
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head == nil {
			continue
		}
		if len(subsetMap.Get(cur.Head)) > 0 {
			return true
		}
		for _, s := range cur.Head.Simples {
			if s.Kind == SWrapped && s.Wrapped != nil {
				for _, wc := range s.Wrapped.Complexes {
					if complexSelectorHasExtension(wc, subsetMap) {
						return true
					}
				}
			}
		}
	}
	return false
}

// extendCompound finds every registered extend whose target is a subset of
// compound and returns the full complex selectors that should stand in for
// compound's position, each carrying the remainder of compound's own
// simple selectors unified in. Transitive extends (the extender selector
// being itself an extend target somewhere else) are resolved recursively.
//
// Multiple subset-map entries can share the same extender complex selector,
// e.g. two separate "@extend" statements written against the same rule,
// each targeting a different simple selector that compound happens to
// carry. Per the union-then-strip rule, those entries are grouped by
// structurally equal extender first so compound loses every matched simple selector
// in one pass, rather than being unified against each target separately
// and producing one redundant candidate per entry.
//
// The extender's innermost head is unified with compound's remainder
// *before* recursing, and the recursion walks that merged newSelector, not
// the bare extender - an extend whose own target only matches once the
// remainder has been folded in (e.g. ".bar.qux" when the remainder is
// ".qux" and the bare extender is only ".bar") would otherwise be invisible
// to the recursive lookup. The seen guard is keyed on the stripped target
// compound being removed, not on the extender that replaces it.
func extendCompound(log logger.Log, compound *Compound, subsetMap *SubsetMap, seen map[string]bool, isReplace bool) []*Complex {
	entries := subsetMap.Get(compound)
	if len(entries) == 0 {
		return nil
	}

	var results []*Complex
	for _, g := range groupEntriesByExtender(entries) {
		last := g.extender.Last()
		if last.Head == nil {
			continue
		}
		remainder := compound.minus(g.combinedTarget)
		unified := last.Head.UnifyWith(remainder)
		if unified == nil {
			continue
		}

		for _, e := range g.entries {
			if !sameScope(e.MediaBlock, compound.MediaBlock) {
				raise(CrossDirectiveExtend, log, crossDirectiveMsg(e, compound))
			}
		}
		for _, e := range g.entries {
			e.applied = true
		}

		newSelector := g.extender.ReplaceInnermostHead(unified)
		newSelector = newSelector.WithSources(newSelector.sources.add(g.extender, nil))
		results = append(results, newSelector)

		key := compoundKey(g.combinedTarget)
		if !seen[key] {
			nextSeen := seenWithCompound(seen, g.combinedTarget)
			results = append(results, extendComplex(log, newSelector, subsetMap, nextSeen, false, isReplace)...)
		}
	}
	return results
}

// extenderGroup collects every subset-map entry that shares one extender
// complex selector, plus the union of their target compounds' simple
// selectors (the combined "extendCompound" of §4.6 step 2).
type extenderGroup struct {
	extender       *Complex
	entries        []*ExtensionEntry
	combinedTarget *Compound
}

func groupEntriesByExtender(entries []*ExtensionEntry) []*extenderGroup {
	var groups []*extenderGroup
	for _, e := range entries {
		var g *extenderGroup
		for _, existing := range groups {
			if existing.extender.Equal(e.Extender, false) {
				g = existing
				break
			}
		}
		if g == nil {
			g = &extenderGroup{extender: e.Extender}
			groups = append(groups, g)
		}
		g.entries = append(g.entries, e)
		g.combinedTarget = unionCompounds(g.combinedTarget, e.Target)
	}
	return groups
}

// unionCompounds returns a compound carrying every simple selector from a
// and b, deduplicated by Equal and preserving a's ordering first.
func unionCompounds(a, b *Compound) *Compound {
	if a == nil {
		return b.clone()
	}
	out := a.clone()
	for _, s := range b.Simples {
		dup := false
		for _, o := range out.Simples {
			if o.Equal(s) {
				dup = true
				break
			}
		}
		if !dup {
			out.Simples = append(out.Simples, s)
		}
	}
	return out
}

// extendComplex resolves every extend along a whole complex selector's
// chain. Each spine position contributes its own list of alternatives (a
// combinator-only node has exactly one: itself; a compound node has one
// per registered extend that matched it, plus the original compound
// itself unless some extension already superselects it); the full
// candidate set is the Cartesian product across positions, woven back
// together position by position so combinator constraints between
// neighboring choices are respected. isOriginal marks the top-level call
// (as opposed to a recursive one reached through extendCompound) so
// sources attach only to selectors that genuinely trace back to something
// the stylesheet author wrote, not to an already-extended intermediate.
func extendComplex(log logger.Log, complex *Complex, subsetMap *SubsetMap, seen map[string]bool, isOriginal, isReplace bool) []*Complex {
	nodes := flattenToNodes(complex)
	changed := false
	choices := make([][]choiceAlt, 0, len(nodes))

	for i, node := range nodes {
		if node.Head == nil {
			choices = append(choices, []choiceAlt{{seq: Seq{combinatorElem(node.Combinator)}}})
			continue
		}

		ownComb := AncestorOf
		if i > 0 {
			ownComb = node.Combinator
		}
		if ownComb != AncestorOf {
			// An explicit combinator is a spine position of its own, so weave
			// appends it after the preceding positions rather than treating it
			// as a leading combinator of this position's alternatives.
			choices = append(choices, []choiceAlt{{seq: Seq{combinatorElem(ownComb)}}})
		}
		ownSeq := Seq{compoundElem(node.Head)}
		ownComplex := &Complex{Combinator: ownComb, Head: node.Head}

		extended := extendCompound(log, node.Head, subsetMap, seen, isReplace)
		if len(extended) == 0 {
			choices = append(choices, []choiceAlt{{seq: ownSeq}})
			continue
		}
		changed = true

		isSuperselector := false
		alts := make([]choiceAlt, 0, len(extended))
		for _, ec := range extended {
			if ec.IsSuperselectorOf(ownComplex) {
				isSuperselector = true
			}
			alts = append(alts, choiceAlt{seq: ComplexToSeq(ec), src: ec.sources})
		}
		if !isSuperselector {
			alts = append([]choiceAlt{{seq: ownSeq}}, alts...)
		}
		choices = append(choices, alts)
	}

	if !changed {
		return nil
	}

	// Each weave of each Cartesian-product combination is its own group: the
	// Second Law of Extend is only enforced across distinct candidate
	// derivations, never within the handful of equally-valid orderings one
	// derivation's own weave produced.
	var groups [][]*Complex
	for _, combo := range cartesianChoices(choices) {
		path := make([]Seq, len(combo))
		var unionSrc sourceSet
		for i, c := range combo {
			path[i] = c.seq
			unionSrc = unionSrc.union(c.src, nil)
		}

		var group []*Complex
		for _, w := range weave(path) {
			rebuilt := SeqToComplex(w)
			if rebuilt == nil {
				continue
			}
			srcs := unionSrc
			if isOriginal && !complex.HasPlaceholder() {
				srcs = srcs.add(complex, rebuilt)
			}
			group = append(group, rebuilt.WithSources(srcs))
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	var results []*Complex
	for _, group := range trim(groups, isReplace) {
		results = append(results, group...)
	}
	return results
}

// trim implements the Second Law of Extend: a selector produced by
// extension must never be less specific than necessary. groups holds one
// slice per originating derivation (one per Cartesian-product combination
// that made it through weave); a candidate is dropped only when some OTHER
// derivation offers a selector both at least as specific and a
// superselector of it - candidates are never trimmed against siblings from
// their own derivation, since those are just alternate, equally valid
// orderings of the same combinators. Skipped above a size where the
// quadratic comparison would dominate runtime; in that regime a handful of
// redundant, broader rules in the output is preferable to stalling
// compilation.
func trim(groups [][]*Complex, isReplace bool) [][]*Complex {
	if len(groups) > 100 {
		return groups
	}

	result := make([][]*Complex, len(groups))
	copy(result, groups)

	for gi, group := range groups {
		var kept []*Complex
		for _, seq1 := range group {
			maxSpec := 0
			if isReplace {
				maxSpec = seq1.Specificity()
			}
			if s := seq1.sources.maxSpecificity(); s > maxSpec {
				maxSpec = s
			}

			dominated := false
			for gj, other := range result {
				if gj == gi {
					continue
				}
				for _, seq2 := range other {
					if seq2.Specificity() >= maxSpec && seq2.IsSuperselectorOf(seq1) {
						dominated = true
						break
					}
				}
				if dominated {
					break
				}
			}
			if !dominated {
				kept = append(kept, seq1)
			}
		}
		result[gi] = kept
	}
	return result
}

// extendWrapped recurses into every wrapped selector list (":not(...)",
// ":is(...)", and similar) a compound's simples carry, replacing them with
// their own extended form. Wrapped lists are extended against the same
// subset map as the rest of the stylesheet, not a private copy.
func extendWrapped(log logger.Log, compound *Compound, subsetMap *SubsetMap, isReplace bool) (*Compound, bool) {
	changedAny := false
	out := compound.clone()
	for i, s := range out.Simples {
		if s.Kind != SWrapped || s.Wrapped == nil {
			continue
		}
		newInner, changed := ExtendSelectorList(log, s.Wrapped, subsetMap, isReplace)
		if changed {
			changedAny = true
			out.Simples[i].Wrapped = newInner
		}
	}
	return out, changedAny
}

// ExtendSelectorList resolves every @extend registered in subsetMap
// against list, returning the rewritten selector list and whether anything
// actually changed. isReplace selects pure substitution semantics (the
// unextended original selector is dropped, not kept alongside the
// extension) versus the default additive semantics (both forms are kept).
func ExtendSelectorList(log logger.Log, list *List, subsetMap *SubsetMap, isReplace bool) (*List, bool) {
	if list == nil {
		return nil, false
	}

	extendedAny := false
	var out []*Complex

	for _, original := range list.Complexes {
		complex := original
		wrappedChanged := false
		{
			clone := original.CloneDeep()
			for n := clone; n != nil; n = n.Tail {
				if n.Head == nil {
					continue
				}
				if newHead, changed := extendWrapped(log, n.Head, subsetMap, isReplace); changed {
					n.Head = newHead
					wrappedChanged = true
				}
			}
			if wrappedChanged {
				complex = clone
			}
		}

		if !complexSelectorHasExtension(complex, subsetMap) {
			if wrappedChanged {
				extendedAny = true
			}
			out = appendUnique(out, complex)
			continue
		}

		extended := extendComplex(log, complex, subsetMap, map[string]bool{}, true, isReplace)
		if len(extended) == 0 {
			if wrappedChanged {
				extendedAny = true
			}
			out = appendUnique(out, complex)
			continue
		}

		extendedAny = true
		if !isReplace {
			out = appendUnique(out, complex)
		} else if len(extended) >= 2 && extended[0].Equal(complex, false) {
			// extendComplex lists the unextended original first; replace
			// semantics drop it.
			extended = extended[1:]
		}
		for _, ec := range extended {
			out = appendUnique(out, ec)
		}
	}

	out = stripPlaceholderOnlySelectors(out)

	return &List{Complexes: out}, extendedAny
}

func appendUnique(list []*Complex, c *Complex) []*Complex {
	for _, existing := range list {
		if existing.Equal(c, false) {
			return list
		}
	}
	return append(list, c)
}

// stripPlaceholderOnlySelectors drops any selector that still carries a
// placeholder simple selector after extension: placeholders are purely
// template machinery and a rule whose final selector still names one was
// never meant to be emitted on its own.
func stripPlaceholderOnlySelectors(list []*Complex) []*Complex {
	out := make([]*Complex, 0, len(list))
	for _, c := range list {
		if c.HasPlaceholder() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ReportUnappliedExtends walks every entry registered in subsetMap and
// raises on the first non-optional entry that never matched anything,
// exactly like CrossDirectiveExtend: a stylesheet with a broken, non-optional
// @extend must fail to compile, not silently succeed. Intended to be called
// once, after every selector list in a stylesheet has been passed through
// ExtendSelectorList.
func ReportUnappliedExtends(log logger.Log, subsetMap *SubsetMap) {
	for _, e := range subsetMap.Values() {
		if e.applied || e.IsOptional {
			continue
		}
		raise(UnappliedExtend, log, unappliedExtendMsg(e))
	}
}
