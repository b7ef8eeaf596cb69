package cssselect

// mergeInitialOps decides whether two leading-combinator runs are
// compatible, and if so returns their merge. Two runs are only mergeable
// when one is a (not necessarily contiguous) subsequence of the other -
// anything else means the two selectors impose combinator requirements
// that can never both hold for the same element, a MergeFailure.
func mergeInitialOps(ops1, ops2 Seq) (Seq, bool) {
	if len(ops1) == 0 && len(ops2) == 0 {
		return Seq{}, true
	}
	longer, shorter := ops1, ops2
	if len(ops2) > len(ops1) {
		longer, shorter = ops2, ops1
	}
	lcs := combinatorLCS(ops1, ops2)
	if len(lcs) != len(shorter) {
		return nil, false
	}
	return longer, true
}

// popCombinator reports whether seq ends in a bare trailing combinator (a
// dangling combinator with no compound after it, legal mid-merge per the
// Complex data model) and, if so, returns it along with the remainder.
func popCombinator(seq Seq) (Combinator, Seq, bool) {
	if len(seq) == 0 || !seq[len(seq)-1].IsCombinator {
		return 0, seq, false
	}
	return seq[len(seq)-1].Combinator, seq[:len(seq)-1], true
}

// popCompound reports whether seq ends in a compound and, if so, returns it
// along with the remainder.
func popCompound(seq Seq) (*Compound, Seq, bool) {
	if len(seq) == 0 || seq[len(seq)-1].IsCombinator {
		return nil, seq, false
	}
	return seq[len(seq)-1].Compound, seq[:len(seq)-1], true
}

// prependSlot pushes a new slot onto the front of a Diff being accumulated
// back-to-front, mirroring the ported algorithm's repeated Array#unshift
// onto its result accumulator.
func prependSlot(diff Diff, fragments ...Seq) Diff {
	out := make(Diff, 0, len(diff)+1)
	out = append(out, Slot(fragments))
	out = append(out, diff...)
	return out
}

// mergeFinalOps walks seq1 and seq2 from their tails, resolving the
// combinator interactions at each pair of trailing combinators until
// neither sequence ends in a dangling one. It returns the resolved tail as
// a Diff (since some pairings, like two "~" with neither side a
// superselector of the other, admit more than one valid ordering) along
// with the two sequences' remaining, unconsumed middles. A false ok means
// the two selectors impose combinator requirements that can never both
// hold for the same element - a MergeFailure.
func mergeFinalOps(seq1, seq2 Seq) (diff Diff, rest1, rest2 Seq, ok bool) {
	for {
		op1, afterOp1, has1 := popCombinator(seq1)
		op2, afterOp2, has2 := popCombinator(seq2)

		switch {
		case !has1 && !has2:
			return diff, seq1, seq2, true

		case has1 && has2:
			sel1, afterSel1, ok1 := popCompound(afterOp1)
			sel2, afterSel2, ok2 := popCompound(afterOp2)
			if !ok1 || !ok2 {
				return nil, nil, nil, false
			}

			switch {
			case op1 == Precedes && op2 == Precedes:
				seq1, seq2 = afterSel1, afterSel2
				switch {
				case sel1.IsSuperselectorOf(sel2):
					diff = prependSlot(diff, Seq{compoundElem(sel2), combinatorElem(Precedes)})
				case sel2.IsSuperselectorOf(sel1):
					diff = prependSlot(diff, Seq{compoundElem(sel1), combinatorElem(Precedes)})
				default:
					alts := []Seq{
						{compoundElem(sel1), combinatorElem(Precedes), compoundElem(sel2), combinatorElem(Precedes)},
						{compoundElem(sel2), combinatorElem(Precedes), compoundElem(sel1), combinatorElem(Precedes)},
					}
					if merged := sel1.UnifyWith(sel2); merged != nil {
						alts = append(alts, Seq{compoundElem(merged), combinatorElem(Precedes)})
					}
					diff = prependSlot(diff, alts...)
				}

			case (op1 == Precedes && op2 == AdjacentTo) || (op1 == AdjacentTo && op2 == Precedes):
				seq1, seq2 = afterSel1, afterSel2
				tildeSel, plusSel := sel1, sel2
				if op1 != Precedes {
					tildeSel, plusSel = sel2, sel1
				}
				if tildeSel.IsSuperselectorOf(plusSel) {
					diff = prependSlot(diff, Seq{compoundElem(plusSel), combinatorElem(AdjacentTo)})
				} else {
					alts := []Seq{
						{compoundElem(tildeSel), combinatorElem(Precedes), compoundElem(plusSel), combinatorElem(AdjacentTo)},
					}
					if merged := plusSel.UnifyWith(tildeSel); merged != nil {
						alts = append(alts, Seq{compoundElem(merged), combinatorElem(AdjacentTo)})
					}
					diff = prependSlot(diff, alts...)
				}

			case op1 == ParentOf && (op2 == Precedes || op2 == AdjacentTo):
				// The child-combinator side gets pushed back for reprocessing
				// once the sibling-combinator side has drained further.
				seq2 = afterSel2
				diff = prependSlot(diff, Seq{compoundElem(sel2), combinatorElem(op2)})

			case op2 == ParentOf && (op1 == Precedes || op1 == AdjacentTo):
				seq1 = afterSel1
				diff = prependSlot(diff, Seq{compoundElem(sel1), combinatorElem(op1)})

			case op1 == op2:
				seq1, seq2 = afterSel1, afterSel2
				merged := sel1.UnifyWith(sel2)
				if merged == nil {
					return nil, nil, nil, false
				}
				diff = prependSlot(diff, Seq{compoundElem(merged), combinatorElem(op1)})

			default:
				return nil, nil, nil, false
			}

		case has1:
			sel1, afterSel1, ok1 := popCompound(afterOp1)
			if !ok1 {
				return nil, nil, nil, false
			}
			if op1 == ParentOf {
				if last2, rest2, okLast2 := popCompound(seq2); okLast2 && last2.IsSuperselectorOf(sel1) {
					seq2 = rest2
				}
			}
			seq1 = afterSel1
			diff = prependSlot(diff, Seq{compoundElem(sel1), combinatorElem(op1)})

		default: // has2
			sel2, afterSel2, ok2 := popCompound(afterOp2)
			if !ok2 {
				return nil, nil, nil, false
			}
			if op2 == ParentOf {
				if last1, rest1, okLast1 := popCompound(seq1); okLast1 && last1.IsSuperselectorOf(sel2) {
					seq1 = rest1
				}
			}
			seq2 = afterSel2
			diff = prependSlot(diff, Seq{compoundElem(sel2), combinatorElem(op2)})
		}
	}
}

func combinatorLCS(x, y Seq) Seq {
	return LCS(x, y, func(a, b Elem) (Elem, bool) {
		if a.Combinator == b.Combinator {
			return a, true
		}
		return Elem{}, false
	})
}

func seqEqual(a, b Seq) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsCombinator != b[i].IsCombinator {
			return false
		}
		if a[i].IsCombinator {
			if a[i].Combinator != b[i].Combinator {
				return false
			}
			continue
		}
		if !a[i].Compound.Equal(b[i].Compound, true) {
			return false
		}
	}
	return true
}

// mergeGroups decides whether two selector groups (as produced by
// groupSelectors) can
// stand for the same position in a woven result: either they're already
// identical, or both are bare single-compound groups - no leading
// combinator, i.e. the implicit AncestorOf - and one is a superselector of
// the other, in which case the more specific (subordinate) side is kept
// verbatim. Unlike mergeFinalOps' same-combinator branch, this never
// synthesizes a fresh unified compound: two groups that merely happen to
// unify without one superselecting the other are not an LCS match, they're
// two distinct alternatives left for chunks to permute.
func mergeGroups(a, b Seq) (Seq, bool) {
	if seqEqual(a, b) {
		return a, true
	}
	if len(a) != 1 || len(b) != 1 {
		return nil, false
	}
	elemA, elemB := a[0], b[0]
	if elemA.IsCombinator || elemB.IsCombinator {
		return nil, false
	}
	if elemA.Compound.IsSuperselectorOf(elemB.Compound) {
		return b, true
	}
	if elemB.Compound.IsSuperselectorOf(elemA.Compound) {
		return a, true
	}
	return nil, false
}

func flattenGroups(groups []Seq) Seq {
	var out Seq
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func groupMatches(g, target Seq) bool {
	_, ok := mergeGroups(g, target)
	return ok
}

// groupChunkAlternatives turns the [][]Seq alternatives chunks(...) reports
// into a single Slot, flattening each alternative's groups into one Seq.
func groupChunkAlternatives(alts [][]Seq) Slot {
	if len(alts) == 0 {
		return nil
	}
	slot := make(Slot, 0, len(alts))
	for _, a := range alts {
		slot = append(slot, flattenGroups(a))
	}
	return slot
}

// buildDiff interleaves the two group sequences around their shared
// subsequence lcsGroups, producing a Diff whose Paths are every legal
// ordering consistent with both inputs' relative group order. Ports
// extend.cpp's diff-construction loop literally: each step calls chunks
// with a predicate that stops at the next LCS-matched group, appends
// whatever alternative orderings chunks reports, then appends the matched
// group itself before advancing; once the LCS is exhausted, one final
// chunks call (predicate: remainder is empty) drains what's left of each
// side.
func buildDiff(groups1, groups2 []Seq, lcsGroups []Seq) Diff {
	var diff Diff
	g1, g2, rest := groups1, groups2, lcsGroups

	for len(g1) > 0 && len(g2) > 0 && len(rest) > 0 {
		target := rest[0]
		headMatchesTarget := func(gs []Seq) bool {
			return len(gs) > 0 && groupMatches(gs[0], target)
		}

		alts, r1, r2 := chunks(g1, g2, headMatchesTarget)
		if slot := groupChunkAlternatives(alts); len(slot) > 0 {
			diff = append(diff, slot)
		}

		matched := target
		if len(r1) > 0 {
			if merged, ok := mergeGroups(r1[0], target); ok {
				matched = merged
			}
		}
		diff = append(diff, Slot{matched})

		if len(r1) > 0 {
			r1 = r1[1:]
		}
		if len(r2) > 0 {
			r2 = r2[1:]
		}
		g1, g2, rest = r1, r2, rest[1:]
	}

	isEmpty := func(gs []Seq) bool { return len(gs) == 0 }
	alts, _, _ := chunks(g1, g2, isEmpty)
	if slot := groupChunkAlternatives(alts); len(slot) > 0 {
		diff = append(diff, slot)
	}
	return diff
}

// subweave computes every way two complex-selector bodies (already
// flattened, leading AncestorOf stripped) can be combined so that the
// result matches exactly the elements matched by both. A false second
// return is a MergeFailure: no combined selector exists.
func subweave(seq1, seq2 Seq) ([]Seq, bool) {
	if len(seq1) == 0 {
		return []Seq{seq2.clone()}, true
	}
	if len(seq2) == 0 {
		return []Seq{seq1.clone()}, true
	}

	q1 := seq1.clone()
	q2 := seq2.clone()

	init1, q1 := getAndRemoveInitialOps(q1)
	init2, q2 := getAndRemoveInitialOps(q2)

	root, ok := mergeInitialOps(init1, init2)
	if !ok {
		return nil, false
	}

	finDiff, q1, q2, ok := mergeFinalOps(q1, q2)
	if !ok {
		return nil, false
	}

	groups1 := groupSelectors(q1)
	groups2 := groupSelectors(q2)

	lcsGroups := LCS(groups2, groups1, mergeGroups)

	diff := buildDiff(groups1, groups2, lcsGroups)
	diff = append(diff, finDiff...)

	paths := Paths(diff)
	results := make([]Seq, 0, len(paths))
	for _, p := range paths {
		combined := make(Seq, 0, len(root)+len(p))
		combined = append(combined, root...)
		combined = append(combined, p...)
		results = append(results, combined)
	}
	return results, true
}
