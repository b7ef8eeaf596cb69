package cssselect

// Elem is the flattened, untyped form the weave/LCS machinery operates on:
// either a bare combinator or a single compound selector. This plays the
// role the ported algorithm's polymorphic "Node" wrapper plays in a
// language without tagged unions - a two-case sum type is simplest
// expressed in Go as one struct with a discriminant field rather than an
// interface, since every consumer needs to pattern-match on both cases
// anyway.
type Elem struct {
	IsCombinator bool
	Combinator   Combinator
	Compound     *Compound
}

func combinatorElem(c Combinator) Elem { return Elem{IsCombinator: true, Combinator: c} }
func compoundElem(c *Compound) Elem    { return Elem{Compound: c} }

// Seq is the flattened body of a complex selector: combinators and
// compounds interleaved, with no implicit leading AncestorOf (unlike
// Complex, which always carries one on its first node).
type Seq []Elem

// ComplexToSeq flattens a complex selector's chain into a Seq. AncestorOf
// (the descendant combinator, a bare space) is never materialized as its
// own element - two adjacent compound elements with nothing between them
// already mean "descendant" - matching the source representation the
// ported algorithm's "complexSelectorToNode" produces, where only the
// non-trivial combinators (">", "~", "+", "/") show up as explicit nodes.
func ComplexToSeq(c *Complex) Seq {
	var out Seq
	for i, cur := 0, c; cur != nil; i, cur = i+1, cur.Tail {
		if i > 0 && cur.Combinator != AncestorOf {
			out = append(out, combinatorElem(cur.Combinator))
		}
		if cur.Head != nil {
			out = append(out, compoundElem(cur.Head))
		}
	}
	return out
}

// SeqToComplex rebuilds a chain from a flattened Seq. It is the inverse of
// ComplexToSeq modulo sources, which the caller must assign separately.
func SeqToComplex(seq Seq) *Complex {
	if len(seq) == 0 {
		return nil
	}

	type node struct {
		combinator Combinator
		head       *Compound
	}
	var nodes []node

	pendingCombinator := AncestorOf
	havePending := false

	for _, e := range seq {
		if e.IsCombinator {
			pendingCombinator = e.Combinator
			havePending = true
			continue
		}
		if havePending {
			nodes = append(nodes, node{combinator: pendingCombinator, head: e.Compound})
		} else {
			nodes = append(nodes, node{combinator: AncestorOf, head: e.Compound})
		}
		havePending = false
	}
	// A trailing combinator with no following compound becomes a legal
	// trailing combinator-only node.
	if havePending {
		nodes = append(nodes, node{combinator: pendingCombinator, head: nil})
	}

	var head *Complex
	var tail **Complex = &head
	for _, n := range nodes {
		c := &Complex{Combinator: n.combinator, Head: n.head}
		*tail = c
		tail = &c.Tail
	}
	return head
}

func (seq Seq) clone() Seq {
	out := make(Seq, len(seq))
	copy(out, seq)
	return out
}

// groupSelectors partitions a flat Seq at boundaries where neither the
// current group's tail nor the remainder's head is a combinator: a group
// ends only between two adjacent compounds, so "a > b c" groups as
// [a > b] and [c], and a run of combinators stays with its neighbours.
func groupSelectors(seq Seq) []Seq {
	var groups []Seq
	rest := seq
	for len(rest) > 0 {
		var group Seq
		for {
			group = append(group, rest[0])
			rest = rest[1:]
			if len(rest) == 0 {
				break
			}
			if !group[len(group)-1].IsCombinator && !rest[0].IsCombinator {
				break
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// getAndRemoveInitialOps destructively splits leading combinators off seq,
// returning them and the shortened remainder.
func getAndRemoveInitialOps(seq Seq) (ops Seq, rest Seq) {
	i := 0
	for i < len(seq) && seq[i].IsCombinator {
		i++
	}
	return seq[:i:i], seq[i:]
}

// Fragment is one alternative way to fill a Diff slot.
type Fragment = Seq

// Slot is the set of alternatives available at one position in a Diff.
type Slot []Fragment

// Diff is an ordered list of slots; Paths realizes the cartesian product,
// picking exactly one fragment per slot and concatenating them in order.
// This plays the role of "paths(diff).map{|p| p.flatten}" in the ported
// algorithm: because each fragment is already a flat Seq, concatenation
// alone is the flatten step.
type Diff []Slot

func Paths(diff Diff) []Seq {
	results := []Seq{{}}
	for _, slot := range diff {
		if len(slot) == 0 {
			continue
		}
		next := make([]Seq, 0, len(results)*len(slot))
		for _, prefix := range results {
			for _, frag := range slot {
				combined := make(Seq, 0, len(prefix)+len(frag))
				combined = append(combined, prefix...)
				combined = append(combined, frag...)
				next = append(next, combined)
			}
		}
		results = next
	}
	return results
}

// chunks takes initial subsequences of seq1 and seq2 (destructively, via
// the returned remainders) up to the point where pred holds for each, then
// returns every ordering of those two subsequences: both concatenated one
// way, then the other. An empty result means both subsequences were empty.
// Generic over the element type so both the Elem-level chunking subweave's
// combinator interleaving would need and the group-level (Seq-of-Seq)
// chunking buildDiff performs on compound groups share one implementation.
func chunks[T any](seq1, seq2 []T, pred func([]T) bool) (alts [][]T, rest1, rest2 []T) {
	i := 0
	for i < len(seq1) && !pred(seq1[i:]) {
		i++
	}
	chunk1, rest1 := seq1[:i:i], seq1[i:]

	j := 0
	for j < len(seq2) && !pred(seq2[j:]) {
		j++
	}
	chunk2, rest2 := seq2[:j:j], seq2[j:]

	if len(chunk1) == 0 && len(chunk2) == 0 {
		return nil, rest1, rest2
	}
	if len(chunk1) == 0 {
		return [][]T{chunk2}, rest1, rest2
	}
	if len(chunk2) == 0 {
		return [][]T{chunk1}, rest1, rest2
	}

	perm1 := make([]T, 0, len(chunk1)+len(chunk2))
	perm1 = append(perm1, chunk1...)
	perm1 = append(perm1, chunk2...)

	perm2 := make([]T, 0, len(chunk1)+len(chunk2))
	perm2 = append(perm2, chunk2...)
	perm2 = append(perm2, chunk1...)

	return [][]T{perm1, perm2}, rest1, rest2
}
