package cssselect

import "github.com/styleweave/styleweave/internal/logger"

// MediaBlock is a back-reference to whatever @media/@supports block a
// compound selector's ruleset lives inside. It never owns the compound; the
// extension engine only ever reads Query() off of it to compare directive
// scope. The real at-rule AST lives outside this package's scope.
type MediaBlock struct {
	Query string
}

// sameScope compares two (possibly nil) media blocks the bug-compatible way
// the engine this was ported from does: by stringified query equality, not
// by structural/pointer identity. Two nils are always the same scope.
func sameScope(a, b *MediaBlock) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Query == b.Query
}

// Compound is a sequence of simple selectors that all apply to the same
// element, e.g. "a.foo#bar[href]". At most one type selector may appear,
// and if present it comes first.
type Compound struct {
	Simples []Simple

	Loc logger.Loc

	// HasLineFeed is purely cosmetic bookkeeping carried through cloning so a
	// printer elsewhere can decide whether to break a line before this
	// compound. The extension engine never reads it to make a decision.
	HasLineFeed bool

	// MediaBlock is the directive this compound's ruleset lives under, or nil
	// at the top level. Used only for extend's cross-directive scope check.
	MediaBlock *MediaBlock

	// Extended is caller-owned bookkeeping carried through cloning and
	// reset by CloneWithoutExtendState. The extension engine never sets it:
	// whether an @extend was consumed is tracked on ExtensionEntry's
	// applied flag instead.
	Extended bool
}

func NewCompound(simples ...Simple) *Compound {
	return &Compound{Simples: simples}
}

func (c *Compound) clone() *Compound {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Simples = append([]Simple(nil), c.Simples...)
	return &cp
}

// CloneWithoutExtendState returns a deep-enough copy for building a new
// result selector: simples are copied, but mutable bookkeeping (Extended)
// resets, since the clone hasn't itself been consumed by anything yet.
func (c *Compound) CloneWithoutExtendState() *Compound {
	cp := c.clone()
	cp.Extended = false
	return cp
}

func (c *Compound) Specificity() int {
	total := 0
	for _, s := range c.Simples {
		total += s.Specificity()
	}
	return total
}

// HasPlaceholder reports whether any simple selector in this compound (or,
// recursively, inside a wrapped selector list) is a placeholder.
func (c *Compound) HasPlaceholder() bool {
	for _, s := range c.Simples {
		if s.Kind == SPlaceholder {
			return true
		}
		if s.Kind == SWrapped && s.Wrapped.HasPlaceholder() {
			return true
		}
	}
	return false
}

// Equal is structural equality. When simpleSelectorOrderDependent is false,
// the relative order of non-type simples is ignored (this is what lets
// ".b.a" and ".a.b" compare equal when extend de-duplicates results, while
// still comparing a type selector's position strictly since the data model
// invariant already pins it first).
func (a *Compound) Equal(b *Compound, simpleSelectorOrderDependent bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Simples) != len(b.Simples) {
		return false
	}
	if simpleSelectorOrderDependent {
		for i, as := range a.Simples {
			if !as.Equal(b.Simples[i]) {
				return false
			}
		}
		return true
	}
	used := make([]bool, len(b.Simples))
outer:
	for _, as := range a.Simples {
		for j, bs := range b.Simples {
			if used[j] {
				continue
			}
			if as.Equal(bs) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// minus returns the simple selectors of c that are not present in sel
// (set difference by Equal), preserving c's original order. This is
// self_without_sel in the spec: the part of an extend target's compound
// that survives after the matched subset is stripped away.
func (c *Compound) minus(sel *Compound) *Compound {
	out := &Compound{Loc: c.Loc, MediaBlock: c.MediaBlock, HasLineFeed: c.HasLineFeed}
	for _, s := range c.Simples {
		found := false
		for _, t := range sel.Simples {
			if s.Equal(t) {
				found = true
				break
			}
		}
		if !found {
			out.Simples = append(out.Simples, s)
		}
	}
	return out
}

// isSubsetOf reports whether every simple selector in c also occurs in sel.
// This is the predicate behind the extension subset map's "key is a subset
// of the candidate compound" lookup rule.
func (c *Compound) isSubsetOf(sel *Compound) bool {
	for _, s := range c.Simples {
		found := false
		for _, t := range sel.Simples {
			if s.Equal(t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// UnifyWith returns a compound selector matching every element matched by
// both a and b, or nil if the two are provably incompatible (e.g. two
// different type selectors, or two different ids). Results are
// deduplicated, pseudo-elements sort last, and at most one type selector
// survives.
func (a *Compound) UnifyWith(b *Compound) *Compound {
	if a == nil {
		return b.clone()
	}
	if b == nil {
		return a.clone()
	}

	if key, ok := unifyKey(a, b); ok {
		if cached, ok := unifyCache.Get(key); ok {
			return cached.clone()
		}
		result := unifyUncached(a, b)
		unifyCache.Add(key, result)
		return result.clone()
	}
	return unifyUncached(a, b)
}

func unifyUncached(a, b *Compound) *Compound {
	out := &Compound{}

	var typeSel *Simple
	for _, s := range a.Simples {
		if s.Kind == SType {
			t := s
			typeSel = &t
			break
		}
	}
	for _, s := range b.Simples {
		if s.Kind == SType {
			if typeSel != nil && typeSel.Name != s.Name {
				return nil // two incompatible type selectors: no element can match both
			}
			if typeSel == nil {
				t := s
				typeSel = &t
			}
			break
		}
	}
	if typeSel != nil {
		out.Simples = append(out.Simples, *typeSel)
	}

	var ids []Simple
	addUnique := func(list []Simple) {
		for _, s := range list {
			if s.Kind == SType {
				continue
			}
			if s.Kind == SId {
				for _, existing := range ids {
					if existing.Name != s.Name {
						return
					}
				}
				ids = append(ids, s)
			}
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
	}
	addUnique(a.Simples)

	// Two distinct ids can never match the same element.
	for _, s := range b.Simples {
		if s.Kind == SId {
			for _, existing := range ids {
				if existing.Name != s.Name {
					return nil
				}
			}
		}
	}
	addUnique(b.Simples)

	sortPseudoElementsLast(out.Simples)
	return out
}

func sortPseudoElementsLast(simples []Simple) {
	n := len(simples)
	write := 0
	var elements []Simple
	for i := 0; i < n; i++ {
		if simples[i].Kind == SPseudo && simples[i].IsElement {
			elements = append(elements, simples[i])
			continue
		}
		simples[write] = simples[i]
		write++
	}
	copy(simples[write:], elements)
}

type unifyCacheKey struct {
	a, b *Compound
}

// unifyKey keys the cache on the pointer identity of both compounds. Every
// non-nil pair gets a key, including compounds freshly built mid-algorithm,
// whose entries are only hit if the same two pointers are unified again.
func unifyKey(a, b *Compound) (unifyCacheKey, bool) {
	if a == nil || b == nil {
		return unifyCacheKey{}, false
	}
	return unifyCacheKey{a, b}, true
}

// IsSuperselectorOf reports whether every element matched by other is also
// matched by c: every simple selector in c has an equivalent, or a weaker
// match, present in other.
func (c *Compound) IsSuperselectorOf(other *Compound) bool {
	if c == nil {
		return true
	}
	if other == nil {
		return len(c.Simples) == 0
	}
	for _, s := range c.Simples {
		if !compoundContainsOrImplies(other, s) {
			return false
		}
	}
	return true
}

func compoundContainsOrImplies(other *Compound, s Simple) bool {
	for _, o := range other.Simples {
		if s.Equal(o) {
			return true
		}
	}
	if s.Kind == SWrapped && s.Name == "not" {
		// "X:not(.a)" is a superselector of anything not carrying ".a" -- we
		// only special-case the common single-compound negation form here;
		// anything fancier is treated conservatively as non-matching.
		if s.Wrapped != nil {
			for _, inner := range s.Wrapped.Complexes {
				if inner.Tail != nil {
					return false
				}
				if inner.Head != nil {
					for _, is := range inner.Head.Simples {
						for _, o := range other.Simples {
							if o.Equal(is) {
								return false
							}
						}
					}
				}
			}
		}
		return true
	}
	return false
}
