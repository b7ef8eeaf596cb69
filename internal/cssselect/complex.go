package cssselect

// Combinator is the relationship between a compound selector and the one
// before it in a complex selector.
type Combinator uint8

const (
	// AncestorOf is the descendant combinator (a space). It is always the
	// (implicit) leading combinator of a complex selector's first node.
	AncestorOf Combinator = iota
	ParentOf   // ">"
	Precedes   // "~"
	AdjacentTo // "+"
	Reference  // "/"
)

func (c Combinator) String() string {
	switch c {
	case AncestorOf:
		return " "
	case ParentOf:
		return ">"
	case Precedes:
		return "~"
	case AdjacentTo:
		return "+"
	case Reference:
		return "/"
	}
	return "?"
}

// Complex is a complex selector: a linked chain of (combinator, compound)
// nodes, e.g. "a.foo > b ~ c". The leading combinator on the first node is
// always AncestorOf. A node with a nil Head is a legal trailing
// combinator-only node while selectors are mid-merge, but never legal in a
// finished selector list.
type Complex struct {
	Combinator Combinator
	Head       *Compound
	Tail       *Complex

	// sources records which complex selectors "produced" this one through
	// prior extension, as arena-style pointer identity, never structural
	// ownership. Set exactly once at construction per §4.6 step 6; additive
	// only in the sense that a later extension unions a fresh copy, never by
	// mutating a shared set in place.
	sources sourceSet
}

// sourceSet is a pointer-identity set of *Complex "origin" selectors, used
// only by trim. Never includes the selector it belongs to.
type sourceSet map[*Complex]bool

func newSourceSet() sourceSet { return nil }

func (s sourceSet) union(other sourceSet, self *Complex) sourceSet {
	if len(s) == 0 && len(other) == 0 {
		return nil
	}
	out := make(sourceSet, len(s)+len(other))
	for k := range s {
		if k != self {
			out[k] = true
		}
	}
	for k := range other {
		if k != self {
			out[k] = true
		}
	}
	return out
}

func (s sourceSet) add(c *Complex, self *Complex) sourceSet {
	if c == self {
		return s
	}
	out := make(sourceSet, len(s)+1)
	for k := range s {
		out[k] = true
	}
	out[c] = true
	return out
}

func (s sourceSet) maxSpecificity() int {
	max := 0
	for c := range s {
		if spec := c.Specificity(); spec > max {
			max = spec
		}
	}
	return max
}

// Sources exposes the origin set for diagnostics/tests; callers must treat
// it as read-only.
func (c *Complex) Sources() []*Complex {
	out := make([]*Complex, 0, len(c.sources))
	for s := range c.sources {
		out = append(out, s)
	}
	return out
}

// Last walks to the final node in the chain.
func (c *Complex) Last() *Complex {
	for c.Tail != nil {
		c = c.Tail
	}
	return c
}

// Length counts the nodes in the chain.
func (c *Complex) Length() int {
	n := 0
	for cur := c; cur != nil; cur = cur.Tail {
		n++
	}
	return n
}

// Specificity sums every head compound's specificity along the chain.
func (c *Complex) Specificity() int {
	total := 0
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head != nil {
			total += cur.Head.Specificity()
		}
	}
	return total
}

func (c *Complex) HasPlaceholder() bool {
	for cur := c; cur != nil; cur = cur.Tail {
		if cur.Head != nil && cur.Head.HasPlaceholder() {
			return true
		}
	}
	return false
}

// CloneDeep copies the entire chain (but not sources, which are reset to
// empty on the clone: a clone participating in a new extension gets its
// sources assigned exactly once by the caller per §4.6 step 6).
func (c *Complex) CloneDeep() *Complex {
	if c == nil {
		return nil
	}
	return &Complex{
		Combinator: c.Combinator,
		Head:       c.Head.clone(),
		Tail:       c.Tail.CloneDeep(),
	}
}

// ReplaceInnermostHead returns a deep clone of c with its last node's head
// swapped for unified, keeping that node's combinator.
func (c *Complex) ReplaceInnermostHead(unified *Compound) *Complex {
	clone := c.CloneDeep()
	last := clone.Last()
	last.Head = unified
	return clone
}

// WithSources returns a shallow copy of c (chain shared) carrying the given
// source set. Used once, right after a result selector is built, never to
// mutate a selector already in circulation.
func (c *Complex) WithSources(srcs sourceSet) *Complex {
	cp := *c
	cp.sources = srcs
	return &cp
}

// Equal is structural equality across the whole chain. When
// simpleSelectorOrderDependent is false, per-compound internal ordering of
// non-type simples is ignored.
func (a *Complex) Equal(b *Complex, simpleSelectorOrderDependent bool) bool {
	for {
		if a == nil || b == nil {
			return a == b
		}
		if a.Combinator != b.Combinator {
			return false
		}
		if !a.Head.Equal(b.Head, simpleSelectorOrderDependent) {
			return false
		}
		a, b = a.Tail, b.Tail
	}
}

// IsSuperselectorOf reports whether every element matched by b is also
// matched by a. AncestorOf in a may absorb any prefix of b (descendant
// combinators impose no adjacency requirement), while >, +, and ~ require
// a strict alignment: the corresponding node in b must use the same
// combinator and a superselecting head.
func (a *Complex) IsSuperselectorOf(b *Complex) bool {
	return complexSuperselector(a, b)
}

func complexSuperselector(a, b *Complex) bool {
	if a == nil {
		return true
	}
	if b == nil {
		return false
	}

	if a.Combinator == AncestorOf {
		// Try to align a's head against every possible position in b's
		// remaining chain; AncestorOf means "some ancestor", not "the next
		// one", so we may skip any number of b's nodes first.
		for cur := b; cur != nil; cur = cur.Tail {
			if cur.Head != nil && a.Head.IsSuperselectorOf(cur.Head) && complexSuperselector(a.Tail, cur.Tail) {
				return true
			}
		}
		return false
	}

	if b.Combinator != a.Combinator {
		return false
	}
	if !a.Head.IsSuperselectorOf(b.Head) {
		return false
	}
	return complexSuperselector(a.Tail, b.Tail)
}

// List is a selector list: an ordered set of complex selectors joined by
// commas.
type List struct {
	Complexes []*Complex
}

func NewList(complexes ...*Complex) *List {
	return &List{Complexes: complexes}
}

func (l *List) HasPlaceholder() bool {
	if l == nil {
		return false
	}
	for _, c := range l.Complexes {
		if c.HasPlaceholder() {
			return true
		}
	}
	return false
}

func (l *List) MaxSpecificity() int {
	if l == nil || len(l.Complexes) == 0 {
		return 0
	}
	max := 0
	for _, c := range l.Complexes {
		if spec := c.Specificity(); spec > max {
			max = spec
		}
	}
	return max
}

// Equal is used by Simple.Equal for wrapped selectors (":not(...)").
func (a *List) Equal(b *List, simpleSelectorOrderDependent bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Complexes) != len(b.Complexes) {
		return false
	}
	for i, ac := range a.Complexes {
		if !ac.Equal(b.Complexes[i], simpleSelectorOrderDependent) {
			return false
		}
	}
	return true
}

// ContainsComplex reports whether any selector in l structurally equals c.
func (l *List) ContainsComplex(c *Complex, simpleSelectorOrderDependent bool) bool {
	for _, existing := range l.Complexes {
		if existing.Equal(c, simpleSelectorOrderDependent) {
			return true
		}
	}
	return false
}
