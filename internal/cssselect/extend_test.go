package cssselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styleweave/styleweave/internal/logger"
)

func complexOf(simples ...Simple) *Complex {
	return &Complex{Head: NewCompound(simples...)}
}

func containsSelector(t *testing.T, list *List, want string) {
	t.Helper()
	for _, c := range list.Complexes {
		if c.String() == want {
			return
		}
	}
	t.Fatalf("selector list %v does not contain %q", list.String(), want)
}

func TestExtendSimpleClass(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("error")), complexOf(ClassSel("seriousError")), false, nil)

	list := NewList(complexOf(ClassSel("error")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	assert.Len(t, result.Complexes, 2)
	containsSelector(t, result, ".error")
	containsSelector(t, result, ".seriousError")
}

func TestExtendWithExtraClassOnExtendee(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("error")), complexOf(ClassSel("seriousError")), false, nil)

	list := NewList(complexOf(ClassSel("error"), ClassSel("intro")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	containsSelector(t, result, ".error.intro")
	containsSelector(t, result, ".seriousError.intro")
}

func TestExtendThroughDescendantCombinator(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(TypeSel("a")), complexOf(ClassSel("link")), false, nil)

	// "#main a"
	list := NewList(&Complex{
		Head: NewCompound(IdSel("main")),
		Tail: &Complex{Combinator: AncestorOf, Head: NewCompound(TypeSel("a"))},
	})

	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	containsSelector(t, result, "#main a")
	containsSelector(t, result, "#main .link")
}

func TestExtendTransitiveChain(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	// b extended by a
	subsetMap.Add(NewCompound(ClassSel("b")), complexOf(ClassSel("a")), false, nil)
	// a extended by c
	subsetMap.Add(NewCompound(ClassSel("a")), complexOf(ClassSel("c")), false, nil)

	list := NewList(complexOf(ClassSel("b")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	containsSelector(t, result, ".b")
	containsSelector(t, result, ".a")
	containsSelector(t, result, ".c")
}

// TestExtendTransitiveChainThroughMultiSimpleTarget guards against a bug
// where the recursive step resolved transitive extends against the bare
// extender instead of the extender merged with the remainder: ".bar.qux"
// only matches the ".bar.qux" extend target once ".qux" has been folded in,
// so recursing on bare ".bar" made the deeper ".baz" extend invisible.
func TestExtendTransitiveChainThroughMultiSimpleTarget(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	// .foo extended by .bar
	subsetMap.Add(NewCompound(ClassSel("foo")), complexOf(ClassSel("bar")), false, nil)
	// .bar.qux extended by .baz
	subsetMap.Add(NewCompound(ClassSel("bar"), ClassSel("qux")), complexOf(ClassSel("baz")), false, nil)

	list := NewList(complexOf(ClassSel("foo"), ClassSel("qux")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	containsSelector(t, result, ".foo.qux")
	containsSelector(t, result, ".bar.qux")
	containsSelector(t, result, ".baz")
}

func TestExtendStripsPlaceholder(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(PlaceholderSel("p")), complexOf(ClassSel("x")), false, nil)

	// "%p span"
	list := NewList(&Complex{
		Head: NewCompound(PlaceholderSel("p")),
		Tail: &Complex{Combinator: AncestorOf, Head: NewCompound(TypeSel("span"))},
	})

	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	for _, c := range result.Complexes {
		assert.False(t, c.HasPlaceholder(), "placeholder selector must be stripped from output")
	}
	containsSelector(t, result, ".x span")
}

func TestExtendWrappedNotSelector(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("a")), complexOf(ClassSel("b")), false, nil)

	inner := NewList(complexOf(ClassSel("a")))
	list := NewList(complexOf(WrappedSel("not", inner)))

	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	require.Len(t, result.Complexes, 1)
	wrapped := result.Complexes[0].Head.Simples[0]
	require.Equal(t, SWrapped, wrapped.Kind)
	assert.Len(t, wrapped.Wrapped.Complexes, 2)
}

func TestExtendEmptySubsetMapIsNoop(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()

	list := NewList(complexOf(ClassSel("error")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.False(t, changed)
	assert.Len(t, result.Complexes, 1)
	containsSelector(t, result, ".error")
}

func TestUnappliedExtendIsReported(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("never-present")), complexOf(ClassSel("x")), false, nil)

	list := NewList(complexOf(ClassSel("unrelated")))
	_, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.False(t, changed)

	var caught error
	func() {
		defer Recover(&caught)
		ReportUnappliedExtends(log, subsetMap)
	}()

	require.Error(t, caught)
	ee, ok := caught.(*ExtendError)
	require.True(t, ok)
	assert.Equal(t, UnappliedExtend, ee.Kind)

	msgs := log.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Error, msgs[0].Kind)
	assert.Contains(t, msgs[0].Text, ".never-present", "message must name the extendee")
	assert.Contains(t, msgs[0].Text, ".x", "message must name the extender")
	require.NotNil(t, msgs[0].Location, "message must carry the extender's position")
}

func TestOptionalExtendWithNoTargetIsSilent(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("never-present")), complexOf(ClassSel("x")), true, nil)

	list := NewList(complexOf(ClassSel("unrelated")))
	ExtendSelectorList(log, list, subsetMap, false)
	ReportUnappliedExtends(log, subsetMap)
	assert.Empty(t, log.Done())
}

func TestCrossDirectiveExtendPanics(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("error")), complexOf(ClassSel("seriousError")), false, &MediaBlock{Query: "screen"})

	list := NewList(complexOf(ClassSel("error"))) // top-level, MediaBlock nil -> scope mismatch

	var caught error
	func() {
		defer Recover(&caught)
		ExtendSelectorList(log, list, subsetMap, false)
	}()

	require.Error(t, caught)
	ee, ok := caught.(*ExtendError)
	require.True(t, ok)
	assert.Equal(t, CrossDirectiveExtend, ee.Kind)
	assert.Contains(t, ee.Msg.Text, ".seriousError", "message must name the extender")
	require.NotNil(t, ee.Msg.Location, "message must carry the extender's position")
}

func TestExtendCompoundCombinatorChain(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	// .foo extended by ".bar .baz"
	extender := &Complex{
		Head: NewCompound(ClassSel("bar")),
		Tail: &Complex{Combinator: AncestorOf, Head: NewCompound(ClassSel("baz"))},
	}
	subsetMap.Add(NewCompound(ClassSel("foo")), extender, false, nil)

	list := NewList(complexOf(ClassSel("foo"), ClassSel("qux")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)
	containsSelector(t, result, ".foo.qux")
	containsSelector(t, result, ".bar .baz.qux")

	for _, c := range result.Complexes {
		assert.NotEqual(t, ".baz.qux .bar", c.String(), "extend must not hoist the extender's ancestor past the unified compound")
	}
}

func TestMergeFinalOpsSiblingCombinators(t *testing.T) {
	a := NewCompound(ClassSel("a"))
	b := NewCompound(ClassSel("b"))

	// "X ~ a" and "X + b" interact via the tilde/plus branch: since a is not
	// a superselector of b, the "a ~ b +" ordering (plus the unified
	// alternative, if any) fills a single Diff slot.
	seq1 := Seq{compoundElem(a), combinatorElem(Precedes)}
	seq2 := Seq{compoundElem(b), combinatorElem(AdjacentTo)}

	diff, rest1, rest2, ok := mergeFinalOps(seq1, seq2)
	require.True(t, ok)
	assert.Empty(t, rest1)
	assert.Empty(t, rest2)
	require.Len(t, diff, 1)
	assert.GreaterOrEqual(t, len(diff[0]), 1)
}

func TestMergeFinalOpsChildCombinatorDrainsOneSide(t *testing.T) {
	a := NewCompound(ClassSel("a"))
	b := NewCompound(ClassSel("b"))

	// "X > a" against a bare "b" (no trailing combinator on the other side):
	// the child-combinator side drains one step at a time, leaving the
	// non-superselecting compound on the other side untouched.
	seq1 := Seq{compoundElem(a), combinatorElem(ParentOf)}
	seq2 := Seq{compoundElem(b)}

	diff, rest1, rest2, ok := mergeFinalOps(seq1, seq2)
	require.True(t, ok)
	assert.Empty(t, rest1)
	assert.Equal(t, Seq{compoundElem(b)}, rest2)
	assert.NotEmpty(t, diff)
}

func TestMergeGroupsSuperselectorTakesSubordinate(t *testing.T) {
	general := Seq{compoundElem(NewCompound(ClassSel("a")))}
	specific := Seq{compoundElem(NewCompound(ClassSel("a"), ClassSel("b")))}

	merged, ok := mergeGroups(general, specific)
	require.True(t, ok)
	assert.Equal(t, specific, merged)

	merged, ok = mergeGroups(specific, general)
	require.True(t, ok)
	assert.Equal(t, specific, merged)
}

func TestMergeGroupsUnrelatedUnifiableGroupsDoNotMatch(t *testing.T) {
	// Neither ".a" nor ".b" is a superselector of the other, even though
	// they happen to unify into ".a.b" - this must not be treated as an
	// LCS match (which would silently drop the two required permutation
	// alternatives chunks would otherwise produce).
	a := Seq{compoundElem(NewCompound(ClassSel("a")))}
	b := Seq{compoundElem(NewCompound(ClassSel("b")))}

	_, ok := mergeGroups(a, b)
	assert.False(t, ok)
}

func TestMergeGroupsRejectsMultiElementGroups(t *testing.T) {
	// A group with a leading combinator (">", "~", "+", "/") is never a
	// bare single-compound group, even if its trailing compounds would
	// otherwise superselect.
	withCombinator := Seq{combinatorElem(ParentOf), compoundElem(NewCompound(ClassSel("a")))}
	bare := Seq{compoundElem(NewCompound(ClassSel("a"), ClassSel("b")))}

	_, ok := mergeGroups(withCombinator, bare)
	assert.False(t, ok)
}

func TestTrimShortCircuitsAboveHundredEntries(t *testing.T) {
	groups := make([][]*Complex, 101)
	for i := range groups {
		groups[i] = []*Complex{complexOf(TypeSel("div"))}
	}
	out := trim(groups, false)
	assert.Len(t, out, 101)
}

func TestExtendGroupsEntriesSharingExtender(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()

	// Two separate "@extend" statements written against the same rule
	// (".w") targeting different simple selectors of the same compound
	// must strip both in one pass, not produce one redundant candidate per
	// entry.
	extender := complexOf(ClassSel("w"))
	subsetMap.Add(NewCompound(ClassSel("x")), extender, false, nil)
	subsetMap.Add(NewCompound(ClassSel("y")), extender, false, nil)

	list := NewList(complexOf(ClassSel("x"), ClassSel("y"), ClassSel("z")))
	result, changed := ExtendSelectorList(log, list, subsetMap, false)
	require.True(t, changed)

	containsSelector(t, result, ".x.y.z")
	containsSelector(t, result, ".w.z")
	for _, c := range result.Complexes {
		assert.NotEqual(t, ".w.x.z", c.String(), "entries sharing an extender must be grouped, not unified one at a time")
		assert.NotEqual(t, ".w.y.z", c.String(), "entries sharing an extender must be grouped, not unified one at a time")
	}
}

func TestTrimRemovesSelectorDominatedBySuperselector(t *testing.T) {
	specific := complexOf(ClassSel("a"), ClassSel("b"))
	general := complexOf(ClassSel("a"))
	general.sources = general.sources.add(specific, nil)

	out := trim([][]*Complex{{general}, {specific}}, false)
	assert.Len(t, out, 2)
	require.Len(t, out[0], 1)
	assert.Equal(t, ".a", out[0][0].String())
	assert.Empty(t, out[1])
}
