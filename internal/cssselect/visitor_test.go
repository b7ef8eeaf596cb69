package cssselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styleweave/styleweave/internal/logger"
)

type fakeRuleset struct {
	selector *List
}

func (r *fakeRuleset) Selector() *List     { return r.selector }
func (r *fakeRuleset) SetSelector(l *List) { r.selector = l }

type fakeBlock struct {
	rulesets []RulesetNode
	children []Block
}

func (b *fakeBlock) Rulesets() []RulesetNode { return b.rulesets }
func (b *fakeBlock) Children() []Block       { return b.children }

func TestShouldExtendBlockEmptyLeafIsFalse(t *testing.T) {
	assert.False(t, ShouldExtendBlock(&fakeBlock{}))
}

func TestShouldExtendBlockNilIsFalse(t *testing.T) {
	assert.False(t, ShouldExtendBlock(nil))
}

func TestShouldExtendBlockWithDirectRuleset(t *testing.T) {
	b := &fakeBlock{rulesets: []RulesetNode{&fakeRuleset{selector: NewList(complexOf(ClassSel("a")))}}}
	assert.True(t, ShouldExtendBlock(b))
}

func TestShouldExtendBlockWithOnlyNestedRuleset(t *testing.T) {
	leaf := &fakeBlock{rulesets: []RulesetNode{&fakeRuleset{selector: NewList(complexOf(ClassSel("a")))}}}
	root := &fakeBlock{children: []Block{leaf}}
	assert.True(t, ShouldExtendBlock(root))
}

// VisitAndExtend skips a genuinely empty subtree entirely, but a ruleset
// nested a few levels below a sibling of that empty subtree is still
// reached: ShouldExtendBlock only prunes branches with no rulesets
// anywhere beneath them, never a branch that merely starts with an empty
// intermediate block.
func TestVisitAndExtendSkipsEmptySubtreeButReachesNestedRulesets(t *testing.T) {
	log := logger.NewDeferLog()
	subsetMap := NewSubsetMap()
	subsetMap.Add(NewCompound(ClassSel("error")), complexOf(ClassSel("seriousError")), false, nil)

	inner := &fakeRuleset{selector: NewList(complexOf(ClassSel("error")))}
	nested := &fakeBlock{children: []Block{&fakeBlock{rulesets: []RulesetNode{inner}}}}
	root := &fakeBlock{children: []Block{nested, &fakeBlock{}}}

	changed := VisitAndExtend(log, root, subsetMap, false)
	require.True(t, changed)
	assert.Len(t, inner.Selector().Complexes, 2)
	containsSelector(t, inner.Selector(), ".error")
	containsSelector(t, inner.Selector(), ".seriousError")
}
