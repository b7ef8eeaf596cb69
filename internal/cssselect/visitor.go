package cssselect

import "github.com/styleweave/styleweave/internal/logger"

// Block is the minimal contract an external stylesheet's block tree must
// satisfy for VisitAndExtend to rewrite its selector lists. This package
// never owns or parses a stylesheet itself; a caller's own AST node types
// satisfy this interface directly, or through a thin adapter.
type Block interface {
	Rulesets() []RulesetNode
	Children() []Block
}

// RulesetNode is a single selector-list-bearing node (a rule block, or an
// at-rule that carries its own selector such as a nested rule).
type RulesetNode interface {
	Selector() *List
	SetSelector(*List)
}

// VisitAndExtend walks root depth-first, resolving every selector list
// against subsetMap via ExtendSelectorList, and reports whether anything
// changed anywhere in the tree. Call ReportUnappliedExtends afterward (not
// from inside this function) once every block tree sharing subsetMap has
// been visited, since an extend registered from one stylesheet entry point
// may only be satisfied by a ruleset visited from another.
func VisitAndExtend(log logger.Log, root Block, subsetMap *SubsetMap, isReplace bool) bool {
	if root == nil {
		return false
	}

	changedAny := false
	var walk func(b Block)
	walk = func(b Block) {
		if !ShouldExtendBlock(b) {
			return
		}
		for _, r := range b.Rulesets() {
			if r.Selector() == nil {
				continue
			}
			newList, changed := ExtendSelectorList(log, r.Selector(), subsetMap, isReplace)
			if changed {
				r.SetSelector(newList)
				changedAny = true
			}
		}
		for _, c := range b.Children() {
			walk(c)
		}
	}
	walk(root)
	return changedAny
}

// ShouldExtendBlock reports whether a block is worth visiting at all: an
// empty ruleset with no nested children contributes nothing to extend,
// regardless of whether its selector could match an extend target. Used by
// VisitAndExtend itself (the §9 "empty-block optimization") to skip
// recursing into subtrees with no rulesets at all; also exposed for callers
// building a block tree incrementally that want to skip constructing extend
// bookkeeping for a block that will be discarded as dead weight anyway.
func ShouldExtendBlock(b Block) bool {
	if b == nil {
		return false
	}
	if len(b.Rulesets()) > 0 {
		return true
	}
	for _, c := range b.Children() {
		if ShouldExtendBlock(c) {
			return true
		}
	}
	return false
}
