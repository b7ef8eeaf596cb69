// Command styleweave is a small illustration of the selector-extension
// engine, not a stylesheet compiler: it builds a couple of selectors
// in-memory, registers an @extend relationship between them, and prints the
// rewritten selector list. Parsing real stylesheets and writing files back
// out is left to whatever front end embeds the internal/cssselect package.
package main

import (
	"fmt"

	"github.com/styleweave/styleweave/internal/cssselect"
	"github.com/styleweave/styleweave/internal/logger"
)

type ruleset struct {
	selector *cssselect.List
}

func (r *ruleset) Selector() *cssselect.List     { return r.selector }
func (r *ruleset) SetSelector(l *cssselect.List) { r.selector = l }

type block struct {
	rulesets []cssselect.RulesetNode
	children []cssselect.Block
}

func (b *block) Rulesets() []cssselect.RulesetNode { return b.rulesets }
func (b *block) Children() []cssselect.Block       { return b.children }

func complexOf(simples ...cssselect.Simple) *cssselect.Complex {
	return &cssselect.Complex{Head: cssselect.NewCompound(simples...)}
}

func main() {
	log := logger.NewStderrLog()

	// .error { border: 1px red; }
	errorRule := &ruleset{
		selector: cssselect.NewList(complexOf(cssselect.ClassSel("error"))),
	}

	// .seriousError { @extend .error; font-weight: bold; }
	seriousErrorRule := &ruleset{
		selector: cssselect.NewList(complexOf(cssselect.ClassSel("seriousError"))),
	}

	root := &block{rulesets: []cssselect.RulesetNode{errorRule}}

	subsetMap := cssselect.NewSubsetMap()
	subsetMap.Add(
		cssselect.NewCompound(cssselect.ClassSel("error")),
		seriousErrorRule.selector.Complexes[0],
		false,
		nil,
	)

	fmt.Println("before:", errorRule.Selector().String())

	cssselect.VisitAndExtend(log, root, subsetMap, false)
	cssselect.ReportUnappliedExtends(log, subsetMap)

	fmt.Println("after: ", errorRule.Selector().String())

	for _, msg := range log.Done() {
		fmt.Print(msg.String())
	}
}
