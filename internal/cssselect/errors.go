package cssselect

import (
	"fmt"

	"github.com/styleweave/styleweave/internal/logger"
)

// ExtendErrorKind distinguishes the three ways resolving an @extend can go
// wrong.
type ExtendErrorKind uint8

const (
	// CrossDirectiveExtend: an extend target matched a compound living
	// under a different directive scope (a different @media/@supports
	// block, or the top level vs. inside one) than the @extend statement
	// itself. Fatal and immediate, mirroring the ported engine's exception.
	CrossDirectiveExtend ExtendErrorKind = iota

	// UnappliedExtend: a non-optional @extend's target never matched
	// anything anywhere in the stylesheet. Checked once, after every
	// selector list has gone through ExtendSelectorList, and raised fatally
	// on the first offending entry found - a broken @extend fails the whole
	// compilation, same as CrossDirectiveExtend.
	UnappliedExtend

	// MergeFailure: two selector bodies could not be woven together. Not
	// an error in itself; extendComplex and weave treat it as "this
	// particular combination produces no selector" and move on. Exposed
	// here only so callers inspecting ExtendError can recognize it if it's
	// ever surfaced for diagnostics.
	MergeFailure
)

// ExtendError is the payload carried by a panic raised from this package.
// It is the non-returning error sink the algorithm is specified against:
// once raised, no code here continues past the raise call.
type ExtendError struct {
	Kind ExtendErrorKind
	Msg  logger.Msg
}

func (e *ExtendError) Error() string { return e.Msg.Text }

// raise records msg with log and then unwinds the current
// ExtendSelectorList call by panicking. Callers that want a returned error
// instead of a propagating panic must defer Recover.
func raise(kind ExtendErrorKind, log logger.Log, msg logger.Msg) {
	log.AddMsg(msg)
	panic(&ExtendError{Kind: kind, Msg: msg})
}

// Recover turns a panicking *ExtendError into a returned error. Deferred by
// ExtendSelectorList's callers, not by ExtendSelectorList itself, since the
// package's contract is "panics on CrossDirectiveExtend", not "returns an
// error" - callers choose how far the panic should travel.
func Recover(errOut *error) {
	if r := recover(); r != nil {
		if ee, ok := r.(*ExtendError); ok {
			*errOut = ee
			return
		}
		panic(r)
	}
}

func crossDirectiveMsg(e *ExtensionEntry, compound *Compound) logger.Msg {
	return logger.Msg{
		Kind: logger.Error,
		Text: fmt.Sprintf(
			"You may not @extend an outer selector from within %s. "+
				"You may only @extend selectors within the same directive. "+
				"The extending selector was %q.",
			directiveDescription(compound.MediaBlock),
			e.Extender.String(),
		),
		Location: extenderLocation(e),
	}
}

func directiveDescription(mb *MediaBlock) string {
	if mb == nil {
		return "a nested directive"
	}
	return fmt.Sprintf("%q", mb.Query)
}

// unappliedExtendMsg renders the failure exactly per §4.9's literal
// contract: `"<extendee>" failed to @extend "<extender>". The selector
// "<extender>" was not found. Use "@extend X !optional" if the extend
// should be able to fail.`
func unappliedExtendMsg(e *ExtensionEntry) logger.Msg {
	extender := e.Extender.String()
	return logger.Msg{
		Kind: logger.Error,
		Text: fmt.Sprintf(
			"%q failed to @extend %q. The selector %q was not found. "+
				"Use \"@extend %s !optional\" if the extend should be able to fail.",
			compoundText(e.Target), extender, extender, extender,
		),
		Location: extenderLocation(e),
	}
}

// extenderLocation reports the position of the extender's leading head so
// both offending selector strings and a position are reported per §8's
// boundary test, using e.Source when the caller populated one and falling
// back to a bare byte offset otherwise.
func extenderLocation(e *ExtensionEntry) *logger.MsgLocation {
	if e == nil || e.Extender == nil || e.Extender.Head == nil {
		return nil
	}
	return logger.LocationForRange(e.Source, logger.Range{Loc: e.Extender.Head.Loc})
}

func compoundText(c *Compound) string {
	if c == nil {
		return ""
	}
	s := ""
	for _, simple := range c.Simples {
		s += simpleText(simple)
	}
	return s
}

func simpleText(s Simple) string {
	switch s.Kind {
	case SType:
		return s.Name
	case SId:
		return "#" + s.Name
	case SClass:
		return "." + s.Name
	case SAttribute:
		return "[" + s.Name + s.AttrOp + s.AttrVal + "]"
	case SPseudo:
		if s.PseudoArg != "" {
			return ":" + s.Name + "(" + s.PseudoArg + ")"
		}
		return ":" + s.Name
	case SPlaceholder:
		return "%" + s.Name
	case SParent:
		return "&"
	case SWrapped:
		return ":" + s.Name + "(...)"
	}
	return ""
}
