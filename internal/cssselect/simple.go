package cssselect

import "github.com/styleweave/styleweave/internal/logger"

// SimpleKind tags the variant a Simple selector holds. Go has no sum types,
// so this mirrors the tagged-union Simple_Selector hierarchy the way a
// discriminated struct would: one Kind field plus whichever payload fields
// that kind actually uses.
type SimpleKind uint8

const (
	SType SimpleKind = iota
	SId
	SClass
	SAttribute
	SPseudo
	SWrapped
	SPlaceholder
	SParent
)

func (k SimpleKind) String() string {
	switch k {
	case SType:
		return "type"
	case SId:
		return "id"
	case SClass:
		return "class"
	case SAttribute:
		return "attribute"
	case SPseudo:
		return "pseudo"
	case SWrapped:
		return "wrapped"
	case SPlaceholder:
		return "placeholder"
	case SParent:
		return "parent"
	}
	return "unknown"
}

// Simple specificity weights, encoded as a single base-256 integer per the
// CSS spec's three-tuple (ids, classes, types) so ordinary integer
// comparison reproduces lexicographic tuple comparison. A placeholder
// (%foo) counts as an id for the purposes of the Second Law of Extend: it's
// what lets a plain ".foo" that extends "%bar" out-rank "%bar" itself.
const (
	idWeight   = 256 * 256
	classWeight = 256
	typeWeight  = 1
)

// Simple is one simple selector: a type name, #id, .class, [attr], a
// pseudo-class/element, a parenthesized selector list like :not(...), a
// placeholder (%foo), or the bare nesting parent (&).
type Simple struct {
	Kind SimpleKind

	// Name holds the type name, id, class name, attribute name, pseudo name,
	// wrapped-selector function name ("not", "is", ...), or placeholder name,
	// depending on Kind.
	Name string

	// Functional-pseudo argument text, e.g. "2n+1" for :nth-child(2n+1).
	// Unused outside SPseudo.
	PseudoArg string
	IsElement bool // ::before vs :before-style single-colon legacy forms collapse to this

	AttrOp  string // "", "=", "~=", "|=", "^=", "$=", "*="
	AttrVal string

	// Wrapped holds the inner selector list for SWrapped (":not(.a, .b)").
	Wrapped *List

	Loc logger.Loc
}

func TypeSel(name string) Simple      { return Simple{Kind: SType, Name: name} }
func IdSel(name string) Simple        { return Simple{Kind: SId, Name: name} }
func ClassSel(name string) Simple     { return Simple{Kind: SClass, Name: name} }
func PlaceholderSel(name string) Simple { return Simple{Kind: SPlaceholder, Name: name} }
func ParentSel() Simple               { return Simple{Kind: SParent} }
func PseudoSel(name, arg string) Simple {
	return Simple{Kind: SPseudo, Name: name, PseudoArg: arg}
}
func WrappedSel(name string, inner *List) Simple {
	return Simple{Kind: SWrapped, Name: name, Wrapped: inner}
}

// Specificity returns this simple selector's contribution to its compound's
// specificity. Placeholders count as ids (same weight) so that the Second
// Law of Extend compares them correctly once they're replaced by extenders.
// Parent ('&') contributes nothing here: by the time the extension engine
// runs, any '&' has already been substituted for its resolved parent
// selector upstream, so a bare, unresolved Parent carries no specificity of
// its own. Wrapped selectors (":not(...)", ":is(...)") propagate the
// maximum specificity of their contents, matching how modern CSS scores
// selector-list pseudo-classes.
func (s Simple) Specificity() int {
	switch s.Kind {
	case SId, SPlaceholder:
		return idWeight
	case SClass, SAttribute:
		return classWeight
	case SPseudo:
		if s.IsElement {
			return typeWeight
		}
		return classWeight
	case SType:
		return typeWeight
	case SWrapped:
		if s.Wrapped == nil {
			return 0
		}
		return s.Wrapped.MaxSpecificity()
	case SParent:
		return 0
	}
	return 0
}

// Equal is structural equality; the comparator used for unordered
// compound-internal comparisons also calls this per pair, so it must not
// depend on Go's map ordering anywhere.
func (a Simple) Equal(b Simple) bool {
	if a.Kind != b.Kind || a.Name != b.Name {
		return false
	}
	switch a.Kind {
	case SPseudo:
		return a.PseudoArg == b.PseudoArg && a.IsElement == b.IsElement
	case SAttribute:
		return a.AttrOp == b.AttrOp && a.AttrVal == b.AttrVal
	case SWrapped:
		return a.Wrapped.Equal(b.Wrapped, true)
	}
	return true
}

// IsSuperselectorOf reports whether every element matched by b is also
// matched by a, when a and b are considered as lone simple selectors (this
// is only meaningful for the handful of kinds where one simple selector can
// subsume another on its own; compound-level superselector does the real
// work of combining several simples).
func (a Simple) IsSuperselectorOf(b Simple) bool {
	if a.Equal(b) {
		return true
	}
	if a.Kind == SWrapped && a.Name == "not" {
		// ":not(X)" superselects B iff B contains the same negation, i.e. we
		// never claim a ":not" matches more than an identical ":not".
		return false
	}
	return false
}
