package cssselect

import (
	"fmt"

	"github.com/styleweave/styleweave/internal/logger"
)

// ExtensionEntry records one "@extend" instruction: Extender is the
// selector standing in for Target wherever Target matches. IsOptional
// suppresses the UnappliedExtend diagnostic when Target never matches
// anything, and MediaBlock records the directive scope the @extend
// instruction itself was written in, for the cross-directive check.
type ExtensionEntry struct {
	Extender   *Complex
	Target     *Compound
	IsOptional bool
	MediaBlock *MediaBlock

	// Source is the stylesheet the @extend statement was parsed from, used
	// only to render a file/line/column for CrossDirectiveExtend and
	// UnappliedExtend diagnostics. A caller that never sets it still gets a
	// byte-offset-only location rather than none at all (see
	// logger.LocationForRange).
	Source *logger.Source

	// applied is flipped once this entry has matched at least one compound
	// during ExtendSelectorList, so the root-level UnappliedExtend pass only
	// needs to walk entries, never selector lists again.
	applied bool
}

// SubsetMap indexes extend targets by their simple selectors so a
// candidate lookup for a given compound only has to scan entries that
// share at least one simple selector with it, rather than every
// registered @extend in the stylesheet.
type SubsetMap struct {
	index map[string][]*ExtensionEntry
	all   []*ExtensionEntry
}

func NewSubsetMap() *SubsetMap {
	return &SubsetMap{index: make(map[string][]*ExtensionEntry)}
}

func simpleKey(s Simple) string {
	return fmt.Sprintf("%d:%s", s.Kind, s.Name)
}

// Add registers target -> extender. A single @extend with a comma-
// separated target list should call Add once per target compound; a
// single @extend of a complex extender selector calls Add once per
// complex selector in that extender's list.
func (m *SubsetMap) Add(target *Compound, extender *Complex, isOptional bool, media *MediaBlock) *ExtensionEntry {
	e := &ExtensionEntry{Extender: extender, Target: target, IsOptional: isOptional, MediaBlock: media}
	m.all = append(m.all, e)
	for _, s := range target.Simples {
		key := simpleKey(s)
		m.index[key] = append(m.index[key], e)
	}
	return e
}

// Get returns every registered entry whose target compound is a subset
// of compound, i.e. every extend that could fire against compound.
func (m *SubsetMap) Get(compound *Compound) []*ExtensionEntry {
	if compound == nil {
		return nil
	}
	seen := make(map[*ExtensionEntry]bool)
	var out []*ExtensionEntry
	for _, s := range compound.Simples {
		for _, e := range m.index[simpleKey(s)] {
			if seen[e] {
				continue
			}
			seen[e] = true
			if e.Target.isSubsetOf(compound) {
				out = append(out, e)
			}
		}
	}
	return out
}

// Values exposes every registered entry, in registration order, for the
// root-level UnappliedExtend pass.
func (m *SubsetMap) Values() []*ExtensionEntry {
	return m.all
}
