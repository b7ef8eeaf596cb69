package cssselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPseudoElementSpecificityCountsAsType(t *testing.T) {
	pseudoClass := PseudoSel("hover", "")
	pseudoElement := Simple{Kind: SPseudo, Name: "before", IsElement: true}

	assert.Equal(t, classWeight, pseudoClass.Specificity())
	assert.Equal(t, typeWeight, pseudoElement.Specificity())
}

func TestCompoundSpecificityWithPseudoElement(t *testing.T) {
	// "div::before" -> one type (div) + one pseudo-element (also type-weight)
	compound := NewCompound(TypeSel("div"), Simple{Kind: SPseudo, Name: "before", IsElement: true})
	assert.Equal(t, 2*typeWeight, compound.Specificity())
}
