package cssselect

import "strings"

// String renders a simple selector back to CSS selector syntax. Used by
// diagnostics and by the illustrative cmd/styleweave driver; the engine
// itself never calls this on its own hot path.
func (s Simple) String() string {
	switch s.Kind {
	case SType:
		return s.Name
	case SId:
		return "#" + s.Name
	case SClass:
		return "." + s.Name
	case SAttribute:
		if s.AttrOp == "" {
			return "[" + s.Name + "]"
		}
		return "[" + s.Name + s.AttrOp + s.AttrVal + "]"
	case SPseudo:
		colons := ":"
		if s.IsElement {
			colons = "::"
		}
		if s.PseudoArg != "" {
			return colons + s.Name + "(" + s.PseudoArg + ")"
		}
		return colons + s.Name
	case SPlaceholder:
		return "%" + s.Name
	case SParent:
		return "&"
	case SWrapped:
		return ":" + s.Name + "(" + s.Wrapped.String() + ")"
	}
	return ""
}

func (c *Compound) String() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range c.Simples {
		b.WriteString(s.String())
	}
	return b.String()
}

func (c *Complex) String() string {
	var b strings.Builder
	for cur, i := c, 0; cur != nil; cur, i = cur.Tail, i+1 {
		if i > 0 {
			if cur.Combinator == AncestorOf {
				b.WriteByte(' ')
			} else {
				b.WriteByte(' ')
				b.WriteString(cur.Combinator.String())
				b.WriteByte(' ')
			}
		}
		b.WriteString(cur.Head.String())
	}
	return b.String()
}

func (l *List) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(l.Complexes))
	for i, c := range l.Complexes {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
