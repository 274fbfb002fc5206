package ast

// CouldBePattern classifies a Vector as a destructuring pattern rather
// than an array literal: it is empty, or every element is itself
// pattern-valid, with "&" allowed only as the second-to-last element and
// followed by exactly one identifier (possibly "_"). A default form
// "(= value)" is pattern-valid; any other literal or function call
// disqualifies the vector.
func CouldBePattern(n Node) bool {
	v, ok := n.(*Vector)
	if !ok {
		return false
	}
	return couldBePatternElements(v.Elements)
}

func couldBePatternElements(elems []Node) bool {
	for i, el := range elems {
		switch e := el.(type) {
		case *Symbol:
			if e.Name == "&" {
				if i != len(elems)-2 {
					return false
				}
				rest, ok := elems[i+1].(*Symbol)
				return ok && rest.Name != ""
			}
		case *Vector:
			if !couldBePatternElements(e.Elements) {
				return false
			}
		case *List:
			if !isDefaultForm(e) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// isDefaultForm recognizes "(= value)" default-value markers inside a
// destructuring pattern.
func isDefaultForm(l *List) bool {
	if len(l.Elements) != 2 {
		return false
	}
	sym, ok := l.Elements[0].(*Symbol)
	return ok && sym.Name == "="
}
