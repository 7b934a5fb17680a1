package fluent

// Reference is an edge from an entry to another message or term it uses.
type Reference struct {
	// Target is the referenced entry name; terms carry their "-" sigil.
	Target    string
	Attribute string
	// Via is "message", "term" or "variant".
	Via string
}

// References lists every message and term reference inside a message or
// term, in document order, attributes included. Duplicates are kept.
func References(e Entry) []Reference {
	var refs []Reference
	switch e := e.(type) {
	case *Message:
		refs = collectValue(refs, e.Value)
		for _, a := range e.Attributes {
			refs = collectValue(refs, a.Value)
		}
	case *Term:
		refs = collectValue(refs, e.Value)
		for _, a := range e.Attributes {
			refs = collectValue(refs, a.Value)
		}
	}
	return refs
}

func collectValue(refs []Reference, v Value) []Reference {
	switch v := v.(type) {
	case *Pattern:
		for _, el := range v.Elements {
			if p, ok := el.(*Placeable); ok {
				refs = collectExpression(refs, p.Expression)
			}
		}
	case *VariantList:
		for _, variant := range v.Variants {
			refs = collectValue(refs, variant.Value)
		}
	}
	return refs
}

func collectExpression(refs []Reference, expr Expression) []Reference {
	switch expr := expr.(type) {
	case *MessageReference:
		refs = append(refs, Reference{Target: expr.ID, Attribute: expr.Attribute, Via: "message"})
	case *TermReference:
		refs = append(refs, Reference{Target: TermName(expr.ID), Attribute: expr.Attribute, Via: "term"})
	case *VariantExpression:
		if name := ReferenceName(expr.Ref); name != "" {
			refs = append(refs, Reference{Target: name, Via: "variant"})
		}
	case *SelectExpression:
		refs = collectExpression(refs, expr.Selector)
		for _, variant := range expr.Variants {
			refs = collectValue(refs, variant.Value)
		}
	case *Placeable:
		refs = collectExpression(refs, expr.Expression)
	}
	return refs
}

// ReferenceName returns the entry name a message or term reference points
// at, or "" for any other expression.
func ReferenceName(expr Expression) string {
	switch expr := expr.(type) {
	case *TermReference:
		return TermName(expr.ID)
	case *MessageReference:
		return expr.ID
	default:
		return ""
	}
}
