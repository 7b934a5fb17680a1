package extract

import "strings"

// LintTarget is one flattened, fully resolved string ready for markup
// validation, labelled with where it came from.
type LintTarget struct {
	Name      string `json:"name"`
	Attribute string `json:"attribute,omitempty"`
	Variant   string `json:"variant,omitempty"`
	Value     string `json:"value"`
}

// Label renders the target's origin as name.attribute[variant].
func (t LintTarget) Label() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if t.Attribute != "" {
		b.WriteByte('.')
		b.WriteString(t.Attribute)
	}
	if t.Variant != "" {
		b.WriteByte('[')
		b.WriteString(t.Variant)
		b.WriteByte(']')
	}
	return b.String()
}

// Flattened is the result of resolving an expression or flattening a value:
// a Literal, a Placeholder or a set of Branches.
type Flattened interface {
	flattened()
}

// Literal is text spliced verbatim.
type Literal string

// Placeholder stands for a value only known at runtime ($name, NUMBER(...)).
// It is separated from neighbouring text by a single space unless that text
// already starts or ends with whitespace.
type Placeholder string

// Branches is the fan-out of a variant-bearing value, one per variant.
type Branches []Branch

func (Literal) flattened()     {}
func (Placeholder) flattened() {}
func (Branches) flattened()    {}

// Branch is the flattened text of one variant. Keys holds the selector key
// path, outermost first; it is longer than one when selects nest.
type Branch struct {
	Keys    []string
	Value   string
	Default bool

	// lead and trail are set when Value starts or ends with a placeholder.
	lead, trail bool
}

// Key joins the key path with "/".
func (b Branch) Key() string {
	return strings.Join(b.Keys, "/")
}

// Selector renders the key path as [k1][k2].
func (b Branch) Selector() string {
	var sb strings.Builder
	for _, k := range b.Keys {
		sb.WriteByte('[')
		sb.WriteString(k)
		sb.WriteByte(']')
	}
	return sb.String()
}

// pick returns the default branch, or the first one if none is marked.
func (bs Branches) pick() Branch {
	for _, b := range bs {
		if b.Default {
			return b
		}
	}
	if len(bs) == 0 {
		return Branch{}
	}
	return bs[0]
}
