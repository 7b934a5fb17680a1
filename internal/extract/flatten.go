package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"ftl-htmllint/internal/fluent"
)

// malformedText replaces pattern elements that carry no usable text.
const malformedText = "{?}"

// piece is one resolved pattern element. lead and trail record whether its
// text starts or ends with a placeholder, which decides the padding when it
// is joined with its neighbours.
type piece struct {
	text        string
	lead, trail bool
	branches    Branches
}

func placeholderPiece(text string) piece {
	return piece{text: text, lead: true, trail: true}
}

func branchPiece(b Branch) piece {
	return piece{text: b.Value, lead: b.lead, trail: b.trail}
}

// FlattenValue flattens whatever an entry, attribute or variant holds. A nil
// value flattens to an empty literal.
func (x *Extractor) FlattenValue(v fluent.Value) Flattened {
	single, branches := x.flattenValue(v)
	if branches != nil {
		return branches
	}
	return Literal(single.text)
}

// Flatten concatenates a pattern into one trimmed string, or into one string
// per branch when a placeable fans out. Only the last variant-bearing
// placeable shapes the branches; earlier ones collapse to their default
// variant.
func (x *Extractor) Flatten(p *fluent.Pattern) Flattened {
	single, branches := x.flatten(p)
	if branches != nil {
		return branches
	}
	return Literal(single.text)
}

// flattenValue is FlattenValue keeping the placeholder edges of the result.
// Exactly one of the returns is meaningful: branches when non-nil, else the
// single piece.
func (x *Extractor) flattenValue(v fluent.Value) (piece, Branches) {
	switch v := v.(type) {
	case *fluent.Pattern:
		return x.flatten(v)
	case *fluent.VariantList:
		return piece{}, x.variants(v.Variants)
	default:
		return piece{}, nil
	}
}

func (x *Extractor) flatten(p *fluent.Pattern) (piece, Branches) {
	if p == nil {
		return piece{}, nil
	}

	pieces := make([]piece, 0, len(p.Elements))
	last := -1
	for _, el := range p.Elements {
		pc := x.resolveElement(el)
		if pc.branches != nil {
			last = len(pieces)
		}
		pieces = append(pieces, pc)
	}

	if last < 0 {
		return joined(pieces), nil
	}

	// Collapse every fan-out but the last one.
	for i := range pieces {
		if i != last && pieces[i].branches != nil {
			pieces[i] = branchPiece(pieces[i].branches.pick())
		}
	}

	branches := pieces[last].branches
	out := make(Branches, 0, len(branches))
	for _, b := range branches {
		fixed := make([]piece, len(pieces))
		copy(fixed, pieces)
		fixed[last] = branchPiece(b)
		j := joined(fixed)
		out = append(out, Branch{Keys: b.Keys, Value: j.text, Default: b.Default, lead: j.lead, trail: j.trail})
	}
	return piece{}, out
}

// joined renders pieces and records whether the result starts or ends with
// a placeholder.
func joined(pieces []piece) piece {
	out := piece{text: render(pieces)}
	for _, pc := range pieces {
		if strings.TrimSpace(pc.text) != "" {
			out.lead = pc.lead
			break
		}
	}
	for i := len(pieces) - 1; i >= 0; i-- {
		if strings.TrimSpace(pieces[i].text) != "" {
			out.trail = pieces[i].trail
			break
		}
	}
	return out
}

func (x *Extractor) resolveElement(el fluent.Element) piece {
	switch el := el.(type) {
	case *fluent.TextElement:
		if el.Malformed {
			return piece{text: malformedText}
		}
		return piece{text: el.Value}
	case *fluent.Placeable:
		switch f := x.Resolve(el.Expression).(type) {
		case Literal:
			return piece{text: string(f)}
		case Placeholder:
			return placeholderPiece(string(f))
		case Branches:
			if len(f) == 0 {
				return piece{}
			}
			return piece{branches: f}
		}
		return piece{}
	case *fluent.UnsupportedElement:
		x.log.Warn().Str("type", el.Type).Msg("Unknown value element type")
		return piece{text: malformedText}
	default:
		x.log.Warn().Str("type", "<nil>").Msg("Unknown value element type")
		return piece{text: malformedText}
	}
}

// render joins resolved pieces, padding placeholders with one space where
// the surrounding text has none, and trims the result.
func render(pieces []piece) string {
	var b strings.Builder
	pad := false
	for _, pc := range pieces {
		if pc.text == "" {
			continue
		}
		switch {
		case pc.lead && b.Len() > 0 && !endsWithSpace(b.String()):
			b.WriteByte(' ')
		case pad && !startsWithSpace(pc.text):
			b.WriteByte(' ')
		}
		b.WriteString(pc.text)
		pad = pc.trail
	}
	return strings.TrimSpace(b.String())
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
