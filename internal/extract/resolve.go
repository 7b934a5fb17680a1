package extract

import (
	"ftl-htmllint/internal/fluent"
)

// Resolve renders a single placeable expression. References and calls
// become placeholders, literals stay literal, and select expressions fan out
// into one branch per variant. Unknown expressions log once and resolve to
// an empty literal.
func (x *Extractor) Resolve(expr fluent.Expression) Flattened {
	switch expr := expr.(type) {
	case *fluent.VariableReference:
		return Placeholder("$" + expr.ID)
	case *fluent.TermReference:
		return Placeholder("$" + withAttribute(fluent.TermName(expr.ID), expr.Attribute))
	case *fluent.MessageReference:
		return Placeholder("$" + withAttribute(expr.ID, expr.Attribute))
	case *fluent.CallExpression:
		return Placeholder(expr.Callee + "(...)")
	case *fluent.VariantExpression:
		return Literal(fluent.ReferenceName(expr.Ref))
	case *fluent.StringLiteral:
		return Literal(expr.Value)
	case *fluent.NumberLiteral:
		return Literal(expr.Value)
	case *fluent.Placeable:
		return x.Resolve(expr.Expression)
	case *fluent.SelectExpression:
		return x.variants(expr.Variants)
	case *fluent.UnsupportedExpression:
		x.log.Warn().Str("type", expr.Type).Msg("Unknown element expression type")
		return Literal("")
	default:
		x.log.Warn().Str("type", "<nil>").Msg("Unknown element expression type")
		return Literal("")
	}
}

// variants flattens each variant's value into branches. A variant whose own
// value fans out contributes one branch per nested branch, its key
// prepended to the nested key path. Under a default variant the nested
// default stays the default, or the first nested branch when none is
// marked.
func (x *Extractor) variants(vs []fluent.Variant) Branches {
	out := make(Branches, 0, len(vs))
	for _, v := range vs {
		single, nested := x.flattenValue(v.Value)
		if nested == nil {
			out = append(out, Branch{
				Keys:    []string{v.Key},
				Value:   single.text,
				Default: v.Default,
				lead:    single.lead,
				trail:   single.trail,
			})
			continue
		}

		fallback := v.Default && !hasDefault(nested)
		for i, n := range nested {
			keys := make([]string, 0, len(n.Keys)+1)
			keys = append(keys, v.Key)
			keys = append(keys, n.Keys...)
			out = append(out, Branch{
				Keys:    keys,
				Value:   n.Value,
				Default: v.Default && (n.Default || (fallback && i == 0)),
				lead:    n.lead,
				trail:   n.trail,
			})
		}
	}
	return out
}

func hasDefault(bs Branches) bool {
	for _, b := range bs {
		if b.Default {
			return true
		}
	}
	return false
}

func withAttribute(name, attr string) string {
	if attr == "" {
		return name
	}
	return name + "." + attr
}
