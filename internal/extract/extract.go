// Package extract flattens Fluent resources into lint targets: one named,
// fully resolved string per message, term, attribute and variant.
package extract

import (
	"github.com/rs/zerolog"

	"ftl-htmllint/internal/fluent"
	"ftl-htmllint/internal/textutil"
)

// Extractor walks Fluent ASTs. It keeps no state between calls and may be
// shared across goroutines.
type Extractor struct {
	log zerolog.Logger
}

// New creates an Extractor that reports unknown node kinds to logger.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{log: logger}
}

// WalkResource extracts every entry of res in document order. Entries that
// contribute nothing are skipped.
func (x *Extractor) WalkResource(res *fluent.Resource) []LintTarget {
	if res == nil {
		return nil
	}
	var targets []LintTarget
	for _, entry := range res.Body {
		targets = append(targets, x.Extract(entry)...)
	}
	return targets
}

// Extract produces the lint targets of a single entry.
func (x *Extractor) Extract(entry fluent.Entry) []LintTarget {
	switch e := entry.(type) {
	case *fluent.Comment:
		return nil
	case *fluent.Message:
		return x.extractNamed(e.ID, e.Value, e.Attributes)
	case *fluent.Term:
		return x.extractNamed(fluent.TermName(e.ID), e.Value, e.Attributes)
	case *fluent.Junk:
		x.log.Warn().
			Str("content", textutil.Truncate(e.Content, 60)).
			Strs("annotations", e.Annotations).
			Msg("Skipping junk entry")
		return nil
	case *fluent.UnsupportedEntry:
		x.log.Warn().Str("type", e.Type).Msg("Unknown entry type")
		return nil
	default:
		x.log.Warn().Str("type", "<nil>").Msg("Unknown entry type")
		return nil
	}
}

func (x *Extractor) extractNamed(name string, value fluent.Value, attrs []fluent.Attribute) []LintTarget {
	var targets []LintTarget

	switch v := value.(type) {
	case *fluent.Pattern:
		switch f := x.Flatten(v).(type) {
		case Literal:
			targets = append(targets, LintTarget{Name: name, Value: string(f)})
		case Branches:
			for _, b := range f {
				targets = append(targets, LintTarget{Name: name + b.Selector(), Value: b.Value})
			}
		}
	case *fluent.VariantList:
		for _, b := range x.variants(v.Variants) {
			targets = append(targets, LintTarget{Name: name, Variant: b.Key(), Value: b.Value})
		}
	}

	for _, attr := range attrs {
		if attr.Value == nil {
			continue
		}
		switch f := x.FlattenValue(attr.Value).(type) {
		case Literal:
			targets = append(targets, LintTarget{Name: name, Attribute: attr.ID, Value: string(f)})
		case Branches:
			for _, b := range f {
				targets = append(targets, LintTarget{Name: name, Attribute: attr.ID, Variant: b.Key(), Value: b.Value})
			}
		}
	}

	return targets
}
