package fluent

import "strings"

// Resource is a parsed Fluent file: an ordered list of top-level entries.
type Resource struct {
	Body []Entry
}

// Entry is a top-level node of a Resource.
type Entry interface {
	entryNode()
}

// Message is a public translation unit.
type Message struct {
	ID         string
	Value      Value
	Attributes []Attribute
	// Comment is the attached doc comment, if any.
	Comment string
}

// Term is a private translation unit, referenced only by other entries.
type Term struct {
	ID         string
	Value      Value
	Attributes []Attribute
	Comment    string
}

// CommentKind distinguishes the three comment levels of the syntax.
type CommentKind string

const (
	CommentStandalone CommentKind = "Comment"
	CommentGroup      CommentKind = "GroupComment"
	CommentResource   CommentKind = "ResourceComment"
)

// Comment is a standalone, group or resource comment.
type Comment struct {
	Kind    CommentKind
	Content string
}

// Junk is source the parser could not make sense of.
type Junk struct {
	Content     string
	Annotations []string
}

// UnsupportedEntry stands in for any entry type this package does not know.
type UnsupportedEntry struct {
	Type string
}

func (*Message) entryNode()          {}
func (*Term) entryNode()             {}
func (*Comment) entryNode()          {}
func (*Junk) entryNode()             {}
func (*UnsupportedEntry) entryNode() {}

// Attribute is a named sub-value of a message or term.
type Attribute struct {
	ID    string
	Value Value
}

// Value is what a message, term, attribute or variant holds: a *Pattern or,
// in older syntax versions, a *VariantList.
type Value interface {
	valueNode()
}

// Pattern is an ordered sequence of text and placeables.
type Pattern struct {
	Elements []Element
}

// VariantList is a pattern-less value made only of variants (terms only).
type VariantList struct {
	Variants []Variant
}

func (*Pattern) valueNode()     {}
func (*VariantList) valueNode() {}

// Variant is one branch of a select expression or variant list.
type Variant struct {
	Key     string
	Value   Value
	Default bool
}

// Element is one piece of a Pattern.
type Element interface {
	elementNode()
}

// TextElement is literal text. Malformed is set when the parser produced a
// text node without a usable value.
type TextElement struct {
	Value     string
	Malformed bool
}

// Placeable embeds an expression into a pattern. It is also an Expression,
// since placeables may nest.
type Placeable struct {
	Expression Expression
}

// UnsupportedElement stands in for unknown pattern element types.
type UnsupportedElement struct {
	Type string
}

func (*TextElement) elementNode()        {}
func (*Placeable) elementNode()          {}
func (*UnsupportedElement) elementNode() {}

// Expression is the content of a placeable.
type Expression interface {
	expressionNode()
}

type VariableReference struct {
	ID string
}

type MessageReference struct {
	ID        string
	Attribute string
}

type TermReference struct {
	ID        string
	Attribute string
}

// CallExpression is a function call such as NUMBER($n). Arguments are not
// kept.
type CallExpression struct {
	Callee string
}

type SelectExpression struct {
	Selector Expression
	Variants []Variant
}

// VariantExpression selects a variant of another entry, e.g. { -brand[short] }.
type VariantExpression struct {
	Ref Expression
	Key string
}

type StringLiteral struct {
	Value string
}

type NumberLiteral struct {
	Value string
}

// UnsupportedExpression stands in for unknown expression types.
type UnsupportedExpression struct {
	Type string
}

func (*VariableReference) expressionNode()     {}
func (*MessageReference) expressionNode()      {}
func (*TermReference) expressionNode()         {}
func (*CallExpression) expressionNode()        {}
func (*SelectExpression) expressionNode()      {}
func (*VariantExpression) expressionNode()     {}
func (*StringLiteral) expressionNode()         {}
func (*NumberLiteral) expressionNode()         {}
func (*Placeable) expressionNode()             {}
func (*UnsupportedExpression) expressionNode() {}

// TermName returns id with the leading "-" sigil. Newer parsers strip the
// sigil from term identifiers, older ones keep it.
func TermName(id string) string {
	if strings.HasPrefix(id, "-") {
		return id
	}
	return "-" + id
}

// EntryName returns the display name of a message or term, and false for
// every other entry kind.
func EntryName(e Entry) (string, bool) {
	switch e := e.(type) {
	case *Message:
		return e.ID, true
	case *Term:
		return TermName(e.ID), true
	default:
		return "", false
	}
}
