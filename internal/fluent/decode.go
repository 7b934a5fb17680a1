package fluent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// rawNode holds every field any fluent-syntax AST node may carry. The
// "type" tag decides which of them are meaningful.
type rawNode struct {
	Type        string            `json:"type"`
	ID          *rawNode          `json:"id"`
	Name        string            `json:"name"`
	Value       json.RawMessage   `json:"value"`
	Attributes  []json.RawMessage `json:"attributes"`
	Attribute   *rawNode          `json:"attribute"`
	Body        []json.RawMessage `json:"body"`
	Elements    []json.RawMessage `json:"elements"`
	Expression  json.RawMessage   `json:"expression"`
	Selector    json.RawMessage   `json:"selector"`
	Variants    []json.RawMessage `json:"variants"`
	Key         *rawNode          `json:"key"`
	Default     bool              `json:"default"`
	Callee      *rawNode          `json:"callee"`
	Ref         json.RawMessage   `json:"ref"`
	Content     string            `json:"content"`
	Comment     *rawNode          `json:"comment"`
	Annotations []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"annotations"`
}

// LoadFile reads and decodes a fluent-syntax JSON AST file.
func LoadFile(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource file: %w", err)
	}
	res, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return res, nil
}

// Decode reads a Resource serialized as JSON by fluent-syntax. Only a root
// that is not a Resource is an error; unknown or malformed nodes below it
// decode to the Unsupported* and Malformed forms.
func Decode(r io.Reader) (*Resource, error) {
	var root rawNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode resource json: %w", err)
	}
	if root.Type != "Resource" {
		return nil, fmt.Errorf("root node is %q, want Resource", root.Type)
	}

	res := &Resource{Body: make([]Entry, 0, len(root.Body))}
	for _, raw := range root.Body {
		res.Body = append(res.Body, decodeEntry(raw))
	}
	return res, nil
}

func parseNode(raw json.RawMessage) (*rawNode, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return &rawNode{}, true
	}
	return &n, true
}

func decodeEntry(raw json.RawMessage) Entry {
	n, ok := parseNode(raw)
	if !ok {
		return &UnsupportedEntry{}
	}

	switch n.Type {
	case "Message":
		return &Message{
			ID:         n.identifier(),
			Value:      decodeValue(n.Value),
			Attributes: decodeAttributes(n.Attributes),
			Comment:    n.commentText(),
		}
	case "Term":
		return &Term{
			ID:         n.identifier(),
			Value:      decodeValue(n.Value),
			Attributes: decodeAttributes(n.Attributes),
			Comment:    n.commentText(),
		}
	case string(CommentStandalone), string(CommentGroup), string(CommentResource):
		return &Comment{Kind: CommentKind(n.Type), Content: n.Content}
	case "Junk":
		j := &Junk{Content: n.Content}
		for _, a := range n.Annotations {
			j.Annotations = append(j.Annotations, fmt.Sprintf("%s: %s", a.Code, a.Message))
		}
		return j
	default:
		return &UnsupportedEntry{Type: n.Type}
	}
}

func decodeAttributes(raws []json.RawMessage) []Attribute {
	if len(raws) == 0 {
		return nil
	}
	attrs := make([]Attribute, 0, len(raws))
	for _, raw := range raws {
		n, ok := parseNode(raw)
		if !ok {
			continue
		}
		attrs = append(attrs, Attribute{
			ID:    n.identifier(),
			Value: decodeValue(n.Value),
		})
	}
	return attrs
}

// decodeValue returns nil for an absent value, which callers treat as
// "no value" rather than an error.
func decodeValue(raw json.RawMessage) Value {
	n, ok := parseNode(raw)
	if !ok {
		return nil
	}

	switch n.Type {
	case "Pattern":
		return decodePattern(n)
	case "VariantList":
		return &VariantList{Variants: decodeVariants(n.Variants)}
	default:
		// Unknown value shapes degrade to a pattern holding one unsupported
		// element so the extractor can still report them.
		return &Pattern{Elements: []Element{&UnsupportedElement{Type: n.Type}}}
	}
}

func decodePattern(n *rawNode) *Pattern {
	p := &Pattern{Elements: make([]Element, 0, len(n.Elements))}
	for _, raw := range n.Elements {
		p.Elements = append(p.Elements, decodeElement(raw))
	}
	return p
}

func decodeElement(raw json.RawMessage) Element {
	n, ok := parseNode(raw)
	if !ok {
		return &TextElement{Malformed: true}
	}

	switch n.Type {
	case "TextElement":
		text, ok := n.stringValue()
		return &TextElement{Value: text, Malformed: !ok}
	case "Placeable":
		return &Placeable{Expression: decodeExpression(n.Expression)}
	default:
		return &UnsupportedElement{Type: n.Type}
	}
}

func decodeExpression(raw json.RawMessage) Expression {
	n, ok := parseNode(raw)
	if !ok {
		return &UnsupportedExpression{}
	}

	switch n.Type {
	case "VariableReference":
		return &VariableReference{ID: n.identifier()}
	case "MessageReference":
		return &MessageReference{ID: n.identifier(), Attribute: n.Attribute.identifierName()}
	case "TermReference":
		return &TermReference{ID: n.identifier(), Attribute: n.Attribute.identifierName()}
	case "CallExpression":
		return &CallExpression{Callee: n.Callee.identifierName()}
	case "SelectExpression":
		return &SelectExpression{
			Selector: decodeExpression(n.Selector),
			Variants: decodeVariants(n.Variants),
		}
	case "VariantExpression":
		return &VariantExpression{
			Ref: decodeExpression(n.Ref),
			Key: n.Key.keyName(),
		}
	case "StringLiteral":
		v, _ := n.stringValue()
		return &StringLiteral{Value: v}
	case "NumberLiteral":
		v, _ := n.stringValue()
		return &NumberLiteral{Value: v}
	case "Placeable":
		return &Placeable{Expression: decodeExpression(n.Expression)}
	default:
		return &UnsupportedExpression{Type: n.Type}
	}
}

func decodeVariants(raws []json.RawMessage) []Variant {
	variants := make([]Variant, 0, len(raws))
	for _, raw := range raws {
		n, ok := parseNode(raw)
		if !ok {
			continue
		}
		variants = append(variants, Variant{
			Key:     n.Key.keyName(),
			Value:   decodeValue(n.Value),
			Default: n.Default,
		})
	}
	return variants
}

func (n *rawNode) identifier() string {
	if n == nil {
		return ""
	}
	return n.ID.identifierName()
}

func (n *rawNode) identifierName() string {
	if n == nil {
		return ""
	}
	return n.Name
}

// keyName reads a variant key, which is an Identifier or a NumberLiteral.
func (n *rawNode) keyName() string {
	if n == nil {
		return ""
	}
	if n.Name != "" {
		return n.Name
	}
	v, _ := n.stringValue()
	return v
}

func (n *rawNode) stringValue() (string, bool) {
	if len(n.Value) == 0 || bytes.Equal(n.Value, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(n.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

func (n *rawNode) commentText() string {
	if n.Comment == nil {
		return ""
	}
	return n.Comment.Content
}
