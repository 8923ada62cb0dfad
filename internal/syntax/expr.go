package syntax

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Kind is the closed set of argument shapes the migration distinguishes.
type Kind int

const (
	KindArray Kind = iota
	KindIdentifier
	KindObject
	KindSpread
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindIdentifier:
		return "identifier"
	case KindObject:
		return "object"
	case KindSpread:
		return "spread"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Span is a half-open byte range into a file's source.
type Span struct {
	Start uint
	End   uint
}

func (s Span) Len() uint { return s.End - s.Start }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Expr is a classified expression. Its concrete type is one of
// *ArrayLit, *Ident, *ObjectLit, *Spread or *Other; no other
// implementations exist outside this package.
//
// Every Expr is also a Node and renders as its own source text.
type Expr interface {
	Node
	Kind() Kind
	Span() Span
	// Broken reports whether the expression contains a parse error.
	Broken() bool
	tsNode() *tree_sitter.Node
}

type exprBase struct {
	node   *tree_sitter.Node
	span   Span
	broken bool
}

func (b *exprBase) Span() Span                { return b.span }
func (b *exprBase) Broken() bool              { return b.broken }
func (b *exprBase) tsNode() *tree_sitter.Node { return b.node }
func (b *exprBase) render(r *renderer)        { r.copyRange(b.span.Start, b.span.End) }

// ArrayLit is an array literal such as ['todos', id].
type ArrayLit struct{ exprBase }

// Ident is a bare identifier reference.
type Ident struct {
	exprBase
	Name string
}

// ObjectLit is an object literal.
type ObjectLit struct {
	exprBase
	Props []Property
}

// Spread is a spread argument, ...rest.
type Spread struct {
	exprBase
	Arg Expr
}

// Other is any expression the migration cannot interpret statically.
type Other struct {
	exprBase
	// NodeKind is the grammar's name for the node, e.g. "call_expression".
	NodeKind string
}

func (*ArrayLit) Kind() Kind  { return KindArray }
func (*Ident) Kind() Kind     { return KindIdentifier }
func (*ObjectLit) Kind() Kind { return KindObject }
func (*Spread) Kind() Kind    { return KindSpread }
func (*Other) Kind() Kind     { return KindOther }

// PropKind distinguishes the entries of an object literal.
type PropKind int

const (
	PropPair PropKind = iota
	PropShorthand
	PropMethod
	PropSpread
	PropComputed
)

// Property is one entry of an object literal.
type Property struct {
	Kind PropKind
	// Name is the static key: identifier keys by name, string keys
	// unquoted, numeric keys as written. Empty for spreads and
	// computed keys.
	Name string
	Span Span
}

// IsSpread reports whether the property is a ...spread entry.
func (p Property) IsSpread() bool { return p.Kind == PropSpread }

// HasName reports whether the property has a statically known key.
func (p Property) HasName() bool {
	return p.Kind != PropSpread && p.Kind != PropComputed
}

func (p Property) render(r *renderer) { r.copyRange(p.Span.Start, p.Span.End) }

// Classify maps a tree-sitter node onto the closed Expr variant.
func Classify(node *tree_sitter.Node, source []byte) Expr {
	base := exprBase{
		node:   node,
		span:   Span{Start: node.StartByte(), End: node.EndByte()},
		broken: node.HasError() || node.IsMissing(),
	}

	switch node.Kind() {
	case "array":
		return &ArrayLit{exprBase: base}
	case "identifier":
		return &Ident{exprBase: base, Name: nodeText(node, source)}
	case "object":
		obj := &ObjectLit{exprBase: base}
		obj.Props = classifyProperties(node, source)
		return obj
	case "spread_element":
		spread := &Spread{exprBase: base}
		if arg := firstNamedChild(node); arg != nil {
			spread.Arg = Classify(arg, source)
		}
		return spread
	default:
		return &Other{exprBase: base, NodeKind: node.Kind()}
	}
}

func classifyProperties(object *tree_sitter.Node, source []byte) []Property {
	var props []Property
	for i := uint(0); i < object.NamedChildCount(); i++ {
		child := object.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}

		prop := Property{Span: Span{Start: child.StartByte(), End: child.EndByte()}}
		switch child.Kind() {
		case "pair":
			prop.Name, prop.Kind = keyName(child.ChildByFieldName("key"), source, PropPair)
		case "shorthand_property_identifier":
			prop.Kind = PropShorthand
			prop.Name = nodeText(child, source)
		case "method_definition":
			prop.Name, prop.Kind = keyName(child.ChildByFieldName("name"), source, PropMethod)
		case "spread_element":
			prop.Kind = PropSpread
		default:
			// ERROR nodes and anything the grammar adds later.
			prop.Kind = PropComputed
		}
		props = append(props, prop)
	}
	return props
}

func keyName(key *tree_sitter.Node, source []byte, kind PropKind) (string, PropKind) {
	if key == nil {
		return "", PropComputed
	}
	switch key.Kind() {
	case "property_identifier", "identifier", "private_property_identifier", "number":
		return nodeText(key, source), kind
	case "string":
		return unquote(nodeText(key, source)), kind
	default:
		return "", PropComputed
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '\'' || q == '"' || q == '`') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func firstNamedChild(node *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// nodeText extracts the source text for a node.
func nodeText(node *tree_sitter.Node, source []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(source)) || end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

// StringValue returns the unquoted value of a string literal node.
func StringValue(node *tree_sitter.Node, source []byte) string {
	return strings.TrimSpace(unquote(nodeText(node, source)))
}
