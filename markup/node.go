// Package markup keeps workbook XML as an order preserving node tree which
// can be written back byte for byte. Every node remembers the exact bytes it
// was parsed from and only nodes touched by a mutation are regenerated.
package markup

import (
	"bytes"
	"strings"
)

// Kind identifies node variant.
type Kind int

const (
	KindElement Kind = iota
	KindText
	KindComment
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Node is a single markup construct: element, character data, comment or an
// opaque passthrough (processing instruction, directive).
type Node interface {
	Kind() Kind
	Parent() *Element
	setParent(*Element)
	write(*bytes.Buffer)
}

// Text is character data, including CDATA sections. Value holds decoded text,
// raw bytes are what was in the source.
type Text struct {
	Value  string
	raw    []byte
	orig   string
	parent *Element
}

func (t *Text) Kind() Kind {
	return KindText
}

func (t *Text) Parent() *Element {
	return t.parent
}

func (t *Text) setParent(e *Element) {
	t.parent = e
}

func (t *Text) write(b *bytes.Buffer) {
	if t.raw != nil && t.Value == t.orig {
		b.Write(t.raw)
		return
	}
	escapeText(b, t.Value)
}

// IsSpace reports whether text consists of whitespace only.
func (t *Text) IsSpace() bool {
	return len(strings.TrimSpace(strings.TrimPrefix(t.Value, "\ufeff"))) == 0
}

// NewText creates detached text node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// Comment keeps its body (without delimiters) and its raw form.
type Comment struct {
	Value  string
	raw    []byte
	orig   string
	parent *Element
}

func (c *Comment) Kind() Kind {
	return KindComment
}

func (c *Comment) Parent() *Element {
	return c.parent
}

func (c *Comment) setParent(e *Element) {
	c.parent = e
}

func (c *Comment) write(b *bytes.Buffer) {
	if c.raw != nil && c.Value == c.orig {
		b.Write(c.raw)
		return
	}
	b.WriteString("<!--")
	b.WriteString(c.Value)
	b.WriteString("-->")
}

// Opaque is any construct we do not interpret: XML declaration, processing
// instructions, DOCTYPE and other directives. It is always written verbatim.
type Opaque struct {
	raw    []byte
	parent *Element
}

func (o *Opaque) Kind() Kind {
	return KindOpaque
}

func (o *Opaque) Parent() *Element {
	return o.parent
}

func (o *Opaque) setParent(e *Element) {
	o.parent = e
}

func (o *Opaque) write(b *bytes.Buffer) {
	b.Write(o.raw)
}

// Raw returns node source bytes.
func (o *Opaque) Raw() []byte {
	return o.raw
}
