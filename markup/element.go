package markup

import (
	"bytes"
	"slices"
	"strings"
)

// Attr is a single element attribute. Attributes which were never modified
// are written back exactly as they appeared in the source, including spacing
// and quotes.
type Attr struct {
	Name  string
	Value string

	lead     []byte // whitespace before attribute name
	raw      []byte // name=value as written, nil when regenerated
	quote    byte
	origName string
	orig     string
}

func (a *Attr) pristine() bool {
	return a.raw != nil && a.Name == a.origName && a.Value == a.orig
}

// Element is a tagged node with ordered attributes and children.
type Element struct {
	Name     string
	Attrs    []*Attr
	Children []Node

	parent      *Element
	start       []byte // raw start tag, nil when it has to be regenerated
	tail        []byte // raw bytes after last attribute: whitespace and closing '>' or '/>'
	end         []byte // raw end tag, empty for self-closing elements
	selfClosing bool
	origName    string
	origAttrs   int
}

// NewElement creates detached element with no attributes.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

func (e *Element) Kind() Kind {
	return KindElement
}

func (e *Element) Parent() *Element {
	return e.parent
}

func (e *Element) setParent(p *Element) {
	e.parent = p
}

// SelfClosing reports whether element is written in the short <name/> form.
func (e *Element) SelfClosing() bool {
	return e.selfClosing
}

func (e *Element) invalidateStart() {
	e.start = nil
}

// pristineStart reports whether raw start tag still matches element state.
// Fields are exported so callers may change them directly, we have to check.
func (e *Element) pristineStart() bool {
	if e.start == nil || e.Name != e.origName || len(e.Attrs) != e.origAttrs {
		return false
	}
	for _, a := range e.Attrs {
		if !a.pristine() {
			return false
		}
	}
	return true
}

func (e *Element) attrIndex(name string) int {
	return slices.IndexFunc(e.Attrs, func(a *Attr) bool { return a.Name == name })
}

// SelectAttr returns attribute by name or nil.
func (e *Element) SelectAttr(name string) *Attr {
	if i := e.attrIndex(name); i >= 0 {
		return e.Attrs[i]
	}
	return nil
}

// Attr returns attribute value and whether attribute is present.
func (e *Element) Attr(name string) (string, bool) {
	if a := e.SelectAttr(name); a != nil {
		return a.Value, true
	}
	return "", false
}

// SelectAttrValue returns attribute value or dflt when attribute is absent.
func (e *Element) SelectAttrValue(name, dflt string) string {
	if a := e.SelectAttr(name); a != nil {
		return a.Value
	}
	return dflt
}

// SetAttr sets attribute value creating attribute when necessary. Setting
// the same value again leaves element untouched. Returns true if element was
// changed.
func (e *Element) SetAttr(name, value string) bool {
	if a := e.SelectAttr(name); a != nil {
		if a.Value == value {
			return false
		}
		a.Value, a.raw = value, nil
		e.invalidateStart()
		return true
	}
	e.Attrs = append(e.Attrs, &Attr{Name: name, Value: value, lead: []byte(" "), quote: e.quoteStyle()})
	e.invalidateStart()
	return true
}

// RemoveAttr deletes attribute, returns true if it was present.
func (e *Element) RemoveAttr(name string) bool {
	i := e.attrIndex(name)
	if i < 0 {
		return false
	}
	e.Attrs = slices.Delete(e.Attrs, i, i+1)
	e.invalidateStart()
	return true
}

// quoteStyle follows the quotes already used by the element.
func (e *Element) quoteStyle() byte {
	for _, a := range e.Attrs {
		if a.quote != 0 {
			return a.quote
		}
	}
	return '"'
}

// ChildElements returns direct element children in document order.
func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// SelectElement returns first direct child element with given name.
func (e *Element) SelectElement(name string) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// SelectElements returns all direct child elements with given name.
func (e *Element) SelectElements(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

// FindElements returns all descendants (not including e itself) with given
// name in document order. Empty name matches any element.
func (e *Element) FindElements(name string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el != e && (name == "" || el.Name == name) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Walk visits e and its descendants depth first in document order. When fn
// returns false children of the current element are skipped.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			el.Walk(fn)
		}
	}
}

// Ancestor returns closest ancestor with given name or nil.
func (e *Element) Ancestor(name string) *Element {
	for p := e.parent; p != nil; p = p.parent {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Text returns concatenated character data of direct text children.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, c := range e.Children {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}

// SetText replaces all children with single text node.
func (e *Element) SetText(value string) {
	for _, c := range e.Children {
		c.setParent(nil)
	}
	t := NewText(value)
	t.setParent(e)
	e.Children = []Node{t}
	e.open()
}

// AppendChild adds node as the last child of e.
func (e *Element) AppendChild(n Node) {
	e.InsertChild(len(e.Children), n)
}

// InsertChild inserts node at position index among all children (including
// text and comments). Node already attached elsewhere is detached first.
func (e *Element) InsertChild(index int, n Node) {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
	index = max(0, min(index, len(e.Children)))
	e.Children = slices.Insert(e.Children, index, n)
	n.setParent(e)
	e.open()
}

// RemoveChild detaches node from e, returns false if n is not a child.
func (e *Element) RemoveChild(n Node) bool {
	i := slices.Index(e.Children, n)
	if i < 0 {
		return false
	}
	e.Children = slices.Delete(e.Children, i, i+1)
	n.setParent(nil)
	return true
}

// open converts self-closing element into element with explicit end tag so
// it can hold children.
func (e *Element) open() {
	if !e.selfClosing {
		return
	}
	e.selfClosing = false
	if e.tail != nil {
		t := bytes.TrimSuffix(e.tail, []byte("/>"))
		e.tail = append(slices.Clip(t), '>')
	}
	e.end = nil
	e.invalidateStart()
}

func (e *Element) write(b *bytes.Buffer) {
	if e.selfClosing && len(e.Children) > 0 {
		// children were attached directly
		e.open()
	}
	if e.pristineStart() {
		b.Write(e.start)
	} else {
		e.writeStart(b)
	}
	if e.selfClosing {
		return
	}
	for _, c := range e.Children {
		c.write(b)
	}
	if e.end != nil && e.Name == e.origName {
		b.Write(e.end)
		return
	}
	b.WriteString("</")
	b.WriteString(e.Name)
	b.WriteByte('>')
}

// writeStart regenerates start tag reusing raw bytes of untouched attributes.
func (e *Element) writeStart(b *bytes.Buffer) {
	b.WriteByte('<')
	b.WriteString(e.Name)
	for _, a := range e.Attrs {
		if len(a.lead) > 0 {
			b.Write(a.lead)
		} else {
			b.WriteByte(' ')
		}
		if a.pristine() {
			b.Write(a.raw)
			continue
		}
		q := a.quote
		if q == 0 {
			q = '"'
		}
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteByte(q)
		escapeAttr(b, a.Value, q)
		b.WriteByte(q)
	}
	switch {
	case e.tail != nil:
		b.Write(e.tail)
	case e.selfClosing:
		b.WriteString("/>")
	default:
		b.WriteByte('>')
	}
}

func escapeText(b *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\r':
			b.WriteString("&#xD;")
		default:
			b.WriteRune(r)
		}
	}
}

func escapeAttr(b *bytes.Buffer, s string, quote byte) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			if quote == '"' {
				b.WriteString("&quot;")
			} else {
				b.WriteRune(r)
			}
		case '\'':
			if quote == '\'' {
				b.WriteString("&apos;")
			} else {
				b.WriteRune(r)
			}
		case '\n':
			b.WriteString("&#10;")
		case '\r':
			b.WriteString("&#13;")
		case '\t':
			b.WriteString("&#9;")
		default:
			b.WriteRune(r)
		}
	}
}
