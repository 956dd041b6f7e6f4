package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("malformed markup")

// ParseError describes malformed markup. Offset is in bytes from the start of
// (decoded) input, Line and Column are 1-based.
type ParseError struct {
	Offset int64
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed markup at line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("malformed markup: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func newParseError(src []byte, offset int64, err error) *ParseError {
	offset = max(0, min(offset, int64(len(src))))
	head := src[:offset]
	line := bytes.Count(head, []byte{'\n'}) + 1
	col := int(offset) - bytes.LastIndexByte(head, '\n')
	return &ParseError{Offset: offset, Line: line, Column: col, Err: err}
}

// Parse builds tree from raw document bytes. Document declared in encoding
// other than UTF-8 is decoded first and will be encoded back on write.
func Parse(data []byte) (*Tree, error) {
	t := &Tree{}

	src := data
	label := declaredEncoding(data)
	if label != "" {
		enc, name := charset.Lookup(label)
		if enc == nil {
			return nil, &ParseError{Err: fmt.Errorf("unsupported document encoding %q", label)}
		}
		if name != "utf-8" {
			decoded, err := enc.NewDecoder().Bytes(data)
			if err != nil {
				return nil, &ParseError{Err: fmt.Errorf("unable to decode document from %q: %w", name, err)}
			}
			src, t.enc, t.encName = decoded, enc, name
		}
	}

	d := xml.NewDecoder(bytes.NewReader(src))
	d.Strict = true
	d.Entity = xml.HTMLEntity
	// input is UTF-8 at this point regardless of what prolog says
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	var (
		stack []*Element
		prev  int64
	)

	attach := func(n Node) {
		if len(stack) == 0 {
			t.Nodes = append(t.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		n.setParent(top)
		top.Children = append(top.Children, n)
	}

	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newParseError(src, d.InputOffset(), err)
		}
		off := d.InputOffset()
		raw := src[prev:off:off]
		prev = off

		switch tk := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && t.Root() != nil {
				return nil, newParseError(src, off-int64(len(raw)), errors.New("more than one root element"))
			}
			el, err := newParsedElement(tk, raw)
			if err != nil {
				return nil, newParseError(src, off-int64(len(raw)), err)
			}
			attach(el)
			stack = append(stack, el)

		case xml.EndElement:
			name := qualifiedName(tk.Name)
			if len(stack) == 0 {
				return nil, newParseError(src, off-int64(len(raw)), fmt.Errorf("unexpected end element </%s>", name))
			}
			top := stack[len(stack)-1]
			if top.Name != name {
				return nil, newParseError(src, off-int64(len(raw)), fmt.Errorf("element <%s> closed by </%s>", top.Name, name))
			}
			stack = stack[:len(stack)-1]
			// self-closing element produces synthetic end token without input
			top.end = raw
			if len(raw) == 0 {
				top.selfClosing, top.end = true, nil
			}

		case xml.CharData:
			txt := &Text{Value: string(tk), raw: raw, orig: string(tk)}
			if len(stack) == 0 && !txt.IsSpace() {
				return nil, newParseError(src, off-int64(len(raw)), errors.New("character data outside of root element"))
			}
			attach(txt)

		case xml.Comment:
			attach(&Comment{Value: string(tk), raw: raw, orig: string(tk)})

		case xml.ProcInst, xml.Directive:
			attach(&Opaque{raw: raw})
		}
	}

	if len(stack) > 0 {
		return nil, newParseError(src, int64(len(src)), fmt.Errorf("unexpected end of input, element <%s> is not closed", stack[len(stack)-1].Name))
	}
	if t.Root() == nil {
		return nil, newParseError(src, int64(len(src)), errors.New("no root element"))
	}
	return t, nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func newParsedElement(tk xml.StartElement, raw []byte) (*Element, error) {
	name := qualifiedName(tk.Name)
	spans, tail, err := splitStartTag(raw, len(name))
	if err != nil {
		return nil, err
	}
	if len(spans) != len(tk.Attr) {
		return nil, fmt.Errorf("element <%s>: unable to locate attributes", name)
	}
	el := &Element{
		Name:      name,
		start:     raw,
		tail:      tail,
		origName:  name,
		origAttrs: len(spans),
	}
	for i, s := range spans {
		an := qualifiedName(tk.Attr[i].Name)
		if an != string(s.name) {
			return nil, fmt.Errorf("element <%s>: attribute %q out of order", name, an)
		}
		el.Attrs = append(el.Attrs, &Attr{
			Name:     an,
			Value:    tk.Attr[i].Value,
			lead:     s.lead,
			raw:      s.text,
			quote:    s.quote,
			origName: an,
			orig:     tk.Attr[i].Value,
		})
	}
	return el, nil
}

type attrSpan struct {
	lead  []byte
	name  []byte
	text  []byte
	quote byte
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// splitStartTag cuts raw start tag (already validated by decoder) into
// attribute spans and closing tail.
func splitStartTag(raw []byte, nameLen int) ([]attrSpan, []byte, error) {
	var spans []attrSpan
	i := 1 + nameLen
	for {
		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j >= len(raw) {
			return nil, nil, errors.New("truncated start tag")
		}
		if raw[j] == '>' || raw[j] == '/' {
			return spans, raw[i:len(raw):len(raw)], nil
		}
		k := j
		for k < len(raw) && raw[k] != '=' && !isSpace(raw[k]) {
			k++
		}
		name := raw[j:k]
		for k < len(raw) && (isSpace(raw[k]) || raw[k] == '=') {
			k++
		}
		if k >= len(raw) || (raw[k] != '"' && raw[k] != '\'') {
			return nil, nil, fmt.Errorf("unquoted value of attribute %q", name)
		}
		q := raw[k]
		end := bytes.IndexByte(raw[k+1:], q)
		if end < 0 {
			return nil, nil, fmt.Errorf("unterminated value of attribute %q", name)
		}
		end += k + 2
		spans = append(spans, attrSpan{
			lead:  raw[i:j:j],
			name:  name,
			text:  raw[j:end:end],
			quote: q,
		})
		i = end
	}
}

// declaredEncoding returns encoding label from XML prolog, if any.
func declaredEncoding(data []byte) (label string) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = func(l string, _ io.Reader) (io.Reader, error) {
		label = l
		return nil, errStopProbe
	}
	for range 2 {
		tok, err := d.RawToken()
		if err != nil {
			break
		}
		if _, ok := tok.(xml.ProcInst); ok {
			break
		}
	}
	return strings.TrimSpace(label)
}

var errStopProbe = errors.New("stop")

// Encoding returns non UTF-8 encoding the document was declared with, nil
// for UTF-8 documents.
func (t *Tree) Encoding() (encoding.Encoding, string) {
	return t.enc, t.encName
}
