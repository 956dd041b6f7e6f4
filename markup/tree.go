package markup

import (
	"bytes"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// Tree is parsed document: top level nodes (prolog, comments, whitespace and
// the single root element) in source order.
type Tree struct {
	Nodes []Node

	enc     encoding.Encoding
	encName string
}

// Root returns document element.
func (t *Tree) Root() *Element {
	for _, n := range t.Nodes {
		if el, ok := n.(*Element); ok {
			return el
		}
	}
	return nil
}

// Bytes serializes tree. For unmodified tree result is identical to parsed
// input.
func (t *Tree) Bytes() ([]byte, error) {
	var b bytes.Buffer
	for _, n := range t.Nodes {
		n.write(&b)
	}
	if t.enc == nil {
		return b.Bytes(), nil
	}
	out, err := t.enc.NewEncoder().Bytes(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("unable to encode document to %q: %w", t.encName, err)
	}
	return out, nil
}

// WriteTo writes serialized tree to w.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	data, err := t.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// String returns serialized tree, encoding errors are ignored.
func (t *Tree) String() string {
	data, _ := t.Bytes()
	return string(data)
}

// ETree returns detached etree document built from the current state of the
// tree. Changes to it are not reflected back.
func (t *Tree) ETree() (*etree.Document, error) {
	data, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to build element tree: %w", err)
	}
	return doc, nil
}

// Query evaluates etree path against the current state of the tree and
// returns matching elements from detached copy.
func (t *Tree) Query(path string) ([]*etree.Element, error) {
	p, err := etree.CompilePath(path)
	if err != nil {
		return nil, fmt.Errorf("bad path %q: %w", path, err)
	}
	doc, err := t.ETree()
	if err != nil {
		return nil, err
	}
	return doc.FindElementsPath(p), nil
}
