// Package workbook is the semantic layer over workbook markup: read only
// metadata views, targeted mutators and lossless saving into the container
// document was opened from.
package workbook

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"twbkit/archive"
	"twbkit/markup"
)

// Option configures document behavior on save.
type Option func(*options)

type options struct {
	backup      bool
	compression archive.Compression
}

// WithBackup keeps previous content of the destination as <dest>.bak when
// document is saved over existing file.
func WithBackup(backup bool) Option {
	return func(o *options) {
		o.backup = backup
	}
}

// WithCompression selects compression of the rewritten markup entry when
// document is saved into a package.
func WithCompression(c archive.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// Document is an opened workbook. It exclusively owns its markup tree and,
// for packages, the package it came from. Document is not safe for
// concurrent use.
type Document struct {
	path  string
	kind  archive.Kind
	tree  *markup.Tree
	pkg   *archive.Package
	dirty bool

	opts options
	log  *zap.Logger
}

// Open reads workbook from path. Either a fully usable document or an error
// is returned.
func Open(path string, log *zap.Logger, opts ...Option) (*Document, error) {
	src, err := archive.Resolve(path, log)
	if err != nil {
		return nil, err
	}
	return fromSource(src, log, opts)
}

// OpenBytes opens in-memory workbook. Name is used as extension hint and in
// error messages, Save is not available for such documents.
func OpenBytes(name string, data []byte, log *zap.Logger, opts ...Option) (*Document, error) {
	src, err := archive.ResolveBytes(name, data, log)
	if err != nil {
		return nil, err
	}
	doc, err := fromSource(src, log, opts)
	if err != nil {
		return nil, err
	}
	doc.path = ""
	return doc, nil
}

func fromSource(src *archive.Source, log *zap.Logger, opts []Option) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tree, err := markup.Parse(src.Markup)
	if err != nil {
		return nil, fmt.Errorf("unable to parse workbook %q: %w", src.Path, err)
	}

	doc := &Document{
		path: src.Path,
		kind: src.Kind,
		tree: tree,
		pkg:  src.Package,
		log:  log,
	}
	for _, opt := range opts {
		opt(&doc.opts)
	}
	log.Debug("Workbook opened", zap.String("file", src.Path), zap.Stringer("container", src.Kind))
	return doc, nil
}

// Path returns origin path, empty for documents opened from memory.
func (d *Document) Path() string {
	return d.path
}

// Container returns kind of the origin container.
func (d *Document) Container() archive.Kind {
	return d.kind
}

// Dirty reports whether document was modified since it was opened or last
// saved.
func (d *Document) Dirty() bool {
	return d.dirty
}

// Tree gives raw access to the markup. Changes made through it are not
// tracked by Dirty.
func (d *Document) Tree() *markup.Tree {
	return d.tree
}

// Query evaluates etree path against detached snapshot of the markup.
func (d *Document) Query(path string) ([]*etree.Element, error) {
	return d.tree.Query(path)
}

// Resources returns package entries other than workbook markup, nil for bare
// documents.
func (d *Document) Resources() []*archive.Entry {
	if d.pkg == nil {
		return nil
	}
	return d.pkg.Resources()
}

func (d *Document) root() *markup.Element {
	if r := d.tree.Root(); r != nil {
		return r
	}
	return markup.NewElement("")
}
