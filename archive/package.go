// Package archive resolves workbook containers: bare markup or zip package
// with markup and resources. Package entries are indexed on open, their
// content is read only when requested and copied raw when package is written
// back.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	fixzip "github.com/hidez8891/zip"
)

// general purpose flag: file name and comment are UTF-8
const flagUTF8 = 0x800

// Entry is a single file in the package. Content is never interpreted.
type Entry struct {
	Path string
	file *fixzip.File
}

// Size returns uncompressed size of the entry.
func (e *Entry) Size() int64 {
	return int64(e.file.UncompressedSize64)
}

// IsDir reports whether entry is a directory record.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.Path, "/")
}

// NonUTF8 reports whether entry name is not marked as UTF-8 and is not a
// valid UTF-8 string, so it is in some legacy code page.
func (e *Entry) NonUTF8() bool {
	return e.file.Flags&flagUTF8 == 0 && !utf8.ValidString(e.Path)
}

// Open returns reader for uncompressed entry content.
func (e *Entry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}

// Bytes reads uncompressed entry content.
func (e *Entry) Bytes() ([]byte, error) {
	r, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open entry %q: %w", e.Path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read entry %q: %w", e.Path, err)
	}
	return data, nil
}

// Package is an opened workbook package. Archive bytes are kept in memory so
// package does not hold any file open and may be written over its origin.
type Package struct {
	name    string
	entries []*Entry
	markup  *Entry
}

// OpenPackage indexes archive entries and locates workbook markup entry.
// Entries with path traversal components or absolute paths reject the whole
// package.
func OpenPackage(name string, data []byte) (*Package, error) {
	zr, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &IOError{Path: name, Err: fmt.Errorf("unable to read package: %w", err)}
	}

	p := &Package{name: name}
	var candidates []*Entry
	for _, f := range zr.File {
		if !isSafePath(f.Name) {
			return nil, &FormatError{Path: name, Reason: fmt.Sprintf("entry %q has unsafe path (absolute or contains path traversal)", f.Name)}
		}
		e := &Entry{Path: f.Name, file: f}
		p.entries = append(p.entries, e)
		if !e.IsDir() && strings.EqualFold(path.Ext(f.Name), MarkupExt) {
			candidates = append(candidates, e)
		}
	}

	if p.markup, err = selectMarkup(name, candidates); err != nil {
		return nil, err
	}
	return p, nil
}

// selectMarkup prefers single top level workbook entry, falls back to the
// first one found deeper in the tree.
func selectMarkup(name string, candidates []*Entry) (*Entry, error) {
	var top []*Entry
	for _, e := range candidates {
		if !strings.Contains(e.Path, "/") {
			top = append(top, e)
		}
	}
	switch {
	case len(top) == 1:
		return top[0], nil
	case len(top) > 1:
		return nil, &FormatError{Path: name, Reason: fmt.Sprintf("package has %d top level workbook entries", len(top))}
	case len(candidates) > 0:
		return candidates[0], nil
	}
	return nil, &FormatError{Path: name, Reason: "package does not contain workbook markup entry"}
}

// Name returns name package was opened with.
func (p *Package) Name() string {
	return p.name
}

// Markup returns workbook markup entry.
func (p *Package) Markup() *Entry {
	return p.markup
}

// Entries returns all entries in archive order, including markup entry and
// directory records.
func (p *Package) Entries() []*Entry {
	return p.entries
}

// Resources returns file entries other than workbook markup in archive order.
func (p *Package) Resources() []*Entry {
	var out []*Entry
	_ = p.Walk("", func(e *Entry) error {
		out = append(out, e)
		return nil
	})
	return out
}

// Lookup returns entry by path or nil.
func (p *Package) Lookup(name string) *Entry {
	for _, e := range p.entries {
		if e.Path == name {
			return e
		}
	}
	return nil
}

// WalkFunc is the type of the function called for each resource entry
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(e *Entry) error

// Walk calls walkFn for every resource entry (not directory, not markup)
// whose path starts with prefix.
func (p *Package) Walk(prefix string, walkFn WalkFunc) error {
	for _, e := range p.entries {
		if e == p.markup || e.IsDir() || !strings.HasPrefix(e.Path, prefix) {
			continue
		}
		if err := walkFn(e); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
