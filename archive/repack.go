package archive

import (
	"fmt"
	"io"

	fixzip "github.com/hidez8891/zip"
)

// Compression of rewritten markup entry.
type Compression int

const (
	// CompressionKeep reuses method of the original entry.
	CompressionKeep Compression = iota
	CompressionStore
	CompressionDeflate
)

// Repack writes package to w with markup entry content replaced. Every other
// entry is copied raw in original order: compressed data, flags and
// timestamps are not touched.
func (p *Package) Repack(w io.Writer, markup []byte, compression Compression) error {
	zw := fixzip.NewWriter(w)

	for _, e := range p.entries {
		if e != p.markup {
			// sizes and crc are known, keep them in local header
			e.file.Flags &= ^fixzip.FlagDataDescriptor
			if err := zw.CopyFile(e.file); err != nil {
				return fmt.Errorf("unable to copy entry %q: %w", e.Path, err)
			}
			continue
		}

		hdr := &fixzip.FileHeader{
			Name:     e.file.Name,
			Comment:  e.file.Comment,
			Method:   e.file.Method,
			Modified: e.file.Modified,
		}
		switch compression {
		case CompressionStore:
			hdr.Method = fixzip.Store
		case CompressionDeflate:
			hdr.Method = fixzip.Deflate
		}
		ew, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("unable to create entry %q: %w", e.Path, err)
		}
		if _, err := ew.Write(markup); err != nil {
			return fmt.Errorf("unable to write entry %q: %w", e.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to finalize package: %w", err)
	}
	return nil
}
