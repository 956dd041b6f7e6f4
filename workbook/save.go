package workbook

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"twbkit/archive"
)

// WriteTo serializes document into the same kind of container it was opened
// from.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	markup, err := d.tree.Bytes()
	if err != nil {
		return 0, err
	}
	if d.pkg == nil {
		n, err := w.Write(markup)
		return int64(n), err
	}

	cw := &countingWriter{w: w}
	if err := d.pkg.Repack(cw, markup, d.opts.compression); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Save writes document back to its origin.
func (d *Document) Save() error {
	if d.path == "" {
		return ErrNoPath
	}
	return d.SaveAs(d.path)
}

// SaveAs writes document to path atomically: either path holds complete new
// content or it is left as it was. Origin of the document does not change.
func (d *Document) SaveAs(path string) error {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return fmt.Errorf("unable to serialize workbook: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes(), d.opts.backup); err != nil {
		return &archive.IOError{Path: path, Err: err}
	}
	d.dirty = false
	d.log.Debug("Workbook saved", zap.String("file", path), zap.Int("size", buf.Len()))
	return nil
}

// writeFileAtomic writes data into temporary file next to destination and
// renames it over destination once data is on disk.
func writeFileAtomic(dst string, data []byte, backup bool) (err error) {
	mode := os.FileMode(0644)
	fi, statErr := os.Stat(dst)
	if statErr == nil {
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("destination is not a regular file")
		}
		mode = fi.Mode().Perm()
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+"."+uuid.NewString()+".tmp")
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp))
		}
	}()

	if _, err = out.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("unable to write temporary file: %w", err), out.Close())
	}
	if err = out.Sync(); err != nil {
		return multierr.Append(fmt.Errorf("unable to sync temporary file: %w", err), out.Close())
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if backup && statErr == nil {
		if err = copyFile(dst, dst+".bak"); err != nil {
			return fmt.Errorf("unable to backup destination: %w", err)
		}
	}
	if err = os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("unable to replace destination: %w", err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
