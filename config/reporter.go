package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"twbkit/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty report.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// EntryName builds report entry name out of arbitrary text, workbook file
// names and sheet captions included.
func EntryName(ext string, parts ...string) string {
	name := slug.Make(strings.Join(parts, " "))
	if name == "" {
		name = "entry"
	}
	return name + ext
}

type entry struct {
	origin string // where content came from, empty for generated data
	path   string // file read when report is closed
	data   []byte
	stamp  time.Time
}

// Report accumulates workbooks, logs and command output of a single run and
// packs them into zip archive on Close. Nil report accepts and ignores
// everything, so callers do not need to check if report was requested.
// Not safe for concurrent use.
type Report struct {
	entries map[string]entry
	file    *os.File
	// directory for workbook snapshots, created on first use
	snapshots string
}

// Close writes the archive and removes workbook snapshots.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	if r.snapshots != "" {
		defer os.RemoveAll(r.snapshots)
	}
	return r.finalize()
}

// Name returns name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers file to be read when report is closed. Used for logs
// which keep growing until the very end.
func (r *Report) Store(name, file string) {
	if r == nil {
		return
	}
	if old, exists := r.entries[name]; exists && old.origin != file {
		panic(fmt.Sprintf("report entry [%s] already points to %s, not %s", name, old.origin, file))
	}
	e := entry{origin: file, path: file}
	if p, err := filepath.Abs(file); err == nil {
		e.path = p
	}
	r.entries[name] = e
}

// StoreData puts generated content into report under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("report entry [%s] already has data", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreWorkbook snapshots workbook file as it is now under role
// subdirectory ("source", "result"). The same workbook may be stored
// several times, later snapshots get numbered names.
func (r *Report) StoreWorkbook(role, file string) error {
	if r == nil {
		return nil
	}
	return r.StoreCopy(path.Join(role, filepath.Base(file)), file)
}

// StoreCopy snapshots regular file under requested name. When name is taken
// already a number is inserted before extension: book.twbx, book-2.twbx...
func (r *Report) StoreCopy(name, file string) error {
	if r == nil {
		return nil
	}

	src, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("unable to store %s in report: not a regular file", file)
	}

	if r.snapshots == "" {
		if r.snapshots, err = os.MkdirTemp("", misc.GetAppName()+"-r-"); err != nil {
			return err
		}
	}
	name = r.freeName(name)

	dst := filepath.Join(r.snapshots, fmt.Sprintf("%03d-%s", len(r.entries), filepath.Base(src)))
	if err := copyFile(dst, src, info.ModTime()); err != nil {
		return err
	}
	r.entries[name] = entry{origin: file, path: dst, stamp: time.Now()}
	return nil
}

func (r *Report) freeName(name string) string {
	if _, exists := r.entries[name]; !exists {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if _, exists := r.entries[candidate]; !exists {
			return candidate
		}
	}
}

func copyFile(dst, src string, modTime time.Time) (err error) {
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
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	return os.Chtimes(dst, modTime, modTime)
}

// finalize writes MANIFEST followed by entries in the same order.
// Registered files which no longer exist are listed but skipped.
func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names, manifest := r.manifest(time.Now())
	if err := saveFile(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if e.data != nil {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(e.path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := saveFileFrom(arc, name, info.ModTime(), e.path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) manifest(now time.Time) ([]string, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, k := range names {
		e := r.entries[k]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		origin := e.origin
		if origin == "" {
			origin = "-"
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), k, origin)
	}
	return names, buf
}

func saveFileFrom(dst *zip.Writer, name string, t time.Time, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
