package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type testEntry struct {
	name    string
	content string
	method  uint16
}

func buildZip(t *testing.T, entries []testEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

const testMarkup = "<?xml version='1.0' encoding='utf-8' ?>\n<workbook version='18.1'></workbook>\n"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"markup", []byte(testMarkup), KindMarkup},
		{"markup with bom and space", append([]byte{0xEF, 0xBB, 0xBF, '\n', ' '}, "<workbook/>"...), KindMarkup},
		{"zip", buildZip(t, []testEntry{{name: "a.twb", content: "<a/>"}}), KindPackage},
		{"text", []byte("not a workbook"), KindUnknown},
		{"empty", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindFromExt(t *testing.T) {
	if got := KindFromExt("dir/Book.TWBX"); got != KindPackage {
		t.Errorf("KindFromExt(.TWBX) = %v", got)
	}
	if got := KindFromExt("book.twb"); got != KindMarkup {
		t.Errorf("KindFromExt(.twb) = %v", got)
	}
	if got := KindFromExt("book.xml"); got != KindUnknown {
		t.Errorf("KindFromExt(.xml) = %v", got)
	}
}

func TestResolveBytes(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	pkg := buildZip(t, []testEntry{
		{name: "Data/", content: ""},
		{name: "Data/extract.hyper", content: "binary\x00data", method: zip.Store},
		{name: "Book.twb", content: testMarkup, method: zip.Deflate},
		{name: "Image/logo.png", content: "\x89PNG fake", method: zip.Deflate},
	})

	t.Run("bare markup", func(t *testing.T) {
		src, err := ResolveBytes("book.twb", []byte(testMarkup), log)
		if err != nil {
			t.Fatalf("ResolveBytes() error = %v", err)
		}
		if src.Kind != KindMarkup || src.Package != nil || string(src.Markup) != testMarkup {
			t.Errorf("unexpected source %+v", src)
		}
	})

	t.Run("package", func(t *testing.T) {
		src, err := ResolveBytes("book.twbx", pkg, log)
		if err != nil {
			t.Fatalf("ResolveBytes() error = %v", err)
		}
		if src.Kind != KindPackage || string(src.Markup) != testMarkup {
			t.Fatalf("unexpected source kind %v", src.Kind)
		}
		if got := src.Package.Markup().Path; got != "Book.twb" {
			t.Errorf("markup entry = %q", got)
		}
		res := src.Package.Resources()
		if len(res) != 2 || res[0].Path != "Data/extract.hyper" || res[1].Path != "Image/logo.png" {
			t.Fatalf("unexpected resources %v", res)
		}
		data, err := res[0].Bytes()
		if err != nil || string(data) != "binary\x00data" {
			t.Errorf("Bytes() = %q, %v", data, err)
		}
		if res[0].Size() != int64(len("binary\x00data")) {
			t.Errorf("Size() = %d", res[0].Size())
		}
		if len(src.Package.Entries()) != 4 {
			t.Errorf("Entries() = %d, want 4", len(src.Package.Entries()))
		}
		if src.Package.Lookup("Image/logo.png") != res[1] || src.Package.Lookup("nope") != nil {
			t.Error("Lookup() mismatch")
		}
	})

	t.Run("extension is only a hint", func(t *testing.T) {
		src, err := ResolveBytes("book.twb", pkg, log)
		if err != nil {
			t.Fatalf("ResolveBytes() error = %v", err)
		}
		if src.Kind != KindPackage {
			t.Errorf("Kind = %v, want package", src.Kind)
		}
		src, err = ResolveBytes("book.twbx", []byte(testMarkup), log)
		if err != nil || src.Kind != KindMarkup {
			t.Errorf("ResolveBytes() = %v, %v", src, err)
		}
	})

	t.Run("nested markup", func(t *testing.T) {
		data := buildZip(t, []testEntry{{name: "a.txt", content: "x"}, {name: "sub/Book.twb", content: testMarkup}})
		src, err := ResolveBytes("nested.twbx", data, log)
		if err != nil {
			t.Fatalf("ResolveBytes() error = %v", err)
		}
		if got := src.Package.Markup().Path; got != "sub/Book.twb" {
			t.Errorf("markup entry = %q", got)
		}
	})
}

func TestResolveBytes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		target error
	}{
		{"unknown content", []byte("definitely not xml"), ErrFormat},
		{"no markup entry", buildZip(t, []testEntry{{name: "readme.txt", content: "x"}}), ErrFormat},
		{"two markup entries", buildZip(t, []testEntry{{name: "a.twb", content: "<a/>"}, {name: "b.twb", content: "<b/>"}}), ErrFormat},
		{"unsafe path", buildZip(t, []testEntry{{name: "a.twb", content: "<a/>"}, {name: "../evil.png", content: "x"}}), ErrFormat},
		{"truncated package", []byte("PK\x03\x04 this archive ends too early"), ErrIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveBytes("input.twbx", tt.data, nil)
			if !errors.Is(err, tt.target) {
				t.Errorf("ResolveBytes() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()

	if _, err := Resolve(filepath.Join(dir, "missing.twb"), nil); !errors.Is(err, ErrIO) {
		t.Errorf("Resolve() error = %v, want ErrIO", err)
	}

	name := filepath.Join(dir, "book.twb")
	if err := os.WriteFile(name, []byte(testMarkup), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	src, err := Resolve(name, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if src.Path != name || src.Kind != KindMarkup {
		t.Errorf("unexpected source %+v", src)
	}
}

func TestPackage_Walk(t *testing.T) {
	data := buildZip(t, []testEntry{
		{name: "Book.twb", content: testMarkup},
		{name: "Image/a.png", content: "a"},
		{name: "Image/b.png", content: "b"},
		{name: "Shapes/s.png", content: "s"},
	})
	p, err := OpenPackage("book.twbx", data)
	if err != nil {
		t.Fatalf("OpenPackage() error = %v", err)
	}

	var visited []string
	if err := p.Walk("Image/", func(e *Entry) error {
		visited = append(visited, e.Path)
		return nil
	}); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(visited) != 2 {
		t.Errorf("visited %v, want 2 entries", visited)
	}

	stop := errors.New("stop")
	count := 0
	err = p.Walk("", func(e *Entry) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) || count != 1 {
		t.Errorf("Walk() should stop on error, got %v after %d", err, count)
	}
}

func TestPackage_Repack(t *testing.T) {
	entries := []testEntry{
		{name: "Book.twb", content: testMarkup, method: zip.Deflate},
		{name: "Data/", content: ""},
		{name: "Data/extract.hyper", content: string(bytes.Repeat([]byte("extract"), 500)), method: zip.Deflate},
		{name: "Image/logo.png", content: "\x89PNG\r\n\x1a\nfake", method: zip.Store},
	}
	orig := buildZip(t, entries)
	p, err := OpenPackage("book.twbx", orig)
	if err != nil {
		t.Fatalf("OpenPackage() error = %v", err)
	}

	newMarkup := []byte("<workbook version='18.1' changed='yes'></workbook>")
	for _, c := range []Compression{CompressionKeep, CompressionStore, CompressionDeflate} {
		var out bytes.Buffer
		if err := p.Repack(&out, newMarkup, c); err != nil {
			t.Fatalf("Repack() error = %v", err)
		}

		before, err := zip.NewReader(bytes.NewReader(orig), int64(len(orig)))
		if err != nil {
			t.Fatalf("unable to read original: %v", err)
		}
		after, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
		if err != nil {
			t.Fatalf("unable to read repacked archive: %v", err)
		}
		if len(after.File) != len(before.File) {
			t.Fatalf("repacked archive has %d entries, want %d", len(after.File), len(before.File))
		}
		for i, f := range after.File {
			if f.Name != before.File[i].Name {
				t.Errorf("entry %d = %q, want %q", i, f.Name, before.File[i].Name)
			}
			if f.Name == "Book.twb" {
				switch c {
				case CompressionStore:
					if f.Method != zip.Store {
						t.Errorf("markup method = %d, want store", f.Method)
					}
				default:
					if f.Method != zip.Deflate {
						t.Errorf("markup method = %d, want deflate", f.Method)
					}
				}
				continue
			}
			if f.CRC32 != before.File[i].CRC32 || f.CompressedSize64 != before.File[i].CompressedSize64 || f.Method != before.File[i].Method {
				t.Errorf("entry %q was not copied raw", f.Name)
			}
		}

		rp, err := OpenPackage("repacked.twbx", out.Bytes())
		if err != nil {
			t.Fatalf("OpenPackage(repacked) error = %v", err)
		}
		got, err := rp.Markup().Bytes()
		if err != nil || !bytes.Equal(got, newMarkup) {
			t.Errorf("markup = %q, %v", got, err)
		}
		for _, e := range rp.Resources() {
			want := p.Lookup(e.Path)
			wd, _ := want.Bytes()
			gd, _ := e.Bytes()
			if !bytes.Equal(wd, gd) {
				t.Errorf("resource %q content changed", e.Path)
			}
		}
	}
}
