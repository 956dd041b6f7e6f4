package archive

import (
	"os"

	"go.uber.org/zap"
)

// Source is resolved workbook input: markup bytes and, for packages, the
// package those bytes came from.
type Source struct {
	Path    string
	Kind    Kind
	Markup  []byte
	Package *Package
}

// Resolve reads file at path and resolves its container.
func Resolve(path string, log *zap.Logger) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return ResolveBytes(path, data, log)
}

// ResolveBytes resolves container of in-memory input. Name is used for
// extension hint and error reporting only.
func ResolveBytes(name string, data []byte, log *zap.Logger) (*Source, error) {
	if log == nil {
		log = zap.NewNop()
	}

	kind := Detect(data)
	if hint := KindFromExt(name); hint != KindUnknown && kind != KindUnknown && hint != kind {
		log.Warn("Workbook content does not match file extension, using content",
			zap.String("file", name), zap.Stringer("extension", hint), zap.Stringer("content", kind))
	}

	switch kind {
	case KindMarkup:
		return &Source{Path: name, Kind: kind, Markup: data}, nil
	case KindPackage:
		pkg, err := OpenPackage(name, data)
		if err != nil {
			return nil, err
		}
		markup, err := pkg.Markup().Bytes()
		if err != nil {
			return nil, &IOError{Path: name, Err: err}
		}
		log.Debug("Workbook package resolved",
			zap.String("file", name), zap.String("markup", pkg.Markup().Path), zap.Int("entries", len(pkg.Entries())))
		return &Source{Path: name, Kind: kind, Markup: markup, Package: pkg}, nil
	}
	return nil, &FormatError{Path: name, Reason: "content is neither workbook markup nor workbook package"}
}
