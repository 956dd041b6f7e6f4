package archive

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Kind of workbook container.
type Kind int

const (
	KindUnknown Kind = iota
	// KindMarkup is bare workbook XML (.twb).
	KindMarkup
	// KindPackage is zip archive holding workbook XML and resources (.twbx).
	KindPackage
)

func (k Kind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

const (
	MarkupExt  = ".twb"
	PackageExt = ".twbx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect determines container kind by content signature.
func Detect(data []byte) Kind {
	if filetype.Is(data, "zip") {
		return KindPackage
	}
	data = bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if len(data) > 0 && data[0] == '<' {
		return KindMarkup
	}
	return KindUnknown
}

// KindFromExt returns container kind suggested by file name. It is only a
// hint, content always wins.
func KindFromExt(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case MarkupExt:
		return KindMarkup
	case PackageExt:
		return KindPackage
	default:
		return KindUnknown
	}
}
