package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("workbook i/o failure")
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("unrecognized workbook format")
)

// IOError reports unreadable, truncated or unwritable input or output.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o failure on %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// FormatError reports content which is neither workbook markup nor workbook
// package.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized workbook format of %q: %s", e.Path, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
