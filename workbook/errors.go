package workbook

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAmbiguousName = errors.New("ambiguous name")
	ErrNoPath        = errors.New("document has no origin path")
)

// NotFoundError is returned by mutators when target does not exist in the
// document.
type NotFoundError struct {
	What       string // "field", "font", "color"
	Name       string
	DataSource string
}

func (e *NotFoundError) Error() string {
	if e.DataSource != "" {
		return fmt.Sprintf("%s %q not found in data source %q", e.What, e.Name, e.DataSource)
	}
	return fmt.Sprintf("%s %q not found", e.What, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousNameError is returned when short field name is declared by more
// than one data source and no data source was specified.
type AmbiguousNameError struct {
	Name       string
	Candidates []string // qualified names
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("field name %q is ambiguous, use one of: %s", e.Name, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousNameError) Is(target error) bool {
	return target == ErrAmbiguousName
}
