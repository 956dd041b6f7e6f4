package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"twbkit/config"
	"twbkit/workbook"
)

// nameValues are available for output name template expansion.
type nameValues struct {
	Command     string
	SourceFile  string
	Container   string
	DataSources []string
	Worksheets  []string
	Date        string
}

func newNameValues(command, src string, doc *workbook.Document) nameValues {
	v := nameValues{
		Command:    command,
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Container:  doc.Container().String(),
		Worksheets: doc.Worksheets(),
		Date:       time.Now().Format("2006-01-02"),
	}
	for _, ds := range doc.DataSources() {
		v.DataSources = append(v.DataSources, ds.DisplayName())
	}
	return v
}

func expandNameTemplate(field string, values nameValues) (string, error) {
	tmpl, err := template.New(config.OutputNameTemplateFieldName).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", config.OutputNameTemplateFieldName, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", config.OutputNameTemplateFieldName, err)
	}
	return buf.String(), nil
}

// templatedPath places expanded name (which may contain subdirectories)
// under dir, every path segment is cleaned and source extension is kept.
func templatedPath(dir, expanded, ext string) (string, error) {
	segments := splitPath(filepath.FromSlash(expanded))
	if len(segments) == 0 {
		return "", fmt.Errorf("output name template expanded to empty name")
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dir)
	for _, s := range segments {
		parts = append(parts, config.CleanFileName(s))
	}
	parts[len(parts)-1] += ext
	return filepath.Join(parts...), nil
}

func splitPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 4)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		if tail != "." && tail != ".." {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}
