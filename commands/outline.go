package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"

	"twbkit/state"
	"twbkit/workbook"
)

// treeWriter accumulates indented outline lines.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{w: &strings.Builder{}}
}

func (tw *treeWriter) String() string {
	return tw.w.String()
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// value writes labeled value, quoted when it may be confused with outline
// structure.
func (tw *treeWriter) value(depth int, label, value string) {
	if value == "" {
		return
	}
	if strings.ContainsAny(value, "\n\t\"") || strings.TrimSpace(value) != value {
		value = strconv.Quote(value)
	}
	tw.line(depth, "%s: %s", label, value)
}

// outline renders data sources with their connections and fields, then
// worksheets.
func outline(doc *workbook.Document) string {
	tw := newTreeWriter()
	for _, ds := range doc.DataSources() {
		tw.line(0, "datasource %s", ds.DisplayName())
		tw.value(1, "name", ds.Name)
		for _, c := range ds.Connections {
			tw.line(1, "connection %s", c.Class)
			tw.value(2, "server", c.Server)
			tw.value(2, "database", c.Database)
			tw.value(2, "file", c.Filename)
			for _, sql := range c.CustomSQL {
				tw.value(2, "sql", sql)
			}
		}
		for _, f := range ds.Fields {
			var marks []string
			if f.Hidden {
				marks = append(marks, "hidden")
			}
			if f.Calculated {
				marks = append(marks, "calculated")
			}
			if len(marks) > 0 {
				tw.line(1, "field %s [%s]", f.Qualified, strings.Join(marks, ", "))
			} else {
				tw.line(1, "field %s", f.Qualified)
			}
		}
	}
	for _, ws := range doc.Worksheets() {
		tw.line(0, "worksheet %s", ws)
	}
	return tw.String()
}

// Outline prints structure of the workbook as indented tree.
func Outline(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("outline")
	out := cmd.Root().Writer

	return walkSources(ctx, cmd.Args().Slice(), log, func(ctx context.Context, path string) error {
		doc, err := openDocument(env, path, log)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n%s", path, outline(doc))
		return err
	})
}
