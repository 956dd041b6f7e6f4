package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"twbkit/state"
	"twbkit/workbook"
)

type mutateFunc func(doc *workbook.Document, log *zap.Logger) error

// edit opens every workbook under SOURCE, applies mutation and saves result.
// Nothing is saved when mutation fails.
func edit(ctx context.Context, cmd *cli.Command, name string, mutate mutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named(name)

	env.Overwrite, env.DryRun = cmd.Bool("overwrite"), cmd.Bool("dry-run")
	output := cmd.String("output")

	src := cmd.Args().First()
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	srcIsDir := false
	if fi, err := os.Stat(src); err == nil && fi.IsDir() {
		srcIsDir = true
		if len(output) > 0 {
			if ofi, err := os.Stat(output); err != nil || !ofi.IsDir() {
				return fmt.Errorf("output must be an existing directory when source is a directory (%s)", output)
			}
		}
	}

	return walkSources(ctx, []string{src}, log, func(ctx context.Context, path string) error {
		doc, err := openDocument(env, path, log)
		if err != nil {
			return err
		}
		if err := mutate(doc, log); err != nil {
			return err
		}
		if !doc.Dirty() {
			return nil
		}

		// keep directory structure of the source under output directory
		rel := filepath.Base(path)
		if srcIsDir {
			if rel, err = filepath.Rel(src, path); err != nil {
				return err
			}
		}
		dst, err := destination(env, path, rel, output, newNameValues(name, path, doc))
		if err != nil {
			return err
		}
		if env.DryRun {
			log.Info("Dry run, workbook is not saved", zap.String("file", path), zap.String("destination", dst))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("unable to create destination directory: %w", err)
		}
		if err := doc.SaveAs(dst); err != nil {
			return err
		}
		log.Info("Workbook saved", zap.String("file", path), zap.String("destination", dst))
		if env.Rpt != nil {
			if err := env.Rpt.StoreWorkbook("result", dst); err != nil {
				log.Warn("Unable to store result in debug report", zap.String("file", dst), zap.Error(err))
			}
		}
		return nil
	})
}

// destination selects where modified workbook goes: explicit output (file,
// or directory where rel path of the source is recreated), source itself
// when overwriting is allowed, or name produced by configured template next
// to the source.
func destination(env *state.LocalEnv, src, rel, output string, values nameValues) (string, error) {
	if len(output) > 0 {
		if fi, err := os.Stat(output); err == nil && fi.IsDir() {
			return filepath.Join(output, rel), nil
		}
		return output, nil
	}
	if env.Overwrite {
		return src, nil
	}
	if tmpl := env.Cfg.Workbook.OutputNameTemplate; len(tmpl) > 0 {
		expanded, err := expandNameTemplate(tmpl, values)
		if err != nil {
			return "", err
		}
		dst, err := templatedPath(filepath.Dir(src), expanded, filepath.Ext(src))
		if err != nil {
			return "", err
		}
		if filepath.Clean(dst) == filepath.Clean(src) {
			return "", fmt.Errorf("output name template resolves to source workbook (%s), use --overwrite", src)
		}
		return dst, nil
	}
	return "", errors.New("refusing to overwrite source workbook, use --overwrite or --output")
}

// Hide changes visibility of fields: hide SOURCE FIELD...
func Hide(ctx context.Context, cmd *cli.Command) error {
	fields := argsFrom(cmd, 1)
	if len(fields) == 0 {
		return errors.New("no fields have been specified")
	}
	source, hidden := cmd.String("datasource"), !cmd.Bool("unhide")

	return edit(ctx, cmd, "hide", func(doc *workbook.Document, log *zap.Logger) error {
		var err error
		for _, name := range fields {
			if e := doc.SetFieldHidden(name, source, hidden); e != nil {
				err = multierr.Append(err, e)
				continue
			}
			log.Debug("Field visibility set", zap.String("field", name), zap.Bool("hidden", hidden))
		}
		return err
	})
}

// Font replaces font family: font SOURCE FROM TO
func Font(ctx context.Context, cmd *cli.Command) error {
	from, to, err := replacement(cmd)
	if err != nil {
		return err
	}
	return edit(ctx, cmd, "font", func(doc *workbook.Document, _ *zap.Logger) error {
		return doc.ReplaceFont(from, to)
	})
}

// Color replaces color value: color SOURCE FROM TO
func Color(ctx context.Context, cmd *cli.Command) error {
	from, to, err := replacement(cmd)
	if err != nil {
		return err
	}
	return edit(ctx, cmd, "color", func(doc *workbook.Document, _ *zap.Logger) error {
		return doc.ReplaceColor(from, to)
	})
}

func replacement(cmd *cli.Command) (string, string, error) {
	args := argsFrom(cmd, 1)
	if len(args) != 2 || len(args[0]) == 0 || len(args[1]) == 0 {
		return "", "", errors.New("exactly two values (FROM and TO) must be specified")
	}
	return args[0], args[1], nil
}
