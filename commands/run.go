// Package commands implements program subcommands on top of workbook
// package.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"twbkit/archive"
	"twbkit/state"
	"twbkit/workbook"
)

// sourceFunc is called for every workbook found among command sources.
type sourceFunc func(ctx context.Context, path string) error

// walkSources calls fn for each workbook specified on command line.
// Directories are walked recursively, only files with workbook extensions
// are considered there. Errors for individual workbooks are logged and
// processing continues, the number of failures is returned as error.
func walkSources(ctx context.Context, srcs []string, log *zap.Logger, fn sourceFunc) error {
	if len(srcs) == 0 {
		return errors.New("no input source has been specified")
	}

	var count, failed int
	process := func(path string) {
		count++
		if err := fn(ctx, path); err != nil {
			failed++
			log.Error("Unable to process workbook", zap.String("file", path), zap.Error(err))
		}
	}

	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}

		fi, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("input source was not found (%s): %w", src, err)
		}
		if !fi.IsDir() {
			process(src)
			continue
		}

		err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !info.Mode().IsRegular() || archive.KindFromExt(path) == archive.KindUnknown {
				return nil
			}
			process(path)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if count == 0 {
		log.Debug("Nothing to process", zap.Strings("sources", srcs))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d workbook(s) could not be processed", failed, count)
	}
	return nil
}

func openDocument(env *state.LocalEnv, path string, log *zap.Logger) (*workbook.Document, error) {
	doc, err := workbook.Open(path, log, env.DocumentOptions()...)
	if err != nil {
		return nil, err
	}
	if env.Rpt != nil {
		if err := env.Rpt.StoreWorkbook("source", path); err != nil {
			log.Warn("Unable to store workbook in debug report", zap.String("file", path), zap.Error(err))
		}
	}
	return doc, nil
}

func argsFrom(cmd *cli.Command, skip int) []string {
	args := cmd.Args().Slice()
	if len(args) <= skip {
		return nil
	}
	return args[skip:]
}
