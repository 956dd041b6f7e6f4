package commands

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"twbkit/archive"
	"twbkit/state"
)

// Resources lists package entries other than workbook markup.
func Resources(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("resources")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old packages
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 entry names", zap.String("charset", n))
		}
	}
	out := cmd.Root().Writer

	return walkSources(ctx, cmd.Args().Slice(), log, func(ctx context.Context, path string) error {
		doc, err := openDocument(env, path, log)
		if err != nil {
			return err
		}
		if doc.Container() != archive.KindPackage {
			log.Info("Workbook is not packaged, no resources", zap.String("file", path))
			return nil
		}
		for _, e := range doc.Resources() {
			if _, err := fmt.Fprintf(out, "%12d  %s\n", e.Size(), entryName(env, e, log)); err != nil {
				return err
			}
		}
		return nil
	})
}

func entryName(env *state.LocalEnv, e *archive.Entry, log *zap.Logger) string {
	if env.CodePage == nil || !e.NonUTF8() {
		return e.Path
	}
	n, err := env.CodePage.NewDecoder().String(e.Path)
	if err != nil {
		cp, _ := ianaindex.IANA.Name(env.CodePage)
		log.Warn("Unable to convert entry name from specified encoding",
			zap.String("charset", cp), zap.String("path", e.Path), zap.Error(err))
		return e.Path
	}
	return n
}
