package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"twbkit/state"
)

// Query prints elements matching etree path: query SOURCE PATH
func Query(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("query")

	path := cmd.Args().Get(1)
	if len(path) == 0 {
		return errors.New("no path has been specified")
	}
	if _, err := etree.CompilePath(path); err != nil {
		return fmt.Errorf("bad path %q: %w", path, err)
	}
	out := cmd.Root().Writer

	return walkSources(ctx, []string{cmd.Args().First()}, log, func(ctx context.Context, file string) error {
		doc, err := openDocument(env, file, log)
		if err != nil {
			return err
		}
		found, err := doc.Query(path)
		if err != nil {
			return err
		}
		log.Debug("Query completed", zap.String("file", file), zap.String("path", path), zap.Int("found", len(found)))

		if cmd.Bool("count") {
			_, err := fmt.Fprintf(out, "%s: %d\n", file, len(found))
			return err
		}
		for _, el := range found {
			snippet := etree.NewDocument()
			snippet.SetRoot(el.Copy())
			snippet.Indent(2)
			if _, err := snippet.WriteTo(out); err != nil {
				return err
			}
		}
		return nil
	})
}
