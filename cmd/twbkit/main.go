package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"twbkit/commands"
	"twbkit/config"
	"twbkit/misc"
	"twbkit/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Ignore urfave/cli default error handling, subcommands return regular
// errors.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

const sourceHelp = `
SOURCE:
    path to workbook (.twb) or packaged workbook (.twbx); when path is a
    directory all workbooks under it are processed recursively (symbolic links
    are not followed). Container is detected by content, extension is a hint.
`

const editHelp = sourceHelp + `
DESTINATION:
    --output: file, or existing directory when SOURCE is a directory
    --overwrite: replace SOURCE in place
    otherwise name is produced by "workbook.output_name_template" next to SOURCE

    Files are replaced atomically, on failure destination is left untouched.
`

func editFlags(extra ...cli.Flag) []cli.Flag {
	return append(extra,
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write modified workbook to `DEST`"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "save modified workbook over the source"},
		&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "apply changes in memory only, do not save"},
	)
}

func main() {

	// allow graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "inspects and edits workbook (twb, twbx) metadata",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "inspect",
				Usage:        "Prints workbook metadata: data sources, fields, styles, resources",
				OnUsageError: usageErrorHandler,
				Action:       commands.Inspect,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"},
						Usage: "output `FORMAT` (supported: " + strings.Join(config.OutputFmtNames(), ", ") + "), overrides configuration"},
					&cli.BoolFlag{Name: "sort", Aliases: []string{"s"}, Usage: "order names naturally instead of document order"},
				},
				ArgsUsage:          "SOURCE...",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
			},
			{
				Name:               "outline",
				Usage:              "Prints workbook structure as indented tree",
				OnUsageError:       usageErrorHandler,
				Action:             commands.Outline,
				ArgsUsage:          "SOURCE...",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
			},
			{
				Name:         "hide",
				Usage:        "Hides (or shows) fields",
				OnUsageError: usageErrorHandler,
				Action:       commands.Hide,
				Flags: editFlags(
					&cli.StringFlag{Name: "datasource", Aliases: []string{"ds"}, Usage: "limit field lookup to data source with `NAME` (caption or internal name)"},
					&cli.BoolFlag{Name: "unhide", Usage: "make fields visible instead"},
				),
				ArgsUsage: "SOURCE FIELD...",
				CustomHelpTemplate: cli.CommandHelpTemplate + editHelp + `
FIELD:
    field name as printed by inspect ("Revenue(Orders)" when several data
    sources declare "Revenue"), short name when it is unique, or internal
    column name.
`,
			},
			{
				Name:               "font",
				Usage:              "Replaces font family",
				OnUsageError:       usageErrorHandler,
				Action:             commands.Font,
				Flags:              editFlags(),
				ArgsUsage:          "SOURCE FROM TO",
				CustomHelpTemplate: cli.CommandHelpTemplate + editHelp,
			},
			{
				Name:               "color",
				Usage:              "Replaces color used by worksheet formatting",
				OnUsageError:       usageErrorHandler,
				Action:             commands.Color,
				Flags:              editFlags(),
				ArgsUsage:          "SOURCE FROM TO",
				CustomHelpTemplate: cli.CommandHelpTemplate + editHelp,
			},
			{
				Name:         "query",
				Usage:        "Prints markup elements matching path",
				OnUsageError: usageErrorHandler,
				Action:       commands.Query,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "count", Usage: "print number of matches only"},
				},
				ArgsUsage: "SOURCE PATH",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp + `
PATH:
    etree path, e.g. "//datasource[@caption='Orders']/column[@hidden='true']"
`,
			},
			{
				Name:         "resources",
				Usage:        "Lists files packaged with the workbook",
				OnUsageError: usageErrorHandler,
				Action:       commands.Resources,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "force-zip-cp",
						Usage: "Force `ENCODING` for ALL non UTF-8 entry names (see IANA.org for character set names)"},
				},
				ArgsUsage:          "SOURCE...",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()

	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
