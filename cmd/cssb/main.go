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

	"cssb/config"
	"cssb/css"
	"cssb/misc"
	"cssb/state"
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
	if cmd.IsSet("format") {
		if env.Cfg.Output.Format, err = config.ParseOutputFmt(cmd.String("format")); err != nil {
			return ctx, fmt.Errorf("unable to use requested output format: %w", err)
		}
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// processed configuration with command line overrides applied
		if data, err := config.Dump(env.Cfg); err == nil {
			env.Rpt.StoreData("config/active.yaml", data)
		}
		if len(configFile) > 0 {
			env.Rpt.Store("config/"+filepath.Base(configFile), configFile)
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

	// log is synced now and can be put into report, errors must be reported
	// directly to stderr from now on
	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && env.Cfg.Logging.FileLogActive(env.Rpt) {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := env.Cfg.Logging.PanicLogName()
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Ignore urfave/cli default error handling - cli.Exit() is not needed here,
// subcommands return regular errors.
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

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "builds, checks and normalizes CSS selectors",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "produces report archive with debug log, configuration and selector transcript"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"},
				Usage: "output `TYPE`, overrides configuration (supported types: " + strings.Join(config.OutputFmtNames(), ", ") + ")"},
		},
		Commands: []*cli.Command{
			{
				Name:         "build",
				Usage:        "Builds compound selector from parts",
				OnUsageError: usageErrorHandler,
				Action:       buildSelector,
				ArgsUsage:    "KIND=VALUE...",
				CustomHelpTemplate: fmt.Sprintf(`%s
KIND=VALUE:
    selector part, applied in order given, KIND is one of: %s
    (short forms: el, attr, pc, pe). VALUE is used verbatim without decoration:

        cssb build el=a attr='href$=".png"' pc=focus    =>    a[href$=".png"]:focus

    Parts must follow element, id, class, attribute, pseudo-class,
    pseudo-element order; element, id and pseudo-element may appear only once.
`, cli.CommandHelpTemplate, strings.Join(css.KindNames(), ", ")),
			},
			{
				Name:         "parse",
				Usage:        "Checks and normalizes selector lists",
				OnUsageError: usageErrorHandler,
				Action:       parseSelectors,
				ArgsUsage:    "SELECTOR...",
			},
			{
				Name:         "combine",
				Usage:        "Joins two selectors with combinator",
				OnUsageError: usageErrorHandler,
				Action:       combineSelectors,
				ArgsUsage:    "LEFT COMBINATOR RIGHT",
				CustomHelpTemplate: fmt.Sprintf(`%s
COMBINATOR:
    passed through as is, CSS defines " " (descendant), ">", "+" and "~"
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "decode",
				Usage:        "Rebuilds selector from its JSON description",
				OnUsageError: usageErrorHandler,
				Action:       decodeSelector,
				ArgsUsage:    "[SOURCE]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    file with "--format json" output of this program (one selector per line)
    or bare selector description(s) ("node" value of that output),
    if absent - STDIN
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "rect",
				Usage:        "Prints rectangle and its area",
				OnUsageError: usageErrorHandler,
				Action:       outputRectangle,
				ArgsUsage:    "WIDTH HEIGHT",
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
}

func main() {

	// allow graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

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
	err = newApp().Run(ctx, os.Args)
}
