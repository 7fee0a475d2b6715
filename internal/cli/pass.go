package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/volblock/internal/configloader"
	"github.com/yaklabco/volblock/internal/logging"
	"github.com/yaklabco/volblock/internal/rlimit"
	"github.com/yaklabco/volblock/internal/ui/pretty"
	"github.com/yaklabco/volblock/pkg/compdb"
	"github.com/yaklabco/volblock/pkg/config"
	"github.com/yaklabco/volblock/pkg/optnone"
	"github.com/yaklabco/volblock/pkg/parser/treesitter"
	"github.com/yaklabco/volblock/pkg/rewrite"
	"github.com/yaklabco/volblock/pkg/runner"
	"github.com/yaklabco/volblock/pkg/session"
)

var (
	// ErrMissingBuildDir is returned when no build directory is given.
	ErrMissingBuildDir = errors.New("missing build directory")

	// ErrUnitsFailed is returned when a selected source could not be parsed.
	ErrUnitsFailed = errors.New("some sources could not be processed")
)

type passKind int

const (
	passVolatilize passKind = iota
	passOptnone
)

func (k passKind) String() string {
	if k == passOptnone {
		return "optnone"
	}
	return "volatilize"
}

type passFlags struct {
	summary bool
}

func newVolatilizeCommand() *cobra.Command {
	return newPassCommand(passVolatilize, &cobra.Command{
		Use:   "volatilize <build-dir> [files...]",
		Short: "Route variable accesses in marker blocks through volatile pointers",
		Long: `Rewrite every variable reference inside a marker block of the named
sources so the access goes through a volatile-qualified pointer:

  x       becomes  (* (int  volatile *) (&x))
  buf     becomes  ((char volatile *) buf)

Only the main file of each translation unit is edited. Without file
arguments every C source in <build-dir>/compile_commands.json is processed.

Examples:
  volblock volatilize build/                  # Every source in the database
  volblock volatilize build/ src/crypto.c     # One source
  volblock volatilize build/ --dry-run        # Print diffs instead of writing`,
	})
}

func newOptnoneCommand() *cobra.Command {
	return newPassCommand(passOptnone, &cobra.Command{
		Use:   "optnone <build-dir> [files...]",
		Short: "Disable optimization of functions that contain marker blocks",
		Long: `Insert an optimization-disabling directive before every function that
contains a marker block. Functions already carrying the directive are left
alone, and a function in a shared header is annotated once per run. Each
insertion is printed as name@file:offset.

Examples:
  volblock optnone build/
  volblock optnone build/ --directive '__attribute__((optimize("O0"))) '`,
	})
}

func newPassCommand(kind passKind, cmd *cobra.Command) *cobra.Command {
	var cfg config.Config
	flags := &passFlags{}

	cmd.Args = cobra.ArbitraryArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runPass(cmd, kind, args, &cfg, flags)
	}

	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "print unified diffs instead of writing files")
	cmd.Flags().BoolVar(&cfg.Backups, "backup", false, "keep a .volblock.bak copy of each rewritten file")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of concurrent parses (0 = auto)")
	cmd.Flags().BoolVar(&cfg.All, "all", false, "process every C source in the database as well as the named files")
	cmd.Flags().StringVar(&cfg.Marker, "marker", "", "sentinel type name of marker blocks")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a detailed summary instead of a single line")
	if kind == passOptnone {
		cmd.Flags().StringVar(&cfg.Directive, "directive", "", "text inserted before each function")
	}

	return cmd
}

func runPass(cmd *cobra.Command, kind passKind, args []string, cliCfg *config.Config, flags *passFlags) error {
	if len(args) == 0 {
		return exitError(ExitUsage, ErrMissingBuildDir)
	}
	buildDir, files := args[0], args[1:]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "info")
	logger.SetLevel(logging.Default().GetLevel())
	ctx = logging.WithFields(logging.WithLogger(ctx, logger), logging.FieldBuildDir, buildDir)
	logger = logging.FromContext(ctx)

	cfg, workDir, err := loadConfig(ctx, cmd, cliCfg, logger)
	if err != nil {
		return exitError(ExitConfigError, err)
	}

	db, err := compdb.LoadFromDirectory(buildDir)
	if err != nil {
		return exitError(ExitBuildMetadata, err)
	}
	logger.Debug("loaded compilation database", logging.FieldFiles, db.Len())

	if kind == passVolatilize {
		if err := raiseStack(logger); err != nil {
			return exitError(ExitResourceLimit, err)
		}
	}

	sess := session.New()
	pass := newPass(kind, sess, cfg, logger, cmd)

	parser := treesitter.New(treesitter.Options{MaxFileSize: cfg.MaxFileSize, Logger: logger})
	result, err := runner.New(parser, pass).Run(ctx, runner.Options{
		DB:         db,
		Files:      files,
		All:        cfg.All,
		WorkingDir: workDir,
		Extensions: cfg.Extensions,
		Jobs:       cfg.Jobs,
		Out:        cmd.OutOrStdout(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("%s run failed: %w", kind, err)
	}
	logger.Debug("run complete",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldEditsTotal, result.Stats.Totals.Edits)

	var diffs bytes.Buffer
	outcomes, saveErr := runner.Save(ctx, sess, runner.SaveOptions{
		DryRun:    cfg.DryRun,
		Backups:   cfg.Backups,
		Snapshots: result.Snapshots,
		Out:       &diffs,
		Logger:    logger,
	})

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	if diffs.Len() > 0 {
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))
		fmt.Fprint(cmd.OutOrStdout(), styles.RenderDiff(diffs.String()))
	}

	errOut := cmd.ErrOrStderr()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, errOut))
	saves := pretty.TotalSaves(outcomes)
	logger.Debug("save complete", logging.FieldFilesModified, saves.Written, logging.FieldDryRun, cfg.DryRun)
	if flags.summary {
		fmt.Fprint(errOut, styles.FormatSummary(result.Stats, saves, pretty.TerminalWidth(errOut)))
	} else {
		fmt.Fprint(errOut, styles.FormatSummaryOneLine(result.Stats, saves))
	}

	if saveErr != nil {
		return exitError(ExitSaveFailure, saveErr)
	}
	if result.HasFailures() {
		return exitError(ExitBuildMetadata, ErrUnitsFailed)
	}
	return nil
}

func loadConfig(
	ctx context.Context,
	cmd *cobra.Command,
	cliCfg *config.Config,
	logger *log.Logger,
) (*config.Config, string, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", err
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldConfig, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldWorkingDir, workDir,
		logging.FieldMarker, cfg.Marker,
		logging.FieldDirective, cfg.Directive,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldBackups, cfg.Backups,
		logging.FieldJobs, cfg.Jobs,
	)
	if logger.GetLevel() <= log.DebugLevel {
		if data, err := cfg.ToYAML(); err == nil {
			logger.Debug("effective configuration\n" + strings.TrimRight(string(data), "\n"))
		}
	}
	return cfg, workDir, nil
}

func raiseStack(logger *log.Logger) error {
	if err := rlimit.RaiseStack(rlimit.DefaultStackCur, rlimit.DefaultStackMax); err != nil {
		return err
	}
	if limit, err := rlimit.Current(); err == nil {
		logger.Debug("raised stack limit",
			logging.FieldStackCur, limit.Cur,
			logging.FieldStackMax, limit.Max)
	}
	return nil
}

func newPass(kind passKind, sess *session.Session, cfg *config.Config, logger *log.Logger, cmd *cobra.Command) runner.Pass {
	if kind == passOptnone {
		return runner.Optnone(optnone.New(sess, optnone.Options{
			Marker:    cfg.Marker,
			Directive: cfg.Directive,
			Logger:    logger,
			Out:       cmd.OutOrStdout(),
		}))
	}
	return runner.Volatilize(rewrite.New(sess, rewrite.Options{
		Marker: cfg.Marker,
		Logger: logger,
	}))
}
