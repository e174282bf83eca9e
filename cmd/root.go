package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/later/internal/config"
)

const (
	defaultTimeout = 5 * time.Minute

	// skipSetup marks commands that run without reading settings.
	skipSetup = "later/skip-setup"

	exitOK          = 0
	exitIssues      = 1
	exitConfigError = 2
)

// errIssuesFound makes lint exit non-zero without printing an error.
var errIssuesFound = errors.New("issues found")

// app holds the persistent flags and what PersistentPreRunE derives from them.
type app struct {
	cfgFile  string
	rulesDir string
	logLevel string
	timeout  time.Duration

	settings *config.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:              "later [paths...]",
		Short:            "later - lint YAML files against versioned standards",
		Args:             cobra.ArbitraryArgs,
		TraverseChildren: true, // Prioritize subcommands
		SilenceUsage:     true,
		SilenceErrors:    true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", config.DefaultPath, "Settings file")
	pf.StringVarP(&a.rulesDir, "rulesdir", "r", "", "Directory holding the standards manifest")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.DurationVar(&a.timeout, "timeout", defaultTimeout, "Set a timeout for the linter")

	lint := lintCmd(a)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		// display help when only 'later' is entered
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: later [path1 path2 ...] => behaves like the lint subcommand
		lint.SetContext(cmd.Context())
		return lint.RunE(lint, args)
	}

	root.AddCommand(lint)
	root.AddCommand(fixCmd(a))
	root.AddCommand(initCmd(a))
	root.AddCommand(cfgCmd(a))
	root.AddCommand(standardsCmd(a))
	root.AddCommand(watchCmd(a))
	root.AddCommand(versionCmd())
	return root
}

// Execute runs the CLI on os.Args and returns the process exit code.
func Execute() int {
	return run(newRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil && !errors.Is(err, errIssuesFound) {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var cerr *config.ConfigurationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cerr):
		return exitConfigError
	default:
		return exitIssues
	}
}

// setup loads .env, the settings file and the environment, then applies
// the persistent flags on top and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(""); err != nil {
		return &config.ConfigurationError{Path: ".env", Err: err}
	}

	// the default settings file is optional, an explicit one is not
	path := a.cfgFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	s, err := config.Read(path)
	if err != nil {
		return err
	}
	if a.rulesDir != "" {
		s.RulesDir = a.rulesDir
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}

	logger, err := newLogger(s.LogLevel)
	if err != nil {
		return &config.ConfigurationError{Path: s.Path, Err: err}
	}

	a.settings = s
	a.logger = logger
	logger.Debug("Settings loaded",
		zap.String("path", s.Path),
		zap.String("rulesdir", s.RulesDir),
		zap.String("standards", s.Standards),
		zap.String("lines", s.Ranges.String()))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
