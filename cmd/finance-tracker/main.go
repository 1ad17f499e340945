package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/finance-tracker/internal/config"
	"github.com/iwvelando/finance-tracker/internal/store"
	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// cli carries the persistent flags and everything set up from them.
type cli struct {
	configPath   string
	dbPath       string
	outputFormat string
	logLevel     string

	out    io.Writer
	conf   *config.Configuration
	logger *zap.Logger
	store  *store.Store
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "finance-tracker",
		Short:         "Mortgage, retirement and spending tracker",
		Long:          "Amortize a mortgage, project retirement accounts, and report monthly spending from a YAML config or a SQLite store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&c.dbPath, "db", "", "read records from this SQLite store instead of the configuration file")
	flags.StringVar(&c.outputFormat, "output-format", "", "type of output override: pretty, csv")
	flags.StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		c.scheduleCmd(),
		c.summaryCmd(),
		c.impactCmd(),
		c.projectCmd(),
		c.retirementCmd(),
		c.spendingCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.serveCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger. The configuration
// file may be absent when records come from the store.
func (c *cli) setup(cmd *cobra.Command) error {
	optional := (c.dbPath != "" && cmd.Name() != "import") || cmd.Name() == "serve"
	conf, err := loadConfiguration(c.configPath, optional)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", c.configPath, err)
	}
	c.conf = conf

	logger, err := initializeLogger(conf.Logging, c.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger

	if c.outputFormat == "" {
		c.outputFormat = conf.Output.Format
	}
	if c.outputFormat == "" {
		c.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(c.outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		c.logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.setup"),
		)
	}
	return nil
}

// run wraps a command so that the store and logger are released however it
// exits.
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer c.close()
		return fn(cmd, args)
	}
}

func (c *cli) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Warn("failed to close store",
				zap.String("op", "main.close"),
				zap.Error(err),
			)
		}
		c.store = nil
	}
	_ = c.logger.Sync()
}

func loadConfiguration(path string, optional bool) (*config.Configuration, error) {
	if optional {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.LoadEnvironment()
		}
	}
	return config.LoadConfiguration(path)
}

// storePath is the --db flag, else the configured store path.
func (c *cli) storePath() string {
	if c.dbPath != "" {
		return c.dbPath
	}
	if c.conf.Store.Path != "" {
		return c.conf.Store.Path
	}
	return constants.DefaultStoreFile
}

func (c *cli) openStore() (*store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	s, err := store.Open(c.storePath(), c.logger)
	if err != nil {
		return nil, err
	}
	c.store = s
	return s, nil
}

// loadState builds the tracker the commands read from: the store when --db
// is set, else an in-memory tracker over the configuration file.
func (c *cli) loadState(ctx context.Context) (*tracker.Tracker, error) {
	if c.dbPath != "" {
		s, err := c.openStore()
		if err != nil {
			return nil, err
		}
		state := tracker.New(s, c.logger)
		if err := state.Load(ctx); err != nil {
			return nil, err
		}
		return state, nil
	}

	snapshot, err := c.conf.ToSnapshot()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	state := tracker.New(nil, c.logger)
	if err := state.ReplaceSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return state, nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
