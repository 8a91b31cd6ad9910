package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/api/v1beta1/configs"
	"github.com/macropower/tagrss/pkg/log"
)

const (
	cmdName = "tagrss"
	cmdDesc = `Rule-based tagging and virtual folders for RSS and Atom feeds.`

	cmdExamples = `  # Write the default configuration, tag rules and folders.
  tagrss init

  # Subscribe to a feed and fetch new items.
  tagrss sources add https://go.dev/blog/feed.atom --title "The Go Blog"
  tagrss update

  # Tag every item mentioning Rust, then browse a folder.
  tagrss rules add contains lang/rust rust --literal --ignore-case
  tagrss items list --folder Rust

  # Serve the catalog to MCP clients over stdio.
  tagrss serve-mcp --watch`
)

type RootArgs struct {
	LogLevel     string
	LogFormat    string
	LogFile      string
	ConfigPath   string
	OTLPEndpoint string

	lookupEnv EnvLookup

	// Populated by the persistent pre-run hook.
	logHandler slog.Handler
	cfg        *configs.Config
	cfgErr     error
	cfgLoaded  bool
	closers    []func(context.Context) error
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.LogFile, "log-file", "", "Also write JSON logs to this file (overrides log.file)")
	cmd.PersistentFlags().
		StringVarP(&ra.ConfigPath, "config", "c", configs.GetPath(), "Path to the configuration file")
	cmd.PersistentFlags().
		StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP gRPC endpoint")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(err)
	}
}

func NewRootCmd(opts ...RootOpt) *cobra.Command {
	args := NewRootArgs()
	for _, opt := range opts {
		opt(args)
	}

	cmd := &cobra.Command{
		Use:                cmdName,
		Short:              cmdDesc,
		Example:            cmdExamples,
		SilenceUsage:       true,
		PersistentPreRunE:  args.setup,
		PersistentPostRunE: args.teardown,
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewInitCmd(args),
		NewSourcesCmd(args),
		NewUpdateCmd(args),
		NewItemsCmd(args),
		NewTagsCmd(args),
		NewRulesCmd(args),
		NewFoldersCmd(args),
		NewClassifyCmd(args),
		NewSchemaCmd(),
		NewServeMCPCmd(args),
		NewVersionCmd(),
	)

	annotateEnv(cmd)

	return cmd
}

func (ra *RootArgs) setup(cmd *cobra.Command, _ []string) error {
	err := applyEnv(cmd, ra.lookupEnv)
	if err != nil {
		return err
	}

	err = ra.setupLogging(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	shutdown, err := setupTracing(cmd.Context(), ra.OTLPEndpoint)
	if err != nil {
		return err
	}

	ra.closers = append(ra.closers, shutdown)

	return nil
}

func (ra *RootArgs) teardown(cmd *cobra.Command, _ []string) error {
	ctx := context.WithoutCancel(cmd.Context())

	var errs []error

	// Close in reverse order, so that the log file outlives the tracer.
	for i := len(ra.closers) - 1; i >= 0; i-- {
		errs = append(errs, ra.closers[i](ctx))
	}

	ra.closers = nil

	return errors.Join(errs...)
}

func (ra *RootArgs) setupLogging(stderr io.Writer) error {
	opts := log.Options{Level: ra.LogLevel, Format: ra.LogFormat, File: ra.LogFile}

	// Configuration errors are reported by the command that needs the
	// configuration, so that e.g. "init --force" can repair it.
	cfg, cfgErr := ra.Config()
	if cfgErr == nil {
		if opts.File == "" {
			opts.File = cfg.Log.File
		}

		opts.FileLevel = cfg.Log.Level
	}

	logger, err := log.New(stderr, opts)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	ra.closers = append(ra.closers, func(context.Context) error {
		return logger.Close()
	})

	ra.logHandler = logger.Handler()
	slog.SetDefault(slog.New(ra.logHandler))

	return nil
}

// Handler returns the configured log handler, or the default logger's
// handler before setup has run.
func (ra *RootArgs) Handler() slog.Handler {
	if ra.logHandler != nil {
		return ra.logHandler
	}

	return slog.Default().Handler()
}
