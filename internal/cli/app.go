package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/tagrss/api/v1beta1/configs"
	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/config"
	"github.com/macropower/tagrss/pkg/feed"
	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/store"
	"github.com/macropower/tagrss/pkg/yaml"
)

const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"

	defaultWidth = 80
)

var (
	ErrUnknownOutput = errors.New("unknown output format")

	AllOutputs = []string{OutputText, OutputYAML, OutputJSON}
)

// Config loads the configuration file once. A missing file yields the
// defaults.
func (ra *RootArgs) Config() (*configs.Config, error) {
	if ra.cfgLoaded {
		return ra.cfg, ra.cfgErr
	}

	ra.cfg, ra.cfgErr = loadConfig(ra.ConfigPath)
	ra.cfgLoaded = true

	return ra.cfg, ra.cfgErr
}

func loadConfig(path string) (*configs.Config, error) {
	l, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator,
		config.WithKinds(configs.ValidKinds...),
		config.WithColor(isTerminal(os.Stderr)),
	)
	if errors.Is(err, config.ErrSourceNotFound) {
		slog.Debug("config not found, using defaults", slog.String("path", path))

		return configs.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	err = l.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", l.ParseError(err))
	}

	return cfg, nil
}

func (ra *RootArgs) openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := ra.Config()
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return s, nil
}

func (ra *RootArgs) loadClassifier(opts ...folder.Option) (*classifier.Classifier, error) {
	cfg, err := ra.Config()
	if err != nil {
		return nil, err
	}

	opts = append([]folder.Option{
		folder.WithLeafOnlyNot(cfg.LeafOnlyNot()),
		folder.WithLoaderOptions(config.WithColor(isTerminal(os.Stderr))),
	}, opts...)

	c, err := classifier.Load(cfg.RulesPath(), cfg.FoldersPath(), opts...)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	for _, d := range c.Catalog().Diagnostics() {
		slog.Warn("skipped folder", slog.String("diagnostic", d.String()))
	}

	return c, nil
}

func (ra *RootArgs) newFetcher() (*feed.Fetcher, error) {
	cfg, err := ra.Config()
	if err != nil {
		return nil, err
	}

	return feed.NewFetcher(
		feed.WithTimeout(cfg.Timeout()),
		feed.WithUserAgent(cfg.Update.UserAgent),
	), nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int.
}

// terminalWidth returns the width of the command's output terminal, or
// defaultWidth when output is not a terminal.
func terminalWidth(cmd *cobra.Command) int {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !isTerminal(f) {
		return defaultWidth
	}

	w, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int.
	if err != nil || w <= 0 {
		return defaultWidth
	}

	return w
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", OutputText, fmt.Sprintf("Output format, one of: %s", AllOutputs))

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(AllOutputs, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func checkOutput(output string) error {
	if !slices.Contains(AllOutputs, output) {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}

	return nil
}

// writeData encodes v in a structured output format.
func writeData(w io.Writer, output string, v any) error {
	switch output {
	case OutputYAML:
		enc := yaml.NewEncoder(w)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}

	return nil
}
