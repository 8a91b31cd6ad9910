package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/feed"
	"github.com/macropower/tagrss/pkg/render"
)

var ErrInvalidURL = errors.New("invalid feed url")

func NewSourcesCmd(root *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sources",
		Aliases: []string{"source", "feeds"},
		Short:   "Manage subscribed feeds",
	}

	cmd.AddCommand(newSourcesAddCmd(root), newSourcesListCmd(root))

	return cmd
}

type SourcesAddArgs struct {
	root  *RootArgs
	Title string
}

func newSourcesAddCmd(root *RootArgs) *cobra.Command {
	args := &SourcesAddArgs{root: root}

	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Subscribe to a feed",
		Long:  `Subscribe to an RSS, Atom or JSON feed. Local files may be given as file:// URLs.`,
		Args:  cobra.ExactArgs(1),
		RunE:  args.Run,
	}

	cmd.Flags().StringVarP(&args.Title, "title", "t", "", "Display title; defaults to the feed's own title")

	return cmd
}

func (a *SourcesAddArgs) Run(cmd *cobra.Command, args []string) error {
	err := validateFeedURL(args[0])
	if err != nil {
		return err
	}

	s, err := a.root.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	src, err := s.AddSource(cmd.Context(), args[0], a.Title)
	if err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	slog.Info("added source", slog.Int64("id", src.ID), slog.String("url", src.URL))
	mustN(fmt.Fprintln(cmd.OutOrStdout(), src.ID))

	return nil
}

func validateFeedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
		}
	case "file":
		if u.Path == "" {
			return fmt.Errorf("%w: %q has no path", ErrInvalidURL, raw)
		}
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	return nil
}

type SourcesListArgs struct {
	root   *RootArgs
	Output string
}

func newSourcesListCmd(root *RootArgs) *cobra.Command {
	args := &SourcesListArgs{root: root}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscribed feeds",
		Args:    cobra.NoArgs,
		RunE:    args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *SourcesListArgs) Run(cmd *cobra.Command, _ []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	s, err := a.root.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	sources, err := s.ListSources(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if a.Output != OutputText {
		if sources == nil {
			sources = []feed.Source{}
		}

		return writeData(cmd.OutOrStdout(), a.Output, sources)
	}

	width := terminalWidth(cmd)

	t := newTable(width, "ID", "Title", "URL", "Fetched")
	for _, src := range sources {
		t.Row(strconv.FormatInt(src.ID, 10), src.Title, render.Truncate(src.URL, width/2), render.Ago(src.LastFetched))
	}

	printStyled(cmd.OutOrStdout(), t)

	return nil
}
