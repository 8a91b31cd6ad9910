package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/update"
)

type UpdateArgs struct {
	root   *RootArgs
	Output string
	Retag  bool
}

func NewUpdateCmd(root *RootArgs) *cobra.Command {
	args := &UpdateArgs{root: root}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch every feed and tag new items",
		Long: `Fetch every subscribed feed, tag new items with the current rules and store
them. Feeds declared in the configuration are subscribed first. A failing feed
is reported and does not stop the others.`,
		Args: cobra.NoArgs,
		RunE: args.Run,
	}

	cmd.Flags().BoolVar(&args.Retag, "retag", false, "Also re-apply the rules to every stored item")
	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *UpdateArgs) Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	cfg, err := a.root.Config()
	if err != nil {
		return err
	}

	c, err := a.root.loadClassifier()
	if err != nil {
		return err
	}

	fetcher, err := a.root.newFetcher()
	if err != nil {
		return err
	}

	s, err := a.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	for _, f := range cfg.Feeds {
		_, err := s.EnsureSource(ctx, f.URL, f.Title)
		if err != nil {
			return fmt.Errorf("register feed %q: %w", f.URL, err)
		}
	}

	runner := update.NewRunner(s, fetcher, c.Rules(), update.WithConcurrency(cfg.Concurrency()))

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	retagged := 0

	if a.Retag {
		retagged, err = runner.Retag(ctx)
		if err != nil {
			return fmt.Errorf("retag: %w", err)
		}

		slog.Info("retagged items", slog.Int("tags", retagged))
	}

	if a.Output != OutputText {
		return writeData(cmd.OutOrStdout(), a.Output, summary)
	}

	w := cmd.OutOrStdout()

	t := newTable(terminalWidth(cmd), "Source", "Fetched", "New", "Skipped", "Tags", "Error")
	for _, r := range summary.Results {
		errText := ""
		if r.Error != "" {
			errText = errorStyle.Render(r.Error)
		}

		t.Row(r.Source.Name(),
			strconv.Itoa(r.Fetched), strconv.Itoa(r.Added), strconv.Itoa(r.Skipped), strconv.Itoa(r.TagsAdded),
			errText,
		)
	}

	printStyled(w, t)
	printStyled(w, subtleStyle.Render(fmt.Sprintf("%s new %s from %d %s (%d failed) in %s.",
		humanize.Comma(int64(summary.Added)), plural(summary.Added, "item", "items"),
		summary.Sources, plural(summary.Sources, "source", "sources"),
		summary.Failed, summary.Duration.Round(time.Millisecond),
	)))

	if a.Retag {
		printStyled(w, subtleStyle.Render(fmt.Sprintf("Retagging added %d %s.", retagged, plural(retagged, "tag", "tags"))))
	}

	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
