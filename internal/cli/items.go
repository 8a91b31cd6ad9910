package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/render"
	"github.com/macropower/tagrss/pkg/store"
)

const defaultItemsLimit = 50

func NewItemsCmd(root *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Browse stored items",
	}

	cmd.AddCommand(newItemsListCmd(root), newItemsShowCmd(root))

	return cmd
}

type ItemsListArgs struct {
	root     *RootArgs
	Folder   string
	Tag      string
	Since    string
	Search   string
	Output   string
	SourceID int64
	Limit    int
}

func newItemsListCmd(root *RootArgs) *cobra.Command {
	args := &ItemsListArgs{root: root}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items, newest first",
		Example: `  # Items in the "AI News" folder.
  tagrss items list --folder "AI News"

  # Items tagged lang/go since yesterday whose title resembles "iterators".
  tagrss items list --tag lang/go --since yesterday --search iterators`,
		Args: cobra.NoArgs,
		RunE: args.Run,
	}

	cmd.Flags().StringVarP(&args.Folder, "folder", "f", "", "Only items in this folder")
	cmd.Flags().StringVarP(&args.Tag, "tag", "t", "", "Only items carrying this exact tag")
	cmd.Flags().Int64VarP(&args.SourceID, "source", "s", 0, "Only items of this source ID")
	cmd.Flags().StringVar(&args.Since, "since", "", "Only items published on or after this day (YYYY-MM-DD, today or yesterday)")
	cmd.Flags().StringVarP(&args.Search, "search", "q", "", "Fuzzy match item titles")
	cmd.Flags().IntVarP(&args.Limit, "limit", "n", defaultItemsLimit, "Maximum number of items; 0 for no limit")
	addOutputFlag(cmd, &args.Output)

	err := cmd.RegisterFlagCompletionFunc("folder", root.completeFolders)
	if err != nil {
		panic(err)
	}

	return cmd
}

func (a *ItemsListArgs) Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	q := store.ItemQuery{Tag: a.Tag, SourceID: a.SourceID}

	if a.Since != "" {
		w, err := folder.ParseTimeRange(a.Since+folder.TimeRangeSeparator, time.Now())
		if err != nil {
			return fmt.Errorf("--since: %w", err)
		}

		q.Since = w.Start
	}

	// Folder and search filters run after the query, so the limit is
	// applied last.
	if a.Folder == "" && a.Search == "" {
		q.Limit = a.Limit
	}

	s, err := a.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	items, err := s.ListItems(ctx, q)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	if a.Folder != "" {
		items, err = a.filterFolder(items)
		if err != nil {
			return err
		}
	}

	if a.Search != "" {
		items = searchItems(a.Search, items)
	}

	if a.Limit > 0 && len(items) > a.Limit {
		items = items[:a.Limit]
	}

	if a.Output != OutputText {
		if items == nil {
			items = []*item.Item{}
		}

		return writeData(cmd.OutOrStdout(), a.Output, items)
	}

	width := terminalWidth(cmd)

	t := newTable(width, "ID", "Published", "Title", "Tags")
	for _, it := range items {
		t.Row(strconv.FormatInt(it.ID, 10), render.Ago(it.PublishedAt),
			render.Truncate(it.Title, width/2), renderTags(it.Tags.Names()))
	}

	printStyled(cmd.OutOrStdout(), t)

	return nil
}

func (a *ItemsListArgs) filterFolder(items []*item.Item) ([]*item.Item, error) {
	c, err := a.root.loadClassifier()
	if err != nil {
		return nil, err
	}

	out, err := c.Filter(a.Folder, items)
	if err != nil {
		return nil, withFolderSuggestions(err, a.Folder, c)
	}

	return out, nil
}

// withFolderSuggestions appends the folder names closest to name to err.
func withFolderSuggestions(err error, name string, c *classifier.Classifier) error {
	var names []string
	for _, f := range c.Catalog().Folders() {
		names = append(names, f.Name)
	}

	suggestions := render.Suggest(name, names, 3)
	if len(suggestions) == 0 {
		return err
	}

	return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(quoteAll(suggestions), " or "))
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}

	return out
}

// searchItems returns the items whose titles fuzzily match pattern, best
// match first.
func searchItems(pattern string, items []*item.Item) []*item.Item {
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}

	idx := render.FuzzyFind(pattern, titles)

	out := make([]*item.Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, items[i])
	}

	return out
}

func (ra *RootArgs) completeFolders(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	c, err := ra.loadClassifier()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, f := range c.Catalog().Folders() {
		names = append(names, f.Name)
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}

type ItemsShowArgs struct {
	root   *RootArgs
	Output string
	Copy   bool
}

func newItemsShowCmd(root *RootArgs) *cobra.Command {
	args := &ItemsShowArgs{root: root}

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one item with its tags and folders",
		Args:  cobra.ExactArgs(1),
		RunE:  args.Run,
	}

	cmd.Flags().BoolVar(&args.Copy, "copy", false, "Copy the item's link to the clipboard")
	addOutputFlag(cmd, &args.Output)

	return cmd
}

// ItemView is an item with the folders it belongs to.
type ItemView struct {
	*item.Item `json:",inline"`

	Folders []string `json:"folders"`
}

func (a *ItemsShowArgs) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid argument %q: item ID must be an integer", args[0])
	}

	c, err := a.root.loadClassifier()
	if err != nil {
		return err
	}

	s, err := a.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	it, err := s.GetItem(ctx, id)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	folders := c.ClassifyIntoFolders(it)
	if folders == nil {
		folders = []string{}
	}

	if a.Copy && it.URL != "" {
		err = clipboard.WriteAll(it.URL)
		if err != nil {
			slog.Warn("copy link", slog.Any("err", err))
		}
	}

	if a.Output != OutputText {
		return writeData(cmd.OutOrStdout(), a.Output, ItemView{Item: it, Folders: folders})
	}

	w := cmd.OutOrStdout()
	width := terminalWidth(cmd)

	printStyled(w, titleStyle.Render(render.Wrap(it.Title, width)))

	if it.URL != "" {
		printStyled(w, subtleStyle.Render(it.URL))
	}

	published := "undated"
	if it.PublishedAt != nil {
		published = it.PublishedAt.Format(time.RFC1123) + " (" + render.Ago(it.PublishedAt) + ")"
	}

	printStyled(w, subtleStyle.Render("Published: ")+published)
	printStyled(w, subtleStyle.Render("Source:    ")+strconv.FormatInt(it.SourceID, 10))
	printStyled(w, subtleStyle.Render("Tags:      ")+renderTags(it.Tags.Names()))
	printStyled(w, subtleStyle.Render("Folders:   ")+renderFolders(folders))

	if content := it.ContentString(); content != "" {
		printStyled(w)
		printStyled(w, render.WordWrap(content, width, 2))
	}

	return nil
}
