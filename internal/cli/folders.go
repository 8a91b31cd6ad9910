package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/store"
)

var ErrInvalidFolders = errors.New("invalid folder definitions")

func NewFoldersCmd(root *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folders",
		Aliases: []string{"folder"},
		Short:   "Inspect virtual folders",
	}

	cmd.AddCommand(newFoldersListCmd(root), newFoldersShowCmd(root), newFoldersCheckCmd(root))

	return cmd
}

// FolderView is the structured form of a folder.
type FolderView struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// FolderList is the structured output of "folders list".
type FolderList struct {
	Folders []FolderView `json:"folders"`
	Skipped []string     `json:"skipped"`
}

func newFolderList(c *folder.Catalog) FolderList {
	out := FolderList{
		Folders: []FolderView{},
		Skipped: []string{},
	}

	for _, f := range c.Folders() {
		out.Folders = append(out.Folders, FolderView{Name: f.Name, Expression: f.Root.String()})
	}

	for _, d := range c.Diagnostics() {
		out.Skipped = append(out.Skipped, d.String())
	}

	return out
}

type FoldersListArgs struct {
	root   *RootArgs
	Output string
}

func newFoldersListCmd(root *RootArgs) *cobra.Command {
	args := &FoldersListArgs{root: root}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List folders in display order",
		Args:    cobra.NoArgs,
		RunE:    args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *FoldersListArgs) Run(cmd *cobra.Command, _ []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	c, err := a.root.loadClassifier()
	if err != nil {
		return err
	}

	list := newFolderList(c.Catalog())

	if a.Output != OutputText {
		return writeData(cmd.OutOrStdout(), a.Output, list)
	}

	printFolderList(cmd, list)

	return nil
}

func printFolderList(cmd *cobra.Command, list FolderList) {
	w := cmd.OutOrStdout()

	t := newTable(terminalWidth(cmd), "Folder", "Expression")
	for _, f := range list.Folders {
		t.Row(folderStyle.Render(f.Name), f.Expression)
	}

	printStyled(w, t)

	for _, s := range list.Skipped {
		printStyled(w, errorStyle.Render("skipped "+s))
	}
}

type FoldersShowArgs struct {
	root   *RootArgs
	Output string
}

func newFoldersShowCmd(root *RootArgs) *cobra.Command {
	args := &FoldersShowArgs{root: root}

	cmd := &cobra.Command{
		Use:               "show NAME",
		Short:             "Show a folder's expression and item count",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: root.completeFolders,
		RunE:              args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

// FolderDetail is the structured output of "folders show".
type FolderDetail struct {
	FolderView `json:",inline"`

	Items int `json:"items"`
}

func (a *FoldersShowArgs) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	c, err := a.root.loadClassifier()
	if err != nil {
		return err
	}

	f, ok := c.Catalog().Folder(args[0])
	if !ok {
		return withFolderSuggestions(fmt.Errorf("%w: %q", classifier.ErrUnknownFolder, args[0]), args[0], c)
	}

	s, err := a.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	items, err := s.ListItems(ctx, store.ItemQuery{})
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	count := 0

	for _, it := range items {
		if f.Contains(it) {
			count++
		}
	}

	detail := FolderDetail{
		FolderView: FolderView{Name: f.Name, Expression: f.Root.String()},
		Items:      count,
	}

	if a.Output != OutputText {
		return writeData(cmd.OutOrStdout(), a.Output, detail)
	}

	w := cmd.OutOrStdout()
	printStyled(w, folderStyle.Bold(true).Render(detail.Name))
	printStyled(w, subtleStyle.Render("Expression: ")+detail.Expression)
	printStyled(w, subtleStyle.Render("Items:      ")+strconv.Itoa(detail.Items))

	return nil
}

type FoldersCheckArgs struct {
	root   *RootArgs
	Output string
}

func newFoldersCheckCmd(root *RootArgs) *cobra.Command {
	args := &FoldersCheckArgs{root: root}

	cmd := &cobra.Command{
		Use:   "check [FILE]",
		Short: "Validate a folder catalog",
		Long: `Validate a folder catalog, by default the configured one. Every folder that
would be skipped is reported, and the command fails if there are any.`,
		Args: cobra.MaximumNArgs(1),
		RunE: args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *FoldersCheckArgs) Run(cmd *cobra.Command, args []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	cfg, err := a.root.Config()
	if err != nil {
		return err
	}

	path := cfg.FoldersPath()
	if len(args) == 1 {
		path = args[0]
	}

	c, err := folder.LoadCatalog(path, folder.WithLeafOnlyNot(cfg.LeafOnlyNot()))
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	list := newFolderList(c)

	if a.Output != OutputText {
		err = writeData(cmd.OutOrStdout(), a.Output, list)
		if err != nil {
			return err
		}
	} else {
		printFolderList(cmd, list)
	}

	if n := len(list.Skipped); n > 0 {
		return fmt.Errorf("%w: %s: %d skipped", ErrInvalidFolders, path, n)
	}

	return nil
}
