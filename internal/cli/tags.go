package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/store"
)

type TagsArgs struct {
	root   *RootArgs
	Output string
}

func NewTagsCmd(root *RootArgs) *cobra.Command {
	args := &TagsArgs{root: root}

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List every tag with its item count",
		Args:  cobra.NoArgs,
		RunE:  args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *TagsArgs) Run(cmd *cobra.Command, _ []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	s, err := a.root.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	tags, err := s.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	if a.Output != OutputText {
		if tags == nil {
			tags = []store.TagCount{}
		}

		return writeData(cmd.OutOrStdout(), a.Output, tags)
	}

	t := newTable(terminalWidth(cmd), "Tag", "Items")
	for _, tc := range tags {
		t.Row(tagStyle.Render(tc.Name), humanize.Comma(int64(tc.Count)))
	}

	printStyled(cmd.OutOrStdout(), t)

	return nil
}
