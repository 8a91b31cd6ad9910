package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/api"
	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/yaml"
)

type ClassifyArgs struct {
	root   *RootArgs
	Output string
}

func NewClassifyCmd(root *RootArgs) *cobra.Command {
	args := &ClassifyArgs{root: root}

	cmd := &cobra.Command{
		Use:   "classify [FILE]",
		Short: "Tag an item and place it into folders without storing it",
		Long: `Read an item as YAML or JSON from FILE, or from standard input when FILE is
omitted or "-", apply the tag rules to it and report its tags and folders.`,
		Example: `  echo '{title: "Rust 2.0 released", sourceID: 1}' | tagrss classify`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *ClassifyArgs) Run(cmd *cobra.Command, args []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	var data []byte

	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = api.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read item: %w", err)
		}
	}

	it := &item.Item{}

	err = yaml.Unmarshal(data, it)
	if err != nil {
		return fmt.Errorf("decode item: %w", err)
	}

	c, err := a.root.loadClassifier()
	if err != nil {
		return err
	}

	res := c.Classify(it)

	if a.Output != OutputText {
		return writeData(cmd.OutOrStdout(), a.Output, res)
	}

	printClassification(cmd.OutOrStdout(), res)

	return nil
}

func printClassification(w io.Writer, res classifier.Result) {
	printStyled(w, subtleStyle.Render("Tags:    ")+renderTags(res.Tags))
	printStyled(w, subtleStyle.Render("Folders: ")+renderFolders(res.Folders))
	printStyled(w, subtleStyle.Render(fmt.Sprintf("%d %s added by rules.", res.Added, plural(res.Added, "tag", "tags"))))
}
