package cli

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/api/v1beta1/configs"
	"github.com/macropower/tagrss/api/v1beta1/folders"
	"github.com/macropower/tagrss/api/v1beta1/tagrules"
	"github.com/macropower/tagrss/pkg/render"
)

var (
	ErrUnknownKind = errors.New("unknown document kind")

	schemas = map[string]func() []byte{
		"config":  configs.Schema,
		"rules":   tagrules.Schema,
		"folders": folders.Schema,
	}
)

type SchemaArgs struct {
	Style       string
	LineNumbers bool
	Plain       bool
}

func NewSchemaCmd() *cobra.Command {
	args := &SchemaArgs{}
	kinds := slices.Sorted(maps.Keys(schemas))

	cmd := &cobra.Command{
		Use:   "schema KIND",
		Short: "Print the JSON schema of a document kind",
		Long:  fmt.Sprintf("Print the JSON schema of a document kind, one of: %v.", kinds),
		Example: `  # Page through the folder schema with line numbers.
  tagrss schema folders --line-numbers | less -R

  # Write the raw configuration schema to a file.
  tagrss schema config --plain > config.schema.json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE:      args.Run,
	}

	cmd.Flags().BoolVarP(&args.LineNumbers, "line-numbers", "n", false, "Prefix each line with its number")
	cmd.Flags().BoolVar(&args.Plain, "plain", false, "Disable syntax highlighting")
	cmd.Flags().StringVar(&args.Style, "style", render.DefaultStyle, "Syntax highlighting style")

	err := cmd.RegisterFlagCompletionFunc("style",
		cobra.FixedCompletions(styles.Names(), cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	return cmd
}

func (a *SchemaArgs) Run(cmd *cobra.Command, args []string) error {
	schema, ok := schemas[args[0]]
	if !ok {
		return fmt.Errorf("%w %q, expected one of: %v", ErrUnknownKind, args[0], slices.Sorted(maps.Keys(schemas)))
	}

	opts := []render.HighlighterOpt{
		render.WithStyle(a.Style),
		render.WithLineNumbers(a.LineNumbers),
	}

	if a.Plain {
		opts = append(opts, render.WithFormatter("noop"))
	}

	// Only wrap for a terminal; redirected output stays valid JSON.
	if f, ok := cmd.OutOrStdout().(*os.File); ok && isTerminal(f) {
		opts = append(opts, render.WithWidth(terminalWidth(cmd)))
	}

	out, err := render.NewHighlighter("json", opts...).Render(string(schema()))
	if err != nil {
		return fmt.Errorf("render schema: %w", err)
	}

	mustN(fmt.Fprintln(cmd.OutOrStdout(), out))

	return nil
}
