package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/rule"
	"github.com/macropower/tagrss/pkg/ruleset"
)

func NewRulesCmd(root *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "Manage tag rules",
	}

	cmd.AddCommand(newRulesListCmd(root), newRulesAddCmd(root))

	return cmd
}

type RulesListArgs struct {
	root   *RootArgs
	Output string
}

func newRulesListCmd(root *RootArgs) *cobra.Command {
	args := &RulesListArgs{root: root}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tag rules in evaluation order",
		Args:    cobra.NoArgs,
		RunE:    args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *RulesListArgs) Run(cmd *cobra.Command, _ []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	rs, _, err := a.root.loadRules()
	if err != nil {
		return err
	}

	if a.Output != OutputText {
		return writeData(cmd.OutOrStdout(), a.Output, rs.Document())
	}

	t := newTable(terminalWidth(cmd), "#", "Rule")
	for i, r := range rs.Rules() {
		t.Row(strconv.Itoa(i+1), r.String())
	}

	printStyled(cmd.OutOrStdout(), t)

	return nil
}

func (ra *RootArgs) loadRules() (*ruleset.RuleSet, string, error) {
	cfg, err := ra.Config()
	if err != nil {
		return nil, "", err
	}

	path := cfg.RulesPath()

	rs, err := ruleset.Load(path)
	if err != nil {
		return nil, "", err //nolint:wrapcheck // Already wrapped.
	}

	return rs, path, nil
}

type RulesAddArgs struct {
	root   *RootArgs
	DryRun bool
}

func newRulesAddCmd(root *RootArgs) *cobra.Command {
	args := &RulesAddArgs{root: root}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a tag rule",
		Long: `Append a tag rule to the rules document. The change is shown as a diff and
applies to items fetched afterwards; run "update --retag" to apply it to
stored items.`,
	}

	cmd.PersistentFlags().BoolVar(&args.DryRun, "dry-run", false, "Show the change without saving it")

	cmd.AddCommand(
		args.newContainsCmd(),
		args.newTimeCmd(),
		args.newSourceCmd(),
	)

	return cmd
}

func (a *RulesAddArgs) newContainsCmd() *cobra.Command {
	var literal, ignoreCase bool

	cmd := &cobra.Command{
		Use:   "contains TAG PATTERN",
		Short: "Tag items whose title or content matches a pattern",
		Example: `  tagrss rules add contains tech/ai '\b(AI|LLM)\b'
  tagrss rules add contains lang/rust rust --literal --ignore-case`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := rule.PatternModeRegex
			if literal {
				mode = rule.PatternModeLiteral
			}

			caseSensitive := !ignoreCase

			return a.add(cmd, rule.Spec{
				Type:          rule.TypeContains,
				Tag:           args[0],
				Pattern:       args[1],
				PatternMode:   mode,
				CaseSensitive: &caseSensitive,
			})
		},
	}

	cmd.Flags().BoolVar(&literal, "literal", false, "Match the pattern as plain text instead of a regular expression")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "Match regardless of case")

	return cmd
}

func (a *RulesAddArgs) newTimeCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "time TAG",
		Short: "Tag items published within a time window",
		Example: `  tagrss rules add time archive/2023 --start 2023-01-01 --end 2023-12-31
  tagrss rules add time recent --start 2024-06-01T00:00:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := normalizeBound(start, false)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}

			e, err := normalizeBound(end, true)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			return a.add(cmd, rule.Spec{
				Type:  rule.TypeTimeRange,
				Tag:   args[0],
				Start: s,
				End:   e,
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Inclusive lower bound (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Inclusive upper bound (RFC 3339 or YYYY-MM-DD, to the end of the day)")

	return cmd
}

// normalizeBound converts a date into an RFC 3339 bound at the start, or
// the last second, of the day. RFC 3339 input is returned unchanged.
func normalizeBound(s string, endOfDay bool) (string, error) {
	if s == "" {
		return "", nil
	}

	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return s, nil
	}

	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q is neither RFC 3339 nor YYYY-MM-DD", rule.ErrInvalidTimeRange, s)
	}

	if endOfDay {
		day = day.Add(24*time.Hour - time.Second)
	}

	return day.Format(time.RFC3339), nil
}

func (a *RulesAddArgs) newSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "source TAG SOURCE_ID",
		Short:   "Tag every item of a feed source",
		Example: `  tagrss rules add source hn 1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid argument %q: source ID must be an integer", args[1])
			}

			return a.add(cmd, rule.Spec{
				Type:     rule.TypeFromSource,
				Tag:      args[0],
				SourceID: &id,
			})
		},
	}
}

func (a *RulesAddArgs) add(cmd *cobra.Command, spec rule.Spec) error {
	r, err := spec.Build()
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	rs, path, err := a.root.loadRules()
	if err != nil {
		return err
	}

	before, err := rs.Marshal()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	rs.Add(r)

	after, err := rs.Marshal()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	diff := renderDiff(filepath.Base(path), string(before), string(after))
	printStyled(cmd.OutOrStdout(), diff)

	if a.DryRun {
		return nil
	}

	err = rs.Save(path)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	slog.Info("added rule", slog.String("rule", r.String()), slog.String("path", path))

	return nil
}
