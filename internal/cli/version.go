package cli

import (
	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/pkg/version"
)

type VersionArgs struct {
	Output string
}

func NewVersionCmd() *cobra.Command {
	args := &VersionArgs{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE:  args.Run,
	}

	addOutputFlag(cmd, &args.Output)

	return cmd
}

func (a *VersionArgs) Run(cmd *cobra.Command, _ []string) error {
	err := checkOutput(a.Output)
	if err != nil {
		return err
	}

	info := version.Get()
	w := cmd.OutOrStdout()

	if a.Output != OutputText {
		return writeData(w, a.Output, info)
	}

	printStyled(w, titleStyle.Render(cmdName)+" "+info.String())

	if info.BuildDate != "" {
		built := info.BuildDate
		if info.BuildUser != "" {
			built += " by " + info.BuildUser
		}

		printStyled(w, subtleStyle.Render("built:  ")+built)
	}

	if info.Branch != "" {
		printStyled(w, subtleStyle.Render("branch: ")+info.Branch)
	}

	return nil
}
