package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/tagrss/api/v1beta1/configs"
	"github.com/macropower/tagrss/api/v1beta1/folders"
	"github.com/macropower/tagrss/api/v1beta1/tagrules"
)

type InitArgs struct {
	root  *RootArgs
	Force bool
}

func NewInitCmd(root *RootArgs) *cobra.Command {
	args := &InitArgs{root: root}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration, tag rules and folders",
		Long: `Write the default configuration, tag rules and folder catalog, and create
the item database. Existing files are kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: args.Run,
	}

	cmd.Flags().BoolVarP(&args.Force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func (a *InitArgs) Run(cmd *cobra.Command, _ []string) error {
	err := configs.WriteDefault(a.root.ConfigPath, a.Force)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	// Re-read, so that paths set in an existing config are honored.
	a.root.cfgLoaded = false

	cfg, err := a.root.Config()
	if err != nil {
		return err
	}

	err = tagrules.WriteDefault(cfg.RulesPath(), a.Force)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	err = folders.WriteDefault(cfg.FoldersPath(), a.Force)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	s, err := a.root.openStore(cmd.Context())
	if err != nil {
		return err
	}

	err = s.Close()
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	slog.Info("initialized",
		slog.String("config", a.root.ConfigPath),
		slog.String("rules", cfg.RulesPath()),
		slog.String("folders", cfg.FoldersPath()),
		slog.String("database", cfg.DatabasePath()),
	)

	return nil
}
