package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/tagrss/pkg/log"
	"github.com/macropower/tagrss/pkg/mcp"
)

const recentLogCapacity = 500

type ServeMCPArgs struct {
	root    *RootArgs
	Address string
	Watch   bool
}

func NewServeMCPCmd(root *RootArgs) *cobra.Command {
	args := &ServeMCPArgs{root: root}

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve folders and classification over the Model Context Protocol",
		Long: `Start an MCP server exposing the folder catalog, item classification and the
stored items. Without --address the server speaks over stdio.`,
		Args: cobra.NoArgs,
		RunE: args.Run,
	}

	cmd.Flags().StringVar(&args.Address, "address", "", "Serve streamable HTTP on this address instead of stdio")
	cmd.Flags().BoolVarP(&args.Watch, "watch", "w", false, "Reload folders when the catalog file changes")

	return cmd
}

func (a *ServeMCPArgs) Run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	recorder := log.NewRecorder(recentLogCapacity, slog.LevelDebug)
	slog.SetDefault(slog.New(log.Tee(a.root.Handler(), recorder)))

	c, err := a.root.loadClassifier()
	if err != nil {
		return err
	}

	s, err := a.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // Best effort.

	server := mcp.NewServer(a.Address, c, mcp.WithItems(s), mcp.WithRecorder(recorder))

	g, ctx := errgroup.WithContext(ctx)

	if a.Watch {
		g.Go(func() error {
			return c.Catalog().Watch(ctx, func(err error) {
				if err == nil {
					slog.Info("reloaded folders", slog.Int("folders", c.Catalog().Len()))
				}
			})
		})
	}

	g.Go(func() error {
		defer cancel()

		err := server.Serve(ctx)
		if err != nil {
			return fmt.Errorf("serve mcp: %w", err)
		}

		return nil
	})

	return g.Wait() //nolint:wrapcheck // Already wrapped.
}
