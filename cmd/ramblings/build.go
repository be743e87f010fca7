package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/views"
)

func newBuildCmd(root *rootFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site to static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			app, err := ramblings.New(cfg, views.Funcs(),
				ramblings.WithRoot(filepath.Dir(root.configPath)),
				ramblings.WithLogger(root.log),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := app.Build(ctx, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %d posts, %d tags, %d assets into %s in %s\n",
				res.Posts, res.Tags, res.Assets, outDir, res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "public", "Output directory")
	return cmd
}
