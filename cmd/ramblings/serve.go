package main

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/views"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site, with the theme endpoint and the CMS when they are activated",
		Long: `Serve renders pages on request from the synced content.

Admin settings come from the environment: ADMIN_PASSWORD or
ADMIN_PASSWORD_HASH, ADMIN_SESSION_SECRET, COOKIE_SECURE and DATABASE_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			server := ramblings.ServerConfigFromEnv()
			if addr != "" {
				server.Addr = addr
			}
			app, err := ramblings.New(cfg, views.Funcs(),
				ramblings.WithServerConfig(server),
				ramblings.WithRoot(filepath.Dir(root.configPath)),
				ramblings.WithLogger(root.log),
			)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides ADDR)")
	return cmd
}
