package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/siteconfig"
)

func newConfigCmd(root *rootFlags) *cobra.Command {
	var showDefault bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate the site configuration and print it as resolved YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showDefault {
				data, err := siteconfig.Marshal(siteconfig.Default())
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if _, err := ramblings.Resolve(cfg, filepath.Dir(root.configPath)); err != nil {
				return err
			}
			root.log.Debug().Int("plugins", len(cfg.Plugins)).Str("config", root.configPath).Msg("configuration resolved")
			data, err := siteconfig.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showDefault, "default", false, "Print the default configuration instead")
	return cmd
}
