package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/narsaynorath/ramblings/logger"
	"github.com/narsaynorath/ramblings/siteconfig"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logPretty  bool

	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{log: logger.Nop()}

	cmd := &cobra.Command{
		Use:           "ramblings",
		Short:         "ramblings builds and serves a blog from a declarative site config",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Options{
				Level:         flags.logLevel,
				HumanReadable: flags.logPretty,
				Writer:        cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			flags.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "site.yaml", "Path to the site configuration")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.logPretty, "log-pretty", true, "Human readable log output")

	cmd.AddCommand(newBuildCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (f *rootFlags) loadConfig() (*siteconfig.Config, error) {
	return siteconfig.Load(f.configPath)
}
