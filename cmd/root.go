// Package cmd holds the heavenly command line.
package cmd

import (
	"context"
	"os"

	"github.com/MyelinBots/heavenly-go/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (config.Config, error) {
	return config.LoadConfig(o.configPath)
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "heavenly",
		Short:         "Therapy practice backend: sessions, couples, payments, library and AI chat",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the config file")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newClassifyCmd(),
		newUserCmd(opts, surveyPrompter{}),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
