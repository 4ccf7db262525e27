package cmd

import (
	"errors"
	"fmt"

	"github.com/MyelinBots/heavenly-go/config"
	"github.com/MyelinBots/heavenly-go/internal/db"
	"github.com/spf13/cobra"
)

var errNotPostgres = errors.New("versioned migrations target postgres; sqlite is auto migrated on start")

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the postgres schema migrations",
	}

	postgresConfig := func() (config.DBConfig, error) {
		cfg, err := opts.load()
		if err != nil {
			return config.DBConfig{}, err
		}
		if cfg.DBConfig.Driver == "sqlite" {
			return config.DBConfig{}, errNotPostgres
		}
		return cfg.DBConfig, nil
	}

	step := func(use, short string, dir db.Direction) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := postgresConfig()
				if err != nil {
					return err
				}
				return db.Migrate(cfg, dir)
			},
		}
	}

	cmd.AddCommand(
		step("up", "Apply all pending migrations", db.Up),
		step("down", "Roll back the latest migration", db.Down),
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := postgresConfig()
				if err != nil {
					return err
				}
				version, dirty, err := db.MigrationVersion(cfg)
				if err != nil {
					return err
				}
				suffix := ""
				if dirty {
					suffix = " (dirty)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d%s\n", version, suffix)
				return nil
			},
		},
	)
	return cmd
}
