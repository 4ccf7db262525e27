package cmd

import (
	"errors"
	"fmt"

	"github.com/MyelinBots/heavenly-go/internal/app"
	"github.com/MyelinBots/heavenly-go/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo therapist, clients, couple, sessions and library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			database, err := app.Open(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			a, err := app.New(cfg, database)
			if err != nil {
				return err
			}
			doc, err := seed.Demo()
			if err != nil {
				return err
			}

			s := seed.NewSeeder(a.Repos.Users, a.Repos.Content, a.Services.Auth, a.Services.Couples, a.Services.Scheduling, a.Services.Library)
			sum, err := s.Run(cmd.Context(), doc)
			if errors.Is(err, seed.ErrAlreadySeeded) {
				fmt.Fprintln(cmd.OutOrStdout(), "demo data already present, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d categories, %d content items, %d sessions\n",
				sum.Users, sum.Categories, sum.Content, sum.Sessions)
			fmt.Fprintf(cmd.OutOrStdout(), "demo accounts use password %s\n", doc.Password)
			return nil
		},
	}
}
