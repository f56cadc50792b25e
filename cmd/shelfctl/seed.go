package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/shelf/internal/service"
)

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and guest accounts if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeder := service.NewSeederService(e.auth, e.stores.Users)
			created, err := seeder.SeedUsers(cmd.Context(),
				service.DefaultSeedUsers(e.cfg.Seed.AdminPassword, e.cfg.Seed.GuestPassword))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d user(s)\n", created)
			return nil
		},
	}
}
