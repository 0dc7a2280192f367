package main

import (
	"fmt"

	"claims-dashboard/internal/config"

	"github.com/spf13/cobra"
)

var seedReset bool

// seedCmd loads the demo users and claims
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users and claims",
	Long: `Creates the demo users (password "` + config.DemoPassword + `") when missing and
loads the demo claims into an empty claims table. With --reset, existing
claims and their history are deleted first.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete all claims before seeding")
}

func runSeed(cmd *cobra.Command, args []string) error {
	res, err := config.NewSeeder(db, log).Run(cmd.Context(), seedReset)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d claims\n", res.Users, res.Claims)
	return nil
}
