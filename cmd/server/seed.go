package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/infrastructure/database"
	"chewing-love-service/internal/infrastructure/database/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load family members, devices and chewing data from YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pool, err := bootstrap()
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(pool.GetDB(), database.MigrationAuto); err != nil {
			return err
		}

		c, err := newContainer(cmd.Context(), cfg, pool)
		if err != nil {
			return err
		}
		defer c.Close()

		seeder := &seed.Seeder{
			Members:     c.GetService("family_member").(services.InterfaceFamilyMemberService),
			Devices:     c.GetService("device").(services.InterfaceDeviceService),
			Assignments: c.GetService("assignment").(services.InterfaceAssignmentService),
			Chewing:     c.GetService("chewing_data").(services.InterfaceChewingDataService),
		}
		res, err := seeder.LoadFile(cmd.Context(), seedFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d members, %d devices, %d assignments, %d chewing rows\n",
			res.FamilyMembers, res.Devices, res.Assignments, res.ChewingData)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "deploy/seed.yaml", "YAML fixture to load")
}
