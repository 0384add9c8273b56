package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/admin"
	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/cooling"
	"github.com/finveil/riskgate/internal/model"
)

func coolingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cooling",
		Short: "Manage cooling-period policy and waivers",
	}
	cmd.AddCommand(coolingListCmd())
	cmd.AddCommand(coolingSetCmd())
	cmd.AddCommand(coolingWaiveCmd())
	return cmd
}

func coolingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cooling-period configuration per rail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			configs, err := store.ListCoolingConfigs(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list cooling configs: %w", err)
			}

			cmd.Println(cli.FormatTitle("Cooling periods"))
			for _, cfg := range configs {
				state := "active"
				if !cfg.Active {
					state = "inactive"
				}
				cmd.Printf("%-20s  %3dh  %-8s  %s\n", cfg.Rail, cfg.Hours, state, cfg.Description)
			}
			return nil
		},
	}
}

func coolingSetCmd() *cobra.Command {
	var rail, description string
	var hours int
	var inactive bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update a rail's cooling period (super admin)",
		Long: `Update the cooling-period configuration for a payment rail. Setting zero
hours, or deactivating the rail's config, clears all of its payees
immediately. The change is audited with before and after values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := currentActor()
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			svc := admin.NewService(store, cooling.NewManager(store))
			cfg := &model.CoolingConfig{
				Rail:        rail,
				Hours:       hours,
				Active:      !inactive,
				Description: description,
			}
			if err := svc.UpdateCoolingConfig(cmd.Context(), actor, cfg); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Cooling period for %s set to %d hours", rail, hours)))
			return nil
		},
	}

	cmd.Flags().StringVar(&rail, "rail", "", "payment rail")
	cmd.Flags().IntVar(&hours, "hours", 24, "cooling period length in hours (0 disables)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "deactivate the config, clearing all payees on the rail")
	_ = cmd.MarkFlagRequired("rail")
	return cmd
}

func coolingWaiveCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "waive <payee-id>",
		Short: "Waive a payee's cooling period (admin)",
		Long: `Clear a payee's cooling period early after out-of-band verification. The
justification is mandatory and is recorded in the audit trail together with
the waiver.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor()
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			svc := admin.NewService(store, cooling.NewManager(store))
			if err := svc.WaiveCoolingPeriod(cmd.Context(), actor, args[0], reason); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess("Cooling period waived"))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "justification for the waiver (at least 5 characters)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
