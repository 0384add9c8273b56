package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/admin"
	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/cooling"
	"github.com/finveil/riskgate/internal/model"
)

func limitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Manage KYC-tiered transaction limits",
	}
	cmd.AddCommand(limitsListCmd())
	cmd.AddCommand(limitsSetCmd())
	return cmd
}

func limitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the limit tier for each KYC level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			tiers, err := store.ListLimitTiers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list limit tiers: %w", err)
			}

			cmd.Println(cli.FormatTitle("Transaction limit tiers"))
			cmd.Println(cli.FormatSubtle(fmt.Sprintf("%-10s  %12s  %12s  %12s  %s", "level", "single", "daily", "monthly", "state")))
			for _, tier := range tiers {
				state := "active"
				if !tier.Active {
					state = "inactive (no restriction)"
				}
				cmd.Printf("%-10s  %12s  %12s  %12s  %s\n",
					tier.KYCLevel, tier.Single, tier.Daily, tier.Monthly, state)
			}
			return nil
		},
	}
}

func limitsSetCmd() *cobra.Command {
	var level, single, daily, monthly string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update a KYC level's limit tier (super admin)",
		Long: `Update the single, daily and monthly ceilings for a KYC level. The
ceilings must satisfy single <= daily <= monthly; an inconsistent tier is
refused. Deactivating a tier removes its restriction entirely rather than
blocking activity. The change is audited with before and after values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := currentActor()
			if err != nil {
				return err
			}

			singleAmount, err := parseAmount(single, "single")
			if err != nil {
				return err
			}
			dailyAmount, err := parseAmount(daily, "daily")
			if err != nil {
				return err
			}
			monthlyAmount, err := parseAmount(monthly, "monthly")
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			svc := admin.NewService(store, cooling.NewManager(store))
			tier := &model.LimitTier{
				KYCLevel: model.KYCLevel(level),
				Single:   singleAmount,
				Daily:    dailyAmount,
				Monthly:  monthlyAmount,
				Active:   !inactive,
			}
			if err := svc.UpdateLimitTier(cmd.Context(), actor, tier); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Limit tier for %s updated", level)))
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "KYC level (basic, standard, enhanced, full)")
	cmd.Flags().StringVar(&single, "single", "", "single-transaction ceiling")
	cmd.Flags().StringVar(&daily, "daily", "", "daily ceiling")
	cmd.Flags().StringVar(&monthly, "monthly", "", "monthly ceiling")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "deactivate the tier, removing its restriction")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("single")
	_ = cmd.MarkFlagRequired("daily")
	_ = cmd.MarkFlagRequired("monthly")
	return cmd
}
