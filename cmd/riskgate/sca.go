package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/admin"
	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/cooling"
	"github.com/finveil/riskgate/internal/model"
)

func scaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sca",
		Short: "Manage the strong customer authentication threshold",
	}
	cmd.AddCommand(scaShowCmd())
	cmd.AddCommand(scaSetCmd())
	return cmd
}

func scaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current SCA step-up threshold",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			setting, err := store.GetScaSetting(cmd.Context(), model.ScaSettingAmountThreshold)
			if err != nil {
				return fmt.Errorf("failed to load SCA setting: %w", err)
			}

			cmd.Println(cli.FormatTitle("Strong customer authentication"))
			cmd.Printf("step-up required at or above: %s\n", setting.Value)
			return nil
		},
	}
}

func scaSetCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the SCA step-up amount threshold (super admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := currentActor()
			if err != nil {
				return err
			}

			threshold, err := parseAmount(amount, "amount")
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			svc := admin.NewService(store, cooling.NewManager(store))
			if err := svc.SetScaThreshold(cmd.Context(), actor, threshold); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("SCA threshold set to %s", threshold)))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount at or above which step-up is required")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
