package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/cooling"
	"github.com/finveil/riskgate/internal/model"
)

func payeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payees",
		Short: "Manage saved payees and their cooling status",
	}
	cmd.AddCommand(payeesAddCmd())
	cmd.AddCommand(payeesListCmd())
	cmd.AddCommand(payeesStatusCmd())
	return cmd
}

func payeesAddCmd() *cobra.Command {
	var customerID, name, rail string
	var favourite bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new payee for a customer",
		Long: `Save a new payee. The payee starts its rail's cooling period immediately;
it cannot receive a first payment until the period elapses or an admin
waives it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			payee := &model.Payee{
				ID:         uuid.NewString(),
				CustomerID: customerID,
				Name:       name,
				Rail:       rail,
				Favourite:  favourite,
				CreatedAt:  time.Now(),
			}
			if err := store.SavePayee(cmd.Context(), payee); err != nil {
				return fmt.Errorf("failed to save payee: %w", err)
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Payee %s saved on rail %s", payee.ID, payee.Rail)))
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "owning customer ID")
	cmd.Flags().StringVar(&name, "name", "", "payee display name")
	cmd.Flags().StringVar(&rail, "rail", "domestic_sameday", "payment rail")
	cmd.Flags().BoolVar(&favourite, "favourite", false, "mark as favourite")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func payeesListCmd() *cobra.Command {
	var customerID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a customer's payees with live cooling status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			manager := cooling.NewManager(store)
			statuses, err := manager.List(cmd.Context(), customerID)
			if err != nil {
				return fmt.Errorf("failed to list payees: %w", err)
			}

			cmd.Println(cli.FormatTitle("Payees"))
			if len(statuses) == 0 {
				cmd.Println(cli.FormatSubtle("none"))
				return nil
			}
			for _, ps := range statuses {
				cmd.Printf("%s  %-24s  rail=%-18s  %s\n",
					ps.Payee.ID, ps.Payee.Name, ps.Payee.Rail, formatCoolingStatus(ps.Status))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "owning customer ID")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func payeesStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <payee-id>",
		Short: "Show a payee's cooling status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			manager := cooling.NewManager(store)
			status, err := manager.Status(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get payee status: %w", err)
			}

			cmd.Println(formatCoolingStatus(status))
			return nil
		},
	}
}

func formatCoolingStatus(status cooling.Status) string {
	if status.State == cooling.StateCleared {
		return cli.FormatSuccess("cleared")
	}
	return cli.FormatWarning(fmt.Sprintf("cooling: %d hours remaining", *status.HoursRemaining))
}
