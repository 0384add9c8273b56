package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/model"
)

func customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage customer records",
	}
	cmd.AddCommand(customersAddCmd())
	cmd.AddCommand(customersListCmd())
	return cmd
}

func customersAddCmd() *cobra.Command {
	var name, kycLevel string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a customer with a KYC verification level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			customer := &model.Customer{
				ID:       uuid.NewString(),
				Name:     name,
				KYCLevel: model.KYCLevel(kycLevel),
			}
			if err := store.SaveCustomer(cmd.Context(), customer); err != nil {
				return fmt.Errorf("failed to save customer: %w", err)
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Customer %s created (%s, KYC %s)", customer.ID, customer.Name, customer.KYCLevel)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "customer name")
	cmd.Flags().StringVar(&kycLevel, "kyc-level", string(model.KYCBasic), "KYC level (basic, standard, enhanced, full)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func customersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			customers, err := store.ListCustomers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			cmd.Println(cli.FormatTitle("Customers"))
			if len(customers) == 0 {
				cmd.Println(cli.FormatSubtle("none"))
				return nil
			}
			for _, customer := range customers {
				cmd.Printf("%s  %-24s  kyc=%s\n", customer.ID, customer.Name, customer.KYCLevel)
			}
			return nil
		},
	}
}
