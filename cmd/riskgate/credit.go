package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/admin"
	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/cooling"
)

func creditCmd() *cobra.Command {
	var accountID, reason, amount string

	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Apply a manual credit to a customer account (admin)",
		Long: `Credit a customer account outside the normal payment flow, for example a
goodwill payment or fee refund. The justification is mandatory and the
credit is written together with its audit record.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, err := currentActor()
			if err != nil {
				return err
			}

			creditAmount, err := parseAmount(amount, "amount")
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			svc := admin.NewService(store, cooling.NewManager(store))
			result, err := svc.ManualCredit(cmd.Context(), actor, accountID, creditAmount, reason)
			if err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Credited %s: transaction %s, new balance %s",
				creditAmount, result.TransactionID, result.NewBalance)))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account to credit")
	cmd.Flags().StringVar(&amount, "amount", "", "credit amount")
	cmd.Flags().StringVar(&reason, "reason", "", "justification (at least 5 characters)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
