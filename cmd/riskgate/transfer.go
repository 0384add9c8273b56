package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/alerts"
	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/gateway"
	"github.com/finveil/riskgate/internal/model"
)

func transferCmd() *cobra.Command {
	var customerID, accountID, payeeID, description, scaProof, amount string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Submit a money-movement request through the policy gateway",
		Long: `Submit a money movement. The request runs the full policy sequence:
payee cooling check, KYC limit tier check, SCA step-up threshold, then the
atomic ledger post. A step-up requirement is reported without touching the
ledger; resubmit with --sca-proof after completing step-up.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moveAmount, err := parseAmount(amount, "amount")
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			gw := gateway.New(store, store, alerts.NewService(store))
			req := &model.MoveRequest{
				ID:          uuid.NewString(),
				CustomerID:  customerID,
				AccountID:   accountID,
				PayeeID:     payeeID,
				Description: description,
				SCAProof:    scaProof,
				Amount:      moveAmount,
			}

			decision, err := gw.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			printDecision(cmd, decision)
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "customer ID")
	cmd.Flags().StringVar(&accountID, "account", "", "source account ID")
	cmd.Flags().StringVar(&payeeID, "payee", "", "saved payee ID (optional)")
	cmd.Flags().StringVar(&description, "description", "", "payment description")
	cmd.Flags().StringVar(&scaProof, "sca-proof", "", "completed step-up evidence")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to move")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func printDecision(cmd *cobra.Command, decision *gateway.Decision) {
	switch decision.State {
	case gateway.StateLedgerPosted:
		cmd.Println(cli.FormatSuccess(fmt.Sprintf("Posted: transaction %s, new balance %s",
			decision.Result.TransactionID, decision.Result.NewBalance)))
		for _, id := range decision.TriggeredAlerts {
			cmd.Println(cli.FormatWarning("spending alert triggered: " + id))
		}
	case gateway.StateSCARequired:
		cmd.Println(cli.FormatWarning(decision.Rejection.Message))
	case gateway.StateRejected:
		if decision.Rejection != nil {
			cmd.Println(cli.FormatError(fmt.Sprintf("Rejected (%s): %s",
				decision.Rejection.Kind, decision.Rejection.Message)))
			return
		}
		cmd.Println(cli.FormatError("Rejected by ledger: " + decision.LedgerFailure.Reason))
	}
}
