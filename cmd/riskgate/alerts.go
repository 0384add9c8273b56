package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/alerts"
	"github.com/finveil/riskgate/internal/cli"
	"github.com/finveil/riskgate/internal/model"
)

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage and evaluate spending alert rules",
	}
	cmd.AddCommand(alertsAddCmd())
	cmd.AddCommand(alertsListCmd())
	cmd.AddCommand(alertsEvalCmd())
	cmd.AddCommand(alertsEnableCmd(true))
	cmd.AddCommand(alertsEnableCmd(false))
	return cmd
}

func alertsAddCmd() *cobra.Command {
	var customerID, name, kind, accountID, category, merchant, threshold string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a spending alert rule",
		Long: `Create a spending alert rule for a customer. The kind determines which
scoping flag applies:

  single_transaction  any transaction at or above the threshold (--account optional)
  category_monthly    this month's debits in --category reach the threshold
  balance_below       available balance falls below the threshold (--account optional)
  merchant_payment    a payment to --merchant at or above the threshold
  large_incoming      an incoming credit at or above the threshold (--account optional)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount(threshold, "threshold")
			if err != nil {
				return err
			}

			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			rule := &model.AlertRule{
				ID:           uuid.NewString(),
				CustomerID:   customerID,
				Name:         name,
				Kind:         model.AlertRuleKind(kind),
				AccountID:    accountID,
				Category:     category,
				MerchantName: merchant,
				Threshold:    amount,
				Active:       true,
				CreatedAt:    time.Now(),
			}
			if err := store.SaveAlertRule(cmd.Context(), rule); err != nil {
				return fmt.Errorf("failed to save alert rule: %w", err)
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Alert rule %s created", rule.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "owning customer ID")
	cmd.Flags().StringVar(&name, "name", "", "rule name")
	cmd.Flags().StringVar(&kind, "kind", "", "rule kind")
	cmd.Flags().StringVar(&accountID, "account", "", "account scope (optional)")
	cmd.Flags().StringVar(&category, "category", "", "category scope (category_monthly)")
	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name (merchant_payment)")
	cmd.Flags().StringVar(&threshold, "threshold", "", "threshold amount")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("threshold")
	return cmd
}

func alertsListCmd() *cobra.Command {
	var customerID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a customer's alert rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			rules, err := store.GetAlertRulesByCustomer(cmd.Context(), customerID)
			if err != nil {
				return fmt.Errorf("failed to list alert rules: %w", err)
			}

			cmd.Println(cli.FormatTitle("Spending alert rules"))
			if len(rules) == 0 {
				cmd.Println(cli.FormatSubtle("none"))
				return nil
			}
			for _, rule := range rules {
				state := "active"
				if !rule.Active {
					state = "disabled"
				}
				cmd.Printf("%s  %-24s  %-20s  >= %-10s  triggered %d times  %s\n",
					rule.ID, rule.Name, rule.Kind, rule.Threshold, rule.TriggerCount, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "owning customer ID")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func alertsEvalCmd() *cobra.Command {
	var customerID string
	var record bool

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a customer's alert rules against recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			svc := alerts.NewService(store)

			var triggered []string
			if record {
				triggered, err = svc.EvaluateAndRecord(cmd.Context(), customerID)
			} else {
				triggered, err = svc.EvaluateCustomer(cmd.Context(), customerID)
			}
			if err != nil {
				return fmt.Errorf("failed to evaluate alerts: %w", err)
			}

			if len(triggered) == 0 {
				cmd.Println(cli.FormatSuccess("No alerts triggered"))
				return nil
			}
			cmd.Println(cli.FormatWarning(fmt.Sprintf("%d alert(s) triggered:", len(triggered))))
			for _, id := range triggered {
				rule, err := store.GetAlertRule(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to load triggered rule: %w", err)
				}
				cmd.Printf("  %s  %s (%s)\n", rule.ID, rule.Name, rule.Kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "owning customer ID")
	cmd.Flags().BoolVar(&record, "record", false, "bump trigger counters for matched rules")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func alertsEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <rule-id>", "Enable an alert rule"
	if !enable {
		use, short = "disable <rule-id>", "Disable an alert rule"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.SetAlertRuleActive(cmd.Context(), args[0], enable); err != nil {
				return fmt.Errorf("failed to update alert rule: %w", err)
			}
			cmd.Println(cli.FormatSuccess("Alert rule updated"))
			return nil
		},
	}
}
