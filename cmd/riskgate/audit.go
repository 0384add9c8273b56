package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/cli"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the policy override audit trail",
	}
	cmd.AddCommand(auditListCmd())
	return cmd
}

func auditListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent override and configuration-change events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			events, err := store.ListOverrideEvents(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list override events: %w", err)
			}

			cmd.Println(cli.FormatTitle("Override audit trail"))
			if len(events) == 0 {
				cmd.Println(cli.FormatSubtle("none"))
				return nil
			}
			for _, event := range events {
				cmd.Printf("%s  %-26s  %s/%s by %s (%s)\n",
					event.CreatedAt.Format("2006-01-02 15:04:05"),
					event.Action, event.TargetType, event.TargetID,
					event.ActorID, event.ActorRole)
				if event.Justification != "" {
					cmd.Printf("    reason: %s\n", event.Justification)
				}
				if event.Before != "" || event.After != "" {
					cmd.Println(cli.FormatSubtle(fmt.Sprintf("    before: %s  after: %s", event.Before, event.After)))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events to show")
	return cmd
}
