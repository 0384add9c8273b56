package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finveil/riskgate/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			cmd.Println(cli.FormatSuccess("Database is up to date"))
			return nil
		},
	}
}
