// Command riskgate is the admin and operations surface for the retail
// banking risk and controls engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finveil/riskgate/internal/common"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "riskgate",
		Short: "Risk & controls engine for retail banking money movement",
		Long: `riskgate evaluates money-movement requests against the bank's risk policy:
payee cooling periods, KYC-tiered transaction limits, and the strong customer
authentication step-up threshold. It also manages spending alert rules and
the admin override surface, with a full audit trail.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/riskgate/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("db", "", "path to the riskgate database")
	rootCmd.PersistentFlags().String("actor", "", "acting admin identity for override operations")
	rootCmd.PersistentFlags().String("role", "admin", "acting role (admin, super_admin)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("actor.id", rootCmd.PersistentFlags().Lookup("actor"))
	_ = viper.BindPFlag("actor.role", rootCmd.PersistentFlags().Lookup("role"))

	rootCmd.AddCommand(customersCmd())
	rootCmd.AddCommand(payeesCmd())
	rootCmd.AddCommand(coolingCmd())
	rootCmd.AddCommand(limitsCmd())
	rootCmd.AddCommand(scaCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(creditCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(home, ".config", "riskgate")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		viper.SetDefault("database.path", filepath.Join(configDir, "riskgate.db"))
	}

	viper.SetEnvPrefix("RISKGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level := parseLogLevel(viper.GetString("logging.level"))
	if err := common.SetupLogger(level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the riskgate version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("riskgate %s\n", version)
		},
	}
}
