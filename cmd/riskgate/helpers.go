package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/storage"
)

// initStorage opens the configured database and applies pending migrations.
func initStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		return nil, common.NewUserError("no database path configured; set database.path or pass --db", common.ErrMissingConfig)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		closeStorage(store)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// closeStorage closes the store, logging rather than failing the command on
// a close error.
func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

// currentActor resolves the acting admin identity and role from flags/config.
func currentActor() (model.Actor, error) {
	id := strings.TrimSpace(viper.GetString("actor.id"))
	if id == "" {
		return model.Actor{}, common.NewUserError("no actor identity configured; pass --actor", common.ErrMissingConfig)
	}

	role := model.Role(viper.GetString("actor.role"))
	switch role {
	case model.RoleAdmin, model.RoleSuperAdmin:
	default:
		return model.Actor{}, common.NewUserError(fmt.Sprintf("unknown role %q; use admin or super_admin", role), common.ErrInvalidConfig)
	}

	return model.Actor{ID: id, Role: role}, nil
}

// parseAmount parses a decimal money amount from a flag value.
func parseAmount(value, flag string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("--%s must be a decimal amount", flag), err)
	}
	return amount, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
