package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
)

// GetCoolingConfig returns the cooling-period config for a rail.
func (s *SQLiteStorage) GetCoolingConfig(ctx context.Context, rail string) (*model.CoolingConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(rail, "rail"); err != nil {
		return nil, err
	}

	query := `SELECT rail, hours, active, description, updated_at FROM cooling_configs WHERE rail = ?`

	var cfg model.CoolingConfig
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, rail).Scan(
		&cfg.Rail, &cfg.Hours, &cfg.Active, &description, &cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cooling config for rail %s: %w", rail, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cooling config: %w", err)
	}

	cfg.Description = description.String
	return &cfg, nil
}

// ListCoolingConfigs returns every rail's cooling config.
func (s *SQLiteStorage) ListCoolingConfigs(ctx context.Context) ([]model.CoolingConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT rail, hours, active, description, updated_at FROM cooling_configs ORDER BY rail`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cooling configs: %w", err)
	}
	defer rows.Close()

	var configs []model.CoolingConfig
	for rows.Next() {
		var cfg model.CoolingConfig
		var description sql.NullString
		if err := rows.Scan(&cfg.Rail, &cfg.Hours, &cfg.Active, &description, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cooling config: %w", err)
		}
		cfg.Description = description.String
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cooling configs: %w", err)
	}

	return configs, nil
}

// SaveCoolingConfig upserts a rail's cooling config together with its audit
// event in one transaction.
func (s *SQLiteStorage) SaveCoolingConfig(ctx context.Context, cfg *model.CoolingConfig, event *model.OverrideEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("%w: cfg", ErrNilParameter)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid cooling config: %w", err)
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid override event: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cooling_configs (rail, hours, active, description, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(rail) DO UPDATE SET
				hours = excluded.hours,
				active = excluded.active,
				description = excluded.description,
				updated_at = excluded.updated_at`,
			cfg.Rail, cfg.Hours, cfg.Active, cfg.Description, cfg.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save cooling config: %w", err)
		}

		return insertOverrideEventTx(ctx, tx, event)
	})
}

// GetLimitTier returns the limit tier for a KYC level.
func (s *SQLiteStorage) GetLimitTier(ctx context.Context, level model.KYCLevel) (*model.LimitTier, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(level), "level"); err != nil {
		return nil, err
	}

	query := `SELECT kyc_level, single_limit, daily_limit, monthly_limit, active, updated_at
		FROM limit_tiers WHERE kyc_level = ?`

	var tier model.LimitTier
	var single, daily, monthly string
	err := s.db.QueryRowContext(ctx, query, level).Scan(
		&tier.KYCLevel, &single, &daily, &monthly, &tier.Active, &tier.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("limit tier for level %s: %w", level, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query limit tier: %w", err)
	}

	if tier.Single, err = scanDecimal(single, "single_limit"); err != nil {
		return nil, err
	}
	if tier.Daily, err = scanDecimal(daily, "daily_limit"); err != nil {
		return nil, err
	}
	if tier.Monthly, err = scanDecimal(monthly, "monthly_limit"); err != nil {
		return nil, err
	}

	return &tier, nil
}

// ListLimitTiers returns every configured limit tier.
func (s *SQLiteStorage) ListLimitTiers(ctx context.Context) ([]model.LimitTier, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT kyc_level, single_limit, daily_limit, monthly_limit, active, updated_at
		FROM limit_tiers ORDER BY kyc_level`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query limit tiers: %w", err)
	}
	defer rows.Close()

	var tiers []model.LimitTier
	for rows.Next() {
		var tier model.LimitTier
		var single, daily, monthly string
		if err := rows.Scan(&tier.KYCLevel, &single, &daily, &monthly, &tier.Active, &tier.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan limit tier: %w", err)
		}
		if tier.Single, err = scanDecimal(single, "single_limit"); err != nil {
			return nil, err
		}
		if tier.Daily, err = scanDecimal(daily, "daily_limit"); err != nil {
			return nil, err
		}
		if tier.Monthly, err = scanDecimal(monthly, "monthly_limit"); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating limit tiers: %w", err)
	}

	return tiers, nil
}

// SaveLimitTier upserts a KYC level's limit tier together with its audit
// event in one transaction. The tier must already have passed validation; a
// tier with inverted ceilings is refused here as a second line of defence.
func (s *SQLiteStorage) SaveLimitTier(ctx context.Context, tier *model.LimitTier, event *model.OverrideEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if tier == nil {
		return fmt.Errorf("%w: tier", ErrNilParameter)
	}
	if err := tier.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigInconsistent, err)
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid override event: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO limit_tiers (kyc_level, single_limit, daily_limit, monthly_limit, active, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(kyc_level) DO UPDATE SET
				single_limit = excluded.single_limit,
				daily_limit = excluded.daily_limit,
				monthly_limit = excluded.monthly_limit,
				active = excluded.active,
				updated_at = excluded.updated_at`,
			tier.KYCLevel, tier.Single.String(), tier.Daily.String(), tier.Monthly.String(),
			tier.Active, tier.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save limit tier: %w", err)
		}

		return insertOverrideEventTx(ctx, tx, event)
	})
}

// GetScaSetting returns one SCA configuration row by key.
func (s *SQLiteStorage) GetScaSetting(ctx context.Context, key string) (*model.ScaSetting, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	query := `SELECT key, value, description, updated_at FROM sca_settings WHERE key = ?`

	var setting model.ScaSetting
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&setting.Key, &setting.Value, &description, &setting.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("SCA setting %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query SCA setting: %w", err)
	}

	setting.Description = description.String
	return &setting, nil
}

// SaveScaSetting upserts an SCA configuration row together with its audit
// event in one transaction.
func (s *SQLiteStorage) SaveScaSetting(ctx context.Context, setting *model.ScaSetting, event *model.OverrideEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if setting == nil {
		return fmt.Errorf("%w: setting", ErrNilParameter)
	}
	if err := setting.Validate(); err != nil {
		return fmt.Errorf("invalid SCA setting: %w", err)
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid override event: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sca_settings (key, value, description, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				description = excluded.description,
				updated_at = excluded.updated_at`,
			setting.Key, setting.Value, setting.Description, setting.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save SCA setting: %w", err)
		}

		return insertOverrideEventTx(ctx, tx, event)
	})
}
