package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watts-backend/internal/models"
)

// SettingsRepository stores the single user_settings row.
type SettingsRepository struct {
	DB *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// Get returns the settings row, creating it with defaults on first use.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	return loadSettings(ctx, r.DB)
}

// loadSettings only writes when the row is missing, so reads stay reads.
func loadSettings(ctx context.Context, q queryRower) (*models.Settings, error) {
	s, err := scanSettings(q.QueryRow(ctx,
		`SELECT id, consumption_target, created_at, updated_at FROM settings WHERE setting_key = $1`,
		models.SettingsKey,
	))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// ON CONFLICT covers a concurrent first read inserting the row.
	return scanSettings(q.QueryRow(ctx, `
		INSERT INTO settings (setting_key, consumption_target)
		VALUES ($1, $2)
		ON CONFLICT (setting_key) DO UPDATE SET setting_key = EXCLUDED.setting_key
		RETURNING id, consumption_target, created_at, updated_at
	`, models.SettingsKey, models.DefaultConsumptionTarget))
}

func scanSettings(row scanner) (*models.Settings, error) {
	s := &models.Settings{}
	err := row.Scan(
		&s.ID,
		&s.ConsumptionTarget,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateTarget upserts the consumption target.
func (r *SettingsRepository) UpdateTarget(ctx context.Context, target float64) (*models.Settings, error) {
	query := `
		INSERT INTO settings (setting_key, consumption_target)
		VALUES ($1, $2)
		ON CONFLICT (setting_key)
		DO UPDATE SET consumption_target = EXCLUDED.consumption_target, updated_at = CURRENT_TIMESTAMP
		RETURNING id, consumption_target, created_at, updated_at
	`

	return scanSettings(r.DB.QueryRow(ctx, query, models.SettingsKey, target))
}
