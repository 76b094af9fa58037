package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
)

const (
	msgSlabNotFound   = "Slab rate configuration not found."
	msgSlabNameTaken  = "A slab rate configuration with this name already exists."
	msgNoActiveSlab   = "No active slab rate configuration found."
	msgSlabActiveLock = "Cannot delete the currently active slab rate configuration. Activate another one first."
)

type SlabRateRepository struct {
	DB *pgxpool.Pool
}

func NewSlabRateRepository(db *pgxpool.Pool) *SlabRateRepository {
	return &SlabRateRepository{DB: db}
}

const slabColumns = `id, config_name, effective_date, is_currently_active, slabs_lte_500, slabs_gt_500, created_at, updated_at`

func scanSlabConfig(row scanner) (*models.SlabRateConfiguration, error) {
	c := &models.SlabRateConfiguration{}
	err := row.Scan(
		&c.ID,
		&c.ConfigName,
		&c.EffectiveDate,
		&c.IsCurrentlyActive,
		&c.SlabsLessThanOrEqual500,
		&c.SlabsGreaterThan500,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a configuration; an active one deactivates the rest first.
func (r *SlabRateRepository) Create(ctx context.Context, c *models.SlabRateConfiguration) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if c.IsCurrentlyActive {
		if _, err := tx.Exec(ctx,
			`UPDATE slab_rate_configs SET is_currently_active = FALSE, updated_at = CURRENT_TIMESTAMP
			 WHERE is_currently_active`); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO slab_rate_configs (config_name, effective_date, is_currently_active, slabs_lte_500, slabs_gt_500)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.ConfigName, c.EffectiveDate, c.IsCurrentlyActive, c.SlabsLessThanOrEqual500, c.SlabsGreaterThan500,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translate(err, msgSlabNotFound, msgSlabNameTaken)
	}

	return tx.Commit(ctx)
}

// List returns configurations, newest effective date first.
func (r *SlabRateRepository) List(ctx context.Context) ([]*models.SlabRateConfiguration, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+slabColumns+` FROM slab_rate_configs ORDER BY effective_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := []*models.SlabRateConfiguration{}
	for rows.Next() {
		c, err := scanSlabConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (r *SlabRateRepository) Get(ctx context.Context, id int) (*models.SlabRateConfiguration, error) {
	c, err := scanSlabConfig(r.DB.QueryRow(ctx, `SELECT `+slabColumns+` FROM slab_rate_configs WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, msgSlabNotFound, "")
	}
	return c, nil
}

func (r *SlabRateRepository) GetActive(ctx context.Context) (*models.SlabRateConfiguration, error) {
	c, err := scanSlabConfig(r.DB.QueryRow(ctx, `SELECT `+slabColumns+` FROM slab_rate_configs WHERE is_currently_active`))
	if err != nil {
		return nil, translate(err, msgNoActiveSlab, "")
	}
	return c, nil
}

// Activate makes id the only active configuration.
func (r *SlabRateRepository) Activate(ctx context.Context, id int) (*models.SlabRateConfiguration, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := scanSlabConfig(tx.QueryRow(ctx, `SELECT `+slabColumns+` FROM slab_rate_configs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, msgSlabNotFound, "")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE slab_rate_configs SET is_currently_active = FALSE, updated_at = CURRENT_TIMESTAMP
		 WHERE is_currently_active AND id <> $1`, id); err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx,
		`UPDATE slab_rate_configs SET is_currently_active = TRUE, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING updated_at`, id,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return nil, translate(err, msgSlabNotFound, msgActiveSlabRace)
	}
	c.IsCurrentlyActive = true

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes an inactive configuration. The row lock keeps a concurrent
// Activate from slipping in between the check and the delete.
func (r *SlabRateRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var active bool
	err = tx.QueryRow(ctx, `SELECT is_currently_active FROM slab_rate_configs WHERE id = $1 FOR UPDATE`, id).Scan(&active)
	if err != nil {
		return translate(err, msgSlabNotFound, "")
	}
	if active {
		return apperr.Conflict(msgSlabActiveLock)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM slab_rate_configs WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
