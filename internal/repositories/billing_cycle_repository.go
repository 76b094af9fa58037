package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
)

const (
	msgCycleNotFound      = "Billing cycle not found."
	msgActiveCycleExists  = "An active billing cycle already exists. Close it before starting a new one."
	msgNoActiveCycle      = "No active billing cycle found."
	msgCycleHasReferences = "Cannot delete billing cycle: readings are still associated with it."
)

type BillingCycleRepository struct {
	DB *pgxpool.Pool
}

func NewBillingCycleRepository(db *pgxpool.Pool) *BillingCycleRepository {
	return &BillingCycleRepository{DB: db}
}

const cycleColumns = `id, start_date, end_date, government_collection_date, status, notes, created_at, updated_at`

func scanCycle(row scanner) (*models.BillingCycle, error) {
	c := &models.BillingCycle{}
	err := row.Scan(
		&c.ID,
		&c.StartDate,
		&c.EndDate,
		&c.GovernmentCollectionDate,
		&c.Status,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func collectCycles(rows pgx.Rows) ([]*models.BillingCycle, error) {
	defer rows.Close()
	cycles := []*models.BillingCycle{}
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func insertActiveCycle(ctx context.Context, q queryRower, c *models.BillingCycle) error {
	c.Status = models.CycleActive
	c.EndDate = nil
	c.GovernmentCollectionDate = nil
	err := q.QueryRow(ctx,
		`INSERT INTO billing_cycles (start_date, status, notes)
		 VALUES ($1, 'active', $2)
		 RETURNING id, created_at, updated_at`,
		c.StartDate, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err, activeCycleIndex) {
		return apperr.Wrap(apperr.KindConflict, err, msgActiveCycleExists)
	}
	return err
}

// Create starts a new active cycle. The partial unique index rejects a second
// active cycle even when two requests race.
func (r *BillingCycleRepository) Create(ctx context.Context, c *models.BillingCycle) error {
	return insertActiveCycle(ctx, r.DB, c)
}

func (r *BillingCycleRepository) GetActive(ctx context.Context) (*models.BillingCycle, error) {
	c, err := scanCycle(r.DB.QueryRow(ctx, `SELECT `+cycleColumns+` FROM billing_cycles WHERE status = 'active'`))
	if err != nil {
		return nil, translate(err, msgNoActiveCycle, "")
	}
	return c, nil
}

func (r *BillingCycleRepository) Get(ctx context.Context, id int) (*models.BillingCycle, error) {
	c, err := scanCycle(r.DB.QueryRow(ctx, `SELECT `+cycleColumns+` FROM billing_cycles WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, msgCycleNotFound, "")
	}
	return c, nil
}

// List returns every cycle, newest start first.
func (r *BillingCycleRepository) List(ctx context.Context) ([]*models.BillingCycle, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+cycleColumns+` FROM billing_cycles ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectCycles(rows)
}

// ListClosed returns closed cycles, oldest start first.
func (r *BillingCycleRepository) ListClosed(ctx context.Context) ([]*models.BillingCycle, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+cycleColumns+` FROM billing_cycles WHERE status = 'closed' ORDER BY start_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collectCycles(rows)
}

func (r *BillingCycleRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM billing_cycles`).Scan(&n)
	return n, err
}

// PreviousClosed returns the most recently ended closed cycle whose end is at
// or before before, or nil when there is none.
func (r *BillingCycleRepository) PreviousClosed(ctx context.Context, before time.Time, excludeID int) (*models.BillingCycle, error) {
	c, err := scanCycle(r.DB.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM billing_cycles
		 WHERE status = 'closed' AND end_date <= $1 AND id <> $2
		 ORDER BY end_date DESC, id DESC
		 LIMIT 1`, before, excludeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *BillingCycleRepository) Update(ctx context.Context, c *models.BillingCycle) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE billing_cycles
		 SET start_date = $1, end_date = $2, notes = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4
		 RETURNING updated_at`,
		c.StartDate, c.EndDate, c.Notes, c.ID,
	).Scan(&c.UpdatedAt)
	return translate(err, msgCycleNotFound, "")
}

// Delete removes a cycle. The readings FK is ON DELETE RESTRICT, so a cycle
// that is still referenced surfaces as a conflict.
func (r *BillingCycleRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM billing_cycles WHERE id = $1`, id)
	if err != nil {
		return translate(err, msgCycleNotFound, msgCycleHasReferences)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgCycleNotFound)
	}
	return nil
}

// CloseActive locks the active cycle, lets closeFn validate it, fill in its
// closing fields and describe the successor, then persists both in one
// transaction.
func (r *BillingCycleRepository) CloseActive(
	ctx context.Context,
	closeFn func(active *models.BillingCycle) (*models.BillingCycle, error),
) (closed, opened *models.BillingCycle, err error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	active, err := scanCycle(tx.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM billing_cycles WHERE status = 'active' FOR UPDATE`))
	if err != nil {
		return nil, nil, translate(err, "No active billing cycle found to close.", "")
	}

	next, err := closeFn(active)
	if err != nil {
		return nil, nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE billing_cycles
		 SET status = 'closed', end_date = $1, government_collection_date = $2, notes = $3,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4
		 RETURNING updated_at`,
		active.EndDate, active.GovernmentCollectionDate, active.Notes, active.ID,
	).Scan(&active.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}
	active.Status = models.CycleClosed

	if err := insertActiveCycle(ctx, tx, next); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return active, next, nil
}
