package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watts-backend/internal/models"
)

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// queryRower is satisfied by *pgxpool.Pool and pgx.Tx
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type MeterRepository struct {
	DB *pgxpool.Pool
}

func NewMeterRepository(db *pgxpool.Pool) *MeterRepository {
	return &MeterRepository{DB: db}
}

const meterColumns = `id, name, meter_type, is_general_purpose, is_currently_active_general, description, created_at, updated_at`

func scanMeter(row scanner) (*models.Meter, error) {
	m := &models.Meter{}
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.MeterType,
		&m.IsGeneralPurpose,
		&m.IsCurrentlyActiveGeneral,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a meter. When it is flagged as the active general meter the
// previous holder is cleared in the same transaction.
func (r *MeterRepository) Create(ctx context.Context, m *models.Meter) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if m.IsCurrentlyActiveGeneral {
		if _, err := tx.Exec(ctx,
			`UPDATE meters SET is_currently_active_general = FALSE, updated_at = CURRENT_TIMESTAMP
			 WHERE is_currently_active_general`); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO meters (name, meter_type, is_general_purpose, is_currently_active_general, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		m.Name, string(m.MeterType), m.IsGeneralPurpose, m.IsCurrentlyActiveGeneral, m.Description,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return translate(err, "Meter not found.", msgMeterNameTaken)
	}

	return tx.Commit(ctx)
}

func (r *MeterRepository) Get(ctx context.Context, id int) (*models.Meter, error) {
	m, err := scanMeter(r.DB.QueryRow(ctx, `SELECT `+meterColumns+` FROM meters WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "Meter not found.", "")
	}
	return m, nil
}

func (r *MeterRepository) List(ctx context.Context) ([]*models.Meter, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+meterColumns+` FROM meters ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meters := []*models.Meter{}
	for rows.Next() {
		m, err := scanMeter(rows)
		if err != nil {
			return nil, err
		}
		meters = append(meters, m)
	}
	return meters, rows.Err()
}

func (r *MeterRepository) Update(ctx context.Context, m *models.Meter) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE meters
		 SET name = $1, meter_type = $2, is_general_purpose = $3,
		     is_currently_active_general = $4, description = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING updated_at`,
		m.Name, string(m.MeterType), m.IsGeneralPurpose, m.IsCurrentlyActiveGeneral, m.Description, m.ID,
	).Scan(&m.UpdatedAt)
	return translate(err, "Meter not found.", msgMeterNameTaken)
}

// SetActiveGeneral makes id the only active general-purpose meter. check runs
// on the locked row before anything changes.
func (r *MeterRepository) SetActiveGeneral(ctx context.Context, id int, check func(*models.Meter) error) (*models.Meter, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	m, err := scanMeter(tx.QueryRow(ctx, `SELECT `+meterColumns+` FROM meters WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, "Meter not found.", "")
	}
	if err := check(m); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE meters SET is_currently_active_general = FALSE, updated_at = CURRENT_TIMESTAMP
		 WHERE is_currently_active_general AND id <> $1`, id); err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx,
		`UPDATE meters SET is_currently_active_general = TRUE, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING updated_at`, id,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return nil, translate(err, "Meter not found.", msgActiveGeneralRace)
	}
	m.IsCurrentlyActiveGeneral = true

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
