package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
)

const msgReadingNotFound = "Reading not found."

type ReadingRepository struct {
	DB *pgxpool.Pool
}

func NewReadingRepository(db *pgxpool.Pool) *ReadingRepository {
	return &ReadingRepository{DB: db}
}

// readingSelect joins the meter and cycle so reads come back populated.
const readingSelect = `
	SELECT r.id, r.meter_id, r.billing_cycle_id, r.date, r.reading_value,
	       r.units_consumed_since_previous, r.is_estimated, r.notes, r.created_at, r.updated_at,
	       m.name, m.meter_type,
	       c.start_date, c.end_date, c.status
	FROM readings r
	JOIN meters m ON m.id = r.meter_id
	JOIN billing_cycles c ON c.id = r.billing_cycle_id`

const readingOrder = ` ORDER BY r.date DESC, r.created_at DESC, r.id DESC`

func scanReading(row scanner) (*models.Reading, error) {
	rd := &models.Reading{Meter: &models.MeterRef{}, BillingCycle: &models.CycleRef{}}
	err := row.Scan(
		&rd.ID,
		&rd.MeterID,
		&rd.BillingCycleID,
		&rd.Date,
		&rd.ReadingValue,
		&rd.UnitsConsumedSincePrevious,
		&rd.IsEstimated,
		&rd.Notes,
		&rd.CreatedAt,
		&rd.UpdatedAt,
		&rd.Meter.Name,
		&rd.Meter.MeterType,
		&rd.BillingCycle.StartDate,
		&rd.BillingCycle.EndDate,
		&rd.BillingCycle.Status,
	)
	if err != nil {
		return nil, err
	}
	rd.Meter.ID = rd.MeterID
	rd.BillingCycle.ID = rd.BillingCycleID
	return rd, nil
}

// latestBefore finds the newest reading for a meter. A zero before means no
// date bound; excludeID skips the reading being edited.
func latestBefore(ctx context.Context, q queryRower, meterID int, before time.Time, excludeID int) (*models.Reading, error) {
	query := readingSelect + ` WHERE r.meter_id = $1 AND r.id <> $2`
	args := []any{meterID, excludeID}
	if !before.IsZero() {
		query += ` AND r.date < $3`
		args = append(args, before)
	}
	rd, err := scanReading(q.QueryRow(ctx, query+readingOrder+` LIMIT 1`, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rd, err
}

// lockMeter takes the per-meter write lock that serialises reading inserts
// and edits for one meter.
func lockMeter(ctx context.Context, tx pgx.Tx, meterID int) (*models.MeterRef, error) {
	ref := &models.MeterRef{ID: meterID}
	err := tx.QueryRow(ctx,
		`SELECT name, meter_type FROM meters WHERE id = $1 FOR UPDATE`, meterID,
	).Scan(&ref.Name, &ref.MeterType)
	if err != nil {
		return nil, translate(err, "Meter not found.", "")
	}
	return ref, nil
}

// Record appends a reading. Inside one transaction it share-locks the active
// cycle, locks the meter, loads the meter's latest reading and hands both to
// check, which validates and fills in the derived fields. active is nil when
// no cycle is open.
func (r *ReadingRepository) Record(
	ctx context.Context,
	rd *models.Reading,
	check func(active *models.BillingCycle, prev *models.Reading) error,
) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	active, err := scanCycle(tx.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM billing_cycles WHERE status = 'active' FOR SHARE`))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	meter, err := lockMeter(ctx, tx, rd.MeterID)
	if err != nil {
		return err
	}

	prev, err := latestBefore(ctx, tx, rd.MeterID, time.Time{}, 0)
	if err != nil {
		return err
	}

	if err := check(active, prev); err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO readings (meter_id, billing_cycle_id, date, reading_value,
		                       units_consumed_since_previous, is_estimated, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		rd.MeterID, rd.BillingCycleID, rd.Date, rd.ReadingValue,
		rd.UnitsConsumedSincePrevious, rd.IsEstimated, rd.Notes,
	).Scan(&rd.ID, &rd.CreatedAt, &rd.UpdatedAt)
	if err != nil {
		return translate(err, msgReadingNotFound, "Reading references a missing meter or billing cycle.")
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	rd.Meter = meter
	if active != nil {
		rd.BillingCycle = &models.CycleRef{ID: active.ID, StartDate: active.StartDate, EndDate: active.EndDate, Status: active.Status}
	}
	return nil
}

func (r *ReadingRepository) Get(ctx context.Context, id int) (*models.Reading, error) {
	rd, err := scanReading(r.DB.QueryRow(ctx, readingSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, translate(err, msgReadingNotFound, "")
	}
	return rd, nil
}

// List returns one page of readings matching f, newest first, and the total
// number of matches.
func (r *ReadingRepository) List(ctx context.Context, f models.ReadingFilter) ([]*models.Reading, int, error) {
	where, args := readingWhere(f)

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM readings r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := readingSelect + where + readingOrder +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.DB.Query(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	readings := []*models.Reading{}
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, 0, err
		}
		readings = append(readings, rd)
	}
	return readings, total, rows.Err()
}

func readingWhere(f models.ReadingFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.MeterID > 0 {
		add("r.meter_id = $%d", f.MeterID)
	}
	if f.BillingCycleID > 0 {
		add("r.billing_cycle_id = $%d", f.BillingCycleID)
	}
	if f.StartDate != nil {
		add("r.date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("r.date <= $%d", *f.EndDate)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update rewrites a reading. check receives the latest reading strictly
// before the (possibly new) date and recomputes the derived delta. Later
// readings are left as they are.
func (r *ReadingRepository) Update(
	ctx context.Context,
	rd *models.Reading,
	check func(prev *models.Reading) error,
) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := lockMeter(ctx, tx, rd.MeterID); err != nil {
		return err
	}

	prev, err := latestBefore(ctx, tx, rd.MeterID, rd.Date, rd.ID)
	if err != nil {
		return err
	}
	if err := check(prev); err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`UPDATE readings
		 SET date = $1, reading_value = $2, units_consumed_since_previous = $3,
		     is_estimated = $4, notes = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING updated_at`,
		rd.Date, rd.ReadingValue, rd.UnitsConsumedSincePrevious, rd.IsEstimated, rd.Notes, rd.ID,
	).Scan(&rd.UpdatedAt)
	if err != nil {
		return translate(err, msgReadingNotFound, "")
	}
	return tx.Commit(ctx)
}

func (r *ReadingRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM readings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgReadingNotFound)
	}
	return nil
}

func (r *ReadingRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM readings`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ReadingRepository) CountByCycle(ctx context.Context, cycleID int) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM readings WHERE billing_cycle_id = $1`, cycleID).Scan(&n)
	return n, err
}

// ConsumptionByMeter sums units consumed per meter within one cycle. Meters
// without readings are absent from the map.
func (r *ReadingRepository) ConsumptionByMeter(ctx context.Context, cycleID int) (map[int]float64, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT meter_id, COALESCE(SUM(units_consumed_since_previous), 0)
		 FROM readings
		 WHERE billing_cycle_id = $1
		 GROUP BY meter_id`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]float64)
	for rows.Next() {
		var meterID int
		var units float64
		if err := rows.Scan(&meterID, &units); err != nil {
			return nil, err
		}
		out[meterID] = units
	}
	return out, rows.Err()
}
