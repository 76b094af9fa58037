package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"watts-backend/internal/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Constraint names from migrations/001_init.sql.
const (
	meterNameKey       = "meters_name_key"
	activeGeneralIndex = "meters_one_active_general"
	activeCycleIndex   = "billing_cycles_one_active"
	slabNameKey        = "slab_rate_configs_config_name_key"
	activeSlabIndex    = "slab_rate_configs_one_active"
)

const (
	msgMeterNameTaken    = "A meter with this name already exists."
	msgActiveGeneralRace = "Another meter was set as the active general meter at the same time. Please retry."
	msgActiveSlabRace    = "Another slab rate configuration was activated at the same time. Please retry."
)

// constraintMessages gives each unique constraint its own conflict message so
// a lost race on an "only one active" index is not reported as a duplicate name.
var constraintMessages = map[string]string{
	meterNameKey:       msgMeterNameTaken,
	activeGeneralIndex: msgActiveGeneralRace,
	activeCycleIndex:   msgActiveCycleExists,
	slabNameKey:        msgSlabNameTaken,
	activeSlabIndex:    msgActiveSlabRace,
}

// translate maps driver errors onto apperr kinds. notFound is the message
// used for pgx.ErrNoRows; conflict is the fallback for unique and FK
// violations on constraints not listed in constraintMessages.
func translate(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.KindNotFound, err, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if msg, ok := constraintMessages[pgErr.ConstraintName]; ok {
				return apperr.Wrap(apperr.KindConflict, err, msg)
			}
			return apperr.Wrap(apperr.KindConflict, err, conflict)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindConflict, err, conflict)
		}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation &&
		(constraint == "" || pgErr.ConstraintName == constraint)
}
