package models

import (
	"time"

	"watts-backend/internal/apperr"
)

const (
	SettingsKey              = "user_settings"
	DefaultConsumptionTarget = 500
)

type Settings struct {
	ID                int       `json:"id"`
	ConsumptionTarget float64   `json:"consumptionTarget"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type UpdateSettingsRequest struct {
	ConsumptionTarget *float64 `json:"consumptionTarget"`
}

func (r *UpdateSettingsRequest) Validate() error {
	if r.ConsumptionTarget == nil {
		return apperr.Validation("Consumption target is required.")
	}
	if *r.ConsumptionTarget <= 0 {
		return apperr.Validation("Consumption target must be greater than zero.")
	}
	return nil
}
