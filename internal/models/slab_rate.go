package models

import (
	"strings"
	"time"

	"watts-backend/internal/apperr"
)

// SlabRule prices the units in [FromUnit, ToUnit]. An open-ended top slab
// uses a large ToUnit since JSON has no infinity.
type SlabRule struct {
	FromUnit float64 `json:"fromUnit"`
	ToUnit   float64 `json:"toUnit"`
	Rate     float64 `json:"rate"`
}

func (r SlabRule) Validate() error {
	if r.FromUnit < 0 {
		return apperr.Validation("Slab fromUnit cannot be negative (got %v).", r.FromUnit)
	}
	if r.ToUnit < r.FromUnit {
		return apperr.Validation("Slab toUnit (%v) must not be less than fromUnit (%v).", r.ToUnit, r.FromUnit)
	}
	if r.Rate < 0 {
		return apperr.Validation("Slab rate cannot be negative (got %v).", r.Rate)
	}
	return nil
}

type SlabRules []SlabRule

func (rs SlabRules) Validate(list string) error {
	if len(rs) == 0 {
		return apperr.Validation("%s must contain at least one slab.", list)
	}
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type SlabRateConfiguration struct {
	ID                      int       `json:"id"`
	ConfigName              string    `json:"configName"`
	EffectiveDate           time.Time `json:"effectiveDate"`
	IsCurrentlyActive       bool      `json:"isCurrentlyActive"`
	SlabsLessThanOrEqual500 SlabRules `json:"slabsLessThanOrEqual500"`
	SlabsGreaterThan500     SlabRules `json:"slabsGreaterThan500"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// SlabConfigRef is the summary embedded in dashboards and statements
type SlabConfigRef struct {
	ID            int       `json:"id"`
	ConfigName    string    `json:"configName"`
	EffectiveDate time.Time `json:"effectiveDate"`
}

func (c *SlabRateConfiguration) Ref() *SlabConfigRef {
	return &SlabConfigRef{ID: c.ID, ConfigName: c.ConfigName, EffectiveDate: c.EffectiveDate}
}

type CreateSlabRateRequest struct {
	ConfigName              string    `json:"configName"`
	EffectiveDate           *Date     `json:"effectiveDate"`
	IsCurrentlyActive       bool      `json:"isCurrentlyActive"`
	SlabsLessThanOrEqual500 SlabRules `json:"slabsLessThanOrEqual500"`
	SlabsGreaterThan500     SlabRules `json:"slabsGreaterThan500"`
}

func (r *CreateSlabRateRequest) Validate() error {
	r.ConfigName = strings.TrimSpace(r.ConfigName)
	if r.ConfigName == "" || r.SlabsLessThanOrEqual500 == nil || r.SlabsGreaterThan500 == nil {
		return apperr.Validation("Configuration name and both slab arrays (<=500 and >500) are required.")
	}
	if err := r.SlabsLessThanOrEqual500.Validate("slabsLessThanOrEqual500"); err != nil {
		return err
	}
	return r.SlabsGreaterThan500.Validate("slabsGreaterThan500")
}

// Configuration builds the record; effective date defaults to now.
func (r *CreateSlabRateRequest) Configuration(now time.Time) *SlabRateConfiguration {
	effective := dateOrZero(r.EffectiveDate)
	if effective.IsZero() {
		effective = now
	}
	return &SlabRateConfiguration{
		ConfigName:              r.ConfigName,
		EffectiveDate:           effective,
		IsCurrentlyActive:       r.IsCurrentlyActive,
		SlabsLessThanOrEqual500: r.SlabsLessThanOrEqual500,
		SlabsGreaterThan500:     r.SlabsGreaterThan500,
	}
}

// SlabCharge is one tier's share of a bill.
type SlabCharge struct {
	FromUnit float64 `json:"fromUnit"`
	ToUnit   float64 `json:"toUnit"`
	Units    float64 `json:"units"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}
