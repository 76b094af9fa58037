package models

import (
	"strings"
	"time"

	"watts-backend/internal/apperr"
)

type MeterType string

const (
	MeterTypeSinglePhase MeterType = "1-phase"
	MeterTypeThreePhase  MeterType = "3-phase"
)

func (t MeterType) Valid() bool {
	return t == MeterTypeSinglePhase || t == MeterTypeThreePhase
}

type Meter struct {
	ID                       int       `json:"id"`
	Name                     string    `json:"name"`
	MeterType                MeterType `json:"meterType"`
	IsGeneralPurpose         bool      `json:"isGeneralPurpose"`
	IsCurrentlyActiveGeneral bool      `json:"isCurrentlyActiveGeneral"` // at most one meter system-wide
	Description              string    `json:"description"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

// MeterRef is the populated meter on a reading
type MeterRef struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	MeterType MeterType `json:"meterType"`
}

type CreateMeterRequest struct {
	Name                     string    `json:"name"`
	MeterType                MeterType `json:"meterType"`
	IsGeneralPurpose         *bool     `json:"isGeneralPurpose"`
	IsCurrentlyActiveGeneral bool      `json:"isCurrentlyActiveGeneral"`
	Description              string    `json:"description"`
}

func (r *CreateMeterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || r.MeterType == "" || r.IsGeneralPurpose == nil {
		return apperr.Validation("Name, meter type, and general purpose flag are required.")
	}
	if !r.MeterType.Valid() {
		return apperr.Validation("Meter type must be '1-phase' or '3-phase'.")
	}
	return checkMeterName(r.Name)
}

func checkMeterName(name string) error {
	if strings.EqualFold(name, BreakdownLabelKey) {
		return apperr.Validation("Meter name %q is reserved.", name)
	}
	return nil
}

// Meter builds the record to insert. The active-general flag only sticks on
// general-purpose meters.
func (r *CreateMeterRequest) Meter() *Meter {
	general := r.IsGeneralPurpose != nil && *r.IsGeneralPurpose
	return &Meter{
		Name:                     r.Name,
		MeterType:                r.MeterType,
		IsGeneralPurpose:         general,
		IsCurrentlyActiveGeneral: general && r.IsCurrentlyActiveGeneral,
		Description:              strings.TrimSpace(r.Description),
	}
}

type UpdateMeterRequest struct {
	Name             *string    `json:"name"`
	MeterType        *MeterType `json:"meterType"`
	IsGeneralPurpose *bool      `json:"isGeneralPurpose"`
	Description      *string    `json:"description"`
}

// Apply validates the patch and merges it into m.
func (r *UpdateMeterRequest) Apply(m *Meter) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return apperr.Validation("Meter name cannot be empty.")
		}
		if err := checkMeterName(name); err != nil {
			return err
		}
		m.Name = name
	}
	if r.MeterType != nil {
		if !r.MeterType.Valid() {
			return apperr.Validation("Meter type must be '1-phase' or '3-phase'.")
		}
		m.MeterType = *r.MeterType
	}
	if r.Description != nil {
		m.Description = strings.TrimSpace(*r.Description)
	}
	if r.IsGeneralPurpose != nil {
		m.IsGeneralPurpose = *r.IsGeneralPurpose
		if !m.IsGeneralPurpose {
			m.IsCurrentlyActiveGeneral = false
		}
	}
	return nil
}
