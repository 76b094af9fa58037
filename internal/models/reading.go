package models

import (
	"strings"
	"time"

	"watts-backend/internal/apperr"
)

type Reading struct {
	ID                         int       `json:"id"`
	MeterID                    int       `json:"meterId"`
	BillingCycleID             int       `json:"billingCycleId"`
	Date                       time.Time `json:"date"`
	ReadingValue               float64   `json:"readingValue"`
	UnitsConsumedSincePrevious float64   `json:"unitsConsumedSincePrevious"`
	IsEstimated                bool      `json:"isEstimated"`
	Notes                      string    `json:"notes"`
	Meter                      *MeterRef `json:"meter,omitempty"`
	BillingCycle               *CycleRef `json:"billingCycle,omitempty"`
	CreatedAt                  time.Time `json:"createdAt"`
	UpdatedAt                  time.Time `json:"updatedAt"`
}

type CreateReadingRequest struct {
	MeterID      int      `json:"meterId"`
	Date         *Date    `json:"date"`
	ReadingValue *float64 `json:"readingValue"`
	IsEstimated  bool     `json:"isEstimated"`
	Notes        string   `json:"notes"`
}

func (r *CreateReadingRequest) Validate() error {
	if r.MeterID <= 0 || r.Date == nil || r.Date.IsZero() || r.ReadingValue == nil {
		return apperr.Validation("Meter ID, date, and reading value are required.")
	}
	if *r.ReadingValue < 0 {
		return apperr.Validation("Reading value cannot be negative.")
	}
	return nil
}

func (r *CreateReadingRequest) Reading() *Reading {
	return &Reading{
		MeterID:      r.MeterID,
		Date:         r.Date.Time,
		ReadingValue: *r.ReadingValue,
		IsEstimated:  r.IsEstimated,
		Notes:        strings.TrimSpace(r.Notes),
	}
}

type UpdateReadingRequest struct {
	Date         *Date    `json:"date"`
	ReadingValue *float64 `json:"readingValue"`
	IsEstimated  *bool    `json:"isEstimated"`
	Notes        *string  `json:"notes"`
}

func (r *UpdateReadingRequest) Apply(rd *Reading) error {
	if r.ReadingValue != nil {
		if *r.ReadingValue < 0 {
			return apperr.Validation("Reading value cannot be negative.")
		}
		rd.ReadingValue = *r.ReadingValue
	}
	if r.Date != nil && !r.Date.IsZero() {
		rd.Date = r.Date.Time
	}
	if r.IsEstimated != nil {
		rd.IsEstimated = *r.IsEstimated
	}
	if r.Notes != nil {
		rd.Notes = strings.TrimSpace(*r.Notes)
	}
	return nil
}

const (
	DefaultReadingPageSize = 20
	MaxReadingPageSize     = 500
	// MaxReadingPage keeps (Page-1)*Limit well inside int range.
	MaxReadingPage         = 1_000_000
)

type ReadingFilter struct {
	MeterID        int
	BillingCycleID int
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	Limit          int
}

// Normalize clamps paging to sane bounds.
func (f *ReadingFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultReadingPageSize
	}
	if f.Limit > MaxReadingPageSize {
		f.Limit = MaxReadingPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Page > MaxReadingPage {
		f.Page = MaxReadingPage
	}
}

func (f ReadingFilter) Offset() int { return (f.Page - 1) * f.Limit }

type ReadingPage struct {
	Readings      []*Reading `json:"readings"`
	TotalPages    int        `json:"totalPages"`
	CurrentPage   int        `json:"currentPage"`
	TotalReadings int        `json:"totalReadings"`
}
