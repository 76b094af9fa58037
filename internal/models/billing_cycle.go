package models

import (
	"strings"
	"time"

	"watts-backend/internal/apperr"
	"watts-backend/internal/timeutil"
)

type CycleStatus string

const (
	CycleActive CycleStatus = "active"
	CycleClosed CycleStatus = "closed" // terminal
)

func (s CycleStatus) Valid() bool {
	return s == CycleActive || s == CycleClosed
}

const DefaultNewCycleNotes = "New cycle started automatically."

type BillingCycle struct {
	ID                       int         `json:"id"`
	StartDate                time.Time   `json:"startDate"`
	EndDate                  *time.Time  `json:"endDate"`
	GovernmentCollectionDate *time.Time  `json:"governmentCollectionDate"`
	Status                   CycleStatus `json:"status"`
	Notes                    string      `json:"notes"`
	CreatedAt                time.Time   `json:"createdAt"`
	UpdatedAt                time.Time   `json:"updatedAt"`
}

func (c *BillingCycle) IsActive() bool { return c.Status == CycleActive }

// Label renders the span shown on charts. Active cycles have no end yet.
func (c *BillingCycle) Label() string {
	end := c.StartDate
	if c.EndDate != nil {
		end = *c.EndDate
	}
	return timeutil.RangeLabel(c.StartDate, end)
}

// CycleRef is the populated cycle on a reading
type CycleRef struct {
	ID        int         `json:"id"`
	StartDate time.Time   `json:"startDate"`
	EndDate   *time.Time  `json:"endDate"`
	Status    CycleStatus `json:"status"`
}

type StartCycleRequest struct {
	StartDate *Date  `json:"startDate"`
	Notes     string `json:"notes"`
}

func (r *StartCycleRequest) Validate() error {
	if r.StartDate == nil || r.StartDate.IsZero() {
		return apperr.Validation("Start date is required to start a new billing cycle.")
	}
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}

type CloseCycleRequest struct {
	GovernmentCollectionDate *Date  `json:"governmentCollectionDate"`
	NotesForClosedCycle      string `json:"notesForClosedCycle"`
	NotesForNewCycle         string `json:"notesForNewCycle"`
}

func (r *CloseCycleRequest) Validate() error {
	if r.GovernmentCollectionDate == nil || r.GovernmentCollectionDate.IsZero() {
		return apperr.Validation("Government collection date is required to close the cycle.")
	}
	r.NotesForClosedCycle = strings.TrimSpace(r.NotesForClosedCycle)
	r.NotesForNewCycle = strings.TrimSpace(r.NotesForNewCycle)
	return nil
}

func (r *CloseCycleRequest) CollectionDate() time.Time {
	return dateOrZero(r.GovernmentCollectionDate)
}

type CloseCycleResult struct {
	Message        string        `json:"message"`
	ClosedCycle    *BillingCycle `json:"closedCycle"`
	NewActiveCycle *BillingCycle `json:"newActiveCycle"`
}

// UpdateCycleRequest corrects dates or notes. Status is not editable here.
type UpdateCycleRequest struct {
	StartDate *Date        `json:"startDate"`
	EndDate   *Date        `json:"endDate"`
	Notes     *string      `json:"notes"`
	Status    *CycleStatus `json:"status"`
}

func (r *UpdateCycleRequest) Apply(c *BillingCycle) error {
	if r.Status != nil && *r.Status != c.Status {
		return apperr.Validation("Cycle status cannot be changed directly. Use close-current to close the active cycle.")
	}
	if r.StartDate != nil && !r.StartDate.IsZero() {
		c.StartDate = r.StartDate.Time
	}
	if r.EndDate != nil && !r.EndDate.IsZero() {
		if c.IsActive() {
			return apperr.Validation("An active cycle cannot have an end date.")
		}
		end := r.EndDate.Time
		c.EndDate = &end
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return apperr.Validation("End date cannot be before start date.")
	}
	if r.Notes != nil {
		c.Notes = strings.TrimSpace(*r.Notes)
	}
	return nil
}
