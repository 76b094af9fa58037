package models

import "time"

type DashboardCycle struct {
	ID          int         `json:"id"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     *time.Time  `json:"endDate"`
	Status      CycleStatus `json:"status"`
	Notes       string      `json:"notes"`
	DaysInCycle int         `json:"daysInCycle,omitempty"`
}

type MeterSummary struct {
	MeterID                  int       `json:"meterId"`
	MeterName                string    `json:"meterName"`
	MeterType                MeterType `json:"meterType"`
	IsGeneralPurpose         bool      `json:"isGeneralPurpose"`
	IsCurrentlyActiveGeneral bool      `json:"isCurrentlyActiveGeneral"`
	CurrentCycleConsumption  float64   `json:"currentCycleConsumption"`
	CurrentCycleCost         float64   `json:"currentCycleCost"`
	AverageDailyConsumption  float64   `json:"averageDailyConsumption"`
	UnitsRemainingTo500      *float64  `json:"unitsRemainingTo500"` // nil once past the threshold
	PercentageTo500          float64   `json:"percentageTo500"`
	UnitsRemainingToTarget   *float64  `json:"unitsRemainingToTarget"`
	PercentageToTarget       float64   `json:"percentageToTarget"`
	PreviousCycleConsumption float64   `json:"previousCycleConsumption"`
}

type DashboardSummary struct {
	CurrentBillingCycle     DashboardCycle  `json:"currentBillingCycle"`
	PreviousBillingCycle    *DashboardCycle `json:"previousBillingCycle"`
	ActiveSlabConfiguration *SlabConfigRef  `json:"activeSlabConfiguration"`
	ConsumptionTarget       float64         `json:"consumptionTarget"`
	MeterSummaries          []MeterSummary  `json:"meterSummaries"`
	CurrentCycleTotalBill   float64         `json:"currentCycleTotalBill"`
}
