package models

import "time"

type CycleSummary struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	TotalConsumption float64 `json:"totalConsumption"`
	TotalCost        float64 `json:"totalCost"`
}

// BreakdownLabelKey is the MeterBreakdownRow key holding the cycle label. It
// is reserved and cannot be used as a meter name.
const BreakdownLabelKey = "name"

// MeterBreakdownRow is one chart row: BreakdownLabelKey holds the cycle label
// and every other key is a meter name mapped to its consumption.
type MeterBreakdownRow map[string]interface{}

type CycleStatement struct {
	Cycle             *BillingCycle  `json:"cycle"`
	SlabConfiguration *SlabConfigRef `json:"slabConfiguration"`
	Meters            []MeterCharge  `json:"meters"`
	TotalUnits        float64        `json:"totalUnits"`
	TotalCost         float64        `json:"totalCost"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

type MeterCharge struct {
	MeterID   int          `json:"meterId"`
	MeterName string       `json:"meterName"`
	MeterType MeterType    `json:"meterType"`
	Units     float64      `json:"units"`
	Cost      float64      `json:"cost"`
	Slabs     []SlabCharge `json:"slabs"`
}

type ArchiveResult struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}
