// Package tariff prices a cycle's consumption against a slab configuration.
//
// The whole consumption is billed against exactly one slab list: the <=500
// list when consumption is at most SlabThreshold, otherwise the >500 list.
// Within the list, units are billed marginally tier by tier.
package tariff

import (
	"sort"

	"github.com/shopspring/decimal"

	"watts-backend/internal/models"
)

const SlabThreshold = 500

// Result is a priced consumption with the tiers it touched.
type Result struct {
	Units float64             `json:"units"`
	Cost  float64             `json:"cost"`
	Lines []models.SlabCharge `json:"lines"`
}

// Calculate returns the cost of units, rounded to 2 decimal places. A nil
// configuration or negative units cost nothing.
func Calculate(units float64, cfg *models.SlabRateConfiguration) float64 {
	return Apply(units, cfg).Cost
}

// Apply prices units and records each tier's share.
func Apply(units float64, cfg *models.SlabRateConfiguration) Result {
	res := Result{Units: units, Lines: []models.SlabCharge{}}
	if cfg == nil || units < 0 {
		return res
	}

	consumed := decimal.NewFromFloat(units)
	billed := decimal.Zero
	total := decimal.Zero
	one := decimal.NewFromInt(1)

	for _, slab := range sortedSlabs(SelectSlabs(units, cfg)) {
		floor := decimal.NewFromFloat(slab.FromUnit).Sub(one)
		if !consumed.GreaterThan(floor) {
			break
		}
		segment := decimal.Min(consumed, decimal.NewFromFloat(slab.ToUnit)).Sub(decimal.Max(billed, floor))
		if segment.IsPositive() {
			rate := decimal.NewFromFloat(slab.Rate)
			amount := segment.Mul(rate)
			total = total.Add(amount)
			billed = billed.Add(segment)
			res.Lines = append(res.Lines, models.SlabCharge{
				FromUnit: slab.FromUnit,
				ToUnit:   slab.ToUnit,
				Units:    segment.InexactFloat64(),
				Rate:     slab.Rate,
				Amount:   amount.Round(2).InexactFloat64(),
			})
		}
		if billed.GreaterThanOrEqual(consumed) {
			break
		}
	}

	res.Cost = total.Round(2).InexactFloat64()
	return res
}

// SelectSlabs picks the list that governs the whole consumption.
func SelectSlabs(units float64, cfg *models.SlabRateConfiguration) models.SlabRules {
	if units <= SlabThreshold {
		return cfg.SlabsLessThanOrEqual500
	}
	return cfg.SlabsGreaterThan500
}

func sortedSlabs(rules models.SlabRules) models.SlabRules {
	out := make(models.SlabRules, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FromUnit < out[j].FromUnit })
	return out
}
