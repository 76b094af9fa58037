package services

import (
	"context"
	"testing"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
)

func TestCreateMeterActiveGeneralIsExclusive(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	first, err := f.meters.CreateMeter(ctx, &models.CreateMeterRequest{
		Name: "Main", MeterType: models.MeterTypeSinglePhase,
		IsGeneralPurpose: boolPtr(true), IsCurrentlyActiveGeneral: true,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := f.meters.CreateMeter(ctx, &models.CreateMeterRequest{
		Name: "Backup", MeterType: models.MeterTypeThreePhase,
		IsGeneralPurpose: boolPtr(true), IsCurrentlyActiveGeneral: true,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, _ := f.meters.GetMeter(ctx, first.ID)
	if got.IsCurrentlyActiveGeneral {
		t.Fatalf("first meter should no longer be active general")
	}
	if !second.IsCurrentlyActiveGeneral {
		t.Fatalf("second meter should be active general")
	}

	_, err = f.meters.CreateMeter(ctx, &models.CreateMeterRequest{
		Name: "Main", MeterType: models.MeterTypeSinglePhase, IsGeneralPurpose: boolPtr(false),
	})
	wantKind(t, err, apperr.KindConflict)
}

func TestSetActiveGeneral(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	general := mustMeter(t, f, "Main")
	pump, err := f.meters.CreateMeter(ctx, &models.CreateMeterRequest{
		Name: "Pump", MeterType: models.MeterTypeThreePhase, IsGeneralPurpose: boolPtr(false),
		IsCurrentlyActiveGeneral: true,
	})
	if err != nil {
		t.Fatalf("create pump: %v", err)
	}
	if pump.IsCurrentlyActiveGeneral {
		t.Fatalf("non-general meter must not be active general")
	}

	_, err = f.meters.SetActiveGeneral(ctx, pump.ID)
	wantKind(t, err, apperr.KindValidation)
	_, err = f.meters.SetActiveGeneral(ctx, 999)
	wantKind(t, err, apperr.KindNotFound)

	m, err := f.meters.SetActiveGeneral(ctx, general.ID)
	if err != nil || !m.IsCurrentlyActiveGeneral {
		t.Fatalf("SetActiveGeneral = %+v, %v", m, err)
	}
}

func TestUpdateMeterClearsActiveFlag(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()
	m := mustMeter(t, f, "Main")
	if _, err := f.meters.SetActiveGeneral(ctx, m.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}

	got, err := f.meters.UpdateMeter(ctx, m.ID, &models.UpdateMeterRequest{IsGeneralPurpose: boolPtr(false)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.IsGeneralPurpose || got.IsCurrentlyActiveGeneral {
		t.Fatalf("updated meter = %+v", got)
	}
}

func TestSlabConfigurationLifecycle(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	first := mustSlabs(t, f, "2023", true)
	if !first.EffectiveDate.Equal(testNow) {
		t.Fatalf("effective date = %v, want now", first.EffectiveDate)
	}
	second := mustSlabs(t, f, "2024", false)

	active, err := f.slabs.GetActive(ctx)
	if err != nil || active.ID != first.ID {
		t.Fatalf("active = %+v, %v", active, err)
	}

	wantKind(t, f.slabs.Delete(ctx, first.ID), apperr.KindConflict)

	if _, err := f.slabs.Activate(ctx, second.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	active, _ = f.slabs.GetActive(ctx)
	if active.ID != second.ID {
		t.Fatalf("active after switch = %d, want %d", active.ID, second.ID)
	}
	if err := f.slabs.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete inactive: %v", err)
	}

	list, _ := f.slabs.ListConfigurations(ctx)
	if len(list) != 1 {
		t.Fatalf("got %d configurations, want 1", len(list))
	}
}

func TestCreateSlabConfigurationValidation(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()
	valid := models.SlabRules{{FromUnit: 1, ToUnit: 100, Rate: 2}}

	tests := []struct {
		name string
		req  models.CreateSlabRateRequest
		want apperr.Kind
	}{
		{"missing name", models.CreateSlabRateRequest{SlabsLessThanOrEqual500: valid, SlabsGreaterThan500: valid}, apperr.KindValidation},
		{"missing list", models.CreateSlabRateRequest{ConfigName: "x", SlabsLessThanOrEqual500: valid}, apperr.KindValidation},
		{"inverted slab", models.CreateSlabRateRequest{
			ConfigName:              "x",
			SlabsLessThanOrEqual500: models.SlabRules{{FromUnit: 100, ToUnit: 50, Rate: 2}},
			SlabsGreaterThan500:     valid,
		}, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.slabs.CreateConfiguration(ctx, &tt.req)
			wantKind(t, err, tt.want)
		})
	}

	mustSlabs(t, f, "dup", false)
	_, err := f.slabs.CreateConfiguration(ctx, &models.CreateSlabRateRequest{
		ConfigName: "dup", SlabsLessThanOrEqual500: valid, SlabsGreaterThan500: valid,
	})
	wantKind(t, err, apperr.KindConflict)
}

func TestSettings(t *testing.T) {
	f := newFixture(testNow)
	ctx := context.Background()

	s, err := f.settings.GetSettings(ctx)
	if err != nil || s.ConsumptionTarget != models.DefaultConsumptionTarget {
		t.Fatalf("defaults = %+v, %v", s, err)
	}

	_, err = f.settings.UpdateSettings(ctx, &models.UpdateSettingsRequest{ConsumptionTarget: floatPtr(0)})
	wantKind(t, err, apperr.KindValidation)

	s, err = f.settings.UpdateSettings(ctx, &models.UpdateSettingsRequest{ConsumptionTarget: floatPtr(350)})
	if err != nil || s.ConsumptionTarget != 350 {
		t.Fatalf("update = %+v, %v", s, err)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		units, limit float64
		remaining    *float64
		percent      float64
	}{
		{0, 500, floatPtr(500), 0},
		{500, 500, floatPtr(0), 100},
		{500.01, 500, nil, 100},
		{123.456, 500, floatPtr(376.54), 24.69},
	}
	for _, tt := range tests {
		rem, p := progress(tt.units, tt.limit)
		if (rem == nil) != (tt.remaining == nil) || (rem != nil && *rem != *tt.remaining) || p != tt.percent {
			t.Errorf("progress(%v, %v) = %v, %v", tt.units, tt.limit, rem, p)
		}
	}
}
