package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"watts-backend/internal/apperr"
	"watts-backend/internal/timeutil"
)

func boolPtr(b bool) *bool { return &b }
func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string { return &s }

func TestSlabRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    SlabRule
		wantErr bool
	}{
		{"ok", SlabRule{FromUnit: 1, ToUnit: 100, Rate: 2}, false},
		{"single unit", SlabRule{FromUnit: 5, ToUnit: 5, Rate: 2}, false},
		{"free tier", SlabRule{FromUnit: 0, ToUnit: 50, Rate: 0}, false},
		{"inverted", SlabRule{FromUnit: 100, ToUnit: 50, Rate: 2}, true},
		{"negative from", SlabRule{FromUnit: -1, ToUnit: 50, Rate: 2}, true},
		{"negative rate", SlabRule{FromUnit: 1, ToUnit: 50, Rate: -0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation kind, got %v", apperr.KindOf(err))
			}
		})
	}
}

func TestCreateSlabRateRequestValidate(t *testing.T) {
	valid := SlabRules{{FromUnit: 1, ToUnit: 100, Rate: 2}}
	tests := []struct {
		name    string
		req     CreateSlabRateRequest
		wantErr bool
	}{
		{"ok", CreateSlabRateRequest{ConfigName: " Summer ", SlabsLessThanOrEqual500: valid, SlabsGreaterThan500: valid}, false},
		{"missing name", CreateSlabRateRequest{SlabsLessThanOrEqual500: valid, SlabsGreaterThan500: valid}, true},
		{"missing list", CreateSlabRateRequest{ConfigName: "x", SlabsLessThanOrEqual500: valid}, true},
		{"empty list", CreateSlabRateRequest{ConfigName: "x", SlabsLessThanOrEqual500: valid, SlabsGreaterThan500: SlabRules{}}, true},
		{"bad rule", CreateSlabRateRequest{ConfigName: "x", SlabsLessThanOrEqual500: SlabRules{{FromUnit: 10, ToUnit: 1, Rate: 1}}, SlabsGreaterThan500: valid}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSlabRateRequestDefaultsEffectiveDate(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, timeutil.IST)
	req := CreateSlabRateRequest{ConfigName: "x"}
	if cfg := req.Configuration(now); !cfg.EffectiveDate.Equal(now) {
		t.Fatalf("effective date = %v", cfg.EffectiveDate)
	}
}

func TestCreateMeterRequest(t *testing.T) {
	req := CreateMeterRequest{Name: "  Main  ", MeterType: MeterTypeSinglePhase, IsGeneralPurpose: boolPtr(false), IsCurrentlyActiveGeneral: true}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	m := req.Meter()
	if m.Name != "Main" {
		t.Fatalf("name not trimmed: %q", m.Name)
	}
	if m.IsCurrentlyActiveGeneral {
		t.Fatal("non-general meter must not be active general")
	}

	bad := CreateMeterRequest{Name: "x", MeterType: "2-phase", IsGeneralPurpose: boolPtr(true)}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected invalid meter type")
	}
	missing := CreateMeterRequest{Name: "x", MeterType: MeterTypeThreePhase}
	if err := missing.Validate(); err == nil {
		t.Fatal("expected missing general purpose flag")
	}
}

func TestMeterNameReservedForBreakdownLabel(t *testing.T) {
	req := CreateMeterRequest{Name: "name", MeterType: MeterTypeSinglePhase, IsGeneralPurpose: boolPtr(true)}
	if apperr.KindOf(req.Validate()) != apperr.KindValidation {
		t.Fatal("create must reject the label key")
	}
	m := &Meter{Name: "Main", MeterType: MeterTypeSinglePhase}
	patch := UpdateMeterRequest{Name: strPtr("NAME")}
	if apperr.KindOf(patch.Apply(m)) != apperr.KindValidation {
		t.Fatal("update must reject the label key")
	}
	if m.Name != "Main" {
		t.Fatalf("name changed to %q", m.Name)
	}
}

func TestUpdateMeterRequestClearsActiveGeneral(t *testing.T) {
	m := &Meter{Name: "A", MeterType: MeterTypeSinglePhase, IsGeneralPurpose: true, IsCurrentlyActiveGeneral: true}
	req := UpdateMeterRequest{IsGeneralPurpose: boolPtr(false), Name: strPtr("B")}
	if err := req.Apply(m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.IsCurrentlyActiveGeneral || m.Name != "B" {
		t.Fatalf("unexpected meter %+v", m)
	}
	if err := (&UpdateMeterRequest{Name: strPtr("  ")}).Apply(m); err == nil {
		t.Fatal("expected empty name rejection")
	}
}

func TestCreateReadingRequestValidate(t *testing.T) {
	date := NewDate(time.Date(2024, 1, 5, 0, 0, 0, 0, timeutil.IST))
	tests := []struct {
		name    string
		req     CreateReadingRequest
		wantErr bool
	}{
		{"ok", CreateReadingRequest{MeterID: 1, Date: date, ReadingValue: floatPtr(12.5)}, false},
		{"zero value ok", CreateReadingRequest{MeterID: 1, Date: date, ReadingValue: floatPtr(0)}, false},
		{"missing value", CreateReadingRequest{MeterID: 1, Date: date}, true},
		{"missing meter", CreateReadingRequest{Date: date, ReadingValue: floatPtr(1)}, true},
		{"missing date", CreateReadingRequest{MeterID: 1, ReadingValue: floatPtr(1)}, true},
		{"negative", CreateReadingRequest{MeterID: 1, Date: date, ReadingValue: floatPtr(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateCycleRequestApply(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, timeutil.IST)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, timeutil.IST)

	closed := &BillingCycle{StartDate: start, EndDate: &end, Status: CycleClosed}
	reopen := CycleActive
	if err := (&UpdateCycleRequest{Status: &reopen}).Apply(closed); err == nil {
		t.Fatal("closed cycle must not be reopened")
	}

	early := NewDate(start.AddDate(0, 0, -1))
	if err := (&UpdateCycleRequest{EndDate: early}).Apply(closed); err == nil {
		t.Fatal("end before start must be rejected")
	}

	active := &BillingCycle{StartDate: start, Status: CycleActive}
	if err := (&UpdateCycleRequest{EndDate: NewDate(end)}).Apply(active); err == nil {
		t.Fatal("active cycle must not get an end date")
	}
	if err := (&UpdateCycleRequest{Notes: strPtr(" fixed ")}).Apply(active); err != nil || active.Notes != "fixed" {
		t.Fatalf("notes update failed: %v %q", err, active.Notes)
	}
}

func TestDateUnmarshal(t *testing.T) {
	var req StartCycleRequest
	if err := json.Unmarshal([]byte(`{"startDate":"2024-02-03","notes":"x"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2024, 2, 3, 0, 0, 0, 0, timeutil.IST)
	if !req.StartDate.Equal(want) {
		t.Fatalf("startDate = %v, want %v", req.StartDate.Time, want)
	}

	var empty StartCycleRequest
	if err := json.Unmarshal([]byte(`{"startDate":null}`), &empty); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected validation error for missing startDate")
	}

	if err := json.Unmarshal([]byte(`{"startDate":"yesterday"}`), &empty); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := (&UpdateSettingsRequest{ConsumptionTarget: floatPtr(0)}).Validate(); err == nil {
		t.Fatal("zero target must be rejected")
	}
	if err := (&UpdateSettingsRequest{}).Validate(); err == nil {
		t.Fatal("missing target must be rejected")
	}
	if err := (&UpdateSettingsRequest{ConsumptionTarget: floatPtr(1)}).Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestReadingFilterNormalize(t *testing.T) {
	f := ReadingFilter{Page: -3, Limit: 100000}
	f.Normalize()
	if f.Page != 1 || f.Limit != MaxReadingPageSize {
		t.Fatalf("normalized = %+v", f)
	}
	f = ReadingFilter{Page: 3, Limit: 10}
	f.Normalize()
	if f.Offset() != 20 {
		t.Fatalf("offset = %d", f.Offset())
	}
}

func TestReadingFilterHugePageKeepsOffsetPositive(t *testing.T) {
	f := ReadingFilter{Page: math.MaxInt64 / 10, Limit: 20}
	f.Normalize()
	if f.Page != MaxReadingPage {
		t.Fatalf("page = %d, want %d", f.Page, MaxReadingPage)
	}
	if off := f.Offset(); off < 0 || off != (MaxReadingPage-1)*20 {
		t.Fatalf("offset = %d", off)
	}
}

func TestCycleLabel(t *testing.T) {
	end := time.Date(2024, 2, 5, 0, 0, 0, 0, timeutil.IST)
	c := &BillingCycle{StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, timeutil.IST), EndDate: &end}
	if c.Label() != "2 Jan - 5 Feb" {
		t.Fatalf("label = %q", c.Label())
	}
}
