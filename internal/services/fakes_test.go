package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"watts-backend/internal/apperr"
	"watts-backend/internal/models"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories. One
// mutex plays the part of the row locks.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	meters   map[int]*models.Meter
	cycles   map[int]*models.BillingCycle
	readings map[int]*models.Reading
	slabs    map[int]*models.SlabRateConfiguration
	settings *models.Settings
}

func newMemStore() *memStore {
	return &memStore{
		meters:   map[int]*models.Meter{},
		cycles:   map[int]*models.BillingCycle{},
		readings: map[int]*models.Reading{},
		slabs:    map[int]*models.SlabRateConfiguration{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func testLogger() *zap.Logger { return zap.NewNop() }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type memMeters struct{ *memStore }

func (s memMeters) Create(ctx context.Context, m *models.Meter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.meters {
		if other.Name == m.Name {
			return apperr.Conflict("A meter with this name already exists.")
		}
	}
	if m.IsCurrentlyActiveGeneral {
		for _, other := range s.meters {
			other.IsCurrentlyActiveGeneral = false
		}
	}
	m.ID = s.id()
	cp := *m
	s.meters[m.ID] = &cp
	return nil
}

func (s memMeters) Get(ctx context.Context, id int) (*models.Meter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meters[id]
	if !ok {
		return nil, apperr.NotFound("Meter not found.")
	}
	cp := *m
	return &cp, nil
}

func (s memMeters) List(ctx context.Context) ([]*models.Meter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Meter{}
	for _, m := range s.meters {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memMeters) Update(ctx context.Context, m *models.Meter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meters[m.ID]; !ok {
		return apperr.NotFound("Meter not found.")
	}
	for _, other := range s.meters {
		if other.ID != m.ID && other.Name == m.Name {
			return apperr.Conflict("A meter with this name already exists.")
		}
	}
	cp := *m
	s.meters[m.ID] = &cp
	return nil
}

func (s memMeters) SetActiveGeneral(ctx context.Context, id int, check func(*models.Meter) error) (*models.Meter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meters[id]
	if !ok {
		return nil, apperr.NotFound("Meter not found.")
	}
	cp := *m
	if err := check(&cp); err != nil {
		return nil, err
	}
	for _, other := range s.meters {
		other.IsCurrentlyActiveGeneral = other.ID == id
	}
	cp.IsCurrentlyActiveGeneral = true
	return &cp, nil
}

type memCycles struct{ *memStore }

func (s memCycles) activeLocked() *models.BillingCycle {
	for _, c := range s.cycles {
		if c.Status == models.CycleActive {
			return c
		}
	}
	return nil
}

func (s memCycles) insertLocked(c *models.BillingCycle) error {
	if s.activeLocked() != nil {
		return apperr.Conflict("An active billing cycle already exists.")
	}
	c.ID = s.id()
	cp := *c
	s.cycles[c.ID] = &cp
	return nil
}

func (s memCycles) Create(ctx context.Context, c *models.BillingCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(c)
}

func (s memCycles) GetActive(ctx context.Context) (*models.BillingCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.activeLocked()
	if c == nil {
		return nil, apperr.NotFound("No active billing cycle found.")
	}
	cp := *c
	return &cp, nil
}

func (s memCycles) Get(ctx context.Context, id int) (*models.BillingCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cycles[id]
	if !ok {
		return nil, apperr.NotFound("Billing cycle not found.")
	}
	cp := *c
	return &cp, nil
}

func (s memCycles) sorted(closedOnly bool, desc bool) []*models.BillingCycle {
	out := []*models.BillingCycle{}
	for _, c := range s.cycles {
		if closedOnly && c.Status != models.CycleClosed {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

func (s memCycles) List(ctx context.Context) ([]*models.BillingCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(false, true), nil
}

func (s memCycles) ListClosed(ctx context.Context) ([]*models.BillingCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(true, false), nil
}

func (s memCycles) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cycles), nil
}

func (s memCycles) PreviousClosed(ctx context.Context, before time.Time, excludeID int) (*models.BillingCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.BillingCycle
	for _, c := range s.cycles {
		if c.Status != models.CycleClosed || c.ID == excludeID || c.EndDate == nil || c.EndDate.After(before) {
			continue
		}
		if best == nil || c.EndDate.After(*best.EndDate) {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (s memCycles) Update(ctx context.Context, c *models.BillingCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cycles[c.ID]; !ok {
		return apperr.NotFound("Billing cycle not found.")
	}
	cp := *c
	s.cycles[c.ID] = &cp
	return nil
}

func (s memCycles) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cycles[id]; !ok {
		return apperr.NotFound("Billing cycle not found.")
	}
	for _, r := range s.readings {
		if r.BillingCycleID == id {
			return apperr.Conflict("Billing cycle still has readings.")
		}
	}
	delete(s.cycles, id)
	return nil
}

func (s memCycles) CloseActive(ctx context.Context, closeFn func(*models.BillingCycle) (*models.BillingCycle, error)) (*models.BillingCycle, *models.BillingCycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.activeLocked()
	if stored == nil {
		return nil, nil, apperr.NotFound("No active billing cycle found to close.")
	}
	active := *stored
	next, err := closeFn(&active)
	if err != nil {
		return nil, nil, err
	}
	active.Status = models.CycleClosed
	*stored = active
	if err := s.insertLocked(next); err != nil {
		return nil, nil, err
	}
	return &active, next, nil
}

type memReadings struct{ *memStore }

// latestLocked mirrors the repository ordering: date, then insertion order.
func (s memReadings) latestLocked(meterID int, before time.Time, excludeID int) *models.Reading {
	var best *models.Reading
	for _, r := range s.readings {
		if r.MeterID != meterID || r.ID == excludeID {
			continue
		}
		if !before.IsZero() && !r.Date.Before(before) {
			continue
		}
		if best == nil || r.Date.After(best.Date) || (r.Date.Equal(best.Date) && r.ID > best.ID) {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

func (s memReadings) Record(ctx context.Context, rd *models.Reading, check func(*models.BillingCycle, *models.Reading) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active *models.BillingCycle
	for _, c := range s.cycles {
		if c.Status == models.CycleActive {
			cp := *c
			active = &cp
		}
	}
	m, ok := s.meters[rd.MeterID]
	if !ok {
		return apperr.NotFound("Meter not found.")
	}
	if err := check(active, s.latestLocked(rd.MeterID, time.Time{}, 0)); err != nil {
		return err
	}
	rd.ID = s.id()
	rd.Meter = &models.MeterRef{ID: m.ID, Name: m.Name, MeterType: m.MeterType}
	cp := *rd
	s.readings[rd.ID] = &cp
	return nil
}

func (s memReadings) Get(ctx context.Context, id int) (*models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.readings[id]
	if !ok {
		return nil, apperr.NotFound("Reading not found.")
	}
	cp := *r
	return &cp, nil
}

func (s memReadings) List(ctx context.Context, f models.ReadingFilter) ([]*models.Reading, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []*models.Reading{}
	for _, r := range s.readings {
		if f.MeterID > 0 && r.MeterID != f.MeterID {
			continue
		}
		if f.BillingCycleID > 0 && r.BillingCycleID != f.BillingCycleID {
			continue
		}
		cp := *r
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	total := len(all)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s memReadings) Update(ctx context.Context, rd *models.Reading, check func(*models.Reading) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[rd.ID]; !ok {
		return apperr.NotFound("Reading not found.")
	}
	if err := check(s.latestLocked(rd.MeterID, rd.Date, rd.ID)); err != nil {
		return err
	}
	cp := *rd
	s.readings[rd.ID] = &cp
	return nil
}

func (s memReadings) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.readings[id]; !ok {
		return apperr.NotFound("Reading not found.")
	}
	delete(s.readings, id)
	return nil
}

func (s memReadings) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.readings))
	s.readings = map[int]*models.Reading{}
	return n, nil
}

func (s memReadings) CountByCycle(ctx context.Context, cycleID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.readings {
		if r.BillingCycleID == cycleID {
			n++
		}
	}
	return n, nil
}

func (s memReadings) ConsumptionByMeter(ctx context.Context, cycleID int) (map[int]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[int]float64{}
	for _, r := range s.readings {
		if r.BillingCycleID == cycleID {
			out[r.MeterID] += r.UnitsConsumedSincePrevious
		}
	}
	return out, nil
}

type memSlabs struct{ *memStore }

func (s memSlabs) Create(ctx context.Context, c *models.SlabRateConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.slabs {
		if other.ConfigName == c.ConfigName {
			return apperr.Conflict("A slab rate configuration with this name already exists.")
		}
	}
	if c.IsCurrentlyActive {
		for _, other := range s.slabs {
			other.IsCurrentlyActive = false
		}
	}
	c.ID = s.id()
	cp := *c
	s.slabs[c.ID] = &cp
	return nil
}

func (s memSlabs) List(ctx context.Context) ([]*models.SlabRateConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.SlabRateConfiguration{}
	for _, c := range s.slabs {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.After(out[j].EffectiveDate) })
	return out, nil
}

func (s memSlabs) Get(ctx context.Context, id int) (*models.SlabRateConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.slabs[id]
	if !ok {
		return nil, apperr.NotFound("Slab rate configuration not found.")
	}
	cp := *c
	return &cp, nil
}

func (s memSlabs) GetActive(ctx context.Context) (*models.SlabRateConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.slabs {
		if c.IsCurrentlyActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("No active slab rate configuration found.")
}

func (s memSlabs) Activate(ctx context.Context, id int) (*models.SlabRateConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.slabs[id]
	if !ok {
		return nil, apperr.NotFound("Slab rate configuration not found.")
	}
	for _, other := range s.slabs {
		other.IsCurrentlyActive = other.ID == id
	}
	cp := *c
	return &cp, nil
}

func (s memSlabs) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.slabs[id]
	if !ok {
		return apperr.NotFound("Slab rate configuration not found.")
	}
	if c.IsCurrentlyActive {
		return apperr.Conflict("Cannot delete the currently active slab rate configuration. Activate another one first.")
	}
	delete(s.slabs, id)
	return nil
}

type memSettings struct{ *memStore }

func (s memSettings) Get(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		s.settings = &models.Settings{ID: 1, ConsumptionTarget: models.DefaultConsumptionTarget}
	}
	cp := *s.settings
	return &cp, nil
}

func (s memSettings) UpdateTarget(ctx context.Context, target float64) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &models.Settings{ID: 1, ConsumptionTarget: target}
	cp := *s.settings
	return &cp, nil
}

type fixture struct {
	store      *memStore
	meters     *MeterService
	cycles     *BillingCycleService
	readings   *ReadingService
	slabs      *SlabRateService
	settings   *SettingsService
	dashboard  *DashboardService
	analytics  *AnalyticsService
	statements *StatementService
}

func newFixture(now time.Time) *fixture {
	st := newMemStore()
	m, c, r, sl, se := memMeters{st}, memCycles{st}, memReadings{st}, memSlabs{st}, memSettings{st}
	log := testLogger()

	f := &fixture{
		store:      st,
		meters:     NewMeterService(m, log),
		cycles:     NewBillingCycleService(c, r, log),
		readings:   NewReadingService(r, log),
		slabs:      NewSlabRateService(sl, log),
		settings:   NewSettingsService(se),
		dashboard:  NewDashboardService(m, c, r, sl, se, log),
		analytics:  NewAnalyticsService(m, c, r, sl, log),
		statements: NewStatementService(m, c, r, sl, log),
	}
	clock := fixedClock(now)
	f.cycles.Now = clock
	f.slabs.Now = clock
	f.dashboard.Now = clock
	f.statements.Now = clock
	return f
}

type recordingSink struct {
	got []*models.Reading
	err error
}

func (s *recordingSink) WriteReading(ctx context.Context, r *models.Reading) error {
	s.got = append(s.got, r)
	return s.err
}

type memUploader struct {
	keys map[string][]byte
}

func (u *memUploader) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if u.keys == nil {
		u.keys = map[string][]byte{}
	}
	key := "statements/" + name
	u.keys[key] = data
	return key, nil
}
