package service

import (
	"context"
	"sort"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
	"github.com/iliyamo/court-slot-reservation/internal/repository"
)

// In-memory store fakes. They reproduce the repository contracts the
// services rely on, including the conditional-write semantics: an insert on
// a taken (template, date) pair fails with ErrDuplicateRecord and the
// conditional updates fail with ErrStateChanged when their precondition no
// longer holds.

type fakeVenues struct {
	venues map[int64]*model.Venue
}

func newFakeVenues(vs ...*model.Venue) *fakeVenues {
	f := &fakeVenues{venues: map[int64]*model.Venue{}}
	for _, v := range vs {
		f.venues[v.ID] = v
	}
	return f
}

func (f *fakeVenues) GetByID(_ context.Context, id int64) (*model.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	return v, nil
}

func (f *fakeVenues) BindPriceTemplate(_ context.Context, venueID, templateID int64) error {
	v, ok := f.venues[venueID]
	if !ok {
		return repository.ErrVenueNotFound
	}
	if templateID == 0 {
		v.PriceTemplateID = nil
	} else {
		v.PriceTemplateID = &templateID
	}
	return nil
}

func (f *fakeVenues) CountByPriceTemplate(_ context.Context, templateID int64) (int64, error) {
	var n int64
	for _, v := range f.venues {
		if v.PriceTemplateID != nil && *v.PriceTemplateID == templateID {
			n++
		}
	}
	return n, nil
}

type fakeCourts struct {
	courts map[int64]*model.Court
}

func newFakeCourts(cs ...*model.Court) *fakeCourts {
	f := &fakeCourts{courts: map[int64]*model.Court{}}
	for _, c := range cs {
		f.courts[c.ID] = c
	}
	return f
}

func (f *fakeCourts) GetByID(_ context.Context, id int64) (*model.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, repository.ErrCourtNotFound
	}
	return c, nil
}

func (f *fakeCourts) ListByVenue(_ context.Context, venueID int64) ([]*model.Court, error) {
	var out []*model.Court
	for _, c := range f.courts {
		if c.VenueID == venueID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeHours struct {
	rules    map[int64][]*model.BusinessHoursRule
	holidays map[string]bool
}

func newFakeHours() *fakeHours {
	return &fakeHours{rules: map[int64][]*model.BusinessHoursRule{}, holidays: map[string]bool{}}
}

func (f *fakeHours) ListByVenue(_ context.Context, venueID int64) ([]*model.BusinessHoursRule, error) {
	rules := append([]*model.BusinessHoursRule(nil), f.rules[venueID]...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })
	return rules, nil
}

func (f *fakeHours) IsHoliday(_ context.Context, date string) (bool, error) {
	return f.holidays[date], nil
}

type fakeTemplates struct {
	templates map[int64]*model.SlotTemplate
}

func newFakeTemplates(ts ...*model.SlotTemplate) *fakeTemplates {
	f := &fakeTemplates{templates: map[int64]*model.SlotTemplate{}}
	for _, t := range ts {
		f.templates[t.ID] = t
	}
	return f
}

func (f *fakeTemplates) GetByID(_ context.Context, id int64) (*model.SlotTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, repository.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakeTemplates) ListActiveByCourt(_ context.Context, courtID int64) ([]*model.SlotTemplate, error) {
	var out []*model.SlotTemplate
	for _, t := range f.templates {
		if t.CourtID == courtID && !t.IsDeleted {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

type recordKey struct {
	templateID int64
	date       string
}

type fakeRecords struct {
	nextID    int64
	byID      map[int64]*model.SlotRecord
	byKey     map[recordKey]*model.SlotRecord
	templates *fakeTemplates
	courts    *fakeCourts
}

func newFakeRecords(templates *fakeTemplates, courts *fakeCourts) *fakeRecords {
	return &fakeRecords{
		nextID: 1, byID: map[int64]*model.SlotRecord{}, byKey: map[recordKey]*model.SlotRecord{},
		templates: templates, courts: courts,
	}
}

func (f *fakeRecords) store(rec *model.SlotRecord) {
	f.byID[rec.ID] = rec
	f.byKey[recordKey{rec.TemplateID, rec.BookingDate}] = rec
}

func (f *fakeRecords) remove(rec *model.SlotRecord) {
	delete(f.byID, rec.ID)
	delete(f.byKey, recordKey{rec.TemplateID, rec.BookingDate})
}

func (f *fakeRecords) GetByID(_ context.Context, id int64) (*model.SlotRecord, error) {
	rec, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecords) GetByTemplateAndDate(_ context.Context, templateID int64, date string) (*model.SlotRecord, error) {
	rec, ok := f.byKey[recordKey{templateID, date}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecords) ListByTemplatesAndDate(_ context.Context, templateIDs []int64, date string) ([]*model.SlotRecord, error) {
	var out []*model.SlotRecord
	for _, id := range templateIDs {
		if rec, ok := f.byKey[recordKey{id, date}]; ok {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRecords) Insert(_ context.Context, rec *model.SlotRecord) error {
	if _, taken := f.byKey[recordKey{rec.TemplateID, rec.BookingDate}]; taken {
		return repository.ErrDuplicateRecord
	}
	rec.ID = f.nextID
	f.nextID++
	cp := *rec
	f.store(&cp)
	return nil
}

func (f *fakeRecords) LockIfAvailable(_ context.Context, id int64, reason string, operatorID int64) error {
	rec, ok := f.byID[id]
	if !ok || rec.Status != model.RecordStatusAvailable || rec.LockedType != nil || rec.OrderID != nil {
		return repository.ErrStateChanged
	}
	lockType := model.LockedTypeMerchantLock
	rec.Status = model.RecordStatusUnavailable
	rec.LockedType = &lockType
	rec.LockReason = &reason
	rec.OperatorID = operatorID
	rec.OperatorSource = model.OperatorSourceMerchant
	return nil
}

func (f *fakeRecords) BookIfAvailable(_ context.Context, id int64, orderID int64) error {
	rec, ok := f.byID[id]
	if !ok || rec.Status != model.RecordStatusAvailable || rec.LockedType != nil || rec.OrderID != nil {
		return repository.ErrStateChanged
	}
	lockType := model.LockedTypeUserOrder
	rec.Status = model.RecordStatusUnavailable
	rec.LockedType = &lockType
	rec.LockReason = nil
	rec.OrderID = &orderID
	rec.OperatorSource = model.OperatorSourceOrder
	return nil
}

func (f *fakeRecords) DeleteIfMerchantLocked(_ context.Context, id int64) error {
	rec, ok := f.byID[id]
	if !ok || rec.LockedType == nil || *rec.LockedType != model.LockedTypeMerchantLock || rec.OrderID != nil {
		return repository.ErrStateChanged
	}
	f.remove(rec)
	return nil
}

func (f *fakeRecords) DemoteToAvailable(_ context.Context, id int64, operatorID int64) error {
	rec, ok := f.byID[id]
	if !ok {
		return repository.ErrRecordNotFound
	}
	rec.Status = model.RecordStatusAvailable
	rec.LockedType = nil
	rec.LockReason = nil
	rec.OperatorID = operatorID
	rec.OperatorSource = model.OperatorSourceMerchant
	return nil
}

func (f *fakeRecords) ReleaseByOrder(_ context.Context, orderID int64) (int64, error) {
	var released int64
	for _, rec := range f.byID {
		if rec.OrderID != nil && *rec.OrderID == orderID &&
			rec.LockedType != nil && *rec.LockedType == model.LockedTypeUserOrder {
			f.remove(rec)
			released++
		}
	}
	return released, nil
}

func (f *fakeRecords) BulkInsert(ctx context.Context, records []model.SlotRecord) error {
	for i := range records {
		if err := f.Insert(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRecords) RegenerateForDate(ctx context.Context, date string, templateIDs []int64, inserts []model.SlotRecord) (int64, error) {
	var removed int64
	for _, id := range templateIDs {
		rec, ok := f.byKey[recordKey{id, date}]
		if ok && rec.Status == model.RecordStatusAvailable && rec.LockedType == nil && rec.OrderID == nil {
			f.remove(rec)
			removed++
		}
	}
	for i := range inserts {
		if err := f.Insert(ctx, &inserts[i]); err != nil {
			return 0, err
		}
	}
	return removed, nil
}

func (f *fakeRecords) ListLocked(_ context.Context, filter repository.LockedSlotFilter) ([]*model.LockedSlot, error) {
	var out []*model.LockedSlot
	for _, rec := range f.byID {
		if rec.Status != model.RecordStatusUnavailable {
			continue
		}
		if rec.BookingDate < filter.StartDate || rec.BookingDate > filter.EndDate {
			continue
		}
		tpl, ok := f.templates.templates[rec.TemplateID]
		if !ok {
			continue
		}
		court, ok := f.courts.courts[tpl.CourtID]
		if !ok {
			continue
		}
		if filter.CourtID != nil && court.ID != *filter.CourtID {
			continue
		}
		if filter.VenueID != nil && court.VenueID != *filter.VenueID {
			continue
		}
		lockedType := ""
		if rec.LockedType != nil {
			lockedType = *rec.LockedType
		}
		if filter.LockedType != nil && lockedType != *filter.LockedType {
			continue
		}
		out = append(out, &model.LockedSlot{
			RecordID:    rec.ID,
			TemplateID:  rec.TemplateID,
			CourtID:     court.ID,
			CourtName:   court.Name,
			BookingDate: rec.BookingDate,
			StartTime:   tpl.StartTime,
			EndTime:     tpl.EndTime,
			LockedType:  lockedType,
			LockReason:  rec.LockReason,
			OrderID:     rec.OrderID,
			OperatorID:  rec.OperatorID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID < out[j].RecordID })
	return out, nil
}

type fakePriceTemplates struct {
	nextID    int64
	templates map[int64]*model.PriceTemplate
	periods   map[int64][]*model.PriceTemplatePeriod
}

func newFakePriceTemplates() *fakePriceTemplates {
	return &fakePriceTemplates{
		nextID: 1, templates: map[int64]*model.PriceTemplate{}, periods: map[int64][]*model.PriceTemplatePeriod{},
	}
}

func (f *fakePriceTemplates) GetByID(_ context.Context, id int64) (*model.PriceTemplate, error) {
	t, ok := f.templates[id]
	if !ok || t.IsDeleted {
		return nil, repository.ErrPriceTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakePriceTemplates) GetDefaultByMerchant(_ context.Context, merchantID int64) (*model.PriceTemplate, error) {
	for _, t := range f.templates {
		if t.MerchantID == merchantID && t.IsDefault && !t.IsDeleted {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePriceTemplates) ListByMerchant(_ context.Context, merchantID int64) ([]*model.PriceTemplate, error) {
	var out []*model.PriceTemplate
	for _, t := range f.templates {
		if t.MerchantID == merchantID && !t.IsDeleted {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePriceTemplates) ListPeriods(_ context.Context, templateID int64) ([]*model.PriceTemplatePeriod, error) {
	var out []*model.PriceTemplatePeriod
	for _, p := range f.periods[templateID] {
		if p.IsEnabled {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakePriceTemplates) setPeriods(templateID int64, periods []model.PriceTemplatePeriod) {
	stored := make([]*model.PriceTemplatePeriod, 0, len(periods))
	for i := range periods {
		p := periods[i]
		p.TemplateID = templateID
		p.IsEnabled = true
		stored = append(stored, &p)
	}
	f.periods[templateID] = stored
}

func (f *fakePriceTemplates) Create(_ context.Context, tpl *model.PriceTemplate, periods []model.PriceTemplatePeriod) error {
	tpl.ID = f.nextID
	f.nextID++
	cp := *tpl
	f.templates[tpl.ID] = &cp
	f.setPeriods(tpl.ID, periods)
	return nil
}

func (f *fakePriceTemplates) Update(_ context.Context, tpl *model.PriceTemplate, periods []model.PriceTemplatePeriod) error {
	existing, ok := f.templates[tpl.ID]
	if !ok || existing.IsDeleted {
		return repository.ErrPriceTemplateNotFound
	}
	existing.Name = tpl.Name
	existing.IsEnabled = tpl.IsEnabled
	f.setPeriods(tpl.ID, periods)
	return nil
}

func (f *fakePriceTemplates) SwapDefault(_ context.Context, merchantID, templateID int64) error {
	if _, ok := f.templates[templateID]; !ok {
		return repository.ErrPriceTemplateNotFound
	}
	for _, t := range f.templates {
		if t.MerchantID == merchantID {
			t.IsDefault = t.ID == templateID
		}
	}
	return nil
}

func (f *fakePriceTemplates) SoftDelete(_ context.Context, templateID int64) error {
	t, ok := f.templates[templateID]
	if !ok {
		return repository.ErrPriceTemplateNotFound
	}
	t.IsDeleted = true
	return nil
}

type fakePublisher struct {
	locked   []queue.SlotLockedEvent
	unlocked []queue.SlotUnlockedEvent
}

func (f *fakePublisher) PublishSlotLocked(_ context.Context, ev queue.SlotLockedEvent) {
	f.locked = append(f.locked, ev)
}

func (f *fakePublisher) PublishSlotUnlocked(_ context.Context, ev queue.SlotUnlockedEvent) {
	f.unlocked = append(f.unlocked, ev)
}
