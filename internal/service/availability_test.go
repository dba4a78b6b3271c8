package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// availabilityFixture wires one merchant (id 7) with one venue, two courts
// and hourly bands on court 1 from 08:00 to 11:00.
type availabilityFixture struct {
	venues    *fakeVenues
	courts    *fakeCourts
	hours     *fakeHours
	templates *fakeTemplates
	records   *fakeRecords
	prices    *fakePriceTemplates
	svc       *AvailabilityService
	locks     *LockService
	publisher *fakePublisher
}

func newAvailabilityFixture() *availabilityFixture {
	venues := newFakeVenues(&model.Venue{ID: 1, MerchantID: 7, Name: "Riverside"})
	courts := newFakeCourts(
		&model.Court{ID: 1, VenueID: 1, Name: "Court A", IsActive: true},
		&model.Court{ID: 2, VenueID: 1, Name: "Court B", IsActive: true},
	)
	templates := newFakeTemplates(
		&model.SlotTemplate{ID: 11, CourtID: 1, StartTime: "08:00", EndTime: "09:00"},
		&model.SlotTemplate{ID: 12, CourtID: 1, StartTime: "09:00", EndTime: "10:00"},
		&model.SlotTemplate{ID: 13, CourtID: 1, StartTime: "10:00", EndTime: "11:00"},
		&model.SlotTemplate{ID: 21, CourtID: 2, StartTime: "08:00", EndTime: "09:00"},
	)
	records := newFakeRecords(templates, courts)
	priceTemplates := newFakePriceTemplates()
	hours := newFakeHours()

	log := zap.NewNop()
	hoursSvc := NewHoursService(hours)
	priceSvc := NewPriceService(priceTemplates, venues, hours, log)
	publisher := &fakePublisher{}
	return &availabilityFixture{
		venues: venues, courts: courts, hours: hours, templates: templates,
		records: records, prices: priceTemplates,
		svc:       NewAvailabilityService(venues, courts, templates, records, hoursSvc, priceSvc, log),
		locks:     NewLockService(venues, courts, templates, records, publisher, log),
		publisher: publisher,
	}
}

func TestQueryAvailabilityDefaultsToAvailable(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()

	// No records exist at all; every band reads as available at the
	// platform default price.
	slots, err := fx.svc.QueryAvailability(ctx, 1, mustDate(t, "2026-03-02"))
	require.NoError(t, err)
	require.Len(t, slots, 3)
	for _, s := range slots {
		assert.True(t, s.Available)
		assert.Empty(t, s.StatusRemark)
		assert.Equal(t, PlatformDefaultPriceCents, s.PriceCents)
	}
}

func TestQueryAvailabilityReflectsRecords(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.locks.Lock(ctx, 12, date, "maintenance", 7)
	require.NoError(t, err)
	_, err = fx.locks.PlaceOrderHold(ctx, 13, date, 501)
	require.NoError(t, err)

	slots, err := fx.svc.QueryAvailability(ctx, 1, date)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	byTemplate := map[int64]SlotAvailability{}
	for _, s := range slots {
		byTemplate[s.TemplateID] = s
	}
	assert.True(t, byTemplate[11].Available)
	assert.False(t, byTemplate[12].Available)
	assert.Equal(t, "maintenance", byTemplate[12].StatusRemark)
	assert.False(t, byTemplate[13].Available)
	assert.Contains(t, byTemplate[13].StatusRemark, "501")
}

func TestQueryAvailabilityHonorsBusinessHours(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	// A 09:00 open drops the 08:00 band from the view entirely.
	fx.hours.rules[1] = []*model.BusinessHoursRule{{
		VenueID: 1, RuleType: model.RuleTypeRegular, DayOfWeek: dayPtr(1),
		OpenTime: "09:00", CloseTime: "22:00",
	}}
	slots, err := fx.svc.QueryAvailability(ctx, 1, date)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, int64(12), slots[0].TemplateID)

	// A closed date empties the view.
	fx.hours.rules[1] = append(fx.hours.rules[1], &model.BusinessHoursRule{
		VenueID: 1, RuleType: model.RuleTypeClosedDate, EffectiveDate: strPtr("2026-03-02"),
	})
	slots, err = fx.svc.QueryAvailability(ctx, 1, date)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestQueryVenueAvailability(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	courts, err := fx.svc.QueryVenueAvailability(ctx, 1, date, "", "")
	require.NoError(t, err)
	require.Len(t, courts, 2)
	assert.Equal(t, "Court A", courts[0].CourtName)
	assert.Len(t, courts[0].Slots, 3)
	assert.Len(t, courts[1].Slots, 1)

	// Time filter keeps only bands fully inside the span.
	courts, err = fx.svc.QueryVenueAvailability(ctx, 1, date, "09:00", "11:00")
	require.NoError(t, err)
	assert.Len(t, courts[0].Slots, 2)
	assert.Empty(t, courts[1].Slots)
}

func TestGenerateForDate(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	res, err := fx.svc.GenerateForDate(ctx, 1, date, false, 7)
	require.NoError(t, err)
	assert.Equal(t, GenerationSuccess, res.Status)
	assert.Equal(t, 3, res.TotalSlots)

	rec, err := fx.records.GetByTemplateAndDate(ctx, 11, "2026-03-02")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.RecordStatusAvailable, rec.Status)
	assert.Equal(t, model.OperatorSourceMerchant, rec.OperatorSource)

	// Second run without overwrite is a skip.
	res, err = fx.svc.GenerateForDate(ctx, 1, date, false, 7)
	require.NoError(t, err)
	assert.Equal(t, GenerationSkipped, res.Status)
}

func TestGenerateForDateOverwritePreservesOwnedRows(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.svc.GenerateForDate(ctx, 1, date, false, 0)
	require.NoError(t, err)
	lockedID, err := fx.locks.Lock(ctx, 12, date, "maintenance", 7)
	require.NoError(t, err)

	res, err := fx.svc.GenerateForDate(ctx, 1, date, true, 7)
	require.NoError(t, err)
	assert.Equal(t, GenerationSuccess, res.Status)
	assert.Equal(t, 2, res.TotalSlots)

	// The merchant lock survived the overwrite.
	rec, err := fx.records.GetByID(ctx, lockedID)
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusUnavailable, rec.Status)
}

func TestGenerateForDateClosedAndOwnership(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.svc.GenerateForDate(ctx, 1, date, false, 99)
	assert.ErrorIs(t, err, ErrNotOwner)

	fx.hours.rules[1] = []*model.BusinessHoursRule{{
		VenueID: 1, RuleType: model.RuleTypeClosedDate, EffectiveDate: strPtr("2026-03-02"),
	}}
	res, err := fx.svc.GenerateForDate(ctx, 1, date, false, 7)
	require.NoError(t, err)
	assert.Equal(t, GenerationClosed, res.Status)
	assert.Zero(t, res.TotalSlots)
}

func TestGenerateForDateRange(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	start := mustDate(t, "2026-03-02")
	end := mustDate(t, "2026-03-04")

	// The middle day is closed; it must not stop the rest of the range.
	fx.hours.rules[1] = []*model.BusinessHoursRule{{
		VenueID: 1, RuleType: model.RuleTypeClosedDate, EffectiveDate: strPtr("2026-03-03"),
	}}

	out, err := fx.svc.GenerateForDateRange(ctx, 1, start, end, false, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalDays)
	assert.Equal(t, 6, out.TotalSlots)
	require.Len(t, out.Days, 3)
	assert.Equal(t, GenerationSuccess, out.Days[0].Status)
	assert.Equal(t, GenerationClosed, out.Days[1].Status)
	assert.Equal(t, GenerationSuccess, out.Days[2].Status)
}

func TestGenerateForDateRangeValidation(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()

	_, err := fx.svc.GenerateForDateRange(ctx, 1, mustDate(t, "2026-03-04"), mustDate(t, "2026-03-02"), false, 7)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = fx.svc.GenerateForDateRange(ctx, 1, mustDate(t, "2026-01-01"), mustDate(t, "2027-06-01"), false, 7)
	assert.ErrorAs(t, err, &vErr)
}
