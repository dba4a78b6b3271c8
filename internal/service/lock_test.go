package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/repository"
)

func TestLockCreatesRecordAndPublishes(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	recordID, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)

	rec, err := fx.records.GetByID(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusUnavailable, rec.Status)
	require.NotNil(t, rec.LockedType)
	assert.Equal(t, model.LockedTypeMerchantLock, *rec.LockedType)
	require.NotNil(t, rec.LockReason)
	assert.Equal(t, "maintenance", *rec.LockReason)
	assert.Equal(t, int64(7), rec.OperatorID)

	require.Len(t, fx.publisher.locked, 1)
	ev := fx.publisher.locked[0]
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, recordID, ev.RecordID)
	assert.Equal(t, "2026-03-02", ev.BookingDate)
	assert.Equal(t, "08:00", ev.StartTime)
}

func TestLockTakesGeneratedRow(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.svc.GenerateForDate(ctx, 1, date, false, 0)
	require.NoError(t, err)
	before, err := fx.records.GetByTemplateAndDate(ctx, 11, "2026-03-02")
	require.NoError(t, err)
	require.NotNil(t, before)

	recordID, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)
	// The existing AVAILABLE row was flipped in place, not replaced.
	assert.Equal(t, before.ID, recordID)
}

func TestLockRejections(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.locks.Lock(ctx, 11, date, "", 7)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = fx.locks.Lock(ctx, 11, date, "maintenance", 99)
	assert.ErrorIs(t, err, ErrNotOwner)

	fx.templates.templates[11].IsDeleted = true
	_, err = fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	assert.ErrorIs(t, err, ErrTemplateDeleted)
	fx.templates.templates[11].IsDeleted = false

	_, err = fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)
	_, err = fx.locks.Lock(ctx, 11, date, "again", 7)
	assert.ErrorIs(t, err, ErrAlreadyLocked)
}

func TestLockLosesToCustomerOrder(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.locks.PlaceOrderHold(ctx, 11, date, 501)
	require.NoError(t, err)

	_, err = fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	var booked *SlotBookedError
	require.ErrorAs(t, err, &booked)
	assert.Equal(t, int64(501), booked.OrderID)
}

func TestLockBatchPartialSuccess(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	// Template 12 is already locked, 13 is booked by a customer.
	_, err := fx.locks.Lock(ctx, 12, date, "maintenance", 7)
	require.NoError(t, err)
	_, err = fx.locks.PlaceOrderHold(ctx, 13, date, 501)
	require.NoError(t, err)

	out, err := fx.locks.LockBatch(ctx, []LockRequest{
		{TemplateID: 11, BookingDate: "2026-03-02"},
		{TemplateID: 12, BookingDate: "2026-03-02"},
		{TemplateID: 13, BookingDate: "2026-03-02"},
		{TemplateID: 21, BookingDate: "not-a-date"},
	}, "tournament", 7)
	require.NoError(t, err)

	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 1, out.Success)
	assert.Equal(t, 3, out.Failed)
	assert.Equal(t, 1, out.BookedCount)
	require.Len(t, out.BookedSlotDetails, 1)
	assert.Equal(t, int64(501), out.BookedSlotDetails[0].OrderID)
	assert.Len(t, out.Errors, 3)

	_, err = fx.locks.LockBatch(ctx, nil, "tournament", 7)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestUnlockDeletesPureLock(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	recordID, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)

	require.NoError(t, fx.locks.Unlock(ctx, recordID, 7))
	// Deleting the row restores the implicit default.
	rec, err := fx.records.GetByTemplateAndDate(ctx, 11, "2026-03-02")
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.Len(t, fx.publisher.unlocked, 1)

	slots, err := fx.svc.QueryAvailability(ctx, 1, date)
	require.NoError(t, err)
	assert.True(t, slots[0].Available)
}

func TestUnlockRejections(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	recordID, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)

	assert.ErrorIs(t, fx.locks.Unlock(ctx, recordID, 99), ErrNotOwner)
	assert.ErrorIs(t, fx.locks.Unlock(ctx, 12345, 7), repository.ErrRecordNotFound)

	// A customer booking is not a merchant lock.
	orderRecID, err := fx.locks.PlaceOrderHold(ctx, 12, date, 501)
	require.NoError(t, err)
	assert.ErrorIs(t, fx.locks.Unlock(ctx, orderRecID, 7), ErrNotMerchantLocked)
}

func TestUnlockSurvivesDeletedTemplate(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	recordID, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)

	// Soft-deleting the band must not strand its existing lock.
	fx.templates.templates[11].IsDeleted = true
	assert.NoError(t, fx.locks.Unlock(ctx, recordID, 7))
}

func TestUnlockBatch(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	id1, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)
	id2, err := fx.locks.Lock(ctx, 12, date, "maintenance", 7)
	require.NoError(t, err)

	out, err := fx.locks.UnlockBatch(ctx, []int64{id1, id2, 9999}, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Success)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, int64(9999), out.Errors[0].RecordID)
}

func TestLockedSlots(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.locks.Lock(ctx, 11, date, "maintenance", 7)
	require.NoError(t, err)
	_, err = fx.locks.PlaceOrderHold(ctx, 21, date, 501)
	require.NoError(t, err)

	venueID := int64(1)
	all, err := fx.locks.LockedSlots(ctx, 7, repository.LockedSlotFilter{
		VenueID: &venueID, StartDate: "2026-03-01", EndDate: "2026-03-31",
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lockType := model.LockedTypeMerchantLock
	onlyLocks, err := fx.locks.LockedSlots(ctx, 7, repository.LockedSlotFilter{
		VenueID: &venueID, StartDate: "2026-03-01", EndDate: "2026-03-31", LockedType: &lockType,
	})
	require.NoError(t, err)
	require.Len(t, onlyLocks, 1)
	assert.Equal(t, "Court A", onlyLocks[0].CourtName)

	courtID := int64(2)
	court2, err := fx.locks.LockedSlots(ctx, 7, repository.LockedSlotFilter{
		CourtID: &courtID, StartDate: "2026-03-01", EndDate: "2026-03-31",
	})
	require.NoError(t, err)
	require.Len(t, court2, 1)
	require.NotNil(t, court2[0].OrderID)
	assert.Equal(t, int64(501), *court2[0].OrderID)
}

func TestLockedSlotsValidation(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	venueID := int64(1)
	var vErr *ValidationError

	_, err := fx.locks.LockedSlots(ctx, 7, repository.LockedSlotFilter{StartDate: "2026-03-01", EndDate: "2026-03-31"})
	assert.ErrorAs(t, err, &vErr)

	_, err = fx.locks.LockedSlots(ctx, 7, repository.LockedSlotFilter{
		VenueID: &venueID, StartDate: "2026-03-31", EndDate: "2026-03-01",
	})
	assert.ErrorAs(t, err, &vErr)

	bad := "SOMETHING"
	_, err = fx.locks.LockedSlots(ctx, 7, repository.LockedSlotFilter{
		VenueID: &venueID, StartDate: "2026-03-01", EndDate: "2026-03-31", LockedType: &bad,
	})
	assert.ErrorAs(t, err, &vErr)

	_, err = fx.locks.LockedSlots(ctx, 99, repository.LockedSlotFilter{
		VenueID: &venueID, StartDate: "2026-03-01", EndDate: "2026-03-31",
	})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestPlaceOrderHoldConflicts(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	_, err := fx.locks.PlaceOrderHold(ctx, 11, date, 0)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = fx.locks.PlaceOrderHold(ctx, 11, date, 501)
	require.NoError(t, err)
	_, err = fx.locks.PlaceOrderHold(ctx, 11, date, 502)
	var booked *SlotBookedError
	require.ErrorAs(t, err, &booked)
	assert.Equal(t, int64(501), booked.OrderID)

	_, err = fx.locks.Lock(ctx, 12, date, "maintenance", 7)
	require.NoError(t, err)
	_, err = fx.locks.PlaceOrderHold(ctx, 12, date, 501)
	assert.ErrorIs(t, err, ErrAlreadyLocked)
}

func TestReleaseOrderHold(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()

	_, err := fx.locks.PlaceOrderHold(ctx, 11, mustDate(t, "2026-03-02"), 501)
	require.NoError(t, err)
	_, err = fx.locks.PlaceOrderHold(ctx, 11, mustDate(t, "2026-03-03"), 501)
	require.NoError(t, err)

	released, err := fx.locks.ReleaseOrderHold(ctx, 501)
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	slots, err := fx.svc.QueryAvailability(ctx, 1, mustDate(t, "2026-03-02"))
	require.NoError(t, err)
	assert.True(t, slots[0].Available)

	released, err = fx.locks.ReleaseOrderHold(ctx, 501)
	require.NoError(t, err)
	assert.Zero(t, released)
}

// TestFullLifecycle drives one band through the whole flow: generate,
// customer booking, merchant lock next door, cancellation, unlock.
func TestFullLifecycle(t *testing.T) {
	fx := newAvailabilityFixture()
	ctx := context.Background()
	date := mustDate(t, "2026-03-02")

	res, err := fx.svc.GenerateForDate(ctx, 1, date, false, 7)
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalSlots)

	_, err = fx.locks.PlaceOrderHold(ctx, 11, date, 501)
	require.NoError(t, err)
	lockID, err := fx.locks.Lock(ctx, 12, date, "league night", 7)
	require.NoError(t, err)

	slots, err := fx.svc.QueryAvailability(ctx, 1, date)
	require.NoError(t, err)
	assert.False(t, slots[0].Available)
	assert.False(t, slots[1].Available)
	assert.True(t, slots[2].Available)

	released, err := fx.locks.ReleaseOrderHold(ctx, 501)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)
	require.NoError(t, fx.locks.Unlock(ctx, lockID, 7))

	slots, err = fx.svc.QueryAvailability(ctx, 1, date)
	require.NoError(t, err)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}
