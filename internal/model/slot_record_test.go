package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateNilRecordIsAvailable(t *testing.T) {
	var rec *SlotRecord
	assert.Equal(t, StateAvailable, rec.State().Kind)
}

func TestStateClassification(t *testing.T) {
	orderID := int64(501)
	userOrder := LockedTypeUserOrder
	merchantLock := LockedTypeMerchantLock
	reason := "maintenance"

	cases := []struct {
		name string
		rec  SlotRecord
		want RecordState
	}{
		{
			"explicit available row",
			SlotRecord{Status: RecordStatusAvailable},
			RecordState{Kind: StateAvailable},
		},
		{
			"customer booking",
			SlotRecord{Status: RecordStatusUnavailable, LockedType: &userOrder, OrderID: &orderID},
			RecordState{Kind: StateBookedByOrder, OrderID: 501},
		},
		{
			"merchant lock",
			SlotRecord{Status: RecordStatusUnavailable, LockedType: &merchantLock, LockReason: &reason},
			RecordState{Kind: StateMerchantLocked, Reason: "maintenance"},
		},
		{
			"order id outranks a merchant lock tag",
			SlotRecord{Status: RecordStatusUnavailable, LockedType: &merchantLock, OrderID: &orderID},
			RecordState{Kind: StateBookedByOrder, OrderID: 501},
		},
		{
			"unavailable without owner",
			SlotRecord{Status: RecordStatusUnavailable},
			RecordState{Kind: StateBlocked},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rec.State())
		})
	}
}
