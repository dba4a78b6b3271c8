package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

func dayPtr(d int) *int       { return &d }
func strPtr(s string) *string { return &s }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestResolveWindowDefault(t *testing.T) {
	w := ResolveWindow(nil, mustDate(t, "2026-03-02"))
	assert.False(t, w.Closed)
	assert.Equal(t, model.DefaultOpenTime, w.Open)
	assert.Equal(t, model.DefaultCloseTime, w.Close)
}

func TestResolveWindowPrecedence(t *testing.T) {
	// 2026-03-02 is a Monday.
	regular := &model.BusinessHoursRule{
		RuleType: model.RuleTypeRegular, DayOfWeek: dayPtr(1),
		OpenTime: "08:00", CloseTime: "22:00",
	}
	special := &model.BusinessHoursRule{
		RuleType: model.RuleTypeSpecialDate, EffectiveDate: strPtr("2026-03-02"),
		OpenTime: "10:00", CloseTime: "18:00",
	}
	closed := &model.BusinessHoursRule{
		RuleType: model.RuleTypeClosedDate, EffectiveDate: strPtr("2026-03-02"),
	}
	date := mustDate(t, "2026-03-02")

	w := ResolveWindow([]*model.BusinessHoursRule{regular}, date)
	assert.Equal(t, OpenWindow{Open: "08:00", Close: "22:00"}, w)

	w = ResolveWindow([]*model.BusinessHoursRule{regular, special}, date)
	assert.Equal(t, OpenWindow{Open: "10:00", Close: "18:00"}, w)

	w = ResolveWindow([]*model.BusinessHoursRule{regular, special, closed}, date)
	assert.True(t, w.Closed)
}

func TestResolveWindowIgnoresOtherDates(t *testing.T) {
	special := &model.BusinessHoursRule{
		RuleType: model.RuleTypeSpecialDate, EffectiveDate: strPtr("2026-03-03"),
		OpenTime: "10:00", CloseTime: "18:00",
	}
	closed := &model.BusinessHoursRule{
		RuleType: model.RuleTypeClosedDate, EffectiveDate: strPtr("2026-03-03"),
	}
	w := ResolveWindow([]*model.BusinessHoursRule{special, closed}, mustDate(t, "2026-03-02"))
	assert.False(t, w.Closed)
	assert.Equal(t, model.DefaultOpenTime, w.Open)
}

func TestResolveWindowPriorityOrder(t *testing.T) {
	// The store hands rules highest priority first; the first regular match
	// must win even when a lower-priority rule also matches the weekday.
	high := &model.BusinessHoursRule{
		RuleType: model.RuleTypeRegular, DayOfWeek: dayPtr(1),
		OpenTime: "09:00", CloseTime: "21:00", Priority: 10,
	}
	low := &model.BusinessHoursRule{
		RuleType: model.RuleTypeRegular, DayOfWeek: dayPtr(1),
		OpenTime: "07:00", CloseTime: "23:00", Priority: 1,
	}
	w := ResolveWindow([]*model.BusinessHoursRule{high, low}, mustDate(t, "2026-03-02"))
	assert.Equal(t, "09:00", w.Open)
	assert.Equal(t, "21:00", w.Close)
}

func TestBandInWindow(t *testing.T) {
	w := OpenWindow{Open: "08:00", Close: "22:00"}
	assert.True(t, bandInWindow(w, "08:00", "09:00"))
	assert.True(t, bandInWindow(w, "21:00", "22:00"))
	assert.False(t, bandInWindow(w, "07:00", "08:00"))
	assert.False(t, bandInWindow(w, "21:30", "22:30"))
	assert.False(t, bandInWindow(OpenWindow{Closed: true}, "10:00", "11:00"))
}
