package service

import (
	"context"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// OpenWindow is the resolved open/close span of a venue on one date.
// Closed reports a CLOSED_DATE override; Open/Close are meaningless then.
type OpenWindow struct {
	Open   string
	Close  string
	Closed bool
}

// HoursService resolves the governing business-hours rule for a venue and
// date. Pure read, no side effects.
type HoursService struct {
	rules BusinessHoursStore
}

// NewHoursService constructs a HoursService.
func NewHoursService(rules BusinessHoursStore) *HoursService {
	return &HoursService{rules: rules}
}

// Resolve fetches the venue's rules and resolves them for the given date.
func (s *HoursService) Resolve(ctx context.Context, venueID int64, date time.Time) (OpenWindow, error) {
	rules, err := s.rules.ListByVenue(ctx, venueID)
	if err != nil {
		return OpenWindow{}, err
	}
	return ResolveWindow(rules, date), nil
}

// ResolveWindow applies the rule precedence for one date: any matching
// CLOSED_DATE rule wins unconditionally, then a matching SPECIAL_DATE rule,
// then the REGULAR rule for the date's weekday, then the system default
// window. Among rules of the same type the highest priority wins; the store
// returns them ordered by priority descending, so the first match is taken.
func ResolveWindow(rules []*model.BusinessHoursRule, date time.Time) OpenWindow {
	dateStr := date.Format(model.DateLayout)
	weekday := int(date.Weekday())

	var special, regular *model.BusinessHoursRule
	for _, rule := range rules {
		switch rule.RuleType {
		case model.RuleTypeClosedDate:
			if rule.EffectiveDate != nil && *rule.EffectiveDate == dateStr {
				return OpenWindow{Closed: true}
			}
		case model.RuleTypeSpecialDate:
			if special == nil && rule.EffectiveDate != nil && *rule.EffectiveDate == dateStr {
				special = rule
			}
		case model.RuleTypeRegular:
			if regular == nil && rule.DayOfWeek != nil && *rule.DayOfWeek == weekday {
				regular = rule
			}
		}
	}
	if special != nil {
		return OpenWindow{Open: special.OpenTime, Close: special.CloseTime}
	}
	if regular != nil {
		return OpenWindow{Open: regular.OpenTime, Close: regular.CloseTime}
	}
	return OpenWindow{Open: model.DefaultOpenTime, Close: model.DefaultCloseTime}
}

// bandInWindow reports whether a template band lies fully inside the window.
func bandInWindow(w OpenWindow, startTime, endTime string) bool {
	if w.Closed {
		return false
	}
	open, ok1 := model.MinuteOfDay(w.Open)
	close, ok2 := model.MinuteOfDay(w.Close)
	start, ok3 := model.MinuteOfDay(startTime)
	end, ok4 := model.MinuteOfDay(endTime)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return start >= open && end <= close
}
