package model

import "time"

// Business hours rule types in ascending precedence: a REGULAR weekly rule is
// overridden by a SPECIAL_DATE window for a specific date, which in turn is
// overridden by a CLOSED_DATE rule shutting the venue entirely.
const (
	RuleTypeRegular     = "REGULAR"
	RuleTypeSpecialDate = "SPECIAL_DATE"
	RuleTypeClosedDate  = "CLOSED_DATE"
)

// Default open window applied when a venue has configured no rule at all.
const (
	DefaultOpenTime  = "06:00"
	DefaultCloseTime = "23:00"
)

// BusinessHoursRule is one row of a venue's opening configuration.  REGULAR
// rules are keyed by DayOfWeek; SPECIAL_DATE and CLOSED_DATE rules are keyed
// by EffectiveDate.  Rows are owned by the venue configuration service and
// read-only here.
type BusinessHoursRule struct {
	ID            int64     // business_hours_rules.id
	VenueID       int64     // business_hours_rules.venue_id
	RuleType      string    // business_hours_rules.rule_type
	DayOfWeek     *int      // business_hours_rules.day_of_week, 0=Sunday (nullable)
	EffectiveDate *string   // business_hours_rules.effective_date (nullable)
	OpenTime      string    // business_hours_rules.open_time
	CloseTime     string    // business_hours_rules.close_time
	Priority      int       // business_hours_rules.priority
	CreatedAt     time.Time // business_hours_rules.created_at
}

// Holiday marks a calendar date priced with the holiday tier.  Rows are
// maintained by the platform and read-only here.
type Holiday struct {
	ID          int64  // holidays.id
	HolidayDate string // holidays.holiday_date, "YYYY-MM-DD"
	Name        string // holidays.name
}
