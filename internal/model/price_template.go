package model

import "time"

// PriceTemplate groups the time-banded prices of one merchant.  A venue binds
// at most one template, and at most one template per merchant may be the
// default used for venues without an explicit binding.
//
// Fields:
//  ID         – primary key identifier.
//  MerchantID – owning merchant.
//  Name       – display name.
//  IsDefault  – whether this is the merchant's default template.
//  IsEnabled  – disabled templates resolve no prices.
//  IsDeleted  – soft-delete flag.
type PriceTemplate struct {
	ID         int64     // price_templates.id
	MerchantID int64     // price_templates.merchant_id
	Name       string    // price_templates.name
	IsDefault  bool      // price_templates.is_default
	IsEnabled  bool      // price_templates.is_enabled
	IsDeleted  bool      // price_templates.is_deleted
	CreatedAt  time.Time // price_templates.created_at
	UpdatedAt  time.Time // price_templates.updated_at
}

// PriceTemplatePeriod is one time band of a template with a price per day
// class.  Prices are integer cents.  Periods of one template must not
// overlap; [StartTime, EndTime) contains a band when the band's start falls
// inside it.
type PriceTemplatePeriod struct {
	ID                int64  // price_template_periods.id
	TemplateID        int64  // price_template_periods.template_id
	StartTime         string // price_template_periods.start_time
	EndTime           string // price_template_periods.end_time
	WeekdayPriceCents int64  // price_template_periods.weekday_price_cents
	WeekendPriceCents int64  // price_template_periods.weekend_price_cents
	HolidayPriceCents int64  // price_template_periods.holiday_price_cents
	IsEnabled         bool   // price_template_periods.is_enabled
}

// DayClass is the pricing classification of a calendar date.
type DayClass int

const (
	DayClassWeekday DayClass = iota
	DayClassWeekend
	DayClassHoliday
)

// PriceCents returns the tier price of a period for the given class.
func (p *PriceTemplatePeriod) PriceCents(class DayClass) int64 {
	switch class {
	case DayClassHoliday:
		return p.HolidayPriceCents
	case DayClassWeekend:
		return p.WeekendPriceCents
	default:
		return p.WeekdayPriceCents
	}
}
