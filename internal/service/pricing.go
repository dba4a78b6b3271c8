package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// PlatformDefaultPriceCents is the fixed fallback applied when no price
// template or period covers a band.
const PlatformDefaultPriceCents int64 = 10000

// PriceService owns the merchant price templates and resolves per-band
// prices for availability reads.
type PriceService struct {
	templates PriceTemplateStore
	venues    VenueStore
	hours     BusinessHoursStore
	logger    *zap.Logger
}

// NewPriceService constructs a PriceService.
func NewPriceService(templates PriceTemplateStore, venues VenueStore, hours BusinessHoursStore, logger *zap.Logger) *PriceService {
	return &PriceService{templates: templates, venues: venues, hours: hours, logger: logger}
}

// ClassifyDay buckets a date for pricing: the holiday table wins, then
// Saturday/Sunday, then weekday.
func ClassifyDay(date time.Time, holiday bool) model.DayClass {
	if holiday {
		return model.DayClassHoliday
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return model.DayClassWeekend
	default:
		return model.DayClassWeekday
	}
}

// PriceFor resolves the price of a band starting at startTime from the given
// periods. The period whose [start, end) span contains the band start wins;
// with no match the platform default applies.
func PriceFor(startTime string, periods []*model.PriceTemplatePeriod, class model.DayClass) int64 {
	start, ok := model.MinuteOfDay(startTime)
	if !ok {
		return PlatformDefaultPriceCents
	}
	for _, p := range periods {
		if !p.IsEnabled {
			continue
		}
		from, ok1 := model.MinuteOfDay(p.StartTime)
		to, ok2 := model.MinuteOfDay(p.EndTime)
		if !ok1 || !ok2 {
			continue
		}
		if start >= from && start < to {
			return p.PriceCents(class)
		}
	}
	return PlatformDefaultPriceCents
}

// ValidatePeriods rejects malformed or mutually overlapping periods before
// any write.
func ValidatePeriods(periods []model.PriceTemplatePeriod) error {
	if len(periods) == 0 {
		return validationf("at least one period is required")
	}
	type span struct{ from, to int }
	spans := make([]span, 0, len(periods))
	for _, p := range periods {
		from, ok1 := model.MinuteOfDay(p.StartTime)
		to, ok2 := model.MinuteOfDay(p.EndTime)
		if !ok1 || !ok2 {
			return validationf("invalid period time %q-%q", p.StartTime, p.EndTime)
		}
		if from >= to {
			return validationf("period %s-%s is inverted", p.StartTime, p.EndTime)
		}
		if p.WeekdayPriceCents < 0 || p.WeekendPriceCents < 0 || p.HolidayPriceCents < 0 {
			return validationf("period prices must not be negative")
		}
		spans = append(spans, span{from, to})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
	for i := 1; i < len(spans); i++ {
		if spans[i].from < spans[i-1].to {
			return validationf("periods overlap")
		}
	}
	return nil
}

// venuePeriods loads the periods governing a venue: the bound template when
// one is set and enabled, otherwise the merchant's default template, else
// nothing.
func (s *PriceService) venuePeriods(ctx context.Context, venue *model.Venue) ([]*model.PriceTemplatePeriod, error) {
	var templateID int64
	if venue.PriceTemplateID != nil {
		tpl, err := s.templates.GetByID(ctx, *venue.PriceTemplateID)
		if err == nil && tpl.IsEnabled {
			templateID = tpl.ID
		}
	}
	if templateID == 0 {
		tpl, err := s.templates.GetDefaultByMerchant(ctx, venue.MerchantID)
		if err != nil {
			return nil, err
		}
		if tpl == nil || !tpl.IsEnabled {
			return nil, nil
		}
		templateID = tpl.ID
	}
	return s.templates.ListPeriods(ctx, templateID)
}

// ResolveSlotPrices returns a resolver closure for one (venue, date) pair so
// availability queries classify the day and load periods once per request.
func (s *PriceService) ResolveSlotPrices(ctx context.Context, venue *model.Venue, date time.Time) (func(startTime string) int64, error) {
	holiday, err := s.hours.IsHoliday(ctx, date.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	class := ClassifyDay(date, holiday)
	periods, err := s.venuePeriods(ctx, venue)
	if err != nil {
		return nil, err
	}
	return func(startTime string) int64 {
		return PriceFor(startTime, periods, class)
	}, nil
}

// requireOwned loads a template and verifies the merchant owns it.
func (s *PriceService) requireOwned(ctx context.Context, templateID, merchantID int64) (*model.PriceTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.MerchantID != merchantID {
		return nil, ErrNotOwner
	}
	return tpl, nil
}

// Create validates and persists a new template for the merchant.  When the
// merchant marks it default, the default flag is swapped after creation so
// the one-default invariant holds.
func (s *PriceService) Create(ctx context.Context, merchantID int64, name string, isDefault bool, periods []model.PriceTemplatePeriod) (*model.PriceTemplate, error) {
	if name == "" {
		return nil, validationf("name is required")
	}
	if err := ValidatePeriods(periods); err != nil {
		return nil, err
	}
	tpl := &model.PriceTemplate{MerchantID: merchantID, Name: name, IsEnabled: true}
	if err := s.templates.Create(ctx, tpl, periods); err != nil {
		return nil, err
	}
	if isDefault {
		if err := s.templates.SwapDefault(ctx, merchantID, tpl.ID); err != nil {
			return nil, err
		}
		tpl.IsDefault = true
	}
	s.logger.Info("price template created",
		zap.Int64("template_id", tpl.ID), zap.Int64("merchant_id", merchantID))
	return tpl, nil
}

// Update replaces a template's name, enabled flag and period set.
func (s *PriceService) Update(ctx context.Context, merchantID, templateID int64, name string, isEnabled bool, periods []model.PriceTemplatePeriod) error {
	tpl, err := s.requireOwned(ctx, templateID, merchantID)
	if err != nil {
		return err
	}
	if name == "" {
		return validationf("name is required")
	}
	if err := ValidatePeriods(periods); err != nil {
		return err
	}
	tpl.Name = name
	tpl.IsEnabled = isEnabled
	return s.templates.Update(ctx, tpl, periods)
}

// Get returns one owned template with its periods.
func (s *PriceService) Get(ctx context.Context, merchantID, templateID int64) (*model.PriceTemplate, []*model.PriceTemplatePeriod, error) {
	tpl, err := s.requireOwned(ctx, templateID, merchantID)
	if err != nil {
		return nil, nil, err
	}
	periods, err := s.templates.ListPeriods(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	return tpl, periods, nil
}

// List returns the merchant's templates.
func (s *PriceService) List(ctx context.Context, merchantID int64) ([]*model.PriceTemplate, error) {
	return s.templates.ListByMerchant(ctx, merchantID)
}

// SetDefault makes the template the merchant's default via a two-step swap.
func (s *PriceService) SetDefault(ctx context.Context, merchantID, templateID int64) error {
	if _, err := s.requireOwned(ctx, templateID, merchantID); err != nil {
		return err
	}
	return s.templates.SwapDefault(ctx, merchantID, templateID)
}

// Delete soft-deletes a template. Blocked while any venue still references
// it, so availability reads never dangle.
func (s *PriceService) Delete(ctx context.Context, merchantID, templateID int64) error {
	if _, err := s.requireOwned(ctx, templateID, merchantID); err != nil {
		return err
	}
	refs, err := s.venues.CountByPriceTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrPriceTemplateInUse
	}
	if err := s.templates.SoftDelete(ctx, templateID); err != nil {
		return err
	}
	s.logger.Info("price template deleted",
		zap.Int64("template_id", templateID), zap.Int64("merchant_id", merchantID))
	return nil
}

// Bind points a venue at one of the merchant's templates. Passing a zero
// template id clears the binding.
func (s *PriceService) Bind(ctx context.Context, merchantID, venueID, templateID int64) error {
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return err
	}
	if venue.MerchantID != merchantID {
		return ErrNotOwner
	}
	if templateID != 0 {
		if _, err := s.requireOwned(ctx, templateID, merchantID); err != nil {
			return err
		}
	}
	return s.venues.BindPriceTemplate(ctx, venueID, templateID)
}
