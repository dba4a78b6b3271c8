package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// Generation statuses reported per date.
const (
	GenerationSuccess = "success"
	GenerationSkipped = "skipped"
	GenerationClosed  = "closed"
	GenerationFailed  = "failed"
)

// SlotAvailability is one band of a court's availability view on a date.
type SlotAvailability struct {
	TemplateID   int64  `json:"template_id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Available    bool   `json:"available"`
	PriceCents   int64  `json:"price_cents"`
	StatusRemark string `json:"status_remark,omitempty"`
}

// CourtAvailability groups a venue-wide query by court.
type CourtAvailability struct {
	CourtID   int64              `json:"court_id"`
	CourtName string             `json:"court_name"`
	Slots     []SlotAvailability `json:"slots"`
}

// GenerationResult reports one date's batch generation outcome.
type GenerationResult struct {
	Status     string `json:"status"`
	TotalSlots int    `json:"total_slots"`
	Message    string `json:"message,omitempty"`
}

// DayGeneration is one line of a range generation result.
type DayGeneration struct {
	Date       string `json:"date"`
	Status     string `json:"status"`
	TotalSlots int    `json:"total_slots"`
	Message    string `json:"message,omitempty"`
}

// RangeGenerationResult accumulates per-day outcomes over a date range.
type RangeGenerationResult struct {
	TotalDays   int             `json:"total_days"`
	TotalSlots  int             `json:"total_slots"`
	SkippedDays int             `json:"skipped_days"`
	Days        []DayGeneration `json:"days"`
}

// maxGenerationRangeDays bounds a single backfill request.
const maxGenerationRangeDays = 366

// AvailabilityService is the center of the subsystem: it reconciles template
// bands, business hours and persisted records into one availability view,
// and materializes explicit records across date ranges.
type AvailabilityService struct {
	venues    VenueStore
	courts    CourtStore
	templates SlotTemplateStore
	records   SlotRecordStore
	hours     *HoursService
	prices    *PriceService
	logger    *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(venues VenueStore, courts CourtStore, templates SlotTemplateStore,
	records SlotRecordStore, hours *HoursService, prices *PriceService, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		venues: venues, courts: courts, templates: templates,
		records: records, hours: hours, prices: prices, logger: logger,
	}
}

// inWindowTemplates filters a court's bands to those fully inside the window.
func inWindowTemplates(templates []*model.SlotTemplate, w OpenWindow) []*model.SlotTemplate {
	var in []*model.SlotTemplate
	for _, t := range templates {
		if bandInWindow(w, t.StartTime, t.EndTime) {
			in = append(in, t)
		}
	}
	return in
}

// statusRemark renders the reason a band is unavailable for the client.
func statusRemark(state model.RecordState) string {
	switch state.Kind {
	case model.StateBookedByOrder:
		if state.OrderID != 0 {
			return fmt.Sprintf("booked by order %d", state.OrderID)
		}
		return "booked"
	case model.StateMerchantLocked:
		if state.Reason != "" {
			return state.Reason
		}
		return "locked by merchant"
	case model.StateBlocked:
		return "unavailable"
	}
	return ""
}

// GenerateForDate materializes explicit AVAILABLE records for every in-window
// band of a court on one date.  A closed date is a no-op; existing records
// cause a skip unless overwrite is set, in which case only plain AVAILABLE
// rows are replaced and rows owned by bookings or locks survive untouched.
// A non-zero operatorID must own the court's venue; zero marks a system
// caller such as the backfill job.
func (s *AvailabilityService) GenerateForDate(ctx context.Context, courtID int64, date time.Time, overwrite bool, operatorID int64) (GenerationResult, error) {
	court, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return GenerationResult{}, err
	}
	if operatorID != 0 {
		venue, err := s.venues.GetByID(ctx, court.VenueID)
		if err != nil {
			return GenerationResult{}, err
		}
		if venue.MerchantID != operatorID {
			return GenerationResult{}, ErrNotOwner
		}
	}
	window, err := s.hours.Resolve(ctx, court.VenueID, date)
	if err != nil {
		return GenerationResult{}, err
	}
	if window.Closed {
		return GenerationResult{Status: GenerationClosed, Message: "venue closed on this date"}, nil
	}
	templates, err := s.templates.ListActiveByCourt(ctx, courtID)
	if err != nil {
		return GenerationResult{}, err
	}
	bands := inWindowTemplates(templates, window)
	if len(bands) == 0 {
		return GenerationResult{Status: GenerationSuccess, Message: "no bands inside business hours"}, nil
	}
	dateStr := date.Format(model.DateLayout)
	templateIDs := make([]int64, 0, len(bands))
	for _, t := range bands {
		templateIDs = append(templateIDs, t.ID)
	}
	existing, err := s.records.ListByTemplatesAndDate(ctx, templateIDs, dateStr)
	if err != nil {
		return GenerationResult{}, err
	}
	if len(existing) > 0 && !overwrite {
		return GenerationResult{Status: GenerationSkipped, Message: "records already generated"}, nil
	}

	source := model.OperatorSourceSystem
	if operatorID != 0 {
		source = model.OperatorSourceMerchant
	}
	newRecord := func(templateID int64) model.SlotRecord {
		return model.SlotRecord{
			TemplateID:     templateID,
			BookingDate:    dateStr,
			Status:         model.RecordStatusAvailable,
			OperatorID:     operatorID,
			OperatorSource: source,
		}
	}

	if len(existing) == 0 {
		inserts := make([]model.SlotRecord, 0, len(bands))
		for _, id := range templateIDs {
			inserts = append(inserts, newRecord(id))
		}
		if err := s.records.BulkInsert(ctx, inserts); err != nil {
			return GenerationResult{}, err
		}
		return GenerationResult{Status: GenerationSuccess, TotalSlots: len(inserts)}, nil
	}

	// Overwrite: bands whose record is booked or locked keep their row; the
	// rest get a fresh AVAILABLE row after the old one is removed.
	surviving := make(map[int64]bool)
	for _, rec := range existing {
		if rec.State().Kind != model.StateAvailable {
			surviving[rec.TemplateID] = true
		}
	}
	var inserts []model.SlotRecord
	for _, id := range templateIDs {
		if !surviving[id] {
			inserts = append(inserts, newRecord(id))
		}
	}
	removed, err := s.records.RegenerateForDate(ctx, dateStr, templateIDs, inserts)
	if err != nil {
		return GenerationResult{}, err
	}
	s.logger.Info("slot records regenerated",
		zap.Int64("court_id", courtID), zap.String("date", dateStr),
		zap.Int64("removed", removed), zap.Int("inserted", len(inserts)))
	return GenerationResult{Status: GenerationSuccess, TotalSlots: len(inserts)}, nil
}

// GenerateForDateRange runs GenerateForDate for every day of [start, end],
// accumulating per-day statuses. A failing day is recorded and the loop
// continues; only invalid input aborts before any write.
func (s *AvailabilityService) GenerateForDateRange(ctx context.Context, courtID int64, start, end time.Time, overwrite bool, operatorID int64) (RangeGenerationResult, error) {
	if end.Before(start) {
		return RangeGenerationResult{}, validationf("end date is before start date")
	}
	if int(end.Sub(start).Hours()/24) >= maxGenerationRangeDays {
		return RangeGenerationResult{}, validationf("date range exceeds %d days", maxGenerationRangeDays)
	}
	var out RangeGenerationResult
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out.TotalDays++
		dayStr := day.Format(model.DateLayout)
		res, err := s.GenerateForDate(ctx, courtID, day, overwrite, operatorID)
		if err != nil {
			s.logger.Warn("slot generation failed for day",
				zap.Int64("court_id", courtID), zap.String("date", dayStr), zap.Error(err))
			out.Days = append(out.Days, DayGeneration{Date: dayStr, Status: GenerationFailed, Message: err.Error()})
			continue
		}
		out.TotalSlots += res.TotalSlots
		if res.Status == GenerationSkipped {
			out.SkippedDays++
		}
		out.Days = append(out.Days, DayGeneration{
			Date: dayStr, Status: res.Status, TotalSlots: res.TotalSlots, Message: res.Message,
		})
	}
	return out, nil
}

// courtSlots builds the availability view of one court given the venue's
// resolved window and price resolver.
func (s *AvailabilityService) courtSlots(ctx context.Context, courtID int64, date string, window OpenWindow, priceAt func(string) int64) ([]SlotAvailability, error) {
	templates, err := s.templates.ListActiveByCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	bands := inWindowTemplates(templates, window)
	if len(bands) == 0 {
		return nil, nil
	}
	templateIDs := make([]int64, 0, len(bands))
	for _, t := range bands {
		templateIDs = append(templateIDs, t.ID)
	}
	records, err := s.records.ListByTemplatesAndDate(ctx, templateIDs, date)
	if err != nil {
		return nil, err
	}
	byTemplate := make(map[int64]*model.SlotRecord, len(records))
	for _, rec := range records {
		byTemplate[rec.TemplateID] = rec
	}
	slots := make([]SlotAvailability, 0, len(bands))
	for _, band := range bands {
		state := byTemplate[band.ID].State() // nil record classifies as available
		slot := SlotAvailability{
			TemplateID: band.ID,
			StartTime:  band.StartTime,
			EndTime:    band.EndTime,
			Available:  state.Kind == model.StateAvailable,
			PriceCents: priceAt(band.StartTime),
		}
		if !slot.Available {
			slot.StatusRemark = statusRemark(state)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// QueryAvailability returns the availability view of one court on one date.
// Out-of-window bands are omitted entirely; a closed date yields an empty
// list.
func (s *AvailabilityService) QueryAvailability(ctx context.Context, courtID int64, date time.Time) ([]SlotAvailability, error) {
	court, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return nil, err
	}
	venue, err := s.venues.GetByID(ctx, court.VenueID)
	if err != nil {
		return nil, err
	}
	window, err := s.hours.Resolve(ctx, venue.ID, date)
	if err != nil {
		return nil, err
	}
	if window.Closed {
		return nil, nil
	}
	priceAt, err := s.prices.ResolveSlotPrices(ctx, venue, date)
	if err != nil {
		return nil, err
	}
	return s.courtSlots(ctx, courtID, date.Format(model.DateLayout), window, priceAt)
}

// QueryVenueAvailability fans the availability query out over every court of
// a venue, optionally post-filtered to bands inside [startTime, endTime].
func (s *AvailabilityService) QueryVenueAvailability(ctx context.Context, venueID int64, date time.Time, startTime, endTime string) ([]CourtAvailability, error) {
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	window, err := s.hours.Resolve(ctx, venue.ID, date)
	if err != nil {
		return nil, err
	}
	if window.Closed {
		return nil, nil
	}
	courts, err := s.courts.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	priceAt, err := s.prices.ResolveSlotPrices(ctx, venue, date)
	if err != nil {
		return nil, err
	}
	dateStr := date.Format(model.DateLayout)
	out := make([]CourtAvailability, 0, len(courts))
	for _, court := range courts {
		slots, err := s.courtSlots(ctx, court.ID, dateStr, window, priceAt)
		if err != nil {
			return nil, err
		}
		if startTime != "" || endTime != "" {
			slots = filterSlotsByWindow(slots, startTime, endTime)
		}
		out = append(out, CourtAvailability{CourtID: court.ID, CourtName: court.Name, Slots: slots})
	}
	return out, nil
}

// filterSlotsByWindow keeps slots fully inside the optional [from, to] span.
// An empty bound leaves that side open.
func filterSlotsByWindow(slots []SlotAvailability, from, to string) []SlotAvailability {
	fromMin := 0
	toMin := 24 * 60
	if m, ok := model.MinuteOfDay(from); ok {
		fromMin = m
	}
	if m, ok := model.MinuteOfDay(to); ok {
		toMin = m
	}
	var kept []SlotAvailability
	for _, slot := range slots {
		start, ok1 := model.MinuteOfDay(slot.StartTime)
		end, ok2 := model.MinuteOfDay(slot.EndTime)
		if ok1 && ok2 && start >= fromMin && end <= toMin {
			kept = append(kept, slot)
		}
	}
	return kept
}
