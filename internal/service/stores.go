// Package service implements the availability subsystem's business logic:
// business-hours resolution, availability queries and batch generation,
// merchant lock management and price resolution.  Services depend on small
// store interfaces rather than concrete repositories so the decision logic
// can be exercised against in-memory fakes.
package service

import (
	"context"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
	"github.com/iliyamo/court-slot-reservation/internal/repository"
)

// VenueStore supplies venue identity and the price template binding.
type VenueStore interface {
	GetByID(ctx context.Context, id int64) (*model.Venue, error)
	BindPriceTemplate(ctx context.Context, venueID, templateID int64) error
	CountByPriceTemplate(ctx context.Context, templateID int64) (int64, error)
}

// CourtStore supplies court identity.
type CourtStore interface {
	GetByID(ctx context.Context, id int64) (*model.Court, error)
	ListByVenue(ctx context.Context, venueID int64) ([]*model.Court, error)
}

// BusinessHoursStore supplies opening rules and the holiday calendar.
type BusinessHoursStore interface {
	ListByVenue(ctx context.Context, venueID int64) ([]*model.BusinessHoursRule, error)
	IsHoliday(ctx context.Context, date string) (bool, error)
}

// SlotTemplateStore supplies recurring band definitions.
type SlotTemplateStore interface {
	GetByID(ctx context.Context, id int64) (*model.SlotTemplate, error)
	ListActiveByCourt(ctx context.Context, courtID int64) ([]*model.SlotTemplate, error)
}

// SlotRecordStore is the write surface of the availability store.  The
// conditional methods carry the compare-and-swap guarantees described on
// repository.SlotRecordRepo.
type SlotRecordStore interface {
	GetByID(ctx context.Context, id int64) (*model.SlotRecord, error)
	GetByTemplateAndDate(ctx context.Context, templateID int64, date string) (*model.SlotRecord, error)
	ListByTemplatesAndDate(ctx context.Context, templateIDs []int64, date string) ([]*model.SlotRecord, error)
	ListLocked(ctx context.Context, f repository.LockedSlotFilter) ([]*model.LockedSlot, error)
	Insert(ctx context.Context, rec *model.SlotRecord) error
	LockIfAvailable(ctx context.Context, id int64, reason string, operatorID int64) error
	BookIfAvailable(ctx context.Context, id int64, orderID int64) error
	DeleteIfMerchantLocked(ctx context.Context, id int64) error
	DemoteToAvailable(ctx context.Context, id int64, operatorID int64) error
	ReleaseByOrder(ctx context.Context, orderID int64) (int64, error)
	BulkInsert(ctx context.Context, records []model.SlotRecord) error
	RegenerateForDate(ctx context.Context, date string, templateIDs []int64, inserts []model.SlotRecord) (int64, error)
}

// PriceTemplateStore supplies price templates and their periods.
type PriceTemplateStore interface {
	GetByID(ctx context.Context, id int64) (*model.PriceTemplate, error)
	GetDefaultByMerchant(ctx context.Context, merchantID int64) (*model.PriceTemplate, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]*model.PriceTemplate, error)
	ListPeriods(ctx context.Context, templateID int64) ([]*model.PriceTemplatePeriod, error)
	Create(ctx context.Context, tpl *model.PriceTemplate, periods []model.PriceTemplatePeriod) error
	Update(ctx context.Context, tpl *model.PriceTemplate, periods []model.PriceTemplatePeriod) error
	SwapDefault(ctx context.Context, merchantID, templateID int64) error
	SoftDelete(ctx context.Context, templateID int64) error
}

// EventPublisher emits domain events after successful lock transitions.
// Publishing is best-effort; implementations log failures and never block
// the request outcome.
type EventPublisher interface {
	PublishSlotLocked(ctx context.Context, ev queue.SlotLockedEvent)
	PublishSlotUnlocked(ctx context.Context, ev queue.SlotUnlockedEvent)
}
