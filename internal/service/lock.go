package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
	"github.com/iliyamo/court-slot-reservation/internal/repository"
)

// LockRequest identifies one band-date pair in a batch lock call.
type LockRequest struct {
	TemplateID  int64  `json:"template_id"`
	BookingDate string `json:"booking_date"`
}

// BatchItemError describes one failed item of a batch operation.
type BatchItemError struct {
	TemplateID  int64  `json:"template_id,omitempty"`
	RecordID    int64  `json:"record_id,omitempty"`
	BookingDate string `json:"booking_date,omitempty"`
	Message     string `json:"message"`
}

// BookedSlotDetail surfaces the slots a batch lock could not take because a
// customer order owns them. Merchant UIs show these prominently, so they are
// reported apart from generic failures.
type BookedSlotDetail struct {
	TemplateID  int64  `json:"template_id"`
	BookingDate string `json:"booking_date"`
	OrderID     int64  `json:"order_id,omitempty"`
}

// LockBatchResult is the per-item breakdown of a batch lock.
type LockBatchResult struct {
	Total             int                `json:"total"`
	Success           int                `json:"success"`
	Failed            int                `json:"failed"`
	BookedCount       int                `json:"booked_count"`
	Errors            []BatchItemError   `json:"errors,omitempty"`
	BookedSlotDetails []BookedSlotDetail `json:"booked_slot_details,omitempty"`
}

// UnlockBatchResult is the per-item breakdown of a batch unlock.
type UnlockBatchResult struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []BatchItemError `json:"errors,omitempty"`
}

// LockService converts available slots into merchant holds and back.  It
// writes through the same conditional operations availability reads are
// reconciled against, so a lock and a concurrent customer booking can never
// both win the same band.
type LockService struct {
	venues    VenueStore
	courts    CourtStore
	templates SlotTemplateStore
	records   SlotRecordStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewLockService constructs a LockService. publisher may be nil, which
// disables event emission.
func NewLockService(venues VenueStore, courts CourtStore, templates SlotTemplateStore,
	records SlotRecordStore, publisher EventPublisher, logger *zap.Logger) *LockService {
	return &LockService{
		venues: venues, courts: courts, templates: templates,
		records: records, publisher: publisher, logger: logger,
	}
}

// resolveOwnedTemplate walks the template -> court -> venue chain and
// verifies the venue belongs to the merchant.
func (s *LockService) resolveOwnedTemplate(ctx context.Context, templateID, merchantID int64) (*model.SlotTemplate, *model.Court, *model.Venue, error) {
	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, nil, nil, err
	}
	court, err := s.courts.GetByID(ctx, template.CourtID)
	if err != nil {
		return nil, nil, nil, err
	}
	venue, err := s.venues.GetByID(ctx, court.VenueID)
	if err != nil {
		return nil, nil, nil, err
	}
	if venue.MerchantID != merchantID {
		return nil, nil, nil, ErrNotOwner
	}
	return template, court, venue, nil
}

// classifyConflict re-reads a record after a conditional write lost its race
// and maps the winner's state to the right conflict error.
func (s *LockService) classifyConflict(ctx context.Context, templateID int64, date string) error {
	rec, err := s.records.GetByTemplateAndDate(ctx, templateID, date)
	if err != nil {
		return err
	}
	switch state := rec.State(); state.Kind {
	case model.StateBookedByOrder:
		return &SlotBookedError{OrderID: state.OrderID}
	case model.StateMerchantLocked:
		return ErrAlreadyLocked
	default:
		return ErrStateConflict
	}
}

// Lock converts an available band-date into a merchant hold and returns the
// record id.  The decision is a four-way branch on the persisted state: no
// record or a plain AVAILABLE row can be taken; an existing merchant lock is
// rejected as already locked; a customer order always wins and is reported
// with its order id so the merchant cancels it first; anything else is a
// plain state conflict.
func (s *LockService) Lock(ctx context.Context, templateID int64, date time.Time, reason string, merchantID int64) (int64, error) {
	if reason == "" {
		return 0, validationf("lock reason is required")
	}
	template, court, venue, err := s.resolveOwnedTemplate(ctx, templateID, merchantID)
	if err != nil {
		return 0, err
	}
	if template.IsDeleted {
		return 0, ErrTemplateDeleted
	}
	dateStr := date.Format(model.DateLayout)
	rec, err := s.records.GetByTemplateAndDate(ctx, templateID, dateStr)
	if err != nil {
		return 0, err
	}

	var recordID int64
	switch state := rec.State(); state.Kind {
	case model.StateAvailable:
		if rec == nil {
			lockType := model.LockedTypeMerchantLock
			fresh := &model.SlotRecord{
				TemplateID:     templateID,
				BookingDate:    dateStr,
				Status:         model.RecordStatusUnavailable,
				LockedType:     &lockType,
				LockReason:     &reason,
				OperatorID:     merchantID,
				OperatorSource: model.OperatorSourceMerchant,
			}
			if err := s.records.Insert(ctx, fresh); err != nil {
				if errors.Is(err, repository.ErrDuplicateRecord) {
					return 0, s.classifyConflict(ctx, templateID, dateStr)
				}
				return 0, err
			}
			recordID = fresh.ID
		} else {
			if err := s.records.LockIfAvailable(ctx, rec.ID, reason, merchantID); err != nil {
				if errors.Is(err, repository.ErrStateChanged) {
					return 0, s.classifyConflict(ctx, templateID, dateStr)
				}
				return 0, err
			}
			recordID = rec.ID
		}
	case model.StateBookedByOrder:
		return 0, &SlotBookedError{OrderID: state.OrderID}
	case model.StateMerchantLocked:
		return 0, ErrAlreadyLocked
	default:
		return 0, ErrStateConflict
	}

	s.logger.Info("slot locked",
		zap.Int64("record_id", recordID), zap.Int64("template_id", templateID),
		zap.String("date", dateStr), zap.Int64("merchant_id", merchantID))
	if s.publisher != nil {
		s.publisher.PublishSlotLocked(ctx, queue.SlotLockedEvent{
			EventID:     uuid.NewString(),
			RecordID:    recordID,
			TemplateID:  templateID,
			CourtID:     court.ID,
			VenueID:     venue.ID,
			MerchantID:  merchantID,
			BookingDate: dateStr,
			StartTime:   template.StartTime,
			EndTime:     template.EndTime,
			Reason:      reason,
			LockedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}
	return recordID, nil
}

// LockBatch applies Lock per item, each in its own transaction, and collects
// independent outcomes. Slots booked by customers are counted apart from
// other failures. The batch itself only fails on empty input.
func (s *LockService) LockBatch(ctx context.Context, requests []LockRequest, reason string, merchantID int64) (LockBatchResult, error) {
	if len(requests) == 0 {
		return LockBatchResult{}, validationf("empty batch")
	}
	out := LockBatchResult{Total: len(requests)}
	for _, req := range requests {
		date, err := time.Parse(model.DateLayout, req.BookingDate)
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, BatchItemError{
				TemplateID: req.TemplateID, BookingDate: req.BookingDate, Message: "invalid booking date",
			})
			continue
		}
		if _, err := s.Lock(ctx, req.TemplateID, date, reason, merchantID); err != nil {
			var booked *SlotBookedError
			if errors.As(err, &booked) {
				out.BookedCount++
				out.BookedSlotDetails = append(out.BookedSlotDetails, BookedSlotDetail{
					TemplateID: req.TemplateID, BookingDate: req.BookingDate, OrderID: booked.OrderID,
				})
			}
			out.Failed++
			out.Errors = append(out.Errors, BatchItemError{
				TemplateID: req.TemplateID, BookingDate: req.BookingDate, Message: err.Error(),
			})
			continue
		}
		out.Success++
	}
	return out, nil
}

// Unlock reverses a merchant lock.  A pure lock row is hard-deleted, which
// restores the band's implicit default; a lock row that somehow carries an
// order reference is demoted to AVAILABLE instead so the audit trail
// survives.
func (s *LockService) Unlock(ctx context.Context, recordID, merchantID int64) error {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if _, _, _, err := s.resolveOwnedTemplate(ctx, rec.TemplateID, merchantID); err != nil {
		// Deleted templates still resolve here; only a broken chain or a
		// foreign merchant fails.
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return ErrStateConflict
		}
		return err
	}
	// The raw column check is deliberate: State() reports BookedByOrder for
	// any row with an order id, but unlock must accept a MERCHANT_LOCK row
	// regardless and pick delete versus demote by the order linkage.
	if rec.LockedType == nil || *rec.LockedType != model.LockedTypeMerchantLock {
		return ErrNotMerchantLocked
	}
	if rec.OrderID == nil {
		if err := s.records.DeleteIfMerchantLocked(ctx, recordID); err != nil {
			if errors.Is(err, repository.ErrStateChanged) {
				return ErrNotMerchantLocked
			}
			return err
		}
	} else {
		if err := s.records.DemoteToAvailable(ctx, recordID, merchantID); err != nil {
			return err
		}
	}

	s.logger.Info("slot unlocked",
		zap.Int64("record_id", recordID), zap.Int64("merchant_id", merchantID))
	if s.publisher != nil {
		s.publisher.PublishSlotUnlocked(ctx, queue.SlotUnlockedEvent{
			EventID:     uuid.NewString(),
			RecordID:    recordID,
			TemplateID:  rec.TemplateID,
			MerchantID:  merchantID,
			BookingDate: rec.BookingDate,
			UnlockedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return nil
}

// UnlockBatch applies Unlock per item and collects independent outcomes.
func (s *LockService) UnlockBatch(ctx context.Context, recordIDs []int64, merchantID int64) (UnlockBatchResult, error) {
	if len(recordIDs) == 0 {
		return UnlockBatchResult{}, validationf("empty batch")
	}
	out := UnlockBatchResult{Total: len(recordIDs)}
	for _, id := range recordIDs {
		if err := s.Unlock(ctx, id, merchantID); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, BatchItemError{RecordID: id, Message: err.Error()})
			continue
		}
		out.Success++
	}
	return out, nil
}

// LockedSlots lists the UNAVAILABLE records of a court or venue in a date
// range, optionally restricted to one owner kind.
func (s *LockService) LockedSlots(ctx context.Context, merchantID int64, f repository.LockedSlotFilter) ([]*model.LockedSlot, error) {
	if f.CourtID == nil && f.VenueID == nil {
		return nil, validationf("court_id or venue_id is required")
	}
	start, err := time.Parse(model.DateLayout, f.StartDate)
	if err != nil {
		return nil, validationf("invalid start date")
	}
	end, err := time.Parse(model.DateLayout, f.EndDate)
	if err != nil {
		return nil, validationf("invalid end date")
	}
	if end.Before(start) {
		return nil, validationf("end date is before start date")
	}
	if f.LockedType != nil &&
		*f.LockedType != model.LockedTypeUserOrder && *f.LockedType != model.LockedTypeMerchantLock {
		return nil, validationf("invalid locked type")
	}

	var venueID int64
	if f.CourtID != nil {
		court, err := s.courts.GetByID(ctx, *f.CourtID)
		if err != nil {
			return nil, err
		}
		venueID = court.VenueID
	} else {
		venueID = *f.VenueID
	}
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue.MerchantID != merchantID {
		return nil, ErrNotOwner
	}
	return s.records.ListLocked(ctx, f)
}

// PlaceOrderHold is the order workflow's write path: it claims a band-date
// for a customer order under the same conflict rules merchant locks use.
func (s *LockService) PlaceOrderHold(ctx context.Context, templateID int64, date time.Time, orderID int64) (int64, error) {
	if orderID == 0 {
		return 0, validationf("order id is required")
	}
	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return 0, err
	}
	if template.IsDeleted {
		return 0, ErrTemplateDeleted
	}
	dateStr := date.Format(model.DateLayout)
	rec, err := s.records.GetByTemplateAndDate(ctx, templateID, dateStr)
	if err != nil {
		return 0, err
	}
	switch state := rec.State(); state.Kind {
	case model.StateAvailable:
		if rec == nil {
			lockType := model.LockedTypeUserOrder
			fresh := &model.SlotRecord{
				TemplateID:     templateID,
				BookingDate:    dateStr,
				Status:         model.RecordStatusUnavailable,
				LockedType:     &lockType,
				OrderID:        &orderID,
				OperatorSource: model.OperatorSourceOrder,
			}
			if err := s.records.Insert(ctx, fresh); err != nil {
				if errors.Is(err, repository.ErrDuplicateRecord) {
					return 0, s.classifyConflict(ctx, templateID, dateStr)
				}
				return 0, err
			}
			return fresh.ID, nil
		}
		if err := s.records.BookIfAvailable(ctx, rec.ID, orderID); err != nil {
			if errors.Is(err, repository.ErrStateChanged) {
				return 0, s.classifyConflict(ctx, templateID, dateStr)
			}
			return 0, err
		}
		return rec.ID, nil
	case model.StateBookedByOrder:
		return 0, &SlotBookedError{OrderID: state.OrderID}
	case model.StateMerchantLocked:
		return 0, ErrAlreadyLocked
	default:
		return 0, ErrStateConflict
	}
}

// ReleaseOrderHold removes every record a cancelled order held. Invoked by
// the order.cancelled consumer; also the unlock-equivalent the external
// expiry sweep calls.
func (s *LockService) ReleaseOrderHold(ctx context.Context, orderID int64) (int64, error) {
	released, err := s.records.ReleaseByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		s.logger.Info("order hold released",
			zap.Int64("order_id", orderID), zap.Int64("records", released))
	}
	return released, nil
}
