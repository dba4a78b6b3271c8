package model

import "time"

// Slot record status values.  A missing record means the band is available,
// so AVAILABLE rows only exist when batch generation materialized them
// explicitly.
const (
	RecordStatusAvailable   = "AVAILABLE"
	RecordStatusUnavailable = "UNAVAILABLE"
)

// Locked type values discriminating who owns an UNAVAILABLE record.  The two
// owners are mutually exclusive: a customer order and a merchant lock never
// share a record.
const (
	LockedTypeUserOrder    = "USER_ORDER"
	LockedTypeMerchantLock = "MERCHANT_LOCK"
)

// Operator source values recorded for auditing who wrote a record.
const (
	OperatorSourceMerchant = "MERCHANT"
	OperatorSourceOrder    = "ORDER"
	OperatorSourceSystem   = "SYSTEM"
)

// SlotRecord is the per-date instance of a template band.  Rows are persisted
// only for deviations from the default: batch-generated AVAILABLE rows,
// customer bookings and merchant locks.  The (TemplateID, BookingDate) pair
// is unique, which is what decides the race between a customer booking and a
// merchant lock targeting the same band.
//
// Fields:
//  ID             – primary key identifier.
//  TemplateID     – template band this record overrides.
//  BookingDate    – calendar date as "YYYY-MM-DD".
//  Status         – AVAILABLE or UNAVAILABLE.
//  LockedType     – USER_ORDER or MERCHANT_LOCK; nil iff Status is AVAILABLE.
//  LockReason     – merchant-supplied reason (MERCHANT_LOCK only).
//  OrderID        – owning order (USER_ORDER only).
//  OperatorID     – merchant or system actor that wrote the row.
//  OperatorSource – MERCHANT, ORDER or SYSTEM.
type SlotRecord struct {
	ID             int64     // slot_records.id
	TemplateID     int64     // slot_records.template_id
	BookingDate    string    // slot_records.booking_date
	Status         string    // slot_records.status
	LockedType     *string   // slot_records.locked_type (nullable)
	LockReason     *string   // slot_records.lock_reason (nullable)
	OrderID        *int64    // slot_records.order_id (nullable)
	OperatorID     int64     // slot_records.operator_id
	OperatorSource string    // slot_records.operator_source
	CreatedAt      time.Time // slot_records.created_at
	UpdatedAt      time.Time // slot_records.updated_at
}

// RecordStateKind enumerates the observable states of a band on a date.
type RecordStateKind int

const (
	// StateAvailable covers both "no record" and an explicit AVAILABLE row.
	StateAvailable RecordStateKind = iota
	// StateBookedByOrder means a customer order owns the band.
	StateBookedByOrder
	// StateMerchantLocked means the merchant blocked the band manually.
	StateMerchantLocked
	// StateBlocked is an UNAVAILABLE row with no recognizable owner.  Such
	// rows should not occur but must still refuse writes.
	StateBlocked
)

// RecordState is the tagged view over the nullable Status/LockedType column
// pair.  Callers branch on Kind instead of reading the raw columns, which
// keeps "an order always outranks a lock" a single switch arm.
type RecordState struct {
	Kind    RecordStateKind
	OrderID int64  // set when Kind == StateBookedByOrder
	Reason  string // set when Kind == StateMerchantLocked
}

// State classifies a record.  A nil receiver is the implicit default and
// reports StateAvailable.
func (r *SlotRecord) State() RecordState {
	if r == nil || r.Status == RecordStatusAvailable {
		return RecordState{Kind: StateAvailable}
	}
	// An order reference wins regardless of locked_type: a half-written row
	// that carries an order must never be overridden by a merchant lock.
	if r.OrderID != nil && *r.OrderID != 0 {
		return RecordState{Kind: StateBookedByOrder, OrderID: *r.OrderID}
	}
	if r.LockedType != nil {
		switch *r.LockedType {
		case LockedTypeUserOrder:
			return RecordState{Kind: StateBookedByOrder}
		case LockedTypeMerchantLock:
			reason := ""
			if r.LockReason != nil {
				reason = *r.LockReason
			}
			return RecordState{Kind: StateMerchantLocked, Reason: reason}
		}
	}
	return RecordState{Kind: StateBlocked}
}

// LockedSlot is the read model returned when listing merchant locks and
// customer bookings, joined with template and court data so a merchant UI
// can render it without further lookups.
type LockedSlot struct {
	RecordID    int64   // slot_records.id
	TemplateID  int64   // slot_records.template_id
	CourtID     int64   // courts.id
	CourtName   string  // courts.name
	BookingDate string  // slot_records.booking_date
	StartTime   string  // slot_templates.start_time
	EndTime     string  // slot_templates.end_time
	LockedType  string  // slot_records.locked_type
	LockReason  *string // slot_records.lock_reason (nullable)
	OrderID     *int64  // slot_records.order_id (nullable)
	OperatorID  int64   // slot_records.operator_id
}
