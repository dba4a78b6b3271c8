package model

import "time"

// SlotTemplate defines one recurring time band on a court.  Templates carry
// time-of-day only; the actual calendar dates are materialized as
// SlotRecords.  Bands of one court must never overlap among non-deleted
// templates, and templates are soft-deleted so historical records keep a
// valid parent.
//
// Fields:
//  ID        – primary key identifier.
//  CourtID   – court this band belongs to.
//  StartTime – band start as "HH:MM".
//  EndTime   – band end as "HH:MM", exclusive.
//  IsDeleted – soft-delete flag; deleted bands are no longer offered.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type SlotTemplate struct {
	ID        int64     // slot_templates.id
	CourtID   int64     // slot_templates.court_id
	StartTime string    // slot_templates.start_time
	EndTime   string    // slot_templates.end_time
	IsDeleted bool      // slot_templates.is_deleted
	CreatedAt time.Time // slot_templates.created_at
	UpdatedAt time.Time // slot_templates.updated_at
}
