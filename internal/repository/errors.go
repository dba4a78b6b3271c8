// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios. For
// example, ErrDuplicateRecord reports that the (template_id, booking_date)
// unique key rejected an insert, which is how the loser of a concurrent
// booking-versus-lock race finds out, while ErrStateChanged reports that
// a status-conditioned update or delete matched no row because another
// writer got there first.
package repository

import "errors"

// ErrVenueNotFound is returned when a referenced venue does not exist.
var ErrVenueNotFound = errors.New("venue not found")

// ErrCourtNotFound is returned when a referenced court does not exist.
var ErrCourtNotFound = errors.New("court not found")

// ErrTemplateNotFound is returned when a referenced slot template does not exist.
var ErrTemplateNotFound = errors.New("slot template not found")

// ErrRecordNotFound is returned when a slot record is looked up by id and
// does not exist. Lookups by (template, date) return nil instead, because
// there absence is the normal "still available" case, not a failure.
var ErrRecordNotFound = errors.New("slot record not found")

// ErrPriceTemplateNotFound is returned when a referenced price template does
// not exist or has been soft-deleted.
var ErrPriceTemplateNotFound = errors.New("price template not found")

// ErrDuplicateRecord is returned when an insert into slot_records hits the
// unique (template_id, booking_date) key.
var ErrDuplicateRecord = errors.New("slot record already exists")

// ErrStateChanged is returned when a conditional write matched no row: the
// record's status no longer satisfies the expected precondition.
var ErrStateChanged = errors.New("record state changed")
