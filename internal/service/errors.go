package service

import (
	"errors"
	"fmt"
)

// ErrNotOwner is returned when the calling merchant does not own the venue
// a court or template belongs to. The message stays generic so the true
// owner is never leaked to the caller.
var ErrNotOwner = errors.New("forbidden")

// ErrAlreadyLocked is returned when locking a band that already carries a
// merchant lock.
var ErrAlreadyLocked = errors.New("slot already locked")

// ErrNotMerchantLocked is returned when unlocking a record that is not a
// merchant lock.
var ErrNotMerchantLocked = errors.New("record is not a merchant lock")

// ErrStateConflict is returned when a record is in a state that accepts no
// transition, such as an UNAVAILABLE row without a recognizable owner.
var ErrStateConflict = errors.New("slot state conflicts with the requested operation")

// ErrTemplateDeleted is returned when locking against a soft-deleted band.
var ErrTemplateDeleted = errors.New("slot template has been deleted")

// ErrPriceTemplateInUse is returned when deleting a price template that a
// venue still references.
var ErrPriceTemplateInUse = errors.New("price template is still bound to a venue")

// SlotBookedError reports that a customer order owns the slot. It is its own
// type because merchants must be told to cancel the order first, and batch
// results count bookings separately from other failures.
type SlotBookedError struct {
	OrderID int64
}

func (e *SlotBookedError) Error() string {
	if e.OrderID == 0 {
		return "slot is booked by a customer order"
	}
	return fmt.Sprintf("slot is booked by order %d; cancel the order first", e.OrderID)
}

// ValidationError reports malformed input rejected before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
