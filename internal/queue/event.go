// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer plumbing around them.
package queue

// SlotLockedEvent is published when a merchant lock is created.  It carries
// enough context for downstream consumers (notifications, analytics) to act
// without querying the primary database.
type SlotLockedEvent struct {
	EventID     string `json:"event_id"`
	RecordID    int64  `json:"record_id"`
	TemplateID  int64  `json:"template_id"`
	CourtID     int64  `json:"court_id"`
	VenueID     int64  `json:"venue_id"`
	MerchantID  int64  `json:"merchant_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Reason      string `json:"reason"`
	LockedAt    string `json:"locked_at"`
}

// SlotUnlockedEvent is published when a merchant lock is released.
type SlotUnlockedEvent struct {
	EventID     string `json:"event_id"`
	RecordID    int64  `json:"record_id"`
	TemplateID  int64  `json:"template_id"`
	MerchantID  int64  `json:"merchant_id"`
	BookingDate string `json:"booking_date"`
	UnlockedAt  string `json:"unlocked_at"`
}

// OrderCancelledEvent is consumed from the order workflow.  Receiving it
// releases every USER_ORDER record the order held, restoring the implicit
// default availability.
type OrderCancelledEvent struct {
	EventID     string `json:"event_id"`
	OrderID     int64  `json:"order_id"`
	CancelledAt string `json:"cancelled_at"`
}
