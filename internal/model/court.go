package model

import "time"

// Court is a single bookable resource inside a venue.  Like venues, courts
// are created and maintained elsewhere; availability only needs their
// identity and venue linkage.
type Court struct {
	ID        int64     // courts.id
	VenueID   int64     // courts.venue_id
	Name      string    // courts.name
	IsActive  bool      // courts.is_active
	CreatedAt time.Time // courts.created_at
	UpdatedAt time.Time // courts.updated_at
}
