package model

import "time"

// Venue represents a physical location operated by a merchant.  Venues and
// their courts are owned by an upstream service; this subsystem only reads
// them and, for price binding, updates the price_template_id reference.
//
// Fields:
//  ID              – primary key identifier.
//  MerchantID      – merchant operating this venue.
//  Name            – display name of the venue.
//  PriceTemplateID – bound price template (nil when none is bound).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Venue struct {
	ID              int64     // venues.id
	MerchantID      int64     // venues.merchant_id
	Name            string    // venues.name
	PriceTemplateID *int64    // venues.price_template_id (nullable)
	CreatedAt       time.Time // venues.created_at
	UpdatedAt       time.Time // venues.updated_at
}
