package repository // repository for venue and court lookups

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// VenueRepo reads venues and updates their price template binding.  Venue
// rows are otherwise owned by the upstream venue service.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo given a DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// GetByID returns a venue by id or ErrVenueNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id int64) (*model.Venue, error) {
	const q = `SELECT id, merchant_id, name, price_template_id, created_at, updated_at
	           FROM venues WHERE id = ?`
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.MerchantID, &v.Name, &v.PriceTemplateID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// BindPriceTemplate points a venue at a price template.  Passing zero clears
// the binding.
func (r *VenueRepo) BindPriceTemplate(ctx context.Context, venueID, templateID int64) error {
	var tpl interface{}
	if templateID != 0 {
		tpl = templateID
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET price_template_id = ? WHERE id = ?`, tpl, venueID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing venue and for a no-op update;
		// distinguish with a lookup so callers get a real not-found.
		if _, err := r.GetByID(ctx, venueID); err != nil {
			return err
		}
	}
	return nil
}

// CountByPriceTemplate reports how many venues still reference a price
// template.  Deleting a template is blocked while this is non-zero.
func (r *VenueRepo) CountByPriceTemplate(ctx context.Context, templateID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM venues WHERE price_template_id = ?`, templateID).Scan(&n)
	return n, err
}
