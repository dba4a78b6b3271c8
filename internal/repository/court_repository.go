package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// CourtRepo provides read access to courts.
type CourtRepo struct {
	db *sql.DB
}

// NewCourtRepo constructs a CourtRepo given a DB handle.
func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{db: db} }

// GetByID returns a court by id or ErrCourtNotFound.
func (r *CourtRepo) GetByID(ctx context.Context, id int64) (*model.Court, error) {
	const q = `SELECT id, venue_id, name, is_active, created_at, updated_at
	           FROM courts WHERE id = ?`
	var c model.Court
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.VenueID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCourtNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByVenue returns the active courts of a venue ordered by name.
func (r *CourtRepo) ListByVenue(ctx context.Context, venueID int64) ([]*model.Court, error) {
	const q = `SELECT id, venue_id, name, is_active, created_at, updated_at
	           FROM courts WHERE venue_id = ? AND is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courts []*model.Court
	for rows.Next() {
		var c model.Court
		if err := rows.Scan(&c.ID, &c.VenueID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courts = append(courts, &c)
	}
	return courts, rows.Err()
}
