package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// SlotTemplateRepo encapsulates database operations for slot_templates.
type SlotTemplateRepo struct {
	db *sql.DB
}

// NewSlotTemplateRepo constructs a SlotTemplateRepo given a DB handle.
func NewSlotTemplateRepo(db *sql.DB) *SlotTemplateRepo { return &SlotTemplateRepo{db: db} }

// GetByID returns a template by id, including soft-deleted ones.  Records of
// deleted templates must stay resolvable for unlock and listing, so the
// deleted flag is surfaced rather than filtered.
func (r *SlotTemplateRepo) GetByID(ctx context.Context, id int64) (*model.SlotTemplate, error) {
	const q = `SELECT id, court_id, start_time, end_time, is_deleted, created_at, updated_at
	           FROM slot_templates WHERE id = ?`
	var t model.SlotTemplate
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.CourtID, &t.StartTime, &t.EndTime, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	t.StartTime = model.NormalizeClock(t.StartTime)
	t.EndTime = model.NormalizeClock(t.EndTime)
	return &t, nil
}

// ListActiveByCourt returns the non-deleted bands of a court ordered by
// start time.  These are the bands availability and generation work from.
func (r *SlotTemplateRepo) ListActiveByCourt(ctx context.Context, courtID int64) ([]*model.SlotTemplate, error) {
	const q = `SELECT id, court_id, start_time, end_time, is_deleted, created_at, updated_at
	           FROM slot_templates WHERE court_id = ? AND is_deleted = 0 ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, courtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var templates []*model.SlotTemplate
	for rows.Next() {
		var t model.SlotTemplate
		if err := rows.Scan(&t.ID, &t.CourtID, &t.StartTime, &t.EndTime, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.StartTime = model.NormalizeClock(t.StartTime)
		t.EndTime = model.NormalizeClock(t.EndTime)
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}
