package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// BusinessHoursRepo reads the opening rules configured for a venue.  The
// rows are owned by the venue configuration service; this subsystem only
// resolves them into an open window per date.
type BusinessHoursRepo struct {
	db *sql.DB
}

// NewBusinessHoursRepo constructs a BusinessHoursRepo given a DB handle.
func NewBusinessHoursRepo(db *sql.DB) *BusinessHoursRepo { return &BusinessHoursRepo{db: db} }

// ListByVenue returns every rule of a venue.  Venues carry at most a handful
// of rules, so date filtering happens in the resolver rather than in SQL.
func (r *BusinessHoursRepo) ListByVenue(ctx context.Context, venueID int64) ([]*model.BusinessHoursRule, error) {
	// effective_date is formatted in SQL because parseTime=true would
	// otherwise hand back a time.Time for DATE columns.
	const q = `SELECT id, venue_id, rule_type, day_of_week,
	                  DATE_FORMAT(effective_date, '%Y-%m-%d'),
	                  open_time, close_time, priority, created_at
	           FROM business_hours_rules WHERE venue_id = ? ORDER BY priority DESC, id`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rules []*model.BusinessHoursRule
	for rows.Next() {
		var rule model.BusinessHoursRule
		var open, close sql.NullString
		if err := rows.Scan(&rule.ID, &rule.VenueID, &rule.RuleType, &rule.DayOfWeek,
			&rule.EffectiveDate, &open, &close, &rule.Priority, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rule.OpenTime = model.NormalizeClock(open.String)
		rule.CloseTime = model.NormalizeClock(close.String)
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

// IsHoliday reports whether the given date appears in the platform holiday
// table.
func (r *BusinessHoursRepo) IsHoliday(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM holidays WHERE holiday_date = ?)`, date).Scan(&exists)
	return exists, err
}
