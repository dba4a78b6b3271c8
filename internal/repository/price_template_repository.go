package repository // repository for price template persistence

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// PriceTemplateRepo encapsulates database operations for price_templates and
// their periods.  Multi-row writes (create, update, default swap, soft
// delete) each run in one transaction.
type PriceTemplateRepo struct {
	db *sql.DB
}

// NewPriceTemplateRepo constructs a PriceTemplateRepo given a DB handle.
func NewPriceTemplateRepo(db *sql.DB) *PriceTemplateRepo { return &PriceTemplateRepo{db: db} }

const templateColumns = `id, merchant_id, name, is_default, is_enabled, is_deleted, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*model.PriceTemplate, error) {
	var t model.PriceTemplate
	err := row.Scan(&t.ID, &t.MerchantID, &t.Name, &t.IsDefault, &t.IsEnabled, &t.IsDeleted,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a non-deleted template or ErrPriceTemplateNotFound.
func (r *PriceTemplateRepo) GetByID(ctx context.Context, id int64) (*model.PriceTemplate, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM price_templates WHERE id = ? AND is_deleted = 0`, id))
	if err == sql.ErrNoRows {
		return nil, ErrPriceTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetDefaultByMerchant returns the merchant's default template, or nil when
// none is marked default.
func (r *PriceTemplateRepo) GetDefaultByMerchant(ctx context.Context, merchantID int64) (*model.PriceTemplate, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM price_templates
		 WHERE merchant_id = ? AND is_default = 1 AND is_deleted = 0 LIMIT 1`, merchantID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByMerchant returns the merchant's non-deleted templates, default first.
func (r *PriceTemplateRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]*model.PriceTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM price_templates
		 WHERE merchant_id = ? AND is_deleted = 0 ORDER BY is_default DESC, id`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var templates []*model.PriceTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// ListPeriods returns the enabled periods of a template ordered by start.
func (r *PriceTemplateRepo) ListPeriods(ctx context.Context, templateID int64) ([]*model.PriceTemplatePeriod, error) {
	const q = `SELECT id, template_id, start_time, end_time,
	                  weekday_price_cents, weekend_price_cents, holiday_price_cents, is_enabled
	           FROM price_template_periods
	           WHERE template_id = ? AND is_enabled = 1 ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []*model.PriceTemplatePeriod
	for rows.Next() {
		var p model.PriceTemplatePeriod
		if err := rows.Scan(&p.ID, &p.TemplateID, &p.StartTime, &p.EndTime,
			&p.WeekdayPriceCents, &p.WeekendPriceCents, &p.HolidayPriceCents, &p.IsEnabled); err != nil {
			return nil, err
		}
		p.StartTime = model.NormalizeClock(p.StartTime)
		p.EndTime = model.NormalizeClock(p.EndTime)
		periods = append(periods, &p)
	}
	return periods, rows.Err()
}

func insertPeriodsTx(ctx context.Context, tx *sql.Tx, templateID int64, periods []model.PriceTemplatePeriod) error {
	if len(periods) == 0 {
		return nil
	}
	query := `INSERT INTO price_template_periods
		(template_id, start_time, end_time, weekday_price_cents, weekend_price_cents, holiday_price_cents, is_enabled) VALUES `
	args := make([]any, 0, len(periods)*7)
	for i, p := range periods {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, 1)"
		args = append(args, templateID, p.StartTime, p.EndTime,
			p.WeekdayPriceCents, p.WeekendPriceCents, p.HolidayPriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Create inserts a template with its periods in one transaction and
// populates the template's ID.
func (r *PriceTemplateRepo) Create(ctx context.Context, tpl *model.PriceTemplate, periods []model.PriceTemplatePeriod) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO price_templates (merchant_id, name, is_default, is_enabled) VALUES (?, ?, ?, ?)`,
		tpl.MerchantID, tpl.Name, tpl.IsDefault, tpl.IsEnabled)
	if err != nil {
		return err
	}
	if tpl.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	if err := insertPeriodsTx(ctx, tx, tpl.ID, periods); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update renames a template and replaces its period set in one transaction.
func (r *PriceTemplateRepo) Update(ctx context.Context, tpl *model.PriceTemplate, periods []model.PriceTemplatePeriod) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`UPDATE price_templates SET name = ?, is_enabled = ? WHERE id = ? AND is_deleted = 0`,
		tpl.Name, tpl.IsEnabled, tpl.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero rows for a no-change update too; confirm the
		// template actually exists before treating this as not-found.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM price_templates WHERE id = ? AND is_deleted = 0)`, tpl.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrPriceTemplateNotFound
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM price_template_periods WHERE template_id = ?`, tpl.ID); err != nil {
		return err
	}
	if err := insertPeriodsTx(ctx, tx, tpl.ID, periods); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SwapDefault clears the merchant's current default and marks the given
// template instead, as one transaction so the merchant never has two
// defaults.
func (r *PriceTemplateRepo) SwapDefault(ctx context.Context, merchantID, templateID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`UPDATE price_templates SET is_default = 0 WHERE merchant_id = ? AND is_default = 1`,
		merchantID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE price_templates SET is_default = 1 WHERE id = ? AND merchant_id = ? AND is_deleted = 0`,
		templateID, merchantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPriceTemplateNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SoftDelete marks a template and its periods deleted/disabled in one
// transaction. Callers must have verified that no venue still references the
// template.
func (r *PriceTemplateRepo) SoftDelete(ctx context.Context, templateID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`UPDATE price_templates SET is_deleted = 1, is_default = 0, is_enabled = 0 WHERE id = ? AND is_deleted = 0`,
		templateID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPriceTemplateNotFound
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE price_template_periods SET is_enabled = 0 WHERE template_id = ?`, templateID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
