package repository // repository for per-date slot record persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL duplicate-entry error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// recordColumns is the select list shared by every record query.  The date
// is formatted in SQL because parseTime=true would otherwise produce a
// time.Time for the DATE column.
const recordColumns = `id, template_id, DATE_FORMAT(booking_date, '%Y-%m-%d'), status,
	locked_type, lock_reason, order_id, operator_id, operator_source, created_at, updated_at`

// SlotRecordRepo provides data access to slot_records.  The table carries a
// unique key on (template_id, booking_date); together with the
// status-conditioned writes below that key is what serializes concurrent
// AVAILABLE-to-UNAVAILABLE transitions, so exactly one of two racing writers
// wins and the other receives ErrDuplicateRecord or ErrStateChanged.
type SlotRecordRepo struct {
	db *sql.DB
}

// NewSlotRecordRepo constructs a SlotRecordRepo given a DB handle.
func NewSlotRecordRepo(db *sql.DB) *SlotRecordRepo { return &SlotRecordRepo{db: db} }

func scanRecord(row interface{ Scan(...any) error }) (*model.SlotRecord, error) {
	var rec model.SlotRecord
	err := row.Scan(&rec.ID, &rec.TemplateID, &rec.BookingDate, &rec.Status,
		&rec.LockedType, &rec.LockReason, &rec.OrderID,
		&rec.OperatorID, &rec.OperatorSource, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID returns a record by id or ErrRecordNotFound.
func (r *SlotRecordRepo) GetByID(ctx context.Context, id int64) (*model.SlotRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM slot_records WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByTemplateAndDate returns the record overriding a band on a date, or
// nil when no record exists. Absence means the band is in its default
// AVAILABLE state, so it is not an error.
func (r *SlotRecordRepo) GetByTemplateAndDate(ctx context.Context, templateID int64, date string) (*model.SlotRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM slot_records WHERE template_id = ? AND booking_date = ?`,
		templateID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByTemplatesAndDate returns all records for the given bands on a date.
func (r *SlotRecordRepo) ListByTemplatesAndDate(ctx context.Context, templateIDs []int64, date string) ([]*model.SlotRecord, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(templateIDs)), ",")
	args := make([]any, 0, len(templateIDs)+1)
	for _, id := range templateIDs {
		args = append(args, id)
	}
	args = append(args, date)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM slot_records
		 WHERE template_id IN (`+placeholders+`) AND booking_date = ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []*model.SlotRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Insert creates a new record. ErrDuplicateRecord is returned when another
// writer already materialized a row for the same (template, date).
func (r *SlotRecordRepo) Insert(ctx context.Context, rec *model.SlotRecord) error {
	const q = `INSERT INTO slot_records
		(template_id, booking_date, status, locked_type, lock_reason, order_id, operator_id, operator_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rec.TemplateID, rec.BookingDate, rec.Status,
		rec.LockedType, rec.LockReason, rec.OrderID, rec.OperatorID, rec.OperatorSource)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateRecord
		}
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// LockIfAvailable flips an AVAILABLE record to a merchant lock. The status
// precondition is part of the UPDATE, so a concurrent booking that already
// claimed the row makes this return ErrStateChanged instead of overwriting.
func (r *SlotRecordRepo) LockIfAvailable(ctx context.Context, id int64, reason string, operatorID int64) error {
	const q = `UPDATE slot_records
		SET status = ?, locked_type = ?, lock_reason = ?, operator_id = ?, operator_source = ?
		WHERE id = ? AND status = ? AND locked_type IS NULL AND order_id IS NULL`
	res, err := r.db.ExecContext(ctx, q,
		model.RecordStatusUnavailable, model.LockedTypeMerchantLock, reason,
		operatorID, model.OperatorSourceMerchant,
		id, model.RecordStatusAvailable)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStateChanged
	}
	return nil
}

// BookIfAvailable flips an AVAILABLE record to a customer-order hold under
// the same status precondition as LockIfAvailable, so a racing merchant lock
// cannot be overwritten.
func (r *SlotRecordRepo) BookIfAvailable(ctx context.Context, id int64, orderID int64) error {
	const q = `UPDATE slot_records
		SET status = ?, locked_type = ?, lock_reason = NULL, order_id = ?, operator_source = ?
		WHERE id = ? AND status = ? AND locked_type IS NULL AND order_id IS NULL`
	res, err := r.db.ExecContext(ctx, q,
		model.RecordStatusUnavailable, model.LockedTypeUserOrder, orderID, model.OperatorSourceOrder,
		id, model.RecordStatusAvailable)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStateChanged
	}
	return nil
}

// DeleteIfMerchantLocked removes a pure merchant-lock row, restoring the
// implicit default. Rows carrying an order reference are never matched.
func (r *SlotRecordRepo) DeleteIfMerchantLocked(ctx context.Context, id int64) error {
	const q = `DELETE FROM slot_records
		WHERE id = ? AND locked_type = ? AND order_id IS NULL`
	res, err := r.db.ExecContext(ctx, q, id, model.LockedTypeMerchantLock)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStateChanged
	}
	return nil
}

// DemoteToAvailable downgrades a record to an explicit AVAILABLE row instead
// of deleting it. Used for the defensive unlock path where a lock row turns
// out to carry an order reference, preserving the audit trail.
func (r *SlotRecordRepo) DemoteToAvailable(ctx context.Context, id int64, operatorID int64) error {
	const q = `UPDATE slot_records
		SET status = ?, locked_type = NULL, lock_reason = NULL, operator_id = ?, operator_source = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		model.RecordStatusAvailable, operatorID, model.OperatorSourceMerchant, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ReleaseByOrder hard-deletes the USER_ORDER records of a cancelled order and
// returns how many rows were removed. This is the order workflow's write
// path back into the store.
func (r *SlotRecordRepo) ReleaseByOrder(ctx context.Context, orderID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM slot_records WHERE order_id = ? AND locked_type = ?`,
		orderID, model.LockedTypeUserOrder)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BulkInsert inserts multiple records in one statement.  Used by batch
// generation to materialize explicit AVAILABLE rows; a single multi-row
// INSERT keeps the write atomic without an explicit transaction.
func (r *SlotRecordRepo) BulkInsert(ctx context.Context, records []model.SlotRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `INSERT INTO slot_records
		(template_id, booking_date, status, locked_type, lock_reason, order_id, operator_id, operator_source) VALUES `
	args := make([]any, 0, len(records)*8)
	for i, rec := range records {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, rec.TemplateID, rec.BookingDate, rec.Status,
			rec.LockedType, rec.LockReason, rec.OrderID, rec.OperatorID, rec.OperatorSource)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	if isDuplicateKey(err) {
		return ErrDuplicateRecord
	}
	return err
}

// RegenerateForDate implements the overwrite path of batch generation in one
// transaction: existing AVAILABLE rows for the target bands are removed, then
// fresh rows are inserted for every band without a surviving record.  Rows
// representing bookings or locks are never touched because the DELETE is
// conditioned on status and lock ownership.
func (r *SlotRecordRepo) RegenerateForDate(ctx context.Context, date string, templateIDs []int64, inserts []model.SlotRecord) (int64, error) {
	if len(templateIDs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(templateIDs)), ",")
	args := make([]any, 0, len(templateIDs)+3)
	args = append(args, date, model.RecordStatusAvailable)
	for _, id := range templateIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM slot_records
		 WHERE booking_date = ? AND status = ? AND locked_type IS NULL AND order_id IS NULL
		   AND template_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()

	if len(inserts) > 0 {
		query := `INSERT INTO slot_records
			(template_id, booking_date, status, locked_type, lock_reason, order_id, operator_id, operator_source) VALUES `
		insArgs := make([]any, 0, len(inserts)*8)
		for i, rec := range inserts {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?, ?)"
			insArgs = append(insArgs, rec.TemplateID, rec.BookingDate, rec.Status,
				rec.LockedType, rec.LockReason, rec.OrderID, rec.OperatorID, rec.OperatorSource)
		}
		if _, err := tx.ExecContext(ctx, query, insArgs...); err != nil {
			if isDuplicateKey(err) {
				return 0, ErrDuplicateRecord
			}
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return removed, nil
}

// LockedSlotFilter narrows ListLocked. Exactly one of CourtID or VenueID is
// expected; LockedType optionally restricts to one owner kind.
type LockedSlotFilter struct {
	CourtID    *int64
	VenueID    *int64
	StartDate  string
	EndDate    string
	LockedType *string
}

// ListLocked returns UNAVAILABLE records in a date range joined with their
// template band and court, for the merchant's lock overview.
func (r *SlotRecordRepo) ListLocked(ctx context.Context, f LockedSlotFilter) ([]*model.LockedSlot, error) {
	query := `SELECT sr.id, sr.template_id, c.id, c.name,
	                 DATE_FORMAT(sr.booking_date, '%Y-%m-%d'),
	                 st.start_time, st.end_time, sr.locked_type, sr.lock_reason, sr.order_id, sr.operator_id
	          FROM slot_records sr
	          JOIN slot_templates st ON st.id = sr.template_id
	          JOIN courts c ON c.id = st.court_id
	          WHERE sr.status = ? AND sr.booking_date BETWEEN ? AND ?`
	args := []any{model.RecordStatusUnavailable, f.StartDate, f.EndDate}
	if f.CourtID != nil {
		query += ` AND c.id = ?`
		args = append(args, *f.CourtID)
	}
	if f.VenueID != nil {
		query += ` AND c.venue_id = ?`
		args = append(args, *f.VenueID)
	}
	if f.LockedType != nil {
		query += ` AND sr.locked_type = ?`
		args = append(args, *f.LockedType)
	}
	query += ` ORDER BY sr.booking_date, st.start_time`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []*model.LockedSlot
	for rows.Next() {
		var s model.LockedSlot
		var lockedType sql.NullString
		if err := rows.Scan(&s.RecordID, &s.TemplateID, &s.CourtID, &s.CourtName,
			&s.BookingDate, &s.StartTime, &s.EndTime, &lockedType, &s.LockReason, &s.OrderID, &s.OperatorID); err != nil {
			return nil, err
		}
		s.LockedType = lockedType.String
		s.StartTime = model.NormalizeClock(s.StartTime)
		s.EndTime = model.NormalizeClock(s.EndTime)
		slots = append(slots, &s)
	}
	return slots, rows.Err()
}
