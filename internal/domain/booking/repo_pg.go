package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

const exclusionViolation = "23P01"

// =========== Booking Repository ===========

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository { return &bookingRepoPG{pool: pool} }

func (r *bookingRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const bookingCols = `id, user_id, employee_id, starts_at, ends_at, status,
	total_price, total_duration, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.EmployeeID, &b.StartsAt, &b.EndsAt, &b.Status,
		&b.TotalPrice, &b.TotalDuration, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bookings (id, user_id, employee_id, starts_at, ends_at, status,
			total_price, total_duration, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.EmployeeID, b.StartsAt, b.EndsAt, b.Status,
		b.TotalPrice, b.TotalDuration, b.Notes).Scan(&b.CreatedAt, &b.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrSlotConflict
	}
	if err != nil {
		return err
	}

	for i := range b.Items {
		item := &b.Items[i]
		item.ID = uuid.New()
		item.BookingID = b.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO booking_items (id, booking_id, service_id, name, quantity,
				duration_minutes, final_price, regular_price, used_promotion)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			item.ID, item.BookingID, item.ServiceID, item.Name, item.Quantity,
			item.DurationMinutes, item.FinalPrice, item.RegularPrice, item.UsedPromotion)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *bookingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := scanBooking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, booking_id, service_id, name, quantity, duration_minutes,
			final_price, regular_price, used_promotion
		FROM booking_items WHERE booking_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item BookingItem
		if err := rows.Scan(&item.ID, &item.BookingID, &item.ServiceID, &item.Name, &item.Quantity,
			&item.DurationMinutes, &item.FinalPrice, &item.RegularPrice, &item.UsedPromotion); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	return b, rows.Err()
}

func (r *bookingRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *bookingRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE user_id = $1 ORDER BY starts_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectBookings(rows, total)
}

func (r *bookingRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Booking, int, error) {
	if status != "" {
		var total int
		if err := r.conn(ctx).QueryRow(ctx,
			`SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err := r.conn(ctx).Query(ctx,
			`SELECT `+bookingCols+` FROM bookings WHERE status = $1 ORDER BY starts_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		defer rows.Close()
		return collectBookings(rows, total)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM bookings ORDER BY starts_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectBookings(rows, total)
}

func collectBookings(rows pgx.Rows, total int) ([]*Booking, int, error) {
	var items []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *bookingRepoPG) ActiveInRange(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]Interval, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT starts_at, ends_at FROM bookings
		WHERE employee_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND starts_at <= $3 AND ends_at >= $2
		ORDER BY starts_at`, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntervals(rows, "booking")
}

// =========== Block Repository ===========

type blockRepoPG struct{ pool *pgxpool.Pool }

func NewBlockRepoPG(pool *pgxpool.Pool) BlockRepository { return &blockRepoPG{pool: pool} }

func (r *blockRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const blockCols = `id, employee_id, starts_at, ends_at, note, created_at`

func scanBlock(row pgx.Row) (*Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.EmployeeID, &b.StartsAt, &b.EndsAt, &b.Note, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blockRepoPG) Create(ctx context.Context, b *Block) error {
	b.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO booking_blocks (id, employee_id, starts_at, ends_at, note)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		b.ID, b.EmployeeID, b.StartsAt, b.EndsAt, b.Note).Scan(&b.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrSlotConflict
	}
	return err
}

func (r *blockRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Block, error) {
	return scanBlock(r.conn(ctx).QueryRow(ctx,
		`SELECT `+blockCols+` FROM booking_blocks WHERE id = $1`, id))
}

func (r *blockRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM booking_blocks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func (r *blockRepoPG) List(ctx context.Context, limit, offset int) ([]*Block, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking_blocks`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+blockCols+` FROM booking_blocks ORDER BY starts_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *blockRepoPG) InRange(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]Interval, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT starts_at, ends_at FROM booking_blocks
		WHERE employee_id = $1 AND starts_at <= $3 AND ends_at >= $2
		ORDER BY starts_at`, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntervals(rows, "block")
}

func collectIntervals(rows pgx.Rows, source string) ([]Interval, error) {
	var items []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		iv.Source = source
		items = append(items, iv)
	}
	return items, rows.Err()
}

// =========== Status Log Repository ===========

type statusLogRepoPG struct{ pool *pgxpool.Pool }

func NewStatusLogRepoPG(pool *pgxpool.Pool) StatusLogRepository { return &statusLogRepoPG{pool: pool} }

func (r *statusLogRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *statusLogRepoPG) Append(ctx context.Context, e *StatusLogEntry) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO booking_status_log (id, booking_id, from_status, to_status, note)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		e.ID, e.BookingID, e.FromStatus, e.ToStatus, e.Note).Scan(&e.CreatedAt)
}

func (r *statusLogRepoPG) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*StatusLogEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, booking_id, from_status, to_status, note, created_at
		FROM booking_status_log WHERE booking_id = $1 ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StatusLogEntry
	for rows.Next() {
		var e StatusLogEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.FromStatus, &e.ToStatus, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
