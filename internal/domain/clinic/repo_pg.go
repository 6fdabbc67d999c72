package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

const uniqueViolation = "23505"

type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewSettingsRepoPG(pool *pgxpool.Pool) SettingsRepository { return &settingsRepoPG{pool: pool} }

func (r *settingsRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

func (r *settingsRepoPG) Latest(ctx context.Context) (*Settings, error) {
	var s Settings
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, slot_minutes, booking_window_days, workday_start, workday_end, created_at
		FROM clinic_settings
		ORDER BY created_at DESC
		LIMIT 1`).Scan(&s.ID, &s.SlotMinutes, &s.BookingWindowDays, &s.WorkdayStart, &s.WorkdayEnd, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepoPG) Create(ctx context.Context, s *Settings) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinic_settings (id, slot_minutes, booking_window_days, workday_start, workday_end)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		s.ID, s.SlotMinutes, s.BookingWindowDays, s.WorkdayStart, s.WorkdayEnd).Scan(&s.CreatedAt)
}

type practitionerRepoPG struct{ pool *pgxpool.Pool }

func NewPractitionerRepoPG(pool *pgxpool.Pool) PractitionerRepository {
	return &practitionerRepoPG{pool: pool}
}

func (r *practitionerRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const practitionerCols = `id, slug, display_name, active, created_at, updated_at`

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.ID, &p.Slug, &p.DisplayName, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPractitionerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *practitionerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return scanPractitioner(r.conn(ctx).QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM employees WHERE id = $1`, id))
}

func (r *practitionerRepoPG) GetActiveBySlug(ctx context.Context, slug string) (*Practitioner, error) {
	return scanPractitioner(r.conn(ctx).QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM employees WHERE slug = $1 AND active`, slug))
}

func (r *practitionerRepoPG) Create(ctx context.Context, p *Practitioner) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO employees (id, slug, display_name, active)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		p.ID, p.Slug, p.DisplayName, p.Active).Scan(&p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}
