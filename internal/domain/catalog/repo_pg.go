package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

// =========== Service Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const serviceCols = `id, name, price, duration_minutes, active, created_at, updated_at`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	return &s, err
}

func (r *serviceRepoPG) Create(ctx context.Context, s *Service) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO services (id, name, price, duration_minutes, active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		s.ID, s.Name, s.Price, s.DurationMinutes, s.Active).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	return scanService(r.conn(ctx).QueryRow(ctx, `SELECT `+serviceCols+` FROM services WHERE id = $1`, id))
}

func (r *serviceRepoPG) Update(ctx context.Context, s *Service) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE services SET name=$2, price=$3, duration_minutes=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Price, s.DurationMinutes, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *serviceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *serviceRepoPG) List(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+serviceCols+` FROM services ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *serviceRepoPG) ListActive(ctx context.Context) ([]*Service, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+serviceCols+` FROM services WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *serviceRepoPG) GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+serviceCols+` FROM services WHERE active AND id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Promotion Repository ===========

type promotionRepoPG struct{ pool *pgxpool.Pool }

func NewPromotionRepoPG(pool *pgxpool.Pool) PromotionRepository { return &promotionRepoPG{pool: pool} }

func (r *promotionRepoPG) conn(ctx context.Context) db.Queryable { return db.Conn(ctx, r.pool) }

const promotionCols = `id, service_id, price, starts_at, ends_at, active, created_at, updated_at`

func scanPromotion(row pgx.Row) (*Promotion, error) {
	var p Promotion
	err := row.Scan(&p.ID, &p.ServiceID, &p.Price, &p.StartsAt, &p.EndsAt, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPromotionNotFound
	}
	return &p, err
}

func (r *promotionRepoPG) Create(ctx context.Context, p *Promotion) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO promotions (id, service_id, price, starts_at, ends_at, active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		p.ID, p.ServiceID, p.Price, p.StartsAt, p.EndsAt, p.Active).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *promotionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	return scanPromotion(r.conn(ctx).QueryRow(ctx, `SELECT `+promotionCols+` FROM promotions WHERE id = $1`, id))
}

func (r *promotionRepoPG) Update(ctx context.Context, p *Promotion) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE promotions SET service_id=$2, price=$3, starts_at=$4, ends_at=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.ServiceID, p.Price, p.StartsAt, p.EndsAt, p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

func (r *promotionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

func (r *promotionRepoPG) List(ctx context.Context, limit, offset int) ([]*Promotion, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM promotions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+promotionCols+` FROM promotions ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *promotionRepoPG) ListActiveForServices(ctx context.Context, serviceIDs []uuid.UUID) ([]*Promotion, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+promotionCols+` FROM promotions WHERE active AND service_id = ANY($1)`, serviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
