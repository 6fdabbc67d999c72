package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Service, int, error)
	ListActive(ctx context.Context) ([]*Service, error)
	GetActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)
}

type PromotionRepository interface {
	Create(ctx context.Context, p *Promotion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	Update(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Promotion, int, error)
	ListActiveForServices(ctx context.Context, serviceIDs []uuid.UUID) ([]*Promotion, error)
}
