package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CatalogService struct {
	services   ServiceRepository
	promotions PromotionRepository
	now        func() time.Time
}

func NewCatalogService(services ServiceRepository, promotions PromotionRepository) *CatalogService {
	return &CatalogService{services: services, promotions: promotions, now: time.Now}
}

// ResolveQuote prices a selection against the active catalog. It is
// all-or-nothing: every requested id must resolve to an active service or
// ErrInvalidServiceSelection is returned. Promotion liveness is evaluated
// against a single instant captured at the start of the call.
func (s *CatalogService) ResolveQuote(ctx context.Context, selections []Selection) (*Quote, error) {
	if len(selections) == 0 {
		return nil, ErrInvalidServiceSelection
	}
	now := s.now()

	// Collapse duplicate ids, preserving first-seen order.
	order := make([]uuid.UUID, 0, len(selections))
	quantities := make(map[uuid.UUID]int, len(selections))
	for _, sel := range selections {
		if sel.ServiceID == uuid.Nil {
			return nil, ErrInvalidServiceSelection
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, seen := quantities[sel.ServiceID]; !seen {
			order = append(order, sel.ServiceID)
		}
		quantities[sel.ServiceID] += qty
	}

	resolved, err := s.services.GetActiveByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	if len(resolved) != len(order) {
		return nil, ErrInvalidServiceSelection
	}
	byID := make(map[uuid.UUID]*Service, len(resolved))
	for _, svc := range resolved {
		byID[svc.ID] = svc
	}

	promos, err := s.promotions.ListActiveForServices(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("resolve promotions: %w", err)
	}
	liveByService := make(map[uuid.UUID]*Promotion, len(promos))
	for _, p := range promos {
		if p.LiveAt(now) {
			liveByService[p.ServiceID] = p
		}
	}

	quote := &Quote{Items: make([]QuoteItem, 0, len(order))}
	for _, id := range order {
		svc := byID[id]
		qty := quantities[id]
		item := QuoteItem{
			ServiceID:       svc.ID,
			Name:            svc.Name,
			Quantity:        qty,
			DurationMinutes: svc.DurationMinutes,
			FinalPrice:      svc.Price,
			RegularPrice:    svc.Price,
		}
		if promo, ok := liveByService[id]; ok {
			item.FinalPrice = promo.Price
			item.UsedPromotion = true
		}
		quote.Items = append(quote.Items, item)
		quote.TotalDurationMinutes += item.DurationMinutes * qty
		quote.TotalPrice += item.FinalPrice * qty
	}
	return quote, nil
}

// ListActiveServices returns the catalog visible to clients.
func (s *CatalogService) ListActiveServices(ctx context.Context) ([]*Service, error) {
	return s.services.ListActive(ctx)
}

// -- Service admin --

func (s *CatalogService) CreateService(ctx context.Context, svc *Service) error {
	if err := validateService(svc); err != nil {
		return err
	}
	return s.services.Create(ctx, svc)
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return s.services.GetByID(ctx, id)
}

func (s *CatalogService) UpdateService(ctx context.Context, svc *Service) error {
	if err := validateService(svc); err != nil {
		return err
	}
	return s.services.Update(ctx, svc)
}

func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.services.Delete(ctx, id)
}

func (s *CatalogService) ListServices(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	return s.services.List(ctx, limit, offset)
}

func validateService(svc *Service) error {
	if svc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if svc.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if svc.DurationMinutes < 1 {
		return fmt.Errorf("duration_minutes must be at least 1")
	}
	return nil
}

// -- Promotion admin --

func (s *CatalogService) CreatePromotion(ctx context.Context, p *Promotion) error {
	if err := s.validatePromotion(ctx, p); err != nil {
		return err
	}
	return s.promotions.Create(ctx, p)
}

func (s *CatalogService) GetPromotion(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	return s.promotions.GetByID(ctx, id)
}

func (s *CatalogService) UpdatePromotion(ctx context.Context, p *Promotion) error {
	if err := s.validatePromotion(ctx, p); err != nil {
		return err
	}
	return s.promotions.Update(ctx, p)
}

func (s *CatalogService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	return s.promotions.Delete(ctx, id)
}

func (s *CatalogService) ListPromotions(ctx context.Context, limit, offset int) ([]*Promotion, int, error) {
	return s.promotions.List(ctx, limit, offset)
}

func (s *CatalogService) validatePromotion(ctx context.Context, p *Promotion) error {
	if p.ServiceID == uuid.Nil {
		return fmt.Errorf("service_id is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return fmt.Errorf("ends_at must not be before starts_at")
	}
	if _, err := s.services.GetByID(ctx, p.ServiceID); err != nil {
		return fmt.Errorf("promotion service: %w", err)
	}
	return nil
}
