package clinic

import (
	"context"

	"github.com/google/uuid"
)

type SettingsRepository interface {
	// Latest returns the most recently created settings row, or
	// ErrSettingsNotFound.
	Latest(ctx context.Context) (*Settings, error)
	Create(ctx context.Context, s *Settings) error
}

type PractitionerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	GetActiveBySlug(ctx context.Context, slug string) (*Practitioner, error)
	// Create returns ErrSlugTaken when the slug's unique index rejects the
	// insert.
	Create(ctx context.Context, p *Practitioner) error
}
