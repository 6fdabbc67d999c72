package clinic

import (
	"context"
	"errors"
	"fmt"
)

type ClinicService struct {
	settings      SettingsRepository
	practitioners PractitionerRepository
	defaults      Defaults
}

func NewClinicService(settings SettingsRepository, practitioners PractitionerRepository, defaults Defaults) *ClinicService {
	return &ClinicService{settings: settings, practitioners: practitioners, defaults: defaults}
}

// Settings returns the settings row in effect, materializing the configured
// defaults as the first row when none exists yet.
func (s *ClinicService) Settings(ctx context.Context) (*Settings, error) {
	current, err := s.settings.Latest(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	seeded := &Settings{
		SlotMinutes:       s.defaults.SlotMinutes,
		BookingWindowDays: s.defaults.BookingWindowDays,
		WorkdayStart:      s.defaults.WorkdayStart,
		WorkdayEnd:        s.defaults.WorkdayEnd,
	}
	if err := seeded.Validate(); err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}
	if err := s.settings.Create(ctx, seeded); err != nil {
		return nil, fmt.Errorf("persist default settings: %w", err)
	}
	return seeded, nil
}

// UpdateSettings appends a new settings row; the latest row always wins so
// history stays intact.
func (s *ClinicService) UpdateSettings(ctx context.Context, updated *Settings) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	return s.settings.Create(ctx, updated)
}

// DefaultPractitioner resolves the configured default practitioner,
// creating it on first access. The unique slug index makes concurrent first
// calls safe: the loser of the race re-fetches the winner's row.
func (s *ClinicService) DefaultPractitioner(ctx context.Context) (*Practitioner, error) {
	p, err := s.practitioners.GetActiveBySlug(ctx, s.defaults.PractitionerSlug)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPractitionerNotFound) {
		return nil, fmt.Errorf("load practitioner: %w", err)
	}

	created := &Practitioner{
		Slug:        s.defaults.PractitionerSlug,
		DisplayName: s.defaults.PractitionerName,
		Active:      true,
	}
	err = s.practitioners.Create(ctx, created)
	if errors.Is(err, ErrSlugTaken) {
		return s.practitioners.GetActiveBySlug(ctx, s.defaults.PractitionerSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("create practitioner: %w", err)
	}
	return created, nil
}
