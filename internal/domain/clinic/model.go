package clinic

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinSlotMinutes = 5
	MaxSlotMinutes = 60
	MinWindowDays  = 1
	MaxWindowDays  = 60
)

// Settings maps to the clinic_settings table. The most recently created row
// is the one in effect; updates append rather than mutate.
type Settings struct {
	ID                uuid.UUID `db:"id" json:"id"`
	SlotMinutes       int       `db:"slot_minutes" json:"slot_minutes"`
	BookingWindowDays int       `db:"booking_window_days" json:"booking_window_days"`
	WorkdayStart      string    `db:"workday_start" json:"workday_start"`
	WorkdayEnd        string    `db:"workday_end" json:"workday_end"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the bounds the schema also enforces. Workday order is not
// checked here: a start at or past the end is a misconfiguration that yields
// an empty availability grid, not a rejected settings row.
func (s *Settings) Validate() error {
	if s.SlotMinutes < MinSlotMinutes || s.SlotMinutes > MaxSlotMinutes {
		return fmt.Errorf("slot_minutes must be between %d and %d", MinSlotMinutes, MaxSlotMinutes)
	}
	if s.BookingWindowDays < MinWindowDays || s.BookingWindowDays > MaxWindowDays {
		return fmt.Errorf("booking_window_days must be between %d and %d", MinWindowDays, MaxWindowDays)
	}
	for _, hhmm := range []struct{ name, value string }{
		{"workday_start", s.WorkdayStart},
		{"workday_end", s.WorkdayEnd},
	} {
		if _, err := time.Parse("15:04", hhmm.value); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", hhmm.name, hhmm.value)
		}
	}
	return nil
}

// Practitioner maps to the employees table. The system operates with a
// single default practitioner resolved by slug.
type Practitioner struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Defaults seeds the first settings row and the default practitioner when
// the database holds neither.
type Defaults struct {
	SlotMinutes       int
	BookingWindowDays int
	WorkdayStart      string
	WorkdayEnd        string
	PractitionerSlug  string
	PractitionerName  string
}
