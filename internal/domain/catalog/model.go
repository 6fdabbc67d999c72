package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service maps to the services table. Prices are integer minor currency
// units.
type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Price           int       `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Promotion maps to the promotions table. A nil bound means unbounded on
// that side.
type Promotion struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ServiceID uuid.UUID  `db:"service_id" json:"service_id"`
	Price     int        `db:"price" json:"price"`
	StartsAt  *time.Time `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt    *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// LiveAt reports whether the promotion price applies at the given instant.
// Both window bounds are inclusive.
func (p *Promotion) LiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && p.StartsAt.After(now) {
		return false
	}
	if p.EndsAt != nil && p.EndsAt.Before(now) {
		return false
	}
	return true
}

// Selection is one requested service with a quantity. Quantity zero is
// normalized to one.
type Selection struct {
	ServiceID uuid.UUID `json:"service_id"`
	Quantity  int       `json:"quantity,omitempty"`
}

// SelectionsFromIDs adapts a bare service-id list into selections with
// quantity one.
func SelectionsFromIDs(ids []uuid.UUID) []Selection {
	out := make([]Selection, 0, len(ids))
	for _, id := range ids {
		out = append(out, Selection{ServiceID: id, Quantity: 1})
	}
	return out
}

// QuoteItem is one priced line of a quote. Price and duration fields are
// per unit; Quantity multiplies their contribution to the totals.
type QuoteItem struct {
	ServiceID       uuid.UUID `json:"service_id"`
	Name            string    `json:"name"`
	Quantity        int       `json:"quantity"`
	DurationMinutes int       `json:"duration_minutes"`
	FinalPrice      int       `json:"final_price"`
	RegularPrice    int       `json:"regular_price"`
	UsedPromotion   bool      `json:"used_promotion"`
}

// Quote is the priced, durationed summary of a selection. Derived, never
// persisted on its own.
type Quote struct {
	Items                []QuoteItem `json:"items"`
	TotalDurationMinutes int         `json:"total_duration_minutes"`
	TotalPrice           int         `json:"total_price"`
}
