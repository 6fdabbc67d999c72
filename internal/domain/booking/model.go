package booking

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// CancellationNotice is the minimum lead time a client needs to cancel.
const CancellationNotice = 2 * time.Hour

// IsActiveStatus reports whether a booking in this status occupies its slot
// for conflict purposes.
func IsActiveStatus(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// Booking maps to the bookings table. EndsAt is exclusive:
// starts_at + total duration.
type Booking struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	EmployeeID    uuid.UUID     `db:"employee_id" json:"employee_id"`
	StartsAt      time.Time     `db:"starts_at" json:"starts_at"`
	EndsAt        time.Time     `db:"ends_at" json:"ends_at"`
	Status        string        `db:"status" json:"status"`
	TotalPrice    int           `db:"total_price" json:"total_price"`
	TotalDuration int           `db:"total_duration" json:"total_duration"`
	Notes         *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	Items         []BookingItem `json:"items,omitempty"`
}

// BookingItem is the persisted line-item snapshot of the quote a booking
// was committed with.
type BookingItem struct {
	ID              uuid.UUID `db:"id" json:"id"`
	BookingID       uuid.UUID `db:"booking_id" json:"booking_id"`
	ServiceID       uuid.UUID `db:"service_id" json:"service_id"`
	Name            string    `db:"name" json:"name"`
	Quantity        int       `db:"quantity" json:"quantity"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	FinalPrice      int       `db:"final_price" json:"final_price"`
	RegularPrice    int       `db:"regular_price" json:"regular_price"`
	UsedPromotion   bool      `db:"used_promotion" json:"used_promotion"`
}

// Block maps to the booking_blocks table: an admin reservation of time that
// occupies the calendar like an active booking but carries no service data.
type Block struct {
	ID         uuid.UUID `db:"id" json:"id"`
	EmployeeID uuid.UUID `db:"employee_id" json:"employee_id"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time `db:"ends_at" json:"ends_at"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StatusLogEntry maps to the booking_status_log table. FromStatus is nil for
// the initial pending entry.
type StatusLogEntry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BookingID  uuid.UUID `db:"booking_id" json:"booking_id"`
	FromStatus *string   `db:"from_status" json:"from_status,omitempty"`
	ToStatus   string    `db:"to_status" json:"to_status"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Interval is an occupied span of a practitioner's calendar, sourced from
// an active booking or a block.
type Interval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Source string    `json:"source"`
}

// Overlaps applies the exact half-open test: touching intervals do not
// overlap.
func (i Interval) Overlaps(start, end time.Time) bool {
	return i.Start.Before(end) && i.End.After(start)
}
