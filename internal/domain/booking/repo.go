package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BookingRepository interface {
	// Create inserts the booking and its line items. A storage-level
	// exclusion violation on the booking interval maps to ErrSlotConflict.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Booking, int, error)
	// ActiveInRange returns intervals of bookings in active statuses whose
	// stored span could overlap [start, end]; callers apply the exact
	// half-open test.
	ActiveInRange(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]Interval, error)
}

type BlockRepository interface {
	// Create maps a storage-level exclusion violation to ErrSlotConflict.
	Create(ctx context.Context, b *Block) error
	GetByID(ctx context.Context, id uuid.UUID) (*Block, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Block, int, error)
	InRange(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]Interval, error)
}

type StatusLogRepository interface {
	Append(ctx context.Context, e *StatusLogEntry) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*StatusLogEntry, error)
}
