package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Detector finds reservations overlapping a proposed interval. It reads
// through the repositories, so a transaction carried in the context gives
// the commit workflow a consistent snapshot for check-then-insert.
type Detector struct {
	bookings BookingRepository
	blocks   BlockRepository
}

func NewDetector(bookings BookingRepository, blocks BlockRepository) *Detector {
	return &Detector{bookings: bookings, blocks: blocks}
}

// FindConflicts returns every active booking or block interval for the
// practitioner that overlaps [start, end). Touching intervals are not
// conflicts. An empty result means the slot is free.
func (d *Detector) FindConflicts(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]Interval, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("invalid interval: start %s is not before end %s", start, end)
	}

	candidates, err := d.bookings.ActiveInRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	blocked, err := d.blocks.InRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	candidates = append(candidates, blocked...)

	// The repository range filter is coarse; apply the exact half-open
	// overlap test here.
	var conflicts []Interval
	for _, iv := range candidates {
		if iv.Overlaps(start, end) {
			conflicts = append(conflicts, iv)
		}
	}
	return conflicts, nil
}
