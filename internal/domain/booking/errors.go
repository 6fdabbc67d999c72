package booking

import "errors"

// Rejection reasons surfaced by the commit workflow and cancellation rules.
var (
	// ErrOutOfBookingWindow rejects starts outside [now, now+windowDays].
	ErrOutOfBookingWindow = errors.New("start time is outside the booking window")

	// ErrOutsideWorkingHours rejects intervals not fully inside the workday.
	ErrOutsideWorkingHours = errors.New("requested time is outside working hours")

	// ErrSlotConflict is the authoritative conflict rejection at commit time.
	ErrSlotConflict = errors.New("requested slot conflicts with an existing reservation")

	// ErrTooLateToCancel rejects cancellations inside the notice window.
	ErrTooLateToCancel = errors.New("booking starts too soon to cancel")

	// ErrNotCancellable rejects cancelling a booking that is not active.
	ErrNotCancellable = errors.New("booking is not in a cancellable status")

	// ErrInvalidStatusTransition rejects admin status changes the lifecycle
	// does not allow.
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")

	ErrBookingNotFound = errors.New("booking not found")
	ErrBlockNotFound   = errors.New("booking block not found")

	// ErrNotOwner rejects access to another user's booking.
	ErrNotOwner = errors.New("booking belongs to another user")
)
