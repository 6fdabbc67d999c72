package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/clinic"
)

// SettingsProvider supplies the clinic configuration the workflow checks
// against.
type SettingsProvider interface {
	Settings(ctx context.Context) (*clinic.Settings, error)
	DefaultPractitioner(ctx context.Context) (*clinic.Practitioner, error)
}

// QuoteResolver prices a selection. Implemented by the catalog service.
type QuoteResolver interface {
	ResolveQuote(ctx context.Context, selections []catalog.Selection) (*catalog.Quote, error)
}

// Notifier dispatches operator notifications. Delivery is fire-and-forget.
type Notifier interface {
	Notify(templateID string, data map[string]string)
}

// TxRunner executes fn inside one transaction; the ctx passed to fn carries
// it so repository reads and writes share a snapshot.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// NoTx runs fn without a transaction. Used in tests against in-memory repos.
func NoTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type BookingService struct {
	bookings BookingRepository
	blocks   BlockRepository
	log      StatusLogRepository
	detector *Detector
	clinic   SettingsProvider
	quotes   QuoteResolver
	notifier Notifier
	runTx    TxRunner
	logger   zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewBookingService(
	bookings BookingRepository,
	blocks BlockRepository,
	log StatusLogRepository,
	clinicSvc SettingsProvider,
	quotes QuoteResolver,
	notifier Notifier,
	runTx TxRunner,
	logger zerolog.Logger,
	loc *time.Location,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		blocks:   blocks,
		log:      log,
		detector: NewDetector(bookings, blocks),
		clinic:   clinicSvc,
		quotes:   quotes,
		notifier: notifier,
		runTx:    runTx,
		logger:   logger.With().Str("component", "booking").Logger(),
		loc:      loc,
		now:      time.Now,
	}
}

// Detector exposes the conflict detector for read-only callers.
func (s *BookingService) Detector() *Detector { return s.detector }

// -- commit workflow --

// CreateBooking runs the linear commit pipeline: quote, booking-window
// check, working-hours check, authoritative conflict re-check, insert. The
// conflict check and insert run inside one transaction; every rejection
// before the insert is side-effect-free.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, selections []catalog.Selection, startAt time.Time, notes *string) (*Booking, *catalog.Quote, error) {
	quote, err := s.quotes.ResolveQuote(ctx, selections)
	if err != nil {
		return nil, nil, err
	}

	settings, err := s.clinic.Settings(ctx)
	if err != nil {
		return nil, nil, err
	}
	practitioner, err := s.clinic.DefaultPractitioner(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	windowEnd := now.Add(time.Duration(settings.BookingWindowDays) * 24 * time.Hour)
	if startAt.Before(now) || startAt.After(windowEnd) {
		return nil, nil, fmt.Errorf("%w: bookings accepted up to %d days ahead",
			ErrOutOfBookingWindow, settings.BookingWindowDays)
	}

	endAt := startAt.Add(time.Duration(quote.TotalDurationMinutes) * time.Minute)
	if !s.withinWorkingHours(startAt, endAt, settings) {
		return nil, nil, fmt.Errorf("%w: clinic hours are %s-%s",
			ErrOutsideWorkingHours, settings.WorkdayStart, settings.WorkdayEnd)
	}

	b := &Booking{
		UserID:        userID,
		EmployeeID:    practitioner.ID,
		StartsAt:      startAt,
		EndsAt:        endAt,
		Status:        StatusPending,
		TotalPrice:    quote.TotalPrice,
		TotalDuration: quote.TotalDurationMinutes,
		Notes:         notes,
	}
	for _, item := range quote.Items {
		b.Items = append(b.Items, BookingItem{
			ServiceID:       item.ServiceID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			DurationMinutes: item.DurationMinutes,
			FinalPrice:      item.FinalPrice,
			RegularPrice:    item.RegularPrice,
			UsedPromotion:   item.UsedPromotion,
		})
	}

	err = s.runTx(ctx, func(txCtx context.Context) error {
		conflicts, err := s.detector.FindConflicts(txCtx, practitioner.ID, startAt, endAt)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSlotConflict
		}
		if err := s.bookings.Create(txCtx, b); err != nil {
			return err
		}
		return s.log.Append(txCtx, &StatusLogEntry{BookingID: b.ID, ToStatus: StatusPending})
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("booking_id", b.ID.String()).
		Time("starts_at", b.StartsAt).
		Int("total_price", b.TotalPrice).
		Msg("booking created")
	s.notifier.Notify("booking-created", map[string]string{
		"booking_id": b.ID.String(),
		"starts_at":  b.StartsAt.In(s.loc).Format("2006-01-02 15:04"),
		"duration":   strconv.Itoa(b.TotalDuration),
		"total":      strconv.Itoa(b.TotalPrice),
	})
	return b, quote, nil
}

func (s *BookingService) withinWorkingHours(start, end time.Time, settings *clinic.Settings) bool {
	local := start.In(s.loc)
	dayStart, ok := workdayBound(local, settings.WorkdayStart, s.loc)
	if !ok {
		return false
	}
	dayEnd, ok := workdayBound(local, settings.WorkdayEnd, s.loc)
	if !ok {
		return false
	}
	if !dayStart.Before(dayEnd) {
		return false
	}
	return !start.Before(dayStart) && !end.After(dayEnd)
}

// -- availability --

// AvailabilityForDay builds the slot grid for one date. Busy intervals are
// fetched once for the day, then each candidate is tested against them.
func (s *BookingService) AvailabilityForDay(ctx context.Context, dateStr string, selections []catalog.Selection) (*DayAvailability, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	settings, err := s.clinic.Settings(ctx)
	if err != nil {
		return nil, err
	}
	practitioner, err := s.clinic.DefaultPractitioner(ctx)
	if err != nil {
		return nil, err
	}
	duration, err := s.requiredDuration(ctx, selections, settings)
	if err != nil {
		return nil, err
	}

	slots, err := s.dayGrid(ctx, date, settings, practitioner.ID, duration)
	if err != nil {
		return nil, err
	}
	return &DayAvailability{
		Date:            dateStr,
		DurationMinutes: duration,
		SlotMinutes:     settings.SlotMinutes,
		Slots:           slots,
	}, nil
}

// AvailabilityForMonth sweeps the day generator across the calendar month
// and collapses each day to its available-slot count.
func (s *BookingService) AvailabilityForMonth(ctx context.Context, monthStr string, selections []catalog.Selection) (*MonthAvailability, error) {
	month, err := time.ParseInLocation("2006-01", monthStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", monthStr, err)
	}

	settings, err := s.clinic.Settings(ctx)
	if err != nil {
		return nil, err
	}
	practitioner, err := s.clinic.DefaultPractitioner(ctx)
	if err != nil {
		return nil, err
	}
	duration, err := s.requiredDuration(ctx, selections, settings)
	if err != nil {
		return nil, err
	}

	result := &MonthAvailability{Month: monthStr, DurationMinutes: duration}
	for _, day := range daysInMonth(month) {
		slots, err := s.dayGrid(ctx, day, settings, practitioner.ID, duration)
		if err != nil {
			return nil, err
		}
		result.Days = append(result.Days, MonthDay{
			Date:               day.Format("2006-01-02"),
			AvailableSlotCount: countAvailable(slots),
		})
	}
	return result, nil
}

// requiredDuration prices the selection, or falls back to one slot length
// when nothing is selected yet so the calendar can still render a signal.
func (s *BookingService) requiredDuration(ctx context.Context, selections []catalog.Selection, settings *clinic.Settings) (int, error) {
	if len(selections) == 0 {
		return settings.SlotMinutes, nil
	}
	quote, err := s.quotes.ResolveQuote(ctx, selections)
	if err != nil {
		return 0, err
	}
	return quote.TotalDurationMinutes, nil
}

func (s *BookingService) dayGrid(ctx context.Context, date time.Time, settings *clinic.Settings, employeeID uuid.UUID, durationMinutes int) ([]DaySlot, error) {
	dayStart, ok := workdayBound(date, settings.WorkdayStart, s.loc)
	if !ok {
		return nil, nil
	}
	dayEnd, ok := workdayBound(date, settings.WorkdayEnd, s.loc)
	if !ok || !dayStart.Before(dayEnd) {
		return nil, nil
	}

	busy, err := s.bookings.ActiveInRange(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	blocked, err := s.blocks.InRange(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	busy = append(busy, blocked...)

	return buildDayGrid(dayStart, dayEnd, settings.SlotMinutes, durationMinutes, busy), nil
}

// -- cancellation & status transitions --

// Cancel lets the booking's owner cancel while it is still active and the
// start is at least the notice window away.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	if !IsActiveStatus(b.Status) {
		return nil, ErrNotCancellable
	}
	if b.StartsAt.Sub(s.now()) < CancellationNotice {
		return nil, fmt.Errorf("%w: at least %s notice required", ErrTooLateToCancel, CancellationNotice)
	}

	if err := s.transition(ctx, b, StatusCancelled, nil); err != nil {
		return nil, err
	}
	s.notifier.Notify("booking-cancelled", map[string]string{
		"booking_id": b.ID.String(),
		"starts_at":  b.StartsAt.In(s.loc).Format("2006-01-02 15:04"),
	})
	return b, nil
}

var adminTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// ChangeStatus applies an admin lifecycle transition and records it.
func (s *BookingService) ChangeStatus(ctx context.Context, bookingID uuid.UUID, target string, note *string) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, t := range adminTransitions[b.Status] {
		if t == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, target)
	}

	previous := b.Status
	if err := s.transition(ctx, b, target, note); err != nil {
		return nil, err
	}
	s.notifier.Notify("booking-status-changed", map[string]string{
		"booking_id":      b.ID.String(),
		"previous_status": previous,
		"status":          target,
	})
	return b, nil
}

// transition flips the status and appends the log entry in one transaction.
func (s *BookingService) transition(ctx context.Context, b *Booking, target string, note *string) error {
	from := b.Status
	err := s.runTx(ctx, func(txCtx context.Context) error {
		if err := s.bookings.UpdateStatus(txCtx, b.ID, target); err != nil {
			return err
		}
		return s.log.Append(txCtx, &StatusLogEntry{
			BookingID:  b.ID,
			FromStatus: &from,
			ToStatus:   target,
			Note:       note,
		})
	})
	if err != nil {
		return err
	}
	b.Status = target
	return nil
}

// -- reads --

func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

func (s *BookingService) ListBookings(ctx context.Context, status string, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.List(ctx, status, limit, offset)
}

func (s *BookingService) StatusLog(ctx context.Context, bookingID uuid.UUID) ([]*StatusLogEntry, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.log.ListByBooking(ctx, bookingID)
}

// -- blocks --

// CreateBlock reserves time on the practitioner's calendar. Blocks contend
// for slots exactly like active bookings, so the same conflict check and
// transactional insert apply.
func (s *BookingService) CreateBlock(ctx context.Context, startAt, endAt time.Time, note *string) (*Block, error) {
	if !startAt.Before(endAt) {
		return nil, fmt.Errorf("block start must be before end")
	}
	practitioner, err := s.clinic.DefaultPractitioner(ctx)
	if err != nil {
		return nil, err
	}

	b := &Block{EmployeeID: practitioner.ID, StartsAt: startAt, EndsAt: endAt, Note: note}
	err = s.runTx(ctx, func(txCtx context.Context) error {
		conflicts, err := s.detector.FindConflicts(txCtx, practitioner.ID, startAt, endAt)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSlotConflict
		}
		return s.blocks.Create(txCtx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return s.blocks.Delete(ctx, id)
}

func (s *BookingService) ListBlocks(ctx context.Context, limit, offset int) ([]*Block, int, error) {
	return s.blocks.List(ctx, limit, offset)
}
