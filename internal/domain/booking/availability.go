package booking

import (
	"time"
)

// DaySlot is one candidate start time on the availability grid.
type DaySlot struct {
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Available bool      `json:"available"`
}

// DayAvailability is the slot grid for one date.
type DayAvailability struct {
	Date            string    `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	SlotMinutes     int       `json:"slot_minutes"`
	Slots           []DaySlot `json:"slots"`
}

// MonthDay is the collapsed availability signal for one calendar day.
type MonthDay struct {
	Date               string `json:"date"`
	AvailableSlotCount int    `json:"available_slot_count"`
}

// MonthAvailability is the per-day count map for a whole month.
type MonthAvailability struct {
	Month           string     `json:"month"`
	DurationMinutes int        `json:"duration_minutes"`
	Days            []MonthDay `json:"days"`
}

// workdayBound resolves an "HH:MM" clinic-hours string onto a concrete date
// in the clinic's timezone.
func workdayBound(date time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	parsed, err := time.ParseInLocation("15:04", hhmm, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, loc), true
}

// buildDayGrid produces the candidate slots between dayStart and dayEnd.
// Candidates whose service would run past dayEnd are excluded from the grid
// entirely rather than marked unavailable. Misconfigured bounds
// (dayStart >= dayEnd) or an oversize duration yield an empty grid. Slots
// come out in ascending order.
func buildDayGrid(dayStart, dayEnd time.Time, slotMinutes, durationMinutes int, busy []Interval) []DaySlot {
	if slotMinutes <= 0 || durationMinutes <= 0 || !dayStart.Before(dayEnd) {
		return nil
	}

	step := time.Duration(slotMinutes) * time.Minute
	duration := time.Duration(durationMinutes) * time.Minute

	var slots []DaySlot
	for start := dayStart; ; start = start.Add(step) {
		end := start.Add(duration)
		if end.After(dayEnd) {
			break
		}
		slot := DaySlot{StartAt: start, EndAt: end, Available: true}
		for _, iv := range busy {
			if iv.Overlaps(start, end) {
				slot.Available = false
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// countAvailable collapses a day grid to its available-slot count.
func countAvailable(slots []DaySlot) int {
	n := 0
	for _, s := range slots {
		if s.Available {
			n++
		}
	}
	return n
}

// daysInMonth returns midnight of every calendar day of the month
// containing the given date, in its location.
func daysInMonth(month time.Time) []time.Time {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	var days []time.Time
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
