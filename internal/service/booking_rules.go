package service

import (
	"time"

	"gymweb/booking-api/internal/config"
)

// The rule engine is the pure half of booking validation: duration and
// booking-window checks need nothing but the proposed interval and a clock.
// The daily-limit and capacity checks live on bookingService because they
// query the session store.

// validateDuration rejects non-positive intervals and intervals longer than
// the configured cap.
func validateDuration(rules config.BookingConfig, start, end time.Time) error {
	d := end.Sub(start)
	if d <= 0 {
		return ErrInvalidInput
	}
	if d > rules.MaxSessionDuration {
		return ErrDurationExceeded
	}
	return nil
}

// validateBookingWindow rejects start times outside the inclusive range from
// Monday 00:00 of the current week to the last instant of next week's Sunday,
// both evaluated against "now".
func validateBookingWindow(now, start time.Time) error {
	weekStart, windowEnd := bookingWindow(now)
	if start.Before(weekStart) || start.After(windowEnd) {
		return ErrOutOfBookingWindow
	}
	return nil
}

// bookingWindow computes [Monday 00:00 of now's week, Sunday 23:59:59.999 of
// the following week] in now's location. Weeks start on Monday.
func bookingWindow(now time.Time) (weekStart, windowEnd time.Time) {
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(now.Weekday()) + 6) % 7
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart = midnight.AddDate(0, 0, -offset)
	windowEnd = weekStart.AddDate(0, 0, 14).Add(-time.Millisecond)
	return weekStart, windowEnd
}

// dayBounds returns the first and last instant of t's calendar day, used for
// the one-session-per-day rule.
func dayBounds(t time.Time) (dayStart, dayEnd time.Time) {
	dayStart = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dayEnd = dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)
	return dayStart, dayEnd
}
