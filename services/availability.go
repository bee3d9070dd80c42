package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"venueBookerAPI/internal/types/booking"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so conflict checks can
// run inside the booking transaction that holds the venue row lock.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PriceFor computes the bookable price. Deterministic, no side effects.
func PriceFor(pricePerHour float64, hours int) float64 {
	return pricePerHour * float64(hours)
}

// windowsOverlap reports whether the half-open windows [startA, startA+hoursA)
// and [startB, startB+hoursB) intersect. Adjacent windows do not conflict.
func windowsOverlap(startA time.Time, hoursA int, startB time.Time, hoursB int) bool {
	endA := startA.Add(time.Duration(hoursA) * time.Hour)
	endB := startB.Add(time.Duration(hoursB) * time.Hour)
	return startA.Before(endB) && startB.Before(endA)
}

type bookingWindow struct {
	start  time.Time
	hours  int
	status booking.Status
}

// conflictsWith checks the target window against every candidate. Cancelled
// bookings never block a slot.
func conflictsWith(start time.Time, hours int, candidates []bookingWindow) bool {
	for _, c := range candidates {
		if c.status == booking.StatusCancelled {
			continue
		}
		if windowsOverlap(start, hours, c.start, c.hours) {
			return true
		}
	}
	return false
}

// HasConflict reports whether a non-cancelled booking for the same venue
// overlaps the [date, date+hours) window. The prototype this replaces never
// enforced this, but concurrent confirmation of overlapping bookings would
// break real-world capacity, so the conservative check is on by default.
// excludeBookingID lets detail updates skip the booking being moved.
//
// The SQL only narrows to bookings whose start could possibly intersect the
// window (no booking spans more than MaxHours); the overlap decision itself is
// made by conflictsWith so it stays testable.
func HasConflict(ctx context.Context, q querier, venueID string, date time.Time, hours int, excludeBookingID string) (bool, error) {
	rows, err := q.Query(ctx, `
		SELECT booking_date, hours_booked, status
		FROM bookings
		WHERE venue_id = $1
		  AND id <> $2
		  AND booking_date > $3::timestamptz - ($4 * interval '1 hour')
		  AND booking_date < $3::timestamptz + ($5 * interval '1 hour')
	`, venueID, excludeBookingID, date, booking.MaxHours, hours)
	if err != nil {
		return false, fmt.Errorf("failed to query booking windows: %w", err)
	}
	defer rows.Close()

	var candidates []bookingWindow
	for rows.Next() {
		var w bookingWindow
		if err := rows.Scan(&w.start, &w.hours, &w.status); err != nil {
			return false, fmt.Errorf("failed to scan booking window: %w", err)
		}
		candidates = append(candidates, w)
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("rows error: %w", err)
	}

	return conflictsWith(date, hours, candidates), nil
}
