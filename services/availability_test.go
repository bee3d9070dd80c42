package services

import (
	"testing"
	"time"

	"venueBookerAPI/internal/types/booking"
)

func TestWindowsOverlap(t *testing.T) {
	base := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		startB  time.Time
		hoursB  int
		overlap bool
	}{
		{"exact duplicate", base, 3, true},
		{"starts inside", base.Add(time.Hour), 3, true},
		{"ends inside", base.Add(-time.Hour), 2, true},
		{"contains", base.Add(-time.Hour), 6, true},
		{"contained", base.Add(time.Hour), 1, true},
		{"adjacent after", base.Add(3 * time.Hour), 2, false},
		{"adjacent before", base.Add(-2 * time.Hour), 2, false},
		{"disjoint", base.Add(24 * time.Hour), 3, false},
	}

	for _, c := range cases {
		if got := windowsOverlap(base, 3, c.startB, c.hoursB); got != c.overlap {
			t.Errorf("%s: windowsOverlap = %v, expected %v", c.name, got, c.overlap)
		}
		// Overlap is symmetric in the two windows.
		if got := windowsOverlap(c.startB, c.hoursB, base, 3); got != c.overlap {
			t.Errorf("%s (swapped): windowsOverlap = %v, expected %v", c.name, got, c.overlap)
		}
	}
}

func TestConflictsWithSkipsCancelled(t *testing.T) {
	base := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)

	cancelled := []bookingWindow{{start: base, hours: 3, status: booking.StatusCancelled}}
	if conflictsWith(base, 3, cancelled) {
		t.Error("A cancelled booking must not block the slot")
	}

	mixed := append(cancelled, bookingWindow{start: base.Add(time.Hour), hours: 2, status: booking.StatusPending})
	if !conflictsWith(base, 3, mixed) {
		t.Error("A pending overlapping booking must block the slot")
	}

	confirmed := []bookingWindow{{start: base, hours: 3, status: booking.StatusConfirmed}}
	if !conflictsWith(base, 3, confirmed) {
		t.Error("A confirmed overlapping booking must block the slot")
	}
}

func TestConflictsWithEmpty(t *testing.T) {
	base := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)
	if conflictsWith(base, 3, nil) {
		t.Error("No candidates means no conflict")
	}
}
