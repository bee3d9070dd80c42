// Package booking holds the reservation entity and the pure lifecycle rules:
// which field values are legal, which status transitions are legal, and how
// payments accumulate. The service layer wraps these rules in transactions;
// nothing in this package touches storage.
package booking

import (
	"time"

	"venueBookerAPI/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

const (
	MinHours = 1
	MaxHours = 12
)

type Booking struct {
	ID          string    `db:"id"           json:"id"`
	VenueID     string    `db:"venue_id"     json:"venue_id"`
	CustomerID  string    `db:"customer_id"  json:"customer_id"`
	BookingDate time.Time `db:"booking_date" json:"booking_date"`
	HoursBooked int       `db:"hours_booked" json:"hours_booked"`
	TotalPrice  float64   `db:"total_price"  json:"total_price"`
	AdvancePaid float64   `db:"advance_paid" json:"advance_paid"`
	Status      Status    `db:"status"       json:"status"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

func (b *Booking) ItemID() string { return b.ID }

// ValidateNew checks the creation-time invariants: the date must be strictly
// in the future and the duration within [1,12] hours.
func ValidateNew(date time.Time, hours int, now time.Time) error {
	if !date.After(now) {
		return apperr.Validationf("booking date must be in the future")
	}
	if hours < MinHours || hours > MaxHours {
		return apperr.Validationf("hours must be between %d and %d, got %d", MinHours, MaxHours, hours)
	}
	return nil
}

// CanModifyDetails reports whether venue/date/hours may still change.
// A confirmed booking is locked in; a cancelled one is terminal.
func (b *Booking) CanModifyDetails() error {
	switch b.Status {
	case StatusConfirmed:
		return apperr.Conflictf("booking %s is confirmed and can no longer be modified", b.ID)
	case StatusCancelled:
		return apperr.Conflictf("booking %s is cancelled", b.ID)
	}
	return nil
}

// Transition applies a status change, enforcing both the legal state machine
// (pending->confirmed, pending->cancelled; confirmed->cancelled is forbidden)
// and the acting party: only the venue owner confirms, only the customer
// cancels their own booking.
func (b *Booking) Transition(target Status, actorID, venueOwnerID string) error {
	if b.Status == StatusCancelled {
		return apperr.Conflictf("booking %s is cancelled and terminal", b.ID)
	}

	switch target {
	case StatusConfirmed:
		if b.Status != StatusPending {
			return apperr.Conflictf("cannot confirm a %s booking", b.Status)
		}
		if actorID != venueOwnerID {
			return apperr.Authorizationf("only the venue owner may confirm a booking")
		}
	case StatusCancelled:
		if b.Status == StatusConfirmed {
			return apperr.Conflictf("a confirmed booking cannot be cancelled")
		}
		if actorID != b.CustomerID {
			return apperr.Authorizationf("only the customer may cancel their booking")
		}
	case StatusPending:
		// Owner may move a booking back from confirmed to pending.
		if b.Status != StatusConfirmed {
			return apperr.Conflictf("cannot move a %s booking back to pending", b.Status)
		}
		if actorID != venueOwnerID {
			return apperr.Authorizationf("only the venue owner may unconfirm a booking")
		}
	default:
		return apperr.Validationf("unknown status %q", target)
	}

	b.Status = target
	return nil
}

// ApplyPayment captures amount toward the total price. Amounts are strictly
// positive and the cumulative advance never exceeds the total; a rejected
// payment leaves AdvancePaid untouched. Status is never changed here --
// confirmation stays an explicit owner action even at 100% paid.
func (b *Booking) ApplyPayment(amount float64) error {
	if b.Status == StatusCancelled {
		return apperr.Conflictf("booking %s is cancelled", b.ID)
	}
	if amount <= 0 {
		return apperr.Validationf("payment amount must be positive, got %g", amount)
	}
	if b.AdvancePaid+amount > b.TotalPrice {
		return apperr.Conflictf("payment of %g would exceed total price %g (already paid %g)",
			amount, b.TotalPrice, b.AdvancePaid)
	}
	b.AdvancePaid += amount
	return nil
}
