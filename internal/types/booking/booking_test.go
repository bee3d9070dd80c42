package booking

import (
	"testing"
	"time"
)

func futureBooking(total float64) *Booking {
	return &Booking{
		ID:          "b1",
		VenueID:     "v1",
		CustomerID:  "customer",
		BookingDate: time.Now().Add(48 * time.Hour),
		HoursBooked: 3,
		TotalPrice:  total,
		Status:      StatusPending,
	}
}

func TestValidateNew(t *testing.T) {
	now := time.Now()

	if err := ValidateNew(now.Add(time.Hour), 3, now); err != nil {
		t.Errorf("Expected valid booking, got %v", err)
	}
	if err := ValidateNew(now.Add(-time.Hour), 3, now); err == nil {
		t.Error("Expected error for past date")
	}
	if err := ValidateNew(now, 3, now); err == nil {
		t.Error("Expected error for non-strictly-future date")
	}
	if err := ValidateNew(now.Add(time.Hour), 0, now); err == nil {
		t.Error("Expected error for zero hours")
	}
	if err := ValidateNew(now.Add(time.Hour), 13, now); err == nil {
		t.Error("Expected error for more than 12 hours")
	}
	if err := ValidateNew(now.Add(time.Hour), 12, now); err != nil {
		t.Errorf("Expected 12 hours to be valid, got %v", err)
	}
}

func TestConfirmedCannotBeCancelled(t *testing.T) {
	b := futureBooking(10000)
	b.Status = StatusConfirmed

	err := b.Transition(StatusCancelled, "customer", "owner")
	if err == nil {
		t.Fatal("Expected confirmed->cancelled to be rejected")
	}
	if b.Status != StatusConfirmed {
		t.Errorf("Booking mutated on rejected transition: %s", b.Status)
	}
}

func TestOnlyOwnerConfirms(t *testing.T) {
	b := futureBooking(10000)

	if err := b.Transition(StatusConfirmed, "customer", "owner"); err == nil {
		t.Error("Expected confirmation by non-owner to be rejected")
	}
	if b.Status != StatusPending {
		t.Errorf("Booking mutated on rejected transition: %s", b.Status)
	}

	if err := b.Transition(StatusConfirmed, "owner", "owner"); err != nil {
		t.Errorf("Expected owner confirmation to succeed, got %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("Expected confirmed, got %s", b.Status)
	}
}

func TestOnlyCustomerCancels(t *testing.T) {
	b := futureBooking(10000)

	if err := b.Transition(StatusCancelled, "someone-else", "owner"); err == nil {
		t.Error("Expected cancellation by stranger to be rejected")
	}

	if err := b.Transition(StatusCancelled, "customer", "owner"); err != nil {
		t.Errorf("Expected customer cancellation to succeed, got %v", err)
	}
	if b.Status != StatusCancelled {
		t.Errorf("Expected cancelled, got %s", b.Status)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	b := futureBooking(10000)
	b.Status = StatusCancelled

	for _, target := range []Status{StatusPending, StatusConfirmed, StatusCancelled} {
		if err := b.Transition(target, "owner", "owner"); err == nil {
			t.Errorf("Expected cancelled->%s to be rejected", target)
		}
	}

	if err := b.ApplyPayment(100); err == nil {
		t.Error("Expected payment on cancelled booking to be rejected")
	}
}

func TestApplyPaymentMonotonic(t *testing.T) {
	b := futureBooking(15000)

	if err := b.ApplyPayment(5000); err != nil {
		t.Fatalf("First payment rejected: %v", err)
	}
	if err := b.ApplyPayment(10000); err != nil {
		t.Fatalf("Second payment rejected: %v", err)
	}
	if b.AdvancePaid != 15000 {
		t.Errorf("Expected advance 15000, got %f", b.AdvancePaid)
	}
}

func TestApplyPaymentRejectsOvershoot(t *testing.T) {
	b := futureBooking(10000)
	b.AdvancePaid = 9000

	err := b.ApplyPayment(2000)
	if err == nil {
		t.Fatal("Expected overshoot payment to be rejected")
	}
	if b.AdvancePaid != 9000 {
		t.Errorf("Advance changed on rejected payment: %f", b.AdvancePaid)
	}
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	b := futureBooking(10000)

	for _, amount := range []float64{0, -100} {
		if err := b.ApplyPayment(amount); err == nil {
			t.Errorf("Expected payment of %f to be rejected", amount)
		}
	}
	if b.AdvancePaid != 0 {
		t.Errorf("Advance changed on rejected payments: %f", b.AdvancePaid)
	}
}

func TestApplyPaymentDoesNotChangeStatus(t *testing.T) {
	b := futureBooking(5000)

	if err := b.ApplyPayment(5000); err != nil {
		t.Fatalf("Payment rejected: %v", err)
	}
	if b.Status != StatusPending {
		t.Errorf("Full payment must not confirm the booking, got status %s", b.Status)
	}
}

func TestCanModifyDetails(t *testing.T) {
	b := futureBooking(10000)

	if err := b.CanModifyDetails(); err != nil {
		t.Errorf("Pending booking should be modifiable, got %v", err)
	}

	b.Status = StatusConfirmed
	if err := b.CanModifyDetails(); err == nil {
		t.Error("Confirmed booking must not be modifiable")
	}

	b.Status = StatusCancelled
	if err := b.CanModifyDetails(); err == nil {
		t.Error("Cancelled booking must not be modifiable")
	}
}
