package payment

import "testing"

func TestProgressFullyPaid(t *testing.T) {
	// Venue at 5000/hr booked 3 hours, then paid 5000 + 10000.
	p := ProgressOf(15000, 15000)

	if p.Paid != 15000 {
		t.Errorf("Expected paid 15000, got %f", p.Paid)
	}
	if p.BalanceDue != 0 {
		t.Errorf("Expected zero balance, got %f", p.BalanceDue)
	}
	if p.Percent != 100 {
		t.Errorf("Expected 100%%, got %f", p.Percent)
	}
	if p.Band != 4 {
		t.Errorf("Expected band 4, got %d", p.Band)
	}
}

func TestProgressPartial(t *testing.T) {
	p := ProgressOf(9000, 10000)

	if p.Percent != 90 {
		t.Errorf("Expected 90%%, got %f", p.Percent)
	}
	if p.BalanceDue != 1000 {
		t.Errorf("Expected balance 1000, got %f", p.BalanceDue)
	}
}

func TestProgressClampsOverpayment(t *testing.T) {
	// A corrupted row with advance beyond total must still produce a bounded view.
	p := ProgressOf(12000, 10000)

	if p.Paid != 10000 {
		t.Errorf("Expected paid clamped to 10000, got %f", p.Paid)
	}
	if p.Percent != 100 {
		t.Errorf("Expected percent clamped to 100, got %f", p.Percent)
	}
	if p.BalanceDue != 0 {
		t.Errorf("Expected non-negative balance, got %f", p.BalanceDue)
	}
}

func TestProgressClampsNegative(t *testing.T) {
	p := ProgressOf(-50, 10000)

	if p.Paid != 0 || p.Percent != 0 || p.BalanceDue != 10000 {
		t.Errorf("Expected zeroed progress for negative advance, got %+v", p)
	}
}

func TestProgressZeroTotal(t *testing.T) {
	p := ProgressOf(0, 0)

	if p.Percent != 0 {
		t.Errorf("Expected 0%% for zero total, got %f", p.Percent)
	}
}

func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		percent float64
		band    int
	}{
		{0, 0}, {20, 0}, {20.01, 1}, {40, 1}, {41, 2}, {60, 2}, {61, 3}, {80, 3}, {80.5, 4}, {100, 4},
	}

	for _, c := range cases {
		if got := BandOf(c.percent); got != c.band {
			t.Errorf("BandOf(%f) = %d, expected %d", c.percent, got, c.band)
		}
	}
}
