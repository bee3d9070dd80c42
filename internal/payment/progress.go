// Package payment derives the read-only payment progress view from a booking's
// total price and advance paid amount. Everything here is pure arithmetic;
// amounts are clamped defensively so a bad row upstream can never push the
// percentage outside [0,100] or the balance below zero.
package payment

type Progress struct {
	Paid       float64 `json:"paid"`
	Percent    float64 `json:"percent"`
	BalanceDue float64 `json:"balance_due"`
	Band       int     `json:"band"`
}

// ProgressOf computes the progress view. advancePaid is clamped into
// [0, totalPrice] before anything is derived from it.
func ProgressOf(advancePaid, totalPrice float64) Progress {
	paid := advancePaid
	if paid > totalPrice {
		paid = totalPrice
	}
	if paid < 0 {
		paid = 0
	}

	var percent float64
	if totalPrice > 0 {
		percent = 100 * paid / totalPrice
	}

	balance := totalPrice - paid
	if balance < 0 {
		balance = 0
	}

	return Progress{
		Paid:       paid,
		Percent:    percent,
		BalanceDue: balance,
		Band:       BandOf(percent),
	}
}

// BandOf maps a percentage to one of five presentation tiers:
// [0,20] -> 0, (20,40] -> 1, (40,60] -> 2, (60,80] -> 3, (80,100] -> 4.
func BandOf(percent float64) int {
	switch {
	case percent <= 20:
		return 0
	case percent <= 40:
		return 1
	case percent <= 60:
		return 2
	case percent <= 80:
		return 3
	default:
		return 4
	}
}
