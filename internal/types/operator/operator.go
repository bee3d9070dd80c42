// Package operator models the on-demand camera operator resource. Unlike a
// venue it is booked by whole date, not by hour window, and carries its base
// point for nearest-match resolution.
package operator

import (
	"time"

	"venueBookerAPI/internal/geo"
)

type Operator struct {
	ID              string      `db:"id"               json:"id"`
	OwnerID         string      `db:"owner_id"         json:"owner_id"`
	Name            string      `db:"name"             json:"name"`
	Bio             string      `db:"bio"              json:"bio"`
	ExperienceYears int         `db:"experience_years" json:"experience_years"`
	Phone           string      `db:"phone"            json:"phone"`
	Email           string      `db:"email"            json:"email"`
	Latitude        *float64    `db:"latitude"         json:"latitude,omitempty"`
	Longitude       *float64    `db:"longitude"        json:"longitude,omitempty"`
	UnavailableDays []time.Time `db:"unavailable_days" json:"unavailable_days"`
	CreatedAt       time.Time   `db:"created_at"       json:"created_at"`
}

func (o *Operator) ItemID() string { return o.ID }

// BasePoint returns the operator's geographic base and whether one is set.
// Operators without a location are skipped by the nearest-match scan.
func (o *Operator) BasePoint() (geo.Point, bool) {
	if o.Latitude == nil || o.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *o.Latitude, Lng: *o.Longitude}, true
}

type CreateOperatorRequest struct {
	Name            string   `json:"name" validate:"required"`
	Bio             string   `json:"bio"`
	ExperienceYears int      `json:"experience_years" validate:"min=0"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

// DateBooking is the simplified reservation against an operator: one whole
// day, no hour granularity.
type DateBooking struct {
	ID         string    `db:"id"          json:"id"`
	OperatorID string    `db:"operator_id" json:"operator_id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	Date       time.Time `db:"date"        json:"date"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
