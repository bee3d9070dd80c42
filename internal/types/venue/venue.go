package venue

import (
	"time"

	"venueBookerAPI/internal/apperr"
)

type Venue struct {
	ID           string    `db:"id"             json:"id"`
	OwnerID      string    `db:"owner_id"       json:"owner_id"`
	Name         string    `db:"name"           json:"name"`
	Description  string    `db:"description"    json:"description"`
	Address      string    `db:"address"        json:"address"`
	Latitude     float64   `db:"latitude"       json:"latitude"`
	Longitude    float64   `db:"longitude"      json:"longitude"`
	Capacity     int       `db:"capacity"       json:"capacity"`
	PricePerHour float64   `db:"price_per_hour" json:"price_per_hour"`
	Tags         []string  `db:"tags"           json:"tags"`
	Images       []string  `db:"images"         json:"images"`
	LikeCount    int       `db:"like_count"     json:"like_count"`
	Verified     bool      `db:"verified"       json:"verified"`
	CreatedAt    time.Time `db:"created_at"     json:"created_at"`

	LikedBy []string `db:"-" json:"liked_by,omitempty"`
}

func (v *Venue) ItemID() string { return v.ID }

type CreateVenueRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Address      string   `json:"address" validate:"required"`
	Latitude     float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64  `json:"longitude" validate:"min=-180,max=180"`
	Capacity     int      `json:"capacity" validate:"required,gt=0"`
	PricePerHour float64  `json:"price_per_hour" validate:"required,gt=0"`
	Tags         []string `json:"tags"`
	Images       []string `json:"images"`
}

// Validate enforces the venue invariants the database alone does not express.
func (r *CreateVenueRequest) Validate() error {
	if r.Name == "" {
		return apperr.Validationf("venue name is required")
	}
	if r.Capacity <= 0 {
		return apperr.Validationf("capacity must be positive, got %d", r.Capacity)
	}
	if r.PricePerHour <= 0 {
		return apperr.Validationf("price per hour must be positive, got %g", r.PricePerHour)
	}
	return nil
}
