package review

import (
	"time"

	"venueBookerAPI/internal/apperr"
)

const MaxCommentLength = 1000

type Review struct {
	ID        string    `db:"id"         json:"id"`
	VenueID   string    `db:"venue_id"   json:"venue_id"`
	AuthorID  string    `db:"author_id"  json:"author_id"`
	Rating    int       `db:"rating"     json:"rating"`
	Comment   string    `db:"comment"    json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (r *Review) ItemID() string { return r.ID }

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return apperr.Validationf("rating must be between 1 and 5, got %d", r.Rating)
	}
	if len(r.Comment) > MaxCommentLength {
		return apperr.Validationf("comment exceeds %d characters", MaxCommentLength)
	}
	return nil
}
