package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"venueBookerAPI/internal/apperr"
	"venueBookerAPI/internal/types/event"
	"venueBookerAPI/internal/types/review"
)

type ReviewService struct {
	db          *pgxpool.Pool
	broadcaster Broadcaster
}

func NewReviewService(db *pgxpool.Pool, broadcaster Broadcaster) *ReviewService {
	return &ReviewService{db: db, broadcaster: broadcaster}
}

// Create inserts a review and broadcasts it to viewers of the venue's review
// list. Multiple reviews by the same author for the same venue are allowed;
// only the id deduplicates on the subscriber side.
func (s *ReviewService) Create(ctx context.Context, venueID, authorID string, req review.CreateReviewRequest) (*review.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM venues WHERE id = $1)`, venueID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check venue: %w", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("venue %s not found", venueID)
	}

	r := &review.Review{
		ID:       uuid.New().String(),
		VenueID:  venueID,
		AuthorID: authorID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, venue_id, author_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, r.ID, r.VenueID, r.AuthorID, r.Rating, r.Comment).Scan(&r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	s.broadcaster.Publish(event.ReviewCreated, event.ReviewScope(venueID), r)

	return r, nil
}

// ListForVenue returns the venue's reviews newest first, matching the
// prepend order subscribers keep locally.
func (s *ReviewService) ListForVenue(ctx context.Context, venueID string) ([]review.Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, venue_id, author_id, rating, comment, created_at
		FROM reviews
		WHERE venue_id = $1
		ORDER BY created_at DESC
	`, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]review.Review, 0)
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.VenueID, &r.AuthorID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reviews, nil
}
