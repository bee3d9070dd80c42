package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"venueBookerAPI/internal/apperr"
	"venueBookerAPI/internal/types/event"
	"venueBookerAPI/internal/types/venue"
)

type VenueService struct {
	db          *pgxpool.Pool
	broadcaster Broadcaster
}

func NewVenueService(db *pgxpool.Pool, broadcaster Broadcaster) *VenueService {
	return &VenueService{db: db, broadcaster: broadcaster}
}

func (s *VenueService) Create(ctx context.Context, ownerID string, req venue.CreateVenueRequest) (*venue.Venue, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	v := &venue.Venue{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
		Tags:         req.Tags,
		Images:       req.Images,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Images == nil {
		v.Images = []string{}
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO venues (id, owner_id, name, description, address, latitude, longitude, capacity, price_per_hour, tags, images, like_count, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, false, NOW())
		RETURNING created_at
	`, v.ID, v.OwnerID, v.Name, v.Description, v.Address, v.Latitude, v.Longitude,
		v.Capacity, v.PricePerHour, v.Tags, v.Images).Scan(&v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert venue: %w", err)
	}

	s.broadcaster.Publish(event.ResourceCreated, event.ScopeVenues, v)

	return v, nil
}

func (s *VenueService) GetAll(ctx context.Context) ([]venue.Venue, error) {
	query := `
		SELECT
			v.id,
			v.owner_id,
			v.name,
			v.description,
			v.address,
			v.latitude,
			v.longitude,
			v.capacity,
			v.price_per_hour,
			COALESCE(v.tags, '{}') AS tags,
			COALESCE(v.images, '{}') AS images,
			v.like_count,
			v.verified,
			v.created_at,

			COALESCE((
				SELECT array_agg(vl.user_id)
				FROM venue_likes vl
				WHERE vl.venue_id = v.id
			), '{}'::text[]) AS liked_by

		FROM venues v
		ORDER BY v.created_at DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	venues := make([]venue.Venue, 0)
	for rows.Next() {
		var v venue.Venue
		err := rows.Scan(
			&v.ID,
			&v.OwnerID,
			&v.Name,
			&v.Description,
			&v.Address,
			&v.Latitude,
			&v.Longitude,
			&v.Capacity,
			&v.PricePerHour,
			&v.Tags,
			&v.Images,
			&v.LikeCount,
			&v.Verified,
			&v.CreatedAt,
			&v.LikedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return venues, nil
}

func (s *VenueService) Get(ctx context.Context, venueID string) (*venue.Venue, error) {
	var v venue.Venue
	err := s.db.QueryRow(ctx, `
		SELECT id, owner_id, name, description, address, latitude, longitude, capacity, price_per_hour,
		       COALESCE(tags, '{}'), COALESCE(images, '{}'), like_count, verified, created_at
		FROM venues
		WHERE id = $1
	`, venueID).Scan(&v.ID, &v.OwnerID, &v.Name, &v.Description, &v.Address, &v.Latitude, &v.Longitude,
		&v.Capacity, &v.PricePerHour, &v.Tags, &v.Images, &v.LikeCount, &v.Verified, &v.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFoundf("venue %s not found", venueID)
		}
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}

	return &v, nil
}

// deleteBlockedByReference turns a foreign key violation on the venue row into
// a conflict the owner can act on instead of an opaque server error.
func deleteBlockedByReference(err error, venueID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperr.Conflictf("venue %s is still referenced by existing bookings", venueID)
	}
	return fmt.Errorf("failed to delete venue: %w", err)
}

// Delete removes the venue and cascades a resourceDeleted event to every
// viewer of the venue list. Only the owner may delete, and only while no
// pending or confirmed booking references the venue; cancelled booking rows
// are removed along with it.
func (s *VenueService) Delete(ctx context.Context, venueID, actorID string) error {
	v, err := s.Get(ctx, venueID)
	if err != nil {
		return err
	}
	if v.OwnerID != actorID {
		return apperr.Authorizationf("only the owner may delete venue %s", venueID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var hasActive bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM bookings WHERE venue_id = $1 AND status <> 'cancelled')
	`, venueID).Scan(&hasActive)
	if err != nil {
		return fmt.Errorf("failed to check venue bookings: %w", err)
	}
	if hasActive {
		return apperr.Conflictf("venue %s has active bookings and cannot be deleted", venueID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE venue_id = $1`, venueID); err != nil {
		return fmt.Errorf("failed to delete venue bookings: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM venue_likes WHERE venue_id = $1`, venueID); err != nil {
		return fmt.Errorf("failed to delete venue likes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM venues WHERE id = $1`, venueID); err != nil {
		return deleteBlockedByReference(err, venueID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	s.broadcaster.Publish(event.ResourceDeleted, event.ScopeVenues, v)

	return nil
}

// Like toggles userID's like on the venue and keeps like_count in step with
// the liker set inside one transaction.
func (s *VenueService) Like(ctx context.Context, venueID, userID string) (liked bool, likeCount int, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO venue_likes (venue_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (venue_id, user_id) DO NOTHING
	`, venueID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to insert like: %w", err)
	}

	if tag.RowsAffected() > 0 {
		liked = true
	} else {
		if _, err := tx.Exec(ctx, `DELETE FROM venue_likes WHERE venue_id = $1 AND user_id = $2`, venueID, userID); err != nil {
			return false, 0, fmt.Errorf("failed to remove like: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE venues
		SET like_count = (SELECT COUNT(*) FROM venue_likes WHERE venue_id = $1)
		WHERE id = $1
		RETURNING like_count
	`, venueID).Scan(&likeCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, 0, apperr.NotFoundf("venue %s not found", venueID)
		}
		return false, 0, fmt.Errorf("failed to update like count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("transaction commit failed: %w", err)
	}

	return liked, likeCount, nil
}

// Verify flips the verification flag. Reserved for the verifying authority.
func (s *VenueService) Verify(ctx context.Context, venueID string, verified bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE venues SET verified = $2 WHERE id = $1`, venueID, verified)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("venue %s not found", venueID)
	}
	return nil
}
