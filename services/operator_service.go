package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"venueBookerAPI/internal/apperr"
	"venueBookerAPI/internal/types/event"
	"venueBookerAPI/internal/types/operator"
)

type OperatorService struct {
	db          *pgxpool.Pool
	broadcaster Broadcaster
}

func NewOperatorService(db *pgxpool.Pool, broadcaster Broadcaster) *OperatorService {
	return &OperatorService{db: db, broadcaster: broadcaster}
}

func (s *OperatorService) Create(ctx context.Context, ownerID string, req operator.CreateOperatorRequest) (*operator.Operator, error) {
	if req.Name == "" {
		return nil, apperr.Validationf("operator name is required")
	}
	if req.ExperienceYears < 0 {
		return nil, apperr.Validationf("experience years cannot be negative")
	}

	o := &operator.Operator{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Name:            req.Name,
		Bio:             req.Bio,
		ExperienceYears: req.ExperienceYears,
		Phone:           req.Phone,
		Email:           req.Email,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		UnavailableDays: []time.Time{},
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO operators (id, owner_id, name, bio, experience_years, phone, email, latitude, longitude, unavailable_days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '{}', NOW())
		RETURNING created_at
	`, o.ID, o.OwnerID, o.Name, o.Bio, o.ExperienceYears, o.Phone, o.Email, o.Latitude, o.Longitude).
		Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert operator: %w", err)
	}

	s.broadcaster.Publish(event.ResourceCreated, event.ScopeOperators, o)

	return o, nil
}

func (s *OperatorService) GetAll(ctx context.Context) ([]operator.Operator, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, name, bio, experience_years, phone, email, latitude, longitude,
		       COALESCE(unavailable_days, '{}'), created_at
		FROM operators
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	defer rows.Close()

	operators := make([]operator.Operator, 0)
	for rows.Next() {
		var o operator.Operator
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Bio, &o.ExperienceYears, &o.Phone,
			&o.Email, &o.Latitude, &o.Longitude, &o.UnavailableDays, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operator row: %w", err)
		}
		operators = append(operators, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return operators, nil
}

func (s *OperatorService) Delete(ctx context.Context, operatorID, actorID string) error {
	var o operator.Operator
	err := s.db.QueryRow(ctx, `
		SELECT id, owner_id, name FROM operators WHERE id = $1
	`, operatorID).Scan(&o.ID, &o.OwnerID, &o.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFoundf("operator %s not found", operatorID)
		}
		return fmt.Errorf("failed to load operator: %w", err)
	}
	if o.OwnerID != actorID {
		return apperr.Authorizationf("only the owner may delete operator %s", operatorID)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM operators WHERE id = $1`, operatorID); err != nil {
		return fmt.Errorf("failed to delete operator: %w", err)
	}

	s.broadcaster.Publish(event.ResourceDeleted, event.ScopeOperators, &o)

	return nil
}

// BookDate reserves an operator for a whole day. The operator row is locked so
// two customers cannot take the same date; the date joins the unavailable set
// atomically with the reservation insert.
func (s *OperatorService) BookDate(ctx context.Context, operatorID, customerID string, date time.Time) (*operator.DateBooking, error) {
	day := date.Truncate(24 * time.Hour)
	today := time.Now().Truncate(24 * time.Hour)
	if !day.After(today) {
		return nil, apperr.Validationf("booking date must be in the future")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var unavailable []time.Time
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(unavailable_days, '{}') FROM operators WHERE id = $1 FOR UPDATE
	`, operatorID).Scan(&unavailable)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFoundf("operator %s not found", operatorID)
		}
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}

	for _, d := range unavailable {
		if d.Truncate(24 * time.Hour).Equal(day) {
			return nil, apperr.Conflictf("operator %s is unavailable on %s", operatorID, day.Format("2006-01-02"))
		}
	}

	b := &operator.DateBooking{
		ID:         uuid.New().String(),
		OperatorID: operatorID,
		CustomerID: customerID,
		Date:       day,
	}

	_, err = tx.Exec(ctx, `
		UPDATE operators SET unavailable_days = array_append(unavailable_days, $2::date) WHERE id = $1
	`, operatorID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to mark date unavailable: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO operator_bookings (id, operator_id, customer_id, date, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`, b.ID, b.OperatorID, b.CustomerID, b.Date).Scan(&b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert operator booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return b, nil
}
