package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"venueBookerAPI/internal/apperr"
	"venueBookerAPI/internal/types/booking"
)

// BookingService is the ledger for reservations. Every mutation of a booking
// row runs inside a transaction that takes the row (and for conflict-sensitive
// writes, the venue row) FOR UPDATE, so concurrent ApplyPayment/SetStatus calls
// against the same booking serialize instead of losing updates. Invariants are
// checked by internal/types/booking against the locked row, atomically with
// the write.
type BookingService struct {
	db *pgxpool.Pool
}

func NewBookingService(db *pgxpool.Pool) *BookingService {
	return &BookingService{db: db}
}

type CreateBookingRequest struct {
	VenueID string    `json:"venue_id" validate:"required"`
	Date    time.Time `json:"date" validate:"required"`
	Hours   int       `json:"hours" validate:"required,min=1,max=12"`
}

type UpdateBookingRequest struct {
	VenueID *string    `json:"venue_id,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Hours   *int       `json:"hours,omitempty"`
}

func (s *BookingService) Create(ctx context.Context, customerID string, req CreateBookingRequest) (*booking.Booking, error) {
	if err := booking.ValidateNew(req.Date, req.Hours, time.Now()); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Locking the venue row serializes concurrent creations against the same
	// venue, which makes the conflict check race-free.
	var pricePerHour float64
	err = tx.QueryRow(ctx, `SELECT price_per_hour FROM venues WHERE id = $1 FOR UPDATE`, req.VenueID).
		Scan(&pricePerHour)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFoundf("venue %s not found", req.VenueID)
		}
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}

	conflict, err := HasConflict(ctx, tx, req.VenueID, req.Date, req.Hours, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperr.Conflictf("venue %s is already booked for an overlapping window", req.VenueID)
	}

	b := &booking.Booking{
		ID:          uuid.New().String(),
		VenueID:     req.VenueID,
		CustomerID:  customerID,
		BookingDate: req.Date,
		HoursBooked: req.Hours,
		TotalPrice:  PriceFor(pricePerHour, req.Hours),
		AdvancePaid: 0,
		Status:      booking.StatusPending,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (id, venue_id, customer_id, booking_date, hours_booked, total_price, advance_paid, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`, b.ID, b.VenueID, b.CustomerID, b.BookingDate, b.HoursBooked, b.TotalPrice, b.AdvancePaid, b.Status).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return b, nil
}

func (s *BookingService) Get(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.scanBooking(ctx, s.db, bookingID, false)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) ListForCustomer(ctx context.Context, customerID string) ([]booking.Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, venue_id, customer_id, booking_date, hours_booked, total_price, advance_paid, status, created_at, updated_at
		FROM bookings
		WHERE customer_id = $1
		ORDER BY booking_date
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	// Empty slice so the JSON response is [] instead of null.
	bookings := make([]booking.Booking, 0)
	for rows.Next() {
		var b booking.Booking
		if err := rows.Scan(&b.ID, &b.VenueID, &b.CustomerID, &b.BookingDate, &b.HoursBooked,
			&b.TotalPrice, &b.AdvancePaid, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return bookings, nil
}

// UpdateDetails changes venue, date and/or hours while the booking is still
// pending. The total price is recomputed against the (possibly new) venue and
// the conflict check is re-run for the new window.
func (s *BookingService) UpdateDetails(ctx context.Context, bookingID, actorID string, req UpdateBookingRequest) (*booking.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := s.scanBooking(ctx, tx, bookingID, true)
	if err != nil {
		return nil, err
	}

	if b.CustomerID != actorID {
		return nil, apperr.Authorizationf("only the customer may modify their booking")
	}
	if err := b.CanModifyDetails(); err != nil {
		return nil, err
	}

	if req.VenueID != nil {
		b.VenueID = *req.VenueID
	}
	if req.Date != nil {
		b.BookingDate = *req.Date
	}
	if req.Hours != nil {
		b.HoursBooked = *req.Hours
	}

	if err := booking.ValidateNew(b.BookingDate, b.HoursBooked, time.Now()); err != nil {
		return nil, err
	}

	var pricePerHour float64
	err = tx.QueryRow(ctx, `SELECT price_per_hour FROM venues WHERE id = $1 FOR UPDATE`, b.VenueID).
		Scan(&pricePerHour)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFoundf("venue %s not found", b.VenueID)
		}
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}

	conflict, err := HasConflict(ctx, tx, b.VenueID, b.BookingDate, b.HoursBooked, b.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperr.Conflictf("venue %s is already booked for an overlapping window", b.VenueID)
	}

	b.TotalPrice = PriceFor(pricePerHour, b.HoursBooked)
	if b.AdvancePaid > b.TotalPrice {
		return nil, apperr.Conflictf("already paid %g exceeds the new total price %g", b.AdvancePaid, b.TotalPrice)
	}

	_, err = tx.Exec(ctx, `
		UPDATE bookings
		SET venue_id = $2, booking_date = $3, hours_booked = $4, total_price = $5, updated_at = NOW()
		WHERE id = $1
	`, b.ID, b.VenueID, b.BookingDate, b.HoursBooked, b.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return b, nil
}

// SetStatus applies a status transition on behalf of actorID. Legality and
// authorization are decided by the entity against the locked row.
func (s *BookingService) SetStatus(ctx context.Context, bookingID, actorID string, target booking.Status) (*booking.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := s.scanBooking(ctx, tx, bookingID, true)
	if err != nil {
		return nil, err
	}

	var venueOwnerID string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM venues WHERE id = $1`, b.VenueID).Scan(&venueOwnerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFoundf("venue %s not found", b.VenueID)
		}
		return nil, fmt.Errorf("failed to load venue owner: %w", err)
	}

	if err := b.Transition(target, actorID, venueOwnerID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, b.ID, b.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return b, nil
}

// Cancel is the customer-facing terminal transition.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID string) (*booking.Booking, error) {
	return s.SetStatus(ctx, bookingID, actorID, booking.StatusCancelled)
}

// ApplyPayment captures a payment toward the booking total. The entity rejects
// non-positive amounts and overshoot; nothing is written on rejection. Status
// is untouched even when this payment completes the total.
func (s *BookingService) ApplyPayment(ctx context.Context, bookingID, actorID string, amount float64) (*booking.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := s.scanBooking(ctx, tx, bookingID, true)
	if err != nil {
		return nil, err
	}

	if b.CustomerID != actorID {
		return nil, apperr.Authorizationf("only the customer may pay toward their booking")
	}

	if err := b.ApplyPayment(amount); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE bookings SET advance_paid = $2, updated_at = NOW() WHERE id = $1`, b.ID, b.AdvancePaid)
	if err != nil {
		return nil, fmt.Errorf("failed to update advance paid: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return b, nil
}

func (s *BookingService) scanBooking(ctx context.Context, q querier, bookingID string, forUpdate bool) (*booking.Booking, error) {
	query := `
		SELECT id, venue_id, customer_id, booking_date, hours_booked, total_price, advance_paid, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var b booking.Booking
	err := q.QueryRow(ctx, query, bookingID).Scan(&b.ID, &b.VenueID, &b.CustomerID, &b.BookingDate,
		&b.HoursBooked, &b.TotalPrice, &b.AdvancePaid, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFoundf("booking %s not found", bookingID)
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	return &b, nil
}
