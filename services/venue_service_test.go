package services

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"venueBookerAPI/internal/apperr"
)

func TestDeleteBlockedByReferenceMapsFKViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "bookings_venue_id_fkey"}

	err := deleteBlockedByReference(fk, "v1")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("Expected a conflict for a foreign key violation, got %v", err)
	}
}

func TestDeleteBlockedByReferencePassesOtherErrors(t *testing.T) {
	cause := errors.New("connection reset")

	err := deleteBlockedByReference(cause, "v1")
	if apperr.KindOf(err) != apperr.KindUnknown {
		t.Errorf("Unrelated errors must stay unclassified, got kind %v", apperr.KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("Original cause must stay reachable through Unwrap")
	}
}
