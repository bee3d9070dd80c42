package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"venueBookerAPI/internal/apperr"
)

func TestRespondWithAppErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperr.Validationf("hours out of range"), 400},
		{apperr.Authorizationf("not your booking"), 403},
		{apperr.NotFoundf("booking not found"), 404},
		{apperr.NoCandidatesf("no operator available"), 404},
		{apperr.Conflictf("venue already booked"), 409},
		{errors.New("pg: connection reset"), 500},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		respondWithAppError(rec, c.err)
		if rec.Code != c.code {
			t.Errorf("Expected status %d for %v, got %d", c.code, c.err, rec.Code)
		}
	}
}

func TestNoCandidatesCarriesCode(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithAppError(rec, apperr.NoCandidatesf("no operator with a known location is available"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if body["code"] != "no_candidates" {
		t.Errorf(`Expected code "no_candidates", got %q`, body["code"])
	}
}

func TestInternalErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithAppError(rec, errors.New("password=hunter2 leaked in error"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if body["error"] != "Server error" {
		t.Errorf("Internal details must not leak, got %q", body["error"])
	}
}
