package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"venueBookerAPI/internal/apperr"
)

var validate = validator.New()

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps the error taxonomy onto HTTP status codes.
// Unclassified errors become an opaque 500 so internals never leak.
func respondWithAppError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		respondWithError(w, http.StatusBadRequest, err.Error())
	case apperr.KindAuthorization:
		respondWithError(w, http.StatusForbidden, err.Error())
	case apperr.KindNotFound:
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperr.KindNoCandidates:
		respondWithJSON(w, http.StatusNotFound, map[string]string{
			"error": err.Error(),
			"code":  "no_candidates",
		})
	case apperr.KindConflict:
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Unhandled error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
	}
}
