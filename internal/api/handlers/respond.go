package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/screener/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// screenerID reads and validates the {id} route variable
func screenerID(r *http.Request) (contracts.ScreenerID, error) {
	return contracts.ParseScreenerID(mux.Vars(r)["id"])
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var verr *contracts.ValidationError
	var derr *contracts.DataSourceError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrNoUniverse), errors.As(err, &derr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
