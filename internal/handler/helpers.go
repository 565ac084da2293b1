package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"starboard/internal/auth"
	"starboard/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// dateParam returns the date query parameter, defaulting to today in the
// given location. Dates are always "YYYY-MM-DD".
func dateParam(r *http.Request, loc *time.Location) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return time.Now().In(loc).Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", err
	}
	return date, nil
}

// actorFrom builds the engine actor for the authenticated member.
func actorFrom(r *http.Request) (engine.Actor, bool) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		return engine.Actor{}, false
	}
	return engine.Actor{MemberID: ac.MemberID, Role: ac.Role}, true
}

// writeEngineError maps state machine errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, engine.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, engine.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "task is not in the required status")
	case errors.Is(err, engine.ErrNotPicklist):
		writeError(w, http.StatusBadRequest, "task has no picklist")
	case errors.Is(err, engine.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, "unknown picklist option")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
