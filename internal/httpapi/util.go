package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/kenkentupal/travel-registry-system/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. The code
// field disambiguates the two 409 causes for clients that retry.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody{Error: "invalid status transition", Code: "invalid_transition"})
	case errors.Is(err, domain.ErrConflictRetryable):
		writeJSON(w, http.StatusConflict, errorBody{Error: "conflict, please retry", Code: "conflict_retryable"})
	case errors.Is(err, domain.ErrAlreadyAssigned):
		writeJSON(w, http.StatusConflict, errorBody{Error: "vehicle already has an assignment", Code: "already_assigned"})
	case errors.Is(err, domain.ErrPreconditionFailed):
		writeJSON(w, http.StatusPreconditionFailed, errorBody{Error: "vehicle is not approved"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrTooManyRequests):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
	case errors.Is(err, domain.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "service unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// clientIP is the origin identifier for the scan throttles: first
// X-Forwarded-For hop when present (the service sits behind a proxy in
// production), otherwise the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
