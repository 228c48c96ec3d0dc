package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"primefit/internal/adapters/qrcode"
	"primefit/internal/adapters/storage"
	memberStore "primefit/internal/adapters/storage/member"
	"primefit/internal/application/orchestrators"
	"primefit/internal/application/sessionctx"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/principal"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_failed", "error", err)
	}
}

// list returns items, or an empty slice so JSON renders [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var errNoSession = errors.New("request has no session")

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps an application error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrUnauthenticated),
		errors.Is(err, orchestrators.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrForbidden),
		errors.Is(err, sessionctx.ErrNotMemberSession):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memberStore.ErrDuplicateEmail),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, booking.ErrFinalized),
		errors.Is(err, account.ErrAdminAlreadyTaken),
		errors.Is(err, orchestrators.ErrStripeNotConfigured):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, orchestrators.ErrCurrentPasswordWrong),
		errors.Is(err, qrcode.ErrInvalidCode),
		errors.Is(err, principal.ErrEmptyText),
		errors.Is(err, principal.ErrBadEncoding),
		errors.Is(err, principal.ErrChecksum),
		errors.Is(err, principal.ErrTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err as JSON. Unmapped errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		slog.Warn("auth_denied", "path", r.URL.Path, "status", status, "reason", err.Error())
	}
	body := errorBody{Error: err.Error()}
	var fe *validation.FieldErrors
	if errors.As(err, &fe) {
		body.Fields = fe.Fields
	}
	writeJSON(w, status, body)
}

// badRequest reports a malformed request body or parameter.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// pathID parses the positive integer path value name.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
