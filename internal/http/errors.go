package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sentinel errors identifying the kind of a request failure.
var (
	ErrOriginRejected  = errors.New("origin not permitted")
	ErrMalformedBody   = errors.New("malformed request body")
	ErrPayloadTooLarge = errors.New("request body too large")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
)

// Error is a request failure with the status and client message it maps to. Err is logged but
// never sent to the client.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message, ErrBadRequest)
}

func Unauthorized(message string) *Error {
	return NewError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *Error {
	return NewError(http.StatusForbidden, message, ErrForbidden)
}

func NotFound(message string) *Error {
	return NewError(http.StatusNotFound, message, ErrNotFound)
}

func Conflict(message string) *Error {
	return NewError(http.StatusConflict, message, ErrConflict)
}

func MalformedBody(cause error) *Error {
	return NewError(http.StatusBadRequest, "Malformed request body", errors.Join(ErrMalformedBody, cause))
}

func PayloadTooLarge(limit int64) *Error {
	return NewError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Request body exceeds %d bytes", limit), ErrPayloadTooLarge)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// WriteError converts err into a JSON error response. Errors without a declared kind become
// 500 Internal Server Error and their text stays in the logs.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var herr *Error
	if !errors.As(err, &herr) {
		herr = NewError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
	}

	logger := zerolog.Ctx(r.Context())
	if herr.Status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", herr.Status).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", herr.Status).Msg("Request rejected")
	}

	WriteJSON(w, herr.Status, ErrorBody{Message: herr.Message})
}

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to encode response")
	}
}
