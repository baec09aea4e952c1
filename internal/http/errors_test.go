package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "not found", err: NotFound("Not Found: /api/v1/unknown"), status: http.StatusNotFound, message: "Not Found: /api/v1/unknown"},
		{name: "wrapped kind", err: fmt.Errorf("login: %w", Unauthorized("Invalid email or password")), status: http.StatusUnauthorized, message: "Invalid email or password"},
		{name: "conflict", err: Conflict("User already registered"), status: http.StatusConflict, message: "User already registered"},
		{name: "forbidden", err: Forbidden("nope"), status: http.StatusForbidden, message: "nope"},
		{name: "payload too large", err: PayloadTooLarge(10), status: http.StatusRequestEntityTooLarge, message: "Request body exceeds 10 bytes"},
		{name: "unclassified", err: errors.New("pq: connection refused at 10.0.0.3"), status: http.StatusInternalServerError, message: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, map[string]any{"message": tt.message}, body)
		})
	}
}

func TestHandlerFunc(t *testing.T) {
	h := HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		if r.URL.Query().Get("fail") != "" {
			return BadRequest("Please Fill Full Reservation Form!")
		}
		WriteJSON(w, http.StatusCreated, map[string]bool{"success": true})
		return nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/?fail=1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"message":"Please Fill Full Reservation Form!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestError_unwrap(t *testing.T) {
	err := MalformedBody(errors.New("unexpected EOF"))
	require.ErrorIs(t, err, ErrMalformedBody)
	require.Contains(t, err.Error(), "unexpected EOF")
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write in handler")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
	require.NotContains(t, rec.Body.String(), "goroutine")
}

func TestRecover_abortHandlerIsReraised(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	require.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
