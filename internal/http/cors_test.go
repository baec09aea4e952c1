package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

var testAllowList = []string{
	"http://localhost:5173",
	"https://onlinerestaurantreservation.netlify.app",
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{name: "absent origin", origin: "", allowed: true},
		{name: "exact match", origin: "http://localhost:5173", allowed: true},
		{name: "deployed frontend", origin: "https://onlinerestaurantreservation.netlify.app", allowed: true},
		{name: "unknown origin", origin: "https://evil.example", allowed: false},
		{name: "case differs", origin: "https://OnlineRestaurantReservation.netlify.app", allowed: false},
		{name: "trailing slash", origin: "http://localhost:5173/", allowed: false},
		{name: "different port", origin: "http://localhost:5174", allowed: false},
		{name: "subdomain", origin: "https://x.onlinerestaurantreservation.netlify.app", allowed: false},
		{name: "prefix only", origin: "http://localhost", allowed: false},
		{name: "literal null", origin: "null", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.origin, testAllowList)
			require.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				require.Equal(t, "origin not permitted", d.Reason)
			}
		})
	}
}

func TestDecide_emptyAllowList(t *testing.T) {
	require.True(t, Decide("", nil).Allowed)
	require.False(t, Decide("http://localhost:5173", nil).Allowed)
}

func corsPipeline(next http.Handler) http.Handler {
	return Chain(next, OriginPolicy(testAllowList), CORS(testAllowList, nil, false))
}

func TestOriginPolicy_rejectsBeforeHandler(t *testing.T) {
	reached := false
	h := corsPipeline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			r := httptest.NewRequest(method, "/api/v1/reservation/send", nil)
			r.Header.Set("Origin", "https://evil.example")
			r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, r)

			require.False(t, reached)
			require.Equal(t, http.StatusForbidden, rec.Code)
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, OriginRejectedMessage, body.Message)
		})
	}
}

func TestCORS_allowedOriginGetsCredentialedHeaders(t *testing.T) {
	h := corsPipeline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	r.Header.Set("Origin", "https://onlinerestaurantreservation.netlify.app")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://onlinerestaurantreservation.netlify.app", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_noOriginPassesWithoutHeaders(t *testing.T) {
	reached := false
	h := corsPipeline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/", nil))

	require.True(t, reached)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_preflight(t *testing.T) {
	reached := false
	h := corsPipeline(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	tests := []struct {
		name    string
		origin  string
		method  string
		headers string
		allowed bool
	}{
		{name: "put with json", method: http.MethodPut, headers: "Content-Type", allowed: true},
		{name: "deployed frontend login", origin: "https://onlinerestaurantreservation.netlify.app", method: http.MethodPost, headers: "content-type", allowed: true},
		{name: "delete with authorization", method: http.MethodDelete, headers: "Authorization", allowed: true},
		{name: "patch is not allowed", method: http.MethodPatch, headers: "Content-Type", allowed: false},
		{name: "custom header is not allowed", method: http.MethodPost, headers: "X-Custom", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodOptions, "/api/v1/reservation/123", nil)
			origin := tt.origin
			if origin == "" {
				origin = "http://localhost:5173"
			}
			r.Header.Set("Origin", origin)
			r.Header.Set("Access-Control-Request-Method", tt.method)
			r.Header.Set("Access-Control-Request-Headers", tt.headers)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, r)

			require.False(t, reached)
			require.Equal(t, http.StatusNoContent, rec.Code)
			if tt.allowed {
				require.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
				require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
				require.Equal(t, "GET,POST,PUT,DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
				require.Equal(t, "Content-Type,Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
			} else {
				require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
