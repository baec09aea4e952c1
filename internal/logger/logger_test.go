package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Debug().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	require.Equal(t, "http request", entry["message"])
	require.Equal(t, "req-123", entry["request_id"])
	require.Equal(t, "/api/v1/auth/me", entry["path"])
	require.EqualValues(t, http.StatusTeapot, entry["status"])
	require.EqualValues(t, len("short and stout"), entry["bytes"])
}

func TestRequestLogger_generatesRequestID(t *testing.T) {
	h := RequestLogger(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestErrorWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewErrorWriter(zerolog.New(&buf))

	n, err := w.Write([]byte("http: TLS handshake error\n"))
	require.NoError(t, err)
	require.Equal(t, len("http: TLS handshake error\n"), n)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "error", entry["level"])
	require.Equal(t, "http: TLS handshake error", entry["message"])
}
