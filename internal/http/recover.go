package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/reservations/internal/telemetry"
)

// Recover converts a panic in a handler into a 500 response so one failing request cannot take
// down the others. http.ErrAbortHandler is re-raised for net/http to handle.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
				panic(v)
			}

			telemetry.GetMetrics().PanicsRecoveredTotal.Add(r.Context(), 1)
			zerolog.Ctx(r.Context()).Error().
				Str("panic", fmt.Sprint(v)).
				Bytes("stack", debug.Stack()).
				Msg("Handler panic recovered")

			WriteError(w, r, fmt.Errorf("panic: %v", v))
		}()

		next.ServeHTTP(w, r)
	})
}
