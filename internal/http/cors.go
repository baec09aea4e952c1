package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/reservations/internal/telemetry"
)

// OriginRejectedMessage is the client facing message for a refused origin.
const OriginRejectedMessage = "CORS policy: This origin is not allowed."

var (
	// AllowedMethods are exposed to every allowed origin.
	AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	// AllowedHeaders are the request headers a cross-origin caller may send.
	AllowedHeaders = []string{"Content-Type", "Authorization"}
)

// Decision is the outcome of the origin policy for one request.
type Decision struct {
	Allowed bool
	Reason  string
}

// Decide applies the origin policy. An empty origin means the header was absent (curl, mobile
// apps, same-origin requests) and is allowed. Otherwise the origin must be an exact,
// case-sensitive member of allowList.
func Decide(origin string, allowList []string) Decision {
	if origin == "" {
		return Decision{Allowed: true}
	}
	if slices.Contains(allowList, origin) {
		return Decision{Allowed: true}
	}
	return Decision{Reason: ErrOriginRejected.Error()}
}

// OriginPolicy rejects requests whose Origin is not allowed before they reach any route.
func OriginPolicy(allowList []string) func(http.Handler) http.Handler {
	allowList = slices.Clone(allowList)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if d := Decide(origin, allowList); !d.Allowed {
				telemetry.GetMetrics().OriginRejectedTotal.Add(r.Context(), 1)
				zerolog.Ctx(r.Context()).Warn().Str("origin", origin).Str("reason", d.Reason).Msg("Origin rejected")
				WriteError(w, r, NewError(http.StatusForbidden, OriginRejectedMessage, ErrOriginRejected))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORS adds the response headers for allowed origins and answers preflight requests. It relies
// on OriginPolicy having already refused unknown origins.
func CORS(allowList []string, logger *zerolog.Logger, debug bool) func(http.Handler) http.Handler {
	allowList = slices.Clone(allowList)

	opts := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return Decide(origin, allowList).Allowed
		},
		AllowedMethods:       AllowedMethods,
		AllowedHeaders:       AllowedHeaders,
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusNoContent,
	}
	// rs/cors logs whenever a Logger is set.
	if debug && logger != nil {
		opts.Logger = logger
	}

	handler := cors.New(opts).Handler
	return func(next http.Handler) http.Handler {
		return fixedPreflightHeaders(handler(next))
	}
}

// fixedPreflightHeaders replaces the method and header lists rs/cors echoes from an accepted
// preflight with the full allow lists.
func fixedPreflightHeaders(next http.Handler) http.Handler {
	methods := strings.Join(AllowedMethods, ",")
	headers := strings.Join(AllowedHeaders, ",")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(&preflightWriter{ResponseWriter: w, methods: methods, headers: headers}, r)
	})
}

type preflightWriter struct {
	http.ResponseWriter
	methods string
	headers string
	written bool
}

func (pw *preflightWriter) WriteHeader(code int) {
	if !pw.written {
		pw.written = true
		h := pw.Header()
		if h.Get("Access-Control-Allow-Origin") != "" {
			h.Set("Access-Control-Allow-Methods", pw.methods)
			h.Set("Access-Control-Allow-Headers", pw.headers)
		}
	}
	pw.ResponseWriter.WriteHeader(code)
}

func (pw *preflightWriter) Write(b []byte) (int, error) {
	if !pw.written {
		pw.WriteHeader(http.StatusOK)
	}
	return pw.ResponseWriter.Write(b)
}

func (pw *preflightWriter) Unwrap() http.ResponseWriter {
	return pw.ResponseWriter
}
