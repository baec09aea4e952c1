// Package server wires the request pipeline and the /api/v1 route groups.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/reservations/internal/config"
	httpmiddleware "github.com/wolfeidau/reservations/internal/http"
	"github.com/wolfeidau/reservations/internal/logger"
	"github.com/wolfeidau/reservations/internal/recommend"
	"github.com/wolfeidau/reservations/internal/session"
	"github.com/wolfeidau/reservations/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"
)

const (
	reservationPrefix     = "/api/v1/reservation"
	authPrefix            = "/api/v1/auth"
	recommendationsPrefix = "/api/v1/recommendations"

	healthCheckTimeout = 2 * time.Second
)

// Stores groups the persistence backends used by the route groups.
type Stores struct {
	Sessions     store.SessionStore
	Reservations store.ReservationStore
	Users        store.UserStore

	// Health lists named backends checked by /healthz.
	Health map[string]store.Pinger
}

// Server holds the route group handlers and their dependencies.
type Server struct {
	cfg     *config.Config
	log     zerolog.Logger
	stores  Stores
	catalog *recommend.Catalog
	gate    *session.Gate

	// bcryptCost is lowered in tests.
	bcryptCost int
	now        func() time.Time
}

// New creates a server for cfg.
func New(cfg *config.Config, log zerolog.Logger, stores Stores, catalog *recommend.Catalog) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		stores:  stores,
		catalog: catalog,
		gate: session.NewGate(stores.Sessions, session.Config{
			Secret:     cfg.SessionSecret,
			TTL:        cfg.SessionTTL,
			Production: cfg.IsProduction(),
			TrustProxy: cfg.TrustProxy,
		}),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Handler returns the full request pipeline: logging, panic recovery, compression, origin
// policy, CORS, session gate and body decoding in front of the router.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins()
	dev := !s.cfg.IsProduction()

	h := httpmiddleware.Chain(s.routes(),
		logger.RequestLogger(s.log),
		httpmiddleware.Recover,
		httpmiddleware.ClientIPMiddleware(s.cfg.TrustProxy),
		gzipHandler,
		httpmiddleware.OriginPolicy(origins),
		httpmiddleware.CORS(origins, &s.log, dev),
		s.gate.Middleware,
		httpmiddleware.BodyDecoder(s.cfg.BodyLimit),
	)

	if s.cfg.Tracing {
		h = otelhttp.NewHandler(h, "reservations")
	}

	return h
}

func gzipHandler(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", httpmiddleware.HandlerFunc(s.healthz))

	reservations := group{mux: mux, prefix: reservationPrefix}
	reservations.handle(http.MethodPost, "/send", s.sendReservation)
	reservations.handle(http.MethodGet, "/", s.listReservations)
	reservations.handle(http.MethodPut, "/{id}", s.updateReservation)
	reservations.handle(http.MethodDelete, "/{id}", s.deleteReservation)

	auth := group{mux: mux, prefix: authPrefix}
	auth.handle(http.MethodPost, "/register", s.register)
	auth.handle(http.MethodPost, "/login", s.login)
	auth.handle(http.MethodPost, "/logout", s.logout)
	auth.handle(http.MethodGet, "/me", s.me)

	recommendations := group{mux: mux, prefix: recommendationsPrefix}
	recommendations.handle(http.MethodGet, "/", s.listRecommendations)
	recommendations.handle(http.MethodGet, "/{id}", s.getRecommendation)

	// method mismatches land here too
	mux.Handle("/", httpmiddleware.HandlerFunc(notFound))

	return mux
}

// group registers routes below a path prefix.
type group struct {
	mux    *http.ServeMux
	prefix string
}

func (g group) handle(method, path string, h httpmiddleware.HandlerFunc) {
	if path == "/" {
		g.mux.Handle(method+" "+g.prefix, h)
		g.mux.Handle(method+" "+g.prefix+"/{$}", h)
		return
	}
	g.mux.Handle(method+" "+g.prefix+path, h)
}

func notFound(w http.ResponseWriter, r *http.Request) error {
	return httpmiddleware.NotFound("Not Found: " + r.URL.Path)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK

	for name, p := range s.stores.Health {
		if err := p.Ping(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("check", name).Msg("Health check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	httpmiddleware.WriteJSON(w, status, resp)
	return nil
}
