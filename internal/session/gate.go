package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/reservations/internal/http"
	"github.com/wolfeidau/reservations/internal/models"
	"github.com/wolfeidau/reservations/internal/store"
	"github.com/wolfeidau/reservations/internal/telemetry"
)

// CookieName is the name of the session cookie.
const CookieName = "sessionId"

// DefaultTTL is the lifetime of a session from its creation.
const DefaultTTL = 24 * time.Hour

// Config holds the gate settings derived from process configuration.
type Config struct {
	Secret     string
	TTL        time.Duration
	Production bool
	TrustProxy bool
}

// Gate attaches a session handle to every request and commits it before the response header is
// written.
type Gate struct {
	store  store.SessionStore
	signer *Signer
	cfg    Config
	now    func() time.Time
}

// NewGate creates a gate persisting sessions in st.
func NewGate(st store.SessionStore, cfg Config) *Gate {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Gate{
		store:  st,
		signer: NewSigner(cfg.Secret),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Middleware resolves the session cookie and commits the handle once per request.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := g.load(r)

		cw := &commitWriter{ResponseWriter: w, gate: g, req: r, sess: sess}
		next.ServeHTTP(cw, r.WithContext(NewContext(r.Context(), sess)))

		// handler wrote nothing
		cw.commit()
	})
}

// load returns the stored session named by the request cookie, or a new one. Cookie and store
// problems are not surfaced to the client.
func (g *Gate) load(r *http.Request) *Session {
	logger := zerolog.Ctx(r.Context())

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return newSession()
	}

	id, err := g.signer.Verify(cookie.Value)
	if err != nil {
		logger.Debug().Msg("Session cookie signature validation failed")
		return newSession()
	}

	entry, err := g.store.Get(r.Context(), id)
	switch {
	case err == nil:
		return loadedSession(entry)
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, store.ErrSessionExpired):
		logger.Debug().Err(err).Msg("Session not usable, starting a new one")
	default:
		logger.Warn().Err(err).Msg("Failed to load session, starting a new one")
	}

	return newSession()
}

// Commit persists sess according to its state and sets or clears the cookie on w. It must be
// called before the response header is written.
func (g *Gate) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	metrics := telemetry.GetMetrics()

	if sess.staleID != "" {
		if err := g.store.Delete(ctx, sess.staleID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		metrics.SessionsDestroyed.Add(ctx, 1)
		sess.staleID = ""
	}

	switch {
	case sess.isNew && sess.modified:
		if !g.canIssueCookie(r) {
			zerolog.Ctx(ctx).Warn().
				Bool("trust_proxy", g.cfg.TrustProxy).
				Str("forwarded_proto", r.Header.Get("X-Forwarded-Proto")).
				Msg("Session cookie requires a secure connection, not saving session")
			return nil
		}

		now := g.now()
		sess.entry.CreatedAt = now
		sess.entry.ExpiresAt = now.Add(g.cfg.TTL)
		sess.entry.UserAgent = r.UserAgent()
		sess.entry.IPAddress = httpmiddleware.ClientIPFromContext(r.Context())
		if sess.entry.IPAddress == "" {
			sess.entry.IPAddress = httpmiddleware.ExtractClientIP(r, g.cfg.TrustProxy)
		}

		if err := g.store.Save(ctx, sess.entry); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		http.SetCookie(w, g.cookie(sess.entry))
		metrics.SessionsCreated.Add(ctx, 1)

		sess.isNew = false
		sess.modified = false

	case sess.modified:
		if err := g.store.Save(ctx, sess.entry); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		sess.modified = false

	case sess.destroyed:
		http.SetCookie(w, g.clearCookie())
	}

	sess.destroyed = false
	return nil
}

func (g *Gate) canIssueCookie(r *http.Request) bool {
	return !g.cfg.Production || httpmiddleware.IsSecure(r, g.cfg.TrustProxy)
}

func (g *Gate) cookie(entry *models.Session) *http.Cookie {
	c := g.baseCookie()
	c.Value = g.signer.Sign(entry.ID)
	c.Expires = entry.ExpiresAt
	c.MaxAge = int(g.cfg.TTL.Seconds())
	return c
}

func (g *Gate) clearCookie() *http.Cookie {
	c := g.baseCookie()
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	return c
}

func (g *Gate) baseCookie() *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if g.cfg.Production {
		// the deployed frontend is on another site
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// commitWriter commits the session on the first write. When the commit fails the handler's
// response is replaced by a 500 and its later writes are discarded.
type commitWriter struct {
	http.ResponseWriter
	gate *Gate
	req  *http.Request
	sess *Session

	committed bool
	failed    bool
}

func (cw *commitWriter) commit() {
	if cw.committed {
		return
	}
	cw.committed = true

	ctx := cw.req.Context()
	if err := cw.gate.Commit(ctx, cw.ResponseWriter, cw.req, cw.sess); err != nil {
		cw.failed = true
		telemetry.GetMetrics().SessionCommitErrors.Add(ctx, 1)
		httpmiddleware.WriteError(cw.ResponseWriter, cw.req, err)
	}
}

func (cw *commitWriter) WriteHeader(code int) {
	cw.commit()
	if cw.failed {
		return
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.commit()
	if cw.failed {
		return len(b), nil
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *commitWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
