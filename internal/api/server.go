package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/audit"
	"github.com/wareflow/ruleengine/internal/auth"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/evaluation"
	"github.com/wareflow/ruleengine/internal/rule"
	"github.com/wareflow/ruleengine/internal/snapshot"
	"github.com/wareflow/ruleengine/internal/store"
	"github.com/wareflow/ruleengine/internal/telemetry"
)

// Server wires the HTTP surface to the store, catalog, and evaluation service.
type Server struct {
	store          store.Store
	catalog        *catalog.Holder
	registry       *action.Registry
	svc            *evaluation.Service
	auth           *auth.Authenticator
	audit          *audit.Service
	rateLimitPerIP int
}

// ServerOption configures optional Server behavior.
type ServerOption func(*Server)

// WithRateLimitPerIP sets the per-IP request rate limit (requests per minute).
// Zero disables rate limiting.
func WithRateLimitPerIP(n int) ServerOption {
	return func(s *Server) { s.rateLimitPerIP = n }
}

// WithAudit attaches an audit service; without it lifecycle events are not recorded.
func WithAudit(a *audit.Service) ServerOption {
	return func(s *Server) { s.audit = a }
}

func NewServer(st store.Store, holder *catalog.Holder, registry *action.Registry, svc *evaluation.Service, authn *auth.Authenticator, opts ...ServerOption) *Server {
	s := &Server{
		store:    st,
		catalog:  holder,
		registry: registry,
		svc:      svc,
		auth:     authn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(telemetry.Middleware)
	if s.rateLimitPerIP > 0 {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// read surface
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(s.auth.RequireAuth(auth.RoleReadonly))
		r.Get("/v1/rules", s.handleListRules)
		r.Get("/v1/rules/snapshot", s.handleSnapshot)
		r.Get("/v1/rules/{ruleID}", s.handleGetRule)
		r.Get("/v1/catalog", s.handleCatalog)
		r.Post("/v1/rules/validate", s.handleValidateRule)
		r.Post("/v1/rules/{ruleID}/test", s.handleTestRule)
		r.Post("/v1/trigger", s.handleTrigger)
	})

	// snapshot change stream: long-lived, so no request timeout
	r.Group(func(r chi.Router) {
		r.Use(s.auth.RequireAuth(auth.RoleReadonly))
		r.Get("/v1/rules/stream", s.handleStreamSnapshot)
	})

	// write surface
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(s.auth.RequireAuth(auth.RoleAdmin))
		r.Put("/v1/rules/{ruleID}", s.handleUpsertRule)
		r.Delete("/v1/rules/{ruleID}", s.handleDeleteRule)
	})

	return r
}

// handleSnapshot serves the current enabled-rule snapshot with ETag support.
func (s *Server) handleSnapshot(w http.ResponseWriter, req *http.Request) {
	snap := snapshot.Load()
	if inm := req.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", snap.ETag)
	writeJSON(w, http.StatusOK, snap)
}

// RebuildSnapshot loads all rules from the store and swaps the atomic snapshot.
func (s *Server) RebuildSnapshot(ctx context.Context) error {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return err
	}
	snap := snapshot.Build(rules)
	snapshot.Update(snap)
	telemetry.SnapshotRules.Set(float64(len(snap.Rules)))
	return nil
}

func currentETag() string {
	return snapshot.Load().ETag
}

// validator builds a semantic validator against the current catalog. The
// catalog can be hot-reloaded, so this is resolved per request.
func (s *Server) validator() *rule.Validator {
	return rule.NewValidator(s.catalog.Current(), s.registry)
}
