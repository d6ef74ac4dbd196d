// Package api provides the JSON HTTP API: an admin surface for fields,
// placements, and forms, and a public surface for compiled field lists
// and submissions. Authentication of end users is external; the caller
// identity arrives through an injected extractor.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/formgate/adapters/metrics"
	"github.com/artpar/formgate/app"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/artpar/formgate/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AdminTokenHeader carries the admin API token.
const AdminTokenHeader = "X-Admin-Token"

// UserHeader carries the externally authenticated user id. A reverse
// proxy doing authn is expected to set and strip it.
const UserHeader = "X-User-ID"

// Handler provides the HTTP endpoints.
type Handler struct {
	catalog        *app.CatalogService
	placements     *app.PlacementService
	sync           *app.SyncService
	validator      *app.ValidatorService
	forms          *app.FormService
	hasher         ports.Hasher
	adminTokenHash []byte
	isAdmin        func(r *http.Request) bool
	userID         func(r *http.Request) string
	listLimit      int
	logger         zerolog.Logger
	collector      *metrics.Collector
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Catalog    *app.CatalogService
	Placements *app.PlacementService
	Sync       *app.SyncService
	Validator  *app.ValidatorService
	Forms      *app.FormService

	Hasher         ports.Hasher
	AdminTokenHash []byte // nil disables the admin surface

	// IsAdmin, when set, must also approve admin requests; it lets a
	// deployment layer its own predicate on top of the token check.
	IsAdmin func(r *http.Request) bool

	// UserID extracts the authenticated user id, empty for anonymous.
	UserID func(r *http.Request) string

	ListLimit int // default page size for submission listings
	Logger    zerolog.Logger
	Collector *metrics.Collector
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	userID := deps.UserID
	if userID == nil {
		userID = func(r *http.Request) string { return r.Header.Get(UserHeader) }
	}
	listLimit := deps.ListLimit
	if listLimit <= 0 {
		listLimit = 50
	}
	return &Handler{
		catalog:        deps.Catalog,
		placements:     deps.Placements,
		sync:           deps.Sync,
		validator:      deps.Validator,
		forms:          deps.Forms,
		hasher:         deps.Hasher,
		adminTokenHash: deps.AdminTokenHash,
		isAdmin:        deps.IsAdmin,
		userID:         userID,
		listLimit:      listLimit,
		logger:         deps.Logger,
		collector:      deps.Collector,
	}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get("/healthz", h.Health)

	// Public surface.
	r.Get("/scopes/{scope}/fields", h.PublicScopeFields)
	r.Post("/scopes/{scope}/validate", h.ValidateScope)
	r.Post("/scopes/{scope}/submit", h.SubmitScope)
	r.Get("/form/{slug}", h.PublicForm)
	r.Post("/form/{slug}/submit", h.SubmitForm)

	// Admin surface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Get("/fields", h.ListFields)
		r.Post("/fields", h.CreateField)
		r.Get("/fields/{id}", h.GetField)
		r.Patch("/fields/{id}", h.PatchField)
		r.Delete("/fields/{id}", h.DeleteField)
		r.Post("/fields/{key}/sync", h.SyncField)

		r.Route("/scopes/{scope}/placements", h.placementRoutes)
		r.Route("/forms/{formID}/placements", h.placementRoutes)

		r.Get("/forms", h.ListForms)
		r.Post("/forms", h.CreateForm)
		r.Get("/forms/{formID}", h.GetForm)
		r.Patch("/forms/{formID}", h.PatchForm)
		r.Delete("/forms/{formID}", h.DeleteForm)
		r.Get("/forms/{formID}/submissions", h.ListSubmissions)
	})

	return r
}

func (h *Handler) placementRoutes(r chi.Router) {
	r.Get("/", h.ListPlacements)
	r.Post("/", h.CreatePlacement)
	r.Put("/order", h.Reorder)
	r.Patch("/{placementID}", h.UpdatePlacement)
	r.Delete("/{placementID}", h.DeletePlacement)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAdmin gates the admin surface. With no token configured the
// whole surface is absent, not forbidden.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.adminTokenHash) == 0 {
			http.NotFound(w, r)
			return
		}
		token := r.Header.Get(AdminTokenHeader)
		if token == "" || !h.hasher.Compare(h.adminTokenHash, token) {
			writeError(w, http.StatusUnauthorized, "invalid admin token", nil)
			return
		}
		if h.isAdmin != nil && !h.isAdmin(r) {
			writeError(w, http.StatusForbidden, "admin access denied", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request count and duration per route pattern.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.collector == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		status := strconv.Itoa(ww.Status())
		h.collector.RequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
		h.collector.RequestDuration.WithLabelValues(r.Method, pattern, status).Observe(time.Since(start).Seconds())
	})
}

type errorResponse struct {
	Error  string   `json:"error"`
	Issues []string `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, issues []string) {
	writeJSON(w, status, errorResponse{Error: msg, Issues: issues})
}

// fail maps the error taxonomy onto status codes. Storage errors are
// logged with detail and answered generically.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case faults.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation failed", faults.ValidationIssues(err))
	case err == faults.ErrNotFound:
		writeError(w, http.StatusNotFound, "not found", nil)
	case faults.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return faults.Validation("request body is not valid JSON")
	}
	return nil
}
