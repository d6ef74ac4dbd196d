package api

import (
	"net/http"

	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/go-chi/chi/v5"
)

// ListFields returns every definition in the catalog.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	defs, err := h.catalog.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]fieldJSON, len(defs))
	for i, d := range defs {
		out[i] = toFieldJSON(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": out})
}

// GetField returns one definition by id.
func (h *Handler) GetField(w http.ResponseWriter, r *http.Request) {
	def, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldJSON(def))
}

// CreateField resolves or creates a definition by key.
func (h *Handler) CreateField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	key := ""
	if req.Key != nil {
		key = *req.Key
	}
	def, err := h.catalog.ResolveOrCreate(r.Context(), key, req.toPatch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFieldJSON(def))
}

// PatchField applies a partial update to a definition.
func (h *Handler) PatchField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	def, err := h.catalog.Patch(r.Context(), chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldJSON(def))
}

// DeleteField removes an unreferenced, non-system definition.
func (h *Handler) DeleteField(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncRequest struct {
	Scopes  []string     `json:"scopes"`
	FormIDs []string     `json:"form_ids"`
	Field   fieldRequest `json:"field"`
	// Overrides applies to every desired container; the per-container
	// maps win attribute by attribute where both are supplied.
	Overrides      overridesRequest            `json:"overrides"`
	ScopeOverrides map[string]overridesRequest `json:"scope_overrides"`
	FormOverrides  map[string]overridesRequest `json:"form_overrides"`
}

func (req syncRequest) overridesFor(c placement.Container) placement.Overrides {
	o := req.Overrides
	var per overridesRequest
	var ok bool
	if c.IsForm() {
		per, ok = req.FormOverrides[c.FormID]
	} else {
		per, ok = req.ScopeOverrides[string(c.Scope)]
	}
	if ok {
		if per.Required != nil {
			o.Required = per.Required
		}
		if per.Visible != nil {
			o.Visible = per.Visible
		}
		if per.HelpText != nil {
			o.HelpText = per.HelpText
		}
		if per.OrderIndex != nil {
			o.OrderIndex = per.OrderIndex
		}
	}
	return o.toOverrides()
}

// SyncField reconciles one field's placements against a desired set of
// scopes or forms.
func (h *Handler) SyncField(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.Scopes) > 0 && len(req.FormIDs) > 0 {
		h.fail(w, r, faults.Validation("cannot mix scopes and forms in one sync"))
		return
	}

	desired := make([]placement.Container, 0, len(req.Scopes)+len(req.FormIDs))
	for _, s := range req.Scopes {
		desired = append(desired, placement.ForScope(placement.Scope(s)))
	}
	for _, id := range req.FormIDs {
		desired = append(desired, placement.ForForm(id))
	}

	overrides := make(map[placement.Container]placement.Overrides, len(desired))
	for _, c := range desired {
		overrides[c] = req.overridesFor(c)
	}

	res, err := h.sync.Sync(r.Context(), chi.URLParam(r, "key"), desired, req.Field.toPatch(), overrides)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	added := make([]string, len(res.Added))
	for i, c := range res.Added {
		added[i] = c.String()
	}
	removed := make([]string, len(res.Removed))
	for i, c := range res.Removed {
		removed[i] = c.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"field":   toFieldJSON(res.Field),
		"added":   added,
		"removed": removed,
	})
}
