package api

import (
	"net/http"
	"strconv"

	"github.com/artpar/formgate/domain/form"
	"github.com/go-chi/chi/v5"
)

// ListForms returns all forms, newest first, whatever their flags.
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]formJSON, len(forms))
	for i, f := range forms {
		out[i] = toFormJSON(f)
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": out})
}

type formCreateRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	IsPublished *bool  `json:"is_published"`
}

// CreateForm registers a new custom form. Forms start active and
// unpublished unless the request says otherwise.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req formCreateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	published := false
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	f, err := h.forms.Create(r.Context(), req.Slug, req.Title, req.Description, active, published)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFormJSON(f))
}

// GetForm returns one form by id, ungated.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.Get(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFormJSON(f))
}

type formPatchRequest struct {
	Slug        *string `json:"slug"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	IsPublished *bool   `json:"is_published"`
}

// PatchForm applies a partial update to a form.
func (h *Handler) PatchForm(w http.ResponseWriter, r *http.Request) {
	var req formPatchRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := h.forms.Patch(r.Context(), chi.URLParam(r, "formID"), form.Patch{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFormJSON(f))
}

// DeleteForm removes a form and its placements.
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.Delete(r.Context(), chi.URLParam(r, "formID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubmissions returns the most recent captured submissions.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := h.listLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	subs, err := h.forms.Submissions(r.Context(), chi.URLParam(r, "formID"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]submissionJSON, len(subs))
	for i, s := range subs {
		out[i] = toSubmissionJSON(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
}
