package api

import (
	"net/http"

	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/domain/schema"
	"github.com/go-chi/chi/v5"
)

// PublicScopeFields returns the visible compiled fields of a built-in
// scope, in display order.
func (h *Handler) PublicScopeFields(w http.ResponseWriter, r *http.Request) {
	c := placement.ForScope(placement.Scope(chi.URLParam(r, "scope")))
	rules, err := h.validator.PublicFields(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": toRulesJSON(rules)})
}

// ValidateScope dry-runs a payload against a scope's ruleset. The
// response always carries the outcome; issues never produce a 400 here
// since the caller asked for them.
func (h *Handler) ValidateScope(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if err := decode(r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	c := placement.ForScope(placement.Scope(chi.URLParam(r, "scope")))
	res, err := h.validator.Validate(r.Context(), c, payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": res.OK, "issues": res.Issues})
}

// SubmitScope validates an authenticated scope submission and writes
// the partitioned values to the caller's profile.
func (h *Handler) SubmitScope(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	var payload schema.Payload
	if err := decode(r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	scope := placement.Scope(chi.URLParam(r, "scope"))
	if err := h.validator.SubmitScope(r.Context(), scope, userID, payload); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PublicForm returns a public form and its visible fields. Inactive or
// unpublished forms answer 404.
func (h *Handler) PublicForm(w http.ResponseWriter, r *http.Request) {
	f, rules, err := h.forms.PublicFields(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"form":   toFormJSON(f),
		"fields": toRulesJSON(rules),
	})
}

// SubmitForm handles a public form submission, authenticated or
// anonymous.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if err := decode(r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.forms.Submit(r.Context(), chi.URLParam(r, "slug"), h.userID(r), payload); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
