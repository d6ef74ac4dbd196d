package api

import (
	"net/http"

	"github.com/artpar/formgate/app"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/pkg/faults"
	"github.com/go-chi/chi/v5"
)

// containerFromURL builds the container from the route: either a scope
// or a form id is present, never both.
func containerFromURL(r *http.Request) placement.Container {
	if scope := chi.URLParam(r, "scope"); scope != "" {
		return placement.ForScope(placement.Scope(scope))
	}
	return placement.ForForm(chi.URLParam(r, "formID"))
}

// ListPlacements returns a container's placements in display order.
func (h *Handler) ListPlacements(w http.ResponseWriter, r *http.Request) {
	listed, err := h.placements.List(r.Context(), containerFromURL(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]placementJSON, len(listed))
	for i, pf := range listed {
		out[i] = toPlacementJSON(pf)
	}
	writeJSON(w, http.StatusOK, map[string]any{"placements": out})
}

type placementRequest struct {
	FieldID string       `json:"field_id"`
	Key     string       `json:"key"`
	Field   fieldRequest `json:"field"`
	overridesRequest
}

// CreatePlacement places a field into the container, creating the
// definition when the key is new.
func (h *Handler) CreatePlacement(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.placements.Place(r.Context(), containerFromURL(r), req.FieldID, req.Key, req.Field.toPatch(), req.toOverrides())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pf, err := h.joined(r, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pf)
}

type placementUpdateRequest struct {
	Field fieldRequest `json:"field"`
	overridesRequest
}

// UpdatePlacement changes per-container settings and, optionally, the
// shared definition.
func (h *Handler) UpdatePlacement(w http.ResponseWriter, r *http.Request) {
	var req placementUpdateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.placements.Update(r.Context(), containerFromURL(r), chi.URLParam(r, "placementID"), req.toOverrides(), req.Field.toPatch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pf, err := h.joined(r, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

// DeletePlacement removes a placement; the definition survives.
func (h *Handler) DeletePlacement(w http.ResponseWriter, r *http.Request) {
	if err := h.placements.Remove(r.Context(), containerFromURL(r), chi.URLParam(r, "placementID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	// Items carries explicit final indexes; IDs requests a sequential
	// gap-10 rewrite. Exactly one of the two is given.
	Items []struct {
		ID         string `json:"id"`
		OrderIndex int    `json:"order_index"`
	} `json:"items"`
	IDs []string `json:"ids"`
}

// Reorder rewrites a container's order, explicit or sequential.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c := containerFromURL(r)

	switch {
	case len(req.Items) > 0 && len(req.IDs) > 0:
		h.fail(w, r, faults.Validation("provide either items or ids, not both"))
		return
	case len(req.Items) > 0:
		items := make([]app.ReorderItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = app.ReorderItem{ID: it.ID, OrderIndex: it.OrderIndex}
		}
		if err := h.placements.ReorderExplicit(r.Context(), c, items); err != nil {
			h.fail(w, r, err)
			return
		}
	case len(req.IDs) > 0:
		if err := h.placements.ReorderSequential(r.Context(), c, req.IDs); err != nil {
			h.fail(w, r, err)
			return
		}
	default:
		h.fail(w, r, faults.Validation("at least one placement is required"))
		return
	}

	h.ListPlacements(w, r)
}

// joined re-reads one placement with its definition for the response.
func (h *Handler) joined(r *http.Request, p placement.Placement) (placementJSON, error) {
	listed, err := h.placements.List(r.Context(), p.Container)
	if err != nil {
		return placementJSON{}, err
	}
	for _, pf := range listed {
		if pf.Placement.ID == p.ID {
			return toPlacementJSON(pf), nil
		}
	}
	return placementJSON{}, faults.ErrNotFound
}
