package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haneul/studydesk/internal/linkservice"
)

// LinkHandler holds the study link and group hierarchy route handlers.
type LinkHandler struct {
	svc *linkservice.Service
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *linkservice.Service) *LinkHandler {
	return &LinkHandler{svc: svc}
}

// ListLinks handles GET /api/links. With ?grouped=true the flat list
// is replaced by the two-level group/subgroup tree.
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("grouped") == "true" {
		tree, err := h.svc.GroupedLinks(r.Context(), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": tree})
		return
	}
	links, err := h.svc.Links(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

// CreateLink handles POST /api/links.
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req linkservice.LinkInput
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.svc.CreateLink(r.Context(), user, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id, Success: true})
}

// UpdateLink handles PUT /api/links/{id}.
func (h *LinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req linkservice.LinkInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.UpdateLink(r.Context(), user, chi.URLParam(r, "id"), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteLink handles DELETE /api/links/{id}.
func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteLink(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ListGroups handles GET /api/link-groups.
func (h *LinkHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	groups, err := h.svc.Groups(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// RenameGroup handles PATCH /api/link-groups/{id}.
func (h *LinkHandler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RenameGroup(r.Context(), user, chi.URLParam(r, "id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteGroup handles DELETE /api/link-groups/{id}.
func (h *LinkHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteGroup(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// MoveGroup handles POST /api/link-groups/move.
func (h *LinkHandler) MoveGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MoveGroup(r.Context(), user, req.Index, req.Direction); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// OrderGroups handles POST /api/link-groups/order.
func (h *LinkHandler) OrderGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ReorderGroups(r.Context(), user, req.From, req.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ListSubgroups handles GET /api/link-subgroups.
func (h *LinkHandler) ListSubgroups(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	subgroups, err := h.svc.Subgroups(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subgroups": subgroups})
}

// RenameSubgroup handles PATCH /api/link-subgroups/{id}.
func (h *LinkHandler) RenameSubgroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RenameSubgroup(r.Context(), user, chi.URLParam(r, "id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteSubgroup handles DELETE /api/link-subgroups/{id}.
func (h *LinkHandler) DeleteSubgroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSubgroup(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// MoveSubgroup handles POST /api/link-subgroups/move.
func (h *LinkHandler) MoveSubgroup(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req SubgroupMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MoveSubgroup(r.Context(), user, req.GroupID, req.Index, req.Direction); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// OrderSubgroups handles POST /api/link-subgroups/order.
func (h *LinkHandler) OrderSubgroups(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req SubgroupOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ReorderSubgroups(r.Context(), user, req.GroupID, req.From, req.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
