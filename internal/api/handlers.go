package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haneul/studydesk/internal/noteservice"
)

// Handler holds the note and category route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	notes, err := h.svc.ListNotes(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	var content []byte
	if req.Content != "" {
		content = []byte(req.Content)
	}
	id, err := h.svc.CreateNote(r.Context(), user, req.Title, content, req.FilePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id, Success: true})
}

// PatchNote handles PATCH /api/notes/{id}. The three recognized fields
// may appear in any combination; category_ids beats category_id when
// both are sent, and is_favorite is applied whether or not a
// categorization change rides in the same request. An explicit null
// category_ids clears every assignment; a body carrying no recognized
// field is a 400.
func (h *Handler) PatchNote(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var req NotePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	setMulti := req.CategoryIDs.Defined
	setLegacy := !setMulti && req.CategoryID.Defined
	setFavorite := req.IsFavorite.Defined && req.IsFavorite.Value != nil
	if !setMulti && !setLegacy && !setFavorite {
		writeJSON(w, http.StatusBadRequest, errorBody("no valid fields to update"))
		return
	}

	if setMulti {
		var ids []string
		if req.CategoryIDs.Value != nil {
			ids = *req.CategoryIDs.Value
		}
		if err := h.svc.SetNoteCategories(r.Context(), id, ids, user); err != nil {
			writeError(w, err)
			return
		}
	} else if setLegacy {
		categoryID := ""
		if req.CategoryID.Value != nil {
			categoryID = *req.CategoryID.Value
		}
		if err := h.svc.SetLegacyCategory(r.Context(), id, categoryID, user); err != nil {
			writeError(w, err)
			return
		}
	}

	if setFavorite {
		if err := h.svc.SetFavorite(r.Context(), id, *req.IsFavorite.Value, user); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// CompareNotes handles GET /api/notes/compare?id1=...&id2=...
func (h *Handler) CompareNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id1 := r.URL.Query().Get("id1")
	id2 := r.URL.Query().Get("id2")
	if id1 == "" || id2 == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id1 and id2 are required"))
		return
	}
	cmp, err := h.svc.Compare(r.Context(), id1, id2, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	cats, err := h.svc.Categories(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// CreateCategory handles POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.svc.CreateCategory(r.Context(), user, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id, Success: true})
}

// RenameCategory handles PATCH /api/categories/{id}.
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RenameCategory(r.Context(), user, chi.URLParam(r, "id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	projects, err := h.svc.Projects(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.svc.CreateProject(r.Context(), user, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id, Success: true})
}

// MoveCategory handles POST /api/categories/move.
func (h *Handler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MoveCategory(r.Context(), user, req.Index, req.Direction); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// OrderCategories handles POST /api/categories/order.
func (h *Handler) OrderCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ReorderCategories(r.Context(), user, req.From, req.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
