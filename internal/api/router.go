package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haneul/studydesk/internal/linkservice"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/noteservice"
	"github.com/haneul/studydesk/internal/sse"
	"github.com/haneul/studydesk/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted behind
// the auth middleware. broker, if non-nil, is exposed at GET /events.
func NewRouter(
	notes *noteservice.Service,
	links *linkservice.Service,
	files storage.Provider,
	broker *sse.Broker,
	authEnabled bool,
	users map[string]models.User,
	fallback models.User,
	approver Approver,
) chi.Router {
	h := NewHandler(notes)
	lh := NewLinkHandler(links)
	fh := NewFileHandler(files)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, users, fallback, approver))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/compare", h.CompareNotes)
	r.Patch("/notes/{id}", h.PatchNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Post("/categories/move", h.MoveCategory)
	r.Post("/categories/order", h.OrderCategories)
	r.Patch("/categories/{id}", h.RenameCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	// Projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)

	// Study links.
	r.Get("/links", lh.ListLinks)
	r.Post("/links", lh.CreateLink)
	r.Put("/links/{id}", lh.UpdateLink)
	r.Delete("/links/{id}", lh.DeleteLink)

	// Link groups.
	r.Get("/link-groups", lh.ListGroups)
	r.Post("/link-groups/move", lh.MoveGroup)
	r.Post("/link-groups/order", lh.OrderGroups)
	r.Patch("/link-groups/{id}", lh.RenameGroup)
	r.Delete("/link-groups/{id}", lh.DeleteGroup)

	// Link subgroups.
	r.Get("/link-subgroups", lh.ListSubgroups)
	r.Post("/link-subgroups/move", lh.MoveSubgroup)
	r.Post("/link-subgroups/order", lh.OrderSubgroups)
	r.Patch("/link-subgroups/{id}", lh.RenameSubgroup)
	r.Delete("/link-subgroups/{id}", lh.DeleteSubgroup)

	// Note files.
	r.Post("/files", fh.Upload)
	r.Get("/files/{filename}", fh.ServeFile)

	// SSE change feed, scoped to the authenticated user.
	if broker != nil {
		r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
			user, ok := requestUser(w, r)
			if !ok {
				return
			}
			broker.ServeStream(w, r, user.ID)
		})
	}

	return r
}
