package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user-facing listing routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public browse
	r.Get("/", h.Market)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/screenshots", h.Screenshots)

	// Authenticated seller actions
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/mine", h.Mine)
		r.Post("/{id}/screenshots", h.UploadScreenshot)
	})

	return r
}

// AdminRoutes returns admin-only listing routes
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(adminMiddleware)

	r.Get("/pending", h.Pending)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
	r.Post("/{id}/sold", h.MarkSold)

	return r
}
