package payout

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns seller-facing payout routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Get("/earnings", h.Earnings)
	r.Get("/mine", h.Mine)
	r.Post("/{id}/received", h.Confirm)

	return r
}

// AdminRoutes returns admin-only payout routes
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(adminMiddleware)

	r.Get("/pending", h.Pending)
	r.Post("/{id}/paid", h.MarkPaid)
	r.Post("/settle", h.Settle)

	return r
}
