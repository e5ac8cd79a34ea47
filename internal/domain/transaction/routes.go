package transaction

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user-facing transaction routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Post("/purchase", h.Purchase)
	r.Post("/topup", h.TopUp)
	r.Get("/mine", h.Mine)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/sync", h.Sync)

	return r
}

// AdminRoutes returns admin-only transaction routes
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(adminMiddleware)

	r.Get("/topups", h.PendingTopUps)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/approve", h.ApproveTopUp)
	r.Post("/{id}/reject", h.Reject)

	return r
}

// WebhookRoutes returns unauthenticated gateway callback routes
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/payos", h.Webhook)
	return r
}
