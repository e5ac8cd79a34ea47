package payout

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gamebay/gamebay-api/internal/middleware"
	"github.com/gamebay/gamebay-api/internal/pkg/response"
)

var timeNow = time.Now

// Handler handles payout HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payout handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Earnings returns the caller's unpaid earnings
// GET /payouts/earnings
func (h *Handler) Earnings(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.GetUserID(r.Context())

	earnings, err := h.service.UnpaidEarnings(r.Context(), sellerID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"unpaid_earnings": earnings})
}

// Mine lists the caller's payouts
// GET /payouts/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.GetUserID(r.Context())

	payouts, err := h.service.ListMine(r.Context(), sellerID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"payouts": payouts})
}

// Confirm marks a payout as received by the seller
// POST /payouts/{id}/received
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid payout ID")
		return
	}

	p, err := h.service.MarkReceived(r.Context(), sellerID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Pending lists payouts awaiting bank transfer
// GET /admin/payouts/pending
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.service.ListByStatus(r.Context(), StatusNeedsPayment)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"payouts": payouts})
}

// MarkPaid records the bank transfer for a payout
// POST /admin/payouts/{id}/paid
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid payout ID")
		return
	}

	p, err := h.service.MarkPaid(r.Context(), adminID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Settle triggers a settlement run for the current period
// POST /admin/payouts/settle
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.RunMonthlySettlement(r.Context(), timeNow())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"created": created})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPayoutNotFound):
		response.NotFound(w, "Payout not found")
	case errors.Is(err, ErrInvalidState):
		response.Conflict(w, "INVALID_STATE", "Payout is not in a valid state for this operation")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, "Access denied")
	default:
		response.InternalError(w)
	}
}
