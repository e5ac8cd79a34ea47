package transaction

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/domain/listing"
	"github.com/gamebay/gamebay-api/internal/domain/wallet"
	"github.com/gamebay/gamebay-api/internal/middleware"
	"github.com/gamebay/gamebay-api/internal/pkg/payos"
	"github.com/gamebay/gamebay-api/internal/pkg/response"
	"github.com/gamebay/gamebay-api/internal/pkg/validator"
)

const maxWebhookBytes = 64 << 10

// Handler handles transaction HTTP requests
type Handler struct {
	service     *Service
	rdb         *redis.Client
	checksumKey string
}

// NewHandler creates transaction handler
func NewHandler(service *Service, rdb *redis.Client, checksumKey string) *Handler {
	return &Handler{service: service, rdb: rdb, checksumKey: checksumKey}
}

// Purchase opens an order for a listing
// POST /transactions/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	buyerID := middleware.GetUserID(r.Context())

	var req CreatePurchaseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	t, err := h.service.CreatePurchase(r.Context(), buyerID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, t)
}

// TopUp opens a wallet top-up order
// POST /transactions/topup
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateTopUpRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	t, err := h.service.CreateTopUp(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, t)
}

// Get returns one transaction
// GET /transactions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if t.BuyerID != middleware.GetUserID(r.Context()) && middleware.GetRole(r.Context()) != "admin" {
		response.Forbidden(w, "Access denied")
		return
	}
	response.OK(w, t)
}

// Mine lists the caller's transactions
// GET /transactions/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	txns, err := h.service.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"transactions": txns})
}

// Sync polls the gateway for a pending order
// POST /transactions/{id}/sync
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	t, err := h.service.SyncGatewayStatus(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, t)
}

// PendingTopUps lists manual top-ups awaiting review
// GET /admin/transactions/topups
func (h *Handler) PendingTopUps(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.ListPendingTopUps(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"transactions": txns})
}

// Complete hands over a verified purchase
// POST /admin/transactions/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	t, err := h.service.CompletePurchase(r.Context(), adminID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, t)
}

// ApproveTopUp confirms a manual top-up
// POST /admin/transactions/{id}/approve
func (h *Handler) ApproveTopUp(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	t, err := h.service.ApproveTopUp(r.Context(), adminID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, t)
}

// Reject declines an order or manual top-up
// POST /admin/transactions/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	var req RejectRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if t.Type == TypeTopUp {
		t, err = h.service.RejectTopUp(r.Context(), adminID, id, req.Reason)
	} else {
		t, err = h.service.RejectPurchase(r.Context(), adminID, id, req.Reason)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, t)
}

type webhookEnvelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

// Webhook receives payment confirmations from payOS
// POST /webhooks/payos
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		response.BadRequest(w, "Unreadable body")
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		response.BadRequest(w, "Invalid webhook body")
		return
	}

	if !payos.VerifySignature(env.Data, env.Signature, h.checksumKey) {
		log.Warn().Msg("webhook signature mismatch")
		response.Unauthorized(w, "Invalid signature")
		return
	}

	var data payos.WebhookData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		response.BadRequest(w, "Invalid webhook data")
		return
	}

	// payOS retries webhooks; claim the event identity so a replay of a
	// processed event is acknowledged without touching the order again.
	// The claim is released on failure so the retry gets reprocessed.
	dedupeKey := ""
	if h.rdb != nil {
		dedupeKey = "payos:webhook:" + data.PaymentLinkID + ":" + data.Code
		set, err := h.rdb.SetNX(r.Context(), dedupeKey, 1, 24*time.Hour).Result()
		if err == nil && !set {
			response.OK(w, map[string]interface{}{"success": true})
			return
		}
	}

	payload := payos.WebhookPayload{Code: env.Code, Desc: env.Desc, Data: data}
	status := payos.StatusCancelled
	if payload.IsPaid() {
		status = payos.StatusPaid
	}

	if err := h.service.ConfirmGatewayPayment(r.Context(), data.OrderCode, status); err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			// payOS sends test events for unknown orders; acknowledge them
			response.OK(w, map[string]interface{}{"success": true})
			return
		}
		if dedupeKey != "" {
			h.rdb.Del(r.Context(), dedupeKey)
		}
		log.Error().Err(err).Int64("order_code", data.OrderCode).Msg("webhook processing failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"success": true})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, listing.ErrListingNotFound):
		response.NotFound(w, "Not found")
	case errors.Is(err, ErrListingNotAvailable):
		response.Conflict(w, "LISTING_UNAVAILABLE", "Listing is not available for purchase")
	case errors.Is(err, ErrSelfPurchase):
		response.Conflict(w, "SELF_PURCHASE", "You cannot buy your own listing")
	case errors.Is(err, ErrInvalidState):
		response.Conflict(w, "INVALID_STATE", "Transaction is not in a valid state for this operation")
	case errors.Is(err, ErrAmountOutOfRange):
		response.ValidationError(w, map[string]string{"amount": "Amount must be between 10,000 and 10,000,000"})
	case errors.Is(err, wallet.ErrInsufficientBalance):
		response.Conflict(w, "INSUFFICIENT_BALANCE", "Wallet balance is too low")
	case errors.Is(err, ErrGatewayFailure):
		response.BadGateway(w, "Payment gateway is unavailable, please try again")
	case errors.Is(err, ErrNotBuyer):
		response.Forbidden(w, "Access denied")
	default:
		response.InternalError(w)
	}
}
