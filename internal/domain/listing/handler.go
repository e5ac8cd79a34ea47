package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gamebay/gamebay-api/internal/middleware"
	"github.com/gamebay/gamebay-api/internal/pkg/response"
	"github.com/gamebay/gamebay-api/internal/pkg/validator"
)

const maxScreenshotBytes = 10 << 20 // 10 MB

// Handler handles listing HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates listing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create submits a new listing
// POST /listings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.GetUserID(r.Context())

	var req CreateListingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	l, err := h.service.Create(r.Context(), sellerID, &req)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, l)
}

// Market lists approved listings
// GET /listings
func (h *Handler) Market(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	listings, total, err := h.service.ListMarket(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	pages := (total + limit - 1) / limit
	page := offset/limit + 1

	response.WithMeta(w, listings, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: offset+limit < total,
		HasPrev: offset > 0,
	})
}

// Mine lists the caller's listings
// GET /listings/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.GetUserID(r.Context())

	listings, err := h.service.ListMine(r.Context(), sellerID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, listings)
}

// Get returns one listing
// GET /listings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing id")
		return
	}

	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		if err == ErrListingNotFound {
			response.NotFound(w, "Listing not found")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, l)
}

// Pending lists the admin review queue
// GET /admin/listings/pending
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListPending(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, listings)
}

// Approve approves a pending listing
// POST /admin/listings/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing id")
		return
	}

	l, err := h.service.Approve(r.Context(), id)
	if err != nil {
		switch err {
		case ErrListingNotFound:
			response.NotFound(w, "Listing not found")
		case ErrNotPending:
			response.Conflict(w, "INVALID_STATE", "Listing is not pending review")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, l)
}

// Reject rejects a pending listing
// POST /admin/listings/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing id")
		return
	}

	var req RejectListingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	l, err := h.service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		switch err {
		case ErrListingNotFound:
			response.NotFound(w, "Listing not found")
		case ErrNotPending:
			response.Conflict(w, "INVALID_STATE", "Listing is not pending review")
		case ErrReasonLength:
			response.ValidationError(w, map[string]string{"reason": "Reason must be 2-500 characters"})
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, l)
}

// MarkSold marks an approved listing as sold
// POST /admin/listings/{id}/sold
func (h *Handler) MarkSold(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing id")
		return
	}

	l, err := h.service.MarkSold(r.Context(), id)
	if err != nil {
		switch err {
		case ErrListingNotFound:
			response.NotFound(w, "Listing not found")
		case ErrNotApproved:
			response.Conflict(w, "INVALID_STATE", "Listing is not approved")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, l)
}

// UploadScreenshot attaches a screenshot to the caller's listing
// POST /listings/{id}/screenshots
func (h *Handler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	sellerID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing id")
		return
	}

	if err := r.ParseMultipartForm(maxScreenshotBytes); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		response.BadRequest(w, "Missing screenshot file")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		response.BadRequest(w, "Unsupported image type")
		return
	}

	shot, err := h.service.AttachScreenshot(r.Context(), sellerID, id, file, mimeType)
	if err != nil {
		switch err {
		case ErrListingNotFound:
			response.NotFound(w, "Listing not found")
		case ErrNotOwner:
			response.Forbidden(w, "Not your listing")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, shot)
}

// Screenshots lists a listing's screenshots
// GET /listings/{id}/screenshots
func (h *Handler) Screenshots(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing id")
		return
	}

	shots, err := h.service.Screenshots(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, shots)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}
