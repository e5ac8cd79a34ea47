package auth

import (
	"net/http"

	"github.com/gamebay/gamebay-api/internal/pkg/response"
	"github.com/gamebay/gamebay-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new account
// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if err == ErrEmailTaken {
			response.Conflict(w, "EMAIL_TAKEN", "Email already registered")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.Created(w, resp)
}

// Login exchanges credentials for tokens
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if err == ErrInvalidCredentials {
			response.Unauthorized(w, "Invalid email or password")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, resp)
}

// Refresh exchanges a refresh token for a new pair
// POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if err == ErrInvalidRefresh {
			response.Unauthorized(w, "Invalid refresh token")
		} else {
			response.InternalError(w)
		}
		return
	}

	response.OK(w, tokens)
}
