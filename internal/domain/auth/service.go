package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/pkg/email"
	"github.com/gamebay/gamebay-api/internal/pkg/jwt"
	"github.com/gamebay/gamebay-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	userRepo    user.Repository
	jwtService  *jwt.Service
	emailSvc    *email.Service
	frontendURL string
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service, emailSvc *email.Service, frontendURL string) *Service {
	return &Service{
		userRepo:    userRepo,
		jwtService:  jwtService,
		emailSvc:    emailSvc,
		frontendURL: frontendURL,
	}
}

// Register creates a new account and returns a token pair
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         user.RoleUser,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if err == user.ErrEmailAlreadyExists {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Str("email", u.Email).Msg("user registered")

	if s.emailSvc != nil {
		s.emailSvc.SendWelcome(u.Email, u.DisplayName, u.DisplayName, s.frontendURL+"/market")
	}

	return s.buildAuthResponse(u)
}

// Login verifies credentials and returns a token pair
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(u)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidRefresh
	}

	return s.buildTokens(u)
}

func (s *Service) buildTokens(u *user.User) (*TokenResponse, error) {
	access, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) buildAuthResponse(u *user.User) (*AuthResponse, error) {
	tokens, err := s.buildTokens(u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User: UserResponse{
			ID:          u.ID.String(),
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        string(u.Role),
		},
		Tokens: *tokens,
	}, nil
}
