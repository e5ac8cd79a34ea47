package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/pkg/jwt"
	"github.com/gamebay/gamebay-api/internal/pkg/password"
)

type userRepoStub struct {
	byEmail map[string]*user.User
	byID    map[uuid.UUID]*user.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		byEmail: make(map[string]*user.User),
		byID:    make(map[uuid.UUID]*user.User),
	}
}

func (r *userRepoStub) Create(ctx context.Context, u *user.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return nil
}

func (r *userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.byID[id], nil
}

func (r *userRepoStub) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.byEmail[email], nil
}

func (r *userRepoStub) ListAdmins(ctx context.Context) ([]*user.User, error) {
	return nil, nil
}

func newTestService(repo user.Repository) *Service {
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewService(repo, jwtSvc, nil, "http://localhost:3000")
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:       "  Seller@Example.COM ",
		Password:    "s3cret-pass",
		DisplayName: "Người Bán",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "seller@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.User.Role != string(user.RoleUser) {
		t.Fatalf("expected role user, got %q", resp.User.Role)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}

	stored := repo.byEmail["seller@example.com"]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	if !password.Verify("s3cret-pass", stored.PasswordHash) {
		t.Fatal("stored hash does not verify")
	}

	login, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "seller@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatal("login returned a different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestService(repo)

	req := &RegisterRequest{Email: "dup@example.com", Password: "s3cret-pass", DisplayName: "Ai Đó"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "buyer@example.com", Password: "correct-pass", DisplayName: "Người Mua",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), &LoginRequest{
		Email: "buyer@example.com", Password: "wrong-pass",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Login(context.Background(), &LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "seller@example.com", Password: "s3cret-pass", DisplayName: "Người Bán",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tokens, err := svc.Refresh(context.Background(), resp.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected a fresh token pair")
	}

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh, got %v", err)
	}

	// an access token must not be accepted as a refresh token
	if _, err := svc.Refresh(context.Background(), resp.Tokens.AccessToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh for access token, got %v", err)
	}
}
