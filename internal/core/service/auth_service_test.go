package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adboard/ad-directory/internal/core/domain"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = fmt.Sprintf("u%d", len(r.users)+1)
	}
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func newAuthFixture() (*AuthService, *stubUserRepo, *TokenService) {
	repo := newStubUserRepo()
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(repo, tokens, zerolog.Nop()), repo, tokens
}

func TestAuthService_Signup_DefaultRole(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), "alice", "pass123", false)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Signup_Elevated(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, err := svc.Signup(context.Background(), "bob", "pass123", true)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestAuthService_Signup_DuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Signup(context.Background(), "alice", "pass123", false); err != nil {
		t.Fatalf("first Signup returned error: %v", err)
	}
	if _, err := svc.Signup(context.Background(), "alice", "other", false); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, tokens := newAuthFixture()

	if _, err := svc.Signup(context.Background(), "alice", "pass123", true); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	token, err := svc.Login(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	subject, role, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if subject != "alice" || role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %s/%s", subject, role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Signup(context.Background(), "alice", "pass123", false); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "pass123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}
