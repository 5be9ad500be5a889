package service

import (
	"errors"
	"testing"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, nil)
}

func TestHashAndCheckPassword(t *testing.T) {
	svc := newTestAuthService()

	hash, err := svc.HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("password stored in plaintext")
	}
	if err := svc.CheckPassword(hash, "s3cret-password"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{
		ID:       42,
		Username: "amelia",
		Role:     model.RoleStudent,
	}

	signed, jti, err := svc.NewToken(user)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if jti == "" {
		t.Fatal("empty jti")
	}

	claims, err := svc.ValidateToken(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "amelia" || claims.Role != model.RoleStudent {
		t.Errorf("claims mismatch: %+v", claims)
	}
	if claims.ID != jti {
		t.Errorf("jti mismatch: %s vs %s", claims.ID, jti)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestAuthService()
	user := &model.User{ID: 1, Username: "x", Role: model.RoleAdmin}

	signed, _, err := svc.NewToken(user)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	other := NewAuthService(&config.Config{
		JWTSecret: "different-secret",
		JWTExpiry: time.Hour,
	}, nil)
	if _, err := other.ValidateToken(signed); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newTestAuthService()
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	expired := NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: -time.Minute,
	}, nil)
	user := &model.User{ID: 1, Username: "x", Role: model.RoleStudent}

	signed, _, err := expired.NewToken(user)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := expired.ValidateToken(signed); err == nil {
		t.Fatal("expired token accepted")
	}
}
