package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/storefront-next/internal/models"
)

func demoUsers() *fakeUserRemote {
	return newFakeUserRemote(
		models.User{ID: "1", Name: "Demo User", Email: "user@example.com"},
		models.User{ID: "2", Name: "Admin", Email: "admin@example.com"},
	)
}

func TestLoginOpensSessionAndLoadsCart(t *testing.T) {
	f := newCartFixture(demoProduct("1", "Headphones", 1000, 0, 5))
	f.remote.seed("1", lineFromProduct(demoProduct("1", "Headphones", 1000, 0, 5), 2))
	auth := newTestAuthService(f, demoUsers())

	result, err := auth.Login(context.Background(), " User@Example.com ", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.User.ID != "1" || result.Token == "" {
		t.Fatalf("unexpected login result: %+v", result)
	}
	if result.Cart == nil || len(result.Cart.Lines) != 1 || result.Cart.Summary.ItemCount != 2 {
		t.Fatalf("expected cart loaded, got %+v", result.Cart)
	}

	claims, err := auth.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != "1" || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newCartFixture()
	auth := newTestAuthService(f, demoUsers())
	ctx := context.Background()

	if _, err := auth.Login(ctx, "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := auth.Login(ctx, "ghost@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
	if _, err := auth.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for empty input, got %v", err)
	}
	if f.sessions.Count() != 0 {
		t.Fatalf("no session should be opened")
	}
}

func TestParseJWTRejectsForeignSignature(t *testing.T) {
	f := newCartFixture()
	auth := newTestAuthService(f, demoUsers())
	token, _, err := auth.GenerateJWT(models.User{ID: "1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	other := testConfig()
	other.JWT.SecretKey = "another-secret"
	foreign := newAuthService(other, demoUsers(), f.sessions, f.carts, 4)
	if _, err := foreign.ParseJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := auth.ParseJWT("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestResumeSessionAndLogout(t *testing.T) {
	f := newCartFixture(demoProduct("1", "Headphones", 1000, 0, 5))
	f.remote.seed("1", lineFromProduct(demoProduct("1", "Headphones", 1000, 0, 5), 1))
	auth := newTestAuthService(f, demoUsers())
	ctx := context.Background()

	if err := auth.ResumeSession(ctx, &JWTClaims{UserID: "1"}); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	session, ok := f.sessions.Get("1")
	if !ok || session.Store.Snapshot().Len() != 1 {
		t.Fatalf("expected resumed session with loaded cart")
	}
	if err := auth.ResumeSession(ctx, &JWTClaims{UserID: "404"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	auth.Logout("1")
	if _, ok := f.sessions.Get("1"); ok {
		t.Fatalf("session should be closed")
	}
	if !session.Store.Snapshot().Empty() {
		t.Fatalf("store must be reset on logout")
	}
	if f.remote.count("1") != 1 {
		t.Fatalf("logout must not touch remote rows")
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	f := newCartFixture()
	auth := newTestAuthService(f, demoUsers())
	ctx := context.Background()
	str := func(s string) *string { return &s }

	user, err := auth.UpdateProfile(ctx, "1", ProfileInput{
		Name:    str("  Asha Rao "),
		Phone:   str("+919876543210"),
		Address: str("12 MG Road, Bengaluru"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if user.Name != "Asha Rao" || user.Phone != "9876543210" {
		t.Fatalf("unexpected user: %+v", user)
	}

	cases := []struct {
		input ProfileInput
		field string
	}{
		{ProfileInput{Name: str("Al")}, "name"},
		{ProfileInput{Phone: str("1234567890")}, "phone"},
		{ProfileInput{Address: str("short")}, "address"},
	}
	for _, tc := range cases {
		_, err := auth.UpdateProfile(ctx, "1", tc.input)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
			t.Fatalf("expected field error on %s, got %v", tc.field, err)
		}
	}
	if _, err := auth.UpdateProfile(ctx, "404", ProfileInput{Name: str("Someone")}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	current, err := auth.CurrentUser(ctx, "1")
	if err != nil || !strings.HasPrefix(current.Address, "12 MG") {
		t.Fatalf("unexpected current user: %+v err=%v", current, err)
	}
}
