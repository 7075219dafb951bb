package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/remote"

	"golang.org/x/crypto/bcrypt"
)

func TestResumeSessionFallsBackToMirroredUser(t *testing.T) {
	ctx := context.Background()
	mirror := newMemoryMirror()
	_ = mirror.SaveSession(ctx, models.User{ID: "1", Name: "Demo User", Email: "user@example.com"})

	remoteCart := newFakeCartRemote()
	remoteCart.seed("1", lineFromProduct(demoProduct("1", "Headphones", 1000, 0, 5), 2))
	sessions := NewSessionRegistry(mirror)
	reconciler := NewClearCartReconciler(remoteCart, ReconcilerOptions{MaxAttempts: 3})
	carts := NewCartService(remoteCart, NewCatalogService(newFakeProductSource()), sessions, reconciler, pricing.DefaultRules(), &recordingSink{})
	auth := newAuthService(testConfig(), unavailableUserRemote{demoUsers()}, sessions, carts, bcrypt.MinCost)

	if err := auth.ResumeSession(ctx, &JWTClaims{UserID: "1"}); err != nil {
		t.Fatalf("resume should use the mirrored user: %v", err)
	}
	if got := carts.Count("1"); got != 2 {
		t.Fatalf("cart should be reloaded from remote, count=%d", got)
	}

	err := auth.ResumeSession(ctx, &JWTClaims{UserID: "2"})
	if !errors.Is(err, remote.ErrSyncFailed) {
		t.Fatalf("mirror miss should surface the remote error, got %v", err)
	}
	if _, ok := sessions.Get("2"); ok {
		t.Fatalf("no session should be opened on failure")
	}

	auth.Logout("1")
	if _, ok, _ := mirror.LoadSession(ctx, "1"); ok {
		t.Fatalf("logout should drop the mirrored user")
	}
}

func TestSessionRegistryOpenIsIdempotent(t *testing.T) {
	sessions := NewSessionRegistry(nil)
	first, created := sessions.Open("1")
	if !created {
		t.Fatalf("first open should create the session")
	}
	second, created := sessions.Open("1")
	if created || first != second {
		t.Fatalf("second open should return the existing session")
	}
	if sessions.Count() != 1 {
		t.Fatalf("count want 1 got %d", sessions.Count())
	}
	if _, ok := sessions.LoadUser(context.Background(), "1"); ok {
		t.Fatalf("registry without mirror never restores users")
	}
	sessions.Close("1")
	sessions.Close("1")
	if sessions.Count() != 0 {
		t.Fatalf("count want 0 got %d", sessions.Count())
	}
}
