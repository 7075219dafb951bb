package cache

import (
	"context"
	"testing"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() {
		_ = Close()
	})
	return mr
}

func TestMirrorDisabledIsNoop(t *testing.T) {
	_ = Close()
	mirror := Mirror{}
	if err := mirror.SaveCart(context.Background(), "u1", cart.Snapshot{}); err != nil {
		t.Fatalf("disabled mirror should not fail: %v", err)
	}
	if _, hit, err := GetCartState(context.Background(), "u1"); hit || err != nil {
		t.Fatalf("disabled cache should miss, hit=%v err=%v", hit, err)
	}
}

func TestMirrorSavesAndDropsCart(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()
	mirror := Mirror{}

	line := cart.Line{RemoteID: "9", ProductID: "p1", UnitPrice: decimal.NewFromInt(1000)}.WithQuantity(3)
	if err := mirror.SaveCart(ctx, "u1", cart.NewSnapshot(line)); err != nil {
		t.Fatalf("save cart failed: %v", err)
	}
	if err := mirror.SaveSession(ctx, models.User{ID: "u1", Email: "user@example.com", Phone: "9876543210"}); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
	if !mr.Exists("test:cart:u1") || !mr.Exists("test:session:u1") {
		t.Fatalf("expected prefixed keys, keys=%v", mr.Keys())
	}

	state, hit, err := GetCartState(ctx, "u1")
	if err != nil || !hit {
		t.Fatalf("expected hit, err=%v", err)
	}
	if state.ItemCount != 3 || len(state.Lines) != 1 || state.Lines[0].RemoteID != "9" {
		t.Fatalf("unexpected state: %+v", state)
	}

	user, hit, err := mirror.LoadSession(ctx, "u1")
	if err != nil || !hit || user.Email != "user@example.com" || user.Phone != "9876543210" {
		t.Fatalf("unexpected mirrored user: %+v hit=%v err=%v", user, hit, err)
	}

	if err := mirror.Drop(ctx, "u1"); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if mr.Exists("test:cart:u1") || mr.Exists("test:session:u1") {
		t.Fatalf("expected keys deleted")
	}
	if _, hit, err := mirror.LoadSession(ctx, "u1"); hit || err != nil {
		t.Fatalf("dropped session should miss, hit=%v err=%v", hit, err)
	}
}
