package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/cart"

	"github.com/shopspring/decimal"
)

func seedLines(n int) []cart.Line {
	lines := make([]cart.Line, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, cart.Line{
			ProductID: string(rune('a' + i)),
			UnitPrice: decimal.NewFromInt(100),
		}.WithQuantity(1))
	}
	return lines
}

func newTestReconciler(remote CartRemote) (*ClearCartReconciler, *[]time.Duration) {
	r := NewClearCartReconciler(remote, ReconcilerOptions{MaxAttempts: 3, SettleDelay: 500 * time.Millisecond, Concurrency: 4})
	var sleeps []time.Duration
	r.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return r, &sleeps
}

func TestClearConvergesWhenDeletesSucceed(t *testing.T) {
	fake := newFakeCartRemote()
	fake.seed("u1", seedLines(5)...)
	fake.seed("u2", seedLines(2)...)
	store := cart.NewStore()
	store.Replace(cart.NewSnapshot(seedLines(5)...))

	r, sleeps := newTestReconciler(fake)
	result := r.Run(context.Background(), "u1", store)

	if result.Forced || !result.Converged() || result.Attempts != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !store.Snapshot().Empty() {
		t.Fatalf("expected empty local snapshot")
	}
	if fake.count("u1") != 0 || fake.count("u2") != 2 {
		t.Fatalf("expected only u1 rows deleted, u1=%d u2=%d", fake.count("u1"), fake.count("u2"))
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 500*time.Millisecond {
		t.Fatalf("expected one settle delay, got %v", *sleeps)
	}
}

func TestClearRetriesOnEventualConsistency(t *testing.T) {
	fake := newFakeCartRemote()
	fake.seed("u1", seedLines(3)...)
	fake.resurrect = 1
	store := cart.NewStore()

	r, _ := newTestReconciler(fake)
	result := r.Run(context.Background(), "u1", store)

	if result.Forced || result.Attempts != 2 {
		t.Fatalf("expected convergence on second batch, got %+v", result)
	}
	if fake.count("u1") != 0 {
		t.Fatalf("expected remote empty")
	}
}

func TestClearForcesEmptyAfterMaxAttempts(t *testing.T) {
	fake := newFakeCartRemote()
	fake.seed("u1", seedLines(4)...)
	fake.deleteErr = errRemoteDown
	store := cart.NewStore()
	store.Replace(cart.NewSnapshot(seedLines(4)...))

	r, sleeps := newTestReconciler(fake)
	result := r.Run(context.Background(), "u1", store)

	if !result.Forced || result.Attempts != 3 || result.Remaining != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !store.Snapshot().Empty() {
		t.Fatalf("local snapshot must be forced empty")
	}
	if fake.deletes != 12 {
		t.Fatalf("expected every row attempted in each of 3 batches, got %d deletes", fake.deletes)
	}
	if fake.fetches != 4 || len(*sleeps) != 3 {
		t.Fatalf("expected 4 fetches and 3 settle delays, got fetches=%d sleeps=%d", fake.fetches, len(*sleeps))
	}
}

func TestClearEmptyRemoteTerminatesImmediately(t *testing.T) {
	fake := newFakeCartRemote()
	store := cart.NewStore()
	store.Replace(cart.NewSnapshot(seedLines(1)...))

	r, sleeps := newTestReconciler(fake)
	result := r.Run(context.Background(), "u1", store)

	if result.Forced || result.Attempts != 0 || fake.deletes != 0 || len(*sleeps) != 0 {
		t.Fatalf("unexpected result: %+v deletes=%d", result, fake.deletes)
	}
	if !store.Snapshot().Empty() {
		t.Fatalf("expected empty local snapshot")
	}
}

func TestClearFetchErrorForcesEmpty(t *testing.T) {
	fake := newFakeCartRemote()
	fake.fetchErr = errRemoteDown
	store := cart.NewStore()
	store.Replace(cart.NewSnapshot(seedLines(2)...))

	r, _ := newTestReconciler(fake)
	result := r.Run(context.Background(), "u1", store)

	if !result.Forced || !errors.Is(result.Err, errRemoteDown) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !store.Snapshot().Empty() {
		t.Fatalf("expected empty local snapshot")
	}
}

func TestClearIgnoresCallerCancellation(t *testing.T) {
	fake := newFakeCartRemote()
	fake.seed("u1", seedLines(2)...)
	store := cart.NewStore()
	store.Replace(cart.NewSnapshot(seedLines(2)...))

	r, sleeps := newTestReconciler(fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := r.Run(ctx, "u1", store)

	if result.Forced || result.Err != nil || result.Attempts != 1 {
		t.Fatalf("cancelled caller must not cut the clear short: %+v", result)
	}
	if fake.count("u1") != 0 || !store.Snapshot().Empty() {
		t.Fatalf("expected remote and local empty, remote=%d local=%d", fake.count("u1"), store.Snapshot().Len())
	}
	if len(*sleeps) != 1 {
		t.Fatalf("expected settle delay to run, got %v", *sleeps)
	}
}

func TestCartServiceClearWarnsWhenForced(t *testing.T) {
	f := newCartFixture()
	session := f.open("u1")
	f.remote.seed("u1", seedLines(2)...)
	if _, err := f.carts.Load(context.Background(), "u1"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	f.remote.deleteErr = errRemoteDown

	result, err := f.carts.Clear(context.Background(), "u1")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !result.Forced || !session.Store.Snapshot().Empty() {
		t.Fatalf("expected forced empty cart, got %+v", result)
	}
	if got := f.sink.last(); got.kind != "warning" {
		t.Fatalf("expected warning notification, got %+v", got)
	}
}
