package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

type checkoutFixture struct {
	*cartFixture
	orders   *fakeOrderRemote
	enqueuer *fakeEnqueuer
	checkout *CheckoutService
}

func newCheckoutFixture(products ...models.Product) *checkoutFixture {
	f := newCartFixture(products...)
	orders := newFakeOrderRemote()
	enqueuer := &fakeEnqueuer{}
	return &checkoutFixture{
		cartFixture: f,
		orders:      orders,
		enqueuer:    enqueuer,
		checkout:    NewCheckoutService(orders, f.catalog, f.carts, enqueuer, f.sink),
	}
}

func validDetails() CheckoutDetails {
	return CheckoutDetails{Name: "Asha Rao", Mobile: "9876543210", Address: "12 MG Road, Bengaluru"}
}

func (f *checkoutFixture) fill(t *testing.T) {
	t.Helper()
	f.open("u1")
	ctx := context.Background()
	if _, err := f.carts.AddProduct(ctx, "u1", "1", 2); err != nil {
		t.Fatalf("add 1 failed: %v", err)
	}
	if _, err := f.carts.AddProduct(ctx, "u1", "2", 1); err != nil {
		t.Fatalf("add 2 failed: %v", err)
	}
}

func TestPlaceOrderCreatesOrderAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(
		demoProduct("1", "Headphones", 1000, 10, 5),
		demoProduct("2", "Watch", 5000, 0, 1),
	)
	f.fill(t)

	result, err := f.checkout.PlaceOrder(context.Background(), "u1", validDetails())
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	order := result.Order
	if order.ID == "" || order.Status != constants.OrderStatusPending || order.ItemCount != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	// 7000 - 200 = 6800, 超过一档门槛 -> 680
	if !order.Total.Equal(decimal.NewFromInt(6120)) || !order.CartLevelDiscount.Equal(decimal.NewFromInt(680)) {
		t.Fatalf("unexpected totals: total=%s cart=%s", order.Total, order.CartLevelDiscount)
	}
	if order.UserDetails.PaymentMode != constants.PaymentModeCOD {
		t.Fatalf("expected default payment mode cod, got %s", order.UserDetails.PaymentMode)
	}
	if result.Clear.Forced || result.Warning != "" {
		t.Fatalf("expected clean clear, got %+v", result)
	}
	if f.remote.count("u1") != 0 || f.carts.Count("u1") != 0 {
		t.Fatalf("expected cart cleared")
	}
	if f.products.stock("1") != 3 || f.products.stock("2") != 0 {
		t.Fatalf("unexpected stock: 1=%d 2=%d", f.products.stock("1"), f.products.stock("2"))
	}
	if len(f.enqueuer.placed) != 1 || len(f.enqueuer.sweeps) != 0 {
		t.Fatalf("unexpected tasks: placed=%v sweeps=%v", f.enqueuer.placed, f.enqueuer.sweeps)
	}
	if got := f.sink.last(); got.message != "Order placed successfully!" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestPlaceOrderRejectsInvalidDetails(t *testing.T) {
	f := newCheckoutFixture(demoProduct("1", "Headphones", 1000, 0, 5), demoProduct("2", "Watch", 5000, 0, 1))
	f.fill(t)

	cases := []struct {
		name    string
		details CheckoutDetails
		field   string
	}{
		{"missing name", CheckoutDetails{Mobile: "9876543210", Address: "12 MG Road, Bengaluru"}, "name"},
		{"short mobile", CheckoutDetails{Name: "Asha", Mobile: "12345", Address: "12 MG Road, Bengaluru"}, "mobile"},
		{"short address", CheckoutDetails{Name: "Asha", Mobile: "9876543210", Address: "MG Road"}, "address"},
		{"bad payment", CheckoutDetails{Name: "Asha", Mobile: "9876543210", Address: "12 MG Road, Bengaluru", PaymentMode: "bitcoin"}, "paymentMode"},
	}
	for _, tc := range cases {
		_, err := f.checkout.PlaceOrder(context.Background(), "u1", tc.details)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
			t.Fatalf("%s: expected field error on %s, got %v", tc.name, tc.field, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput", tc.name)
		}
	}
	if len(f.orders.orders) != 0 {
		t.Fatalf("no order should be created")
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.open("u1")
	if _, err := f.checkout.PlaceOrder(context.Background(), "u1", validDetails()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if _, err := f.checkout.PlaceOrder(context.Background(), "nobody", validDetails()); !errors.Is(err, ErrNoActiveCart) {
		t.Fatalf("expected ErrNoActiveCart, got %v", err)
	}
}

func TestPlaceOrderStopsOnOutOfStock(t *testing.T) {
	f := newCheckoutFixture(demoProduct("1", "Headphones", 1000, 0, 5), demoProduct("2", "Watch", 5000, 0, 1))
	f.fill(t)
	if _, err := f.products.UpdateStock(context.Background(), "2", 0); err != nil {
		t.Fatalf("stock update failed: %v", err)
	}

	check, err := f.checkout.ValidateStock(context.Background(), "u1")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if check.Valid || len(check.OutOfStockItems) != 1 || check.OutOfStockItems[0] != "Watch" {
		t.Fatalf("unexpected stock check: %+v", check)
	}

	_, err = f.checkout.PlaceOrder(context.Background(), "u1", validDetails())
	var stockErr *OutOfStockError
	if !errors.As(err, &stockErr) || !errors.Is(err, ErrStockValidation) {
		t.Fatalf("expected out of stock error, got %v", err)
	}
	if len(f.orders.orders) != 0 || f.carts.Count("u1") != 3 {
		t.Fatalf("order must not be created and cart must be kept")
	}
}

func TestPlaceOrderSchedulesSweepWhenClearForced(t *testing.T) {
	f := newCheckoutFixture(demoProduct("1", "Headphones", 1000, 0, 5), demoProduct("2", "Watch", 5000, 0, 1))
	f.fill(t)
	f.remote.deleteErr = errRemoteDown

	result, err := f.checkout.PlaceOrder(context.Background(), "u1", validDetails())
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if !result.Clear.Forced || result.Warning != "Order placed but failed to clear cart." {
		t.Fatalf("expected forced clear warning, got %+v", result)
	}
	if f.carts.Count("u1") != 0 {
		t.Fatalf("local cart must be empty after forced clear")
	}
	if len(f.enqueuer.sweeps) != 1 || f.enqueuer.sweeps[0] != "u1" {
		t.Fatalf("expected sweep enqueued, got %v", f.enqueuer.sweeps)
	}
	if got := f.sink.last(); got.kind != constants.NotificationError {
		t.Fatalf("expected error notification, got %+v", got)
	}
}

func TestPlaceOrderCompletesWhenCallerCancels(t *testing.T) {
	f := newCheckoutFixture(demoProduct("1", "Headphones", 1000, 0, 5), demoProduct("2", "Watch", 5000, 0, 1))
	f.fill(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.checkout.PlaceOrder(ctx, "u1", validDetails())
	if err != nil {
		t.Fatalf("place order with a cancelled caller failed: %v", err)
	}
	if result.Clear.Forced || f.carts.Count("u1") != 0 || f.remote.count("u1") != 0 {
		t.Fatalf("expected a converged clear, got %+v remote=%d", result.Clear, f.remote.count("u1"))
	}
	if f.products.stock("1") != 3 {
		t.Fatalf("expected stock decremented to 3, got %d", f.products.stock("1"))
	}
}

func TestAddDuringCheckoutIsKeptInCart(t *testing.T) {
	f := newCheckoutFixture(demoProduct("1", "Headphones", 1000, 0, 5), demoProduct("2", "Watch", 5000, 0, 5))
	f.open("u1")
	ctx := context.Background()
	if _, err := f.carts.AddProduct(ctx, "u1", "1", 1); err != nil {
		t.Fatalf("add 1 failed: %v", err)
	}
	gate := &blockingSource{
		fakeProductSource: f.products,
		entered:           make(chan struct{}),
		release:           make(chan struct{}),
	}
	f.checkout.catalog = NewCatalogService(gate)

	placed := make(chan *PlaceOrderResult, 1)
	go func() {
		result, err := f.checkout.PlaceOrder(ctx, "u1", validDetails())
		if err != nil {
			t.Errorf("place order failed: %v", err)
		}
		placed <- result
	}()
	<-gate.entered

	added := make(chan error, 1)
	go func() {
		_, err := f.carts.AddProduct(ctx, "u1", "2", 1)
		added <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	result := <-placed
	if err := <-added; err != nil {
		t.Fatalf("concurrent add failed: %v", err)
	}
	if result == nil || len(result.Order.Items) != 1 {
		t.Fatalf("expected the order to hold only the snapshot item, got %+v", result)
	}
	snap, _ := f.carts.Snapshot("u1")
	if _, ok := snap.Find("2"); !ok || snap.Len() != 1 || f.remote.count("u1") != 1 {
		t.Fatalf("item added during checkout was neither ordered nor kept: local=%+v remote=%d", snap.Lines(), f.remote.count("u1"))
	}
}

func TestOrderQueries(t *testing.T) {
	f := newCheckoutFixture(demoProduct("1", "Headphones", 1000, 0, 5), demoProduct("2", "Watch", 5000, 0, 1))
	f.fill(t)
	ctx := context.Background()

	result, err := f.checkout.PlaceOrder(ctx, "u1", validDetails())
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	id := result.Order.ID

	orders, err := f.checkout.ListOrders(ctx, "u1", "")
	if err != nil || len(orders) != 1 {
		t.Fatalf("expected one order, got %d err=%v", len(orders), err)
	}
	if orders[0].Items[0].Product.Name != "Headphones" {
		t.Fatalf("unexpected items: %+v", orders[0].Items)
	}
	if shipped, _ := f.checkout.ListOrders(ctx, "u1", "shipped"); len(shipped) != 0 {
		t.Fatalf("status filter not applied")
	}
	if _, err := f.checkout.ListOrders(ctx, "u1", "lost"); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("expected invalid status error, got %v", err)
	}

	if _, err := f.checkout.GetOrder(ctx, "u2", id); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign order must be hidden, got %v", err)
	}
	if _, err := f.checkout.GetOrder(ctx, "u1", "999"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	updated, err := f.checkout.UpdateOrderStatus(ctx, id, "Shipped")
	if err != nil || updated.Status != constants.OrderStatusShipped {
		t.Fatalf("status update failed: %+v err=%v", updated, err)
	}
	if _, err := f.checkout.UpdateOrderStatus(ctx, id, "lost"); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestToOrderViewMalformedItems(t *testing.T) {
	if _, err := toOrderView(models.Order{ID: "1", Items: "{not json"}); !errors.Is(err, ErrOrderMalformed) {
		t.Fatalf("expected ErrOrderMalformed, got %v", err)
	}
}
