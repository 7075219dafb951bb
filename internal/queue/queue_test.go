package queue

import (
	"encoding/json"
	"testing"

	"github.com/storefront-next/internal/config"

	"github.com/shopspring/decimal"
)

func TestNewCartSweepTaskPayload(t *testing.T) {
	task, err := NewCartSweepTask(CartSweepPayload{UserID: "1"})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskCartSweep {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload CartSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.UserID != "1" {
		t.Fatalf("unexpected payload: %s err=%v", string(task.Payload()), err)
	}
}

func TestNewOrderPlacedTaskPayload(t *testing.T) {
	task, err := NewOrderPlacedTask(OrderPlacedPayload{OrderID: "9", UserID: "1", Total: "5850"})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskOrderPlaced {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload OrderPlacedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.Total != "5850" {
		t.Fatalf("unexpected payload: %s err=%v", string(task.Payload()), err)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false}, 0)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if client.sweepDelay != defaultSweepDelay {
		t.Fatalf("expected default sweep delay, got %s", client.sweepDelay)
	}
	if err := client.EnqueueCartSweep("1"); err != nil {
		t.Fatalf("disabled sweep enqueue should be noop: %v", err)
	}
	if err := client.EnqueueOrderPlaced("1", "1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("disabled order enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2, Concurrency: 3})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 3 || cfg.Queues[CriticalQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	_, defaults := BuildServerConfig(nil)
	if defaults.Concurrency != 10 {
		t.Fatalf("unexpected default concurrency: %d", defaults.Concurrency)
	}
}
