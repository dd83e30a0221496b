package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgeter/internal/core"
	"budgeter/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{12, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"dns", errors.New("lookup rabbit: no such host"), true},
		{"auth", errors.New("Exception (403) Reason: \"username or password not allowed\""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestSettle(t *testing.T) {
	ev := NewEntryDeletedEvent("s1", core.KindIncome, 2, core.EmptySummary(), nil)
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	logger := log.Discard()

	t.Run("handled", func(t *testing.T) {
		ack := &fakeAck{}
		var got LedgerEvent
		settle(ctx, logger, body, ack, func(e LedgerEvent) error {
			got = e
			return nil
		})
		if !ack.acked || ack.nacked {
			t.Fatalf("expected ack, got %+v", ack)
		}
		if got.ID != ev.ID || got.Entry.ID != 2 {
			t.Fatalf("unexpected event %+v", got)
		}
	})

	t.Run("handler error requeues", func(t *testing.T) {
		ack := &fakeAck{}
		settle(ctx, logger, body, ack, func(LedgerEvent) error { return errors.New("busy") })
		if !ack.nacked || !ack.requeued {
			t.Fatalf("expected requeue, got %+v", ack)
		}
	})

	t.Run("malformed is dropped", func(t *testing.T) {
		ack := &fakeAck{}
		settle(ctx, logger, []byte(`{"type":"entry.renamed"}`), ack, func(LedgerEvent) error {
			t.Fatal("handler must not run")
			return nil
		})
		if !ack.nacked || ack.requeued {
			t.Fatalf("expected drop, got %+v", ack)
		}
	})
}

func TestNewEntryAddedEvent(t *testing.T) {
	e := core.Entry{Kind: core.KindExpense, ID: 3, Description: "rent", Value: decimal.RequireFromString("900.5")}
	s := core.BudgetSummary{
		Budget:            decimal.RequireFromString("100"),
		TotalIncome:       decimal.RequireFromString("1000.5"),
		TotalExpense:      decimal.RequireFromString("900.5"),
		ExpensePercentage: 90,
	}
	ev := NewEntryAddedEvent("sess", e, s, []int{90})

	if ev.Type != EntryAdded || ev.ID == "" || ev.SessionID != "sess" {
		t.Fatalf("unexpected header %+v", ev)
	}
	if ev.Entry.Value != "900.50" || ev.Entry.Kind != "exp" {
		t.Fatalf("unexpected entry payload %+v", ev.Entry)
	}
	if ev.Summary.TotalIncome != "1000.50" || ev.Summary.ExpensePercentage != 90 {
		t.Fatalf("unexpected summary payload %+v", ev.Summary)
	}
	if got := RoutingKey("ledger.events", ev.Type); got != "ledger.events.entry.added" {
		t.Fatalf("unexpected routing key %q", got)
	}
}

func TestDeletedEventHasEmptyPercentagesNotNull(t *testing.T) {
	ev := NewEntryDeletedEvent("s", core.KindExpense, 1, core.EmptySummary(), nil)
	body, _ := ev.ToJSON()
	decoded, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Summary.Percentages == nil || decoded.Summary.ExpensePercentage != core.NoPercentage {
		t.Fatalf("unexpected summary %+v", decoded.Summary)
	}
}
