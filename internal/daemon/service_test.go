package daemon

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Clients:       4,
		Projects:      9,
		PaymentsCount: 20,
		ExpensesCount: 11,
		Revenue:       18_500,
		Expenses:      6_200,
		NetProfit:     9_800,
	}
	curr := Snapshot{
		Clients:       5,
		Projects:      9,
		PaymentsCount: 22,
		ExpensesCount: 12,
		Revenue:       21_000,
		Expenses:      6_450,
		NetProfit:     11_550,
	}

	delta := diffSnapshots(prev, curr)

	if delta.Clients != 1 {
		t.Fatalf("Clients delta = %d, want 1", delta.Clients)
	}
	if delta.Projects != 0 {
		t.Fatalf("Projects delta = %d, want 0", delta.Projects)
	}
	if delta.PaymentsCount != 2 {
		t.Fatalf("PaymentsCount delta = %d, want 2", delta.PaymentsCount)
	}
	if delta.ExpensesCount != 1 {
		t.Fatalf("ExpensesCount delta = %d, want 1", delta.ExpensesCount)
	}
	if delta.Revenue != 2500 {
		t.Fatalf("Revenue delta = %.2f, want 2500", delta.Revenue)
	}
	if delta.Expenses != 250 {
		t.Fatalf("Expenses delta = %.2f, want 250", delta.Expenses)
	}
	if delta.NetProfit != 1750 {
		t.Fatalf("NetProfit delta = %.2f, want 1750", delta.NetProfit)
	}
	if delta.isZero() {
		t.Fatal("delta.isZero() = true for a changed snapshot")
	}

	same := diffSnapshots(curr, curr)
	if !same.isZero() {
		t.Fatalf("diff of identical snapshots not zero: %+v", same)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, nil, zerolog.Nop())

	for i := 1; i <= 4; i++ {
		s.publishEvent(Event{ID: int64(i), Type: "stats_delta", Timestamp: time.Now()})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 3 || s.events[1].ID != 4 {
		t.Fatalf("events = [%d, %d], want [3, 4]", s.events[0].ID, s.events[1].ID)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(Config{Interval: time.Second}, nil, zerolog.Nop())

	if s.cfg.Interval != time.Minute {
		t.Fatalf("Interval = %v, want 1m for sub-5s configuration", s.cfg.Interval)
	}
	if s.cfg.EventsBuffer != 200 {
		t.Fatalf("EventsBuffer = %d, want 200", s.cfg.EventsBuffer)
	}
	if s.cfg.Addr != "127.0.0.1:8791" {
		t.Fatalf("Addr = %q, want default loopback addr", s.cfg.Addr)
	}
}

func TestSubscribersReceivePublishedEvents(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second}, nil, zerolog.Nop())

	ch := make(chan Event, 4)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	ev := Event{ID: 7, Type: "snapshot", Timestamp: time.Now()}
	s.publishEvent(ev)

	select {
	case got := <-ch:
		if got.ID != 7 {
			t.Fatalf("event ID = %d, want 7", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive published event")
	}
}
