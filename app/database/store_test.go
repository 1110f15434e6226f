package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "quotes.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("Expected clean migration version 1, got %d (dirty=%v)", version, dirty)
	}

	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected second migration run to succeed, got: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected version 1 and clean state, got %d (dirty=%v)", version, dirty)
	}
}

func TestStateStore_Cursor(t *testing.T) {
	store := NewStateStore(newTestDB(t))

	cursor, err := store.GetCursor()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cursor != 0 {
		t.Errorf("Expected unset cursor 0, got %d", cursor)
	}

	if err := store.SetCursor(300); err != nil {
		t.Fatalf("Failed to set cursor: %v", err)
	}
	if err := store.SetCursor(302); err != nil {
		t.Fatalf("Failed to update cursor: %v", err)
	}

	cursor, err = store.GetCursor()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cursor != 302 {
		t.Errorf("Expected cursor 302, got %d", cursor)
	}
}

func TestDeliveryStore_StatsAndLast(t *testing.T) {
	store := NewDeliveryStore(newTestDB(t))

	last, err := store.GetLastDelivery()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if last != nil {
		t.Errorf("Expected no last delivery, got %+v", last)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	deliveries := []Delivery{
		{QuoteNumber: 301, Text: "Q1", Source: DeliverySourcePoll, ChatID: 1, DeliveredAt: base},
		{QuoteNumber: 302, Text: "Q2", Source: DeliverySourcePoll, ChatID: 1, DeliveredAt: base.Add(time.Second)},
		{QuoteNumber: 17, Text: "R", Source: DeliverySourceRandom, ChatID: 2, DeliveredAt: base.Add(2 * time.Second)},
	}
	for _, d := range deliveries {
		if err := store.RecordDelivery(d); err != nil {
			t.Fatalf("Failed to record delivery: %v", err)
		}
	}

	stats, err := store.GetDeliveryStats()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats.Total != 3 || stats.Poll != 2 || stats.Random != 1 {
		t.Errorf("Expected stats {3 2 1}, got %+v", stats)
	}

	last, err = store.GetLastDelivery()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if last == nil {
		t.Fatal("Expected last delivery")
	}
	if last.QuoteNumber != 17 || last.Source != DeliverySourceRandom || last.ChatID != 2 {
		t.Errorf("Unexpected last delivery: %+v", last)
	}
	if !last.DeliveredAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("Expected delivered_at %v, got %v", base.Add(2*time.Second), last.DeliveredAt)
	}
}

func TestDeliveryStore_GetRecentDeliveries(t *testing.T) {
	store := NewDeliveryStore(newTestDB(t))

	empty, err := store.GetRecentDeliveries(DeliverySourcePoll, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no deliveries, got %d", len(empty))
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, n := range []int{300, 301, 302} {
		d := Delivery{QuoteNumber: n, Text: "Q", Source: DeliverySourcePoll, ChatID: 1, DeliveredAt: base.Add(time.Duration(i) * time.Second)}
		if err := store.RecordDelivery(d); err != nil {
			t.Fatalf("Failed to record delivery: %v", err)
		}
	}
	if err := store.RecordDelivery(Delivery{QuoteNumber: 9, Text: "R", Source: DeliverySourceRandom, ChatID: 1, DeliveredAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("Failed to record delivery: %v", err)
	}

	recent, err := store.GetRecentDeliveries(DeliverySourcePoll, 2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(recent))
	}
	if recent[0].QuoteNumber != 302 || recent[1].QuoteNumber != 301 {
		t.Errorf("Expected newest poll deliveries 302, 301, got %d, %d", recent[0].QuoteNumber, recent[1].QuoteNumber)
	}
}
