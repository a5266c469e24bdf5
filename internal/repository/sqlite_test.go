package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmeshcher/waterwise-system/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "waterwise.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	return store
}

func TestSQLiteStore_EventsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	recorded := time.Date(2024, time.March, 15, 10, 30, 45, 0, time.Local)
	events := []model.IntakeEvent{
		{ID: "a", AmountLiters: 0.2, RecordedAt: recorded},
		{ID: "b", AmountLiters: 0.33, RecordedAt: recorded.Add(time.Hour)},
		{ID: "c", AmountLiters: 0.5, RecordedAt: recorded.Add(2 * time.Hour)},
	}
	for _, ev := range events {
		if err := store.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("append event %s: %v", ev.ID, err)
		}
	}

	loaded, err := store.LoadEvents(ctx)
	if err != nil {
		t.Fatalf("load events: %v", err)
	}

	if len(loaded) != len(events) {
		t.Fatalf("loaded %d events, want %d", len(loaded), len(events))
	}
	for i, ev := range events {
		got := loaded[i]
		if got.ID != ev.ID {
			t.Fatalf("event %d id = %s, want %s (insertion order must survive)", i, got.ID, ev.ID)
		}
		if got.AmountLiters != ev.AmountLiters {
			t.Fatalf("event %s amount = %v, want %v", ev.ID, got.AmountLiters, ev.AmountLiters)
		}
		// Точность до секунды достаточна для round-trip.
		if !got.RecordedAt.Truncate(time.Second).Equal(ev.RecordedAt.Truncate(time.Second)) {
			t.Fatalf("event %s recorded_at = %v, want %v", ev.ID, got.RecordedAt, ev.RecordedAt)
		}
	}
}

func TestSQLiteStore_LoadEventsEmpty(t *testing.T) {
	store := newTestStore(t)

	events, err := store.LoadEvents(context.Background())
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("fresh store must have no events, got %d", len(events))
	}
}

func TestSQLiteStore_DocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveDocument(ctx, "profile", []byte(`{"name":"Ana"}`)); err != nil {
		t.Fatalf("save document: %v", err)
	}

	payload, err := store.LoadDocument(ctx, "profile")
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if string(payload) != `{"name":"Ana"}` {
		t.Fatalf("payload = %s, want stored document", payload)
	}
}

func TestSQLiteStore_SaveDocumentOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveDocument(ctx, "policy", []byte(`{"enabled":true}`)); err != nil {
		t.Fatalf("save document: %v", err)
	}
	if err := store.SaveDocument(ctx, "policy", []byte(`{"enabled":false}`)); err != nil {
		t.Fatalf("overwrite document: %v", err)
	}

	payload, err := store.LoadDocument(ctx, "policy")
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if string(payload) != `{"enabled":false}` {
		t.Fatalf("payload = %s, want latest version", payload)
	}
}

func TestSQLiteStore_MissingDocument(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadDocument(context.Background(), "profile")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("error = %v, want ErrDocumentNotFound", err)
	}
}
