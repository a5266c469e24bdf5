package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestWebhookSink_DeliversIntent(t *testing.T) {
	var received Intent
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode intent: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	sink := NewWebhookSink(ts.URL, zap.NewNop().Sugar())

	sink.Present(Intent{
		Title:     "Time to drink water!",
		Body:      "Stay hydrated for a healthier life.",
		PlaySound: true,
	})

	if received.Title != "Time to drink water!" {
		t.Fatalf("title = %q, want reminder title", received.Title)
	}
	if !received.PlaySound {
		t.Fatalf("play_sound must be preserved")
	}
}

func TestWebhookSink_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	sink := NewWebhookSink(ts.URL, zap.NewNop().Sugar())
	sink.Present(Intent{Title: "Time to drink water!"})

	if calls.Load() < 2 {
		t.Fatalf("expected at least one retry, got %d calls", calls.Load())
	}
}

func TestWebhookSink_UnreachableEndpointDoesNotPanic(t *testing.T) {
	sink := NewWebhookSink("http://127.0.0.1:1", zap.NewNop().Sugar())

	// Отсутствие доступного приёмника не должно ронять ядро.
	sink.Present(Intent{Title: "Time to drink water!"})
}
