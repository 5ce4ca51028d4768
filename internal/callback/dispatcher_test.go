package callback

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eleven-am/goconv/internal/domain"
)

func testDispatcher(maxAttempts int) *Dispatcher {
	d := NewDispatcher(time.Second, maxAttempts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.backoffUnit = time.Millisecond
	return d
}

func TestDispatchDeliversPayload(t *testing.T) {
	var got domain.CallbackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := testDispatcher(3)
	d.Dispatch(context.Background(), srv.URL, domain.CallbackPayload{
		JobID:      "job-1",
		Status:     domain.StatusCompleted,
		OutputPath: "/data/output/job-1.mp4",
		Message:    "completed",
	})

	if got.JobID != "job-1" || got.Status != domain.StatusCompleted {
		t.Fatalf("unexpected payload received: %+v", got)
	}
}

func TestDispatchRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := testDispatcher(3)
	d.Dispatch(context.Background(), srv.URL, domain.CallbackPayload{JobID: "job-2", Status: domain.StatusFailed})

	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestDispatchStopsAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := testDispatcher(3)
	// Must return without panicking or erroring regardless of outcome.
	d.Dispatch(context.Background(), srv.URL, domain.CallbackPayload{JobID: "job-3", Status: domain.StatusCompleted})

	if calls.Load() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls.Load())
	}
}

func TestDispatchSurvivesUnreachableURL(t *testing.T) {
	d := testDispatcher(2)
	d.Dispatch(context.Background(), "http://127.0.0.1:1/hook", domain.CallbackPayload{JobID: "job-4", Status: domain.StatusCompleted})
}

func TestBackoffCapped(t *testing.T) {
	d := NewDispatcher(time.Second, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if got := d.backoff(1); got != 2*time.Second {
		t.Fatalf("expected 2s for first retry, got %s", got)
	}
	if got := d.backoff(3); got != 8*time.Second {
		t.Fatalf("expected 8s, got %s", got)
	}
	if got := d.backoff(8); got != 30*time.Second {
		t.Fatalf("expected 30s cap, got %s", got)
	}
}
