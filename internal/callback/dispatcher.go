// Package callback delivers terminal-state webhooks with bounded retries.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/goconv/internal/domain"
)

const maxBackoff = 30 * time.Second

type Dispatcher struct {
	client      *http.Client
	maxAttempts int
	log         *slog.Logger

	// backoffUnit scales the exponential delay; tests shrink it.
	backoffUnit time.Duration
}

func NewDispatcher(timeout time.Duration, maxAttempts int, logger *slog.Logger) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Dispatcher{
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		log:         logger,
		backoffUnit: time.Second,
	}
}

// Dispatch posts the payload to the webhook URL, retrying failed attempts
// with exponential backoff capped at 30s. Exhausting all attempts only
// logs: callback delivery never alters the outcome of an already
// finalized job.
func (d *Dispatcher) Dispatch(ctx context.Context, url string, payload domain.CallbackPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("callback payload not serializable", "url", url, "error", err)
		return
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.post(ctx, url, body)
		if err == nil {
			d.log.Info("callback delivered", "url", url, "job_id", payload.JobID)
			return
		}
		d.log.Warn("callback attempt failed", "url", url, "attempt", attempt, "error", err)

		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			d.log.Warn("callback delivery abandoned", "url", url, "error", ctx.Err())
			return
		case <-time.After(d.backoff(attempt)):
		}
	}

	d.log.Error("callback delivery exhausted", "url", url, "job_id", payload.JobID)
}

func (d *Dispatcher) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

// backoff returns min(2^attempt, 30) seconds scaled by the unit.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := time.Duration(1<<attempt) * d.backoffUnit
	capped := maxBackoff / time.Second * d.backoffUnit
	if delay > capped {
		delay = capped
	}
	return delay
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
