// Package webhook posts run notifications to a configured endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/harvest/models"
)

// EventRunCompleted is sent once a run has produced its report.
const EventRunCompleted = "run.completed"

// SignatureHeader carries "sha256=<hex>" when a secret is configured.
const SignatureHeader = "X-Harvest-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string            `json:"type"`
	RunID     string            `json:"run_id"`
	Timestamp int64             `json:"timestamp"`
	Data      *models.RunReport `json:"data"`
}

// NewRunCompleted wraps a finished report.
func NewRunCompleted(r *models.RunReport) *Event {
	return &Event{
		Type:      EventRunCompleted,
		RunID:     r.ID,
		Timestamp: r.FinishedAt.Unix(),
		Data:      r,
	}
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Notifier delivers events with retries.
type Notifier struct {
	URL    string
	Secret string

	client *http.Client
	delays []time.Duration
	log    *slog.Logger
}

// NewNotifier creates a Notifier that tries up to three times (now, +1s, +5s).
func NewNotifier(url, secret string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		URL:    url,
		Secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		delays: []time.Duration{0, time.Second, 5 * time.Second},
		log:    log,
	}
}

// Deliver sends event once.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Harvest-Webhook/1.0")
	if n.Secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(n.Secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Send delivers event, retrying on failure until the attempts run out or
// ctx is done. It returns the last delivery error.
func (n *Notifier) Send(ctx context.Context, event *Event) error {
	var err error
	for attempt, delay := range n.delays {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err = n.Deliver(ctx, event); err == nil {
			n.log.Info("webhook delivered",
				"url", n.URL,
				"event", event.Type,
				"run_id", event.RunID,
				"attempt", attempt+1,
			)
			return nil
		}
		n.log.Warn("webhook delivery failed",
			"url", n.URL,
			"event", event.Type,
			"run_id", event.RunID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	n.log.Error("webhook delivery exhausted all retries", "url", n.URL, "run_id", event.RunID)
	return err
}
