// Package notify delivers rule notifications over HTTP. It backs the
// send_notification action type: one signed POST per action, no engine-level
// retry (retry, if any, belongs to the external trigger per the execution
// contract).
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultTimeout bounds one delivery when the caller's context carries
	// no earlier deadline.
	defaultTimeout = 10 * time.Second

	// maxResponseBodySize limits how much of the response body we read back (1KB).
	maxResponseBodySize = 1024
)

// Notification is the payload delivered to a notification endpoint.
type Notification struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	RuleID    string         `json:"ruleId"`
	ActionID  string         `json:"actionId"`
	Message   string         `json:"message,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Sender posts signed notifications. Safe for concurrent use.
type Sender struct {
	client *http.Client
	secret string
}

// NewSender creates a Sender signing payloads with secret.
func NewSender(secret string) *Sender {
	return &Sender{
		client: &http.Client{Timeout: defaultTimeout},
		secret: secret,
	}
}

// Send delivers one notification to url. A non-2xx response or transport
// error is returned to the caller; the action executor records it as a
// failed action without aborting the remaining list.
func (s *Sender) Send(ctx context.Context, url string, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Ruleengine-Signature", ComputeHMAC(payload, s.secret))
	req.Header.Set("X-Ruleengine-Event", n.Event)
	req.Header.Set("X-Ruleengine-Delivery", uuid.New().String())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	// Drain a bounded amount so the connection can be reused.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
