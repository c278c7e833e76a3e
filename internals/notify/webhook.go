package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type WebhookNotifier struct {
	client *http.Client
	logger *zerolog.Logger
}

func NewWebhookNotifier(client *http.Client, logger *zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{client: client, logger: logger}
}

type webhookPayload struct {
	Timestamp string            `json:"timestamp"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Send posts the alert as JSON to the recipient URL. Any 2xx response
// counts as delivered.
func (n *WebhookNotifier) Send(ctx context.Context, recipient string, msg Message) Result {
	payload := webhookPayload{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Title:     msg.Title,
		Message:   msg.Body,
		Fields:    msg.Data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Detail: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient, bytes.NewReader(body))
	if err != nil {
		return Result{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Result{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", recipient).
			Msg("webhook send rejected")
		return Result{Detail: fmt.Sprintf("webhook status %d", resp.StatusCode)}
	}

	return Result{Success: true}
}
