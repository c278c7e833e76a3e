package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

type FirebaseNotifier struct {
	client    *http.Client
	logger    *zerolog.Logger
	endpoint  string
	serverKey string
}

func NewFirebaseNotifier(client *http.Client, endpoint, serverKey string, logger *zerolog.Logger) *FirebaseNotifier {
	return &FirebaseNotifier{
		client:    client,
		logger:    logger,
		endpoint:  endpoint,
		serverKey: serverKey,
	}
}

// Send delivers every alert twice on purpose: once as a display
// notification and once as a data-only message the app handles while
// backgrounded. The two sends are independent and neither replaces the
// other.
func (n *FirebaseNotifier) Send(ctx context.Context, recipient string, msg Message) Result {
	notifErr := n.post(ctx, map[string]any{
		"to": recipient,
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
	})

	data := map[string]string{
		"title": msg.Title,
		"body":  msg.Body,
	}
	for k, v := range msg.Data {
		data[k] = v
	}
	dataErr := n.post(ctx, map[string]any{
		"to":   recipient,
		"data": data,
	})

	if notifErr != nil && dataErr != nil {
		return Result{Detail: fmt.Sprintf("notification: %v; data: %v", notifErr, dataErr)}
	}
	if notifErr != nil {
		n.logger.Warn().Err(notifErr).Msg("firebase notification message failed, data message delivered")
	}
	if dataErr != nil {
		n.logger.Warn().Err(dataErr).Msg("firebase data message failed, notification message delivered")
	}

	return Result{Success: true}
}

func (n *FirebaseNotifier) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+n.serverKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm status %d", resp.StatusCode)
	}
	return nil
}
