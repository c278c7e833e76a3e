package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const telegramAPIBase = "https://api.telegram.org"

type TelegramNotifier struct {
	client *http.Client
	logger *zerolog.Logger
}

func NewTelegramNotifier(client *http.Client, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{client: client, logger: logger}
}

// Send posts to the bot API. The recipient is the validated
// "<bot_token>,<chat_id>" pair from the alert config row.
func (n *TelegramNotifier) Send(ctx context.Context, recipient string, msg Message) Result {
	token, chatID, ok := strings.Cut(recipient, ",")
	if !ok {
		return Result{Detail: "malformed telegram recipient"}
	}
	token = strings.TrimSpace(token)
	chatID = strings.TrimSpace(chatID)

	payload, err := json.Marshal(map[string]any{
		"chat_id":    chatID,
		"text":       msg.Title + "\n" + msg.Body,
		"parse_mode": "HTML",
	})
	if err != nil {
		return Result{Detail: err.Error()}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return Result{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Result{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.logger.Warn().
			Int("status", resp.StatusCode).
			Str("chat_id", chatID).
			Msg("telegram send rejected")
		return Result{Detail: fmt.Sprintf("telegram status %d: %s", resp.StatusCode, body)}
	}

	return Result{Success: true}
}
