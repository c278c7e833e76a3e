package alert

import (
	"fmt"
	"net/url"
	"strings"
	"upwatch/internals/modules/monitor"
	"upwatch/internals/notify"
	"upwatch/pkg/apperror"
)

// Recipient is a validated dispatch destination.
type Recipient struct {
	Channel notify.Channel
	Address string
}

// validateTarget turns one raw alert config row into a dispatchable
// recipient. Invalid rows fail closed: the channel is skipped, never
// raised.
func validateTarget(t monitor.AlertTarget) (Recipient, error) {
	const op = "alert.validate_target"

	switch notify.Channel(t.Type) {
	case notify.ChannelTelegram:
		token, chatID, err := ParseTelegramConfig(t.Config)
		if err != nil {
			return Recipient{}, apperror.New(apperror.InvalidAlertConfig, op, err)
		}
		return Recipient{Channel: notify.ChannelTelegram, Address: token + "," + chatID}, nil

	case notify.ChannelWebhook:
		u, err := url.Parse(strings.TrimSpace(t.Config))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Recipient{}, apperror.New(apperror.InvalidAlertConfig, op,
				fmt.Errorf("webhook config is not an http(s) url"))
		}
		return Recipient{Channel: notify.ChannelWebhook, Address: u.String()}, nil

	case notify.ChannelFirebase:
		tok := strings.TrimSpace(t.Config)
		if len(tok) < 8 {
			return Recipient{}, apperror.New(apperror.InvalidAlertConfig, op,
				fmt.Errorf("firebase device token too short"))
		}
		return Recipient{Channel: notify.ChannelFirebase, Address: tok}, nil

	default:
		return Recipient{}, apperror.New(apperror.InvalidAlertConfig, op,
			fmt.Errorf("unknown alert type %q", t.Type))
	}
}

// ParseTelegramConfig splits "<bot_token>,<chat_id>" and applies a
// conservative shape check on both parts. Bot tokens always carry a
// colon ("<numeric id>:<secret>"); chat ids are numeric, possibly
// negative for groups, or an @channel name.
func ParseTelegramConfig(raw string) (token, chatID string, err error) {
	token, chatID, ok := strings.Cut(raw, ",")
	if !ok {
		return "", "", fmt.Errorf("telegram config needs \"bot_token,chat_id\"")
	}

	token = strings.TrimSpace(token)
	chatID = strings.TrimSpace(chatID)

	if token == "" || chatID == "" {
		return "", "", fmt.Errorf("telegram config has empty bot_token or chat_id")
	}
	if !strings.Contains(token, ":") || len(token) < 10 {
		return "", "", fmt.Errorf("telegram bot_token is not plausible")
	}
	if !plausibleChatID(chatID) {
		return "", "", fmt.Errorf("telegram chat_id is not plausible")
	}

	return token, chatID, nil
}

func plausibleChatID(chatID string) bool {
	if strings.HasPrefix(chatID, "@") {
		return len(chatID) > 1
	}

	digits := strings.TrimPrefix(chatID, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
