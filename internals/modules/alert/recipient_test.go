package alert

import (
	"testing"
	"upwatch/internals/modules/monitor"
	"upwatch/internals/notify"
	"upwatch/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTelegramConfig(t *testing.T) {
	token, chatID, err := ParseTelegramConfig("123456:ABC-DEF_ghi, -100123456")
	require.NoError(t, err)
	assert.Equal(t, "123456:ABC-DEF_ghi", token)
	assert.Equal(t, "-100123456", chatID)

	_, chatID, err = ParseTelegramConfig("123456:ABCDEFGH,@mychannel")
	require.NoError(t, err)
	assert.Equal(t, "@mychannel", chatID)

	bad := []string{
		"",
		"no-comma-here",
		",12345",
		"123456:ABCDEFGH,",
		"tokenwithoutcolon,12345",
		"123456:ABCDEFGH,12a45",
		"123456:ABCDEFGH,@",
		"123456:ABCDEFGH,-",
	}
	for _, raw := range bad {
		_, _, err := ParseTelegramConfig(raw)
		assert.Error(t, err, "config %q should be rejected", raw)
	}
}

func TestValidateTarget(t *testing.T) {
	rc, err := validateTarget(monitor.AlertTarget{Type: "telegram", Config: "123456:ABCDEFGH,42"})
	require.NoError(t, err)
	assert.Equal(t, notify.ChannelTelegram, rc.Channel)
	assert.Equal(t, "123456:ABCDEFGH,42", rc.Address)

	rc, err = validateTarget(monitor.AlertTarget{Type: "webhook", Config: "https://hooks.example.com/x"})
	require.NoError(t, err)
	assert.Equal(t, notify.ChannelWebhook, rc.Channel)

	_, err = validateTarget(monitor.AlertTarget{Type: "webhook", Config: "ftp://hooks.example.com/x"})
	assert.True(t, apperror.IsKind(err, apperror.InvalidAlertConfig))

	_, err = validateTarget(monitor.AlertTarget{Type: "firebase", Config: "short"})
	assert.True(t, apperror.IsKind(err, apperror.InvalidAlertConfig))

	_, err = validateTarget(monitor.AlertTarget{Type: "pager", Config: "whatever"})
	assert.True(t, apperror.IsKind(err, apperror.InvalidAlertConfig))
}
