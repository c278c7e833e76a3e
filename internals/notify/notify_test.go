package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{
		Title: "api is DOWN",
		Body:  "connection refused",
		Data:  map[string]string{"item_id": "7", "status": "down"},
	}
}

func TestWebhookNotifierPostsJSON(t *testing.T) {
	var (
		mu   sync.Mutex
		body []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		body, _ = io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	nop := zerolog.Nop()
	n := NewWebhookNotifier(srv.Client(), &nop)

	res := n.Send(context.Background(), srv.URL, testMessage())
	require.True(t, res.Success)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "api is DOWN", payload["title"])
	assert.Equal(t, "connection refused", payload["message"])
}

func TestWebhookNotifierRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	nop := zerolog.Nop()
	n := NewWebhookNotifier(srv.Client(), &nop)

	res := n.Send(context.Background(), srv.URL, testMessage())
	assert.False(t, res.Success)
	assert.Contains(t, res.Detail, "500")
}

func TestFirebaseNotifierSendsBothMessages(t *testing.T) {
	var (
		mu       sync.Mutex
		payloads []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var p map[string]any
		_ = json.Unmarshal(raw, &p)
		mu.Lock()
		payloads = append(payloads, p)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	nop := zerolog.Nop()
	n := NewFirebaseNotifier(srv.Client(), srv.URL, "server-key", &nop)

	res := n.Send(context.Background(), "device-token-1234", testMessage())
	require.True(t, res.Success)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, payloads, 2, "one notification message plus one data message")
	assert.Contains(t, payloads[0], "notification")
	assert.NotContains(t, payloads[0], "data")
	assert.Contains(t, payloads[1], "data")
	assert.NotContains(t, payloads[1], "notification")
}

func TestFirebaseNotifierPartialFailureStillSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	nop := zerolog.Nop()
	n := NewFirebaseNotifier(srv.Client(), srv.URL, "server-key", &nop)

	res := n.Send(context.Background(), "device-token-1234", testMessage())
	assert.True(t, res.Success, "one delivered copy is enough")
}

func TestTelegramNotifierRejectsMalformedRecipient(t *testing.T) {
	nop := zerolog.Nop()
	n := NewTelegramNotifier(http.DefaultClient, &nop)

	res := n.Send(context.Background(), "no-comma", testMessage())
	assert.False(t, res.Success)
}
