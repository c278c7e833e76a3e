package notify

import "context"

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWebhook  Channel = "webhook"
	ChannelFirebase Channel = "firebase"
)

// Message is the channel-agnostic payload of one alert.
type Message struct {
	Title string
	Body  string
	// Data carries machine-readable fields (item id, status, url) for
	// channels that support structured payloads.
	Data map[string]string
}

// Result reports one dispatch. A failed dispatch is not an error of the
// calling pipeline, it only suppresses the sent-marker.
type Result struct {
	Success bool
	Detail  string
}

// Notifier delivers a message to one recipient on one channel. The
// recipient string was validated by the caller and is channel specific.
type Notifier interface {
	Send(ctx context.Context, recipient string, msg Message) Result
}
