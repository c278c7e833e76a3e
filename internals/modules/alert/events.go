package alert

import (
	"context"
	"encoding/json"
	"sync"
	"time"
	"upwatch/internals/notify"
	"upwatch/pkg/apperror"
	"upwatch/pkg/rabbitmq"

	"github.com/google/uuid"
)

// Event is the fanout record published after every delivered alert, for
// downstream consumers (audit trail, incident tooling).
type Event struct {
	ID        uuid.UUID      `json:"id"`
	ItemID    int64          `json:"item_id"`
	ItemName  string         `json:"item_name"`
	Channel   notify.Channel `json:"channel"`
	Recovery  bool           `json:"recovery"`
	Title     string         `json:"title"`
	SentAt    time.Time      `json:"sent_at"`
}

// EventPublisher fans delivered alerts out of the process. Implementations
// must be safe for concurrent use by many workers.
type EventPublisher interface {
	PublishAlertEvent(ctx context.Context, ev Event) error
}

// AMQPEventPublisher publishes alert events through a confirmed RabbitMQ
// channel. The underlying channel pairs one publish with one confirm, so
// publishes are serialized.
type AMQPEventPublisher struct {
	mu  sync.Mutex
	pub *rabbitmq.Publisher
}

func NewAMQPEventPublisher(pub *rabbitmq.Publisher) *AMQPEventPublisher {
	return &AMQPEventPublisher{pub: pub}
}

func (a *AMQPEventPublisher) PublishAlertEvent(ctx context.Context, ev Event) error {
	const op = "alert.events.publish"

	body, err := json.Marshal(ev)
	if err != nil {
		return apperror.New(apperror.DispatchFailure, op, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.pub.Publish(ctx, body); err != nil {
		return apperror.New(apperror.DispatchFailure, op, err)
	}
	return nil
}
