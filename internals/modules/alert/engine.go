package alert

import (
	"context"
	"fmt"
	"time"
	"upwatch/config"
	"upwatch/internals/modules/checker"
	"upwatch/internals/modules/monitor"
	"upwatch/internals/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the slice of the repository the engine needs.
type Store interface {
	GetUserSettings(ctx context.Context, userID int64) (*monitor.UserSettings, error)
	ListAlertTargets(ctx context.Context, itemID int64) ([]monitor.AlertTarget, error)
}

// Engine decides, per channel and per moment, whether a finished check
// may raise an alert, and dispatches through the configured notifiers.
// The engine itself is stateless across items; all mutable alerting
// memory lives in the *State owned by the calling worker.
type Engine struct {
	store     Store
	notifiers map[notify.Channel]notify.Notifier
	channels  map[notify.Channel]config.ChannelConfig
	events    EventPublisher // nil when event fanout is not configured

	threshold        int
	extendedInterval time.Duration
	fastCutoff       time.Duration
	adminDomain      string

	now    func() time.Time
	logger *zerolog.Logger
}

func NewEngine(
	cfg *config.AlertingConfig,
	store Store,
	notifiers map[notify.Channel]notify.Notifier,
	events EventPublisher,
	logger *zerolog.Logger,
) *Engine {

	return &Engine{
		store:     store,
		notifiers: notifiers,
		channels: map[notify.Channel]config.ChannelConfig{
			notify.ChannelTelegram: cfg.Telegram,
			notify.ChannelWebhook:  cfg.Webhook,
			notify.ChannelFirebase: cfg.Firebase,
		},
		events:           events,
		threshold:        cfg.ConsecutiveErrorThreshold,
		extendedInterval: cfg.ExtendedAlertInterval,
		fastCutoff:       cfg.FastIntervalCutoff,
		adminDomain:      cfg.AdminDomain,
		now:              time.Now,
		logger:           logger,
	}
}

// Process is called by a worker once per completed check, always from
// the same goroutine for a given item.
func (e *Engine) Process(ctx context.Context, item *monitor.Item, res checker.Result, st *State) {
	now := e.now()

	if res.Success {
		if st.ConsecutiveErrors == 0 {
			return
		}

		// Recovery: the streak ends here regardless of suppression.
		streak := st.ConsecutiveErrors
		st.ConsecutiveErrors = 0

		if allowed, reason := e.alertsAllowed(ctx, item, now); !allowed {
			e.logger.Debug().
				Int64("item_id", item.ID).
				Str("reason", reason).
				Msg("recovery notification suppressed")
			return
		}

		// Recovery bypasses the per-channel and extended throttles.
		e.dispatch(ctx, item, e.recoveryMessage(item, streak, res), st, now, true)
		return
	}

	st.ConsecutiveErrors++

	if allowed, reason := e.alertsAllowed(ctx, item, now); !allowed {
		e.logger.Debug().
			Int64("item_id", item.ID).
			Int("consecutive_errors", st.ConsecutiveErrors).
			Str("reason", reason).
			Msg("alert suppressed")
		return
	}

	if e.extendedThrottled(item, st, now) {
		e.logger.Debug().
			Int64("item_id", item.ID).
			Int("consecutive_errors", st.ConsecutiveErrors).
			Msg("alert suppressed by extended throttle")
		return
	}

	e.dispatch(ctx, item, e.failureMessage(item, res, st.ConsecutiveErrors), st, now, false)
}

// alertsAllowed applies the user-level suppression rules. They are
// computed once per decision and gate every channel, recovery included.
func (e *Engine) alertsAllowed(ctx context.Context, item *monitor.Item, now time.Time) (bool, string) {
	settings, err := e.store.GetUserSettings(ctx, item.UserID)
	if err != nil {
		// Fail open: a settings read failure must not mute alerts.
		e.logger.Error().Err(err).
			Int64("item_id", item.ID).
			Int64("user_id", item.UserID).
			Msg("failed to load user settings, alerting anyway")
		settings = nil
	}

	if settings != nil {
		if settings.GlobalStopUntil != nil && now.Before(*settings.GlobalStopUntil) {
			return false, "global stop active"
		}
		if !withinAlertWindow(settings.AlertTimeRanges, localClock(now, settings.TimezoneOffset)) {
			return false, "outside alert time window"
		}
	}

	if item.StopAlertsUntil != nil && now.Before(*item.StopAlertsUntil) {
		return false, "item alerts stopped"
	}

	return true, ""
}

func (e *Engine) extendedThrottled(item *monitor.Item, st *State, now time.Time) bool {
	if e.extendedInterval <= 0 {
		return false
	}
	if item.CheckIntervalSeconds <= 0 ||
		time.Duration(item.CheckIntervalSeconds)*time.Second >= e.fastCutoff {
		return false
	}
	if st.ConsecutiveErrors <= e.threshold {
		return false
	}

	return !st.LastAlertSentAt.IsZero() && now.Sub(st.LastAlertSentAt) < e.extendedInterval
}

// channelAllowed applies the per-channel basic throttle to a failure
// alert. Recovery dispatches skip this gate.
func (e *Engine) channelAllowed(ch notify.Channel, st *State, now time.Time) bool {
	cfg := e.channels[ch]

	if cfg.ThrottleOnFirstError {
		return st.ConsecutiveErrors == 1
	}

	if cfg.ThrottleInterval <= 0 {
		return true
	}
	cs := st.channel(ch)
	return cs.LastSentAt.IsZero() || now.Sub(cs.LastSentAt) >= cfg.ThrottleInterval
}

func (e *Engine) dispatch(ctx context.Context, item *monitor.Item, msg notify.Message, st *State, now time.Time, recovery bool) {
	targets, err := e.store.ListAlertTargets(ctx, item.ID)
	if err != nil {
		e.logger.Error().Err(err).
			Int64("item_id", item.ID).
			Msg("failed to load alert targets, skipping dispatch")
		return
	}

	for _, t := range targets {
		rc, err := validateTarget(t)
		if err != nil {
			e.logger.Warn().Err(err).
				Int64("item_id", item.ID).
				Int64("config_id", t.ID).
				Str("alert_type", t.Type).
				Msg("skipping invalid alert config")
			continue
		}

		notifier, ok := e.notifiers[rc.Channel]
		if !ok {
			continue
		}

		if !recovery && !e.channelAllowed(rc.Channel, st, now) {
			continue
		}

		result := notifier.Send(ctx, rc.Address, msg)
		if !result.Success {
			// last_sent_at stays untouched so the channel retries on the
			// next eligible check.
			e.logger.Error().
				Int64("item_id", item.ID).
				Str("channel", string(rc.Channel)).
				Str("detail", result.Detail).
				Msg("alert dispatch failed")
			continue
		}

		st.channel(rc.Channel).LastSentAt = now
		if !recovery {
			// Extended-throttle clock: only delivered failure alerts count.
			st.LastAlertSentAt = now
		}

		e.logger.Info().
			Int64("item_id", item.ID).
			Str("channel", string(rc.Channel)).
			Bool("recovery", recovery).
			Msg("alert delivered")

		e.publishEvent(ctx, item, rc.Channel, msg.Title, recovery, now)
	}
}

func (e *Engine) publishEvent(ctx context.Context, item *monitor.Item, ch notify.Channel, title string, recovery bool, now time.Time) {
	if e.events == nil {
		return
	}

	ev := Event{
		ID:       uuid.New(),
		ItemID:   item.ID,
		ItemName: item.Name,
		Channel:  ch,
		Recovery: recovery,
		Title:    title,
		SentAt:   now,
	}
	if err := e.events.PublishAlertEvent(ctx, ev); err != nil {
		e.logger.Error().Err(err).
			Int64("item_id", item.ID).
			Msg("failed to publish alert event")
	}
}

func (e *Engine) failureMessage(item *monitor.Item, res checker.Result, streak int) notify.Message {
	body := fmt.Sprintf("%s is DOWN\nTarget: %s\nReason: %s\nConsecutive failures: %d",
		item.Name, item.URL, res.Message, streak)
	if e.adminDomain != "" {
		body += fmt.Sprintf("\nManage: https://%s/member/monitor-item/edit/%d", e.adminDomain, item.ID)
	}

	return notify.Message{
		Title: fmt.Sprintf("❌ %s is DOWN", item.Name),
		Body:  body,
		Data: map[string]string{
			"item_id": fmt.Sprintf("%d", item.ID),
			"status":  "down",
			"url":     item.URL,
		},
	}
}

func (e *Engine) recoveryMessage(item *monitor.Item, streak int, res checker.Result) notify.Message {
	return notify.Message{
		Title: fmt.Sprintf("✅ %s is UP", item.Name),
		Body: fmt.Sprintf("%s recovered after %d failed checks\nTarget: %s\nLatency: %dms",
			item.Name, streak, item.URL, res.Latency.Milliseconds()),
		Data: map[string]string{
			"item_id": fmt.Sprintf("%d", item.ID),
			"status":  "up",
			"url":     item.URL,
		},
	}
}
