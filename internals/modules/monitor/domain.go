package monitor

import (
	"time"
)

type CheckType string

const (
	CheckPingWeb          CheckType = "ping_web"
	CheckWebContent       CheckType = "web_content"
	CheckPingICMP         CheckType = "ping_icmp"
	CheckTCPOpen          CheckType = "tcp_open_then_valid"
	CheckTCPOpenThenError CheckType = "tcp_open_then_error"
	CheckSSLExpiry        CheckType = "ssl_expired_check"
)

// Status values persisted on the item row after each check.
const (
	StatusUp   = 1
	StatusDown = -1
)

// Item is one monitored target as stored in monitor_items.
type Item struct {
	ID                   int64
	UserID               int64
	Name                 string
	Enabled              bool
	URL                  string
	Type                 CheckType
	CheckIntervalSeconds int32
	MaxAlertCount        int32
	ResultValid          string // comma separated substrings that must all appear
	ResultError          string // comma separated substrings that must not appear
	StopAlertsUntil      *time.Time
	ForceRestart         bool

	LastCheckStatus int16
	LastCheckTime   *time.Time
	CountOnline     int64
	CountOffline    int64
}

// EffectiveInterval returns the check cadence, falling back when the row
// carries a non-positive value.
func (it *Item) EffectiveInterval(fallback time.Duration) time.Duration {
	if it.CheckIntervalSeconds <= 0 {
		return fallback
	}
	return time.Duration(it.CheckIntervalSeconds) * time.Second
}

// UserSettings holds the alerting preferences of the item owner.
type UserSettings struct {
	UserID           int64
	AlertTimeRanges  string // "HH:MM-HH:MM[,HH:MM-HH:MM...]", empty = always
	TimezoneOffset   int    // whole hours from UTC
	GlobalStopUntil  *time.Time
}

// AlertTarget is one configured notification destination for an item.
type AlertTarget struct {
	ID     int64
	Type   string // telegram | webhook | firebase
	Config string // channel specific recipient string
}

// Snapshot carries the definition fields a running worker watches for
// drift. Any difference against a fresh row means the worker must exit
// so the reconciler restarts it with the new definition.
type Snapshot struct {
	Enabled              bool
	Name                 string
	UserID               int64
	URL                  string
	Type                 CheckType
	MaxAlertCount        int32
	CheckIntervalSeconds int32
	ResultValid          string
	ResultError          string
	StopAlertsUntil      string
	ForceRestart         bool
}

func SnapshotOf(it *Item) Snapshot {
	s := Snapshot{
		Enabled:              it.Enabled,
		Name:                 it.Name,
		UserID:               it.UserID,
		URL:                  it.URL,
		Type:                 it.Type,
		MaxAlertCount:        it.MaxAlertCount,
		CheckIntervalSeconds: it.CheckIntervalSeconds,
		ResultValid:          it.ResultValid,
		ResultError:          it.ResultError,
		ForceRestart:         it.ForceRestart,
	}
	if it.StopAlertsUntil != nil {
		s.StopAlertsUntil = it.StopAlertsUntil.UTC().Format(time.RFC3339)
	}
	return s
}

// Diff reports the watched fields that differ between two snapshots.
func (s Snapshot) Diff(other Snapshot) []string {
	var changed []string

	if s.Enabled != other.Enabled {
		changed = append(changed, "enable")
	}
	if s.Name != other.Name {
		changed = append(changed, "name")
	}
	if s.UserID != other.UserID {
		changed = append(changed, "user_id")
	}
	if s.URL != other.URL {
		changed = append(changed, "url_check")
	}
	if s.Type != other.Type {
		changed = append(changed, "type")
	}
	if s.MaxAlertCount != other.MaxAlertCount {
		changed = append(changed, "max_alert_count")
	}
	if s.CheckIntervalSeconds != other.CheckIntervalSeconds {
		changed = append(changed, "check_interval_seconds")
	}
	if s.ResultValid != other.ResultValid {
		changed = append(changed, "result_valid")
	}
	if s.ResultError != other.ResultError {
		changed = append(changed, "result_error")
	}
	if s.StopAlertsUntil != other.StopAlertsUntil {
		changed = append(changed, "stop_to")
	}
	if s.ForceRestart != other.ForceRestart {
		changed = append(changed, "force_restart")
	}

	return changed
}
