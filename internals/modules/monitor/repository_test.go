package monitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The schema lives outside this service, so the statements themselves are
// the contract: pin the pivot join and the NULL handling here.

func TestAlertTargetQueryJoinsOnPivotColumns(t *testing.T) {
	assert.Contains(t, listAlertTargetsSQL, "monitor_and_configs")
	assert.Contains(t, listAlertTargetsSQL, "mc.monitor_item_id = $1")
	assert.Contains(t, listAlertTargetsSQL, "mc.config_id = c.id")
}

func TestItemQueryCoalescesNullableColumns(t *testing.T) {
	// Dashboard-created rows leave these NULL; each one scans into a
	// non-pointer field and must be coalesced.
	nullable := []string{
		"user_id", "name", "enable", "url_check", "type",
		"check_interval_seconds", "max_alert_count",
		"result_valid", "result_error", "force_restart",
		"last_check_status", "count_online", "count_offline",
	}
	for _, col := range nullable {
		assert.Contains(t, getItemSQL, fmt.Sprintf("COALESCE(%s,", col), "column %s", col)
	}

	// stop_to and last_check_time scan into pointers and stay raw.
	assert.NotContains(t, getItemSQL, "COALESCE(stop_to")
	assert.NotContains(t, getItemSQL, "COALESCE(last_check_time")
}

func TestUserSettingsQueryCoalescesNullableColumns(t *testing.T) {
	assert.Contains(t, getUserSettingsSQL, "COALESCE(alert_time_ranges, '')")
	assert.Contains(t, getUserSettingsSQL, "COALESCE(timezone, 0)")
	assert.NotContains(t, getUserSettingsSQL, "COALESCE(global_stop_alert_to")
}

func TestRecordQueriesCoalesceCounters(t *testing.T) {
	assert.Contains(t, recordOnlineSQL, "count_online = COALESCE(count_online, 0) + 1")
	assert.Contains(t, recordOfflineSQL, "count_offline = COALESCE(count_offline, 0) + 1")
}
