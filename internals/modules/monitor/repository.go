package monitor

import (
	"context"
	"errors"
	"time"
	"upwatch/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// The schema is externally owned and most columns are nullable; rows
// created by the dashboard routinely carry NULL result_valid,
// result_error or last_check_status. Non-pointer destinations are
// coalesced in SQL so a fresh row never fails to scan.
const itemColumns = `id, COALESCE(user_id, 0), COALESCE(name, ''),
	COALESCE(enable, false), COALESCE(url_check, ''), COALESCE(type, ''),
	COALESCE(check_interval_seconds, 0), COALESCE(max_alert_count, 0),
	COALESCE(result_valid, ''), COALESCE(result_error, ''),
	stop_to, COALESCE(force_restart, false),
	COALESCE(last_check_status, 0), last_check_time,
	COALESCE(count_online, 0), COALESCE(count_offline, 0)`

const listEnabledIDsSQL = `SELECT id FROM monitor_items WHERE enable = true ORDER BY id`

const getItemSQL = `SELECT ` + itemColumns + ` FROM monitor_items WHERE id = $1`

const recordOnlineSQL = `UPDATE monitor_items
	 SET last_check_status = $2, last_check_time = $3, count_online = COALESCE(count_online, 0) + 1
	 WHERE id = $1`

const recordOfflineSQL = `UPDATE monitor_items
	 SET last_check_status = $2, last_check_time = $3, count_offline = COALESCE(count_offline, 0) + 1
	 WHERE id = $1`

const getUserSettingsSQL = `SELECT user_id, COALESCE(alert_time_ranges, ''),
	 COALESCE(timezone, 0), global_stop_alert_to
	 FROM monitor_settings WHERE user_id = $1`

const listAlertTargetsSQL = `SELECT c.id, COALESCE(c.alert_type, ''), COALESCE(c.alert_config, '')
	 FROM monitor_configs c
	 JOIN monitor_and_configs mc ON mc.config_id = c.id
	 WHERE mc.monitor_item_id = $1
	 ORDER BY c.id`

// ListEnabledIDs returns the ids of all enabled items in stable order, so
// chunk partitioning sees the same slices on every process.
func (r *Repository) ListEnabledIDs(ctx context.Context) ([]int64, error) {
	const op = "repository.monitor.list_enabled_ids"

	rows, err := r.pool.Query(ctx, listEnabledIDsSQL)
	if err != nil {
		return nil, apperror.New(apperror.StoreUnavailable, op, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.New(apperror.StoreUnavailable, op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.StoreUnavailable, op, err)
	}

	return ids, nil
}

// GetItem loads one item row. Returns (nil, nil) when the row is gone.
func (r *Repository) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	const op = "repository.monitor.get_item"

	row := r.pool.QueryRow(ctx, getItemSQL, itemID)

	var it Item
	var checkType string
	err := row.Scan(
		&it.ID, &it.UserID, &it.Name, &it.Enabled, &it.URL, &checkType,
		&it.CheckIntervalSeconds, &it.MaxAlertCount, &it.ResultValid, &it.ResultError,
		&it.StopAlertsUntil, &it.ForceRestart, &it.LastCheckStatus, &it.LastCheckTime,
		&it.CountOnline, &it.CountOffline,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.New(apperror.StoreUnavailable, op, err)
	}
	it.Type = CheckType(checkType)

	return &it, nil
}

// RecordCheckResult persists the outcome of one finished check and bumps
// the matching online/offline counter.
func (r *Repository) RecordCheckResult(ctx context.Context, itemID int64, success bool, checkedAt time.Time) error {
	const op = "repository.monitor.record_check_result"

	var err error
	if success {
		_, err = r.pool.Exec(ctx, recordOnlineSQL, itemID, StatusUp, checkedAt)
	} else {
		_, err = r.pool.Exec(ctx, recordOfflineSQL, itemID, StatusDown, checkedAt)
	}
	if err != nil {
		return apperror.New(apperror.StoreUnavailable, op, err)
	}

	return nil
}

// GetUserSettings loads the owner's alerting preferences. Returns
// (nil, nil) when the user has no settings row.
func (r *Repository) GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	const op = "repository.monitor.get_user_settings"

	row := r.pool.QueryRow(ctx, getUserSettingsSQL, userID)

	var s UserSettings
	err := row.Scan(&s.UserID, &s.AlertTimeRanges, &s.TimezoneOffset, &s.GlobalStopUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.New(apperror.StoreUnavailable, op, err)
	}

	return &s, nil
}

// ListAlertTargets returns the notification destinations linked to an
// item, in stable order.
func (r *Repository) ListAlertTargets(ctx context.Context, itemID int64) ([]AlertTarget, error) {
	const op = "repository.monitor.list_alert_targets"

	rows, err := r.pool.Query(ctx, listAlertTargetsSQL, itemID)
	if err != nil {
		return nil, apperror.New(apperror.StoreUnavailable, op, err)
	}
	defer rows.Close()

	var targets []AlertTarget
	for rows.Next() {
		var t AlertTarget
		if err := rows.Scan(&t.ID, &t.Type, &t.Config); err != nil {
			return nil, apperror.New(apperror.StoreUnavailable, op, err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.StoreUnavailable, op, err)
	}

	return targets, nil
}
