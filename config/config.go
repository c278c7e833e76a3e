package config

import "time"

type Config struct {
	Env         string `mapstructure:"env"`
	ServiceName string `mapstructure:"service_name"`
	Port        int    `mapstructure:"port" validate:"min=0,max=65535"`

	DB        *DBConfig        `mapstructure:"db" validate:"required"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	RabbitMQ  *RabbitMQConfig  `mapstructure:"rabbitmq"`
	Auth      *AuthConfig      `mapstructure:"auth"`
	Scheduler *SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Checker   *CheckerConfig   `mapstructure:"checker" validate:"required"`
	Alerting  *AlertingConfig  `mapstructure:"alerting" validate:"required"`
}

type DBConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int32         `mapstructure:"max_open_conns"`
	MinIdleConns    int32         `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
}

// Redis is optional. When URL is empty the last-status cache is skipped.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// RabbitMQ is optional. When URL is empty alert events stay in-process only.
type RabbitMQConfig struct {
	URL          string `mapstructure:"url"`
	ExchangeName string `mapstructure:"exchange_name"`
	ExchangeType string `mapstructure:"exchange_type"`
	QueueName    string `mapstructure:"queue_name"`
	RoutingKey   string `mapstructure:"routing_key"`
}

type AuthConfig struct {
	Secret    string `mapstructure:"secret"`
	ExpiryMin int    `mapstructure:"expiry_min"`
}

type SchedulerConfig struct {
	// ReconcileInterval is how often the reconciler re-reads the enabled
	// item set from the database.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval" validate:"required"`

	// DriftInterval is how often each worker re-reads its own row to
	// detect definition changes.
	DriftInterval time.Duration `mapstructure:"drift_interval" validate:"required"`

	// MaxConcurrentChecks bounds in-flight check executions across all
	// workers of this process.
	MaxConcurrentChecks int `mapstructure:"max_concurrent_checks" validate:"min=1"`

	// DefaultCheckInterval is used when an item row carries a zero or
	// negative check interval.
	DefaultCheckInterval time.Duration `mapstructure:"default_check_interval"`
}

type CheckerConfig struct {
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" validate:"required"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"min=1"`

	// WebMaxStatus is the exclusive upper bound for a ping_web check to
	// count as up.
	WebMaxStatus int `mapstructure:"web_max_status"`

	// SSLExpiryMarginDays is the minimum remaining certificate lifetime
	// for an ssl check to count as up.
	SSLExpiryMarginDays int `mapstructure:"ssl_expiry_margin_days"`
}

type ChannelConfig struct {
	// ThrottleOnFirstError fires a channel only on the first failure of a
	// streak (and on recovery). When false the channel re-fires once
	// ThrottleInterval has passed since its last successful send.
	ThrottleOnFirstError bool          `mapstructure:"throttle_on_first_error"`
	ThrottleInterval     time.Duration `mapstructure:"throttle_interval"`
}

type AlertingConfig struct {
	Telegram ChannelConfig `mapstructure:"telegram"`
	Webhook  ChannelConfig `mapstructure:"webhook"`
	Firebase ChannelConfig `mapstructure:"firebase"`

	// ConsecutiveErrorThreshold is the streak length after which the
	// extended throttle kicks in for fast-interval items.
	ConsecutiveErrorThreshold int `mapstructure:"consecutive_error_threshold" validate:"min=1"`

	// ExtendedAlertInterval spaces repeat alerts once the threshold is
	// crossed. Zero disables the extended throttle.
	ExtendedAlertInterval time.Duration `mapstructure:"extended_alert_interval"`

	// FastIntervalCutoff marks items whose check interval is short enough
	// to need the extended throttle at all.
	FastIntervalCutoff time.Duration `mapstructure:"fast_interval_cutoff"`

	// AdminDomain builds the edit link embedded in alert messages.
	AdminDomain string `mapstructure:"admin_domain"`

	// FirebaseEndpoint and FirebaseServerKey configure push dispatch.
	FirebaseEndpoint  string `mapstructure:"firebase_endpoint"`
	FirebaseServerKey string `mapstructure:"firebase_server_key"`
}
