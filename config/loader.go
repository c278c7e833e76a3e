package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// default first
	setDefaults(v)

	// File Config
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Env Config
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read File
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Validate
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("service_name", "upwatch")
	v.SetDefault("port", 8080)

	v.SetDefault("auth.expiry_min", 30)

	v.SetDefault("scheduler.reconcile_interval", "5s")
	v.SetDefault("scheduler.drift_interval", "3s")
	v.SetDefault("scheduler.max_concurrent_checks", 200)
	v.SetDefault("scheduler.default_check_interval", "5m")

	v.SetDefault("checker.attempt_timeout", "15s")
	v.SetDefault("checker.retry_delay", "3s")
	v.SetDefault("checker.max_attempts", 3)
	v.SetDefault("checker.web_max_status", 400)
	v.SetDefault("checker.ssl_expiry_margin_days", 10)

	v.SetDefault("alerting.telegram.throttle_on_first_error", false)
	v.SetDefault("alerting.telegram.throttle_interval", "30s")
	v.SetDefault("alerting.webhook.throttle_on_first_error", true)
	v.SetDefault("alerting.webhook.throttle_interval", "30s")
	v.SetDefault("alerting.firebase.throttle_on_first_error", true)
	v.SetDefault("alerting.firebase.throttle_interval", "30s")
	v.SetDefault("alerting.consecutive_error_threshold", 10)
	v.SetDefault("alerting.extended_alert_interval", "5m")
	v.SetDefault("alerting.fast_interval_cutoff", "5m")
	v.SetDefault("alerting.firebase_endpoint", "https://fcm.googleapis.com/fcm/send")

	v.SetDefault("db.max_open_conns", 50)
	v.SetDefault("db.min_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "1h")
	v.SetDefault("db.conn_max_idle_time", "30m")
	v.SetDefault("db.health_timeout", "5s")
}

func validateConfig(cfg *Config) error {

	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return formatValidationErrors(ve)
		}
		return err
	}
	return nil
}

func formatValidationErrors(ve validator.ValidationErrors) error {
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")

	for _, fe := range ve {
		fmt.Fprintf(&sb, "- field '%s' failed on '%s'\n", fe.Namespace(), fe.Tag())
	}
	return errors.New(sb.String())
}
