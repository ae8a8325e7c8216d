// Package config loads service configuration from the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
}

// SMTPEnabled reports whether outbound mail delivery has been configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// Load parses configuration values from the current process environment.
//
// All values have defaults except the SMTP block, which is optional as a
// whole: when BOOKING_SMTP_HOST is unset, mail delivery is disabled and
// notifications are logged instead.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:booking.db",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		SMTPPort:        587,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_ACCESS_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_ACCESS_TOKEN_TTL")
		} else {
			cfg.AccessTokenTTL = ttl
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_REFRESH_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_REFRESH_TOKEN_TTL")
		} else {
			cfg.RefreshTokenTTL = ttl
		}
	}

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("BOOKING_SMTP_HOST"))
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("BOOKING_SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("BOOKING_SMTP_PASSWORD")
	cfg.SMTPFrom = strings.TrimSpace(os.Getenv("BOOKING_SMTP_FROM"))

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_SMTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_SMTP_PORT")
		} else {
			cfg.SMTPPort = port
		}
	}

	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		invalid = append(invalid, "BOOKING_SMTP_FROM")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
