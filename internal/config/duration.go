package config

import (
	"fmt"
	"strings"
	"time"
)

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// ParseDurations validates every duration field in one pass.
func (c *Config) ParseDurations() (Durations, error) {
	var (
		out Durations
		err error
	)
	if out.Window, err = ParseDurationOrDefault("window", c.Window, 12*time.Hour); err != nil {
		return out, err
	}
	if out.FetchTimeout, err = ParseDurationOrDefault("fetch.timeout", c.Fetch.Timeout, 20*time.Second); err != nil {
		return out, err
	}
	if out.SendTimeout, err = ParseDurationOrDefault("telegram.timeout", c.Telegram.Timeout, 15*time.Second); err != nil {
		return out, err
	}
	if out.MetricsRead, err = ParseDurationOrDefault("metrics.read_timeout", c.Metrics.ReadTimeout, 5*time.Second); err != nil {
		return out, err
	}
	if out.MetricsWrite, err = ParseDurationField("metrics.write_timeout", c.Metrics.WriteTimeout); err != nil {
		return out, err
	}
	if out.MetricsIdle, err = ParseDurationOrDefault("metrics.idle_timeout", c.Metrics.IdleTimeout, 60*time.Second); err != nil {
		return out, err
	}
	return out, nil
}
