package config

import (
	"os"
	"time"
)

type Config struct {
	ListenAddr    string
	MetricsAddr   string
	RedisAddr     string
	RedisPassword string
	KeyPrefix     string
	// Quiet period for the request-activity report, and the ceiling
	// after which a report is forced even under constant traffic.
	ReportWait    time.Duration
	ReportMaxWait time.Duration
	// Simulated latency of the demo backend.
	BackendDelay time.Duration
}

func LoadDefault() Config {
	return Config{
		ListenAddr:    ":8080",
		MetricsAddr:   ":9090",
		RedisAddr:     "",
		RedisPassword: "",
		KeyPrefix:     "tempo",
		ReportWait:    2 * time.Second,
		ReportMaxWait: 10 * time.Second,
		BackendDelay:  250 * time.Millisecond,
	}
}

// FromEnv returns LoadDefault with TEMPO_* environment overrides applied.
func FromEnv() Config {
	cfg := LoadDefault()
	if v := os.Getenv("TEMPO_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TEMPO_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("TEMPO_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("TEMPO_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("TEMPO_KEY_PREFIX"); v != "" {
		cfg.KeyPrefix = v
	}
	if d, err := time.ParseDuration(os.Getenv("TEMPO_REPORT_WAIT")); err == nil {
		cfg.ReportWait = d
	}
	if d, err := time.ParseDuration(os.Getenv("TEMPO_REPORT_MAX_WAIT")); err == nil {
		cfg.ReportMaxWait = d
	}
	if d, err := time.ParseDuration(os.Getenv("TEMPO_BACKEND_DELAY")); err == nil {
		cfg.BackendDelay = d
	}
	return cfg
}
