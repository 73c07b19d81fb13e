// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// OrderService holds the settings of the order-service binary.
type OrderService struct {
	ServiceName     string
	HTTPAddr        string
	DatabaseDriver  string
	DatabaseDSN     string
	GatewayAddr     string
	NotifierAddr    string
	GatewayTimeout  time.Duration
	NotifyTimeout   time.Duration
	ShutdownTimeout time.Duration
	OTLPEndpoint    string
}

// Simulator holds the settings of a dummy remote service.
type Simulator struct {
	ServiceName    string
	Port           string
	RedisAddr      string
	MinDelay       time.Duration
	MaxDelay       time.Duration
	FailureRate    float64
	IdempotencyTTL time.Duration
	OTLPEndpoint   string
}

func LoadOrderService() (OrderService, error) {
	cfg := OrderService{
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "order-service"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "./data/orders.db"),
		GatewayAddr:    getEnv("PAYMENT_GATEWAY_ADDR", ":9091"),
		NotifierAddr:   getEnv("NOTIFIER_ADDR", ":9093"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var err error
	if cfg.GatewayTimeout, err = durationEnv("GATEWAY_TIMEOUT", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.NotifyTimeout, err = durationEnv("NOTIFY_TIMEOUT", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.GatewayTimeout == 0 {
		return cfg, fmt.Errorf("GATEWAY_TIMEOUT must be > 0")
	}
	return cfg, nil
}

// LoadSimulator reads simulator settings, falling back to defaults for
// anything unset. defaults.ServiceName also seeds OTEL_SERVICE_NAME.
func LoadSimulator(defaults Simulator) (Simulator, error) {
	cfg := Simulator{
		ServiceName:  getEnv("OTEL_SERVICE_NAME", defaults.ServiceName),
		Port:         getEnv("PORT", defaults.Port),
		RedisAddr:    defaults.RedisAddr,
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	// An explicitly empty REDIS_ADDR turns the cache off.
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.RedisAddr = strings.TrimSpace(v)
	}

	var err error
	if cfg.MinDelay, err = durationEnv("SIM_MIN_DELAY", defaults.MinDelay); err != nil {
		return cfg, err
	}
	if cfg.MaxDelay, err = durationEnv("SIM_MAX_DELAY", defaults.MaxDelay); err != nil {
		return cfg, err
	}
	if cfg.MaxDelay < cfg.MinDelay {
		return cfg, fmt.Errorf("SIM_MAX_DELAY (%s) must be >= SIM_MIN_DELAY (%s)", cfg.MaxDelay, cfg.MinDelay)
	}
	if cfg.FailureRate, err = floatEnv("SIM_FAILURE_RATE", defaults.FailureRate); err != nil {
		return cfg, err
	}
	if cfg.FailureRate > 1 {
		return cfg, fmt.Errorf("SIM_FAILURE_RATE must be <= 1")
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaults.IdempotencyTTL); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%s must be >= 0", name)
	}
	return val, nil
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%s must be >= 0", name)
	}
	return val, nil
}
