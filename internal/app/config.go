package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/mustore/internal/domain"
)

// Config описывает настройки запуска магазина.
// Все значения читаются из переменных окружения с префиксом MUSTORE_.
type Config struct {
	// HTTPAddr — адрес публичного API.
	HTTPAddr string
	// OpsAddr — адрес служебного сервера: метрики и health checks.
	OpsAddr string

	// PostgresDSN пустой — работаем на in-memory хранилище с демо-каталогом.
	PostgresDSN string
	// KafkaBrokers пустой — события заказов копятся в outbox без публикации.
	KafkaBrokers string
	// RedisAddr пустой — rate limiter работает в памяти процесса.
	RedisAddr string

	JWTSecret string

	Pricing domain.Pricing

	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:       ":8080",
		OpsAddr:        ":9090",
		Pricing:        domain.DefaultPricing(),
		AuthRateLimit:  10,
		AuthRateWindow: time.Minute,
	}
}

// LoadConfig собирает конфигурацию из окружения поверх значений по умолчанию.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if addr := os.Getenv("MUSTORE_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := os.Getenv("MUSTORE_OPS_ADDR"); addr != "" {
		cfg.OpsAddr = addr
	}
	cfg.PostgresDSN = os.Getenv("MUSTORE_POSTGRES_DSN")
	cfg.KafkaBrokers = os.Getenv("MUSTORE_KAFKA_BROKERS")
	cfg.RedisAddr = os.Getenv("MUSTORE_REDIS_ADDR")
	cfg.JWTSecret = os.Getenv("MUSTORE_JWT_SECRET")
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("MUSTORE_JWT_SECRET is required")
	}

	var err error
	if cfg.Pricing.FreeDeliveryThresholdMinor, err = envInt64(
		"MUSTORE_FREE_DELIVERY_THRESHOLD_MINOR", cfg.Pricing.FreeDeliveryThresholdMinor); err != nil {
		return Config{}, err
	}
	if cfg.Pricing.DeliveryFeeMinor, err = envInt64(
		"MUSTORE_DELIVERY_FEE_MINOR", cfg.Pricing.DeliveryFeeMinor); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateLimit, err = envInt("MUSTORE_AUTH_RATE_LIMIT", cfg.AuthRateLimit); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateWindow, err = envDuration("MUSTORE_AUTH_RATE_WINDOW", cfg.AuthRateWindow); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envInt64(name string, fallback int64) (int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}
