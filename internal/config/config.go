package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// DefaultKMABaseURL is the ultra short-term nowcast endpoint of the KMA
// short-term forecast service.
const DefaultKMABaseURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getUltraSrtNcst"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration

	// KMA weather configuration.
	KMAServiceKey  string
	KMABaseURL     string
	WeatherEnabled bool
	KMATimeout     time.Duration
	KMADataType    string
	KMACacheTTL    time.Duration
	KMARateLimit   float64
	KMARateBurst   int

	FloodSimulationEnabled bool
	RegistryFile           string

	// APIRateLimit is the per-client request budget per minute on /api/
	// routes. Zero disables limiting.
	APIRateLimit int

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// SweepInterval schedules a full-registry assessment. Zero disables it.
	SweepInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	logLevel, err := parseLogLevel(sharedcfg.EnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	kmaTimeout, err := parseDuration("KMA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("KMA_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	sweepInterval, err := parseOptionalDuration("SWEEP_INTERVAL")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("KMA_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid KMA_RATE_LIMIT")
	}
	rateBurst, err := parsePositiveInt("KMA_RATE_BURST", "5")
	if err != nil {
		return nil, err
	}
	apiRateLimit, err := parseNonNegativeInt("API_RATE_LIMIT", "120")
	if err != nil {
		return nil, err
	}

	serviceKey := strings.TrimSpace(os.Getenv("KMA_SERVICE_KEY"))
	weatherEnabled, err := parseBool("WEATHER_ENABLED", serviceKey != "")
	if err != nil {
		return nil, err
	}
	floodSimEnabled, err := parseBool("FLOOD_SIMULATION_ENABLED", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        logLevel,
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KMAServiceKey:  serviceKey,
		KMABaseURL:     sharedcfg.EnvOrDefault("KMA_BASE_URL", DefaultKMABaseURL),
		WeatherEnabled: weatherEnabled,
		KMATimeout:     kmaTimeout,
		KMADataType:    strings.ToUpper(sharedcfg.EnvOrDefault("KMA_DATA_TYPE", "XML")),
		KMACacheTTL:    cacheTTL,
		KMARateLimit:   rateLimit,
		KMARateBurst:   rateBurst,

		FloodSimulationEnabled: floodSimEnabled,
		RegistryFile:           strings.TrimSpace(os.Getenv("REGISTRY_FILE")),

		APIRateLimit: apiRateLimit,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "flood-risk-assessments"),

		SweepInterval: sweepInterval,
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", cfg.LogFormat)
	}
	if cfg.KMADataType != "XML" && cfg.KMADataType != "JSON" {
		return nil, fmt.Errorf("invalid KMA_DATA_TYPE %q (allowed: XML, JSON)", cfg.KMADataType)
	}
	if cfg.WeatherEnabled && cfg.KMAServiceKey == "" {
		return nil, errors.New("WEATHER_ENABLED is true but KMA_SERVICE_KEY is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// Settings returns the per-call toggles handed to the assessment service.
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		ServiceKey:             c.KMAServiceKey,
		WeatherEnabled:         c.WeatherEnabled,
		FloodSimulationEnabled: c.FloodSimulationEnabled,
	}
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseOptionalDuration(key string) (time.Duration, error) {
	v := sharedcfg.EnvOrDefault(key, "0")
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseNonNegativeInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
