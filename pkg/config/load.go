package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Load reads the full gateway configuration from the process environment,
// applies defaults, and validates the result, following a
// Load -> ApplyDefaults -> Validate sequence with no YAML file in between.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceEnvironment: Environment(getEnv("SERVICE_ENVIRONMENT", string(EnvDevelopment))),
		ServiceHost:        getEnv("SERVICE_HOST", ""),
		ServicePort:        getEnvInt("SERVICE_PORT", 0),
		ServiceLogLevel:    getEnv("SERVICE_LOG_LEVEL", ""),
		ServiceCORSOrigins: parseCORSOrigins(os.Getenv("SERVICE_CORS_ORIGINS")),

		GeminiAPIKeys:     splitCommaList(os.Getenv("GEMINI_API_KEYS")),
		GeminiAPIKeysFile: os.Getenv("GEMINI_API_KEYS_FILE"),

		SecurityAdapterAPIKeys: splitCommaList(os.Getenv("SECURITY_ADAPTER_API_KEYS")),
		SecurityAdminAPIKeys:   splitCommaList(os.Getenv("SECURITY_ADMIN_API_KEYS")),

		CacheEnabled:   getEnvBool("CACHE_ENABLED", true),
		CacheMaxSize:   getEnvInt("CACHE_MAX_SIZE", 0),
		CacheKeyPrefix: getEnv("CACHE_KEY_PREFIX", ""),

		EvidenceDBPath:    getEnv("EVIDENCE_DB_PATH", ""),
		PoolSweepSchedule: getEnv("POOL_SWEEP_SCHEDULE", ""),
	}

	if seconds := getEnvInt("GEMINI_COOLING_PERIOD", 0); seconds > 0 {
		cfg.GeminiCoolingPeriod = time.Duration(seconds) * time.Second
	}
	if seconds := getEnvInt("GEMINI_REQUEST_TIMEOUT", 0); seconds > 0 {
		cfg.GeminiRequestTimeout = time.Duration(seconds) * time.Second
	}
	cfg.GeminiMaxRetries = getEnvInt("GEMINI_MAX_RETRIES", 0)

	if seconds := getEnvInt("CACHE_TTL", 0); seconds > 0 {
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// splitCommaList mirrors validate_str_to_list: trims whitespace, drops
// empty entries, and returns nil (not an empty slice) for an empty input.
func splitCommaList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseCORSOrigins mirrors validate_cors_origins: "*" or empty means
// wildcard, otherwise a comma-separated origin list.
func parseCORSOrigins(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "*" {
		return []string{"*"}
	}
	return splitCommaList(raw)
}
