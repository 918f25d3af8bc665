package config

import "time"

// ApplyDefaults fills every field left at its zero value after Load reads
// the environment, matching the Field defaults declared on AppConfig in
// original_source/src/config.py.
func ApplyDefaults(cfg *Config) {
	if cfg.ServiceEnvironment == "" {
		cfg.ServiceEnvironment = EnvDevelopment
	}
	if cfg.ServiceHost == "" {
		cfg.ServiceHost = "0.0.0.0"
	}
	if cfg.ServicePort == 0 {
		cfg.ServicePort = 8100
	}
	if cfg.ServiceLogLevel == "" {
		cfg.ServiceLogLevel = "INFO"
	}
	if len(cfg.ServiceCORSOrigins) == 0 {
		cfg.ServiceCORSOrigins = []string{"*"}
	}

	if cfg.GeminiCoolingPeriod == 0 {
		cfg.GeminiCoolingPeriod = 300 * time.Second
	}
	if cfg.GeminiRequestTimeout == 0 {
		cfg.GeminiRequestTimeout = 120 * time.Second
	}
	if cfg.GeminiMaxRetries == 0 {
		cfg.GeminiMaxRetries = 3
	}

	if cfg.CacheMaxSize == 0 {
		cfg.CacheMaxSize = 1000
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 300 * time.Second
	}
	if cfg.CacheKeyPrefix == "" {
		cfg.CacheKeyPrefix = "gemini_adapter"
	}

	if cfg.EvidenceDBPath == "" {
		cfg.EvidenceDBPath = "data/evidence.db"
	}
	if cfg.PoolSweepSchedule == "" {
		cfg.PoolSweepSchedule = "@every 1m"
	}
}
