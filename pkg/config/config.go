// Package config loads the gateway's configuration from environment
// variables, grounded on AppConfig in original_source/src/config.py and
// structured as a Load/ApplyDefaults/Validate split (see pkg/config/load.go,
// pkg/config/defaults.go, pkg/config/validate.go) — adapted from YAML-file
// configuration, out of scope here, to the env-only surface the gateway's
// operators use.
package config

import "time"

// Environment names SERVICE_ENVIRONMENT's accepted values.
type Environment string

// Environment values.
const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config is the complete, validated gateway configuration.
type Config struct {
	ServiceEnvironment Environment
	ServiceHost        string
	ServicePort        int
	ServiceLogLevel    string
	ServiceCORSOrigins []string

	GeminiAPIKeys        []string
	GeminiAPIKeysFile    string // optional hot-reload source, see pkg/config/watch.go
	GeminiCoolingPeriod  time.Duration
	GeminiRequestTimeout time.Duration
	GeminiMaxRetries     int

	SecurityAdapterAPIKeys []string
	SecurityAdminAPIKeys   []string

	CacheEnabled   bool
	CacheMaxSize   int
	CacheTTL       time.Duration
	CacheKeyPrefix string

	EvidenceDBPath    string
	PoolSweepSchedule string
}
