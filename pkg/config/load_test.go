package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVICE_ENVIRONMENT", "SERVICE_HOST", "SERVICE_PORT", "SERVICE_LOG_LEVEL", "SERVICE_CORS_ORIGINS",
		"GEMINI_API_KEYS", "GEMINI_API_KEYS_FILE", "GEMINI_COOLING_PERIOD", "GEMINI_REQUEST_TIMEOUT", "GEMINI_MAX_RETRIES",
		"SECURITY_ADAPTER_API_KEYS", "SECURITY_ADMIN_API_KEYS",
		"CACHE_ENABLED", "CACHE_MAX_SIZE", "CACHE_TTL", "CACHE_KEY_PREFIX",
		"EVIDENCE_DB_PATH", "POOL_SWEEP_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingKeysFailsValidation(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MinimalValidConfigAppliesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEYS", "key-a, key-b")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.GeminiAPIKeys)
	assert.Equal(t, EnvDevelopment, cfg.ServiceEnvironment)
	assert.Equal(t, "0.0.0.0", cfg.ServiceHost)
	assert.Equal(t, 8100, cfg.ServicePort)
	assert.Equal(t, []string{"*"}, cfg.ServiceCORSOrigins)
	assert.Equal(t, 3, cfg.GeminiMaxRetries)
}

func TestLoad_KeysFileAloneSatisfiesValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEYS_FILE", "/etc/gateway/keys.txt")

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEYS", "key-a")
	t.Setenv("SERVICE_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.ServiceCORSOrigins)
}

func TestSplitCommaList(t *testing.T) {
	assert.Nil(t, splitCommaList(""))
	assert.Equal(t, []string{"a", "b"}, splitCommaList("a, b,,"))
}

func TestParseCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseCORSOrigins(""))
	assert.Equal(t, []string{"*"}, parseCORSOrigins("*"))
	assert.Equal(t, []string{"https://a.example"}, parseCORSOrigins("https://a.example"))
}
