// Package config loads the gateway's configuration from environment
// variables only, following a Load -> ApplyDefaults -> Validate shape
// with no YAML file and no singleton: callers hold their own *Config
// and pass it to whatever needs it.
//
// # Loading
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Load reads every SERVICE_*, GEMINI_*, SECURITY_*, and CACHE_* variable
// described in original_source/src/config.py, applies the same defaults
// AppConfig declares, and validates the result — most importantly that at
// least one Gemini API key was configured.
//
// # Validation
//
// Validate returns a ValidationErrors aggregating every invalid field at
// once, rather than failing on the first one, so a misconfigured
// deployment sees the whole list in one error.
package config
