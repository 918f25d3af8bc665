package config

import "fmt"

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every field failure found during Validate.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:", len(e))
	for _, ve := range e {
		msg += "\n  - " + ve.Error()
	}
	return msg
}

// Validate checks cfg after defaults have been applied, mirroring
// _validate_config: at least one Gemini key is required, and an enabled
// cache must have a positive size. It also bounds-checks the numeric
// fields against the same floors AppConfig declares with Field(ge=...).
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if len(cfg.GeminiAPIKeys) == 0 && cfg.GeminiAPIKeysFile == "" {
		errs = append(errs, &ValidationError{
			Field:   "GEMINI_API_KEYS",
			Message: "at least one Gemini API key is required (set GEMINI_API_KEYS or GEMINI_API_KEYS_FILE)",
		})
	}

	if cfg.CacheEnabled && cfg.CacheMaxSize <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "CACHE_MAX_SIZE",
			Message: "must be positive when CACHE_ENABLED is true",
		})
	}

	if cfg.GeminiCoolingPeriod.Seconds() < 60 {
		errs = append(errs, &ValidationError{
			Field:   "GEMINI_COOLING_PERIOD",
			Message: "must be at least 60 seconds",
		})
	}

	if cfg.GeminiRequestTimeout.Seconds() < 10 {
		errs = append(errs, &ValidationError{
			Field:   "GEMINI_REQUEST_TIMEOUT",
			Message: "must be at least 10 seconds",
		})
	}

	if cfg.GeminiMaxRetries < 1 {
		errs = append(errs, &ValidationError{
			Field:   "GEMINI_MAX_RETRIES",
			Message: "must be at least 1",
		})
	}

	if cfg.ServicePort < 1 || cfg.ServicePort > 65535 {
		errs = append(errs, &ValidationError{
			Field:   "SERVICE_PORT",
			Message: "must be between 1 and 65535",
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
