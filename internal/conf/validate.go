// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateOceanSettings(&settings.Ocean); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateAdvisorSettings(&settings.Advisor); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateAnalysisSettings(&settings.Analysis); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateTelemetrySettings(&settings.Telemetry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validatePushSettings(&settings.Notification.Push); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateOceanSettings validates the SST provider settings
func validateOceanSettings(settings *OceanSettings) error {
	var errs []string

	switch settings.Provider {
	case "erddap":
		if _, err := url.ParseRequestURI(settings.Endpoint); err != nil {
			errs = append(errs, fmt.Sprintf("ocean endpoint is not a valid URL: %q", settings.Endpoint))
		}
	case "static":
	default:
		errs = append(errs, fmt.Sprintf("ocean provider must be erddap or static, got %q", settings.Provider))
	}

	if settings.Latitude < -90 || settings.Latitude > 90 {
		errs = append(errs, "ocean latitude must be between -90 and 90")
	}

	if settings.Longitude < -180 || settings.Longitude > 180 {
		errs = append(errs, "ocean longitude must be between -180 and 180")
	}

	if settings.Timeout <= 0 {
		errs = append(errs, "ocean timeout must be positive")
	}

	if settings.CacheTTL < 0 {
		errs = append(errs, "ocean cache TTL must not be negative")
	}

	if settings.RateLimit < 0 || settings.RateBurst < 0 {
		errs = append(errs, "ocean rate limit and burst must not be negative")
	}

	// Plausible sea surface temperatures only
	if settings.Fallback.SST < -2 || settings.Fallback.SST > 40 {
		errs = append(errs, "ocean fallback SST must be between -2 and 40 °C")
	}

	if strings.TrimSpace(settings.Fallback.Source) == "" {
		errs = append(errs, "ocean fallback source must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("ocean settings errors: %v", errs)
	}

	return nil
}

// validateAdvisorSettings validates the recommendation generator settings
func validateAdvisorSettings(settings *AdvisorSettings) error {
	switch settings.Provider {
	case "none", "anthropic", "openai":
	default:
		return fmt.Errorf("advisor provider must be none, anthropic or openai, got %q", settings.Provider)
	}

	switch settings.Locale {
	case "fr", "en":
	default:
		return fmt.Errorf("advisor locale must be fr or en, got %q", settings.Locale)
	}

	if settings.Provider != "none" && settings.Timeout <= 0 {
		return errors.New("advisor timeout must be positive")
	}

	if settings.RateLimit < 0 || settings.RateBurst < 0 {
		return errors.New("advisor rate limit and burst must not be negative")
	}

	return nil
}

// validateAnalysisSettings validates the analysis pipeline settings
func validateAnalysisSettings(settings *AnalysisSettings) error {
	if settings.UpwellingDefault < 0 || settings.UpwellingDefault > 1 {
		return fmt.Errorf("analysis upwelling default must be between 0 and 1, got %g", settings.UpwellingDefault)
	}
	return nil
}

// validateWebServerSettings validates the WebServer-specific settings
func validateWebServerSettings(settings *WebServerSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Listen == "" {
		return errors.New("WebServer listen address is required when enabled")
	}
	if _, _, err := net.SplitHostPort(settings.Listen); err != nil {
		return fmt.Errorf("invalid WebServer listen address: %w", err)
	}
	return nil
}

// validateTelemetrySettings validates the telemetry settings
func validateTelemetrySettings(settings *TelemetrySettings) error {
	if !settings.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(settings.Listen); err != nil {
		return fmt.Errorf("invalid telemetry listen address: %w", err)
	}
	return nil
}

// validateMQTTSettings validates the MQTT settings
func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Broker == "" {
		return errors.New("MQTT broker URL is required when MQTT is enabled")
	}
	if settings.Topic == "" {
		return errors.New("MQTT topic is required when MQTT is enabled")
	}
	return validateRetrySettings(&settings.RetrySettings)
}

// validatePushSettings validates the push notification settings
func validatePushSettings(settings *PushSettings) error {
	if !settings.Enabled {
		return nil
	}
	if len(settings.URLs) == 0 {
		return errors.New("at least one push notification URL is required when push notifications are enabled")
	}
	if settings.Timeout <= 0 {
		return errors.New("push notification timeout must be positive")
	}
	return validateRetrySettings(&settings.RetrySettings)
}

// validateRetrySettings validates the publication retry policy
func validateRetrySettings(settings *RetrySettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.MaxRetries < 0 {
		return errors.New("max retries must be non-negative")
	}
	if settings.InitialDelay < 0 {
		return errors.New("initial delay must be non-negative")
	}
	if settings.MaxDelay < settings.InitialDelay {
		return errors.New("max delay must be greater than or equal to initial delay")
	}
	if settings.BackoffMultiplier < 1 {
		return errors.New("backoff multiplier must be at least 1")
	}
	return nil
}
