// env.go - Environment variable configuration and validation for BAHRIA
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns the conventional environment variables read in
// addition to the BAHRIA_ prefixed ones.
func getEnvBindings() []envBinding {
	return []envBinding{
		// Provider credentials under their usual names
		{"advisor.anthropic.apikey", "ANTHROPIC_API_KEY", nil},
		{"advisor.openai.apikey", "OPENAI_API_KEY", nil},
		{"advisor.openai.baseurl", "OPENAI_BASE_URL", nil},

		// Broker credentials
		{"mqtt.username", "MQTT_USERNAME", nil},
		{"mqtt.password", "MQTT_PASSWORD", nil},

		// Values validated early so a typo is reported by variable name
		{"ocean.latitude", "BAHRIA_OCEAN_LATITUDE", validateEnvLatitude},
		{"ocean.longitude", "BAHRIA_OCEAN_LONGITUDE", validateEnvLongitude},
		{"ocean.retrypreviousday", "BAHRIA_OCEAN_RETRYPREVIOUSDAY", validateEnvBool},
		{"advisor.locale", "BAHRIA_ADVISOR_LOCALE", validateEnvLocale},
		{"analysis.upwellingdefault", "BAHRIA_ANALYSIS_UPWELLINGDEFAULT", validateEnvUpwelling},
		{"debug", "BAHRIA_DEBUG", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvLocale(value string) error {
	switch strings.ToLower(value) {
	case "fr", "en":
		return nil
	default:
		return fmt.Errorf("must be fr or en")
	}
}

func validateEnvRange(value string, lo, hi float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if f < lo || f > hi {
		return fmt.Errorf("must be between %g and %g", lo, hi)
	}
	return nil
}

func validateEnvLatitude(value string) error {
	return validateEnvRange(value, -90, 90)
}

func validateEnvLongitude(value string) error {
	return validateEnvRange(value, -180, 180)
}

func validateEnvUpwelling(value string) error {
	return validateEnvRange(value, 0, 1)
}
