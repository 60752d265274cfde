// config.go: This file contains the configuration for the BAHRIA application. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// EnvPrefix is the prefix for environment variable overrides, e.g. BAHRIA_OCEAN_TIMEOUT
const EnvPrefix = "BAHRIA"

// SpeciesSettings contains settings for the species reference catalog.
type SpeciesSettings struct {
	File string // optional path to a species YAML file, embedded catalog is used when empty
}

// OceanFallback is the snapshot reported when no live or cached SST reading is available.
type OceanFallback struct {
	SST    float64 // sea surface temperature in °C
	Source string  // source label reported with the fallback value
	Date   string  // reference date of the fallback value, YYYY-MM-DD
}

// OceanSettings contains settings for the sea surface temperature provider.
type OceanSettings struct {
	Provider         string        // erddap or static
	Endpoint         string        // ERDDAP griddap JSON endpoint
	Latitude         float64       // latitude of the SST grid cell
	Longitude        float64       // longitude of the SST grid cell
	Timeout          time.Duration // per-attempt request timeout
	RetryPreviousDay bool          // true to retry with the previous day when today is not published yet
	CacheTTL         time.Duration // how long the last good reading may stand in for a failed fetch
	RateLimit        float64       // maximum ERDDAP requests per second, 0 disables limiting
	RateBurst        int           // requests allowed back to back before the rate applies
	Fallback         OceanFallback // snapshot used when nothing else is available
}

// AnthropicSettings contains settings for the Anthropic messages API.
type AnthropicSettings struct {
	APIKey    string // API key, empty disables the provider
	Model     string // model name
	Endpoint  string // messages API endpoint
	Version   string // anthropic-version header value
	MaxTokens int    // maximum tokens in the generated recommendation
}

// OpenAISettings contains settings for the OpenAI chat completions API.
type OpenAISettings struct {
	APIKey    string // API key, empty disables the provider
	Model     string // model name
	BaseURL   string // optional API base URL override
	MaxTokens int    // maximum tokens in the generated recommendation
}

// AdvisorSettings contains settings for the narrative recommendation generator.
type AdvisorSettings struct {
	Provider  string        // none, anthropic or openai
	Locale    string        // fr or en, used by the offline fallback text
	Timeout   time.Duration // request timeout for remote providers
	RateLimit float64       // maximum remote requests per second, 0 disables limiting
	RateBurst int           // requests allowed back to back before the rate applies
	Anthropic AnthropicSettings
	OpenAI    OpenAISettings
}

// AnalysisSettings contains settings for the analysis pipeline.
type AnalysisSettings struct {
	UpwellingDefault float64 // upwelling index used when no measurement is available
}

// WebServerSettings contains settings for the HTTP API.
type WebServerSettings struct {
	Enabled bool      // true to enable the HTTP API
	Listen  string    // IP address and port to listen on
	Debug   bool      // true to enable request debug logging
	Log     LogConfig // logging configuration for the web server
}

// MQTTSettings contains settings for MQTT integration.
type MQTTSettings struct {
	Enabled  bool   // true to enable MQTT
	Broker   string // MQTT (tcp://host:port)
	Topic    string // MQTT topic prefix, species code is appended
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // true to publish decisions as retained messages

	RetrySettings RetrySettings // retry policy for failed publications
}

// RetrySettings contains settings for retrying failed publications.
type RetrySettings struct {
	Enabled           bool    // true to retry failed publications
	MaxRetries        int     // maximum number of retry attempts
	InitialDelay      int     // initial delay before first retry in seconds
	MaxDelay          int     // maximum delay between retries in seconds
	BackoffMultiplier float64 // multiplier for exponential backoff
}

// PushSettings contains settings for push notifications sent through shoutrrr.
type PushSettings struct {
	Enabled bool          // true to send rest decisions as push notifications
	URLs    []string      // shoutrrr service URLs, e.g. telegram://token@telegram?chats=@channel
	Timeout time.Duration // per-send timeout

	RetrySettings RetrySettings // retry policy for failed notifications
}

// NotificationSettings contains settings for outbound notifications.
type NotificationSettings struct {
	Push PushSettings
}

// TelemetrySettings contains settings for telemetry.
type TelemetrySettings struct {
	Enabled bool   // true to enable Prometheus compatible telemetry endpoint
	Listen  string // IP address and port to listen on
}

// Settings contains all configuration options for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string    // name of this node, reported in published decisions
		Log  LogConfig // logging configuration
	}

	Species   SpeciesSettings   // species catalog configuration
	Ocean     OceanSettings     // SST provider configuration
	Advisor   AdvisorSettings   // recommendation text configuration
	Analysis  AnalysisSettings  // analysis pipeline configuration
	WebServer WebServerSettings // HTTP API configuration
	Telemetry TelemetrySettings // Prometheus endpoint configuration
	MQTT      MQTTSettings      // decision publication configuration

	Notification NotificationSettings // push notification configuration
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // Path to the log file
	Rotation RotationType // Type of log rotation
	MaxSize  int64        // Max size in bytes for RotationSize
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into the settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// function defined in defaults.go
	setDefaultConfig()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Invalid values are reported and left to ValidateSettings
	if err := bindEnvVars(); err != nil {
		log.Printf("Warning: %v", err)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first so the replace is atomic
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// Rename fails across devices, fall back to copy & delete
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}
