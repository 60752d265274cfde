// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Default values shared with packages that must work without loaded settings.
const (
	DefaultOceanEndpoint    = "https://www.ncei.noaa.gov/erddap/griddap/ncdc_oisst_v2_avhrr_by_time_zlev_lat_lon.json"
	DefaultOceanLatitude    = 23.875
	DefaultOceanLongitude   = -15.875
	DefaultOceanTimeout     = 5 * time.Second
	DefaultFallbackSST      = 16.0
	DefaultFallbackSource   = "local cache"
	DefaultFallbackDate     = "2026-02-21"
	DefaultUpwellingIndex   = 0.5
	DefaultAnthropicModel   = "claude-sonnet-4-20250514"
	DefaultAnthropicURL     = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicVersion = "2023-06-01"
	DefaultAdvisorMaxTokens = 300
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BAHRIA")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "logs/bahria.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 10485760)

	viper.SetDefault("species.file", "")

	viper.SetDefault("ocean.provider", "erddap")
	viper.SetDefault("ocean.endpoint", DefaultOceanEndpoint)
	viper.SetDefault("ocean.latitude", DefaultOceanLatitude)
	viper.SetDefault("ocean.longitude", DefaultOceanLongitude)
	viper.SetDefault("ocean.timeout", DefaultOceanTimeout)
	viper.SetDefault("ocean.retrypreviousday", true)
	viper.SetDefault("ocean.cachettl", 24*time.Hour)
	viper.SetDefault("ocean.ratelimit", 1.0)
	viper.SetDefault("ocean.rateburst", 2)
	viper.SetDefault("ocean.fallback.sst", DefaultFallbackSST)
	viper.SetDefault("ocean.fallback.source", DefaultFallbackSource)
	viper.SetDefault("ocean.fallback.date", DefaultFallbackDate)

	viper.SetDefault("advisor.provider", "none")
	viper.SetDefault("advisor.locale", "fr")
	viper.SetDefault("advisor.timeout", 15*time.Second)
	viper.SetDefault("advisor.ratelimit", 0.5)
	viper.SetDefault("advisor.rateburst", 2)
	viper.SetDefault("advisor.anthropic.apikey", "")
	viper.SetDefault("advisor.anthropic.model", DefaultAnthropicModel)
	viper.SetDefault("advisor.anthropic.endpoint", DefaultAnthropicURL)
	viper.SetDefault("advisor.anthropic.version", DefaultAnthropicVersion)
	viper.SetDefault("advisor.anthropic.maxtokens", DefaultAdvisorMaxTokens)
	viper.SetDefault("advisor.openai.apikey", "")
	viper.SetDefault("advisor.openai.model", "gpt-4o-mini")
	viper.SetDefault("advisor.openai.baseurl", "")
	viper.SetDefault("advisor.openai.maxtokens", DefaultAdvisorMaxTokens)

	viper.SetDefault("analysis.upwellingdefault", DefaultUpwellingIndex)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.listen", "0.0.0.0:8080")
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.log.enabled", false)
	viper.SetDefault("webserver.log.path", "logs/api.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 10485760)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "bahria/decisions")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.retain", true)
	viper.SetDefault("mqtt.retrysettings.enabled", true)
	viper.SetDefault("mqtt.retrysettings.maxretries", 3)
	viper.SetDefault("mqtt.retrysettings.initialdelay", 5)
	viper.SetDefault("mqtt.retrysettings.maxdelay", 300)
	viper.SetDefault("mqtt.retrysettings.backoffmultiplier", 2.0)

	viper.SetDefault("notification.push.enabled", false)
	viper.SetDefault("notification.push.urls", []string{})
	viper.SetDefault("notification.push.timeout", 10*time.Second)
	viper.SetDefault("notification.push.retrysettings.enabled", true)
	viper.SetDefault("notification.push.retrysettings.maxretries", 3)
	viper.SetDefault("notification.push.retrysettings.initialdelay", 30)
	viper.SetDefault("notification.push.retrysettings.maxdelay", 600)
	viper.SetDefault("notification.push.retrysettings.backoffmultiplier", 2.0)
}
