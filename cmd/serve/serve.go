// Package serve implements the serve command.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bahria/bahria-go/internal/app"
	"github.com/bahria/bahria-go/internal/conf"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the analysis API, the Prometheus endpoint when telemetry is enabled, and publish rest decisions over MQTT when enabled.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(settings)
			if err != nil {
				return err
			}

			quitChan := make(chan struct{})
			app.MonitorSignals(quitChan)
			return a.Serve(quitChan)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		cmd.PrintErrf("error setting up flags: %v\n", err)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Listen, "listen", viper.GetString("webserver.listen"), "Listen address and port of the HTTP API")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "telemetry-listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")
	cmd.Flags().BoolVar(&settings.MQTT.Enabled, "mqtt", viper.GetBool("mqtt.enabled"), "Publish rest decisions to the MQTT broker")
	cmd.Flags().StringVar(&settings.MQTT.Broker, "broker", viper.GetString("mqtt.broker"), "MQTT broker URL (tcp://host:port)")

	bindings := map[string]string{
		"webserver.listen":  "listen",
		"telemetry.enabled": "telemetry",
		"telemetry.listen":  "telemetry-listen",
		"mqtt.enabled":      "mqtt",
		"mqtt.broker":       "broker",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
