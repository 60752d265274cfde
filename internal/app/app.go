// Package app wires the settings into the analysis pipeline and its optional
// outer surfaces: HTTP API, telemetry endpoint, MQTT publication and push
// notifications.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/bahria/bahria-go/internal/advisor"
	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/analysis/jobqueue"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/mqtt"
	"github.com/bahria/bahria-go/internal/notification"
	"github.com/bahria/bahria-go/internal/observability"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/privacy"
	"github.com/bahria/bahria-go/internal/species"
)

// App holds the shared components built from the settings.
type App struct {
	Settings  *conf.Settings
	Catalog   *species.Catalog
	Metrics   *observability.Metrics
	Ocean     ocean.Provider
	Advisor   advisor.Generator
	Service   *analysis.Service
	Publisher *mqtt.Publisher            // nil unless MQTT is enabled
	Notifier  *notification.PushNotifier // nil unless push notifications are enabled
	Queue     *jobqueue.JobQueue         // delivery queue, nil when nothing is published
}

const (
	// publishDrainTimeout bounds how long Close waits for queued publications.
	publishDrainTimeout = 10 * time.Second

	// deliveryTimeoutMargin is added to the slowest channel's own timeouts.
	deliveryTimeoutMargin = 5 * time.Second
)

type options struct {
	transport  http.RoundTripper
	mqttClient mqtt.Client
	pushSender notification.Sender
	offline    bool
}

// Option customizes New.
type Option func(*options)

// WithTransport replaces the HTTP transport of the ocean and advisor providers.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithMQTTClient replaces the broker client used when MQTT is enabled.
func WithMQTTClient(c mqtt.Client) Option {
	return func(o *options) { o.mqttClient = c }
}

// WithPushSender replaces the shoutrrr sender used when push notifications are enabled.
func WithPushSender(s notification.Sender) Option {
	return func(o *options) { o.pushSender = s }
}

// WithOffline forces the static SST provider and the fallback recommendation.
func WithOffline() Option {
	return func(o *options) { o.offline = true }
}

// New builds the application components.
func New(settings *conf.Settings, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.ForService("app")

	catalog, err := species.Open(settings.Species.File)
	if err != nil {
		return nil, err
	}

	m, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	oceanSettings := settings.Ocean
	advisorSettings := settings.Advisor
	if o.offline {
		oceanSettings.Provider = ocean.ProviderStatic
		advisorSettings.Provider = advisor.ProviderNone
	}

	oceanOpts := []ocean.Option{ocean.WithMetrics(m.Ocean)}
	var advisorOpts []advisor.Option
	if o.transport != nil {
		oceanOpts = append(oceanOpts, ocean.WithTransport(o.transport))
		advisorOpts = append(advisorOpts, advisor.WithTransport(o.transport))
	}

	provider, err := ocean.New(oceanSettings, oceanOpts...)
	if err != nil {
		return nil, err
	}

	generator, err := advisor.New(advisorSettings, advisorOpts...)
	if err != nil {
		return nil, err
	}

	a := &App{
		Settings: settings,
		Catalog:  catalog,
		Metrics:  m,
		Ocean:    provider,
		Advisor:  generator,
	}

	serviceOpts := []analysis.Option{
		analysis.WithMetrics(m.Analysis),
		analysis.WithUpwellingDefault(settings.Analysis.UpwellingDefault),
		analysis.WithLocale(settings.Advisor.Locale),
	}

	if settings.MQTT.Enabled && !o.offline {
		client := o.mqttClient
		if client == nil {
			client, err = mqtt.NewClient(settings, m.MQTT)
			if err != nil {
				return nil, err
			}
		}
		a.Publisher = mqtt.NewPublisher(client, settings.MQTT.Topic, settings.Main.Name)
		logger.Info("MQTT publication enabled",
			"broker", privacy.SanitizeURL(settings.MQTT.Broker),
			"topic", settings.MQTT.Topic,
			"retry", settings.MQTT.RetrySettings.Enabled)
	}

	if settings.Notification.Push.Enabled && !o.offline {
		var pushOpts []notification.Option
		if o.pushSender != nil {
			pushOpts = append(pushOpts, notification.WithSender(o.pushSender))
		}
		a.Notifier, err = notification.NewPushNotifier(settings.Notification.Push, settings.Main.Name, pushOpts...)
		if err != nil {
			return nil, err
		}
		logger.Info("Push notifications enabled", "services", len(settings.Notification.Push.URLs))
	}

	if a.Publisher != nil || a.Notifier != nil {
		a.Queue = jobqueue.New(jobqueue.WithExecTimeout(
			deliveryAttemptTimeout(settings, a.Publisher != nil, a.Notifier != nil)))
		a.Queue.Start(context.Background())
	}
	if a.Publisher != nil {
		serviceOpts = append(serviceOpts, analysis.WithPublisher(analysis.NewQueuedPublisher(
			"mqtt", a.Publisher, a.Queue, jobqueue.RetryConfigFromSettings(settings.MQTT.RetrySettings))))
	}
	if a.Notifier != nil {
		serviceOpts = append(serviceOpts, analysis.WithPublisher(analysis.NewQueuedPublisher(
			"push", a.Notifier, a.Queue, jobqueue.RetryConfigFromSettings(settings.Notification.Push.RetrySettings))))
	}

	a.Service = analysis.NewService(catalog, provider, generator, serviceOpts...)

	logger.Debug("Application components initialized",
		"species", len(catalog.List()),
		"ocean_provider", oceanSettings.Provider,
		"advisor_provider", advisorSettings.Provider)

	return a, nil
}

// deliveryAttemptTimeout bounds one queued delivery attempt so it covers the
// slowest enabled channel: a broker connect plus publish, or one push send.
func deliveryAttemptTimeout(settings *conf.Settings, mqttEnabled, pushEnabled bool) time.Duration {
	var d time.Duration
	if mqttEnabled {
		cfg := mqtt.DefaultConfig()
		d = cfg.ConnectTimeout + cfg.PublishTimeout
	}
	if pushEnabled {
		d = max(d, settings.Notification.Push.Timeout)
	}
	return d + deliveryTimeoutMargin
}

// Close waits briefly for queued deliveries, stops the queue and releases
// the broker connection, if any.
func (a *App) Close() {
	if a.Queue != nil {
		if !a.Queue.Drain(publishDrainTimeout) {
			logging.ForService("app").Warn("Closing with rest decisions still undelivered",
				"pending", a.Queue.Stats().PendingJobs)
		}
		_ = a.Queue.Stop(publishDrainTimeout)
	}
	if a.Publisher != nil {
		a.Publisher.Close()
	}
}
