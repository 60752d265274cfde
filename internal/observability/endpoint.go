package observability

import (
	"context"
	"net/http"
	"sync"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/logging"
	metricspkg "github.com/bahria/bahria-go/internal/observability/metrics"
)

// Endpoint serves the Prometheus scrape endpoint on its own listener.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	debug         bool
	metrics       *Metrics
}

// NewEndpoint creates a telemetry Endpoint. It returns an error when
// telemetry is disabled in the settings.
func NewEndpoint(settings *conf.Settings, metrics *Metrics) (*Endpoint, error) {
	if !settings.Telemetry.Enabled {
		return nil, errors.Newf("telemetry not enabled in settings").
			Component("observability").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return &Endpoint{
		listenAddress: settings.Telemetry.Listen,
		debug:         settings.Debug,
		metrics:       metrics,
	}, nil
}

// Handler returns the mux served by the endpoint.
func (e *Endpoint) Handler() http.Handler {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)
	if e.debug {
		RegisterDebugHandlers(mux)
	}
	return mux
}

// Start runs the HTTP server in a goroutine tracked by wg and shuts it down
// once quitChan is closed.
func (e *Endpoint) Start(wg *sync.WaitGroup, quitChan <-chan struct{}) {
	logger := logging.ForService("telemetry")

	e.server = &http.Server{
		Addr:    e.listenAddress,
		Handler: e.Handler(),
	}

	wg.Go(func() {
		logger.Info("Telemetry endpoint starting", "address", e.listenAddress)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Telemetry HTTP server error", "error", err)
		}
	})

	wg.Go(func() {
		<-quitChan
		logger.Info("Stopping telemetry server")
		ctx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
		defer cancel()
		if err := e.server.Shutdown(ctx); err != nil {
			logger.Error("Telemetry server shutdown error", "error", err)
		}
	})
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}
