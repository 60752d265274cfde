package app

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bahria/bahria-go/internal/api"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/observability"
)

// Serve runs the HTTP API and, when enabled, the telemetry endpoint until
// quitChan is closed.
func (a *App) Serve(quitChan chan struct{}) error {
	logger := logging.ForService("app")

	if !a.Settings.WebServer.Enabled && !a.Settings.Telemetry.Enabled {
		return errors.Newf("nothing to serve: webserver and telemetry are both disabled").
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}

	var wg sync.WaitGroup

	if a.Settings.Telemetry.Enabled {
		endpoint, err := observability.NewEndpoint(a.Settings, a.Metrics)
		if err != nil {
			return err
		}
		endpoint.Start(&wg, quitChan)
	}

	var server *api.Server
	if a.Settings.WebServer.Enabled {
		var err error
		server, err = api.New(a.Settings, a.Catalog, a.Service,
			api.WithMetrics(a.Metrics),
			api.WithOceanProvider(a.Ocean))
		if err != nil {
			return err
		}
		if err := server.Start(); err != nil {
			return err
		}
	}

	<-quitChan
	logger.Info("Shutting down")

	var shutdownErr error
	if server != nil {
		shutdownErr = server.Shutdown()
	}
	wg.Wait()
	a.Close()

	return shutdownErr
}

// MonitorSignals closes quitChan on SIGINT or SIGTERM.
func MonitorSignals(quitChan chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		signal.Stop(sigChan)
		close(quitChan)
	}()
}
