// internal/api/v2/api.go
package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/intake"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/privacy"
	"github.com/bahria/bahria-go/internal/species"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings
	Species  species.Store
	Ocean    ocean.Provider
	Analysis *analysis.Service

	apiLogger      *slog.Logger // Structured logger for API operations
	apiLoggerClose func() error // Function to close the log file
	startTime      time.Time
	now            func() time.Time
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger replaces the API logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.apiLogger = logger
	}
}

// WithClock sets the clock used for health timestamps and uptime.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates the API controller and registers its routes under /api/v2.
func New(e *echo.Echo, settings *conf.Settings, store species.Store, provider ocean.Provider,
	service *analysis.Service, opts ...Option) (*Controller, error) {
	if settings == nil || store == nil || service == nil {
		return nil, errors.Newf("api controller requires settings, species store and analysis service").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Controller{
		Echo:     e,
		Settings: settings,
		Species:  store,
		Ocean:    provider,
		Analysis: service,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiLogger == nil {
		c.initLogger()
	}
	c.startTime = c.now()

	c.Group = e.Group("/api/v2")
	c.initRoutes()

	return c, nil
}

// initLogger uses a dedicated rotated log file when configured, otherwise the
// shared service logger.
func (c *Controller) initLogger() {
	logConf := c.Settings.WebServer.Log
	if !logConf.Enabled {
		c.apiLogger = logging.ForService("api")
		return
	}

	levelVar := new(slog.LevelVar)
	if c.Settings.WebServer.Debug {
		levelVar.Set(slog.LevelDebug)
	}

	apiLogger, closeFunc, err := logging.NewFileLogger(logConf.Path, "api", levelVar)
	if err != nil {
		c.apiLogger = logging.ForService("api")
		c.apiLogger.Warn("Failed to initialize API file logger, using service logger", "path", logConf.Path, "error", err)
		return
	}
	c.apiLogger = apiLogger
	c.apiLoggerClose = closeFunc
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.initSpeciesRoutes()
	c.initOceanRoutes()
	c.initAnalysisRoutes()
}

// HealthCheck handles the API health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := c.now().Sub(c.startTime)

	provider := c.Settings.Ocean.Provider
	if c.Ocean == nil {
		provider = "none"
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":           "healthy",
		"version":          c.Settings.Version,
		"build_date":       c.Settings.BuildDate,
		"node":             c.Settings.Main.Name,
		"species_count":    len(c.Species.List()),
		"ocean_provider":   provider,
		"advisor_provider": c.Settings.Advisor.Provider,
		"mqtt_enabled":     c.Settings.MQTT.Enabled,
		"push_enabled":     c.Settings.Notification.Push.Enabled,
		"uptime":           uptime.String(),
		"uptime_seconds":   uptime.Seconds(),
		"timestamp":        c.now().Format(time.RFC3339),
	})
}

// Shutdown releases the API log file, if any.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			logging.ForService("api").Warn("Error closing API log file", "error", err)
		}
		c.apiLoggerClose = nil
	}
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Code          int               `json:"code"`
	CorrelationID string            `json:"correlation_id"`   // Unique identifier for tracking this error
	Fields        map[string]string `json:"fields,omitempty"` // per-field validation messages
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	var errorStr string
	if err != nil {
		errorStr = privacy.ScrubMessage(err.Error())
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
		Fields:        intake.Fields(err),
	}
}

// generateCorrelationID creates a unique identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorResp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	}
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		attrs = append(attrs, "category", enhanced.GetCategory(), "component", enhanced.GetComponent())
	}
	c.apiLogger.Log(ctx.Request().Context(), level, "API Error", attrs...)

	return ctx.JSON(code, errorResp)
}

// handleServiceError maps error categories to HTTP status codes.
func (c *Controller) handleServiceError(ctx echo.Context, err error, message string) error {
	switch {
	case errors.IsValidation(err):
		return c.HandleError(ctx, err, message, http.StatusBadRequest)
	case errors.IsNotFound(err):
		return c.HandleError(ctx, err, message, http.StatusNotFound)
	case errors.IsCategory(err, errors.CategoryConfiguration):
		return c.HandleError(ctx, err, message, http.StatusServiceUnavailable)
	case errors.IsCategory(err, errors.CategoryTimeout), errors.IsCategory(err, errors.CategoryCancellation):
		return c.HandleError(ctx, err, message, http.StatusGatewayTimeout)
	default:
		return c.HandleError(ctx, err, message, http.StatusInternalServerError)
	}
}
