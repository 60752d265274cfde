package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bahria/bahria-go/internal/conf"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
	fileLogger          *slog.Logger
	fileCloser          func() error
	rotation            = conf.LogConfig{Rotation: conf.RotationDaily}
	loggersMu           sync.RWMutex
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// replaceLevelNames renders custom levels by name in every handler.
func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level, ok := a.Value.Any().(slog.Level)
		if !ok {
			return a
		}
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system with structured and human-readable loggers.
// It configures JSON output for structured logs and Text output for human-readable logs.
func Init() {
	SetOutput(os.Stdout, os.Stderr)
}

// SetLevel sets the minimum logging level for both structured and human-readable loggers.
func SetLevel(level slog.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	setHandlers(os.Stdout, os.Stderr, level, level)
}

// SetOutput allows redirecting logger output, e.g., to a buffer in tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	setHandlers(structuredOutput, humanReadableOutput, slog.LevelDebug, slog.LevelInfo)
}

func setHandlers(structuredOutput, humanReadableOutput io.Writer, structuredLevel, humanLevel slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOutput, &slog.HandlerOptions{
		Level:       structuredLevel,
		ReplaceAttr: replaceLevelNames,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanReadableOutput, &slog.HandlerOptions{
		Level:       humanLevel,
		ReplaceAttr: replaceLevelNames,
	}))
	slog.SetDefault(structuredLogger)
}

// Configure applies the main log settings. When file logging is enabled every
// service logger obtained through ForService writes to the rotated log file.
func Configure(cfg conf.LogConfig, debug bool) error {
	loggersMu.Lock()
	rotation = cfg
	previousCloser := fileCloser
	fileLogger, fileCloser = nil, nil
	loggersMu.Unlock()

	if previousCloser != nil {
		_ = previousCloser()
	}

	if !cfg.Enabled {
		return nil
	}

	levelVar := new(slog.LevelVar)
	if debug {
		levelVar.Set(slog.LevelDebug)
	}

	logger, closer, err := NewFileLogger(cfg.Path, "", levelVar)
	if err != nil {
		return err
	}

	loggersMu.Lock()
	fileLogger, fileCloser = logger, closer
	loggersMu.Unlock()
	return nil
}

// Close releases the shared log file, if any.
func Close() error {
	loggersMu.Lock()
	closer := fileCloser
	fileLogger, fileCloser = nil, nil
	loggersMu.Unlock()

	if closer == nil {
		return nil
	}
	return closer()
}

// Structured returns the globally configured structured (JSON) logger.
// Returns nil if Init() has not been called.
func Structured() *slog.Logger {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable (Text) logger.
// Returns nil if Init() has not been called.
func HumanReadable() *slog.Logger {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return humanReadableLogger
}

// ForService returns a logger with the 'service' attribute added. The shared
// log file is preferred, then the structured logger. Before Init() it discards.
func ForService(serviceName string) *slog.Logger {
	loggersMu.RLock()
	defer loggersMu.RUnlock()

	switch {
	case fileLogger != nil:
		return fileLogger.With("service", serviceName)
	case structuredLogger != nil:
		return structuredLogger.With("service", serviceName)
	default:
		return slog.New(slog.DiscardHandler).With("service", serviceName)
	}
}

// --- Convenience functions using the default logger ---

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs a fatal message using the custom Fatal level and then exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// Trace logs a trace message using the custom Trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}

// NewFileLogger creates a new slog.Logger instance configured to write JSON logs
// to the specified file path using lumberjack for rotation based on the configured rotation.
// A non-empty serviceName is added as the 'service' attribute to all records.
// It returns the logger, a function to close the underlying log writer, and an error if setup fails.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	loggersMu.RLock()
	logConf := rotation
	loggersMu.RUnlock()

	logWriter := &lumberjack.Logger{
		Filename: filePath,
		Compress: false,
	}
	logWriter.MaxSize, logWriter.MaxBackups, logWriter.MaxAge = rotationLimits(logConf)

	fileHandler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})

	logger := slog.New(fileHandler)
	if serviceName != "" {
		logger = logger.With("service", serviceName)
	}

	return logger, logWriter.Close, nil
}

// rotationLimits maps a log configuration to lumberjack max size (MB), backups and age (days).
func rotationLimits(logConf conf.LogConfig) (maxSizeMB, maxBackups, maxAge int) {
	maxSizeMB = 100
	maxBackups = 3
	maxAge = 28

	if configMaxSizeMB := int(logConf.MaxSize / (1024 * 1024)); configMaxSizeMB > 0 {
		maxSizeMB = configMaxSizeMB
	}

	switch logConf.Rotation {
	case conf.RotationDaily:
		maxAge = 1
		maxBackups = 30
	case conf.RotationWeekly:
		maxAge = 7
		maxBackups = 4
	case conf.RotationSize:
	default:
		slog.Warn("Unknown log rotation type in config, using size-based defaults", "configuredType", logConf.Rotation)
	}

	return maxSizeMB, maxBackups, maxAge
}
