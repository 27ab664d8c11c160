package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/marketplace-backend/config"
	"github.com/rs/zerolog"
)

// Output formats accepted in LoggingConfig.Format
const (
	FormatJSON     = "json"
	FormatJSONFile = "json-file"
	FormatConsole  = "console"
)

type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a structured logger with validation and defaults
func NewLogger(cfg *config.LoggingConfig) (*Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}

	format := cfg.Format
	if format == "" {
		format = FormatJSON
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "marketplace-backend"
	}

	// Validate log level early to fail fast
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %v", level, err)
	}

	var output io.Writer
	switch format {
	case FormatConsole:
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	case FormatJSONFile:
		file, err := openDailyLogFile("./logs", serviceName)
		if err != nil {
			return nil, err
		}
		output = io.MultiWriter(os.Stdout, file)
	case FormatJSON:
		output = os.Stdout
	default:
		return nil, fmt.Errorf("invalid log format '%s'", format)
	}

	logger := zerolog.New(output).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{logger: logger}, nil
}

// New wraps an existing zerolog logger
func New(l zerolog.Logger) *Logger {
	return &Logger{logger: l}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

func openDailyLogFile(dir, serviceName string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	path := fmt.Sprintf("%s/%s-%s.log", dir, serviceName, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}
	return file, nil
}

func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

// ErrorErr logs msg at error level with err attached as the "error" field
func (l *Logger) ErrorErr(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

func (l *Logger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

// WithComponent returns a logger instance with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// WithField returns a child logger carrying an extra string field
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{
		logger: l.logger.With().Str(key, value).Logger(),
	}
}
