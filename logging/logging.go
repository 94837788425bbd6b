package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the process-wide logger.
type Config struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "json" or "console"
}

var (
	defaultLogger zerolog.Logger
	once          sync.Once
	mu            sync.RWMutex
)

func initDefault() {
	once.Do(func() {
		defaultLogger = newLogger(os.Stdout, "console").Level(zerolog.InfoLevel)
	})
}

func newLogger(w io.Writer, format string) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Init replaces the default logger according to cfg.
func Init(cfg Config) {
	initDefault()
	l := newLogger(os.Stdout, cfg.Format).Level(parseLevel(cfg.Level))

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// GetDefaultLogger returns the process-wide logger.
func GetDefaultLogger() *zerolog.Logger {
	initDefault()
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// GetSubsystemLogger returns the default logger tagged with a component name.
func GetSubsystemLogger(component string) *zerolog.Logger {
	l := GetDefaultLogger().With().Str("component", component).Logger()
	return &l
}

// SetLevel changes the level of the default logger. Unknown levels map to info.
func SetLevel(level string) {
	initDefault()
	mu.Lock()
	defaultLogger = defaultLogger.Level(parseLevel(level))
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
