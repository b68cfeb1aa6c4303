package utility

import (
	"io"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ContextKeyLogger is where LoggerMiddleware stores the request logger.
const ContextKeyLogger = "logger"

// LoggerFromContext returns the request-scoped logger, or the global logger
// when the middleware did not run.
func LoggerFromContext(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(ContextKeyLogger).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

// SetupLogger configures the global zerolog logger. Development mode writes a
// human-readable console format; otherwise JSON lines go to w.
func SetupLogger(w io.Writer, level string, development bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if development {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger
}
