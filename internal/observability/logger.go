package observability

import (
	"io"
	"log/slog"
	"os"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/lmittmann/tint"

	"github.com/couchcryptid/flood-risk-service/internal/config"
)

const serviceName = "flood-risk-service"

// NewLogger builds the process logger and installs it as the slog default.
// LOG_FORMAT=text switches to a colorized console handler; anything else
// logs JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == "text" {
		logger := newTextLogger(os.Stdout, cfg.LogLevel)
		slog.SetDefault(logger)
		return logger
	}
	return sharedobs.NewLogger(cfg.LogLevel.String(), cfg.LogFormat).With("service", serviceName)
}

func newTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
