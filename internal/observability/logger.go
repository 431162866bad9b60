package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs an app-tagged console logger as the global logger.
// Binaries that write payloads to stdout log to stderr instead.
func InitLogger(app string, stderr bool) zerolog.Logger {
	out := os.Stdout
	if stderr {
		out = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
