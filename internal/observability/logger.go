package observability

import (
	"github.com/danmuck/wydcodec/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs a logger built from cfg and tagged with app as the
// global logger and returns it.
func InitLogger(app string, cfg logging.Config) zerolog.Logger {
	logger := logging.New(cfg).With().Str("app", app).Logger()
	zerolog.SetGlobalLevel(cfg.Level)
	log.Logger = logger
	return logger
}
