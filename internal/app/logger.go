// Package app provides logger initialization.
package app

import (
	"github.com/rs/zerolog/log"

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/logger"
	"github.com/guttosm/meal-ledger/internal/middleware"
)

// InitializeLogger configures the process logger.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(cfg.Level, cfg.Pretty)
}

// InitializeAuditLogger starts persisting the activity log: served requests
// and ledger mutations. Without a database the entries only reach the
// process log.
func InitializeAuditLogger(dbComponents *DatabaseComponents) {
	if dbComponents == nil || dbComponents.Activity == nil {
		log.Info().Msg("Activity log persistence disabled")
		return
	}
	middleware.InitAsyncLogger(dbComponents.Activity, middleware.DefaultAsyncLoggerConfig())
}
