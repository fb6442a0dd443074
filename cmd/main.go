// Package main is the entry point for the meal-ledger application.
//
// @title           Meal Ledger API
// @version         1.0.0
// @description     API for subscription meal orders: leaves, per-meal attendance and the daily reconciliation sweep.
//
//	Every order keeps one attendance record per day of its period. Leaves mark planned meals as skipped,
//	attendance marks follow each meal from packed to delivered, and the sweep moves orders between
//	upcoming, active and expired as the calendar advances.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/meal-ledger
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @tag.name        Orders
// @tag.description Order lifecycle and plan or period edits
//
// @tag.name        Leaves
// @tag.description Leave requests within an order period
//
// @tag.name        Attendance
// @tag.description Per-meal attendance marks
//
// @tag.name        Statistics
// @tag.description Daily kitchen counts
//
// @tag.name        Activity
// @tag.description Order history and activity log search
//
// @tag.name        Sweep
// @tag.description Reconciliation sweep
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/guttosm/meal-ledger/docs" // swagger docs

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	a, err := app.InitializeApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	a.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := app.NewServer(a.Router, cfg.Server)
	server.OnShutdown(a.Close)

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
