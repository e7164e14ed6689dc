// Package main — the bot's entry point.
// Loads configuration, initializes the application and runs it.
// Supports graceful shutdown on SIGINT/SIGTERM: in-flight ledger writes are
// drained before the database pool is closed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/app"
	"github.com/YTstyo/Dis-karm/internal/config"
)

func main() {
	setupLogging()

	log.Info("=== Karma bot starting ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Could not load configuration")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize application")
	}
	defer application.DB.Close()

	application.Scheduler.Start(ctx)
	defer application.Scheduler.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run the bot; botDone closes once the update loop has drained.
	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		application.Bot.Start(ctx)
	}()

	log.Info("=== Karma bot ready ===")

	sig := <-quit
	log.Infof("Received signal %s, shutting down...", sig)

	cancel()
	<-botDone

	log.Info("=== Karma bot stopped ===")
}

// setupLogging configures the log format.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
