package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"propertyregister/server/config"
	"propertyregister/server/internal/database"
	"propertyregister/server/internal/importer"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.NewDatabase(cfg.DSN())
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if err := db.MigrateSchema(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := importer.New(db, cfg, logger).Run(ctx)
	if err != nil {
		// Row errors never reach here; only a directory-level failure does.
		logger.WithError(err).Error("Import run failed")
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"files":        run.Files,
		"failed_files": run.FailedFiles,
		"processed":    run.Processed,
		"errors":       run.Errors,
	}).Info("Import run completed")
}
