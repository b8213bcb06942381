package logger_test

import (
	"errors"

	"github.com/wonny/salesdesk/backend/pkg/config"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("API server starting")
	log.Warnf("removed %d rows without transaction id", 2)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"version": "3f2a9c0d4b5e4f6a8b7c9d0e1f2a3b4c",
		"rows":    1200,
		"source":  "vendas.xlsx",
	}).Info("Dataset stored")
}

// Example_withFile demonstrates logging to stdout and a file at once
func Example_withFile() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
		LogFile:   "logs/app.log",
	}
	defer logger.CloseFiles()

	log := logger.New(cfg)

	err := errors.New("missing required columns: regiao")
	log.WithError(err).Error("Upload rejected")
}
