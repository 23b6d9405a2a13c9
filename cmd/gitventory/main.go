// Package main is the entry point for the gitventory dynamic inventory.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/stackbound/gitventory/cmd/gitventory/app"
)

// getLogLevel parses the GITVENTORY_LOG_LEVEL environment variable, falling
// back to LOG_LEVEL. Defaults to slog.LevelInfo if neither is set or if the
// value is invalid.
func getLogLevel() slog.Level {
	v := viper.New()
	v.SetEnvPrefix("GITVENTORY")
	v.AutomaticEnv()

	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}

	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelStr)
		return slog.LevelInfo
	}
}

func main() {
	// Structured logs go to stderr; stdout carries only the inventory
	// document.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: getLogLevel()}))
	slog.SetDefault(logger)

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
