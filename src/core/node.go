package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Package-level logger
var logger *slog.Logger

// initLogger initializes the structured logger based on the log level
func initLogger(logLevel string) {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler)
}

// WhisprNode is the single authoritative registry replica. One mutex
// serializes every caller-facing operation, so each multi-step transition
// (validate, allocate ID, mutate report, mutate user, append message) is
// atomic with respect to every other call. The lock is never held across
// external I/O.
type WhisprNode struct {
	mu       sync.Mutex
	store    *Store
	evidence EvidenceStore
	cfg      *Config

	// now is the clock; replaced in tests for deterministic timestamps
	now func() time.Time
}

// NewWhisprNode initializes a registry node with an empty store
func NewWhisprNode(cfg *Config) *WhisprNode {
	return &WhisprNode{
		store:    NewStore(),
		evidence: NewMemoryEvidenceStore(cfg.MaxEvidenceSizeBytes),
		cfg:      cfg,
		now:      time.Now,
	}
}

func main() {
	cfg := LoadConfig()

	initLogger(cfg.LogLevel)

	node := NewWhisprNode(cfg)

	if err := node.LoadSnapshot(cfg.DataDir); err != nil {
		logger.Error("Failed to load registry snapshot", "dataDir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	if err := node.StartServer(cfg.Port); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	if err := node.SaveSnapshot(cfg.DataDir); err != nil {
		logger.Error("Failed to save registry snapshot", "dataDir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
}
