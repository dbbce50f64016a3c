package seeder

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/curata/curata/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Curata Opportunity Seeder
=========================

A concurrent tool for seeding a running Curata service with synthetic
opportunities and checking the ranking and deadline endpoints afterwards.

Usage:
  go run cmd/seed-opportunities/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -count int
        Number of opportunities to generate and submit (default 1000)
  -top int
        Number of ranked entries to fetch (default 25)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated opportunities (default: generated_opportunities_TIMESTAMP.json)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-opportunities/main.go

  # Seed with custom parameters
  go run cmd/seed-opportunities/main.go -count 5000 -workers 16 -url http://localhost:8080

  # Seed with verbose output
  go run cmd/seed-opportunities/main.go -verbose -count 1000

  # Seed with custom log file
  go run cmd/seed-opportunities/main.go -count 5000 -log my_seed.log
`)
}
