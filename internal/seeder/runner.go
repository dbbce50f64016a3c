package seeder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/curata/curata/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete seeding run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting curata seeding run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("opportunities", config.NumOpps),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate opportunities
	opps, err := generateOpportunities(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("opportunity generation failed: %w", err)
	}

	// Step 3: Submit opportunities concurrently
	if err := submitOpportunities(ctx, config, opps, stats); err != nil {
		return fmt.Errorf("opportunity submission failed: %w", err)
	}

	// Step 4: Wait for ingestion to settle
	logger.Get().Info(ctx, "waiting for opportunities to be enriched and cataloged")
	time.Sleep(IngestSettleDelay)

	// Step 5: Rank the catalog for the seed profile
	ranked, err := fetchRanking(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	// Step 6: Get upcoming deadlines
	deadlines, err := fetchDeadlines(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("deadline retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(ctx, config, opps, ranked, deadlines); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save opportunities to file
	if err := saveOpportunitiesToFile(ctx, config, opps); err != nil {
		logger.Get().Warn(ctx, "failed to save opportunities to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveOpportunitiesToFile saves the generated opportunities to a JSON file.
func saveOpportunitiesToFile(ctx context.Context, config *Config, opps []Opportunity) error {
	if len(opps) == 0 {
		return fmt.Errorf("no opportunities to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_opportunities_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write opportunities to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, opp := range opps {
		jsonData, err := marshalJSON(opp)
		if err != nil {
			return fmt.Errorf("failed to marshal opportunity %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write opportunity %d: %w", i, err)
		}

		// Add comma except for last record
		if i < len(opps)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "opportunities saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, oppsPerSecond float64

	if stats.OppsSubmitted > 0 {
		acceptRate = float64(stats.OppsAccepted) / float64(stats.OppsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		oppsPerSecond = float64(stats.OppsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("oppsGenerated", stats.OppsGenerated),
		logger.Int("oppsSubmitted", stats.OppsSubmitted),
		logger.Int("oppsAccepted", stats.OppsAccepted),
		logger.Int("oppsDuplicate", stats.OppsDuplicate),
		logger.Int("oppsFailed", stats.OppsFailed),
		logger.Int("rankedRetrieved", stats.RankedRetrieved),
		logger.Int("deadlineEntries", stats.DeadlineEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("oppsPerSecond", oppsPerSecond))
}
