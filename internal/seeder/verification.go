package seeder

import (
	"context"
	"fmt"
	"log"
)

// Number of submitted records spot-checked against the catalog.
const catalogSampleSize = 10

// verifyResults verifies the consistency of the ranking and deadline responses
// and spot-checks that submitted opportunities landed in the catalog.
func verifyResults(ctx context.Context, config *Config, opps []Opportunity, ranked []RankedEntry, deadlines []DeadlineEntry) error {
	log.Println("🔍 Verifying results...")

	if len(ranked) == 0 {
		return fmt.Errorf("no ranked entries to verify")
	}

	if err := verifyRankingOrder(ranked); err != nil {
		log.Printf("⚠️  Ranking order warning: %v", err)
	} else {
		log.Println("✅ Ranking order verified")
	}

	if len(deadlines) > 0 {
		if err := verifyDeadlineOrder(deadlines); err != nil {
			log.Printf("⚠️  Deadline order warning: %v", err)
		} else {
			log.Println("✅ Deadline order verified")
		}
	}

	if err := verifyCatalogSample(ctx, config, opps); err != nil {
		log.Printf("⚠️  Catalog spot-check warning: %v", err)
	} else {
		log.Println("✅ Catalog spot-check verified")
	}

	displayTopEntries(ranked, deadlines, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyRankingOrder checks that ranked entries are sorted by descending relevance.
func verifyRankingOrder(ranked []RankedEntry) error {
	for i := 1; i < len(ranked); i++ {
		if ranked[i].RelevanceScore > ranked[i-1].RelevanceScore {
			return fmt.Errorf("ranking not properly sorted: entry %d has higher score than entry %d",
				i, i-1)
		}
	}
	return nil
}

// verifyDeadlineOrder checks that deadline entries are sorted soonest first.
func verifyDeadlineOrder(deadlines []DeadlineEntry) error {
	for i := 1; i < len(deadlines); i++ {
		if deadlines[i].DaysRemaining < deadlines[i-1].DaysRemaining {
			return fmt.Errorf("deadlines not properly sorted: entry %d closes before entry %d",
				i, i-1)
		}
	}
	return nil
}

// verifyCatalogSample fetches a sample of submitted opportunities by ID.
func verifyCatalogSample(ctx context.Context, config *Config, opps []Opportunity) error {
	if len(opps) == 0 {
		return fmt.Errorf("no opportunities to spot-check")
	}

	sample := catalogSampleSize
	if len(opps) < sample {
		sample = len(opps)
	}

	client := newHTTPClient(config.Timeout)
	step := len(opps) / sample

	for i := 0; i < sample; i++ {
		opp := opps[i*step]
		url := config.BaseURL + "/opportunities/" + opp.ID

		resp, err := client.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", opp.ID, err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read response for %s: %w", opp.ID, err)
		}

		if resp.StatusCode != StatusOK {
			return fmt.Errorf("opportunity %s not in catalog: HTTP %d: %s", opp.ID, resp.StatusCode, string(body))
		}

		var got RankedEntry
		if err := unmarshalJSON(body, &got); err != nil {
			return fmt.Errorf("failed to parse response for %s: %w", opp.ID, err)
		}
		if got.ID != opp.ID {
			return fmt.Errorf("catalog returned %s for requested %s", got.ID, opp.ID)
		}
	}

	return nil
}

// displayTopEntries shows the top ranked opportunities and the soonest deadlines.
func displayTopEntries(ranked []RankedEntry, deadlines []DeadlineEntry, verbose bool) {
	topN := 10
	if len(ranked) < topN {
		topN = len(ranked)
	}

	log.Printf("🏆 Top %d ranked opportunities:", topN)
	for i := 0; i < topN; i++ {
		entry := ranked[i]
		log.Printf("   %d. %s (%s) - Score: %.3f", i+1, entry.Title, entry.Type, entry.RelevanceScore)
	}

	if len(deadlines) > 0 {
		deadlineTopN := topN
		if len(deadlines) < deadlineTopN {
			deadlineTopN = len(deadlines)
		}

		log.Printf("⏰ Next %d deadlines:", deadlineTopN)
		for i := 0; i < deadlineTopN; i++ {
			entry := deadlines[i]
			window := entry.ReminderWindow
			if window == "" {
				window = "-"
			}
			log.Printf("   %d. %s - %d days remaining (window: %s)",
				i+1, entry.Opportunity.Title, entry.DaysRemaining, window)
		}
	}

	if verbose {
		// Show some statistics
		if len(ranked) > 0 {
			avgScore := calculateAverageScore(ranked)
			maxScore := ranked[0].RelevanceScore
			minScore := ranked[len(ranked)-1].RelevanceScore

			log.Printf(`📊 Relevance statistics:
   Average: %.3f
   Maximum: %.3f
   Minimum: %.3f
`, avgScore, maxScore, minScore)
		}
	}
}

// calculateAverageScore calculates the average relevance score of ranked entries.
func calculateAverageScore(ranked []RankedEntry) float64 {
	if len(ranked) == 0 {
		return 0
	}

	sum := 0.0
	for _, entry := range ranked {
		sum += entry.RelevanceScore
	}

	return sum / float64(len(ranked))
}
