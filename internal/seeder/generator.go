package seeder

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/curata/curata/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor  = 1000000
	deadlineCaseDivisor = 6
)

// Constants for deadline generation ranges, in days.
const (
	imminentMin   = 1
	imminentRange = 2
	nearMin       = 3
	nearRange     = 5
	monthMin      = 8
	monthRange    = 23
	quarterMin    = 31
	quarterRange  = 60
	farMin        = 91
	farRange      = 120
	wideMin       = 1
	wideDayRange  = 210
)

// Constants for deadline horizon cases.
const (
	caseImminentDeadline = 0
	caseNearDeadline     = 1
	caseMonthDeadline    = 2
	caseQuarterDeadline  = 3
	caseFarDeadline      = 4
	caseWideDeadline     = 5
)

// Vocabulary pools for synthetic opportunity records.
var (
	opportunityTypes = []string{"exhibition", "grant", "residency", "call"}

	mediums = []string{
		"projection", "generative", "sculpture", "photography", "sound",
		"installation", "performance", "textile", "ceramics", "video",
	}

	themes = []string{
		"immersive", "climate", "memory", "urban", "light",
		"identity", "archive", "ritual", "landscape", "machine",
	}

	venues = []string{
		"Berlin", "Rotterdam", "Lisbon", "Montreal", "Seoul",
		"Helsinki", "Mexico City", "Melbourne", "New York", "Remote",
	}

	budgets = []string{
		"$1,000 - $5,000", "$5,000 - $10,000", "$10,000 - $25,000",
		"$25,000 - $50,000", "unfunded",
	}
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pick returns a random element of the pool using crypto/rand.
func pick(pool []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	return pool[n.Int64()]
}

// generateOpportunities creates the specified number of opportunities with unique IDs.
func generateOpportunities(ctx context.Context, config *Config, stats *Stats) ([]Opportunity, error) {
	logger.Get().Info(ctx, "generating opportunities with unique IDs", logger.Int("numOpps", config.NumOpps))

	opps := make([]Opportunity, config.NumOpps)

	// Pre-allocate IDs to ensure uniqueness
	ids := make([]string, config.NumOpps)
	for i := 0; i < config.NumOpps; i++ {
		ids[i] = "opp-" + uuid.New().String()
	}

	// Generate opportunities concurrently
	type oppResult struct {
		index int
		opp   Opportunity
		err   error
	}

	resultChan := make(chan oppResult, config.NumOpps)

	// Use worker pool for generation
	workerCount := minInt(config.Workers, config.NumOpps)
	oppsPerWorker := config.NumOpps / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * oppsPerWorker
		end := start + oppsPerWorker
		if worker == workerCount-1 {
			end = config.NumOpps // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- oppResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- oppResult{index: i, opp: generateSingleOpportunity(i, ids[i])}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumOpps; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate opportunity %d: %w", result.index, result.err)
			}
			opps[result.index] = result.opp
		}
	}

	stats.OppsGenerated = len(opps)
	logger.Get().Info(ctx, "generated opportunities successfully", logger.Int("count", len(opps)))

	return opps, nil
}

// generateSingleOpportunity creates a single opportunity with the given index and ID.
func generateSingleOpportunity(index int, id string) Opportunity {
	medium := pick(mediums)
	theme := pick(themes)
	oppType := opportunityTypes[index%len(opportunityTypes)]

	title := titleFor(oppType, theme, medium)
	description := fmt.Sprintf(
		"Seeking proposals for a %s centered on %s work exploring %s. Submission round %d.",
		oppType, medium, theme, index,
	)

	deadline := time.Now().UTC().AddDate(0, 0, generateVariedDeadlineDays()).Format(time.RFC3339)

	return Opportunity{
		ID:          id,
		Title:       title,
		Description: description,
		Type:        oppType,
		Deadline:    deadline,
		BudgetRange: pick(budgets),
		Location:    pick(venues),
		Source:      "seeder",
		Keywords:    []string{medium, theme, oppType},
	}
}

// titleFor builds a human-looking title for the given type and vocabulary.
func titleFor(oppType, theme, medium string) string {
	switch oppType {
	case "exhibition":
		return "Group exhibition: " + theme + " " + medium
	case "grant":
		return "Production grant for " + medium + " work on " + theme
	case "residency":
		return "Residency program: " + theme + " and " + medium
	default:
		return "Open call: " + theme + " " + medium + " projects"
	}
}

// generateVariedDeadlineDays returns a deadline offset with a varied horizon mix.
func generateVariedDeadlineDays() int {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(deadlineCaseDivisor))
	switch randNum.Int64() {
	case caseImminentDeadline:
		// Closing within days, exercises reminder windows
		return imminentMin + int(getRandomFloat()*imminentRange)
	case caseNearDeadline:
		// Closing within a week
		return nearMin + int(getRandomFloat()*nearRange)
	case caseMonthDeadline:
		// Closing within a month, most common horizon
		return monthMin + int(getRandomFloat()*monthRange)
	case caseQuarterDeadline:
		return quarterMin + int(getRandomFloat()*quarterRange)
	case caseFarDeadline:
		return farMin + int(getRandomFloat()*farRange)
	case caseWideDeadline:
		return wideMin + int(getRandomFloat()*wideDayRange)
	default:
		return wideMin + int(getRandomFloat()*wideDayRange)
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
