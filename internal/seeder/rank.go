package seeder

import (
	"context"
	"fmt"
	"log"
)

// seedProfile is the profile ranked against after seeding. Its
// specializations and interests come from the generator vocabulary so
// every run produces non-trivial relevance scores.
type seedProfile struct {
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
	Interests       []string `json:"interests"`
}

// rankRequest is the body sent to the ranking endpoint.
type rankRequest struct {
	Profile seedProfile `json:"profile"`
	Limit   int         `json:"limit"`
}

// newSeedProfile builds the profile used for post-seed ranking checks.
func newSeedProfile() seedProfile {
	return seedProfile{
		Name:            "Seed Profile",
		Specializations: []string{mediums[0], mediums[1]},
		Interests:       []string{themes[0], themes[1]},
	}
}

// fetchRanking ranks the catalog for the seed profile and returns the top N entries.
func fetchRanking(ctx context.Context, config *Config, stats *Stats) ([]RankedEntry, error) {
	log.Printf("🏆 Ranking catalog for seed profile, top %d...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/rank"

	resp, err := client.Post(ctx, url, rankRequest{Profile: newSeedProfile(), Limit: config.TopN})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var ranked []RankedEntry
	if err := unmarshalJSON(body, &ranked); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.RankedRetrieved = len(ranked)
	log.Printf("✅ Retrieved %d ranked entries", len(ranked))

	return ranked, nil
}

// fetchDeadlines retrieves the top N upcoming deadline entries.
func fetchDeadlines(ctx context.Context, config *Config, stats *Stats) ([]DeadlineEntry, error) {
	log.Printf("⏰ Getting top %d upcoming deadlines...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/deadlines?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var deadlines []DeadlineEntry
	if err := unmarshalJSON(body, &deadlines); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.DeadlineEntries = len(deadlines)
	log.Printf("✅ Retrieved %d deadline entries", len(deadlines))

	return deadlines, nil
}
