package seeder

import "time"

// Config holds configuration for the seeding run
type Config struct {
	BaseURL    string        // Base URL of the service
	NumOpps    int           // Number of opportunities to generate
	TopN       int           // Number of ranked entries to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for opportunities
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Opportunity represents an opportunity to be submitted
type Opportunity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Deadline    string   `json:"deadline"`
	BudgetRange string   `json:"budget_range"`
	Location    string   `json:"location"`
	Source      string   `json:"source"`
	Keywords    []string `json:"keywords"`
}

// RankedEntry represents one scored opportunity from the ranking endpoint
type RankedEntry struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Type           string   `json:"type"`
	RelevanceScore float64  `json:"relevance_score"`
	Rationale      []string `json:"rationale"`
}

// DeadlineEntry represents one upcoming deadline from the deadlines endpoint
type DeadlineEntry struct {
	Opportunity    RankedEntry `json:"opportunity"`
	DaysRemaining  int         `json:"days_remaining"`
	ReminderWindow string      `json:"reminder_window"`
}

// AckResponse represents the response from opportunity submission
type AckResponse struct {
	Status        string `json:"status"`
	OpportunityID string `json:"opportunity_id"`
	Duplicate     bool   `json:"duplicate"`
}

// Stats holds run statistics
type Stats struct {
	OppsGenerated   int
	OppsSubmitted   int
	OppsAccepted    int
	OppsDuplicate   int
	OppsFailed      int
	RankedRetrieved int
	DeadlineEntries int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
