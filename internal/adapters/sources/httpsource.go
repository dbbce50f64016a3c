package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/curata/curata/internal/domain/model"
	"github.com/curata/curata/pkg/logger"
	"github.com/curata/curata/pkg/metrics"
)

// HTTP source configuration constants.
const (
	defaultHTTPTimeout = 10 * time.Second
	defaultHTTPRetries = 3
)

// HTTPSource fetches opportunities from a remote JSON feed. The feed is
// expected to serve an array of objects; field paths are resolved with
// gjson so feeds with extra fields keep working.
type HTTPSource struct {
	url    string
	name   string
	client *retryablehttp.Client
	log    logger.Logger
}

// HTTPOption applies a configuration option to the HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPSourceName overrides the name stamped on fetched records.
func WithHTTPSourceName(name string) HTTPOption {
	return func(s *HTTPSource) {
		if name != "" {
			s.name = name
		}
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.HTTPClient.Timeout = d
		}
	}
}

// WithHTTPRetryMax sets the maximum number of request retries.
func WithHTTPRetryMax(n int) HTTPOption {
	return func(s *HTTPSource) {
		if n >= 0 {
			s.client.RetryMax = n
		}
	}
}

// NewHTTPSource creates a feed-backed source for the given URL.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultHTTPRetries
	client.HTTPClient.Timeout = defaultHTTPTimeout
	client.Logger = nil

	s := &HTTPSource{
		url:    url,
		name:   "feed",
		client: client,
		log:    logger.Get().Named("httpsource"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *HTTPSource) Name() string { return s.name }

// Fetch downloads the feed and decodes each element. Elements that cannot
// be decoded are skipped with a warning rather than failing the batch.
func (s *HTTPSource) Fetch(ctx context.Context) ([]model.Opportunity, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSourceFetchLatency(float64(time.Since(start).Milliseconds()))
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordErrorByComponent("sources", "fetch_failed")
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordErrorByComponent("sources", "bad_status")
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrUnavailable, resp.StatusCode, s.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUnavailable, err)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		// Some feeds wrap the array in an envelope.
		parsed = parsed.Get("opportunities")
		if !parsed.IsArray() {
			metrics.RecordErrorByComponent("sources", "bad_payload")
			return nil, fmt.Errorf("%w: expected a JSON array from %s", ErrBadPayload, s.url)
		}
	}

	var out []model.Opportunity
	for _, element := range parsed.Array() {
		opp, err := s.decode(element)
		if err != nil {
			s.log.Warn(ctx, "skipping malformed feed element",
				logger.String("source", s.name),
				logger.Error(err),
			)
			continue
		}
		out = append(out, opp)
	}
	return out, nil
}

// decode maps one feed element onto an opportunity record.
func (s *HTTPSource) decode(element gjson.Result) (model.Opportunity, error) {
	id := element.Get("id").String()
	if id == "" {
		return model.Opportunity{}, fmt.Errorf("%w: element without id", ErrBadPayload)
	}

	oppType, err := model.ParseOpportunityType(element.Get("type").String())
	if err != nil {
		return model.Opportunity{}, fmt.Errorf("element %s: %w", id, err)
	}

	deadline, err := time.Parse(time.RFC3339, element.Get("deadline").String())
	if err != nil {
		// Date-only deadlines are common in feeds.
		deadline, err = time.Parse("2006-01-02", element.Get("deadline").String())
		if err != nil {
			return model.Opportunity{}, fmt.Errorf("%w: element %s has no parseable deadline", ErrBadPayload, id)
		}
	}

	var kws []string
	for _, kw := range element.Get("keywords").Array() {
		kws = append(kws, kw.String())
	}

	return model.Opportunity{
		ID:          id,
		Title:       element.Get("title").String(),
		Description: element.Get("description").String(),
		Type:        oppType,
		Deadline:    deadline,
		BudgetRange: element.Get("budget_range").String(),
		Location:    element.Get("location").String(),
		Source:      s.name,
		Keywords:    kws,
	}, nil
}
