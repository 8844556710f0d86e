package jobsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
)

var tracer = telemetry.GetTracer("career-catalyst/jobsearch")

type ClientOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type httpClient struct {
	client *http.Client
	logger *zap.Logger
	opts   ClientOptions
}

// NewClient returns a Searcher that POSTs queries as JSON to
// <BaseURL>/search and expects {"results": [...]} back.
func NewClient(opts ClientOptions, logger *zap.Logger) Searcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &httpClient{
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
		opts:   opts,
	}
}

func (c *httpClient) Search(ctx context.Context, q Query) ([]Posting, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		telemetry.String("search.term", q.SearchTerm),
		telemetry.String("search.location", q.Location),
		telemetry.Int("search.results_wanted", q.ResultsWanted),
	)

	body, err := json.Marshal(q)
	if err != nil {
		return nil, errors.Internal("encoding search query", err)
	}

	url := c.opts.BaseURL + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		telemetry.Fail(span, err)
		return nil, errors.Internal("creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		telemetry.Fail(span, err)
		c.logger.Error("failed to execute request", zap.Error(err))
		return nil, errors.Unavailable("executing search request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(
		telemetry.Int("http.status_code", resp.StatusCode),
		telemetry.String("http.method", http.MethodPost),
	)

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status code", zap.Int("status_code", resp.StatusCode))
		return nil, errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var result struct {
		Results []Posting `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("failed to decode response", zap.Error(err))
		return nil, errors.Internal("decoding response", err)
	}

	postings := make([]Posting, 0, len(result.Results))
	for _, p := range result.Results {
		if p.Title == "" || p.Company == "" {
			c.logger.Warn("skipping incomplete posting", zap.String("title", p.Title), zap.String("company", p.Company))
			continue
		}
		postings = append(postings, p)
	}

	c.logger.Info("job search completed",
		zap.String("term", q.SearchTerm),
		zap.Int("count", len(postings)))
	return postings, nil
}
