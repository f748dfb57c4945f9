// Package serper issues single search requests against the Serper API.
package serper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	httpclient "lead-hunter/internal/common/http"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/models"
)

const (
	DefaultURL = "https://google.serper.dev/search"

	// ProviderMaxResults is the largest page Serper serves.
	ProviderMaxResults = 50

	// Locale and freshness are pinned so the same query yields comparable
	// results from run to run.
	country   = "eg"
	language  = "ar"
	freshness = "qdr:w"
)

var (
	ErrQuotaExceeded = errors.New("serper: quota exceeded")
	ErrTimeout       = errors.New("serper: request timed out")
)

// ProviderError is any non-200, non-429 answer.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("serper: provider returned %d", e.StatusCode)
}

// TransportError is a network or decoding fault that is not a timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("serper: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Config struct {
	URL        string
	MaxResults int
	Timeout    time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		URL:        DefaultURL,
		MaxResults: ProviderMaxResults,
		Timeout:    30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// PageSize is the num value sent to the provider.
func (c *Config) PageSize() int {
	if c.MaxResults > ProviderMaxResults {
		return ProviderMaxResults
	}
	return c.MaxResults
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
	TBS string `json:"tbs"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
}

// Client performs one request per Fetch and never retries.
type Client struct {
	config *Config
	doer   httpclient.Doer
	logger logger.Logger
}

// NewClient builds a client. A nil doer gets a pooled client bounded by
// config.Timeout.
func NewClient(config *Config, doer httpclient.Doer, log logger.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid serper config: %w", err)
	}
	if doer == nil {
		doer = httpclient.NewClient(config.Timeout)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		config: config,
		doer:   doer,
		logger: log.Named("serper"),
	}, nil
}

// Fetch runs query with key. It returns the organic results, or one of
// ErrQuotaExceeded, ErrTimeout, *ProviderError or *TransportError.
func (c *Client) Fetch(ctx context.Context, query models.SearchQuery, key string) ([]models.RawResultItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body := searchRequest{
		Q:   query.Phrase(),
		Num: c.config.PageSize(),
		GL:  country,
		HL:  language,
		TBS: freshness,
	}
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, c.config.URL, body, map[string]string{
		"X-API-KEY": key,
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	c.logger.Debug("serper responded", map[string]interface{}{
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrQuotaExceeded
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, classify(ctx, fmt.Errorf("decode response: %w", err))
	}

	items := make([]models.RawResultItem, 0, len(decoded.Organic))
	for _, o := range decoded.Organic {
		items = append(items, models.RawResultItem{
			Title:   o.Title,
			Snippet: o.Snippet,
			Link:    o.Link,
		})
	}
	return items, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return &TransportError{Err: err}
}
