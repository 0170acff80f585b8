// Package fetch talks to the external food sources: the first-party search
// and EAN API, and an OpenAI-compatible chat endpoint used for free-text
// estimates. It returns raw payloads; turning them into profiles is the job
// of package normalize.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/citrus/internal/config"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/logger"
)

// MinQueryLength is the shortest search query or meal description sent
// upstream, in runes after trimming.
const MinQueryLength = 3

// DefaultPageSize is used when Search is called with pageSize <= 0.
const DefaultPageSize = 20

// DefaultModel is the estimator model used unless WithModel overrides it.
const DefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"

// Endpoints holds upstream locations and credentials.
type Endpoints struct {
	APIBaseURL  string
	APIKey      string
	LLMEndpoint string
	LLMAPIKey   string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each search and EAN call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.apiTimeout = d
		}
	}
}

// WithLLMTimeout bounds each estimate call. Non-positive values are ignored.
func WithLLMTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.llmTimeout = d
		}
	}
}

// WithModel overrides the estimator model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature overrides the estimator sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithLogger sets the logger used for request tracing. Nil is ignored.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client performs one outbound request per call. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	ep          Endpoints
	model       string
	temperature float64
	apiTimeout  time.Duration
	llmTimeout  time.Duration
	http        *http.Client
	log         *logger.Logger
}

// New creates a Client.
func New(ep Endpoints, opts ...Option) *Client {
	c := &Client{
		ep:          ep,
		model:       DefaultModel,
		temperature: 0.15,
		apiTimeout:  30 * time.Second,
		llmTimeout:  15 * time.Second,
		http:        &http.Client{},
		log:         logger.Nop(),
	}
	c.ep.APIBaseURL = strings.TrimRight(c.ep.APIBaseURL, "/")
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewFromConfig creates a Client from loaded configuration.
func NewFromConfig(cfg *config.Config, log *logger.Logger, opts ...Option) *Client {
	base := []Option{
		WithLogger(log),
		WithModel(cfg.LLMModel),
		WithTimeout(time.Duration(cfg.APITimeoutSeconds) * time.Second),
		WithLLMTimeout(time.Duration(cfg.LLMTimeoutSeconds) * time.Second),
	}
	return New(Endpoints{
		APIBaseURL:  cfg.APIBaseURL,
		APIKey:      cfg.APIKey,
		LLMEndpoint: cfg.LLMEndpoint,
		LLMAPIKey:   cfg.LLMAPIKey,
	}, append(base, opts...)...)
}

type searchBody struct {
	Key      string `json:"key"`
	Query    string `json:"query"`
	PageSize int    `json:"pageSize"`
}

type eanBody struct {
	EAN string `json:"ean"`
	Key string `json:"key"`
}

// Search posts a free-text food query and returns the raw {"foods": [...]}
// response.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]byte, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query must be at least %d characters", MinQueryLength))
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return c.post(ctx, request{
		url:     c.ep.APIBaseURL + "/foods/search",
		body:    searchBody{Key: c.ep.APIKey, Query: query, PageSize: pageSize},
		accept:  "application/json",
		timeout: c.apiTimeout,
		kind:    "food",
		ident:   query,
	})
}

// LookupEAN fetches one product by barcode as JSON.
func (c *Client) LookupEAN(ctx context.Context, ean string) ([]byte, error) {
	return c.lookupEAN(ctx, ean, "/foods/ean", "application/json")
}

// LookupEANXML fetches one product by barcode as XML.
func (c *Client) LookupEANXML(ctx context.Context, ean string) ([]byte, error) {
	return c.lookupEAN(ctx, ean, "/foods/ean/xml", "application/xml")
}

func (c *Client) lookupEAN(ctx context.Context, ean, path, accept string) ([]byte, error) {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return nil, errors.NewInvalidRequest("ean is required")
	}
	return c.post(ctx, request{
		url:     c.ep.APIBaseURL + path,
		body:    eanBody{EAN: ean, Key: c.ep.APIKey},
		accept:  accept,
		timeout: c.apiTimeout,
		kind:    "product",
		ident:   ean,
	})
}

type request struct {
	url     string
	body    any
	accept  string
	bearer  string
	timeout time.Duration
	kind    string
	ident   string
}

// post sends a JSON body and maps every failure onto a CitrusError.
func (c *Client) post(ctx context.Context, r request) ([]byte, error) {
	data, err := json.Marshal(r.body)
	if err != nil {
		return nil, errors.NewEncodingFailure(err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewEncodingFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", r.accept)
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	c.log.Debug("fetch: POST %s (%d bytes)", r.url, len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewNetworkUnavailable(r.url, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkUnavailable(r.url, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewNotFound(r.kind, r.ident)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Debug("fetch: %s returned %s: %s", r.url, resp.Status, truncate(string(body), 200))
		return nil, errors.NewNetworkUnavailable(r.url, resp.StatusCode, nil)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.NewMalformedResponse(r.kind, fmt.Errorf("empty response body"))
	}
	return body, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
