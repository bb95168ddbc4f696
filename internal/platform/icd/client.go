package icd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/semaphore"

	"github.com/ayurmap/termbridge-backend/internal/pkg/httpx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
	"github.com/ayurmap/termbridge-backend/internal/utils"
)

// Cache is the optional search cache in front of the registry. A nil cache
// disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
}

// SearchRequest carries one registry search. ChapterFilter restricts
// server-side (e.g. "TM1,TM2"); TMOnly additionally drops entries the
// traditional medicine heuristic rejects after retrieval.
type SearchRequest struct {
	Query         string
	Limit         int
	Offset        int
	ChapterFilter string
	Flexisearch   bool
	TMOnly        bool
}

// Client is the WHO ICD-11 API client used by the candidate generator and
// the registry sync.
type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]Entity, error)
}

type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	ReleasePath  string

	Timeout       time.Duration
	MaxRetries    int
	MaxConcurrent int64
	MinInterval   time.Duration

	Cache Cache
}

type client struct {
	log        *logger.Logger
	searchURL  string
	httpClient *http.Client
	cache      Cache

	maxRetries int

	sem *semaphore.Weighted

	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient builds a client from WHO_ICD_* environment configuration.
// Without credentials it calls the registry unauthenticated, which only
// works against local mirrors.
func NewClient(log *logger.Logger, cache Cache) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg := Config{
		BaseURL:       utils.GetEnv("WHO_ICD_BASE_URL", "https://id.who.int/icd", log),
		TokenURL:      utils.GetEnv("WHO_ICD_TOKEN_URL", "https://icdaccessmanagement.who.int/connect/token", log),
		ClientID:      os.Getenv("WHO_ICD_CLIENT_ID"),
		ClientSecret:  os.Getenv("WHO_ICD_CLIENT_SECRET"),
		Scope:         utils.GetEnv("WHO_ICD_SCOPE", "icdapi_access", log),
		ReleasePath:   utils.GetEnv("WHO_ICD_RELEASE", "release/11/2023-01/mms", log),
		Timeout:       time.Duration(utils.GetEnvAsInt("WHO_ICD_TIMEOUT_SECONDS", 60, log)) * time.Second,
		MaxRetries:    utils.GetEnvAsInt("WHO_ICD_MAX_RETRIES", 3, log),
		MaxConcurrent: int64(utils.GetEnvAsInt("WHO_ICD_MAX_CONCURRENT", 5, log)),
		MinInterval:   utils.GetEnvAsDuration("WHO_ICD_MIN_INTERVAL", 200*time.Millisecond, log),
		Cache:         cache,
	}
	return NewClientWithConfig(log, cfg)
}

func NewClientWithConfig(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing registry base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}

	serviceLog := log.With("service", "ICDClient")

	baseClient := &http.Client{Timeout: cfg.Timeout}
	httpClient := baseClient
	if strings.TrimSpace(cfg.ClientID) != "" {
		creds := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{cfg.Scope},
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
		httpClient = creds.Client(tokenCtx)
		httpClient.Timeout = cfg.Timeout
	} else {
		serviceLog.Warn("registry credentials not configured, calling unauthenticated")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	release := strings.Trim(cfg.ReleasePath, "/")
	searchURL := base + "/search"
	if release != "" {
		searchURL = base + "/" + release + "/search"
	}

	return &client{
		log:         serviceLog,
		searchURL:   searchURL,
		httpClient:  httpClient,
		cache:       cfg.Cache,
		maxRetries:  cfg.MaxRetries,
		sem:         semaphore.NewWeighted(cfg.MaxConcurrent),
		minInterval: cfg.MinInterval,
	}, nil
}

func (c *client) Search(ctx context.Context, req SearchRequest) ([]Entity, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		// The registry rejects empty queries.
		query = "disease"
	}
	if req.TMOnly && req.ChapterFilter == "" {
		req.ChapterFilter = "TM1,TM2"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("flatResults", "true")
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		params.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.ChapterFilter != "" {
		params.Set("chapterFilter", req.ChapterFilter)
	}
	if req.Flexisearch {
		params.Set("useFlexisearch", "true")
	}

	cacheKey := "icd:search:" + params.Encode()
	if c.cache != nil {
		var cached []Entity
		if hit, err := c.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
			c.log.Warn("cache read failed", "error", err)
		} else if hit {
			return filterTM(cached, req.TMOnly), nil
		}
	}

	var resp searchResponse
	if err := c.do(ctx, c.searchURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, fmt.Errorf("registry search error: %s", resp.ErrorMessage)
	}

	entities := make([]Entity, 0, len(resp.DestinationEntities))
	for _, se := range resp.DestinationEntities {
		entities = append(entities, se.toEntity())
	}

	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, cacheKey, entities); err != nil {
			c.log.Warn("cache write failed", "error", err)
		}
	}

	return filterTM(entities, req.TMOnly), nil
}

func filterTM(entities []Entity, tmOnly bool) []Entity {
	if !tmOnly {
		return entities
	}
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.TM2Related() {
			out = append(out, e)
		}
	}
	return out
}

// do runs one GET with the concurrency cap, request spacing, and retries.
func (c *client) do(ctx context.Context, rawURL string, out interface{}) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := c.pace(ctx); err != nil {
			return err
		}

		resp, raw, err := c.doOnce(ctx, rawURL)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("registry decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("registry request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, rawURL string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("API-Version", "v2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	c.markRequest()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &registryHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// pace enforces the minimum spacing between outbound registry calls.
func (c *client) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastRequest)
	c.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (c *client) markRequest() {
	c.mu.Lock()
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

type registryHTTPError struct {
	StatusCode int
	Body       string
}

func (e *registryHTTPError) Error() string {
	return fmt.Sprintf("registry http %d: %s", e.StatusCode, e.Body)
}

func (e *registryHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}
