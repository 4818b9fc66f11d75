// Package metadataset fetches human-readable attribute captions from the
// external metadata-set service and caches them in process.
package metadataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kailas-cloud/metaqual/internal/domain"
	"github.com/kailas-cloud/metaqual/internal/domain/catalog"
	"github.com/kailas-cloud/metaqual/internal/metrics"
	"github.com/kailas-cloud/metaqual/internal/version"
)

const cacheKey = "labels"

// Config holds the label service settings.
type Config struct {
	BaseURL     string
	MetadataSet string
	CacheTTL    time.Duration
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Client is the label provider backed by the metadata-set service.
// Fetched label sets are cached; the cache object is owned here and
// injectable for tests, never a hidden module-level singleton.
type Client struct {
	http    *http.Client
	baseURL string
	set     string
	cache   *gocache.Cache
	logger  *zap.Logger
}

// New creates a label client.
func New(cfg Config) *Client {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		set:     cfg.MetadataSet,
		cache:   gocache.New(ttl, 10*time.Minute),
		logger:  logger,
	}
}

type propertiesResponse struct {
	Properties []struct {
		ID         string `json:"id"`
		Caption    string `json:"caption"`
		AltCaption string `json:"alt_caption"`
	} `json:"properties"`
}

// Labels returns the caption set for the configured metadata set,
// serving from cache when fresh. A cold fetch failure surfaces as
// ErrLabelsUnavailable; the composition root treats that as fatal at
// startup so a mislabeled catalog never corrupts a matrix silently.
func (c *Client) Labels(ctx context.Context) (catalog.LabelSet, error) {
	if cached, ok := c.cache.Get(cacheKey); ok {
		metrics.LabelRefreshTotal.WithLabelValues("hit").Inc()
		return cached.(catalog.LabelSet), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "metadataset", c.set, "properties")
	if err != nil {
		return nil, fmt.Errorf("label endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build label request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.LabelRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrLabelsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.LabelRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: status %d from %s", domain.ErrLabelsUnavailable, resp.StatusCode, endpoint)
	}

	var parsed propertiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.LabelRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: decode properties: %w", domain.ErrLabelsUnavailable, err)
	}

	labels := make(catalog.LabelSet, len(parsed.Properties))
	for _, p := range parsed.Properties {
		if p.ID == "" {
			continue
		}
		labels[p.ID] = catalog.Label{Caption: p.Caption, AltCaption: p.AltCaption}
	}

	c.cache.Set(cacheKey, labels, gocache.DefaultExpiration)
	metrics.LabelRefreshTotal.WithLabelValues("refresh").Inc()
	c.logger.Debug("label set refreshed",
		zap.String("metadata_set", c.set),
		zap.Int("labels", len(labels)),
	)
	return labels, nil
}

// Invalidate drops the cached label set so the next call refetches.
func (c *Client) Invalidate() {
	c.cache.Delete(cacheKey)
}
