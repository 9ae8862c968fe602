package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cacheKey = "holidays:payload"

// Client fetches the holiday date list from the external source: an HTTP
// endpoint returning a JSON array of YYYY-MM-DD strings.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client with the source URL and a bounded fetch
// timeout.
func NewClient(url string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache keeps a Redis copy of the last successful payload. A fetch
// failure falls back to the cached copy before giving up, so a short source
// outage does not surface to callers.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Fetch retrieves the full holiday date list.
func (c *Client) Fetch(ctx context.Context) ([]string, error) {
	dates, err := c.fetchSource(ctx)
	if err == nil {
		c.writeCache(ctx, dates)
		return dates, nil
	}

	if cached, ok := c.readCache(ctx); ok {
		c.logger.Warn().Err(err).Int("dates", len(cached)).Msg("holiday source unavailable, using cached payload")
		return cached, nil
	}
	return nil, err
}

func (c *Client) fetchSource(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holidays: http %d", resp.StatusCode)
	}

	var dates []string
	if err := json.NewDecoder(resp.Body).Decode(&dates); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	return dates, nil
}

func (c *Client) readCache(ctx context.Context) ([]string, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	val, err := c.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return nil, false
	}
	var dates []string
	if err := json.Unmarshal([]byte(val), &dates); err != nil {
		return nil, false
	}
	return dates, true
}

func (c *Client) writeCache(ctx context.Context, dates []string) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(dates)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err()
}
