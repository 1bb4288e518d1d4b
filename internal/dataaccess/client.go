// Package dataaccess implements the three-tier hybrid data access layer:
// an HTTP-backed live service is preferred, a direct SQL connection to the
// canonical database is the fallback, and a local JSON mirror is the cold
// fallback when neither is reachable. Every fetch result is tagged with
// the tier that actually served it so downstream consumers (and reports)
// can tell fresh data from stale.
package dataaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// Source identifies which tier actually served a Result.
type Source int

const (
	SourceUnknown Source = iota
	SourceBackend
	SourceSQL
	SourceCache
)

func (s Source) String() string {
	switch s {
	case SourceBackend:
		return "BACKEND"
	case SourceSQL:
		return "SQL"
	case SourceCache:
		return "CACHE"
	default:
		return "UNKNOWN"
	}
}

// Result carries raw JSON alongside which tier produced it.
type Result struct {
	Source Source
	Data   json.RawMessage
}

// Env is the capability interface for external collaborators this layer
// depends on. A caller lacking connectivity (airgapped host, CI sandbox)
// passes an Env reporting false and the client skips straight past the
// backend tier instead of paying a timeout.
type Env interface {
	HasNetwork() bool
}

// AlwaysConnected is the default Env: assume network access and let
// dial timeouts do the talking.
type AlwaysConnected struct{}

func (AlwaysConnected) HasNetwork() bool { return true }

// Client implements the hybrid fetch. Any tier may be nil/absent — the
// client degrades gracefully to the next tier.
type Client struct {
	env Env

	httpClient *http.Client
	backendURL string

	pool *pgxpool.Pool

	memCache *gocache.Cache
	cacheDir string

	logger *slog.Logger
}

// Config configures the tiers. BackendURL and DSN may be empty — the
// corresponding tier is then skipped.
type Config struct {
	BackendURL string
	DSN        string
	CacheDir   string
	CacheTTL   time.Duration
	Env        Env
}

// NewClient builds a hybrid client. Connecting to the SQL tier is
// deferred to first use via EnsurePool so a missing database never
// blocks construction.
func NewClient(cfg Config) *Client {
	env := cfg.Env
	if env == nil {
		env = AlwaysConnected{}
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Client{
		env:        env,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		backendURL: cfg.BackendURL,
		memCache:   gocache.New(ttl, 2*ttl),
		cacheDir:   cfg.CacheDir,
		logger:     slog.Default().With("component", "dataaccess"),
	}
}

// EnsurePool lazily connects the SQL tier, matching the teacher's
// connect-then-Ping fail-fast pattern.
func (c *Client) EnsurePool(ctx context.Context, dsn string) error {
	if c.pool != nil || dsn == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return omnierrors.ExternalError(err, "connecting to canonical database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return omnierrors.ExternalError(err, "pinging canonical database")
	}
	c.pool = pool
	c.logger.Info("connected to canonical database")
	return nil
}

// Close releases the SQL pool, if one was opened.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// FetchJSON resolves data for key by checking the in-memory cache, then
// trying the backend endpoint, then the supplied sqlFallback, then the
// on-disk cache mirror, in that order.
// A successful backend or SQL result refreshes the cache mirror so later
// cold runs have something to fall back to.
func (c *Client) FetchJSON(ctx context.Context, key string, endpoint string, sqlFallback func(context.Context) ([]byte, error)) (Result, error) {
	if cached, ok := c.memCache.Get(key); ok {
		return Result{Source: SourceCache, Data: cached.(json.RawMessage)}, nil
	}

	if c.env.HasNetwork() && c.backendURL != "" && endpoint != "" {
		if data, err := c.fetchBackend(ctx, endpoint); err == nil {
			c.refreshCache(key, data)
			return Result{Source: SourceBackend, Data: data}, nil
		} else {
			c.logger.Debug("backend fetch failed, falling back to sql", "key", key, "error", err)
		}
	}

	if sqlFallback != nil {
		if data, err := sqlFallback(ctx); err == nil {
			c.refreshCache(key, data)
			return Result{Source: SourceSQL, Data: data}, nil
		} else {
			c.logger.Debug("sql fetch failed, falling back to cache mirror", "key", key, "error", err)
		}
	}

	data, err := c.readDiskMirror(key)
	if err != nil {
		return Result{}, omnierrors.ExternalErrorf(err, "all data access tiers exhausted for %s", key)
	}
	return Result{Source: SourceCache, Data: data}, nil
}

func (c *Client) fetchBackend(ctx context.Context, endpoint string) (json.RawMessage, error) {
	url := c.backendURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) refreshCache(key string, data json.RawMessage) {
	c.memCache.SetDefault(key, data)
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		c.logger.Warn("failed to create cache directory", "error", err)
		return
	}
	path := filepath.Join(c.cacheDir, key+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.logger.Warn("failed to write cache mirror", "key", key, "error", err)
	}
}

func (c *Client) readDiskMirror(key string) (json.RawMessage, error) {
	if c.cacheDir == "" {
		return nil, fmt.Errorf("no cache directory configured")
	}
	path := filepath.Join(c.cacheDir, key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// HealthCheck reports which backend tiers are currently reachable, used by
// the health-class scanner (federation_health).
type HealthCheck struct {
	BackendReachable bool
	SQLReachable     bool
}

// Probe checks backend and SQL reachability without fetching data.
func (c *Client) Probe(ctx context.Context) HealthCheck {
	hc := HealthCheck{}
	if c.env.HasNetwork() && c.backendURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.backendURL+"/healthz", nil)
		if err == nil {
			if resp, err := c.httpClient.Do(req); err == nil {
				hc.BackendReachable = resp.StatusCode == http.StatusOK
				resp.Body.Close()
			}
		}
	}
	if c.pool != nil {
		hc.SQLReachable = c.pool.Ping(ctx) == nil
	}
	return hc
}
