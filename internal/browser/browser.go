package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/document-center/internal/metrics"
	"github.com/JaimeStill/document-center/pkg/errs"
)

// Cache persists rendered pages by key. Retrieve reports a miss with an
// error matching errs.ErrNotFound.
type Cache interface {
	Retrieve(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, data []byte) error
}

type Browser struct {
	cache     Cache
	robots    *policies
	client    *http.Client
	userAgent string
	group     singleflight.Group
	now       func() time.Time
	logger    *slog.Logger
}

func New(cfg *Config, cache Cache, logger *slog.Logger) *Browser {
	return &Browser{
		cache:     cache,
		robots:    newPolicies(cfg.RobotsTTLDuration()),
		client:    &http.Client{Timeout: cfg.TimeoutDuration()},
		userAgent: cfg.UserAgent,
		now:       time.Now,
		logger:    logger.With("system", "browser"),
	}
}

// CacheKey maps a URL to its cache file name: host followed by the path
// with "/" replaced by "_", suffixed with ".html" unless already present.
func CacheKey(u *url.URL) string {
	key := u.Host + strings.ReplaceAll(u.Path, "/", "_")
	if !strings.HasSuffix(u.Path, ".html") {
		key += ".html"
	}
	return key
}

// FetchAndParse returns the page at rawURL, served from the cache when
// present. The robots policy of the origin is checked before every lookup;
// failing to obtain it denies the request.
func (b *Browser) FetchAndParse(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	b.logger.Info("scraping url", "url", rawURL)

	if !b.allowed(ctx, u) {
		metrics.RecordCacheLookup(metrics.CacheDenied)
		b.logger.Warn("scraping disallowed", "url", rawURL)
		return nil, ErrPolicyDenied
	}

	key := CacheKey(u)

	content, err := b.cache.Retrieve(ctx, key)
	if err == nil {
		metrics.RecordCacheLookup(metrics.CacheHit)
		b.logger.Info("cache hit", "url", rawURL, "key", key)
		return b.parse(rawURL, key, content, true)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		metrics.RecordCacheLookup(metrics.CacheError)
		return nil, fmt.Errorf("browser: read cache: %w", err)
	}

	metrics.RecordCacheLookup(metrics.CacheMiss)

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := b.group.DoChan(key, func() (any, error) {
		return b.fetch(context.WithoutCancel(ctx), rawURL, key)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return b.parse(rawURL, key, res.Val.([]byte), false)
	}
}

func (b *Browser) parse(rawURL, key string, content []byte, cached bool) (*Document, error) {
	doc, err := parse(rawURL, key, content, cached)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrFetchFailed, rawURL, err)
	}
	return doc, nil
}

// fetch downloads, normalizes and caches the page. The rendered form is
// returned so every waiter parses its own tree.
func (b *Browser) fetch(ctx context.Context, rawURL, key string) ([]byte, error) {
	start := time.Now()
	status, body, err := b.get(ctx, rawURL)
	metrics.RecordWebFetch(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, err)
	}
	if status < 200 || status > 299 {
		b.logger.Error("failed to retrieve page", "url", rawURL, "status", status)
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, rawURL, status)
	}

	doc, err := parse(rawURL, key, body, false)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrFetchFailed, rawURL, err)
	}

	rendered := []byte(doc.HTML())
	if err := b.cache.Store(ctx, key, rendered); err != nil {
		b.logger.Warn("cache store failed", "key", key, "error", err)
	} else {
		b.logger.Info("page cached", "url", rawURL, "key", key)
	}

	return rendered, nil
}

func (b *Browser) get(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
