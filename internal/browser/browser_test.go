package browser_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/document-center/internal/browser"
	"github.com/JaimeStill/document-center/internal/storage"
	"github.com/JaimeStill/document-center/pkg/errs"
)

const page = `<html><head><title> Example Page </title></head>
<body><h1>Hello</h1><script>var x = 1;</script><p>World</p></body></html>`

type site struct {
	robotsStatus int
	robotsBody   string
	pageStatus   int
	// gate, when set, holds page responses until it is closed.
	gate    chan struct{}
	serving chan struct{}

	robotsHits atomic.Int32
	pageHits   atomic.Int32
	userAgent  atomic.Value
}

func (s *site) start(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			s.robotsHits.Add(1)
			status := s.robotsStatus
			if status == 0 {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			io.WriteString(w, s.robotsBody)
			return
		}

		s.pageHits.Add(1)
		s.userAgent.Store(r.UserAgent())
		if s.gate != nil {
			s.serving <- struct{}{}
			<-s.gate
		}
		status := s.pageStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		io.WriteString(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newBrowser(t *testing.T) (*browser.Browser, string) {
	t.Helper()
	return newBrowserWith(t, &browser.Config{}, nil)
}

// newBrowserWith builds a browser over a temp-dir cache. wrap, when non-nil,
// decorates the cache.
func newBrowserWith(t *testing.T, cfg *browser.Config, wrap func(browser.Cache) browser.Cache) (*browser.Browser, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := t.TempDir()
	cacheCfg := &storage.Config{BasePath: dir}
	if err := cacheCfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	cache, err := storage.New(cacheCfg, logger)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	var c browser.Cache = cache
	if wrap != nil {
		c = wrap(cache)
	}
	return browser.New(cfg, c, logger), dir
}

func TestFetchAndParse_CachesPage(t *testing.T) {
	s := &site{robotsBody: "User-agent: *\nAllow: /\n"}
	srv := s.start(t)
	b, dir := newBrowser(t)
	ctx := context.Background()

	first, err := b.FetchAndParse(ctx, srv.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("FetchAndParse() error = %v", err)
	}
	if first.Cached {
		t.Error("first fetch reported Cached")
	}

	second, err := b.FetchAndParse(ctx, srv.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("FetchAndParse() error = %v", err)
	}
	if !second.Cached {
		t.Error("second fetch not served from cache")
	}

	if got := s.pageHits.Load(); got != 1 {
		t.Errorf("page fetched %d times, want 1", got)
	}

	if first.HTML() != second.HTML() {
		t.Error("cached document differs from fetched document")
	}

	if got := second.Title(); got != "Example Page" {
		t.Errorf("Title() = %q, want %q", got, "Example Page")
	}

	if got := second.Text(); got != "Hello\nWorld" {
		t.Errorf("Text() = %q, want %q", got, "Hello\nWorld")
	}

	u, _ := url.Parse(srv.URL)
	if _, err := os.Stat(filepath.Join(dir, u.Host+"_docs_intro.html")); err != nil {
		t.Errorf("cache file missing: %v", err)
	}

	if ua, _ := s.userAgent.Load().(string); !strings.Contains(ua, "Jawa/1.0") {
		t.Errorf("User-Agent = %q, want Jawa bot agent", ua)
	}
}

func TestFetchAndParse_CacheHitOffline(t *testing.T) {
	s := &site{robotsBody: "User-agent: *\nAllow: /\n"}
	srv := s.start(t)
	b, _ := newBrowser(t)
	ctx := context.Background()

	first, err := b.FetchAndParse(ctx, srv.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("FetchAndParse() error = %v", err)
	}

	srv.Close()

	second, err := b.FetchAndParse(ctx, srv.URL+"/docs/intro")
	if err != nil {
		t.Fatalf("FetchAndParse() with origin down error = %v", err)
	}
	if !second.Cached {
		t.Error("second fetch not served from cache")
	}
	if first.HTML() != second.HTML() {
		t.Error("cached document differs from fetched document")
	}
	if got := s.pageHits.Load(); got != 1 {
		t.Errorf("page fetched %d times, want 1", got)
	}
	if got := s.robotsHits.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}

func TestFetchAndParse_RobotsTTL(t *testing.T) {
	tests := []struct {
		name       string
		ttl        string
		wantRobots int32
	}{
		{"cached per origin", "10m", 1},
		{"disabled", "0s", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &site{robotsBody: "User-agent: *\nDisallow: /private\n"}
			srv := s.start(t)
			b, _ := newBrowserWith(t, &browser.Config{RobotsTTL: tt.ttl}, nil)
			ctx := context.Background()

			if _, err := b.FetchAndParse(ctx, srv.URL+"/a"); err != nil {
				t.Fatalf("FetchAndParse() error = %v", err)
			}
			if _, err := b.FetchAndParse(ctx, srv.URL+"/b"); err != nil {
				t.Fatalf("FetchAndParse() error = %v", err)
			}
			if _, err := b.FetchAndParse(ctx, srv.URL+"/private/c"); !errors.Is(err, errs.ErrPolicyDenied) {
				t.Fatalf("error = %v, want ErrPolicyDenied", err)
			}

			if got := s.robotsHits.Load(); got != tt.wantRobots {
				t.Errorf("robots.txt fetched %d times, want %d", got, tt.wantRobots)
			}
		})
	}
}

func TestFetchAndParse_RobotsPolicy(t *testing.T) {
	tests := []struct {
		name         string
		robotsStatus int
		robotsBody   string
		path         string
		wantErr      error
	}{
		{"allowed path", http.StatusOK, "User-agent: *\nDisallow: /private\n", "/public", nil},
		{"disallowed path", http.StatusOK, "User-agent: *\nDisallow: /private\n", "/private/page", errs.ErrPolicyDenied},
		{"disallow all", http.StatusOK, "User-agent: *\nDisallow: /\n", "/", errs.ErrPolicyDenied},
		{"other agent rules ignored", http.StatusOK, "User-agent: googlebot\nDisallow: /\n", "/a", nil},
		{"missing robots allows", http.StatusNotFound, "", "/a", nil},
		{"unauthorized denies", http.StatusUnauthorized, "", "/a", errs.ErrPolicyDenied},
		{"forbidden denies", http.StatusForbidden, "", "/a", errs.ErrPolicyDenied},
		{"server error denies", http.StatusInternalServerError, "", "/a", errs.ErrPolicyDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &site{robotsStatus: tt.robotsStatus, robotsBody: tt.robotsBody}
			srv := s.start(t)
			b, _ := newBrowser(t)

			_, err := b.FetchAndParse(context.Background(), srv.URL+tt.path)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("FetchAndParse() error = %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := s.pageHits.Load(); got != 0 {
				t.Errorf("page fetched %d times after denial, want 0", got)
			}
		})
	}
}

func TestFetchAndParse_RobotsUnreachable(t *testing.T) {
	s := &site{}
	srv := s.start(t)
	target := srv.URL + "/a"
	srv.Close()

	b, _ := newBrowser(t)

	_, err := b.FetchAndParse(context.Background(), target)
	if !errors.Is(err, browser.ErrPolicyDenied) {
		t.Errorf("error = %v, want ErrPolicyDenied", err)
	}
}

func TestFetchAndParse_PageFailure(t *testing.T) {
	s := &site{robotsBody: "User-agent: *\nAllow: /\n", pageStatus: http.StatusBadGateway}
	srv := s.start(t)
	b, dir := newBrowser(t)

	_, err := b.FetchAndParse(context.Background(), srv.URL+"/broken")
	if !errors.Is(err, errs.ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache has %d entries after failure, want 0", len(entries))
	}

	if _, err := b.FetchAndParse(context.Background(), srv.URL+"/broken"); err == nil {
		t.Error("failed fetch was cached")
	}
	if got := s.pageHits.Load(); got != 2 {
		t.Errorf("page fetched %d times, want 2", got)
	}
}

func TestFetchAndParse_Concurrent(t *testing.T) {
	s := &site{robotsBody: "User-agent: *\nAllow: /\n"}
	srv := s.start(t)
	b, _ := newBrowser(t)

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	failures := make([]error, n)

	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := b.FetchAndParse(context.Background(), srv.URL+"/same")
			failures[i] = err
			if err == nil {
				results[i] = doc.HTML()
			}
		}(i)
	}
	wg.Wait()

	for i := range n {
		if failures[i] != nil {
			t.Fatalf("caller %d error = %v", i, failures[i])
		}
		if results[i] != results[0] {
			t.Errorf("caller %d saw different content", i)
		}
	}

	if got := s.pageHits.Load(); got < 1 || got > n {
		t.Errorf("page fetched %d times", got)
	}
}

// missSignal reports each cache miss so a test knows a caller has reached
// the shared fetch.
type missSignal struct {
	browser.Cache
	misses chan struct{}
}

func (m *missSignal) Retrieve(ctx context.Context, key string) ([]byte, error) {
	data, err := m.Cache.Retrieve(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		m.misses <- struct{}{}
	}
	return data, err
}

func TestFetchAndParse_CanceledCallerDoesNotAbortShared(t *testing.T) {
	s := &site{
		robotsBody: "User-agent: *\nAllow: /\n",
		gate:       make(chan struct{}),
		serving:    make(chan struct{}, 1),
	}
	srv := s.start(t)

	misses := make(chan struct{}, 2)
	b, _ := newBrowserWith(t, &browser.Config{}, func(c browser.Cache) browser.Cache {
		return &missSignal{Cache: c, misses: misses}
	})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := b.FetchAndParse(leaderCtx, srv.URL+"/slow")
		leaderErr <- err
	}()

	<-misses
	<-s.serving

	type result struct {
		doc *browser.Document
		err error
	}
	follower := make(chan result, 1)
	go func() {
		doc, err := b.FetchAndParse(context.Background(), srv.URL+"/slow")
		follower <- result{doc, err}
	}()
	<-misses

	cancel()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("leader error = %v, want context.Canceled", err)
	}

	// Give the follower time to settle on the shared call before the origin answers.
	time.Sleep(50 * time.Millisecond)
	close(s.gate)

	res := <-follower
	if res.err != nil {
		t.Fatalf("follower error = %v", res.err)
	}
	if got := res.doc.Title(); got != "Example Page" {
		t.Errorf("Title() = %q, want %q", got, "Example Page")
	}
	if got := s.pageHits.Load(); got != 1 {
		t.Errorf("page fetched %d times, want 1", got)
	}
}

func TestFetchAndParse_InvalidURL(t *testing.T) {
	b, _ := newBrowser(t)

	for _, raw := range []string{"", "ftp://example.com/a", "example.com/a", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := b.FetchAndParse(context.Background(), raw)
			if !errors.Is(err, errs.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.com/a/b", "example.com_a_b.html"},
		{"https://example.com/page.html", "example.com_page.html"},
		{"https://example.com/dir/", "example.com_dir_.html"},
		{"https://example.com", "example.com.html"},
		{"http://localhost:8080/x?q=1", "localhost:8080_x.html"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if got := browser.CacheKey(u); got != tt.want {
				t.Errorf("CacheKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Finalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     browser.Config
		wantErr bool
	}{
		{"defaults", browser.Config{}, false},
		{"custom", browser.Config{UserAgent: "bot", Timeout: "5s"}, false},
		{"invalid timeout", browser.Config{Timeout: "soon"}, true},
		{"negative timeout", browser.Config{Timeout: "-1s"}, true},
		{"robots cache disabled", browser.Config{RobotsTTL: "0s"}, false},
		{"invalid robots_ttl", browser.Config{RobotsTTL: "often"}, true},
		{"negative robots_ttl", browser.Config{RobotsTTL: "-1m"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.cfg.UserAgent == "" {
				t.Error("UserAgent not defaulted")
			}
		})
	}
}
