package browser

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsAgent = "*"

// policy is the robots.txt outcome for one origin. A nil rules with allowAll
// unset denies every path.
type policy struct {
	rules    *robotstxt.RobotsData
	allowAll bool
	expires  time.Time
}

func (p *policy) allows(path string) bool {
	if p.allowAll {
		return true
	}
	if p.rules == nil {
		return false
	}
	return p.rules.TestAgent(path, robotsAgent)
}

// policies caches robots.txt outcomes per origin for ttl. A zero ttl stores
// nothing, so every check goes to the network.
type policies struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*policy
}

func newPolicies(ttl time.Duration) *policies {
	return &policies{ttl: ttl, entries: make(map[string]*policy)}
}

func (c *policies) get(origin string, now time.Time) (*policy, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.entries[origin]
	if !ok {
		return nil, false
	}
	if !now.Before(p.expires) {
		delete(c.entries, origin)
		return nil, false
	}
	return p, true
}

func (c *policies) put(origin string, p *policy, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	p.expires = now.Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[origin] = p
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// allowed reports whether u may be fetched. Policies come from the per-origin
// cache when fresh; otherwise robots.txt is fetched. A transport failure or a
// 5xx response denies without being cached, so the next call retries.
func (b *Browser) allowed(ctx context.Context, u *url.URL) bool {
	key := origin(u)
	if p, ok := b.robots.get(key, b.now()); ok {
		return p.allows(u.RequestURI())
	}

	v, err, _ := b.group.Do("robots:"+key, func() (any, error) {
		return b.fetchPolicy(context.WithoutCancel(ctx), key)
	})
	if err != nil {
		return false
	}
	return v.(*policy).allows(u.RequestURI())
}

func (b *Browser) fetchPolicy(ctx context.Context, origin string) (*policy, error) {
	robotsURL := origin + "/robots.txt"

	status, body, err := b.get(ctx, robotsURL)
	if err != nil {
		b.logger.Warn("could not fetch robots.txt", "url", robotsURL, "error", err)
		return nil, err
	}

	p := &policy{}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
	case status >= 500:
		b.logger.Warn("robots.txt unavailable", "url", robotsURL, "status", status)
		return p, nil
	case status >= 400:
		p.allowAll = true
	default:
		rules, err := robotstxt.FromStatusAndBytes(status, body)
		if err != nil {
			b.logger.Warn("could not parse robots.txt", "url", robotsURL, "error", err)
		} else {
			p.rules = rules
		}
	}

	b.robots.put(origin, p, b.now())
	return p, nil
}
