package browser

import (
	"fmt"
	"os"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; Jawa/1.0; +http://api.laserfocus.space/bot)"

// Config controls outbound page fetches.
type Config struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
	// RobotsTTL is how long a parsed robots.txt is reused per origin. "0s"
	// fetches robots.txt on every request.
	RobotsTTL string `toml:"robots_ttl"`
}

type Env struct {
	UserAgent string
	Timeout   string
	RobotsTTL string
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RobotsTTL != "" {
		c.RobotsTTL = overlay.RobotsTTL
	}
}

// TimeoutDuration bounds each robots.txt and page request.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) RobotsTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.RobotsTTL)
	return d
}

func (c *Config) loadDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.RobotsTTL == "" {
		c.RobotsTTL = "10m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.UserAgent != "" {
		if v := os.Getenv(env.UserAgent); v != "" {
			c.UserAgent = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.RobotsTTL != "" {
		if v := os.Getenv(env.RobotsTTL); v != "" {
			c.RobotsTTL = v
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	ttl, err := time.ParseDuration(c.RobotsTTL)
	if err != nil {
		return fmt.Errorf("invalid robots_ttl: %w", err)
	}
	if ttl < 0 {
		return fmt.Errorf("robots_ttl must not be negative")
	}
	return nil
}
