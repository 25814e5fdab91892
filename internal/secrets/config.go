package secrets

import (
	"fmt"
	"os"
)

// Config locates secrets on disk and in the environment.
type Config struct {
	// Dir holds <name>.json files. Default: ".secrets"
	Dir string `toml:"dir"`

	// EnvPrefix prefixes environment variables carrying a secret as JSON.
	// Default: "SECRET_"
	EnvPrefix string `toml:"env_prefix"`
}

type Env struct {
	Dir       string
	EnvPrefix string
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.EnvPrefix != "" {
		c.EnvPrefix = overlay.EnvPrefix
	}
}

func (c *Config) loadDefaults() {
	if c.Dir == "" {
		c.Dir = ".secrets"
	}
	if c.EnvPrefix == "" {
		c.EnvPrefix = "SECRET_"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
	if env.EnvPrefix != "" {
		if v := os.Getenv(env.EnvPrefix); v != "" {
			c.EnvPrefix = v
		}
	}
}

func (c *Config) validate() error {
	if c.Dir == "" && c.EnvPrefix == "" {
		return fmt.Errorf("dir or env_prefix required")
	}
	return nil
}
