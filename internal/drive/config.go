package drive

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
	"google.golang.org/api/googleapi"
)

// Config contains remote store client configuration.
type Config struct {
	// SecretName names the credential bundle holding token, refresh_token,
	// client_id and client_secret.
	SecretName string `toml:"secret_name"`
	TokenURL   string `toml:"token_url"`

	// Endpoint overrides the API base URL. Empty uses the public endpoint.
	Endpoint string `toml:"endpoint"`

	// ChunkSize is the resumable transfer chunk size. Default: "1MiB"
	ChunkSize    string `toml:"chunk_size"`
	chunkSizeVal int
}

type Env struct {
	SecretName string
	TokenURL   string
	Endpoint   string
	ChunkSize  string
}

func (c *Config) ChunkSizeBytes() int {
	return c.chunkSizeVal
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.SecretName != "" {
		c.SecretName = overlay.SecretName
	}
	if overlay.TokenURL != "" {
		c.TokenURL = overlay.TokenURL
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.ChunkSize != "" {
		c.ChunkSize = overlay.ChunkSize
	}
}

func (c *Config) loadDefaults() {
	if c.SecretName == "" {
		c.SecretName = "OAUTH_PYTHON_CREDENTIALS_ADMIN"
	}
	if c.TokenURL == "" {
		c.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if c.ChunkSize == "" {
		c.ChunkSize = "1MiB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.SecretName != "" {
		if v := os.Getenv(env.SecretName); v != "" {
			c.SecretName = v
		}
	}
	if env.TokenURL != "" {
		if v := os.Getenv(env.TokenURL); v != "" {
			c.TokenURL = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.ChunkSize != "" {
		if v := os.Getenv(env.ChunkSize); v != "" {
			c.ChunkSize = v
		}
	}
}

func (c *Config) validate() error {
	if c.SecretName == "" {
		return fmt.Errorf("secret_name required")
	}

	size, err := units.RAMInBytes(c.ChunkSize)
	if err != nil {
		return fmt.Errorf("invalid chunk_size: %w", err)
	}
	if size < googleapi.MinUploadChunkSize || size%googleapi.MinUploadChunkSize != 0 {
		return fmt.Errorf("chunk_size must be a positive multiple of %d bytes", googleapi.MinUploadChunkSize)
	}
	c.chunkSizeVal = int(size)
	return nil
}
