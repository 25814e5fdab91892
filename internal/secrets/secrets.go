// Package secrets resolves named credential bundles from the environment or
// from JSON files on disk.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/document-center/pkg/errs"
)

var (
	// ErrNotFound indicates no source holds the named secret.
	ErrNotFound = fmt.Errorf("secrets: not found: %w", errs.ErrNotFound)

	// ErrMalformed indicates the secret exists but is not a JSON object.
	ErrMalformed = fmt.Errorf("secrets: malformed: %w", errs.ErrInvalidArgument)
)

// Provider returns the key/value pairs stored under a secret name.
type Provider interface {
	Secret(ctx context.Context, name string) (map[string]string, error)
}

type provider struct {
	dir       string
	envPrefix string
	logger    *slog.Logger
}

// New creates a provider that checks <EnvPrefix><NAME> first, then <Dir>/<name>.json.
func New(cfg *Config, logger *slog.Logger) Provider {
	return &provider{
		dir:       cfg.Dir,
		envPrefix: cfg.EnvPrefix,
		logger:    logger.With("system", "secrets"),
	}
}

func (p *provider) Secret(ctx context.Context, name string) (map[string]string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrMalformed, name)
	}

	if p.envPrefix != "" {
		if raw, ok := os.LookupEnv(p.envPrefix + strings.ToUpper(name)); ok {
			p.logger.Debug("secret resolved", "name", name, "source", "env")
			return parse(name, []byte(raw))
		}
	}

	if p.dir != "" {
		raw, err := os.ReadFile(filepath.Join(p.dir, name+".json"))
		if err == nil {
			p.logger.Debug("secret resolved", "name", name, "source", "file")
			return parse(name, raw)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read secret %s: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func parse(name string, raw []byte) (map[string]string, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			b, _ := json.Marshal(val)
			out[k] = string(b)
		}
	}
	return out, nil
}
