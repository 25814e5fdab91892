package drive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/JaimeStill/document-center/internal/secrets"
	"github.com/JaimeStill/document-center/pkg/pagination"
)

// New builds the Drive service from the configured credential bundle and
// returns a gateway over it. The service is created once and shared.
func New(ctx context.Context, cfg *Config, provider secrets.Provider, pg pagination.Config, logger *slog.Logger) (System, error) {
	creds, err := provider.Secret(ctx, cfg.SecretName)
	if err != nil {
		return nil, fmt.Errorf("drive credentials: %w", err)
	}

	token, err := tokenFrom(creds)
	if err != nil {
		return nil, err
	}

	oauth := &oauth2.Config{
		ClientID:     creds["client_id"],
		ClientSecret: creds["client_secret"],
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		Scopes:       []string{drivev3.DriveScope},
	}

	client := oauth.Client(context.Background(), token)

	opts := []option.ClientOption{
		option.WithHTTPClient(client),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}

	logger.Info("drive service initialized", "secret", cfg.SecretName, "chunk_size", cfg.ChunkSizeBytes())
	return NewWithAPI(NewAPI(svc, client, cfg.ChunkSizeBytes()), cfg, pg, logger), nil
}

// tokenFrom builds an OAuth token from a credential bundle. Without a
// recorded expiry the access token is treated as expired so the first call
// refreshes it.
func tokenFrom(creds map[string]string) (*oauth2.Token, error) {
	if creds["refresh_token"] == "" {
		return nil, fmt.Errorf("%w: credentials missing refresh_token", ErrInvalidArgument)
	}

	token := &oauth2.Token{
		AccessToken:  creds["token"],
		RefreshToken: creds["refresh_token"],
		TokenType:    "Bearer",
		Expiry:       time.Now(),
	}

	if raw := creds["expiry"]; raw != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
			if t, err := time.Parse(layout, raw); err == nil {
				token.Expiry = t
				break
			}
		}
	}

	return token, nil
}
