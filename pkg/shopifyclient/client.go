package shopifyclient

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lastseal/micro-shopify/internal/client"
	"github.com/lastseal/micro-shopify/internal/config"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// New creates a new admin API client.
func New(ctx context.Context, cfg *shopify.Config) (shopify.Client, error) {
	if cfg == nil {
		return nil, shopify.ErrConfigRequired
	}

	c, err := client.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithPassword creates a client authenticated with private app credentials.
func NewWithPassword(ctx context.Context, shopName, apiVersion, username, password string) (shopify.Client, error) {
	return New(ctx, &shopify.Config{
		ShopName:   shopName,
		APIVersion: apiVersion,
		Username:   username,
		Password:   password,
	})
}

// NewWithToken creates a client authenticated with an admin API access token.
func NewWithToken(ctx context.Context, shopName, apiVersion, accessToken string) (shopify.Client, error) {
	return New(ctx, &shopify.Config{
		ShopName:    shopName,
		APIVersion:  apiVersion,
		AccessToken: accessToken,
	})
}

// NewFromEnv creates a client from the SHOPIFY_* environment variables.
// Options are applied to the loaded configuration before the client is built.
func NewFromEnv(ctx context.Context, opts ...func(*shopify.Config)) (shopify.Client, error) {
	settings, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	cfg := settings.ClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return New(ctx, cfg)
}

// NewLogrusLogger adapts logger to shopify.Logger. A nil logger uses the
// logrus standard logger.
func NewLogrusLogger(logger *logrus.Logger) shopify.Logger {
	return logging.NewLogrus(logger)
}
