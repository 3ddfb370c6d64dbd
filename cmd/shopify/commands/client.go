package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lastseal/micro-shopify/internal/config"
	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/pkg/shopify"
	"github.com/lastseal/micro-shopify/pkg/shopifyclient"
)

// loadSettings reads the environment and the optional config file, then
// applies the global flags.
func loadSettings() (*config.Settings, error) {
	v, err := config.New(viper.GetString("config"))
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	if shop := viper.GetString("shop"); shop != "" {
		settings.Name = shop
	}

	if version := viper.GetString("api-version"); version != "" {
		settings.Version = version
	}

	if viper.GetBool("verbose") {
		settings.Debug = true
	}

	return settings, nil
}

// newLogger builds the CLI logger writing to stderr.
func newLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// createClient builds a client from the configuration. When no credential is
// configured and stdin is a terminal the password is prompted for.
func createClient(cmd *cobra.Command) (shopify.Client, error) {
	return createClientWith(cmd)
}

// createClientWith is createClient with configuration overrides.
func createClientWith(cmd *cobra.Command, opts ...func(*shopify.Config)) (shopify.Client, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if !settings.HasCredentials() {
		password, err := promptPassword(cmd, settings.User)
		if err != nil {
			return nil, err
		}

		settings.Pass = password
	}

	cfg := settings.ClientConfig()
	cfg.Logger = shopifyclient.NewLogrusLogger(newLogger(settings.Debug))

	for _, opt := range opts {
		opt(cfg)
	}

	return shopifyclient.New(commandContext(cmd), cfg)
}

func promptPassword(cmd *cobra.Command, user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", constants.ErrCredentialsRequired
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", user)

	bytePassword, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimSpace(string(bytePassword))
	if password == "" {
		return "", constants.ErrCredentialsRequired
	}

	return password, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
