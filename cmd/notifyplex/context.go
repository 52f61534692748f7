package main

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"notifyplex/internal/config"
	"notifyplex/internal/logging"
	"notifyplex/internal/plex"
	"notifyplex/internal/refresh"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			cfg = nil
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = slog.Default()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) tokenStore() (*plex.FileTokenStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return plex.NewFileTokenStore(cfg.TokenPath()), nil
}

func (c *commandContext) authenticator(store plex.TokenStore) (*plex.Authenticator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return plex.NewAuthenticator(plex.Credentials{
		Username: cfg.Plex.Username,
		Password: cfg.Plex.Password,
	}, store, plex.WithHTTPClient(&http.Client{
		Timeout: time.Duration(cfg.Plex.PlexTVTimeout) * time.Second,
	})), nil
}

func (c *commandContext) locator() (*plex.Locator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Plex.ServerTimeout) * time.Second
	return plex.NewLocator(cfg.Plex.URL, timeout, c.ensureLogger()), nil
}

func (c *commandContext) runner() (*refresh.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.tokenStore()
	if err != nil {
		return nil, err
	}
	auth, err := c.authenticator(store)
	if err != nil {
		return nil, err
	}
	locator, err := c.locator()
	if err != nil {
		return nil, err
	}
	return refresh.NewRunner(cfg, store, auth, locator, c.ensureLogger(), nil), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
