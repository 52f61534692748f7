package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePlex(); err != nil {
		return err
	}
	c.normalizeRefresh()
	c.normalizeGUI()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePlex() error {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Username = strings.TrimSpace(c.Plex.Username)
	c.Plex.Password = strings.TrimSpace(c.Plex.Password)

	if strings.TrimSpace(c.Plex.AuthDir) == "" {
		c.Plex.AuthDir = defaultAuthDir
	}
	var err error
	if c.Plex.AuthDir, err = expandPath(c.Plex.AuthDir); err != nil {
		return fmt.Errorf("plex.auth_dir: %w", err)
	}
	if c.Plex.ServerTimeout <= 0 {
		c.Plex.ServerTimeout = defaultServerTimeout
	}
	if c.Plex.PlexTVTimeout <= 0 {
		c.Plex.PlexTVTimeout = defaultPlexTVTimeout
	}
	return nil
}

func (c *Config) normalizeRefresh() {
	c.Refresh.Mode = strings.ToLower(strings.TrimSpace(c.Refresh.Mode))
	if c.Refresh.Mode == "" {
		c.Refresh.Mode = defaultRefreshMode
	}
	c.Refresh.MoviesCategories = normalizeList(c.Refresh.MoviesCategories)
	c.Refresh.TVCategories = normalizeList(c.Refresh.TVCategories)

	if c.Refresh.SectionMapping != nil {
		mapping := make(map[string]string, len(c.Refresh.SectionMapping))
		for category, title := range c.Refresh.SectionMapping {
			category = strings.TrimSpace(category)
			title = strings.TrimSpace(title)
			if category == "" || title == "" {
				continue
			}
			mapping[category] = title
		}
		c.Refresh.SectionMapping = mapping
	}
}

func (c *Config) normalizeGUI() {
	clients := make([]string, 0, len(c.GUI.Clients))
	for _, client := range c.GUI.Clients {
		client = strings.TrimSpace(client)
		if client == "" {
			continue
		}
		clients = append(clients, client)
	}
	c.GUI.Clients = clients
	if c.GUI.Timeout <= 0 {
		c.GUI.Timeout = defaultGUITimeout
	}
}

func (c *Config) normalizeHistory() error {
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
