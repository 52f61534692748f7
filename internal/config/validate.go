package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var refreshModes = map[string]struct{}{
	"auto":     {},
	"custom":   {},
	"both":     {},
	"advanced": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateRefresh(); err != nil {
		return err
	}
	if err := c.validateGUI(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		return errors.New("plex.url must be set (host:port of the media server, e.g. http://192.168.1.10:32400)")
	}
	parsed, err := url.Parse(c.Plex.URL)
	if err != nil {
		return fmt.Errorf("plex.url is not a valid URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("plex.url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("plex.url is missing a host")
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if !c.Refresh.Enabled {
		return nil
	}
	if _, ok := refreshModes[c.Refresh.Mode]; !ok {
		return fmt.Errorf("refresh.mode must be one of auto, custom, both, advanced; got %q", c.Refresh.Mode)
	}
	for _, id := range c.Refresh.CustomSections {
		if id <= 0 {
			return fmt.Errorf("refresh.custom_sections contains invalid section id %d", id)
		}
	}
	for _, id := range append(append([]int{}, c.Refresh.MoviesSections...), c.Refresh.TVSections...) {
		if id <= 0 {
			return fmt.Errorf("refresh section pins contain invalid section id %d", id)
		}
	}
	if c.Refresh.Mode == "advanced" && len(c.Refresh.SectionMapping) == 0 {
		return errors.New("refresh.section_mapping must be set when refresh.mode is advanced")
	}
	return nil
}

func (c *Config) validateGUI() error {
	if !c.GUI.Enabled {
		return nil
	}
	if len(c.GUI.Clients) == 0 {
		return errors.New("gui.clients must list at least one host when gui.enabled is true")
	}
	for _, client := range c.GUI.Clients {
		if strings.ContainsAny(client, " /") {
			return fmt.Errorf("gui.clients entry %q must be host or host:port", client)
		}
	}
	return nil
}

// RequireCredentials reports an error when the plex.tv credential pair is
// incomplete. Commands that only talk to the media server with a stored token
// skip this check.
func (c *Config) RequireCredentials() error {
	if c.Plex.Username == "" || c.Plex.Password == "" {
		return errors.New("plex.username and plex.password are required (or set NZBPO_PLEXUSER / NZBPO_PLEXPASS)")
	}
	return nil
}
