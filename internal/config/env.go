package config

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`\d+`)

// LookupFunc matches os.LookupEnv and allows tests to inject environments.
type LookupFunc func(string) (string, bool)

// applyEnv overlays NZBGet option variables onto the configuration. NZBGet
// exposes every script option as NZBPO_<NAME>, so a populated environment
// takes precedence over file values for the options it names.
func (c *Config) applyEnv(lookup LookupFunc) {
	if value, ok := lookup("NZBPO_PLEXIP"); ok && strings.TrimSpace(value) != "" {
		scheme := "http"
		if envYes(lookup, "NZBPO_PLEXSECURE") {
			scheme = "https"
		}
		c.Plex.URL = scheme + "://" + strings.TrimSpace(value)
	}
	if value, ok := lookup("NZBPO_PLEXUSER"); ok {
		c.Plex.Username = value
	}
	if value, ok := lookup("NZBPO_PLEXPASS"); ok {
		c.Plex.Password = value
	}
	if value, ok := lookup("NZBPO_PLEXAUTHDIR"); ok && strings.TrimSpace(value) != "" {
		c.Plex.AuthDir = value
	}

	if value, ok := lookup("NZBPO_REFRESHLIBRARY"); ok {
		c.Refresh.Enabled = yes(value)
	}
	if value, ok := lookup("NZBPO_REFRESHMODE"); ok && strings.TrimSpace(value) != "" {
		c.Refresh.Mode = value
	}
	if value, ok := lookup("NZBPO_MOVIESCAT"); ok && strings.TrimSpace(value) != "" {
		c.Refresh.MoviesCategories = splitList(value)
	}
	if value, ok := lookup("NZBPO_TVCAT"); ok && strings.TrimSpace(value) != "" {
		c.Refresh.TVCategories = splitList(value)
	}
	if value, ok := lookup("NZBPO_CUSTOMPLEXSECTION"); ok && strings.TrimSpace(value) != "" {
		c.Refresh.CustomSections = ParseSectionIDs(value)
	}
	if value, ok := lookup("NZBPO_SECTIONMAPPING"); ok && strings.TrimSpace(value) != "" {
		if mapping := ParseSectionMapping(value); len(mapping) > 0 {
			c.Refresh.SectionMapping = mapping
		}
	}
	if value, ok := lookup("NZBPO_SILENTFAILURE"); ok {
		c.Refresh.SilentFailure = yes(value)
	}

	if value, ok := lookup("NZBPO_GUISHOW"); ok {
		c.GUI.Enabled = yes(value)
	}
	if value, ok := lookup("NZBPO_CLIENTSIP"); ok && strings.TrimSpace(value) != "" {
		c.GUI.Clients = splitList(value)
	}
	if value, ok := lookup("NZBPO_CLIENTSSECURE"); ok {
		c.GUI.Secure = yes(value)
	}
	if value, ok := lookup("NZBPO_DHEADERS"); ok {
		c.GUI.UseDNZBHeaders = yes(value)
	}
}

// ParseSectionIDs extracts every numeric section id from a free-form,
// comma separated option value.
func ParseSectionIDs(raw string) []int {
	matches := numberRe.FindAllString(raw, -1)
	ids := make([]int, 0, len(matches))
	seen := make(map[int]struct{}, len(matches))
	for _, match := range matches {
		id, err := strconv.Atoi(match)
		if err != nil || id <= 0 {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ParseSectionMapping parses the "category:Section Title,..." option format
// used by the NZBGet script settings page.
func ParseSectionMapping(raw string) map[string]string {
	mapping := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		category, title, found := strings.Cut(entry, ":")
		if !found {
			continue
		}
		category = strings.TrimSpace(category)
		title = strings.TrimSpace(title)
		if category == "" || title == "" {
			continue
		}
		mapping[category] = title
	}
	return mapping
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func yes(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "yes")
}

func envYes(lookup LookupFunc, key string) bool {
	value, ok := lookup(key)
	return ok && yes(value)
}
