package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Plex contains connection and credential settings for plex.tv and the
// target media server.
type Plex struct {
	URL           string `toml:"url"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	AuthDir       string `toml:"auth_dir"`
	ServerTimeout int    `toml:"server_timeout"`
	PlexTVTimeout int    `toml:"plextv_timeout"`
}

// Refresh controls which library sections are refreshed after a download.
type Refresh struct {
	Enabled          bool              `toml:"enabled"`
	Mode             string            `toml:"mode"`
	MoviesCategories []string          `toml:"movies_categories"`
	TVCategories     []string          `toml:"tv_categories"`
	MoviesSections   []int             `toml:"movies_sections"`
	TVSections       []int             `toml:"tv_sections"`
	CustomSections   []int             `toml:"custom_sections"`
	SectionMapping   map[string]string `toml:"section_mapping"`
	SilentFailure    bool              `toml:"silent_failure"`
}

// GUI contains settings for Plex Home Theater on-screen notifications.
type GUI struct {
	Enabled        bool     `toml:"enabled"`
	Clients        []string `toml:"clients"`
	Secure         bool     `toml:"secure"`
	UseDNZBHeaders bool     `toml:"use_dnzb_headers"`
	Timeout        int      `toml:"timeout"`
}

// History contains settings for the run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for NotifyPlex.
//
// Configuration sections:
//   - Plex: server URL hint, plex.tv credentials, auth state directory
//   - Refresh: refresh mode and category/section wiring
//   - GUI: Plex Home Theater notification targets
//   - History: run journal location
//   - Logging: log format and level
type Config struct {
	Plex    Plex    `toml:"plex"`
	Refresh Refresh `toml:"refresh"`
	GUI     GUI     `toml:"gui"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/notifyplex/config.toml")
}

// Load locates, parses, and validates a configuration file. NZBGet option
// variables (NZBPO_*) overlay file values before normalization so the tool can
// run from an NZBGet scripts directory without a config file at all. The
// returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("notifyplex.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the auth state directory when missing.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Plex.AuthDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Plex.AuthDir, err)
	}
	return nil
}

// TokenPath returns the location of the persisted token record.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Plex.AuthDir, "plex_auth.json")
}

// HistoryPath returns the location of the run journal database.
func (c *Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.Plex.AuthDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
