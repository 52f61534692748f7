package config

const (
	defaultAuthDir       = "~/.config/notifyplex"
	defaultServerTimeout = 10
	defaultPlexTVTimeout = 30
	defaultRefreshMode   = "auto"
	defaultGUITimeout    = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			AuthDir:       defaultAuthDir,
			ServerTimeout: defaultServerTimeout,
			PlexTVTimeout: defaultPlexTVTimeout,
		},
		Refresh: Refresh{
			Enabled:          true,
			Mode:             defaultRefreshMode,
			MoviesCategories: []string{"movies"},
			TVCategories:     []string{"tv"},
		},
		GUI: GUI{
			UseDNZBHeaders: true,
			Timeout:        defaultGUITimeout,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
