// Package config loads, normalizes, and validates NotifyPlex configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays NZBGet option variables (NZBPO_*)
// so the tool works unchanged from an NZBGet scripts directory. The Config
// type centralizes every knob the CLI needs: the server address hint, the
// plex.tv credential, refresh mode wiring, GUI notification targets, and the
// run journal location.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical refresh modes, and clear validation errors.
package config
