package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultResourcesEndpoint = "https://plex.tv/api/v2/resources?includeHttps=1"

// ServerConnection is a reachable Plex Media Server endpoint plus the token
// that works against it.
type ServerConnection struct {
	BaseURL string
	Token   string
}

// LocatorOption customises Locator construction.
type LocatorOption func(*Locator)

// WithLocatorHTTPClient overrides the HTTP client used for probes and
// discovery.
func WithLocatorHTTPClient(client HTTPDoer) LocatorOption {
	return func(l *Locator) {
		l.httpClient = client
	}
}

// WithResourcesEndpoint overrides the plex.tv resources URL (used in tests).
func WithResourcesEndpoint(endpoint string) LocatorOption {
	return func(l *Locator) {
		l.resourcesURL = endpoint
	}
}

// Locator finds a Plex server that answers: the address cached from the last
// run first, then the configured address, then plex.tv resource discovery.
type Locator struct {
	serverHint   string
	resourcesURL string
	httpClient   HTTPDoer
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewLocator builds a Locator. serverHint is the operator-configured server
// URL and may be empty when discovery alone should drive selection.
func NewLocator(serverHint string, probeTimeout time.Duration, logger *slog.Logger, opts ...LocatorOption) *Locator {
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := &Locator{
		serverHint:   strings.TrimRight(strings.TrimSpace(serverHint), "/"),
		resourcesURL: defaultResourcesEndpoint,
		httpClient:   &http.Client{Timeout: probeTimeout},
		probeTimeout: probeTimeout,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(loc)
	}
	return loc
}

// Locate returns a server connection proven reachable with an identity probe.
func (l *Locator) Locate(ctx context.Context, record TokenRecord) (ServerConnection, error) {
	tried := make(map[string]bool)
	probe := func(baseURL string) (ServerConnection, bool) {
		baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if baseURL == "" || tried[baseURL] {
			return ServerConnection{}, false
		}
		tried[baseURL] = true
		if err := l.checkIdentity(ctx, baseURL, record); err != nil {
			l.logger.Debug("server probe failed", "server", baseURL, "error", err)
			return ServerConnection{}, false
		}
		return ServerConnection{BaseURL: baseURL, Token: record.Token}, true
	}

	if conn, ok := probe(record.ServerURL); ok {
		return conn, nil
	}
	if conn, ok := probe(l.serverHint); ok {
		return conn, nil
	}

	candidates, err := l.discover(ctx, record)
	if err != nil {
		l.logger.Debug("resource discovery failed", "error", err)
	}
	for _, candidate := range candidates {
		if conn, ok := probe(candidate); ok {
			return conn, nil
		}
	}
	return ServerConnection{}, ErrNoServer
}

func (l *Locator) checkIdentity(ctx context.Context, baseURL string, record TokenRecord) error {
	ctx, cancel := context.WithTimeout(ctx, l.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/identity", nil)
	if err != nil {
		return fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", record.Token)
	applyStandardHeaders(req, record.ClientIdentifier)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity probe: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	// A 401 still proves the server is there; token handling happens later.
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("identity probe returned %d", resp.StatusCode)
	}
	return nil
}

type resourceList struct {
	Resources []resource `xml:"resource"`
}

type resource struct {
	Name             string               `xml:"name,attr"`
	AccessToken      string               `xml:"accessToken,attr"`
	ClientIdentifier string               `xml:"clientIdentifier,attr"`
	Provides         string               `xml:"provides,attr"`
	Connections      []resourceConnection `xml:"connections>connection"`
}

type resourceConnection struct {
	URI      string `xml:"uri,attr"`
	Protocol string `xml:"protocol,attr"`
	Local    string `xml:"local,attr"`
	Relay    string `xml:"relay,attr"`
	Address  string `xml:"address,attr"`
	Port     string `xml:"port,attr"`
}

// discover asks plex.tv for the account's servers and returns candidate base
// URLs best first.
func (l *Locator) discover(ctx context.Context, record TokenRecord) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.resourcesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build plex resources request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", record.Token)
	applyStandardHeaders(req, record.ClientIdentifier)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch plex resources: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("plex resources returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list resourceList
	if err := xml.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode plex resources: %w", err)
	}

	hintHost := hostOf(l.serverHint)
	var candidates []string
	for _, res := range list.Resources {
		if !strings.Contains(res.Provides, "server") {
			continue
		}
		if uri := selectBestConnection(res.Connections, hintHost); uri != "" {
			candidates = append(candidates, uri)
		}
	}
	return candidates, nil
}

func selectBestConnection(connections []resourceConnection, hintHost string) string {
	bestScore := -1
	bestURL := ""
	for _, conn := range connections {
		uri := strings.TrimSpace(conn.URI)
		if uri == "" {
			continue
		}
		protocol := strings.ToLower(strings.TrimSpace(conn.Protocol))
		score := 0
		if protocol == "https" {
			score += 50
		} else if protocol != "" {
			score -= 10
		}

		if hintHost != "" && strings.TrimSpace(conn.Address) == hintHost {
			score += 100
		}
		if strings.Contains(uri, ".plex.direct") {
			score += 30
		}
		if parseBool(conn.Local) {
			score += 5
		}
		if parseBool(conn.Relay) {
			score -= 5
		}

		if score > bestScore {
			bestScore = score
			bestURL = strings.TrimRight(uri, "/")
		}
	}
	return bestURL
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func parseBool(value string) bool {
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
