package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Section is one Plex library as reported by /library/sections.
type Section struct {
	ID    int
	Title string
	Kind  string
}

// ClientOption customises Client construction.
type ClientOption func(*Client)

// WithClientHTTPClient overrides the HTTP client used for server calls.
func WithClientHTTPClient(client HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// Client issues library requests against one Plex Media Server.
type Client struct {
	baseURL          string
	token            string
	clientIdentifier string
	httpClient       HTTPDoer
}

// NewClient builds a Client for the given connection.
func NewClient(conn ServerConnection, clientIdentifier string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:          strings.TrimRight(conn.BaseURL, "/"),
		token:            conn.Token,
		clientIdentifier: clientIdentifier,
		httpClient:       &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// BaseURL returns the server endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type sectionList struct {
	Directories []sectionDirectory `xml:"Directory"`
}

type sectionDirectory struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// Sections lists the server's libraries sorted by section id.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	resp, err := c.get(ctx, "/library/sections")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "list sections"); err != nil {
		return nil, err
	}

	var list sectionList
	if err := xml.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode sections response: %w", err)
	}

	sections := make([]Section, 0, len(list.Directories))
	for _, dir := range list.Directories {
		id, err := strconv.Atoi(strings.TrimSpace(dir.Key))
		if err != nil {
			continue
		}
		sections = append(sections, Section{
			ID:    id,
			Title: strings.TrimSpace(dir.Title),
			Kind:  strings.ToLower(strings.TrimSpace(dir.Type)),
		})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].ID < sections[j].ID })
	return sections, nil
}

// RefreshSection asks the server to rescan one library.
func (c *Client) RefreshSection(ctx context.Context, id int) error {
	resp, err := c.get(ctx, fmt.Sprintf("/library/sections/%d/refresh", id))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return c.checkStatus(resp, fmt.Sprintf("refresh section %d", id))
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build server request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", c.token)
	applyStandardHeaders(req, c.clientIdentifier)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plex server request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) checkStatus(resp *http.Response, action string) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", action, ErrUnauthorized)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: server returned %d", action, resp.StatusCode)
	}
	return nil
}
