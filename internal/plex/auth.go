package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultPlexTVBaseURL = "https://plex.tv"

// Credentials hold the plex.tv account login used for password sign-in.
type Credentials struct {
	Username string
	Password string
}

// AuthenticatorOption customises Authenticator construction.
type AuthenticatorOption func(*Authenticator)

// WithHTTPClient overrides the HTTP client used for plex.tv calls.
func WithHTTPClient(client HTTPDoer) AuthenticatorOption {
	return func(a *Authenticator) {
		a.httpClient = client
	}
}

// WithBaseURL overrides the plex.tv base URL (used in tests).
func WithBaseURL(baseURL string) AuthenticatorOption {
	return func(a *Authenticator) {
		a.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// Authenticator obtains and persists the plex.tv account token.
type Authenticator struct {
	creds      Credentials
	store      TokenStore
	baseURL    string
	httpClient HTTPDoer

	// clientID survives a store delete within one run so plex.tv keeps
	// treating this install as one device across re-authentication.
	clientID string
}

// NewAuthenticator builds an Authenticator backed by the provided store.
func NewAuthenticator(creds Credentials, store TokenStore, opts ...AuthenticatorOption) *Authenticator {
	auth := &Authenticator{
		creds:      creds,
		store:      store,
		baseURL:    defaultPlexTVBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(auth)
	}
	if auth.httpClient == nil {
		auth.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return auth
}

// ObtainToken returns a usable token record, signing in to plex.tv only when
// no persisted token exists or force is set. The client identifier survives
// re-authentication, including a deleted record, so plex.tv keeps treating
// this install as one device.
func (a *Authenticator) ObtainToken(ctx context.Context, force bool) (TokenRecord, error) {
	record, ok, err := a.store.Load()
	if err != nil {
		return TokenRecord{}, err
	}
	if record.ClientIdentifier == "" {
		record.ClientIdentifier = a.clientID
	}
	if record.ClientIdentifier == "" {
		record.ClientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	a.clientID = record.ClientIdentifier

	if ok && !force {
		return record, nil
	}

	token, err := a.signIn(ctx, record.ClientIdentifier)
	if err != nil {
		return TokenRecord{}, err
	}

	record.Token = token
	if err := a.store.Save(record); err != nil {
		return TokenRecord{}, err
	}
	return record, nil
}

type signInResponse struct {
	AuthToken           string `xml:"authToken,attr"`
	AuthenticationToken string `xml:"authenticationToken,attr"`
}

func (r signInResponse) token() string {
	if token := strings.TrimSpace(r.AuthToken); token != "" {
		return token
	}
	return strings.TrimSpace(r.AuthenticationToken)
}

func (a *Authenticator) signIn(ctx context.Context, clientIdentifier string) (string, error) {
	if strings.TrimSpace(a.creds.Username) == "" || a.creds.Password == "" {
		return "", fmt.Errorf("%w: username and password required", ErrAuthFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/users/sign_in.xml", nil)
	if err != nil {
		return "", fmt.Errorf("build plex.tv sign-in request: %w", err)
	}
	req.SetBasicAuth(a.creds.Username, a.creds.Password)
	req.Header.Set("Accept", "application/xml")
	applyStandardHeaders(req, clientIdentifier)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("plex.tv sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: plex.tv rejected the credentials", ErrAuthFailed)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("plex.tv sign-in returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed signInResponse
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode plex.tv sign-in response: %w", err)
	}
	token := parsed.token()
	if token == "" {
		return "", fmt.Errorf("%w: response carried no token", ErrAuthFailed)
	}
	return token, nil
}
