package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"notifyplex/internal/config"
	"notifyplex/internal/plex"
	"notifyplex/internal/resolve"
)

var (
	// ErrFatal marks failures that retrying cannot fix: exhausted
	// re-authentication or a section mapping that names a library the server
	// does not have.
	ErrFatal = errors.New("refresh failed permanently")

	// ErrUnreachable marks refresh calls that failed for transport or server
	// reasons unrelated to authentication.
	ErrUnreachable = errors.New("refresh request failed")
)

// Outcome summarises one dispatch pass over the resolved sections.
type Outcome int

const (
	// OutcomeSuccess means every section refresh was accepted.
	OutcomeSuccess Outcome = iota
	// OutcomeNeedsReauth means at least one call came back 401.
	OutcomeNeedsReauth
	// OutcomeUnreachable means calls failed without an auth rejection.
	OutcomeUnreachable
)

// SectionClient is the server surface the runner drives.
type SectionClient interface {
	Sections(ctx context.Context) ([]plex.Section, error)
	RefreshSection(ctx context.Context, id int) error
}

// TokenSource obtains a usable token record, signing in when forced.
type TokenSource interface {
	ObtainToken(ctx context.Context, force bool) (plex.TokenRecord, error)
}

// ServerLocator finds a reachable server for a token record.
type ServerLocator interface {
	Locate(ctx context.Context, record plex.TokenRecord) (plex.ServerConnection, error)
}

// ClientFactory builds a SectionClient for a located server.
type ClientFactory func(conn plex.ServerConnection, clientIdentifier string) SectionClient

// Dispatch fires refresh requests for every resolved section. An auth
// rejection anywhere wins over transport failures because it is the only
// outcome the caller can repair.
func Dispatch(ctx context.Context, client SectionClient, sections []int, logger *slog.Logger) Outcome {
	outcome := OutcomeSuccess
	for _, id := range sections {
		err := client.RefreshSection(ctx, id)
		if err == nil {
			logger.Info("section refresh dispatched", "section", id)
			continue
		}
		if errors.Is(err, plex.ErrUnauthorized) {
			logger.Warn("section refresh rejected", "section", id, "error", err)
			outcome = OutcomeNeedsReauth
			continue
		}
		logger.Warn("section refresh failed", "section", id, "error", err)
		if outcome == OutcomeSuccess {
			outcome = OutcomeUnreachable
		}
	}
	return outcome
}

// runState tracks the token lifecycle within one run. The progression is
// strictly fresh, then at most one pass through reauthenticating; a rejection
// while reauthenticating ends the run.
type runState int

const (
	stateFresh runState = iota
	stateReauthenticating
)

// Runner orchestrates one post-processing refresh: authenticate, locate the
// server, resolve sections for the category, dispatch, and repair a stale
// token exactly once.
type Runner struct {
	cfg     *config.Config
	store   plex.TokenStore
	tokens  TokenSource
	locator ServerLocator
	factory ClientFactory
	logger  *slog.Logger
}

// NewRunner wires a Runner from its collaborators. factory may be nil, in
// which case real HTTP clients are built with the configured server timeout.
func NewRunner(cfg *config.Config, store plex.TokenStore, tokens TokenSource, locator ServerLocator, logger *slog.Logger, factory ClientFactory) *Runner {
	if factory == nil {
		timeout := time.Duration(cfg.Plex.ServerTimeout) * time.Second
		factory = func(conn plex.ServerConnection, clientIdentifier string) SectionClient {
			return plex.NewClient(conn, clientIdentifier, timeout)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:     cfg,
		store:   store,
		tokens:  tokens,
		locator: locator,
		factory: factory,
		logger:  logger,
	}
}

// Run refreshes the sections resolved for category and returns their ids.
func (r *Runner) Run(ctx context.Context, category string) ([]int, error) {
	mode, err := resolve.ParseMode(r.cfg.Refresh.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatal, err)
	}

	state := stateFresh
	for {
		record, err := r.tokens.ObtainToken(ctx, state == stateReauthenticating)
		if err != nil {
			return nil, err
		}

		conn, err := r.locator.Locate(ctx, record)
		if err != nil {
			return nil, err
		}
		if conn.BaseURL != record.ServerURL {
			record.ServerURL = conn.BaseURL
			if err := r.store.Save(record); err != nil {
				r.logger.Warn("persist server address failed", "error", err)
			}
		}

		client := r.factory(conn, record.ClientIdentifier)

		sections, outcome, err := r.attempt(ctx, client, mode, category)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case OutcomeSuccess:
			return sections, nil
		case OutcomeUnreachable:
			return sections, fmt.Errorf("%w: server did not accept all refreshes", ErrUnreachable)
		case OutcomeNeedsReauth:
			if state == stateReauthenticating {
				return nil, fmt.Errorf("%w: token rejected after re-authentication", ErrFatal)
			}
			r.logger.Info("stored token rejected, re-authenticating")
			if err := r.store.Delete(); err != nil {
				return nil, err
			}
			state = stateReauthenticating
		}
	}
}

// attempt runs one resolve-and-dispatch pass against an authenticated client.
func (r *Runner) attempt(ctx context.Context, client SectionClient, mode resolve.Mode, category string) ([]int, Outcome, error) {
	live, err := client.Sections(ctx)
	if err != nil {
		if errors.Is(err, plex.ErrUnauthorized) {
			return nil, OutcomeNeedsReauth, nil
		}
		return nil, OutcomeUnreachable, err
	}

	result := resolve.Resolve(mode, category, r.cfg.Refresh, live)
	if len(result.MissingTitles) > 0 {
		return nil, OutcomeSuccess, fmt.Errorf(
			"%w: section mapping names missing libraries: %s",
			ErrFatal, strings.Join(result.MissingTitles, ", "))
	}
	if len(result.Sections) == 0 {
		r.logger.Info("no sections resolved for category", "category", category, "mode", string(mode))
		return nil, OutcomeSuccess, nil
	}

	r.logger.Info("refreshing sections",
		"category", category,
		"mode", string(mode),
		"sections", fmt.Sprint(result.Sections))
	return result.Sections, Dispatch(ctx, client, result.Sections, r.logger), nil
}
