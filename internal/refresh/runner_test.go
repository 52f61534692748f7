package refresh_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"notifyplex/internal/config"
	"notifyplex/internal/plex"
	"notifyplex/internal/refresh"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	record  plex.TokenRecord
	ok      bool
	deletes int
	saves   int
}

func (s *fakeStore) Load() (plex.TokenRecord, bool, error) { return s.record, s.ok, nil }

func (s *fakeStore) Save(record plex.TokenRecord) error {
	s.record = record
	s.ok = true
	s.saves++
	return nil
}

func (s *fakeStore) Delete() error {
	s.record = plex.TokenRecord{}
	s.ok = false
	s.deletes++
	return nil
}

type fakeTokens struct {
	store      *fakeStore
	freshToken string
	calls      int
	forced     int
}

func (t *fakeTokens) ObtainToken(_ context.Context, force bool) (plex.TokenRecord, error) {
	t.calls++
	if force {
		t.forced++
	}
	if t.store.ok && !force {
		return t.store.record, nil
	}
	record := t.store.record
	record.Token = t.freshToken
	record.ClientIdentifier = "client-id"
	if err := t.store.Save(record); err != nil {
		return plex.TokenRecord{}, err
	}
	return record, nil
}

type fakeLocator struct {
	baseURL string
	calls   int
}

func (l *fakeLocator) Locate(_ context.Context, record plex.TokenRecord) (plex.ServerConnection, error) {
	l.calls++
	return plex.ServerConnection{BaseURL: l.baseURL, Token: record.Token}, nil
}

// fakeClient accepts one token and rejects everything else with 401.
type fakeClient struct {
	validToken string
	token      string
	sections   []plex.Section
	refreshed  []int
	failIDs    map[int]error
}

func (c *fakeClient) Sections(context.Context) ([]plex.Section, error) {
	if c.token != c.validToken {
		return nil, plex.ErrUnauthorized
	}
	return c.sections, nil
}

func (c *fakeClient) RefreshSection(_ context.Context, id int) error {
	if c.token != c.validToken {
		return plex.ErrUnauthorized
	}
	if err, ok := c.failIDs[id]; ok {
		return err
	}
	c.refreshed = append(c.refreshed, id)
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Refresh.Mode = "auto"
	cfg.Refresh.MoviesCategories = []string{"movies"}
	cfg.Refresh.TVCategories = []string{"tv"}
	return &cfg
}

var live = []plex.Section{
	{ID: 1, Title: "Movies", Kind: "movie"},
	{ID: 2, Title: "TV Shows", Kind: "show"},
}

func newRunner(cfg *config.Config, store *fakeStore, tokens *fakeTokens, client *fakeClient) *refresh.Runner {
	factory := func(conn plex.ServerConnection, _ string) refresh.SectionClient {
		client.token = conn.Token
		return client
	}
	return refresh.NewRunner(cfg, store, tokens, &fakeLocator{baseURL: "http://plex.local:32400"}, quietLogger(), factory)
}

func TestRunHappyPath(t *testing.T) {
	store := &fakeStore{
		record: plex.TokenRecord{Token: "good", ClientIdentifier: "client-id", ServerURL: "http://plex.local:32400"},
		ok:     true,
	}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{validToken: "good", sections: live}

	sections, err := newRunner(testConfig(), store, tokens, client).Run(context.Background(), "movies")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []int{1}; !reflect.DeepEqual(sections, want) {
		t.Errorf("sections = %v, want %v", sections, want)
	}
	if !reflect.DeepEqual(client.refreshed, []int{1}) {
		t.Errorf("refreshed = %v", client.refreshed)
	}
	if tokens.calls != 1 || tokens.forced != 0 {
		t.Errorf("token calls = %d forced = %d", tokens.calls, tokens.forced)
	}
}

func TestRunReauthenticatesOnceOnStaleToken(t *testing.T) {
	store := &fakeStore{
		record: plex.TokenRecord{Token: "stale", ClientIdentifier: "client-id", ServerURL: "http://plex.local:32400"},
		ok:     true,
	}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{validToken: "good", sections: live}

	sections, err := newRunner(testConfig(), store, tokens, client).Run(context.Background(), "tv")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []int{2}; !reflect.DeepEqual(sections, want) {
		t.Errorf("sections = %v, want %v", sections, want)
	}
	if store.deletes != 1 {
		t.Errorf("deletes = %d, want 1", store.deletes)
	}
	if tokens.calls != 2 || tokens.forced != 1 {
		t.Errorf("token calls = %d forced = %d, want 2/1", tokens.calls, tokens.forced)
	}
}

func TestRunStopsAfterSecondRejection(t *testing.T) {
	store := &fakeStore{
		record: plex.TokenRecord{Token: "stale", ClientIdentifier: "client-id"},
		ok:     true,
	}
	// The fresh token is also rejected, e.g. the account lost server access.
	tokens := &fakeTokens{store: store, freshToken: "still-bad"}
	client := &fakeClient{validToken: "good", sections: live}

	_, err := newRunner(testConfig(), store, tokens, client).Run(context.Background(), "movies")
	if !errors.Is(err, refresh.ErrFatal) {
		t.Fatalf("err = %v, want ErrFatal", err)
	}
	if tokens.calls != 2 {
		t.Errorf("token calls = %d, want exactly 2 (no third attempt)", tokens.calls)
	}
	if store.deletes != 1 {
		t.Errorf("deletes = %d, want 1", store.deletes)
	}
}

func TestRunMissingMappedTitleIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Refresh.Mode = "advanced"
	cfg.Refresh.SectionMapping = map[string]string{"movies": "Anime Movies"}

	store := &fakeStore{
		record: plex.TokenRecord{Token: "good", ClientIdentifier: "client-id", ServerURL: "http://plex.local:32400"},
		ok:     true,
	}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{validToken: "good", sections: live}

	_, err := newRunner(cfg, store, tokens, client).Run(context.Background(), "movies")
	if !errors.Is(err, refresh.ErrFatal) {
		t.Fatalf("err = %v, want ErrFatal", err)
	}
	if len(client.refreshed) != 0 {
		t.Errorf("no sections should refresh, got %v", client.refreshed)
	}
}

func TestRunNoSectionsResolvedSucceedsWithoutCalls(t *testing.T) {
	store := &fakeStore{
		record: plex.TokenRecord{Token: "good", ClientIdentifier: "client-id", ServerURL: "http://plex.local:32400"},
		ok:     true,
	}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{validToken: "good", sections: live}

	sections, err := newRunner(testConfig(), store, tokens, client).Run(context.Background(), "software")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sections != nil {
		t.Errorf("sections = %v, want none", sections)
	}
	if len(client.refreshed) != 0 {
		t.Errorf("refreshed = %v, want none", client.refreshed)
	}
}

func TestRunPersistsDiscoveredServerURL(t *testing.T) {
	store := &fakeStore{
		record: plex.TokenRecord{Token: "good", ClientIdentifier: "client-id", ServerURL: "http://old.local:32400"},
		ok:     true,
	}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{validToken: "good", sections: live}

	if _, err := newRunner(testConfig(), store, tokens, client).Run(context.Background(), "movies"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.record.ServerURL != "http://plex.local:32400" {
		t.Errorf("persisted server = %q", store.record.ServerURL)
	}
}

func TestRunUnreachableSectionsReported(t *testing.T) {
	store := &fakeStore{
		record: plex.TokenRecord{Token: "good", ClientIdentifier: "client-id", ServerURL: "http://plex.local:32400"},
		ok:     true,
	}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{
		validToken: "good",
		sections:   live,
		failIDs:    map[int]error{1: fmt.Errorf("connection refused")},
	}

	_, err := newRunner(testConfig(), store, tokens, client).Run(context.Background(), "movies")
	if !errors.Is(err, refresh.ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	cfg := testConfig()
	cfg.Refresh.Mode = "bogus"

	store := &fakeStore{ok: true, record: plex.TokenRecord{Token: "good"}}
	tokens := &fakeTokens{store: store, freshToken: "good"}
	client := &fakeClient{validToken: "good", sections: live}

	_, err := newRunner(cfg, store, tokens, client).Run(context.Background(), "movies")
	if !errors.Is(err, refresh.ErrFatal) {
		t.Fatalf("err = %v, want ErrFatal", err)
	}
}

func TestDispatchOutcomePriority(t *testing.T) {
	client := &fakeClient{
		validToken: "good",
		token:      "good",
		failIDs: map[int]error{
			2: fmt.Errorf("refresh section 2: %w", plex.ErrUnauthorized),
			3: fmt.Errorf("connection refused"),
		},
	}

	outcome := refresh.Dispatch(context.Background(), client, []int{1, 2, 3}, quietLogger())
	if outcome != refresh.OutcomeNeedsReauth {
		t.Errorf("outcome = %v, want OutcomeNeedsReauth", outcome)
	}
	if !reflect.DeepEqual(client.refreshed, []int{1}) {
		t.Errorf("refreshed = %v, want [1]", client.refreshed)
	}
}

func TestDispatchEmptySections(t *testing.T) {
	client := &fakeClient{validToken: "good", token: "good"}
	if outcome := refresh.Dispatch(context.Background(), client, nil, quietLogger()); outcome != refresh.OutcomeSuccess {
		t.Errorf("outcome = %v, want OutcomeSuccess", outcome)
	}
}
