package plex_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notifyplex/internal/plex"
)

const sectionsXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3">
  <Directory key="5" type="show" title="TV Shows"/>
  <Directory key="1" type="movie" title="Movies"/>
  <Directory key="9" type="artist" title="Music"/>
</MediaContainer>`

func newTestClient(serverURL string) *plex.Client {
	return plex.NewClient(
		plex.ServerConnection{BaseURL: serverURL, Token: "tok"},
		"client-id",
		5*time.Second,
	)
}

func TestSectionsParsesAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Plex-Token"); got != "tok" {
			t.Errorf("token header = %q", got)
		}
		_, _ = w.Write([]byte(sectionsXML))
	}))
	defer server.Close()

	sections, err := newTestClient(server.URL).Sections(context.Background())
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}

	want := []plex.Section{
		{ID: 1, Title: "Movies", Kind: "movie"},
		{ID: 5, Title: "TV Shows", Kind: "show"},
		{ID: 9, Title: "Music", Kind: "artist"},
	}
	if len(sections) != len(want) {
		t.Fatalf("got %d sections, want %d", len(sections), len(want))
	}
	for i, section := range sections {
		if section != want[i] {
			t.Errorf("sections[%d] = %+v, want %+v", i, section, want[i])
		}
	}
}

func TestSectionsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Sections(context.Background())
	if !errors.Is(err, plex.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRefreshSection(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).RefreshSection(context.Background(), 5); err != nil {
		t.Fatalf("RefreshSection: %v", err)
	}
	if path != "/library/sections/5/refresh" {
		t.Errorf("path = %q", path)
	}
}

func TestRefreshSectionUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	err := newTestClient(server.URL).RefreshSection(context.Background(), 2)
	if !errors.Is(err, plex.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRefreshSectionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newTestClient(server.URL).RefreshSection(context.Background(), 2)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, plex.ErrUnauthorized) {
		t.Fatalf("500 must not map to ErrUnauthorized: %v", err)
	}
}
