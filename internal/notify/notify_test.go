package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notifyplex/internal/config"
	"notifyplex/internal/notify"
	"notifyplex/internal/nzbget"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendPostsJSONRPC(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jsonrpc" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := notify.NewService(config.GUI{
		Enabled: true,
		Clients: []string{strings.TrimPrefix(server.URL, "http://")},
		Timeout: 2,
	}, quietLogger())

	if err := service.Send(context.Background(), "Downloaded", "Some Show - The Pilot"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got["method"] != "GUI.ShowNotification" {
		t.Errorf("method = %v", got["method"])
	}
	if got["jsonrpc"] != "2.0" {
		t.Errorf("jsonrpc = %v", got["jsonrpc"])
	}
	params, _ := got["params"].(map[string]any)
	if params["title"] != "Downloaded" || params["message"] != "Some Show - The Pilot" {
		t.Errorf("params = %v", params)
	}
}

func TestSendReportsFailedClients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := notify.NewService(config.GUI{
		Enabled: true,
		Clients: []string{
			strings.TrimPrefix(server.URL, "http://"),
			"127.0.0.1:1", // nothing listens here
		},
		Timeout: 1,
	}, quietLogger())

	err := service.Send(context.Background(), "Downloaded", "msg")
	if err == nil {
		t.Fatal("expected error when a client is unreachable")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("err = %v", err)
	}
}

func TestNewServiceDisabledIsNoop(t *testing.T) {
	service := notify.NewService(config.GUI{Enabled: false, Clients: []string{"10.0.0.5"}}, quietLogger())
	if err := service.Send(context.Background(), "t", "m"); err != nil {
		t.Fatalf("noop Send: %v", err)
	}

	service = notify.NewService(config.GUI{Enabled: true}, quietLogger())
	if err := service.Send(context.Background(), "t", "m"); err != nil {
		t.Fatalf("noop Send without clients: %v", err)
	}
}

func TestNotificationText(t *testing.T) {
	tests := []struct {
		name       string
		download   nzbget.Download
		useHeaders bool
		want       string
	}{
		{
			name: "episode",
			download: nzbget.Download{
				Name:        "Some.Show.S01E02.1080p",
				ProperName:  "Some Show",
				EpisodeName: "The Pilot",
			},
			useHeaders: true,
			want:       "Some Show - The Pilot",
		},
		{
			name: "movie with year",
			download: nzbget.Download{
				Name:       "A.Movie.2024.2160p",
				ProperName: "A Movie",
				MovieYear:  "2024",
			},
			useHeaders: true,
			want:       "A Movie (2024)",
		},
		{
			name:       "proper name only",
			download:   nzbget.Download{Name: "raw", ProperName: "Clean Name"},
			useHeaders: true,
			want:       "Clean Name",
		},
		{
			name:       "no headers supplied",
			download:   nzbget.Download{Name: "Some.Release.Name"},
			useHeaders: true,
			want:       "Some.Release.Name",
		},
		{
			name: "headers disabled",
			download: nzbget.Download{
				Name:        "Some.Show.S01E02.1080p",
				ProperName:  "Some Show",
				EpisodeName: "The Pilot",
			},
			useHeaders: false,
			want:       "Some.Show.S01E02.1080p",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notify.NotificationText(tt.download, tt.useHeaders); got != tt.want {
				t.Errorf("NotificationText = %q, want %q", got, tt.want)
			}
		})
	}
}
