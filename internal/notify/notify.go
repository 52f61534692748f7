package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"notifyplex/internal/config"
	"notifyplex/internal/nzbget"
)

const defaultGUIPort = "3005"

// Service delivers on-screen notifications to Plex Home Theater clients.
type Service interface {
	Send(ctx context.Context, title, message string) error
}

// NewService builds a Service from configuration. Disabled or target-less
// configurations yield a no-op service so callers never branch.
func NewService(cfg config.GUI, logger *slog.Logger) Service {
	if !cfg.Enabled || len(cfg.Clients) == 0 {
		return noopService{}
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &guiService{
		clients: cfg.Clients,
		scheme:  scheme,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type noopService struct{}

func (noopService) Send(context.Context, string, string) error { return nil }

// guiService posts JSON-RPC GUI.ShowNotification calls to each client.
type guiService struct {
	clients []string
	scheme  string
	http    *http.Client
	logger  *slog.Logger
}

type rpcRequest struct {
	ID      int       `json:"id"`
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Send delivers the notification to every configured client. Delivery keeps
// going past individual failures and reports how many clients were missed.
func (s *guiService) Send(ctx context.Context, title, message string) error {
	payload, err := json.Marshal(rpcRequest{
		ID:      1,
		JSONRPC: "2.0",
		Method:  "GUI.ShowNotification",
		Params:  rpcParams{Title: title, Message: message},
	})
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	failed := 0
	for _, client := range s.clients {
		if err := s.sendOne(ctx, client, payload); err != nil {
			s.logger.Warn("gui notification failed", "client", client, "error", err)
			failed++
			continue
		}
		s.logger.Debug("gui notification delivered", "client", client)
	}
	if failed > 0 {
		return fmt.Errorf("gui notification failed for %d of %d clients", failed, len(s.clients))
	}
	return nil
}

func (s *guiService) sendOne(ctx context.Context, client string, payload []byte) error {
	endpoint := fmt.Sprintf("%s://%s/jsonrpc", s.scheme, hostPort(client))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("client returned %d", resp.StatusCode)
	}
	return nil
}

func hostPort(client string) string {
	client = strings.TrimSpace(client)
	if _, _, err := net.SplitHostPort(client); err == nil {
		return client
	}
	return net.JoinHostPort(client, defaultGUIPort)
}

// NotificationText builds the on-screen message for a finished download. The
// DNZB proper-name headers produce a cleaner title than the raw NZB name when
// the indexer supplied them and the operator left them enabled.
func NotificationText(download nzbget.Download, useDNZBHeaders bool) string {
	if useDNZBHeaders && download.ProperName != "" {
		switch {
		case download.EpisodeName != "":
			return download.ProperName + " - " + download.EpisodeName
		case download.MovieYear != "":
			return fmt.Sprintf("%s (%s)", download.ProperName, download.MovieYear)
		default:
			return download.ProperName
		}
	}
	return download.Name
}
