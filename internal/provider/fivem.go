package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ServerStatus is the public snapshot of the game server.
type ServerStatus struct {
	Online     bool   `json:"online"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Hostname   string `json:"hostname"`
}

// FiveMClient reads the game server's public info.json and players.json.
type FiveMClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewFiveMClient returns nil when addr is empty. addr is host:port or a full URL.
func NewFiveMClient(addr string, logger *slog.Logger) *FiveMClient {
	if addr == "" {
		return nil
	}
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &FiveMClient{
		baseURL: base,
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type fivemInfo struct {
	Vars map[string]string `json:"vars"`
}

// Status queries the server. An unreachable server is reported offline, not as an error.
func (c *FiveMClient) Status(ctx context.Context) ServerStatus {
	var info fivemInfo
	if err := c.getJSON(ctx, "/info.json", &info); err != nil {
		c.logger.Warn("fivem server unreachable", "url", c.baseURL, "error", err)
		return ServerStatus{Online: false}
	}

	var players []json.RawMessage
	if err := c.getJSON(ctx, "/players.json", &players); err != nil {
		c.logger.Warn("fivem players lookup failed", "url", c.baseURL, "error", err)
	}

	status := ServerStatus{Online: true, Players: len(players)}
	status.MaxPlayers, _ = strconv.Atoi(firstVar(info.Vars, "sv_maxClients", "sv_maxclients"))
	status.Hostname = firstVar(info.Vars, "sv_projectName", "sv_hostname")
	return status
}

func firstVar(vars map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := vars[k]; v != "" {
			return v
		}
	}
	return ""
}

func (c *FiveMClient) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
