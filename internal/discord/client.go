// Package discord wraps the small slice of the Discord REST API the service
// needs: resolving a guild member's user ID from a username.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"grantboard/internal/config"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	guildID    string
	logger     *zap.Logger
}

func NewClient(cfg config.DiscordConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://discord.com/api/v10",
		botToken:   cfg.BotToken,
		guildID:    cfg.GuildID,
		logger:     logger,
	}
}

// NewClientForBase is used by tests to point the client at a stub server.
func NewClientForBase(baseURL string, cfg config.DiscordConfig, logger *zap.Logger) *Client {
	c := NewClient(cfg, logger)
	c.baseURL = baseURL
	return c
}

type guildMember struct {
	Nick *string `json:"nick"`
	User struct {
		ID         string  `json:"id"`
		Username   string  `json:"username"`
		GlobalName *string `json:"global_name"`
	} `json:"user"`
}

// ResolveUserID searches the guild for a member matching the username and
// returns their Discord user ID. Matching prefers an exact username, global
// name, or nick (case-insensitive); otherwise the first search hit wins.
// Returns "" with nil error when nothing matched.
func (c *Client) ResolveUserID(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || c.botToken == "" || c.guildID == "" {
		return "", nil
	}

	searchURL := fmt.Sprintf("%s/guilds/%s/members/search?query=%s&limit=5",
		c.baseURL, c.guildID, url.QueryEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("discord member search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("discord member search failed: %d: %s", resp.StatusCode, body)
	}

	var members []guildMember
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return "", fmt.Errorf("discord member search decode failed: %w", err)
	}
	if len(members) == 0 {
		return "", nil
	}

	lc := strings.ToLower(username)
	for _, m := range members {
		if strings.ToLower(m.User.Username) == lc ||
			(m.User.GlobalName != nil && strings.ToLower(*m.User.GlobalName) == lc) ||
			(m.Nick != nil && strings.ToLower(*m.Nick) == lc) {
			return m.User.ID, nil
		}
	}
	return members[0].User.ID, nil
}
