package discord

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"grantboard/internal/config"
)

func stubClient(t *testing.T, body string, httpStatus int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(httpStatus)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	cfg := config.DiscordConfig{BotToken: "bot-token", GuildID: "guild-1"}
	return NewClientForBase(srv.URL, cfg, zap.NewNop())
}

func TestResolveUserIDExactMatch(t *testing.T) {
	body := `[
		{"user":{"id":"100","username":"someone"}},
		{"user":{"id":"200","username":"alice","global_name":"Alice"}}
	]`
	c := stubClient(t, body, 200)

	id, err := c.ResolveUserID(context.Background(), "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if id != "200" {
		t.Errorf("resolved %q, want 200 (exact global_name match over first hit)", id)
	}
}

func TestResolveUserIDFallsBackToFirstHit(t *testing.T) {
	body := `[{"user":{"id":"100","username":"ali_dev"}}]`
	c := stubClient(t, body, 200)

	id, err := c.ResolveUserID(context.Background(), "ali")
	if err != nil {
		t.Fatal(err)
	}
	if id != "100" {
		t.Errorf("resolved %q, want first hit 100", id)
	}
}

func TestResolveUserIDNoMatch(t *testing.T) {
	c := stubClient(t, `[]`, 200)
	id, err := c.ResolveUserID(context.Background(), "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("resolved %q, want empty", id)
	}
}

func TestResolveUserIDAPIError(t *testing.T) {
	c := stubClient(t, `{"message":"missing access"}`, 403)
	if _, err := c.ResolveUserID(context.Background(), "alice"); err == nil {
		t.Error("non-2xx response should surface as an error")
	}
}

func TestResolveUserIDMissingCredentials(t *testing.T) {
	c := NewClient(config.DiscordConfig{}, zap.NewNop())
	id, err := c.ResolveUserID(context.Background(), "alice")
	if err != nil || id != "" {
		t.Errorf("got (%q, %v), want empty result without credentials", id, err)
	}
}
