package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: ":8080"},
		DB:     DBConfig{Host: "localhost", Port: 5432, User: "grantboard", Name: "grantboard"},
		Auth:   AuthConfig{JWTSecret: "secret", ServiceToken: "bot-token"},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateAggregatesAllMissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty config accepted")
	}
	for _, field := range []string{"server.port", "db.host", "db.user", "db.name", "auth.jwt_secret", "auth.service_token"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q missing field %s", err.Error(), field)
		}
	}
}

func TestIsDiscordAdmin(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.AdminIDs = []string{"111", "222"}

	if !cfg.IsDiscordAdmin("111") {
		t.Error("listed ID not recognized as admin")
	}
	if cfg.IsDiscordAdmin("333") {
		t.Error("unlisted ID recognized as admin")
	}
	// A caller merely having an ID must not grant admin.
	if cfg.IsDiscordAdmin("") {
		t.Error("empty ID recognized as admin")
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs(" 1, 2 ,,3 ")
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("splitIDs returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitIDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
