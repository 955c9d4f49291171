package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	ServiceToken string `yaml:"service_token"` // bearer token for bot/cron callers
}

type GithubConfig struct {
	Token string `yaml:"token"` // optional, raises rate limits / private repos
}

type DiscordConfig struct {
	BotToken string   `yaml:"bot_token"`
	GuildID  string   `yaml:"guild_id"`
	AdminIDs []string `yaml:"admin_ids"` // Discord user IDs allowed to act on any project
}

type SchedulerConfig struct {
	TargetURL     string `yaml:"target_url"`     // base URL of the API server
	IntervalHours int    `yaml:"interval_hours"` // 0 means the default of 24
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	MQ        MQConfig        `yaml:"mq"`
	Auth      AuthConfig      `yaml:"auth"`
	Github    GithubConfig    `yaml:"github"`
	Discord   DiscordConfig   `yaml:"discord"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load reads the yaml config at path, applies environment overrides, and
// validates it. Every component receives the resulting struct by injection;
// there is no process-wide config singleton.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing required field in one error, so a bad
// deployment fails fast with the full list instead of the first hit.
func (c *Config) Validate() error {
	var missing []string
	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.DB.Host == "" {
		missing = append(missing, "db.host")
	}
	if c.DB.User == "" {
		missing = append(missing, "db.user")
	}
	if c.DB.Name == "" {
		missing = append(missing, "db.name")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwt_secret")
	}
	if c.Auth.ServiceToken == "" {
		missing = append(missing, "auth.service_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsDiscordAdmin reports whether the given Discord user ID is on the admin
// allow-list. An empty ID is never an admin.
func (c *Config) IsDiscordAdmin(discordID string) bool {
	if discordID == "" {
		return false
	}
	for _, id := range c.Discord.AdminIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

func overrideFromEnv(cfg *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if token := os.Getenv("SERVICE_BOT_TOKEN"); token != "" {
		cfg.Auth.ServiceToken = token
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}
	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		cfg.Discord.BotToken = token
	}
	if guild := os.Getenv("DISCORD_GUILD_ID"); guild != "" {
		cfg.Discord.GuildID = guild
	}
	if ids := os.Getenv("DISCORD_ADMIN_IDS"); ids != "" {
		cfg.Discord.AdminIDs = splitIDs(ids)
	}
	if url := os.Getenv("SCHEDULER_TARGET_URL"); url != "" {
		cfg.Scheduler.TargetURL = url
	}
}

func splitIDs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
