// Package config loads the bot configuration from environment variables.
// envconfig maps the variables onto the Config struct.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds ALL application settings.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Bot owners: always authorized for karmaadmin commands.
	OwnerIDsRaw string  `envconfig:"OWNER_IDS" default:""`
	OwnerIDs    []int64 `envconfig:"-"` // filled manually from OwnerIDsRaw
	// Shown by /help as the bot's status line.
	PresenceText string `envconfig:"PRESENCE_TEXT" default:"/karma help"`

	// --- Database ---
	// Inside Docker "localhost" is almost always wrong; default to the
	// docker-compose service name and override DB_HOST=localhost locally.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"karma_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Bot runtime ---
	// How many updates are processed in parallel; "goroutine per update"
	// leaks memory under flood.
	BotMaxInflight          int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Karma ---
	// Minimum wait between user-initiated give/remove actions by one actor.
	KarmaCooldownSeconds int `envconfig:"KARMA_COOLDOWN_SECONDS" default:"60"`
	// Points per level; level = min(points/interval, 4).
	KarmaLevelInterval int `envconfig:"KARMA_LEVEL_INTERVAL" default:"50"`
	// Default number of leaderboard entries when the command gives none.
	LeaderboardLimit int `envconfig:"LEADERBOARD_LIMIT" default:"10"`
	// How long history events are retained before the daily purge.
	HistoryRetentionDays int `envconfig:"HISTORY_RETENTION_DAYS" default:"30"`

	// --- Reactions ---
	ReactionKarmaEnabled bool `envconfig:"REACTION_KARMA_ENABLED" default:"true"`
	// Recognized but not enforced: reaction grants bypass the cooldown gate,
	// matching the manual/reaction trust asymmetry of the original bot.
	ReactionCooldownSeconds int `envconfig:"REACTION_COOLDOWN_SECONDS" default:"3600"`

	// --- Kudo boards ---
	DefaultMinKarma int `envconfig:"DEFAULT_MIN_KARMA" default:"3"`

	// --- Admin ---
	// Argon2id hash for the DM /login flow. Empty disables password login;
	// OWNER_IDS keep working either way.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" default:""`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// CooldownWindow returns the karma cooldown as a duration.
func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.KarmaCooldownSeconds) * time.Second
}

// HistoryRetention returns the history retention as a duration.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT must be > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS must be > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.KarmaCooldownSeconds < 0 {
		return fmt.Errorf("KARMA_COOLDOWN_SECONDS must be >= 0")
	}
	if c.KarmaLevelInterval <= 0 {
		return fmt.Errorf("KARMA_LEVEL_INTERVAL must be > 0")
	}
	if c.LeaderboardLimit < 1 || c.LeaderboardLimit > 25 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be within 1..25")
	}
	if c.HistoryRetentionDays <= 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must be > 0")
	}
	if c.DefaultMinKarma < 1 || c.DefaultMinKarma > 10 {
		return fmt.Errorf("DEFAULT_MIN_KARMA must be within 1..10")
	}
	return nil
}

// Load reads environment variables and fills the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	ids, err := parseInt64CSV(cfg.OwnerIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("OWNER_IDS parse: %w", err)
	}
	cfg.OwnerIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
