// Package app initializes every component of the application.
// app.go is the assembly point: database pool, repositories, services,
// handlers, filters, and the bot itself.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/bot"
	"github.com/YTstyo/Dis-karm/internal/bot/filters"
	"github.com/YTstyo/Dis-karm/internal/config"
	"github.com/YTstyo/Dis-karm/internal/db/postgres"
	"github.com/YTstyo/Dis-karm/internal/features/admin"
	"github.com/YTstyo/Dis-karm/internal/features/boards"
	"github.com/YTstyo/Dis-karm/internal/features/karma"
	"github.com/YTstyo/Dis-karm/internal/features/members"
	"github.com/YTstyo/Dis-karm/internal/jobs"
)

// App holds all application components.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New creates and initializes the application. Order matters: components
// depend on each other.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Authorized as @%s", botAPI.Self.UserName)

	// === 3. Repositories ===
	memberRepo := members.NewRepository(pool)
	karmaRepo := karma.NewRepository(pool)
	boardRepo := boards.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Services ===
	memberService := members.NewService(memberRepo)
	karmaService := karma.NewService(karmaRepo, cfg)
	boardService := boards.NewService(boardRepo, cfg.DefaultMinKarma)
	adminService := admin.NewService(adminRepo, cfg)

	// === 5. Handlers ===
	karmaHandler := karma.NewHandler(karmaService, memberService, botAPI)
	boardHandler := boards.NewHandler(boardService, botAPI)
	adminHandler := admin.NewHandler(adminService, botAPI)

	// === 6. Filters ===
	boardFilter := filters.NewBoardFilter(boardService, botAPI)

	// === 7. Bot ===
	b := bot.New(
		botAPI, cfg,
		memberService,
		adminService,
		karmaHandler,
		boardHandler,
		adminHandler,
		boardFilter,
	)

	// === 8. Scheduler ===
	scheduler := jobs.NewScheduler(karmaService)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations applies all SQL migrations in order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002Karma},
		{3, migration003KudoBoards},
		{4, migration004Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		log.Infof("Migration %d applied", m.version)
	}

	return nil
}

// SQL migrations are embedded in the binary to keep deployment simple.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    last_name VARCHAR(255),
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(LOWER(username));
`

var migration002Karma = `
CREATE TABLE IF NOT EXISTS karma (
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    karma INTEGER NOT NULL DEFAULT 0,
    last_updated TIMESTAMPTZ DEFAULT NOW(),
    PRIMARY KEY (user_id, guild_id)
);
CREATE INDEX IF NOT EXISTS idx_karma_leaderboard ON karma(guild_id, karma DESC, user_id ASC);
CREATE TABLE IF NOT EXISTS karma_history (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    guild_id BIGINT NOT NULL,
    change INTEGER NOT NULL,
    reason TEXT,
    timestamp TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_karma_history_user ON karma_history(user_id, guild_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_karma_history_timestamp ON karma_history(timestamp);
`

var migration003KudoBoards = `
CREATE TABLE IF NOT EXISTS kudo_boards (
    channel_id BIGINT PRIMARY KEY,
    guild_id BIGINT NOT NULL,
    min_karma INTEGER NOT NULL DEFAULT 1
);
`

var migration004Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMPTZ DEFAULT NOW(),
    expires_at TIMESTAMPTZ,
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMPTZ DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_attempts_user ON admin_login_attempts(user_id, attempt_time DESC);
`
