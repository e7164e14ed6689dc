// Package bot contains the bot's main module: the update loop, command
// routing and target resolution. Everything here is thin glue between the
// platform SDK and the feature services.
package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/bot/filters"
	"github.com/YTstyo/Dis-karm/internal/bot/middleware"
	"github.com/YTstyo/Dis-karm/internal/config"
	"github.com/YTstyo/Dis-karm/internal/features/admin"
	"github.com/YTstyo/Dis-karm/internal/features/boards"
	"github.com/YTstyo/Dis-karm/internal/features/karma"
	"github.com/YTstyo/Dis-karm/internal/features/members"
)

// Bot ties the update loop to the feature handlers.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	boardFilter *filters.BoardFilter
	rateLimiter *middleware.RateLimiter

	memberService *members.Service
	adminService  *admin.Service

	karmaHandler *karma.Handler
	boardHandler *boards.Handler
	adminHandler *admin.Handler

	parser *CommandParser

	// inflight caps concurrent update handling; wg lets shutdown drain it.
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New creates the bot with all its dependencies.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	adminService *admin.Service,
	karmaHandler *karma.Handler,
	boardHandler *boards.Handler,
	adminHandler *admin.Handler,
	boardFilter *filters.BoardFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		boardFilter:   boardFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService: memberService,
		adminService:  adminService,
		karmaHandler:  karmaHandler,
		boardHandler:  boardHandler,
		adminHandler:  adminHandler,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start polls for updates until ctx is cancelled, then waits for in-flight
// handlers to finish so the store can be closed safely afterwards.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	// Handlers run on a detached context: cancelling ctx stops the poll loop
	// and nothing more. A ledger transaction already in flight must commit,
	// not abort with context.Canceled; drain() then waits for it before the
	// pool is closed.
	handlerCtx := handlerContext(ctx)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Bot started, waiting for messages...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Bot stopping (ctx done)...")
			b.api.StopReceivingUpdates()
			b.drain()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Updates channel closed, bot stopped")
				b.drain()
				return
			}

			b.inflight <- struct{}{}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				defer func() { <-b.inflight }()
				b.handleUpdate(handlerCtx, upd)
			}(update)
		}
	}
}

// drain waits for in-flight ledger writes to complete and releases the rate
// limiter's cleanup goroutine.
func (b *Bot) drain() {
	b.wg.Wait()
	b.rateLimiter.Close()
}

// handlerContext derives the context update handlers run on. It keeps the
// parent's values but not its cancellation, so shutdown never aborts a write
// that already started.
func handlerContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// handleUpdate processes a single update.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Chat == nil || update.Message.From == nil || update.Message.From.IsBot {
		return
	}
	message := update.Message

	middleware.LogMessage(message)

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Keep the member registry current; failures must not block handling.
	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// Kudo-board policy first: in a board chat only recognition messages
	// survive and nothing else is processed.
	if b.boardFilter.Apply(ctx, message) {
		return
	}

	// Emoji reply = implicit +1 grant. Reacting to yourself grants nothing.
	if b.cfg.ReactionKarmaEnabled && message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		author := message.ReplyToMessage.From
		if emoji, ok := karma.ReactionEmoji(message.Text); ok {
			if author.ID != userID && !author.IsBot {
				b.karmaHandler.HandleReaction(ctx, author.ID, chatID, emoji)
			}
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}
	b.routeCommand(ctx, message, cmd, args)
}

// routeCommand dispatches a parsed command.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		b.sendMessage(chatID, b.helpText())

	case "login":
		// Password elevation works over DM only.
		if message.Chat.IsPrivate() {
			b.adminHandler.HandleLogin(ctx, chatID, userID, args)
		}

	case "karma":
		b.routeKarma(ctx, message, args)

	case "karmaadmin":
		b.routeKarmaAdmin(ctx, message, args)
	}
}

// routeKarma handles the karma subcommands. Karma is scoped to the group
// chat, so these work only there.
func (b *Bot) routeKarma(ctx context.Context, message *tgbotapi.Message, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if message.Chat.IsPrivate() {
		b.sendMessage(chatID, "Karma commands work in group chats")
		return
	}
	guildID := chatID

	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
		args = args[1:]
	}

	switch sub {
	case "give":
		targetID, rest, ok := b.resolveTarget(ctx, message, args)
		if !ok {
			b.sendMessage(chatID, "Reply to the user or name them: karma give @user [amount] [reason]")
			return
		}
		b.karmaHandler.HandleGive(ctx, chatID, userID, targetID, guildID, rest)

	case "remove":
		targetID, rest, ok := b.resolveTarget(ctx, message, args)
		if !ok {
			b.sendMessage(chatID, "Reply to the user or name them: karma remove @user [amount] [reason]")
			return
		}
		b.karmaHandler.HandleRemove(ctx, chatID, userID, targetID, guildID, rest)

	case "check":
		targetID, _, ok := b.resolveTarget(ctx, message, args)
		if !ok {
			targetID = userID // no target means yourself
		}
		b.karmaHandler.HandleCheck(ctx, chatID, targetID, guildID)

	case "leaderboard", "top":
		b.karmaHandler.HandleLeaderboard(ctx, chatID, guildID, args)

	case "graph":
		b.karmaHandler.HandleGraph(ctx, chatID, guildID)

	default:
		b.sendMessage(chatID, b.helpText())
	}
}

// routeKarmaAdmin handles the privileged subcommands. Authorization is
// checked here, before any service is invoked.
func (b *Bot) routeKarmaAdmin(ctx context.Context, message *tgbotapi.Message, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if !b.adminService.IsAuthorized(ctx, userID) {
		b.sendMessage(chatID, "🔒 You don't have permission to use this command")
		return
	}
	if message.Chat.IsPrivate() {
		b.sendMessage(chatID, "Admin karma commands work in group chats")
		return
	}
	guildID := chatID

	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
		args = args[1:]
	}

	switch sub {
	case "set":
		targetID, rest, ok := b.resolveTarget(ctx, message, args)
		if !ok {
			b.sendMessage(chatID, "Usage: karmaadmin set <user> <amount> [reason]")
			return
		}
		b.karmaHandler.HandleAdminSet(ctx, chatID, targetID, guildID, rest)

	case "createboard":
		b.boardHandler.HandleCreateBoard(ctx, chatID, guildID, args)

	default:
		b.sendMessage(chatID, "Admin commands: karmaadmin set, karmaadmin createboard")
	}
}

// resolveTarget finds the command's target user: the replied-to author when
// the command is a reply, otherwise the first argument as a @username or a
// numeric id. Returns the remaining arguments.
func (b *Bot) resolveTarget(ctx context.Context, message *tgbotapi.Message, args []string) (int64, []string, bool) {
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		return message.ReplyToMessage.From.ID, args, true
	}
	if len(args) == 0 {
		return 0, nil, false
	}

	ref := args[0]
	rest := args[1:]

	if strings.HasPrefix(ref, "@") {
		targetID, err := b.memberService.ResolveUsername(ctx, ref)
		if err != nil {
			log.WithError(err).WithField("ref", ref).Debug("Unknown username")
			return 0, nil, false
		}
		return targetID, rest, true
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return id, rest, true
	}
	return 0, nil, false
}

func (b *Bot) helpText() string {
	return b.cfg.PresenceText + "\n\n" +
		"karma give <@user|reply> [amount 1-10] [reason]\n" +
		"karma remove <@user|reply> [amount 1-10] [reason]\n" +
		"karma check [@user]\n" +
		"karma leaderboard [limit ≤25]\n" +
		"karma graph\n" +
		"karmaadmin set <user> <amount> [reason] (privileged)\n" +
		"karmaadmin createboard [minKarma 1-10] (privileged)\n" +
		"Replying with " + strings.Join(karma.ReactionEmojis, " ") + " gives +1"
}

// sendMessage is the shared send utility.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Send message failed")
	}
}
