// Package karma — handlers.go turns command and reaction events into service
// calls and formats the replies.
package karma

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/common"
	"github.com/YTstyo/Dis-karm/internal/features/members"
)

// Handler handles karma events.
type Handler struct {
	service *Service
	members *members.Service
	bot     *tgbotapi.BotAPI
}

// NewHandler creates a karma handler.
func NewHandler(service *Service, members *members.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, members: members, bot: bot}
}

// HandleGive — "karma give". args may hold an amount (default 1) and a reason.
func (h *Handler) HandleGive(ctx context.Context, chatID, actorID, targetID, guildID int64, args []string) {
	amount, reason, err := parseAmountAndReason(args)
	if err != nil {
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	}

	result, err := h.service.Give(ctx, actorID, targetID, guildID, amount, reason)
	if err != nil {
		h.replyError(chatID, err, "give karma")
		return
	}

	name := h.members.DisplayName(ctx, targetID)
	text := fmt.Sprintf("🔼 Awarded %d %s to %s\nNew total: %d %s",
		amount, common.PluralizePoints(amount), name,
		result.NewPoints, LevelEmoji(result.Level))
	if reason != "" {
		text += "\nReason: " + reason
	}
	h.sendMessage(chatID, text)
}

// HandleRemove — "karma remove". Symmetric to HandleGive.
func (h *Handler) HandleRemove(ctx context.Context, chatID, actorID, targetID, guildID int64, args []string) {
	amount, reason, err := parseAmountAndReason(args)
	if err != nil {
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	}

	result, err := h.service.Remove(ctx, actorID, targetID, guildID, amount, reason)
	if err != nil {
		h.replyError(chatID, err, "remove karma")
		return
	}

	name := h.members.DisplayName(ctx, targetID)
	text := fmt.Sprintf("🔽 Removed %d %s from %s\nNew total: %d %s",
		amount, common.PluralizePoints(amount), name,
		result.NewPoints, LevelEmoji(result.Level))
	if reason != "" {
		text += "\nReason: " + reason
	}
	h.sendMessage(chatID, text)
}

// HandleCheck — "karma check". Shows total, level and recent changes.
func (h *Handler) HandleCheck(ctx context.Context, chatID, targetID, guildID int64) {
	result, err := h.service.Check(ctx, targetID, guildID)
	if err != nil {
		log.WithError(err).Error("Karma check failed")
		h.sendMessage(chatID, "❌ Could not read karma")
		return
	}

	name := h.members.DisplayName(ctx, targetID)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s's karma\n", LevelEmoji(result.Level), name))
	sb.WriteString(fmt.Sprintf("Total: %d\nLevel: %d %s\n", result.Points, result.Level, LevelEmoji(result.Level)))

	if len(result.History) > 0 {
		sb.WriteString("\nRecent changes:\n")
		for _, e := range result.History {
			sb.WriteString(formatHistoryLine(e))
			sb.WriteByte('\n')
		}
	}
	h.sendMessage(chatID, sb.String())
}

// formatHistoryLine renders one history event: "+5 — reason (02.01.2006 15:04)".
func formatHistoryLine(e Event) string {
	reason := e.Reason
	if reason == "" {
		reason = "No reason"
	}
	return fmt.Sprintf("%s — %s (%s)",
		common.FormatDelta(e.Change), reason, common.FormatDateTime(e.Timestamp))
}

// HandleLeaderboard — "karma leaderboard [limit]".
func (h *Handler) HandleLeaderboard(ctx context.Context, chatID, guildID int64, args []string) {
	limit := 0 // service substitutes the configured default
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			h.sendMessage(chatID, "❌ Limit must be a number")
			return
		}
		limit = v
	}

	entries, err := h.service.LeaderboardView(ctx, guildID, limit)
	if err != nil {
		h.replyError(chatID, err, "leaderboard")
		return
	}
	if len(entries) == 0 {
		h.sendMessage(chatID, "No karma records yet in this chat!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Karma Leaderboard\n\n")
	for i, e := range entries {
		name := h.members.DisplayName(ctx, e.UserID)
		sb.WriteString(fmt.Sprintf("%d. %s — %d %s\n", i+1, name, e.Points, LevelEmoji(e.Level)))
	}
	sb.WriteString(fmt.Sprintf("\nTop %d users", len(entries)))
	h.sendMessage(chatID, sb.String())
}

// HandleGraph — "karma graph". Renders the top 10 as a monospace bar chart.
func (h *Handler) HandleGraph(ctx context.Context, chatID, guildID int64) {
	entries, err := h.service.LeaderboardView(ctx, guildID, 10)
	if err != nil {
		h.replyError(chatID, err, "graph")
		return
	}
	if len(entries) == 0 {
		h.sendMessage(chatID, "Not enough data to draw a chart")
		return
	}

	chart := RenderChart(entries, func(userID int64) string {
		return h.members.DisplayName(ctx, userID)
	})

	chart = tgbotapi.EscapeText(tgbotapi.ModeHTML, chart)
	msg := tgbotapi.NewMessage(chatID, "📊 Karma Distribution\n<pre>"+chart+"</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Send chart failed")
	}
}

// HandleAdminSet — "karmaadmin set". args[0] is the new total (may be
// negative), the rest is the reason. Authorization happens in routing.
func (h *Handler) HandleAdminSet(ctx context.Context, chatID, targetID, guildID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Usage: karmaadmin set <user> <amount> [reason]")
		return
	}
	value, err := strconv.Atoi(args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Amount must be a number")
		return
	}
	reason := strings.Join(args[1:], " ")

	result, err := h.service.AdminSet(ctx, targetID, guildID, value, reason)
	if err != nil {
		h.replyError(chatID, err, "admin set")
		return
	}

	name := h.members.DisplayName(ctx, targetID)
	text := fmt.Sprintf("⚡ Set %s's karma to %d\nChange: %s",
		name, result.NewPoints, common.FormatDelta(result.Delta))
	if reason != "" {
		text += "\nReason: " + reason
	}
	h.sendMessage(chatID, text)
}

// HandleReaction applies the implicit +1 for a recognized emoji reply and
// DMs the target on a level-up. No public acknowledgement, matching the
// quiet nature of reactions.
func (h *Handler) HandleReaction(ctx context.Context, targetID, guildID int64, emoji string) {
	result, err := h.service.ReactionGrant(ctx, targetID, guildID, emoji)
	if err != nil {
		log.WithError(err).Error("Reaction grant failed")
		return
	}

	if result.LeveledUp {
		text := fmt.Sprintf("🎉 You leveled up to %s Karma Level %d!",
			LevelEmoji(result.Level), result.Level)
		msg := tgbotapi.NewMessage(targetID, text)
		if _, err := h.bot.Send(msg); err != nil {
			// The user may have never opened a DM with the bot.
			log.WithError(err).WithField("user_id", targetID).Debug("Level-up DM failed")
		}
	}
}

// replyError maps service errors to user-facing messages.
func (h *Handler) replyError(chatID int64, err error, op string) {
	if ce := common.AsCooldown(err); ce != nil {
		h.sendMessage(chatID, fmt.Sprintf("⏳ Please wait %ds before changing karma again",
			int(ce.Remaining.Seconds())+1))
		return
	}
	switch {
	case errors.Is(err, common.ErrSelfTarget):
		h.sendMessage(chatID, "❌ You cannot change your own karma")
	case errors.Is(err, common.ErrInvalidAmount):
		h.sendMessage(chatID, "❌ Amount must be between 1 and 10")
	case errors.Is(err, common.ErrInvalidLimit):
		h.sendMessage(chatID, "❌ Limit must be between 1 and 25")
	default:
		log.WithError(err).WithField("op", op).Error("Karma operation failed")
		h.sendMessage(chatID, "⚠️ An error occurred while executing this command")
	}
}

// parseAmountAndReason splits command args into the amount (default 1) and
// the free-text reason.
func parseAmountAndReason(args []string) (int, string, error) {
	amount := 1
	reasonArgs := args
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			amount = v
			reasonArgs = args[1:]
		}
	}
	if amount < MinAmount || amount > MaxAmount {
		return 0, "", common.ErrInvalidAmount
	}
	return amount, strings.Join(reasonArgs, " "), nil
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Send message failed")
	}
}
