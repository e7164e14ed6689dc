// Package admin — handlers.go handles the DM /login command.
package admin

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/common"
)

// Handler handles admin commands.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler creates an admin handler.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleLogin — "/login <password>", DM only. The routing layer guarantees
// chatID == userID before calling.
func (h *Handler) HandleLogin(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Usage: /login <password>")
		return
	}

	err := h.service.Login(ctx, userID, strings.Join(args, " "))
	switch {
	case err == nil:
		h.sendMessage(chatID, "🔓 Admin session opened for 24 hours")
	case errors.Is(err, common.ErrWrongPassword):
		h.sendMessage(chatID, "❌ Wrong password")
	case errors.Is(err, common.ErrTooManyAttempts):
		h.sendMessage(chatID, "⏳ Too many attempts, try again in an hour")
	case errors.Is(err, common.ErrNotAdmin):
		h.sendMessage(chatID, "🔒 Password login is disabled")
	default:
		log.WithError(err).Error("Admin login failed")
		h.sendMessage(chatID, "⚠️ An error occurred, try again later")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Send message failed")
	}
}
