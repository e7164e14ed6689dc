// Package boards — handlers.go handles the createboard admin command.
package boards

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/common"
)

// Handler handles board commands.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler creates a board handler.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleCreateBoard — "karmaadmin createboard [minKarma]", run inside the
// chat that should become a kudo board. Authorization happens in routing.
func (h *Handler) HandleCreateBoard(ctx context.Context, chatID, guildID int64, args []string) {
	minKarma := 0 // service substitutes the configured default
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			h.sendMessage(chatID, "❌ Minimum karma must be a number")
			return
		}
		minKarma = v
	}

	board, err := h.service.SetBoard(ctx, chatID, guildID, minKarma)
	if err != nil {
		if errors.Is(err, common.ErrMinKarmaRange) {
			h.sendMessage(chatID, "❌ Minimum karma must be between 1 and 10")
			return
		}
		log.WithError(err).Error("Create board failed")
		h.sendMessage(chatID, "⚠️ Could not create the kudo board")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"📌 This chat is now a kudo board!\nMinimum %d karma to give recognition.",
		board.MinKarma))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Send message failed")
	}
}
