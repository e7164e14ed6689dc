// Package filters contains boundary checks applied before command routing.
// board.go enforces the kudo-board policy: in a board channel only
// recognition messages survive.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/features/boards"
)

// BoardFilter polices kudo-board channels.
type BoardFilter struct {
	boardService *boards.Service
	bot          *tgbotapi.BotAPI
}

// NewBoardFilter creates a board filter.
func NewBoardFilter(boardService *boards.Service, bot *tgbotapi.BotAPI) *BoardFilter {
	return &BoardFilter{boardService: boardService, bot: bot}
}

// Apply returns true when the message was consumed by board policy (the chat
// is a board), false when normal processing should continue. Offending
// messages are deleted and the sender is told privately; a failing DM is
// swallowed because many users never open a private chat with the bot.
func (f *BoardFilter) Apply(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil || message.Chat.IsPrivate() {
		return false
	}

	board, err := f.boardService.GetBoard(ctx, message.Chat.ID)
	if err != nil {
		log.WithError(err).WithField("chat_id", message.Chat.ID).Error("Board lookup failed")
		return false
	}
	if board == nil {
		return false
	}

	if boards.IsRecognition(message.Text) {
		// Recognition messages stay; commands are still not processed in
		// board channels.
		return true
	}

	del := tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)
	if _, err := f.bot.Request(del); err != nil {
		log.WithError(err).WithField("chat_id", message.Chat.ID).Warn("Could not delete board message")
	}

	if message.From != nil {
		notice := tgbotapi.NewMessage(message.From.ID,
			"Only kudo messages are allowed in that channel.\n"+
				"Use `+rep @user [reason]` to give recognition.")
		if _, err := f.bot.Send(notice); err != nil {
			log.WithError(err).WithField("user_id", message.From.ID).Debug("Board notice DM failed")
		}
	}
	return true
}
