// Package boards — service.go holds the board policy logic.
package boards

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/common"
)

// Threshold bounds for a board's minimum karma.
const (
	MinThreshold = 1
	MaxThreshold = 10
)

// RecognitionPrefixes are the message prefixes a board channel accepts.
var RecognitionPrefixes = []string{"+rep", "!rep", "/rep"}

// Store is the persistence the service needs; *Repository implements it.
type Store interface {
	Upsert(ctx context.Context, b *Board) error
	Get(ctx context.Context, channelID int64) (*Board, error)
}

// Service manages kudo boards.
type Service struct {
	store           Store
	defaultMinKarma int
}

// NewService creates a board service. defaultMinKarma is used when SetBoard
// receives zero.
func NewService(store Store, defaultMinKarma int) *Service {
	return &Service{store: store, defaultMinKarma: defaultMinKarma}
}

// SetBoard upserts the board for a channel. minKarma zero means the
// configured default; out-of-range values are rejected.
func (s *Service) SetBoard(ctx context.Context, channelID, guildID int64, minKarma int) (*Board, error) {
	if minKarma == 0 {
		minKarma = s.defaultMinKarma
	}
	if minKarma < MinThreshold || minKarma > MaxThreshold {
		return nil, common.ErrMinKarmaRange
	}

	board := &Board{ChannelID: channelID, GuildID: guildID, MinKarma: minKarma}
	if err := s.store.Upsert(ctx, board); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"channel":   channelID,
		"guild":     guildID,
		"min_karma": minKarma,
	}).Info("Kudo board configured")

	return board, nil
}

// GetBoard returns the channel's board, or nil when the channel has none.
func (s *Service) GetBoard(ctx context.Context, channelID int64) (*Board, error) {
	return s.store.Get(ctx, channelID)
}

// IsRecognition reports whether a message is allowed on a board: it must
// begin with one of the recognition prefixes.
func IsRecognition(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range RecognitionPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
